package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the readscape command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readscape",
		Short: "ReadScape bookstore storefront service",
		Long: `ReadScape serves the bookstore catalog together with the per session
cart, favorites, theme preference and checkout over a JSON api.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd(), newCatalogCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	var configFile, envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront api server",
		Example: `  # Start with the configuration files of the current folder
  readscape serve

  # Start with custom configuration files
  readscape serve --config /etc/readscape/config.yml --env /etc/readscape/config.env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(configFile, envFile)
			if err != nil {
				return fmt.Errorf("application failed to initialized: %w", err)
			}
			if err = app.Run(cmd.Context()); err != nil {
				return fmt.Errorf("application exited. check logs for more details: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", DefaultConfigFile, "yaml configuration file")
	cmd.Flags().StringVarP(&envFile, "env", "e", DefaultEnvFile, "environment variables file")
	return cmd
}
