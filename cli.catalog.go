package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, validate and convert book catalogs",
	}
	cmd.AddCommand(newCatalogListCmd(), newCatalogValidateCmd(), newCatalogExportCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var file, category, sortOrder string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the books of a catalog",
		Example: `  # List the embedded catalog sorted by price
  readscape catalog list --sort price-low-high

  # List the fiction books of a custom catalog as json
  readscape catalog list --file books.parquet --category fiction --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsValidSortOrder(sortOrder) {
				return fmt.Errorf("unknown sort order %q", sortOrder)
			}
			catalog, err := LoadCatalog(file)
			if err != nil {
				return err
			}
			books := SortBooks(FilterBooks(catalog.GetAll(), "", category), sortOrder)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			}
			return printBooks(cmd.OutOrStdout(), books)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (.yaml, .yml, .json or .parquet), embedded catalog when empty")
	cmd.Flags().StringVar(&category, "category", CategoryAll, "category filter")
	cmd.Flags().StringVar(&sortOrder, "sort", SortDefault, "sort order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print books as json")
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a catalog file can be served",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := LoadCatalog(args[0])
			if err != nil {
				return fmt.Errorf("catalog %s is invalid: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "catalog %s is valid: %d books in %d categories\n",
				args[0], len(catalog.GetAll()), len(catalog.Categories()))
			return err
		},
	}
}

func newCatalogExportCmd() *cobra.Command {
	var file, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a catalog into another format",
		Long:  "Export writes the catalog to the output file. The format follows the output file extension.",
		Example: `  # Export the embedded catalog as parquet
  readscape catalog export --out books.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := LoadCatalog(file)
			if err != nil {
				return err
			}
			if err = WriteCatalogFile(out, catalog.GetAll()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d books exported to %s\n", len(catalog.GetAll()), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "source catalog file, embedded catalog when empty")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.yaml, .yml, .json or .parquet)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func printBooks(w io.Writer, books []Book) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tPRICE\tRATING")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.1f\n", b.ID, b.Title, b.Author, b.CategoryOrDefault(), b.EffectivePrice().StringFixed(2), b.Rating)
	}
	return tw.Flush()
}
