package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// main runs the readscape command line through fang.
//
//	@title			ReadScape storefront API
//	@version		1.0
//	@description	Catalog, cart, favorites and checkout endpoints of the ReadScape bookstore.
//	@BasePath		/
func main() {
	version := GitTag
	if version == "" {
		version = "dev"
	}
	if err := fang.Execute(
		context.Background(),
		NewRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
