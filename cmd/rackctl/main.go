// Package main is the entry point for rackctl.
package main

import (
	"os"

	"github.com/rackctl/rackctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
