// Package main provides the pipelang command-line interface.
package main

import (
	"os"

	"github.com/pipelang/pipelang/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
