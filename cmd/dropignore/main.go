// Package main provides the entry point for the dropignore CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/dropignore/cmd/dropignore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
