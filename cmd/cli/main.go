// Package main is the entry point for the appstore-pricing CLI.
package main

import (
	"os"

	"appstore-pricing/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
