// Package main provides the bookminer CLI tool for mining chess opening
// trees from Lichess popularity data and engine analysis.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
