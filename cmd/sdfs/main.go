// Package main is the entry point for the sdfs CLI.
//
// Usage:
//
//	sdfs [flags] <command> [args]
//
// Commands:
//
//	ls    - List the plain files in a card directory
//	cat   - Copy a card file to stdout
//	tree  - Show every entry of a card image with its attributes
//	info  - Show the card volume geometry and labels
package main

import (
	"fmt"
	"os"

	"github.com/rstms/sdfs/cmd/sdfs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
