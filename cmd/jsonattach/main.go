// Package main is the entry point for the jsonattach CLI.
//
// Usage:
//
//	jsonattach [flags] <command> [args]
//
// Commands:
//
//	ls       - List document identifiers
//	count    - Count documents
//	get      - Print a document, optionally saving its attachment
//	put      - Store a document and its attachment
//	rm       - Remove a document and its attachment
//	config   - Context management (store, collection, codec)
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/jsonattach/cmd/jsonattach/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
