// Package main is the entry point for the vozaid CLI.
//
// Usage:
//
//	vozaid [flags] <command> [args]
//
// Commands:
//
//	serve    - run the HTTP service
//	seed     - seed the intent database from a directory of wav clips
//	intents  - show the intent enumeration and exemplar counts
package main

import (
	"fmt"
	"os"

	"github.com/vozaid/vozaid/cmd/vozaid/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
