// Package main provides the entry point for the tutorkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tutorkit/tutorkit/cmd/tutorkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
