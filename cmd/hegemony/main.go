package main

import (
	"os"

	"github.com/wonny/hegemony/cmd/hegemony/commands"
)

// main is the entry point for the hegemony CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
