// Package main provides the unitest CLI application for end-to-end testing of unilang.
// unitest uses golden files to record, run, and verify expected behavior of unilang scripts.
package main

import (
	"os"

	"unilang/cmd/unitest/internal/cli"
)

func main() {
	app := cli.NewApp()
	rootCmd := app.CreateRootCommand()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
