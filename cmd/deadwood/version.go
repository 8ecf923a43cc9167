package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deadwood/internal/symbols"
	"deadwood/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		parser := "tree-sitter"
		if !symbols.IsAvailable() {
			parser = "unavailable (built without cgo)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Parser: %s\n", parser)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
