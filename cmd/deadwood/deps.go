package main

import (
	"github.com/spf13/cobra"
)

var (
	depsFormat         string
	depsAll            bool
	depsFailOnFindings bool
	depsFlags          analysisFlags
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Report declared dependencies no module imports",
	Long: `List the dependencies declared in the manifest that no scanned module
imports. A dependency counts as used when any import or re-export names it or
one of its subpaths ("lodash/fp" uses "lodash"). With implyTypes enabled,
"@types/x" is used whenever "x" is.

Examples:
  deadwood deps
  deadwood deps --all --format human
  deadwood deps --format json`,
	Args: cobra.NoArgs,
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().StringVar(&depsFormat, "format", "text", "Output format (text, json, yaml, human)")
	depsCmd.Flags().BoolVar(&depsAll, "all", false, "Show every declared dependency, not only unused ones")
	depsCmd.Flags().BoolVar(&depsFailOnFindings, "fail-on-findings", false, "Exit with status 2 when a dependency is unused")
	depsFlags.register(depsCmd)
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(depsFormat)
	if err != nil {
		return err
	}

	report, err := runAnalysis(cmd, &depsFlags)
	if err != nil {
		return err
	}

	output, err := FormatDeps(report, format, depsAll)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), "", output); err != nil {
		return err
	}

	if depsFailOnFindings && len(report.UnusedDependencies()) > 0 {
		return &findingsError{unusedDeps: len(report.UnusedDependencies())}
	}
	return nil
}
