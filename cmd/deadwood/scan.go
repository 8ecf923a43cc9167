package main

import (
	"github.com/spf13/cobra"

	"deadwood/internal/query"
)

var (
	scanFormat         string
	scanOutput         string
	scanFailOnFindings bool
	scanFlags          analysisFlags
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report unused exports and dependencies",
	Long: `Scan the source root, build the module graph and report every export no
module consumes, plus every declared dependency no module imports.

Text output is one "<kind> <name> in: <path>" line per dead export, sorted
by path then name, followed by the unused dependencies. It is byte-identical
across runs over unchanged input.

Examples:
  deadwood scan
  deadwood scan --root lib --entrypoint "lib/index.ts"
  deadwood scan --format json --output report.json.zst
  deadwood scan --fail-on-findings`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "text", "Output format (text, json, yaml, human)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write the report to a file (.zst compresses)")
	scanCmd.Flags().BoolVar(&scanFailOnFindings, "fail-on-findings", false, "Exit with status 2 when anything is reported")
	scanFlags.register(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(scanFormat)
	if err != nil {
		return err
	}

	report, err := runAnalysis(cmd, &scanFlags)
	if err != nil {
		return err
	}

	output, err := FormatReport(report, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), scanOutput, output); err != nil {
		return err
	}

	return checkFindings(report, scanFailOnFindings)
}

func checkFindings(report *query.Report, failOnFindings bool) error {
	if !failOnFindings || !report.HasFindings() {
		return nil
	}
	return &findingsError{
		deadExports: len(report.DeadExports),
		unusedDeps:  len(report.UnusedDependencies()),
	}
}
