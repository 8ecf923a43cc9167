package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"deadwood/internal/errors"
)

const (
	exitOK          = 0
	exitError       = 1
	exitFindings    = 2
	exitInterrupted = 130
)

// findingsError signals --fail-on-findings with a non-empty report.
type findingsError struct {
	deadExports int
	unusedDeps  int
}

func (e *findingsError) Error() string {
	return fmt.Sprintf("%d dead exports, %d unused dependencies", e.deadExports, e.unusedDeps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(os.Stderr, err))
}

// exitCode maps a command error to the process exit status, printing it
// to w unless it only signals findings.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	if _, ok := err.(*findingsError); ok {
		return exitFindings
	}
	if errors.Is(err, errors.Canceled) {
		fmt.Fprintln(w, "Interrupted")
		return exitInterrupted
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	for _, fix := range errors.GetSuggestedFixes(errors.GetCode(err)) {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  Try: %s (%s)\n", fix.Command, fix.Description)
		case fix.Path != "":
			fmt.Fprintf(w, "  Check %s: %s\n", fix.Path, fix.Description)
		default:
			fmt.Fprintf(w, "  %s\n", fix.Description)
		}
	}
	return exitError
}
