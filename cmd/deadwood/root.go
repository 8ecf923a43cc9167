package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"deadwood/internal/config"
	"deadwood/internal/errors"
	"deadwood/internal/logging"
	"deadwood/internal/version"
)

var (
	projectFlag   string
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "deadwood",
	Short: "deadwood - unused export and dependency finder",
	Long: `deadwood scans a TypeScript/JavaScript source tree, builds the module
graph from import and export declarations, and reports exports that no module
consumes and declared dependencies that no module imports.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("deadwood version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "C", "",
		"Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Config file (default: deadwood.{json,yaml,toml} in the project directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human, json")
}

// projectDir returns the absolute project directory.
func projectDir() (string, error) {
	dir := projectFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.New(errors.RootNotFound, "cannot determine working directory", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.New(errors.RootNotFound, "cannot resolve project directory", err)
	}
	return abs, nil
}

// loadConfig loads the project config and applies the logging flags.
func loadConfig(dir string) (*config.LoadResult, error) {
	result, err := config.LoadConfigWithDetails(dir, configFlag)
	if err != nil {
		return nil, asConfigInvalid(err)
	}
	if logLevelFlag != "" {
		result.Config.Logging.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		result.Config.Logging.Format = logFormatFlag
	}
	return result, nil
}

func asConfigInvalid(err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.New(errors.ConfigInvalid, "invalid configuration", err)
}

// newLogger creates the stderr logger described by cfg.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}
