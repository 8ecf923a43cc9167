package main

import (
	"github.com/spf13/cobra"

	"deadwood/internal/config"
	"deadwood/internal/query"
	"deadwood/internal/symbols"
)

// analysisFlags are the config overrides shared by scan and deps.
type analysisFlags struct {
	root            string
	exclude         []string
	entrypoints     []string
	ignoreTestUsage bool
	workers         int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "Source root relative to the project directory")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Glob of report paths never reported (can be repeated)")
	cmd.Flags().StringSliceVar(&f.entrypoints, "entrypoint", nil, "Glob of public entry modules (can be repeated)")
	cmd.Flags().BoolVar(&f.ignoreTestUsage, "ignore-test-usage", false, "Do not count imports from test files as usage")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel parse workers (default: number of CPUs)")
}

// apply overrides cfg with every flag set on the command line.
func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = f.root
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, f.exclude...)
	}
	if flags.Changed("entrypoint") {
		cfg.Entrypoints = append(cfg.Entrypoints, f.entrypoints...)
	}
	if flags.Changed("ignore-test-usage") {
		cfg.IgnoreTestUsage = f.ignoreTestUsage
	}
	if flags.Changed("workers") {
		cfg.Parser.Workers = f.workers
	}
}

// runAnalysis loads configuration and performs one engine run.
func runAnalysis(cmd *cobra.Command, flags *analysisFlags) (*query.Report, error) {
	dir, err := projectDir()
	if err != nil {
		return nil, err
	}

	result, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}
	cfg := result.Config
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, asConfigInvalid(err)
	}

	logger := newLogger(cfg)
	logger.Debug("Configuration loaded", map[string]interface{}{
		"configPath":   result.ConfigPath,
		"usedDefaults": result.UsedDefaults,
		"envOverrides": len(result.EnvOverrides),
	})
	if !symbols.IsAvailable() {
		logger.Warn("Built without cgo; every file will be reported as unparsed", nil)
	}

	engine, err := query.NewEngine(dir, cfg, nil, logger)
	if err != nil {
		return nil, err
	}
	return engine.Run(cmd.Context())
}
