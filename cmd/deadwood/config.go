package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"deadwood/internal/config"
	"deadwood/internal/errors"
	"deadwood/internal/modules"
)

var (
	configShowFormat string
	configShowDiff   bool
	configInitFormat string
	configInitForce  bool
	configInitKeep   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage deadwood configuration",
	Long:  "View and create deadwood configuration (deadwood.{json,yaml,toml} or .deadwood/config.json)",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after file loading and environment overrides.

Examples:
  deadwood config show               # Pretty-print current config
  deadwood config show --format json # Raw JSON output
  deadwood config show --diff        # Only show non-default values`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to the project directory.

Examples:
  deadwood config init                 # .deadwood/config.json
  deadwood config init --format toml   # deadwood.toml
  deadwood config init --keep          # also write an example .deadwood-keep.toml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Long:  "Display all supported DEADWOOD_* environment variable overrides",
	Args:  cobra.NoArgs,
	Run:   runConfigEnv,
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "human", "Output format (json, human)")
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")

	configInitCmd.Flags().StringVar(&configInitFormat, "format", "json", "File format (json, toml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitKeep, "keep", false, "Also write an example keep file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string                 `json:"configPath,omitempty"`
	UsedDefaults bool                   `json:"usedDefaults"`
	EnvOverrides []config.EnvOverride   `json:"envOverrides,omitempty"`
	Config       map[string]interface{} `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	result, err := loadConfig(dir)
	if err != nil {
		return err
	}

	current, err := toMap(result.Config)
	if err != nil {
		return err
	}
	if configShowDiff {
		defaults, err := toMap(config.DefaultConfig())
		if err != nil {
			return err
		}
		current = computeDiff(current, defaults)
	}

	out := cmd.OutOrStdout()
	switch configShowFormat {
	case "json":
		data, err := json.MarshalIndent(ConfigShowResponse{
			ConfigPath:   result.ConfigPath,
			UsedDefaults: result.UsedDefaults,
			EnvOverrides: result.EnvOverrides,
			Config:       current,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "human":
		outputConfigHuman(out, result, current)
	default:
		return fmt.Errorf("unsupported format: %s", configShowFormat)
	}
	return nil
}

func outputConfigHuman(w io.Writer, result *config.LoadResult, values map[string]interface{}) {
	fmt.Fprintln(w, styleTitle.Render("deadwood configuration"))
	fmt.Fprintln(w, strings.Repeat("─", 50))

	if result.UsedDefaults {
		fmt.Fprintln(w, "Source: defaults (no config file found)")
	} else if result.ConfigPath != "" {
		fmt.Fprintf(w, "Source: %s\n", result.ConfigPath)
	}

	if len(result.EnvOverrides) > 0 {
		fmt.Fprintln(w, "\nEnvironment Overrides:")
		for _, ov := range result.EnvOverrides {
			fmt.Fprintf(w, "  %s=%s → %s\n", ov.EnvVar, ov.FromValue, ov.Path)
		}
	}
	fmt.Fprintln(w)

	lines := flattenConfig(values, "")
	if len(lines) == 0 {
		fmt.Fprintln(w, "  (no modifications - using all defaults)")
	}
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styleDim.Render("Use 'deadwood config show --format json' for machine-readable output"))
	fmt.Fprintln(w, styleDim.Render("Use 'deadwood config env' to see supported environment variables"))
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	var target string
	switch configInitFormat {
	case "json":
		target = filepath.Join(dir, ".deadwood", "config.json")
	case "toml":
		target = filepath.Join(dir, "deadwood.toml")
	default:
		return fmt.Errorf("unsupported format: %s", configInitFormat)
	}

	if err := refuseOverwrite(target); err != nil {
		return err
	}
	if configInitFormat == "toml" {
		err = cfg.SaveTOML(dir)
	} else {
		err = cfg.Save(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)

	if !configInitKeep {
		return nil
	}
	keepPath := filepath.Join(dir, modules.KeepFileName)
	if err := refuseOverwrite(keepPath); err != nil {
		return err
	}
	if err := modules.WriteKeepFile(keepPath, exampleKeepFile()); err != nil {
		return fmt.Errorf("failed to write %s: %w", keepPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", keepPath)
	return nil
}

func refuseOverwrite(p string) error {
	if configInitForce {
		return nil
	}
	if _, err := os.Stat(p); err == nil {
		return errors.Newf(errors.ConfigInvalid, "%s already exists (use --force to overwrite)", p)
	}
	return nil
}

func exampleKeepFile() *modules.KeepFile {
	return &modules.KeepFile{
		Version: 1,
		Keep: []modules.KeepRule{
			{
				Path:   "src/index.ts",
				Reason: "package entry point",
			},
			{
				Path:   "src/plugins/**",
				Names:  []string{"register"},
				Reason: "loaded by name at runtime",
			},
		},
	}
}

func runConfigEnv(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleTitle.Render("Supported deadwood environment variables"))
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  %-38s %s\n", "DEADWOOD_CONFIG_PATH", "config file")
	for _, name := range config.GetSupportedEnvVars() {
		fmt.Fprintf(out, "  %-38s %s\n", name, config.EnvVarPath(name))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "List values are comma separated.")
	fmt.Fprintln(out, "Example usage:")
	fmt.Fprintln(out, "  DEADWOOD_LOG_LEVEL=debug deadwood scan")
	fmt.Fprintln(out, "  DEADWOOD_EXCLUDE='**/*.stories.tsx,scripts/**' deadwood scan")
}

func toMap(cfg *config.Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return m, nil
}

func computeDiff(current, defaults map[string]interface{}) map[string]interface{} {
	diff := make(map[string]interface{})
	for key, currentVal := range current {
		defaultVal, exists := defaults[key]
		if !exists {
			diff[key] = currentVal
			continue
		}

		currentMap, currentIsMap := currentVal.(map[string]interface{})
		defaultMap, defaultIsMap := defaultVal.(map[string]interface{})
		if currentIsMap && defaultIsMap {
			if nested := computeDiff(currentMap, defaultMap); len(nested) > 0 {
				diff[key] = nested
			}
		} else if fmt.Sprintf("%v", currentVal) != fmt.Sprintf("%v", defaultVal) {
			diff[key] = currentVal
		}
	}
	return diff
}

// flattenConfig renders nested values as sorted "a.b: value" lines.
func flattenConfig(values map[string]interface{}, prefix string) []string {
	var lines []string
	for key, val := range values {
		if nested, ok := val.(map[string]interface{}); ok {
			lines = append(lines, flattenConfig(nested, prefix+key+".")...)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s: %v", prefix, key, val))
	}
	sort.Strings(lines)
	return lines
}
