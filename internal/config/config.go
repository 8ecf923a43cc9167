package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// SupportedConfigVersions lists schema versions LoadConfig accepts.
var SupportedConfigVersions = []int{1}

// Config represents the complete deadwood configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" toml:"version"`

	// Root is the source directory to scan, relative to the project directory.
	Root        string   `json:"root" mapstructure:"root" toml:"root"`
	Extensions  []string `json:"extensions" mapstructure:"extensions" toml:"extensions"`
	Ignore      []string `json:"ignore" mapstructure:"ignore" toml:"ignore"`
	Exclude     []string `json:"exclude" mapstructure:"exclude" toml:"exclude"`
	Entrypoints []string `json:"entrypoints" mapstructure:"entrypoints" toml:"entrypoints"`
	RootMarker  string   `json:"rootMarker" mapstructure:"rootMarker" toml:"rootMarker"`
	KeepFile    string   `json:"keepFile" mapstructure:"keepFile" toml:"keepFile"`

	IgnoreTestUsage bool `json:"ignoreTestUsage" mapstructure:"ignoreTestUsage" toml:"ignoreTestUsage"`

	Resolve  ResolveConfig  `json:"resolve" mapstructure:"resolve" toml:"resolve"`
	Aliases  AliasesConfig  `json:"aliases" mapstructure:"aliases" toml:"aliases"`
	Manifest ManifestConfig `json:"manifest" mapstructure:"manifest" toml:"manifest"`
	Parser   ParserConfig   `json:"parser" mapstructure:"parser" toml:"parser"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging" toml:"logging"`
}

// ResolveConfig controls how specifiers are probed against discovered files
type ResolveConfig struct {
	Suffixes         []string `json:"suffixes" mapstructure:"suffixes" toml:"suffixes"`
	IgnoreExtensions []string `json:"ignoreExtensions" mapstructure:"ignoreExtensions" toml:"ignoreExtensions"`
}

// AliasesConfig holds path-mapping rules. Rules are a list, not a map, so
// their order survives loading.
type AliasesConfig struct {
	Tsconfig string      `json:"tsconfig" mapstructure:"tsconfig" toml:"tsconfig"`
	BaseURL  string      `json:"baseUrl" mapstructure:"baseUrl" toml:"baseUrl"`
	Rules    []AliasRule `json:"rules" mapstructure:"rules" toml:"rules"`
}

// AliasRule maps a specifier pattern to one or more target patterns.
// A trailing "*" makes the pattern a prefix match.
type AliasRule struct {
	Pattern string   `json:"pattern" mapstructure:"pattern" toml:"pattern"`
	Targets []string `json:"targets" mapstructure:"targets" toml:"targets"`
}

// ManifestConfig selects the dependency manifest and its sections
type ManifestConfig struct {
	Path            string `json:"path" mapstructure:"path" toml:"path"`
	IncludeDev      bool   `json:"includeDev" mapstructure:"includeDev" toml:"includeDev"`
	IncludePeer     bool   `json:"includePeer" mapstructure:"includePeer" toml:"includePeer"`
	IncludeOptional bool   `json:"includeOptional" mapstructure:"includeOptional" toml:"includeOptional"`
	ImplyTypes      bool   `json:"implyTypes" mapstructure:"implyTypes" toml:"implyTypes"`
}

// ParserConfig bounds the parallel parse phase
type ParserConfig struct {
	Workers          int `json:"workers" mapstructure:"workers" toml:"workers"`
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes" toml:"maxFileSizeBytes"`
	TimeoutMs        int `json:"timeoutMs" mapstructure:"timeoutMs" toml:"timeoutMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentVersion,
		Root:        "src",
		Extensions:  []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		Ignore:      []string{"node_modules", ".git", "dist", "build", "out", "coverage"},
		Exclude:     []string{},
		Entrypoints: []string{},
		RootMarker:  "~/",
		KeepFile:    ".deadwood-keep.toml",
		Resolve: ResolveConfig{
			Suffixes: []string{
				"", ".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs",
				"/index.ts", "/index.tsx", "/index.d.ts", "/index.js", "/index.jsx",
			},
			IgnoreExtensions: []string{".css", ".scss", ".sass", ".less", ".svg", ".png", ".jpg", ".json"},
		},
		Aliases: AliasesConfig{
			Tsconfig: "tsconfig.json",
			Rules:    []AliasRule{},
		},
		Manifest: ManifestConfig{
			Path:       "package.json",
			ImplyTypes: true,
		},
		Parser: ParserConfig{
			Workers:          0, // 0 means runtime.NumCPU()
			MaxFileSizeBytes: 1000000,
			TimeoutMs:        5000,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// configCandidates are probed in order when no explicit file is given.
var configCandidates = []string{
	"deadwood.json",
	"deadwood.yaml",
	"deadwood.yml",
	"deadwood.toml",
	filepath.Join(".deadwood", "config.json"),
}

// LoadResult contains the loaded config and metadata about how it was loaded
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfig loads the configuration for projectDir. An explicit file wins
// over the candidate search; a missing candidate yields defaults.
func LoadConfig(projectDir, explicit string) (*Config, error) {
	result, err := LoadConfigWithDetails(projectDir, explicit)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads the configuration and reports where it came
// from. DEADWOOD_CONFIG_PATH acts as an explicit file when none is given.
func LoadConfigWithDetails(projectDir, explicit string) (*LoadResult, error) {
	if explicit == "" {
		explicit = os.Getenv("DEADWOOD_CONFIG_PATH")
	}

	result := &LoadResult{}
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(projectDir, explicit)
		}
		cfg, err := loadConfigFromPath(explicit)
		if err != nil {
			return nil, err
		}
		result.Config = cfg
		result.ConfigPath = explicit
	} else {
		for _, name := range configCandidates {
			candidate := filepath.Join(projectDir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			cfg, err := loadConfigFromPath(candidate)
			if err != nil {
				return nil, err
			}
			result.Config = cfg
			result.ConfigPath = candidate
			break
		}
	}

	if result.Config == nil {
		result.Config = DefaultConfig()
		result.UsedDefaults = true
	}

	result.EnvOverrides = applyEnvOverrides(result.Config)

	if err := result.Config.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func loadConfigFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("cannot read %s: %v", path, err)}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("cannot decode %s: %v", path, err)}
	}
	return cfg, nil
}

// Save writes the configuration to .deadwood/config.json
func (c *Config) Save(projectDir string) error {
	configPath := filepath.Join(projectDir, ".deadwood", "config.json")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTOML writes the configuration to deadwood.toml
func (c *Config) SaveTOML(projectDir string) error {
	configPath := filepath.Join(projectDir, "deadwood.toml")

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	return encoder.Encode(c)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	supported := false
	for _, v := range SupportedConfigVersions {
		if c.Version == v {
			supported = true
			break
		}
	}
	if !supported {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}

	if strings.TrimSpace(c.Root) == "" {
		return &ConfigError{Field: "root", Message: "source root must not be empty"}
	}
	if len(c.Extensions) == 0 {
		return &ConfigError{Field: "extensions", Message: "at least one extension is required"}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{Field: "extensions", Message: fmt.Sprintf("extension %q must start with '.'", ext)}
		}
	}
	if len(c.Resolve.Suffixes) == 0 {
		return &ConfigError{Field: "resolve.suffixes", Message: "at least one probe suffix is required"}
	}

	for i, rule := range c.Aliases.Rules {
		field := fmt.Sprintf("aliases.rules[%d]", i)
		if rule.Pattern == "" {
			return &ConfigError{Field: field, Message: "pattern must not be empty"}
		}
		if strings.Count(rule.Pattern, "*") > 1 {
			return &ConfigError{Field: field, Message: "pattern may contain at most one '*'"}
		}
		if len(rule.Targets) == 0 {
			return &ConfigError{Field: field, Message: "at least one target is required"}
		}
		for _, target := range rule.Targets {
			if strings.Count(target, "*") > 1 {
				return &ConfigError{Field: field, Message: fmt.Sprintf("target %q may contain at most one '*'", target)}
			}
		}
	}

	if c.Parser.Workers < 0 {
		return &ConfigError{Field: "parser.workers", Message: "must not be negative"}
	}
	if c.Parser.MaxFileSizeBytes <= 0 {
		return &ConfigError{Field: "parser.maxFileSizeBytes", Message: "must be positive"}
	}
	if c.Parser.TimeoutMs < 0 {
		return &ConfigError{Field: "parser.timeoutMs", Message: "must not be negative"}
	}

	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
