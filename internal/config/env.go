package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// EnvOverride records one environment variable applied on top of the file config
type EnvOverride struct {
	EnvVar    string      `json:"envVar"`
	Path      string      `json:"path"`
	FromValue string      `json:"fromValue"`
	Value     interface{} `json:"value"`
}

type envKind int

const (
	envString envKind = iota
	envInt
	envBool
	envList
)

type envMapping struct {
	path string
	kind envKind
}

var envVarMappings = map[string]envMapping{
	"DEADWOOD_ROOT":                      {"root", envString},
	"DEADWOOD_ROOT_MARKER":               {"rootMarker", envString},
	"DEADWOOD_KEEP_FILE":                 {"keepFile", envString},
	"DEADWOOD_EXCLUDE":                   {"exclude", envList},
	"DEADWOOD_ENTRYPOINTS":               {"entrypoints", envList},
	"DEADWOOD_IGNORE_TEST_USAGE":         {"ignoreTestUsage", envBool},
	"DEADWOOD_TSCONFIG":                  {"aliases.tsconfig", envString},
	"DEADWOOD_BASE_URL":                  {"aliases.baseUrl", envString},
	"DEADWOOD_MANIFEST":                  {"manifest.path", envString},
	"DEADWOOD_MANIFEST_INCLUDE_DEV":      {"manifest.includeDev", envBool},
	"DEADWOOD_MANIFEST_INCLUDE_PEER":     {"manifest.includePeer", envBool},
	"DEADWOOD_MANIFEST_INCLUDE_OPTIONAL": {"manifest.includeOptional", envBool},
	"DEADWOOD_MANIFEST_IMPLY_TYPES":      {"manifest.implyTypes", envBool},
	"DEADWOOD_PARSER_WORKERS":            {"parser.workers", envInt},
	"DEADWOOD_PARSER_MAX_FILE_SIZE":      {"parser.maxFileSizeBytes", envInt},
	"DEADWOOD_PARSER_TIMEOUT_MS":         {"parser.timeoutMs", envInt},
	"DEADWOOD_LOG_LEVEL":                 {"logging.level", envString},
	"DEADWOOD_LOG_FORMAT":                {"logging.format", envString},
}

// GetSupportedEnvVars returns the sorted names of all recognised variables.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings))
	for name := range envVarMappings {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// EnvVarPath returns the config path an environment variable maps to.
func EnvVarPath(name string) string {
	return envVarMappings[name].path
}

// applyEnvOverrides applies every set DEADWOOD_* variable to cfg. Values
// that fail to parse are skipped.
func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for _, name := range GetSupportedEnvVars() {
		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		mapping := envVarMappings[name]

		var value interface{}
		switch mapping.kind {
		case envInt:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			value = n
		case envBool:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			value = b
		case envList:
			value = splitList(raw)
		default:
			value = raw
		}

		if applyOverride(cfg, mapping.path, value) {
			overrides = append(overrides, EnvOverride{
				EnvVar:    name,
				Path:      mapping.path,
				FromValue: raw,
				Value:     value,
			})
		}
	}
	return overrides
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applyOverride sets the field at a dotted path. It returns false for an
// unknown path or a value of the wrong type.
func applyOverride(cfg *Config, path string, value interface{}) bool {
	parts := strings.Split(path, ".")

	switch parts[0] {
	case "root":
		return len(parts) == 1 && setString(&cfg.Root, value)
	case "rootMarker":
		return len(parts) == 1 && setString(&cfg.RootMarker, value)
	case "keepFile":
		return len(parts) == 1 && setString(&cfg.KeepFile, value)
	case "exclude":
		return len(parts) == 1 && setList(&cfg.Exclude, value)
	case "entrypoints":
		return len(parts) == 1 && setList(&cfg.Entrypoints, value)
	case "ignoreTestUsage":
		return len(parts) == 1 && setBool(&cfg.IgnoreTestUsage, value)
	case "aliases":
		if len(parts) != 2 {
			return false
		}
		switch parts[1] {
		case "tsconfig":
			return setString(&cfg.Aliases.Tsconfig, value)
		case "baseUrl":
			return setString(&cfg.Aliases.BaseURL, value)
		}
	case "manifest":
		if len(parts) != 2 {
			return false
		}
		switch parts[1] {
		case "path":
			return setString(&cfg.Manifest.Path, value)
		case "includeDev":
			return setBool(&cfg.Manifest.IncludeDev, value)
		case "includePeer":
			return setBool(&cfg.Manifest.IncludePeer, value)
		case "includeOptional":
			return setBool(&cfg.Manifest.IncludeOptional, value)
		case "implyTypes":
			return setBool(&cfg.Manifest.ImplyTypes, value)
		}
	case "parser":
		if len(parts) != 2 {
			return false
		}
		switch parts[1] {
		case "workers":
			return setInt(&cfg.Parser.Workers, value)
		case "maxFileSizeBytes":
			return setInt(&cfg.Parser.MaxFileSizeBytes, value)
		case "timeoutMs":
			return setInt(&cfg.Parser.TimeoutMs, value)
		}
	case "logging":
		if len(parts) != 2 {
			return false
		}
		switch parts[1] {
		case "level":
			return setString(&cfg.Logging.Level, value)
		case "format":
			return setString(&cfg.Logging.Format, value)
		}
	}
	return false
}

func setString(dst *string, value interface{}) bool {
	s, ok := value.(string)
	if ok {
		*dst = s
	}
	return ok
}

func setInt(dst *int, value interface{}) bool {
	n, ok := value.(int)
	if ok {
		*dst = n
	}
	return ok
}

func setBool(dst *bool, value interface{}) bool {
	b, ok := value.(bool)
	if ok {
		*dst = b
	}
	return ok
}

func setList(dst *[]string, value interface{}) bool {
	l, ok := value.([]string)
	if ok {
		*dst = l
	}
	return ok
}
