package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"deadwood/internal/deadcode"
	"deadwood/internal/query"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleDead    = lipgloss.NewStyle().Foreground(colorRed)
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML, FormatHuman:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// FormatReport renders a scan report
func FormatReport(report *query.Report, format OutputFormat) (string, error) {
	switch format {
	case FormatText:
		return report.Text(), nil
	case FormatJSON:
		return formatJSON(report)
	case FormatYAML:
		return formatYAML(report)
	case FormatHuman:
		return formatReportHuman(report), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

func formatReportHuman(report *query.Report) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Dead Export Analysis") + "\n")
	b.WriteString(strings.Repeat("━", 40) + "\n\n")

	s := report.Summary
	b.WriteString(fmt.Sprintf("Scanned %d files under %s: %d exports, %d used, %d dead",
		report.Files, report.Root, s.Exports, s.Used, s.Dead))
	if s.Kept > 0 || s.Excluded > 0 {
		b.WriteString(fmt.Sprintf(" (%d kept, %d excluded)", s.Kept, s.Excluded))
	}
	b.WriteString("\n\n")

	if len(report.DeadExports) == 0 {
		b.WriteString(styleOK.Render("✓ No dead exports found.") + "\n")
	} else {
		b.WriteString(styleHeading.Render(fmt.Sprintf("Dead exports (%d):", len(report.DeadExports))) + "\n")
		currentPath := ""
		for _, d := range report.DeadExports {
			if d.Path != currentPath {
				currentPath = d.Path
				b.WriteString("\n  " + currentPath + "\n")
			}
			loc := ""
			if d.Line > 0 {
				loc = styleDim.Render(fmt.Sprintf(":%d", d.Line))
			}
			b.WriteString(fmt.Sprintf("    %s %s %s%s\n", styleDead.Render("✗"), d.Kind, d.Name, loc))
		}
	}
	b.WriteString("\n")

	b.WriteString(formatDepsHuman(report, false))

	if len(report.Diagnostics) > 0 {
		b.WriteString("\n" + styleHeading.Render(fmt.Sprintf("Diagnostics (%d):", len(report.Diagnostics))) + "\n")
		for _, d := range report.Diagnostics {
			loc := d.Path
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d", d.Path, d.Line)
			}
			b.WriteString(fmt.Sprintf("  %s %s %s", styleWarning.Render("!"), loc, d.Kind))
			if d.Specifier != "" {
				b.WriteString(" " + d.Specifier)
			}
			if d.Message != "" {
				b.WriteString(": " + d.Message)
			}
			b.WriteString("\n")
		}
	}

	t := report.Timings
	b.WriteString("\n" + styleDim.Render(fmt.Sprintf("Run %s in %dms (discover %dms, parse %dms, build %dms, analyze %dms)",
		report.RunID, t.TotalMs, t.DiscoverMs, t.ParseMs, t.BuildMs, t.AnalyzeMs)) + "\n")
	return b.String()
}

// FormatDeps renders the dependency part of a report. all includes used
// dependencies.
func FormatDeps(report *query.Report, format OutputFormat, all bool) (string, error) {
	deps := report.Dependencies
	if deps == nil {
		deps = &deadcode.DepsResult{}
	}
	view := deps
	if !all {
		view = &deadcode.DepsResult{Unused: deps.Unused, Undeclared: deps.Undeclared}
	}

	switch format {
	case FormatText:
		return formatDepsText(deps, all), nil
	case FormatJSON:
		return formatJSON(view)
	case FormatYAML:
		return formatYAML(view)
	case FormatHuman:
		return formatDepsHuman(report, all), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatDepsText(deps *deadcode.DepsResult, all bool) string {
	var b strings.Builder
	if !all {
		for _, name := range deps.UnusedNames() {
			b.WriteString(name + "\n")
		}
		return b.String()
	}
	for _, d := range deps.Dependencies {
		state := "used"
		if !d.Used {
			state = "unused"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", d.Name, d.Version, d.Section, state))
	}
	return b.String()
}

func formatDepsHuman(report *query.Report, all bool) string {
	var b strings.Builder
	if !report.ManifestFound {
		b.WriteString(styleDim.Render("No manifest found; dependency tracking skipped.") + "\n")
		return b.String()
	}

	deps := report.Dependencies
	if deps == nil || len(deps.Unused) == 0 {
		b.WriteString(styleOK.Render("✓ Every declared dependency is imported.") + "\n")
	} else {
		b.WriteString(styleHeading.Render(fmt.Sprintf("Unused dependencies (%d):", len(deps.Unused))) + "\n")
		for _, d := range deps.Unused {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", styleDead.Render("✗"), d.Name, styleDim.Render(string(d.Section))))
		}
	}

	if all && deps != nil {
		b.WriteString("\n" + styleHeading.Render("Used dependencies:") + "\n")
		for _, d := range deps.Dependencies {
			if d.Used {
				b.WriteString(fmt.Sprintf("  %s %s %s\n", styleOK.Render("✓"), d.Name, styleDim.Render(d.Version)))
			}
		}
	}

	if deps != nil && len(deps.Undeclared) > 0 {
		b.WriteString("\n" + styleHeading.Render(fmt.Sprintf("Imported but not declared (%d):", len(deps.Undeclared))) + "\n")
		for _, name := range deps.Undeclared {
			b.WriteString(fmt.Sprintf("  %s %s\n", styleWarning.Render("!"), name))
		}
	}
	return b.String()
}
