package modules

// ResolutionKind represents the classification of a resolved specifier
type ResolutionKind string

const (
	// Local represents a specifier that resolved to a discovered file
	Local ResolutionKind = "local"

	// External represents a bare specifier naming a package
	External ResolutionKind = "external"

	// Builtin represents a runtime builtin (node:fs, path, ...)
	Builtin ResolutionKind = "builtin"

	// Unresolved represents a path-like specifier that matched no file
	Unresolved ResolutionKind = "unresolved"
)

// ResolutionStep names the rule that produced a resolution
type ResolutionStep string

const (
	StepAlias    ResolutionStep = "alias"
	StepRelative ResolutionStep = "relative"
	StepRoot     ResolutionStep = "root-marker"
	StepBaseURL  ResolutionStep = "base-url"
	StepBare     ResolutionStep = "bare"
)

// Resolution is the outcome of resolving one specifier from one origin
type Resolution struct {
	Kind ResolutionKind `json:"kind"`

	// Module is set when Kind is Local
	Module ModuleID `json:"module,omitempty"`

	// Package is set when Kind is External or Builtin
	Package string `json:"package,omitempty"`

	Step ResolutionStep `json:"step"`
}

// IsExternal returns true if the specifier names an external package
func (r Resolution) IsExternal() bool {
	return r.Kind == External
}
