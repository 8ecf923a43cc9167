// Package errors defines the error taxonomy of a deadwood run.
//
// Only configuration and root-level errors are fatal. Per-file and per-edge
// errors carry the same type but are turned into diagnostics by the caller.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates a malformed config file, alias table or manifest
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// RootNotFound indicates the source root is missing or not a directory
	RootNotFound ErrorCode = "ROOT_NOT_FOUND"
	// ParseFailed indicates one file's declaration list could not be produced
	ParseFailed ErrorCode = "PARSE_FAILED"
	// DuplicateExport indicates two direct exports share one external name
	DuplicateExport ErrorCode = "DUPLICATE_EXPORT"
	// ImportUnresolved indicates a specifier matched no discovered file
	ImportUnresolved ErrorCode = "IMPORT_UNRESOLVED"
	// Canceled indicates the run was interrupted before the graph was built
	Canceled ErrorCode = "CANCELED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a configuration file
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Error represents a deadwood error with code, message, and suggestions
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new Error carrying the default fixes for its code.
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a new Error without a cause and a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from err, or "" when err is not an *Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ConfigInvalid, RootNotFound, Canceled, InternalError:
		return true
	case "":
		return err != nil
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "deadwood config show",
			Description: "Inspect the effective configuration",
		},
	},
	RootNotFound: {
		{
			Type:        RunCommand,
			Command:     "deadwood scan --root <dir>",
			Description: "Point the scan at an existing source directory",
		},
	},
	DuplicateExport: {
		{
			Type:        EditFile,
			Description: "Remove or rename one of the duplicate exports",
		},
	},
	ImportUnresolved: {
		{
			Type:        EditFile,
			Path:        "tsconfig.json",
			Description: "Check compilerOptions.paths and baseUrl",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
