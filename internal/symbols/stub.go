//go:build !cgo

// Package symbols turns TypeScript and JavaScript sources into the
// declaration lists consumed by module extraction, using tree-sitter.
// This stub is used when CGO is not available.
package symbols

import (
	"context"
	"path"
	"strings"
	"time"

	"deadwood/internal/errors"
	"deadwood/internal/modules"
)

// Language identifies the grammar used for a file
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// LanguageFromPath returns the grammar for a file name.
func LanguageFromPath(p string) (Language, bool) {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	default:
		return "", false
	}
}

// Options configures a Parser
type Options struct {
	Timeout time.Duration
}

// Parser is a stub when CGO is not available; every parse fails.
type Parser struct{}

// NewParser creates a declaration parser.
func NewParser(opts Options) *Parser {
	return &Parser{}
}

// IsAvailable returns whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return false
}

// Parse always fails with PARSE_FAILED when CGO is not available.
func (p *Parser) Parse(ctx context.Context, filePath string, source []byte) (*modules.FileDeclarations, error) {
	return nil, errors.New(errors.ParseFailed, "tree-sitter parsing requires a cgo build", nil)
}
