//go:build cgo

// Package symbols turns TypeScript and JavaScript sources into the
// declaration lists consumed by module extraction, using tree-sitter.
package symbols

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

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
		return LangJavaScript, true // the JS grammar covers JSX
	default:
		return "", false
	}
}

func getLanguage(lang Language) *sitter.Language {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Options configures a Parser
type Options struct {
	// Timeout bounds a single parse; zero means no bound
	Timeout time.Duration
}

// Parser implements modules.DeclarationParser. A tree-sitter parser is not
// safe for concurrent use, so one is created per call.
type Parser struct {
	timeout time.Duration
}

// NewParser creates a declaration parser.
func NewParser(opts Options) *Parser {
	return &Parser{timeout: opts.Timeout}
}

// IsAvailable returns whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return true
}

// Parse parses source and returns its declarations. Files with syntax
// errors, unknown extensions or an exceeded timeout fail with PARSE_FAILED.
func (p *Parser) Parse(ctx context.Context, filePath string, source []byte) (*modules.FileDeclarations, error) {
	lang, ok := LanguageFromPath(filePath)
	if !ok {
		return nil, errors.Newf(errors.ParseFailed, "unsupported file type: %s", path.Base(filePath))
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(getLanguage(lang))

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseFailed, fmt.Sprintf("parse %s", path.Base(filePath)), err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		return nil, errors.Newf(errors.ParseFailed, "syntax error near line %d", line)
	}

	w := newWalker(source)
	decls := w.declarations(root)
	decls.Path = filePath
	return decls, nil
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return firstErrorLine(child)
		}
	}
	return int(n.StartPoint().Row) + 1
}
