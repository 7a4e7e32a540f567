package parser

import (
	"path/filepath"
	"strings"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammar identifies the tree-sitter grammar a file is parsed with.
type Grammar int

const (
	// GrammarUnknown marks files the front end does not handle.
	GrammarUnknown Grammar = iota
	// GrammarJavaScript parses .js, .jsx, .mjs and .cjs files. JSX is part
	// of the grammar.
	GrammarJavaScript
	// GrammarTypeScript parses .ts, .mts and .cts files, which cannot
	// contain JSX.
	GrammarTypeScript
	// GrammarTSX parses .tsx files.
	GrammarTSX
)

// String returns the grammar name.
func (g Grammar) String() string {
	switch g {
	case GrammarJavaScript:
		return "javascript"
	case GrammarTypeScript:
		return "typescript"
	case GrammarTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// SupportsJSX reports whether the grammar accepts JSX syntax.
func (g Grammar) SupportsJSX() bool {
	return g == GrammarJavaScript || g == GrammarTSX
}

// pointer returns the tree-sitter language of g.
func (g Grammar) pointer() (unsafe.Pointer, bool) {
	switch g {
	case GrammarJavaScript:
		return ts_javascript.Language(), true
	case GrammarTypeScript:
		return ts_typescript.LanguageTypescript(), true
	case GrammarTSX:
		return ts_typescript.LanguageTSX(), true
	default:
		return nil, false
	}
}

// Language returns the tree-sitter language of g, or nil for
// GrammarUnknown. Queries are compiled against it.
func (g Grammar) Language() *ts.Language {
	ptr, ok := g.pointer()
	if !ok {
		return nil
	}
	return ts.NewLanguage(ptr)
}

// DetectGrammar picks the grammar from a file extension, case-insensitively.
func DetectGrammar(filePath string) Grammar {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return GrammarJavaScript
	case ".ts", ".mts", ".cts":
		return GrammarTypeScript
	case ".tsx":
		return GrammarTSX
	default:
		return GrammarUnknown
	}
}

// IsSourceFile reports whether filePath has an extension the front end parses.
func IsSourceFile(filePath string) bool {
	return DetectGrammar(filePath) != GrammarUnknown
}

// ParseGrammarString converts a grammar name or its usual abbreviation.
func ParseGrammarString(name string) Grammar {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "javascript", "js", "jsx":
		return GrammarJavaScript
	case "typescript", "ts":
		return GrammarTypeScript
	case "tsx":
		return GrammarTSX
	default:
		return GrammarUnknown
	}
}

// SupportedGrammars lists every grammar the front end can parse.
func SupportedGrammars() []Grammar {
	return []Grammar{GrammarJavaScript, GrammarTypeScript, GrammarTSX}
}

// SourceExtensions lists the extensions DetectGrammar recognizes.
func SourceExtensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}
}
