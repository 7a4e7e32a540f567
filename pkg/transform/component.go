package transform

import (
	"unicode"
	"unicode/utf8"

	"github.com/gnana997/observing-components/pkg/ast"
)

// IsComponentName reports whether name follows the UI component convention
// of starting with an uppercase letter.
func IsComponentName(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// isComponentKey classifies an object property key: { Foo: }, { [Foo]: }
// and { [Page.Foo]: } name components, string and numeric keys never do.
func isComponentKey(key ast.PropertyKey) bool {
	switch key.Kind {
	case ast.KeyIdent, ast.KeyComputed:
		return IsComponentName(key.Name)
	default:
		return false
	}
}
