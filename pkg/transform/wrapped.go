package transform

import "github.com/gnana997/observing-components/pkg/ast"

// IsAlreadyWrapped reports whether expr is a direct call to the wrapper bound
// as alias in the current module.
func IsAlreadyWrapped(expr ast.Expr, alias string) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok || call == nil {
		return false
	}
	ident, ok := call.Callee.(*ast.Ident)
	return ok && ident.Name == alias
}

// containsWrappedCall reports whether any expression in the module is
// already a call to name.
func containsWrappedCall(m *ast.Module, name string) bool {
	found := false
	for _, item := range m.Items {
		ast.Inspect(item, func(n ast.Node) bool {
			if found {
				return false
			}
			if e, ok := n.(ast.Expr); ok && IsAlreadyWrapped(e, name) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}
