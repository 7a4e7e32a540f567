package transform

import "github.com/gnana997/observing-components/pkg/ast"

// importState is the per-invocation bookkeeping of the import manager.
// It is created by Run and dropped when Run returns.
type importState struct {
	// alias is the local name the wrapper is reachable under.
	alias string

	// ensured is true once the module is known to import the wrapper,
	// either because an import exists or one will be inserted.
	ensured bool

	// found is true when an existing import specifier supplied the alias.
	found bool

	// insert is true when a new import must be placed at index 0.
	insert bool

	// needed is false when the module has nothing to wrap.
	needed bool
}

// resolveImport decides how the wrapper is reached in m.
//
// An existing named import of the wrapper wins, and when several exist the
// first one in source order supplies the alias; later ones are not looked
// at. A call to the wrapper already present in the module also counts as
// an import. Otherwise an import is inserted when the module has JSX.
func resolveImport(m *ast.Module, cfg Config) importState {
	st := importState{alias: cfg.WrapperName}

	if local, ok := findWrapperImport(m, cfg.WrapperName); ok {
		st.alias = local
		st.ensured = true
		st.found = true
	}

	if containsWrappedCall(m, cfg.WrapperName) {
		st.ensured = true
	}

	st.needed = ModuleContainsJSX(m) ||
		(cfg.WrapObjectProperties && moduleHasComponentObjects(m))
	if st.needed && !st.ensured {
		st.insert = true
		st.ensured = true
	}
	return st
}

// findWrapperImport returns the local name of the first named import
// specifier whose imported name is wrapperName.
func findWrapperImport(m *ast.Module, wrapperName string) (string, bool) {
	for _, item := range m.Items {
		decl, ok := item.(*ast.ImportDecl)
		if !ok || decl.TypeOnly {
			continue
		}
		for _, spec := range decl.Specifiers {
			if spec.Kind != ast.ImportNamed || spec.TypeOnly {
				continue
			}
			if spec.ImportedName() == wrapperName {
				return spec.Local, true
			}
		}
	}
	return "", false
}

// moduleHasComponentObjects reports whether a variable initializer is an
// object literal holding a JSX-returning function under a component key.
func moduleHasComponentObjects(m *ast.Module) bool {
	for _, item := range m.Items {
		vd := varDeclOf(item)
		if vd == nil {
			continue
		}
		for _, d := range vd.Declarators {
			obj, ok := d.Init.(*ast.ObjectExpr)
			if !ok {
				continue
			}
			for _, p := range obj.Props {
				if p.Value != nil && isComponentKey(p.Key) && isFunctionLike(p.Value) && ContainsJSX(p.Value) {
					return true
				}
			}
		}
	}
	return false
}

// varDeclOf unwraps an exported variable declaration.
func varDeclOf(item ast.Stmt) *ast.VarDecl {
	switch it := item.(type) {
	case *ast.VarDecl:
		return it
	case *ast.ExportDecl:
		vd, _ := it.Decl.(*ast.VarDecl)
		return vd
	default:
		return nil
	}
}
