package ast

// NewIdent returns a synthesized identifier.
func NewIdent(name string) *Ident {
	return &Ident{Name: name}
}

// NewCall returns a synthesized call expression.
func NewCall(callee Expr, args ...Expr) *CallExpr {
	return &CallExpr{Callee: callee, Args: args}
}

// NewNamedImport returns `import { name } from "source";`.
func NewNamedImport(name, source string) *ImportDecl {
	return &ImportDecl{
		Specifiers: []ImportSpecifier{{Kind: ImportNamed, Local: name}},
		Source:     source,
	}
}

// WrapCall returns `callee(e)`. The call takes over e's location and is
// marked edited, so a parent being spliced replaces exactly e's text.
func WrapCall(callee string, e Expr) *CallExpr {
	call := NewCall(NewIdent(callee), e)
	call.Loc = LocOf(e)
	call.Edited = true
	return call
}

// FuncExprOf converts a declared function into an equivalent function
// expression. The expression reuses the declaration's text range, which
// reads the same in expression position.
func FuncExprOf(name string, fn *Function) *FuncExpr {
	fe := &FuncExpr{Name: name, Func: fn}
	if fn != nil {
		fe.Loc = fn.Loc
	}
	return fe
}
