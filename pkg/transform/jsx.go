package transform

import "github.com/gnana997/observing-components/pkg/ast"

// ContainsJSX reports whether n holds JSX markup directly or inside a nested
// function body reachable through returns, blocks and call arguments.
//
// The check is structural and deliberately shallow: statements other than
// blocks, returns, expression statements, function and variable declarations
// are never searched, so JSX behind an `if` does not count.
func ContainsJSX(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.JSXElement:
		return true
	case *ast.ParenExpr:
		return ContainsJSX(n.Inner)
	case *ast.FuncExpr:
		return functionContainsJSX(n.Func)
	case *ast.ArrowExpr:
		return ContainsJSX(n.Body)
	case *ast.CallExpr:
		for _, arg := range n.Args {
			if ContainsJSX(arg) {
				return true
			}
		}
		return false
	case *ast.BlockStmt:
		if n == nil {
			return false
		}
		for _, stmt := range n.Stmts {
			if ContainsJSX(stmt) {
				return true
			}
		}
		return false
	case *ast.ReturnStmt:
		return n.Arg != nil && ContainsJSX(n.Arg)
	case *ast.ExprStmt:
		return ContainsJSX(n.Expr)
	case *ast.FuncDecl:
		return functionContainsJSX(n.Func)
	case *ast.VarDecl:
		for _, d := range n.Declarators {
			if d.Init != nil && ContainsJSX(d.Init) {
				return true
			}
		}
		return false
	case *ast.ExportDecl:
		return ContainsJSX(n.Decl)
	case *ast.ExportDefaultDecl:
		return functionContainsJSX(n.Func)
	case *ast.ExportDefaultExpr:
		return ContainsJSX(n.Expr)
	default:
		return false
	}
}

func functionContainsJSX(fn *ast.Function) bool {
	if fn == nil || fn.Body == nil {
		return false
	}
	return ContainsJSX(fn.Body)
}

// ModuleContainsJSX reports whether any top-level item contains JSX.
func ModuleContainsJSX(m *ast.Module) bool {
	for _, item := range m.Items {
		if ContainsJSX(item) {
			return true
		}
	}
	return false
}

// isFunctionLike reports whether e is a function or arrow expression.
func isFunctionLike(e ast.Expr) bool {
	switch e.(type) {
	case *ast.FuncExpr, *ast.ArrowExpr:
		return true
	default:
		return false
	}
}
