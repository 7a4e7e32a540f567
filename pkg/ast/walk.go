package ast

// Children returns the direct child nodes of n in source order.
//
// Only children that are themselves nodes are listed; signature text,
// binding text and keys live on the parent and are never rewritten.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *VarDecl:
		out := make([]Node, 0, len(n.Declarators))
		for _, d := range n.Declarators {
			out = append(out, d)
		}
		return out
	case *VarDeclarator:
		if n.Init == nil {
			return nil
		}
		return []Node{n.Init}
	case *ExportDecl:
		if n.Decl == nil {
			return nil
		}
		return []Node{n.Decl}
	case *ExportDefaultExpr:
		return []Node{n.Expr}
	case *ExportDefaultDecl:
		return funcChildren(n.Func)
	case *FuncDecl:
		return funcChildren(n.Func)
	case *FuncExpr:
		return funcChildren(n.Func)
	case *ArrowExpr:
		if n.Body == nil {
			return nil
		}
		return []Node{n.Body}
	case *BlockStmt:
		out := make([]Node, 0, len(n.Stmts))
		for _, s := range n.Stmts {
			out = append(out, s)
		}
		return out
	case *ReturnStmt:
		if n.Arg == nil {
			return nil
		}
		return []Node{n.Arg}
	case *ExprStmt:
		return []Node{n.Expr}
	case *CallExpr:
		out := make([]Node, 0, len(n.Args)+1)
		out = append(out, n.Callee)
		for _, a := range n.Args {
			out = append(out, a)
		}
		return out
	case *ParenExpr:
		return []Node{n.Inner}
	case *ObjectExpr:
		out := make([]Node, 0, len(n.Props))
		for _, p := range n.Props {
			out = append(out, p)
		}
		return out
	case *Property:
		if n.Value == nil {
			return nil
		}
		return []Node{n.Value}
	default:
		// Imports, identifiers, JSX and opaque nodes are leaves.
		return nil
	}
}

func funcChildren(f *Function) []Node {
	if f == nil || f.Body == nil {
		return nil
	}
	return []Node{f.Body}
}

// Inspect walks the tree rooted at n depth-first, calling fn for each node.
// Returning false from fn skips the node's children.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}
