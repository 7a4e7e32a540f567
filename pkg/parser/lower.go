package parser

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/observing-components/pkg/ast"
)

// lowerer converts a tree-sitter concrete syntax tree into the ast grammar.
// Node kinds without a mapping become Opaque nodes carrying their text, so
// nothing of the source is lost.
type lowerer struct {
	src []byte
}

func lowerModule(root *ts.Node, source []byte) *ast.Module {
	l := &lowerer{src: source}
	m := &ast.Module{Source: source}
	for _, child := range l.namedChildren(root) {
		m.Items = append(m.Items, l.stmt(child))
	}
	return m
}

func (l *lowerer) span(n *ts.Node) ast.Span {
	return ast.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (l *lowerer) base(n *ts.Node) ast.Base {
	return ast.Base{Loc: l.span(n)}
}

func (l *lowerer) text(n *ts.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(l.src)
}

// namedChildren returns the named children of n, comments excluded. Comment
// text stays in the source gaps the printer copies.
func (l *lowerer) namedChildren(n *ts.Node) []*ts.Node {
	count := n.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// firstNamed returns the first non-comment named child of n.
func (l *lowerer) firstNamed(n *ts.Node) *ts.Node {
	children := l.namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// hasToken reports whether n has a direct anonymous child spelled tok.
func (l *lowerer) hasToken(n *ts.Node, tok string) bool {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Kind() == tok {
			return true
		}
	}
	return false
}

func (l *lowerer) opaqueStmt(n *ts.Node) *ast.OpaqueStmt {
	return &ast.OpaqueStmt{Base: l.base(n), Text: l.text(n)}
}

func (l *lowerer) opaqueExpr(n *ts.Node) *ast.OpaqueExpr {
	return &ast.OpaqueExpr{Base: l.base(n), Text: l.text(n)}
}

func (l *lowerer) stmt(n *ts.Node) ast.Stmt {
	switch n.Kind() {
	case "import_statement":
		return l.importDecl(n)
	case "function_declaration", "generator_function_declaration":
		fn := l.function(n)
		return &ast.FuncDecl{
			Base: ast.Base{Loc: fn.Loc},
			Name: l.text(n.ChildByFieldName("name")),
			Func: fn,
		}
	case "lexical_declaration", "variable_declaration":
		return l.varDecl(n)
	case "export_statement":
		return l.exportStmt(n)
	case "statement_block":
		return l.block(n)
	case "return_statement":
		ret := &ast.ReturnStmt{Base: l.base(n)}
		if arg := l.firstNamed(n); arg != nil {
			ret.Arg = l.expr(arg)
		}
		return ret
	case "expression_statement":
		inner := l.firstNamed(n)
		if inner == nil {
			return l.opaqueStmt(n)
		}
		return &ast.ExprStmt{Base: l.base(n), Expr: l.expr(inner)}
	default:
		return l.opaqueStmt(n)
	}
}

func (l *lowerer) importDecl(n *ts.Node) ast.Stmt {
	source := n.ChildByFieldName("source")
	if source == nil {
		// import x = require("...")
		return l.opaqueStmt(n)
	}
	decl := &ast.ImportDecl{
		Base:     l.base(n),
		Source:   unquote(l.text(source)),
		TypeOnly: l.hasToken(n, "type") || l.hasToken(n, "typeof"),
	}

	for _, c := range l.namedChildren(n) {
		if c.Kind() != "import_clause" {
			continue
		}
		for _, part := range l.namedChildren(c) {
			switch part.Kind() {
			case "identifier":
				decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{
					Kind:  ast.ImportDefault,
					Local: l.text(part),
				})
			case "namespace_import":
				if id := l.firstNamed(part); id != nil {
					decl.Specifiers = append(decl.Specifiers, ast.ImportSpecifier{
						Kind:  ast.ImportNamespace,
						Local: l.text(id),
					})
				}
			case "named_imports":
				for _, spec := range l.namedChildren(part) {
					if spec.Kind() == "import_specifier" {
						decl.Specifiers = append(decl.Specifiers, l.importSpecifier(spec))
					}
				}
			}
		}
	}
	return decl
}

func (l *lowerer) importSpecifier(n *ts.Node) ast.ImportSpecifier {
	spec := ast.ImportSpecifier{
		Kind:     ast.ImportNamed,
		TypeOnly: l.hasToken(n, "type") || l.hasToken(n, "typeof"),
	}
	name := unquote(l.text(n.ChildByFieldName("name")))
	if alias := n.ChildByFieldName("alias"); alias != nil {
		spec.Local = l.text(alias)
		spec.Imported = name
	} else {
		spec.Local = name
	}
	return spec
}

// function lowers the shared parts of function declarations and
// expressions. The returned Loc ends at the closing brace of the body, so
// neither a trailing semicolon nor a same-line comment is taken along.
func (l *lowerer) function(n *ts.Node) *ast.Function {
	fn := &ast.Function{
		Loc:        l.span(n),
		Async:      l.hasToken(n, "async"),
		Generator:  l.hasToken(n, "*"),
		TypeParams: l.text(n.ChildByFieldName("type_parameters")),
		Params:     l.text(n.ChildByFieldName("parameters")),
		ReturnType: l.text(n.ChildByFieldName("return_type")),
	}
	if body := n.ChildByFieldName("body"); body != nil && body.Kind() == "statement_block" {
		fn.Body = l.block(body)
		fn.Loc.End = fn.Body.Loc.End
	}
	return fn
}

func (l *lowerer) block(n *ts.Node) *ast.BlockStmt {
	b := &ast.BlockStmt{Base: l.base(n)}
	b.Loc.End = l.blockEnd(n)
	for _, c := range l.namedChildren(n) {
		b.Stmts = append(b.Stmts, l.stmt(c))
	}
	return b
}

// blockEnd returns the offset just past the closing brace of a block. The
// block node itself may extend over an automatic semicolon, and with it a
// comment on the same line.
func (l *lowerer) blockEnd(n *ts.Node) int {
	for i := n.ChildCount(); i > 0; i-- {
		c := n.Child(i - 1)
		if c != nil && !c.IsNamed() && c.Kind() == "}" {
			return int(c.EndByte())
		}
	}
	return int(n.EndByte())
}

func (l *lowerer) varDecl(n *ts.Node) ast.Stmt {
	kind := "var"
	if k := n.ChildByFieldName("kind"); k != nil {
		kind = l.text(k)
	}
	vd := &ast.VarDecl{Base: l.base(n), Kind: kind}
	for _, c := range l.namedChildren(n) {
		if c.Kind() != "variable_declarator" {
			continue
		}
		vd.Declarators = append(vd.Declarators, l.declarator(c))
	}
	if len(vd.Declarators) == 0 {
		return l.opaqueStmt(n)
	}
	return vd
}

func (l *lowerer) declarator(n *ts.Node) *ast.VarDeclarator {
	d := &ast.VarDeclarator{Base: l.base(n)}
	name := n.ChildByFieldName("name")
	if name != nil && name.Kind() == "identifier" {
		d.Name = l.text(name)
	}

	// The binding runs from the name through any type annotation, up to
	// the `=` of the initializer.
	value := n.ChildByFieldName("value")
	if name != nil {
		end := n.EndByte()
		if value != nil {
			end = value.StartByte()
		}
		binding := string(l.src[name.StartByte():end])
		binding = strings.TrimSpace(binding)
		binding = strings.TrimSuffix(binding, "=")
		d.Binding = strings.TrimSpace(binding)
	}
	if value != nil {
		d.Init = l.expr(value)
	}
	return d
}

func (l *lowerer) exportStmt(n *ts.Node) ast.Stmt {
	isDefault := l.hasToken(n, "default")
	decl := n.ChildByFieldName("declaration")
	value := n.ChildByFieldName("value")

	switch {
	case isDefault && decl != nil:
		switch decl.Kind() {
		case "function_declaration", "generator_function_declaration":
			return &ast.ExportDefaultDecl{
				Base: l.base(n),
				Name: l.text(decl.ChildByFieldName("name")),
				Func: l.function(decl),
			}
		}
		return l.opaqueStmt(n)
	case isDefault && value != nil:
		switch value.Kind() {
		case "function_expression", "function", "generator_function":
			// `export default function () {}` arrives as an expression.
			return &ast.ExportDefaultDecl{
				Base: l.base(n),
				Name: l.text(value.ChildByFieldName("name")),
				Func: l.function(value),
			}
		}
		return &ast.ExportDefaultExpr{Base: l.base(n), Expr: l.expr(value)}
	case decl != nil:
		return &ast.ExportDecl{Base: l.base(n), Decl: l.stmt(decl)}
	default:
		return l.opaqueStmt(n)
	}
}

func (l *lowerer) expr(n *ts.Node) ast.Expr {
	switch n.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return &ast.JSXElement{
			Base:     l.base(n),
			Text:     l.text(n),
			Fragment: isFragment(n),
		}
	case "parenthesized_expression":
		inner := l.firstNamed(n)
		if inner == nil {
			return l.opaqueExpr(n)
		}
		return &ast.ParenExpr{Base: l.base(n), Inner: l.expr(inner)}
	case "function_expression", "function", "generator_function":
		fn := l.function(n)
		return &ast.FuncExpr{
			Base: ast.Base{Loc: fn.Loc},
			Name: l.text(n.ChildByFieldName("name")),
			Func: fn,
		}
	case "arrow_function":
		return l.arrow(n)
	case "call_expression":
		return l.call(n)
	case "identifier":
		return &ast.Ident{Base: l.base(n), Name: l.text(n)}
	case "object":
		return l.object(n)
	default:
		return l.opaqueExpr(n)
	}
}

func (l *lowerer) arrow(n *ts.Node) ast.Expr {
	a := &ast.ArrowExpr{
		Base:       l.base(n),
		Async:      l.hasToken(n, "async"),
		TypeParams: l.text(n.ChildByFieldName("type_parameters")),
		ReturnType: l.text(n.ChildByFieldName("return_type")),
	}
	if p := n.ChildByFieldName("parameters"); p != nil {
		a.Params = l.text(p)
	} else if p := n.ChildByFieldName("parameter"); p != nil {
		a.Params = l.text(p)
	}

	body := n.ChildByFieldName("body")
	switch {
	case body == nil:
		return l.opaqueExpr(n)
	case body.Kind() == "statement_block":
		block := l.block(body)
		a.Body = block
		a.Loc.End = block.Loc.End
	default:
		a.Body = l.expr(body)
	}
	return a
}

func (l *lowerer) call(n *ts.Node) ast.Expr {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.Kind() != "arguments" {
		// Tagged templates and anything else without an argument list.
		return l.opaqueExpr(n)
	}
	call := &ast.CallExpr{
		Base:     l.base(n),
		Callee:   l.expr(fn),
		TypeArgs: l.text(n.ChildByFieldName("type_arguments")),
	}
	for _, a := range l.namedChildren(args) {
		call.Args = append(call.Args, l.expr(a))
	}
	return call
}

func (l *lowerer) object(n *ts.Node) ast.Expr {
	obj := &ast.ObjectExpr{Base: l.base(n)}
	for _, c := range l.namedChildren(n) {
		p := &ast.Property{Base: l.base(c)}
		if c.Kind() == "pair" {
			p.Key = l.propertyKey(c.ChildByFieldName("key"))
			if v := c.ChildByFieldName("value"); v != nil {
				p.Value = l.expr(v)
			}
		} else {
			p.Key = ast.PropertyKey{Kind: ast.KeyOther, Text: l.text(c)}
		}
		obj.Props = append(obj.Props, p)
	}
	return obj
}

func (l *lowerer) propertyKey(n *ts.Node) ast.PropertyKey {
	if n == nil {
		return ast.PropertyKey{Kind: ast.KeyOther}
	}
	key := ast.PropertyKey{Kind: ast.KeyOther, Text: l.text(n)}
	switch n.Kind() {
	case "property_identifier", "identifier":
		key.Kind = ast.KeyIdent
		key.Name = key.Text
	case "computed_property_name":
		key.Kind = ast.KeyComputed
		inner := l.firstNamed(n)
		if inner == nil {
			break
		}
		switch inner.Kind() {
		case "identifier":
			key.Name = l.text(inner)
		case "member_expression":
			if obj := inner.ChildByFieldName("object"); obj != nil && obj.Kind() == "identifier" {
				key.Name = l.text(obj)
			}
		}
	}
	return key
}

// isFragment reports whether n is `<>...</>`. Newer grammars model a
// fragment as an element whose opening tag has no name.
func isFragment(n *ts.Node) bool {
	switch n.Kind() {
	case "jsx_fragment":
		return true
	case "jsx_element":
		open := n.ChildByFieldName("open_tag")
		return open != nil && open.ChildByFieldName("name") == nil
	default:
		return false
	}
}

// unquote strips the quotes of a string literal's source text.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && last == first {
			return s[1 : len(s)-1]
		}
	}
	return s
}
