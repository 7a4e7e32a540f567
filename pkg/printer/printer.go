// Package printer renders an ast.Module back to source text.
//
// Printing is location driven. A node that still has its original location
// and was not edited is copied from the module source byte for byte. An
// edited node is spliced: its original text is copied with each child's
// range replaced by the child's printed form. Only nodes without a usable
// location are generated from their structure, so formatting and comments
// of untouched code survive a round trip unchanged.
package printer

import (
	"bytes"
	"strings"

	"github.com/gnana997/observing-components/pkg/ast"
)

// Print renders m. A module lowered from source and left untouched prints
// as exactly its source.
func Print(m *ast.Module) []byte {
	if m == nil {
		return nil
	}
	p := &printer{src: m.Source}
	cursor := 0
	for _, item := range m.Items {
		loc := ast.LocOf(item)
		if !p.located(loc) {
			p.node(item)
			p.buf.WriteByte('\n')
			continue
		}
		if loc.Start >= cursor {
			// Whitespace and comments between items.
			p.buf.Write(p.src[cursor:loc.Start])
		}
		p.node(item)
		if loc.End > cursor {
			cursor = loc.End
		}
	}
	if cursor < len(p.src) {
		p.buf.Write(p.src[cursor:])
	}
	return p.buf.Bytes()
}

// PrintNode renders a single node against the source it was lowered from.
// source may be nil for synthesized trees.
func PrintNode(n ast.Node, source []byte) string {
	p := &printer{src: source}
	p.node(n)
	return p.buf.String()
}

type printer struct {
	src []byte
	buf bytes.Buffer
}

// located reports whether loc can be resolved against the source.
func (p *printer) located(loc ast.Span) bool {
	return p.src != nil && loc.IsValid() && loc.End <= len(p.src)
}

func (p *printer) node(n ast.Node) {
	if n == nil {
		return
	}
	loc := ast.LocOf(n)
	if p.located(loc) {
		if !ast.IsEdited(n) {
			p.buf.Write(p.src[loc.Start:loc.End])
			return
		}
		if p.splice(n, loc) {
			return
		}
	}
	p.generate(n)
}

// splice prints the original text of n with each child's range replaced by
// the child's printed form. It writes nothing and returns false when a child
// lacks a location inside n's range, or children overlap.
func (p *printer) splice(n ast.Node, loc ast.Span) bool {
	children := ast.Children(n)
	prev := loc.Start
	for _, c := range children {
		cl := ast.LocOf(c)
		if c == nil || !p.located(cl) || !loc.Contains(cl) || cl.Start < prev {
			return false
		}
		prev = cl.End
	}

	cursor := loc.Start
	for _, c := range children {
		cl := ast.LocOf(c)
		p.buf.Write(p.src[cursor:cl.Start])
		p.node(c)
		cursor = cl.End
	}
	rest := p.src[cursor:loc.End]
	if _, ok := n.(*ast.ExportDefaultExpr); ok && !terminated(rest) {
		// A default-exported declaration needs no terminator; the
		// expression that replaces it does.
		p.buf.WriteByte(';')
	}
	p.buf.Write(rest)
	return true
}

// terminated reports whether rest, the text following an expression,
// starts with a semicolon once whitespace and block comments are skipped.
func terminated(rest []byte) bool {
	for {
		rest = bytes.TrimLeft(rest, " \t\r\n")
		if !bytes.HasPrefix(rest, []byte("/*")) {
			return bytes.HasPrefix(rest, []byte(";"))
		}
		end := bytes.Index(rest[2:], []byte("*/"))
		if end < 0 {
			return false
		}
		rest = rest[2+end+2:]
	}
}

func (p *printer) generate(n ast.Node) {
	switch n := n.(type) {
	case *ast.ImportDecl:
		p.importDecl(n)
	case *ast.FuncDecl:
		p.function(n.Name, n.Func)
	case *ast.VarDecl:
		p.buf.WriteString(n.Kind)
		p.buf.WriteByte(' ')
		for i, d := range n.Declarators {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.node(d)
		}
		p.buf.WriteByte(';')
	case *ast.VarDeclarator:
		if n.Binding != "" {
			p.buf.WriteString(n.Binding)
		} else {
			p.buf.WriteString(n.Name)
		}
		if n.Init != nil {
			p.buf.WriteString(" = ")
			p.node(n.Init)
		}
	case *ast.ExportDecl:
		p.buf.WriteString("export ")
		p.node(n.Decl)
	case *ast.ExportDefaultDecl:
		p.buf.WriteString("export default ")
		p.function(n.Name, n.Func)
	case *ast.ExportDefaultExpr:
		p.buf.WriteString("export default ")
		p.node(n.Expr)
		p.buf.WriteByte(';')
	case *ast.BlockStmt:
		p.block(n)
	case *ast.ReturnStmt:
		p.buf.WriteString("return")
		if n.Arg != nil {
			p.buf.WriteByte(' ')
			p.node(n.Arg)
		}
		p.buf.WriteByte(';')
	case *ast.ExprStmt:
		p.node(n.Expr)
		p.buf.WriteByte(';')
	case *ast.OpaqueStmt:
		p.buf.WriteString(n.Text)
	case *ast.JSXElement:
		p.buf.WriteString(n.Text)
	case *ast.ParenExpr:
		p.buf.WriteByte('(')
		p.node(n.Inner)
		p.buf.WriteByte(')')
	case *ast.FuncExpr:
		p.function(n.Name, n.Func)
	case *ast.ArrowExpr:
		p.arrow(n)
	case *ast.CallExpr:
		p.node(n.Callee)
		p.buf.WriteString(n.TypeArgs)
		p.buf.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.node(a)
		}
		p.buf.WriteByte(')')
	case *ast.Ident:
		p.buf.WriteString(n.Name)
	case *ast.ObjectExpr:
		if len(n.Props) == 0 {
			p.buf.WriteString("{}")
			return
		}
		p.buf.WriteString("{ ")
		for i, prop := range n.Props {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.node(prop)
		}
		p.buf.WriteString(" }")
	case *ast.Property:
		p.buf.WriteString(n.Key.Text)
		if n.Value != nil {
			p.buf.WriteString(": ")
			p.node(n.Value)
		}
	case *ast.OpaqueExpr:
		p.buf.WriteString(n.Text)
	}
}

func (p *printer) importDecl(n *ast.ImportDecl) {
	p.buf.WriteString("import ")
	if n.TypeOnly {
		p.buf.WriteString("type ")
	}

	var clauses, named []string
	for _, s := range n.Specifiers {
		switch s.Kind {
		case ast.ImportDefault:
			clauses = append(clauses, s.Local)
		case ast.ImportNamespace:
			clauses = append(clauses, "* as "+s.Local)
		default:
			text := s.Local
			if s.Imported != "" && s.Imported != s.Local {
				text = s.Imported + " as " + s.Local
			}
			if s.TypeOnly {
				text = "type " + text
			}
			named = append(named, text)
		}
	}
	if len(named) > 0 {
		clauses = append(clauses, "{ "+strings.Join(named, ", ")+" }")
	}
	if len(clauses) > 0 {
		p.buf.WriteString(strings.Join(clauses, ", "))
		p.buf.WriteString(" from ")
	}
	p.buf.WriteString(quote(n.Source))
	p.buf.WriteByte(';')
}

// function writes `async function* name<T>(params): R { ... }`.
func (p *printer) function(name string, fn *ast.Function) {
	if fn == nil {
		return
	}
	if fn.Async {
		p.buf.WriteString("async ")
	}
	p.buf.WriteString("function")
	if fn.Generator {
		p.buf.WriteByte('*')
	}
	if name != "" {
		p.buf.WriteByte(' ')
		p.buf.WriteString(name)
	}
	p.buf.WriteString(fn.TypeParams)
	p.params(fn.Params)
	p.buf.WriteString(fn.ReturnType)
	p.buf.WriteByte(' ')
	if fn.Body == nil {
		p.buf.WriteString("{}")
		return
	}
	p.node(fn.Body)
}

func (p *printer) arrow(n *ast.ArrowExpr) {
	if n.Async {
		p.buf.WriteString("async ")
	}
	p.buf.WriteString(n.TypeParams)
	p.params(n.Params)
	p.buf.WriteString(n.ReturnType)
	p.buf.WriteString(" => ")
	if _, ok := n.Body.(*ast.ObjectExpr); ok && !p.located(ast.LocOf(n.Body)) {
		// A generated object body would otherwise read as a block.
		p.buf.WriteByte('(')
		p.node(n.Body)
		p.buf.WriteByte(')')
		return
	}
	p.node(n.Body)
}

func (p *printer) params(params string) {
	if params == "" {
		p.buf.WriteString("()")
		return
	}
	p.buf.WriteString(params)
}

func (p *printer) block(n *ast.BlockStmt) {
	if len(n.Stmts) == 0 {
		p.buf.WriteString("{}")
		return
	}
	p.buf.WriteString("{\n")
	for _, s := range n.Stmts {
		p.buf.WriteString("  ")
		p.node(s)
		p.buf.WriteByte('\n')
	}
	p.buf.WriteByte('}')
}

// quote renders a module specifier as a double-quoted string literal.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
