// Package ast defines the module grammar the wrapping pass operates on.
//
// The grammar is a closed set of variants: every statement implements Stmt and
// every expression implements Expr through unexported marker methods, so a
// switch over a node is exhaustive by construction and anything the front end
// does not model is carried as an Opaque node holding its source text.
//
// Nodes keep the byte range they were lowered from (Base.Loc). The printer
// uses that range to reproduce untouched code byte for byte and to splice
// rewritten children back into their parent's original text.
package ast

// Span is a half-open byte range [Start, End) in Module.Source.
type Span struct {
	Start int
	End   int
}

// IsValid reports whether the span refers to source text.
func (s Span) IsValid() bool {
	return s.End > s.Start && s.Start >= 0
}

// Contains reports whether other lies within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Base carries the location bookkeeping shared by every node.
type Base struct {
	// Loc is the node's range in the original source. Zero for nodes
	// created by a rewrite.
	Loc Span

	// Edited is set on a copy of a lowered node whose children were
	// replaced, so its original text is stale.
	Edited bool
}

func (b *Base) base() *Base { return b }

// Node is implemented by every statement and expression.
type Node interface {
	base() *Base
}

// Stmt is a top-level module item or a statement inside a function body.
type Stmt interface {
	Node
	isStmt()
}

// Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

func (*ImportDecl) isStmt()        {}
func (*FuncDecl) isStmt()          {}
func (*VarDecl) isStmt()           {}
func (*ExportDecl) isStmt()        {}
func (*ExportDefaultDecl) isStmt() {}
func (*ExportDefaultExpr) isStmt() {}
func (*BlockStmt) isStmt()         {}
func (*ReturnStmt) isStmt()        {}
func (*ExprStmt) isStmt()          {}
func (*OpaqueStmt) isStmt()        {}

func (*JSXElement) isExpr() {}
func (*ParenExpr) isExpr()  {}
func (*FuncExpr) isExpr()   {}
func (*ArrowExpr) isExpr()  {}
func (*CallExpr) isExpr()   {}
func (*Ident) isExpr()      {}
func (*ObjectExpr) isExpr() {}
func (*OpaqueExpr) isExpr() {}

// Module is an ordered list of top-level items. Item identity is positional.
type Module struct {
	Items []Stmt

	// Source is the text the module was lowered from. Nil for modules built
	// by hand, in which case every node is printed from its structure.
	Source []byte
}

// LocOf returns the source range of n, or the zero span for synthesized nodes.
func LocOf(n Node) Span {
	if n == nil {
		return Span{}
	}
	return n.base().Loc
}

// IsEdited reports whether n was rewritten after lowering.
func IsEdited(n Node) bool {
	if n == nil {
		return false
	}
	return n.base().Edited
}

// ImportKind distinguishes the three import specifier forms.
type ImportKind int

const (
	ImportNamed ImportKind = iota
	ImportDefault
	ImportNamespace
)

// ImportSpecifier is one binding introduced by an import declaration.
type ImportSpecifier struct {
	Kind ImportKind

	// Local is the binding name used inside the module.
	Local string

	// Imported is the exported name when the specifier is aliased
	// (import { a as b }); empty otherwise.
	Imported string

	// TypeOnly marks `import { type X }` specifiers.
	TypeOnly bool
}

// ImportedName returns the name as exported by the source module.
func (s ImportSpecifier) ImportedName() string {
	if s.Imported != "" {
		return s.Imported
	}
	return s.Local
}

// ImportDecl is `import ... from "source"`.
type ImportDecl struct {
	Base
	Specifiers []ImportSpecifier
	Source     string
	TypeOnly   bool
}

// Function holds what function declarations, function expressions and
// default-exported functions share. Signature parts are raw source text with
// their delimiters: TypeParams "<T>", Params "(a, b)", ReturnType ": R".
type Function struct {
	// Loc is the range from the `async`/`function` keyword through the body.
	// The text of a lowered declaration is also valid function expression text.
	Loc Span

	Async      bool
	Generator  bool
	TypeParams string
	Params     string
	ReturnType string

	// Body is nil for overload signatures and ambient declarations.
	Body *BlockStmt
}

// FuncDecl is a named function declaration.
type FuncDecl struct {
	Base
	Name string
	Func *Function
}

// VarDeclarator is a single binding of a variable declaration.
type VarDeclarator struct {
	Base

	// Name is the bound identifier, or "" for destructuring patterns.
	Name string

	// Binding is the raw text of the binding including any type annotation.
	Binding string

	Init Expr
}

// VarDecl is a const, let or var declaration.
type VarDecl struct {
	Base
	Kind        string
	Declarators []*VarDeclarator
}

// ExportDecl is `export <declaration>`.
type ExportDecl struct {
	Base
	Decl Stmt
}

// ExportDefaultDecl is `export default function [Name]() {}`.
type ExportDefaultDecl struct {
	Base
	Name string
	Func *Function
}

// ExportDefaultExpr is `export default <expression>`.
type ExportDefaultExpr struct {
	Base
	Expr Expr
}

// BlockStmt is a brace-delimited statement list.
type BlockStmt struct {
	Base
	Stmts []Stmt
}

// ReturnStmt is `return [arg]`. Arg is nil for a bare return.
type ReturnStmt struct {
	Base
	Arg Expr
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Base
	Expr Expr
}

// OpaqueStmt is any statement the grammar does not model.
type OpaqueStmt struct {
	Base
	Text string
}

// JSXElement is a JSX element, self-closing element or fragment.
type JSXElement struct {
	Base
	Text     string
	Fragment bool
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Base
	Inner Expr
}

// FuncExpr is a function expression, optionally named.
type FuncExpr struct {
	Base
	Name string
	Func *Function
}

// ArrowExpr is an arrow function. Body is either *BlockStmt or an Expr.
type ArrowExpr struct {
	Base
	Async      bool
	TypeParams string
	Params     string
	ReturnType string
	Body       Node
}

// CallExpr is `callee<TypeArgs>(args...)`.
type CallExpr struct {
	Base
	Callee   Expr
	TypeArgs string
	Args     []Expr
}

// Ident is a bare identifier reference.
type Ident struct {
	Base
	Name string
}

// KeyKind classifies object property keys.
type KeyKind int

const (
	// KeyIdent is a plain identifier key: { Foo: ... }.
	KeyIdent KeyKind = iota
	// KeyComputed is a bracketed key: { [Foo]: ... } or { [Page.Foo]: ... }.
	KeyComputed
	// KeyOther covers string, number and private keys.
	KeyOther
)

// PropertyKey is the key of an object property.
type PropertyKey struct {
	Kind KeyKind

	// Text is the raw key text, brackets included for computed keys.
	Text string

	// Name is the identifier that names the property for component
	// classification: the key itself, the computed identifier, or the
	// object of a computed member expression. Empty when none applies.
	Name string
}

// Property is a `key: value` pair of an object literal.
type Property struct {
	Base
	Key   PropertyKey
	Value Expr
}

// ObjectExpr is an object literal. Only key/value pairs are modeled;
// shorthand, spread and method members are kept as opaque entries with
// a nil Value.
type ObjectExpr struct {
	Base
	Props []*Property
}

// OpaqueExpr is any expression the grammar does not model.
type OpaqueExpr struct {
	Base
	Text string
}
