package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/observing-components/pkg/ast"
)

func parseModule(t *testing.T, file, source string) *ast.Module {
	t.Helper()
	m, err := newTestManager(t).ParseModule([]byte(source), file)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func textOf(m *ast.Module, n ast.Node) string {
	loc := ast.LocOf(n)
	return string(m.Source[loc.Start:loc.End])
}

func TestLowerImports(t *testing.T) {
	src := `import React, { useState } from "react";
import { observer as obs } from 'mobx-react-lite';
import * as utils from "./utils";
import "./styles.css";
`
	m := parseModule(t, "App.jsx", src)
	require.Len(t, m.Items, 4)

	react := m.Items[0].(*ast.ImportDecl)
	assert.Equal(t, "react", react.Source)
	require.Len(t, react.Specifiers, 2)
	assert.Equal(t, ast.ImportDefault, react.Specifiers[0].Kind)
	assert.Equal(t, "React", react.Specifiers[0].Local)
	assert.Equal(t, ast.ImportNamed, react.Specifiers[1].Kind)
	assert.Equal(t, "useState", react.Specifiers[1].ImportedName())

	aliased := m.Items[1].(*ast.ImportDecl)
	assert.Equal(t, "mobx-react-lite", aliased.Source)
	require.Len(t, aliased.Specifiers, 1)
	assert.Equal(t, "obs", aliased.Specifiers[0].Local)
	assert.Equal(t, "observer", aliased.Specifiers[0].ImportedName())

	ns := m.Items[2].(*ast.ImportDecl)
	require.Len(t, ns.Specifiers, 1)
	assert.Equal(t, ast.ImportNamespace, ns.Specifiers[0].Kind)
	assert.Equal(t, "utils", ns.Specifiers[0].Local)

	sideEffect := m.Items[3].(*ast.ImportDecl)
	assert.Equal(t, "./styles.css", sideEffect.Source)
	assert.Empty(t, sideEffect.Specifiers)
}

func TestLowerFunctionDeclaration(t *testing.T) {
	src := "function Greeting(props) {\n  return (<h1>Hello {props.name}</h1>);\n}\n"
	m := parseModule(t, "Greeting.jsx", src)
	require.Len(t, m.Items, 1)

	fd, ok := m.Items[0].(*ast.FuncDecl)
	require.True(t, ok, "expected FuncDecl, got %T", m.Items[0])
	assert.Equal(t, "Greeting", fd.Name)
	assert.Equal(t, "(props)", fd.Func.Params)
	assert.False(t, fd.Func.Async)
	require.NotNil(t, fd.Func.Body)
	assert.Equal(t, src[:len(src)-1], string(m.Source[fd.Func.Loc.Start:fd.Func.Loc.End]))

	require.Len(t, fd.Func.Body.Stmts, 1)
	ret, ok := fd.Func.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	paren, ok := ret.Arg.(*ast.ParenExpr)
	require.True(t, ok)
	assert.IsType(t, &ast.JSXElement{}, paren.Inner)
}

func TestLowerLocationsStopAtClosingBrace(t *testing.T) {
	src := "function Card() {\n  return <div/>;\n} // card\n" +
		"const Row = () => {\n  return <tr/>;\n} // row\n" +
		"export const Cell = function Cell() {\n  return <td/>;\n} // cell\n"
	m := parseModule(t, "table.jsx", src)
	require.Len(t, m.Items, 3)

	fd, ok := m.Items[0].(*ast.FuncDecl)
	require.True(t, ok, "expected FuncDecl, got %T", m.Items[0])
	fnText := "function Card() {\n  return <div/>;\n}"
	assert.Equal(t, fnText, textOf(m, fd))
	assert.Equal(t, fnText, string(m.Source[fd.Func.Loc.Start:fd.Func.Loc.End]))
	assert.Equal(t, "{\n  return <div/>;\n}", textOf(m, fd.Func.Body))

	vd, ok := m.Items[1].(*ast.VarDecl)
	require.True(t, ok, "expected VarDecl, got %T", m.Items[1])
	require.Len(t, vd.Declarators, 1)
	assert.Equal(t, "() => {\n  return <tr/>;\n}", textOf(m, vd.Declarators[0].Init))

	ed, ok := m.Items[2].(*ast.ExportDecl)
	require.True(t, ok, "expected ExportDecl, got %T", m.Items[2])
	inner := ed.Decl.(*ast.VarDecl)
	assert.Equal(t, "function Cell() {\n  return <td/>;\n}", textOf(m, inner.Declarators[0].Init))
}

func TestLowerTypedSignature(t *testing.T) {
	src := "async function Load<T>(id: string): Promise<T> {\n  return fetchIt(id);\n}\n"
	m := parseModule(t, "load.ts", src)
	require.Len(t, m.Items, 1)

	fd := m.Items[0].(*ast.FuncDecl)
	assert.True(t, fd.Func.Async)
	assert.Equal(t, "<T>", fd.Func.TypeParams)
	assert.Equal(t, "(id: string)", fd.Func.Params)
	assert.Contains(t, fd.Func.ReturnType, "Promise<T>")
}

func TestLowerVariableDeclarations(t *testing.T) {
	src := `const Card = memo(() => <div className="card" />);
let count = 0, Label = function Label() { return <span/>; };
const typed: Props = { a: 1 };
`
	m := parseModule(t, "Card.tsx", src)
	require.Len(t, m.Items, 3)

	card := m.Items[0].(*ast.VarDecl)
	assert.Equal(t, "const", card.Kind)
	require.Len(t, card.Declarators, 1)
	assert.Equal(t, "Card", card.Declarators[0].Name)
	call, ok := card.Declarators[0].Init.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "memo", call.Callee.(*ast.Ident).Name)
	require.Len(t, call.Args, 1)
	arrow, ok := call.Args[0].(*ast.ArrowExpr)
	require.True(t, ok)
	assert.Equal(t, "()", arrow.Params)
	assert.IsType(t, &ast.JSXElement{}, arrow.Body)

	multi := m.Items[1].(*ast.VarDecl)
	assert.Equal(t, "let", multi.Kind)
	require.Len(t, multi.Declarators, 2)
	assert.Equal(t, "count", multi.Declarators[0].Name)
	assert.IsType(t, &ast.OpaqueExpr{}, multi.Declarators[0].Init)
	fe, ok := multi.Declarators[1].Init.(*ast.FuncExpr)
	require.True(t, ok)
	assert.Equal(t, "Label", fe.Name)

	typed := m.Items[2].(*ast.VarDecl)
	assert.Equal(t, "typed: Props", typed.Declarators[0].Binding)
	assert.IsType(t, &ast.ObjectExpr{}, typed.Declarators[0].Init)
}

func TestLowerExports(t *testing.T) {
	src := `export function Header() { return <header/>; }
export const Footer = () => <footer/>;
export default function () { return <main/>; }
`
	m := parseModule(t, "layout.jsx", src)
	require.Len(t, m.Items, 3)

	header, ok := m.Items[0].(*ast.ExportDecl)
	require.True(t, ok)
	assert.IsType(t, &ast.FuncDecl{}, header.Decl)

	footer, ok := m.Items[1].(*ast.ExportDecl)
	require.True(t, ok)
	vd, ok := footer.Decl.(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "Footer", vd.Declarators[0].Name)

	def, ok := m.Items[2].(*ast.ExportDefaultDecl)
	require.True(t, ok, "expected ExportDefaultDecl, got %T", m.Items[2])
	assert.Empty(t, def.Name)
	require.NotNil(t, def.Func.Body)
}

func TestLowerNamedDefaultExport(t *testing.T) {
	m := parseModule(t, "Page.jsx", "export default function Page() { return <div/>; }\n")
	require.Len(t, m.Items, 1)

	def, ok := m.Items[0].(*ast.ExportDefaultDecl)
	require.True(t, ok)
	assert.Equal(t, "Page", def.Name)
	assert.Equal(t, "function Page() { return <div/>; }", string(m.Source[def.Func.Loc.Start:def.Func.Loc.End]))
}

func TestLowerDefaultExportExpression(t *testing.T) {
	m := parseModule(t, "Page.jsx", "export default memo(() => <div/>);\n")
	require.Len(t, m.Items, 1)

	def, ok := m.Items[0].(*ast.ExportDefaultExpr)
	require.True(t, ok)
	assert.IsType(t, &ast.CallExpr{}, def.Expr)
}

func TestLowerObjectKeys(t *testing.T) {
	src := `const views = {
  List: () => <ul/>,
  [Detail]: () => <div/>,
  [Page.Edit]: () => <form/>,
  "quoted": 1,
  shorthand,
};
`
	m := parseModule(t, "views.jsx", src)
	require.Len(t, m.Items, 1)

	obj, ok := m.Items[0].(*ast.VarDecl).Declarators[0].Init.(*ast.ObjectExpr)
	require.True(t, ok)
	require.Len(t, obj.Props, 5)

	assert.Equal(t, ast.KeyIdent, obj.Props[0].Key.Kind)
	assert.Equal(t, "List", obj.Props[0].Key.Name)
	assert.IsType(t, &ast.ArrowExpr{}, obj.Props[0].Value)

	assert.Equal(t, ast.KeyComputed, obj.Props[1].Key.Kind)
	assert.Equal(t, "Detail", obj.Props[1].Key.Name)

	assert.Equal(t, ast.KeyComputed, obj.Props[2].Key.Kind)
	assert.Equal(t, "Page", obj.Props[2].Key.Name)

	assert.Equal(t, ast.KeyOther, obj.Props[3].Key.Kind)
	assert.Empty(t, obj.Props[3].Key.Name)

	assert.Nil(t, obj.Props[4].Value)
	assert.Equal(t, "shorthand", obj.Props[4].Key.Text)
}

func TestLowerSkipsCommentsAndKeepsLocations(t *testing.T) {
	src := "// leading comment\nconst a = 1;\n/* block */\nfoo();\n"
	m := parseModule(t, "a.js", src)
	require.Len(t, m.Items, 2)

	assert.Equal(t, "const a = 1;", textOf(m, m.Items[0]))
	stmt, ok := m.Items[1].(*ast.ExprStmt)
	require.True(t, ok)
	assert.Equal(t, "foo();", textOf(m, stmt))
	assert.IsType(t, &ast.CallExpr{}, stmt.Expr)
}

func TestLowerUnmodeledStatementsAreOpaque(t *testing.T) {
	src := "class Store {}\nif (ready) { start(); }\n"
	m := parseModule(t, "store.js", src)
	require.Len(t, m.Items, 2)

	for _, item := range m.Items {
		op, ok := item.(*ast.OpaqueStmt)
		require.True(t, ok, "expected OpaqueStmt, got %T", item)
		assert.Equal(t, op.Text, textOf(m, op))
	}
}

func TestLowerRecoversFromSyntaxErrors(t *testing.T) {
	m := parseModule(t, "broken.js", "const ok = 1;\nconst = ;\n")
	assert.NotEmpty(t, m.Items)
	assert.Equal(t, "const ok = 1;", textOf(m, m.Items[0]))
}
