// Package jsx holds the tree-sitter query that locates JSX in a module.
package jsx

// Queries matches every JSX element, fragment and self-closing element.
// Fragments are jsx_element nodes whose opening tag has no name.
//
// It compiles for the javascript and tsx grammars only; the typescript
// grammar has no JSX node types.
//
// Captures:
//   - @jsx.element - elements and fragments
//   - @jsx.self_closing - self-closing elements
const Queries = `
(jsx_element) @jsx.element

(jsx_self_closing_element) @jsx.self_closing
`
