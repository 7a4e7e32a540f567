// Package transform wraps UI component declarations of a module in calls to
// a configurable higher-order function and makes sure the module imports it.
//
// The pass is synchronous and keeps no state between calls: Run may be used
// from many goroutines at once, each with its own module.
//
// Example:
//
//	cfg := transform.Config{ImportSource: "mobx-react-lite"}
//	res := transform.Run(module, cfg)
//	fmt.Println(res.Stats.Wrapped, res.Stats.ImportInserted)
package transform

import "github.com/gnana997/observing-components/pkg/ast"

// Stats summarizes what one Run did to a module.
type Stats struct {
	// Wrapped counts wrapper calls introduced.
	Wrapped int

	// ImportInserted is true when an import of the wrapper was added at
	// index 0.
	ImportInserted bool

	// ImportFound is true when an existing import supplied the alias.
	ImportFound bool

	// Alias is the name wrapper calls were written with.
	Alias string
}

// Changed reports whether the module differs from its input.
func (s Stats) Changed() bool {
	return s.Wrapped > 0 || s.ImportInserted
}

// Result is the output of Run.
type Result struct {
	Module *ast.Module
	Stats  Stats
}

// Transform runs the pass and returns only the rewritten module.
func Transform(m *ast.Module, cfg Config) *ast.Module {
	return Run(m, cfg).Module
}

// Run rewrites every eligible top-level declaration of m to call the wrapper
// and ensures the module imports it exactly once.
//
// The input module is never modified: rewritten items are fresh nodes and
// untouched items are shared with the output. A module that needs no change
// is returned as is.
func Run(m *ast.Module, cfg Config) Result {
	if m == nil {
		return Result{}
	}
	cfg = cfg.WithDefaults()

	st := resolveImport(m, cfg)
	if !st.needed {
		return Result{Module: m, Stats: Stats{Alias: st.alias, ImportFound: st.found}}
	}

	r := &rewriter{alias: st.alias, cfg: cfg}
	items := make([]ast.Stmt, 0, len(m.Items)+1)
	if st.insert {
		items = append(items, ast.NewNamedImport(cfg.WrapperName, cfg.ImportSource))
	}
	for _, item := range m.Items {
		items = append(items, r.item(item))
	}

	stats := Stats{
		Wrapped:        r.wrapped,
		ImportInserted: st.insert,
		ImportFound:    st.found,
		Alias:          st.alias,
	}
	if !stats.Changed() {
		return Result{Module: m, Stats: stats}
	}
	return Result{Module: &ast.Module{Items: items, Source: m.Source}, Stats: stats}
}

// rewriter applies the per-item rules once the alias is known.
type rewriter struct {
	alias   string
	cfg     Config
	wrapped int
}

func (r *rewriter) wrap(e ast.Expr) *ast.CallExpr {
	r.wrapped++
	return ast.WrapCall(r.alias, e)
}

// item returns the image of one top-level item. Shapes without a rule are
// returned unchanged.
func (r *rewriter) item(item ast.Stmt) ast.Stmt {
	switch it := item.(type) {
	case *ast.FuncDecl:
		if vd := r.funcDecl(it); vd != nil {
			return vd
		}
	case *ast.VarDecl:
		if vd := r.varDecl(it); vd != nil {
			return vd
		}
	case *ast.ExportDecl:
		var decl ast.Stmt
		switch d := it.Decl.(type) {
		case *ast.FuncDecl:
			if vd := r.funcDecl(d); vd != nil {
				decl = vd
			}
		case *ast.VarDecl:
			if vd := r.varDecl(d); vd != nil {
				decl = vd
			}
		}
		if decl != nil {
			out := *it
			out.Decl = decl
			out.Edited = true
			return &out
		}
	case *ast.ExportDefaultDecl:
		if functionContainsJSX(it.Func) {
			return &ast.ExportDefaultExpr{
				Base: ast.Base{Loc: it.Loc, Edited: true},
				Expr: r.wrap(ast.FuncExprOf(it.Name, it.Func)),
			}
		}
	case *ast.ExportDefaultExpr:
		if ContainsJSX(it.Expr) && !IsAlreadyWrapped(it.Expr, r.alias) {
			out := *it
			out.Expr = r.wrap(it.Expr)
			out.Edited = true
			return &out
		}
	}
	return item
}

// funcDecl turns `function Name() {...}` into
// `const Name = alias(function Name() {...})` when Name is a component
// whose body renders JSX. It returns nil when the declaration is kept.
func (r *rewriter) funcDecl(fd *ast.FuncDecl) *ast.VarDecl {
	if !IsComponentName(fd.Name) || !functionContainsJSX(fd.Func) {
		return nil
	}
	return &ast.VarDecl{
		Base: ast.Base{Loc: fd.Loc, Edited: true},
		Kind: "const",
		Declarators: []*ast.VarDeclarator{{
			Name:    fd.Name,
			Binding: fd.Name,
			Init:    r.wrap(ast.FuncExprOf(fd.Name, fd.Func)),
		}},
	}
}

// varDecl rewrites the initializers of vd. It returns nil when no
// declarator changed.
func (r *rewriter) varDecl(vd *ast.VarDecl) *ast.VarDecl {
	var out *ast.VarDecl
	for i, d := range vd.Declarators {
		nd := r.declarator(d)
		if nd == d {
			continue
		}
		if out == nil {
			cp := *vd
			cp.Declarators = append([]*ast.VarDeclarator(nil), vd.Declarators...)
			cp.Edited = true
			out = &cp
		}
		out.Declarators[i] = nd
	}
	return out
}

func (r *rewriter) declarator(d *ast.VarDeclarator) *ast.VarDeclarator {
	if d.Init == nil || IsAlreadyWrapped(d.Init, r.alias) {
		return d
	}

	var init ast.Expr
	switch e := d.Init.(type) {
	case *ast.FuncExpr, *ast.ArrowExpr:
		if IsComponentName(d.Name) && ContainsJSX(e) {
			init = r.wrap(e)
		}
	case *ast.CallExpr:
		// Not gated on the binding name: any call whose first argument is
		// a JSX-returning function gets that argument wrapped.
		if c := r.firstArgument(e); c != nil {
			init = c
		}
	case *ast.ObjectExpr:
		if r.cfg.WrapObjectProperties {
			if o := r.objectProperties(e); o != nil {
				init = o
			}
		}
	}
	if init == nil {
		return d
	}

	out := *d
	out.Init = init
	out.Edited = true
	return &out
}

// firstArgument wraps the first argument of call when it is a function or
// arrow containing JSX, as in `memo(() => <div/>)`.
func (r *rewriter) firstArgument(call *ast.CallExpr) *ast.CallExpr {
	if len(call.Args) == 0 {
		return nil
	}
	arg := call.Args[0]
	if !isFunctionLike(arg) || !ContainsJSX(arg) {
		return nil
	}

	out := *call
	out.Args = append([]ast.Expr(nil), call.Args...)
	out.Args[0] = r.wrap(arg)
	out.Edited = true
	return &out
}

// objectProperties wraps functions stored under component keys of an
// object literal. It returns nil when no property changed.
func (r *rewriter) objectProperties(obj *ast.ObjectExpr) *ast.ObjectExpr {
	var out *ast.ObjectExpr
	for i, p := range obj.Props {
		if p.Value == nil || !isComponentKey(p.Key) || !isFunctionLike(p.Value) || !ContainsJSX(p.Value) {
			continue
		}
		if out == nil {
			cp := *obj
			cp.Props = append([]*ast.Property(nil), obj.Props...)
			cp.Edited = true
			out = &cp
		}
		np := *p
		np.Value = r.wrap(p.Value)
		np.Edited = true
		out.Props[i] = &np
	}
	return out
}
