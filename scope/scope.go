// Package scope builds the per-node scope maps AST nodes carry and
// implements the lookup-chain walk lowering uses to resolve an
// identifier to its declaration.
package scope

import "decafc/ast"

// Table is the side table scope.BuildScopes produces: the class
// registry Resolve needs to walk `extends` chains, plus the program's
// global scope. It is threaded through lowering alongside the tree
// itself rather than stashed on a package-level variable.
type Table struct {
	Global  *ast.Scope
	classes map[string]*ast.ClassDecl
}

// ClassDecl looks up a class by name in the registry BuildScopes filled
// in from the program's top-level declarations.
func (t *Table) ClassDecl(name string) (*ast.ClassDecl, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// BuildScopes walks prog attaching a fresh *ast.Scope to every
// scope-owning node (Program, ClassDecl, FnDecl, StmtBlock) and
// recording each class under its name so extends chains can be walked
// later. It does not resolve anything itself.
func BuildScopes(prog *ast.Program) *Table {
	t := &Table{classes: make(map[string]*ast.ClassDecl)}

	global := ast.NewScope()
	ast.SetScopeOf(prog, global)
	t.Global = global

	for _, d := range prog.Decls {
		global.Add(d)
		switch decl := d.(type) {
		case *ast.ClassDecl:
			t.classes[decl.Name()] = decl
			buildClassScope(decl)
		case *ast.InterfaceDecl:
			buildInterfaceScope(decl)
		case *ast.FnDecl:
			buildFnScope(decl)
		}
	}
	return t
}

func buildClassScope(c *ast.ClassDecl) {
	s := ast.NewScope()
	ast.SetScopeOf(c, s)
	for _, m := range c.Members {
		s.Add(m)
		if fn, ok := m.(*ast.FnDecl); ok {
			fn.IsMethod = true
			buildFnScope(fn)
		}
	}
}

func buildInterfaceScope(iface *ast.InterfaceDecl) {
	s := ast.NewScope()
	ast.SetScopeOf(iface, s)
	for _, m := range iface.Members {
		s.Add(m)
	}
}

func buildFnScope(fn *ast.FnDecl) {
	s := ast.NewScope()
	ast.SetScopeOf(fn, s)
	for _, f := range fn.Formals {
		s.Add(f)
	}
	if fn.Body != nil {
		buildBlockScope(fn.Body)
	}
}

func buildBlockScope(b *ast.StmtBlock) {
	s := ast.NewScope()
	ast.SetScopeOf(b, s)
	for _, d := range b.Decls {
		s.Add(d)
	}
	for _, stmt := range b.Stmts {
		walkStmt(b, stmt)
	}
}

// walkStmt wires stmt's parent link, descends into nested blocks to
// build their scopes, and walks every expression stmt carries so its
// subexpressions get their parent links too (spec §2: "data flows
// downward during build"). Scope.Resolve's upward walk (scope.Resolve,
// resolveLexicalChain) depends on every node between a use site and its
// enclosing scope having a live Parent, not just the ones a
// scope-owning constructor happened to set directly.
func walkStmt(parent ast.Node, stmt ast.Stmt) {
	ast.SetParentOf(stmt, parent)
	switch s := stmt.(type) {
	case *ast.StmtBlock:
		buildBlockScope(s)
	case *ast.IfStmt:
		walkExpr(s, s.Test)
		walkStmt(s, s.Then)
		if s.Else != nil {
			walkStmt(s, s.Else)
		}
	case *ast.WhileStmt:
		walkExpr(s, s.Test)
		walkStmt(s, s.Body)
	case *ast.ForStmt:
		if s.Init != nil {
			walkExpr(s, s.Init)
		}
		walkExpr(s, s.Test)
		if s.Step != nil {
			walkExpr(s, s.Step)
		}
		walkStmt(s, s.Body)
	case *ast.ReturnStmt:
		if s.Value != nil {
			walkExpr(s, s.Value)
		}
	case *ast.PrintStmt:
		for _, a := range s.Args {
			walkExpr(s, a)
		}
	case *ast.ExprStmt:
		walkExpr(s, s.X)
	}
}

// walkExpr wires e's parent link and recurses into its subexpressions,
// if any. Expr nodes never own a scope of their own, so this never
// builds one — it only completes the Parent chain Resolve walks.
func walkExpr(parent ast.Node, e ast.Expr) {
	ast.SetParentOf(e, parent)
	switch expr := e.(type) {
	case *ast.ArithmeticExpr:
		if expr.Left != nil {
			walkExpr(expr, expr.Left)
		}
		walkExpr(expr, expr.Right)
	case *ast.RelationalExpr:
		walkExpr(expr, expr.Left)
		walkExpr(expr, expr.Right)
	case *ast.EqualityExpr:
		walkExpr(expr, expr.Left)
		walkExpr(expr, expr.Right)
	case *ast.LogicalExpr:
		walkExpr(expr, expr.Left)
		walkExpr(expr, expr.Right)
	case *ast.NotExpr:
		walkExpr(expr, expr.Operand)
	case *ast.AssignExpr:
		walkExpr(expr, expr.Left)
		walkExpr(expr, expr.Right)
	case *ast.FieldAccess:
		if expr.Base != nil {
			walkExpr(expr, expr.Base)
		}
	case *ast.ArrayAccess:
		walkExpr(expr, expr.Base)
		walkExpr(expr, expr.Subscript)
	case *ast.Call:
		if expr.Base != nil {
			walkExpr(expr, expr.Base)
		}
		for _, a := range expr.Args {
			walkExpr(expr, a)
		}
	case *ast.NewArrayExpr:
		walkExpr(expr, expr.Size)
	}
}
