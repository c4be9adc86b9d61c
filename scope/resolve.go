package scope

import "decafc/ast"

// Resolve implements the name-resolution chain of spec §4.6: an
// explicit base narrows the search to that base's class (and its
// extends chain); otherwise the lexical scope chain is walked up to
// (but not across) the nearest enclosing class, which is then searched
// via its own extends chain, with the program's global scope as the
// final fallback.
//
// This is the "newer, recursive" walker mentioned as the intended path
// where the source had two: it always recurses through extends rather
// than only checking the immediately enclosing class.
func Resolve(t *Table, name string, base ast.Expr, start ast.Node) (ast.Decl, bool) {
	if base != nil {
		return resolveAgainstType(t, base.GetType(), name)
	}
	if d, ok := resolveLexicalChain(name, start); ok {
		return d, true
	}
	if cls := EnclosingClass(start); cls != nil {
		if d, ok := resolveAgainstType(t, &ast.NamedType{Name: cls.Name()}, name); ok {
			return d, true
		}
	}
	return t.Global.Lookup(name)
}

// resolveAgainstType searches typ's class scope, then its base class,
// and so on up the extends chain. Non-class types never resolve.
func resolveAgainstType(t *Table, typ ast.Type, name string) (ast.Decl, bool) {
	className, ok := ast.IsClass(typ)
	if !ok {
		return nil, false
	}
	for className != "" {
		c, ok := t.ClassDecl(className)
		if !ok {
			return nil, false
		}
		if d, ok := c.Scope().Lookup(name); ok {
			return d, true
		}
		className = c.Extends
	}
	return nil, false
}

// resolveLexicalChain walks start's own scope, then each ancestor's in
// turn, stopping as soon as it reaches a ClassDecl (field/method
// lookup from there on is the extends-aware job of resolveAgainstType,
// invoked separately by Resolve). For a node with no enclosing class
// the walk runs all the way to Program's global scope, matching spec
// §4.6 step 3 directly.
func resolveLexicalChain(name string, start ast.Node) (ast.Decl, bool) {
	for n := start; n != nil; n = n.Parent() {
		if _, isClass := n.(*ast.ClassDecl); isClass {
			return nil, false
		}
		if sc, ok := n.(ast.Scoped); ok {
			if d, ok := sc.Scope().Lookup(name); ok {
				return d, true
			}
		}
	}
	return nil, false
}

// EnclosingClass walks up from n and returns the nearest ClassDecl
// ancestor, or nil if n is not lexically inside a class.
func EnclosingClass(n ast.Node) *ast.ClassDecl {
	for cur := n; cur != nil; cur = cur.Parent() {
		if c, ok := cur.(*ast.ClassDecl); ok {
			return c
		}
	}
	return nil
}
