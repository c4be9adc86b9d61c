// Package ast defines the tree the code-generation core consumes. Nodes
// are produced by an external parser and are immutable in shape from
// that point on; only the scope maps, parent links, layout fields and
// storage Locations are filled in later, by scope.BuildScopes,
// layout.PreEmit and the lower package.
package ast

// Pos is an opaque source location. The core never reports positions
// itself (spec §1 Non-goals); it only carries them through so a future
// diagnostic layer could.
type Pos struct {
	Line, Col int
}

// Node is the common interface of every tree element. Parent is a
// borrowed back-reference for upward navigation only — it is set by the
// node constructors (NewProgram, NewFnDecl, NewStmtBlock, ...) and by
// scope.BuildScopes' statement/expression walk, and never used to free
// or walk ownership;
// ownership of children remains exclusively downward.
type Node interface {
	Position() Pos
	Parent() Node
	setParent(Node)
}

type base struct {
	Pos    Pos
	parent Node
}

func (b *base) Position() Pos     { return b.Pos }
func (b *base) Parent() Node      { return b.parent }
func (b *base) setParent(p Node)  { b.parent = p }

// Scoped is implemented by nodes that own a lexical scope map (classes,
// function bodies, blocks, and the program itself).
type Scoped interface {
	Node
	Scope() *Scope
	setScope(*Scope)
}

type scoped struct {
	base
	scope *Scope
}

func (s *scoped) Scope() *Scope    { return s.scope }
func (s *scoped) setScope(sc *Scope) { s.scope = sc }

// Scope is a direct name -> declaration map. Lookup beyond one node's
// own scope is scope.Resolve's job, not this type's.
type Scope struct {
	decls map[string]Decl
}

func NewScope() *Scope {
	return &Scope{decls: make(map[string]Decl)}
}

// Add records a declaration under its own name. Last writer wins per
// file order, matching spec §3 ("insertion order irrelevant, last
// writer wins").
func (s *Scope) Add(d Decl) {
	s.decls[d.Name()] = d
}

// Lookup checks only this scope's own map, not any ancestor.
func (s *Scope) Lookup(name string) (Decl, bool) {
	d, ok := s.decls[name]
	return d, ok
}

// Program is the root of the tree: the ordered list of top-level
// declarations as they appeared in source.
type Program struct {
	scoped
	Decls []Decl
}

func NewProgram(decls []Decl) *Program {
	p := &Program{Decls: decls}
	for _, d := range decls {
		d.setParent(p)
	}
	return p
}

// SetParentOf is a small helper parsers/tests use to wire up a child's
// parent without exporting setParent on every node type individually.
func SetParentOf(child, parent Node) {
	child.setParent(parent)
}

// SetScopeOf is scope.BuildScopes' hook for attaching a freshly built
// Scope to a Scoped node without exporting setScope itself.
func SetScopeOf(n Scoped, s *Scope) {
	n.setScope(s)
}
