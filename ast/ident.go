package ast

// Identifier names a declaration, a field, a method, or a class at a
// use site. It carries no semantic information of its own — resolution
// against a Scope (package scope) is what turns a name into a Decl.
type Identifier struct {
	Pos   Pos
	Value string
}
