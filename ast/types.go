package ast

import "fmt"

// Type is the small, closed sum of Decaf static types. Structural
// identity for class types is by name (spec §3); primitives are
// singletons so a plain == on the Type value already works for them,
// but callers should use Equal to also cover NamedType/ArrayType.
type Type interface {
	String() string
	Equal(Type) bool
	isType()
}

type primitive string

func (p primitive) String() string { return string(p) }
func (p primitive) Equal(o Type) bool {
	q, ok := o.(primitive)
	return ok && p == q
}
func (primitive) isType() {}

// Primitive singletons. Double is carried only so an encounter with it
// can be rejected explicitly (spec §1/§4.5: unsupported).
var (
	IntType    Type = primitive("int")
	BoolType   Type = primitive("bool")
	StringType Type = primitive("string")
	VoidType   Type = primitive("void")
	NullType   Type = primitive("null")
	DoubleType Type = primitive("double")
)

// NamedType wraps a class (or interface) identifier.
type NamedType struct {
	Name string
}

func (t *NamedType) String() string { return t.Name }
func (t *NamedType) Equal(o Type) bool {
	u, ok := o.(*NamedType)
	return ok && t.Name == u.Name
}
func (*NamedType) isType() {}

// ArrayType wraps an element type.
type ArrayType struct {
	Elem Type
}

func (t *ArrayType) String() string { return fmt.Sprintf("%s[]", t.Elem) }
func (t *ArrayType) Equal(o Type) bool {
	u, ok := o.(*ArrayType)
	return ok && t.Elem.Equal(u.Elem)
}
func (*ArrayType) isType() {}

// IsClass reports whether t names a class (the only Type a field
// access or method dispatch can chase further, per spec §4.6).
func IsClass(t Type) (name string, ok bool) {
	n, isNamed := t.(*NamedType)
	if !isNamed {
		return "", false
	}
	return n.Name, true
}
