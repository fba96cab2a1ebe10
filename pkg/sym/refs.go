// Package sym defines the symbolic references the intermediate code carries:
// small comparable handles for classes, methods, fields, locals, and erased
// types. The references are opaque to the IR layer — it stores and forwards
// them, never decomposes them. Name resolution, scoping, and type checking
// own the referenced entities; this package only names them.
package sym

import "fmt"

// ---------------------------------------------------------------------------
// Reference handles
// ---------------------------------------------------------------------------

// ClassRef names a class.
type ClassRef struct {
	Name string
}

func (c ClassRef) String() string { return c.Name }

// TypeRef names an erased type (after generics are flattened away).
// Element types of arrays and targets of casts and instance tests use it.
type TypeRef struct {
	Name string
}

func (t TypeRef) String() string { return t.Name }

// MethodRef names a method or constructor of a class. ParamCount is the
// number of declared parameters, not counting any receiver; the IR layer
// reads it to compute call stack effects and nothing else.
type MethodRef struct {
	Owner      ClassRef
	Name       string
	ParamCount int
}

func (m MethodRef) String() string {
	return fmt.Sprintf("%s.%s", m.Owner.Name, m.Name)
}

// FieldRef names a field of a class.
type FieldRef struct {
	Owner ClassRef
	Name  string
}

func (f FieldRef) String() string {
	return fmt.Sprintf("%s.%s", f.Owner.Name, f.Name)
}

// LocalRef names a local variable or parameter slot of the enclosing method.
type LocalRef struct {
	Name  string
	Index int
}

func (l LocalRef) String() string { return l.Name }

// Literal is a constant value supplied by the constant pool. The IR layer
// never inspects the value; it is rendered with %v for diagnostics only.
type Literal struct {
	Value any
}

func (l Literal) String() string { return fmt.Sprintf("%v", l.Value) }
