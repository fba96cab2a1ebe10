// Package prim is the catalog of primitive operators: built-in operations
// (arithmetic, comparison, logical, shift, conversion, and friends) that the
// backend lowers to dedicated target instructions rather than method calls.
//
// The catalog is a closed set. Every operation belongs to exactly one
// category, and the intermediate code layer matches on the category to
// resolve call stack effects. Adding a category here without extending that
// match is a drift bug the IR layer fails loudly on.
package prim

import "fmt"

// ---------------------------------------------------------------------------
// Value kinds
// ---------------------------------------------------------------------------

// Kind is the erased value kind an operator works on.
type Kind uint8

const (
	KindBool Kind = iota
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindRef
	KindString
)

// String returns a human-readable name for a value kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindRef:
		return "ref"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ---------------------------------------------------------------------------
// Operator enumerations
// ---------------------------------------------------------------------------

// ArithOp enumerates arithmetic operators.
type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Rem
)

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "ADD"
	case Sub:
		return "SUB"
	case Mul:
		return "MUL"
	case Div:
		return "DIV"
	case Rem:
		return "REM"
	default:
		return fmt.Sprintf("ArithOp(%d)", uint8(op))
	}
}

// LogicalOp enumerates bitwise/logical operators.
type LogicalOp uint8

const (
	And LogicalOp = iota
	Or
	Xor
)

func (op LogicalOp) String() string {
	switch op {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Xor:
		return "XOR"
	default:
		return fmt.Sprintf("LogicalOp(%d)", uint8(op))
	}
}

// ShiftOp enumerates shift operators.
type ShiftOp uint8

const (
	Shl ShiftOp = iota // shift left
	AShr               // arithmetic (sign-preserving) shift right
	LShr               // logical shift right
)

func (op ShiftOp) String() string {
	switch op {
	case Shl:
		return "SHL"
	case AShr:
		return "ASHR"
	case LShr:
		return "LSHR"
	default:
		return fmt.Sprintf("ShiftOp(%d)", uint8(op))
	}
}

// TestOp enumerates boolean test operators. Conditional jump instructions
// carry a TestOp as their comparison operator as well.
type TestOp uint8

const (
	EQ TestOp = iota
	NE
	LT
	GE
	LE
	GT
)

func (op TestOp) String() string {
	switch op {
	case EQ:
		return "EQ"
	case NE:
		return "NE"
	case LT:
		return "LT"
	case GE:
		return "GE"
	case LE:
		return "LE"
	case GT:
		return "GT"
	default:
		return fmt.Sprintf("TestOp(%d)", uint8(op))
	}
}

// Negate returns the TestOp selecting exactly the cases this one rejects.
func (op TestOp) Negate() TestOp {
	switch op {
	case EQ:
		return NE
	case NE:
		return EQ
	case LT:
		return GE
	case GE:
		return LT
	case LE:
		return GT
	case GT:
		return LE
	default:
		return op
	}
}

// CompareOp enumerates three-way comparison operators. They differ only in
// how an unordered floating-point comparison resolves.
type CompareOp uint8

const (
	CmpL CompareOp = iota // unordered compares as less-than
	Cmp                   // exact comparison, no unordered case
	CmpG                  // unordered compares as greater-than
)

func (op CompareOp) String() string {
	switch op {
	case CmpL:
		return "CMPL"
	case Cmp:
		return "CMP"
	case CmpG:
		return "CMPG"
	default:
		return fmt.Sprintf("CompareOp(%d)", uint8(op))
	}
}

// ---------------------------------------------------------------------------
// Operation categories
// ---------------------------------------------------------------------------

// Operation is one primitive operator with its category and operand kind.
// The set of implementations is closed: Negation, Test, Comparison,
// Arithmetic, Logical, Shift, Conversion, ArrayLength, StringConcat.
type Operation interface {
	fmt.Stringer

	// isOperation seals the set of categories to this package.
	isOperation()
}

// Negation negates a single value of the given kind.
type Negation struct {
	Kind Kind
}

func (Negation) isOperation() {}

func (p Negation) String() string { return fmt.Sprintf("NEG(%s)", p.Kind) }

// Test compares values and yields a boolean. With Zero set the test takes a
// single operand and compares it against the zero of its kind (null for
// references); otherwise it takes two operands.
type Test struct {
	Op   TestOp
	Kind Kind
	Zero bool
}

func (Test) isOperation() {}

func (p Test) String() string {
	if p.Zero {
		return fmt.Sprintf("%sZ(%s)", p.Op, p.Kind)
	}
	return fmt.Sprintf("%s(%s)", p.Op, p.Kind)
}

// Comparison compares two values three-way, yielding -1, 0, or 1.
type Comparison struct {
	Op   CompareOp
	Kind Kind
}

func (Comparison) isOperation() {}

func (p Comparison) String() string { return fmt.Sprintf("%s(%s)", p.Op, p.Kind) }

// Arithmetic combines two values of the given kind.
type Arithmetic struct {
	Op   ArithOp
	Kind Kind
}

func (Arithmetic) isOperation() {}

func (p Arithmetic) String() string { return fmt.Sprintf("%s(%s)", p.Op, p.Kind) }

// Logical combines two values bitwise.
type Logical struct {
	Op   LogicalOp
	Kind Kind
}

func (Logical) isOperation() {}

func (p Logical) String() string { return fmt.Sprintf("%s(%s)", p.Op, p.Kind) }

// Shift shifts its first operand by its second.
type Shift struct {
	Op   ShiftOp
	Kind Kind
}

func (Shift) isOperation() {}

func (p Shift) String() string { return fmt.Sprintf("%s(%s)", p.Op, p.Kind) }

// Conversion converts a single value from one kind to another.
type Conversion struct {
	From Kind
	To   Kind
}

func (Conversion) isOperation() {}

func (p Conversion) String() string { return fmt.Sprintf("CONV(%s->%s)", p.From, p.To) }

// ArrayLength queries the length of an array of the given element kind.
type ArrayLength struct {
	Kind Kind
}

func (ArrayLength) isOperation() {}

func (p ArrayLength) String() string { return fmt.Sprintf("LENGTH(%s)", p.Kind) }

// StringConcat appends a value of the given kind to a string.
type StringConcat struct {
	Kind Kind
}

func (StringConcat) isOperation() {}

func (p StringConcat) String() string { return fmt.Sprintf("CONCAT(%s)", p.Kind) }
