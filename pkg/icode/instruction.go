package icode

import (
	"fmt"
	"strings"

	"github.com/fennec-lang/fennec/pkg/flow"
	"github.com/fennec-lang/fennec/pkg/prim"
	"github.com/fennec-lang/fennec/pkg/sym"
)

// Instruction is one operation of the abstract stack machine.
//
// Consumed and Produced are pure functions of the instruction's own payload,
// never of surrounding context or stack contents. That locality is what lets
// a verifier compute running stack depth in a single forward scan.
//
// The set of implementations is closed; isInstruction seals it to this
// package so a type switch over variants can be checked for exhaustiveness.
type Instruction interface {
	// Consumed is the number of values this instruction pops.
	Consumed() int

	// Produced is the number of values this instruction pushes.
	Produced() int

	// Difference is the net stack-depth delta, Produced minus Consumed.
	Difference() int

	// String renders the mnemonic and a short payload summary. Diagnostic
	// only: not stable, not round-trippable, not an equality key.
	String() string

	isInstruction()
}

type instr struct{}

func (instr) isInstruction() {}

// ---------------------------------------------------------------------------
// Loads
// ---------------------------------------------------------------------------

// This pushes the receiver of the enclosing method.
type This struct {
	instr
	Class sym.ClassRef
}

func (This) Consumed() int { return 0 }
func (This) Produced() int { return 1 }
func (i This) Difference() int { return i.Produced() - i.Consumed() }
func (i This) String() string { return "THIS " + i.Class.String() }

// Constant pushes a literal constant.
type Constant struct {
	instr
	Value sym.Literal
}

func (Constant) Consumed() int { return 0 }
func (Constant) Produced() int { return 1 }
func (i Constant) Difference() int { return i.Produced() - i.Consumed() }
func (i Constant) String() string { return "CONSTANT " + i.Value.String() }

// LoadArrayItem pops an array reference and an index and pushes the element.
type LoadArrayItem struct {
	instr
}

func (LoadArrayItem) Consumed() int { return 2 }
func (LoadArrayItem) Produced() int { return 1 }
func (i LoadArrayItem) Difference() int { return i.Produced() - i.Consumed() }
func (LoadArrayItem) String() string { return "LOAD_ARRAY_ITEM" }

// LoadLocal pushes a local variable or, when Arg is set, a parameter.
type LoadLocal struct {
	instr
	Local sym.LocalRef
	Arg   bool
}

func (LoadLocal) Consumed() int { return 0 }
func (LoadLocal) Produced() int { return 1 }
func (i LoadLocal) Difference() int { return i.Produced() - i.Consumed() }

func (i LoadLocal) String() string {
	if i.Arg {
		return fmt.Sprintf("LOAD_LOCAL %s (arg)", i.Local)
	}
	return fmt.Sprintf("LOAD_LOCAL %s", i.Local)
}

// LoadField pops an object reference and pushes one of its fields. The
// stack effect is fixed at 1/1 regardless of Static; producers emit a
// placeholder receiver for static reads and the backend elides it.
type LoadField struct {
	instr
	Field  sym.FieldRef
	Static bool
}

func (LoadField) Consumed() int { return 1 }
func (LoadField) Produced() int { return 1 }
func (i LoadField) Difference() int { return i.Produced() - i.Consumed() }

func (i LoadField) String() string {
	if i.Static {
		return fmt.Sprintf("LOAD_FIELD %s (static)", i.Field)
	}
	return fmt.Sprintf("LOAD_FIELD %s", i.Field)
}

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

// StoreArrayItem pops an array reference, an index, and a value.
type StoreArrayItem struct {
	instr
}

func (StoreArrayItem) Consumed() int { return 3 }
func (StoreArrayItem) Produced() int { return 0 }
func (i StoreArrayItem) Difference() int { return i.Produced() - i.Consumed() }
func (StoreArrayItem) String() string { return "STORE_ARRAY_ITEM" }

// StoreLocal pops a value into a local variable or parameter slot.
type StoreLocal struct {
	instr
	Local sym.LocalRef
	Arg   bool
}

func (StoreLocal) Consumed() int { return 1 }
func (StoreLocal) Produced() int { return 0 }
func (i StoreLocal) Difference() int { return i.Produced() - i.Consumed() }

func (i StoreLocal) String() string {
	if i.Arg {
		return fmt.Sprintf("STORE_LOCAL %s (arg)", i.Local)
	}
	return fmt.Sprintf("STORE_LOCAL %s", i.Local)
}

// StoreField pops an object reference and a value and writes the field.
// As with LoadField the effect is fixed regardless of Static.
type StoreField struct {
	instr
	Field  sym.FieldRef
	Static bool
}

func (StoreField) Consumed() int { return 2 }
func (StoreField) Produced() int { return 0 }
func (i StoreField) Difference() int { return i.Produced() - i.Consumed() }

func (i StoreField) String() string {
	if i.Static {
		return fmt.Sprintf("STORE_FIELD %s (static)", i.Field)
	}
	return fmt.Sprintf("STORE_FIELD %s", i.Field)
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// CallPrimitive applies a primitive operator to the top one or two stack
// values, depending on the operator's category.
type CallPrimitive struct {
	instr
	Op prim.Operation
}

// Consumed is 1 for the unary categories (negation, conversion, array
// length, single-operand test) and 2 for the binary ones (two-operand test,
// comparison, arithmetic, logical, shift, string concatenation).
//
// An operation outside the closed catalog means the catalog and this
// classification have drifted apart; a wrong delta here would corrupt every
// downstream depth computation, so the gap panics instead of defaulting.
func (i CallPrimitive) Consumed() int {
	switch p := i.Op.(type) {
	case prim.Negation, prim.Conversion, prim.ArrayLength:
		return 1
	case prim.Test:
		if p.Zero {
			return 1
		}
		return 2
	case prim.Comparison, prim.Arithmetic, prim.Logical, prim.Shift, prim.StringConcat:
		return 2
	default:
		panic(fmt.Sprintf("icode: unclassified primitive operation %T (%v)", i.Op, i.Op))
	}
}

// Produced is always 1: every primitive yields exactly one result value.
func (CallPrimitive) Produced() int { return 1 }

func (i CallPrimitive) Difference() int { return i.Produced() - i.Consumed() }
func (i CallPrimitive) String() string { return "CALL_PRIMITIVE " + i.Op.String() }

// CallMethod invokes a method or constructor through the given style.
type CallMethod struct {
	instr
	Method sym.MethodRef
	Style  InvocationStyle
}

// Consumed is the declared parameter count plus one receiver slot when the
// style expects a receiver beneath the arguments.
func (i CallMethod) Consumed() int {
	return i.Method.ParamCount + receiverSlots(i.Style)
}

// Produced is always 1, void targets included; the backend reconciles this
// with its own unit-value convention.
func (CallMethod) Produced() int { return 1 }

func (i CallMethod) Difference() int { return i.Produced() - i.Consumed() }

func (i CallMethod) String() string {
	return fmt.Sprintf("CALL_METHOD %s (%s)", i.Method, i.Style)
}

// ---------------------------------------------------------------------------
// Allocation and type tests
// ---------------------------------------------------------------------------

// New pushes a fresh uninitialized instance of a class. The constructor runs
// via a separate CallMethod with a NewInstance or Static style.
type New struct {
	instr
	Class sym.ClassRef
}

func (New) Consumed() int { return 0 }
func (New) Produced() int { return 1 }
func (i New) Difference() int { return i.Produced() - i.Consumed() }
func (i New) String() string { return "NEW " + i.Class.String() }

// CreateArray pops a length and pushes a new array of the element type.
type CreateArray struct {
	instr
	Elem sym.TypeRef
}

func (CreateArray) Consumed() int { return 1 }
func (CreateArray) Produced() int { return 1 }
func (i CreateArray) Difference() int { return i.Produced() - i.Consumed() }
func (i CreateArray) String() string { return "CREATE_ARRAY " + i.Elem.String() }

// IsInstance pops a reference and pushes the boolean result of a type test.
type IsInstance struct {
	instr
	Type sym.TypeRef
}

func (IsInstance) Consumed() int { return 1 }
func (IsInstance) Produced() int { return 1 }
func (i IsInstance) Difference() int { return i.Produced() - i.Consumed() }
func (i IsInstance) String() string { return "IS_INSTANCE " + i.Type.String() }

// CheckCast pops a reference and pushes it back narrowed to the target type,
// or traps at run time. Statically the effect is 1/1.
type CheckCast struct {
	instr
	Type sym.TypeRef
}

func (CheckCast) Consumed() int { return 1 }
func (CheckCast) Produced() int { return 1 }
func (i CheckCast) Difference() int { return i.Produced() - i.Consumed() }
func (i CheckCast) String() string { return "CHECK_CAST " + i.Type.String() }

// ---------------------------------------------------------------------------
// Control transfer
// ---------------------------------------------------------------------------

// Switch pops a tag value and jumps to the block whose tag set contains it.
// Blocks is ordered to match Tags; when it holds one extra entry, the last
// block is the default target. The tag table never changes the stack effect.
type Switch struct {
	instr
	Tags   [][]int64
	Blocks []flow.BlockID
}

func (Switch) Consumed() int { return 1 }
func (Switch) Produced() int { return 0 }
func (i Switch) Difference() int { return i.Produced() - i.Consumed() }

func (i Switch) String() string {
	labels := make([]string, len(i.Blocks))
	for n, id := range i.Blocks {
		labels[n] = id.String()
	}
	return "SWITCH " + strings.Join(labels, ", ")
}

// Targets returns the successor blocks in payload order.
func (i Switch) Targets() []flow.BlockID {
	out := make([]flow.BlockID, len(i.Blocks))
	copy(out, i.Blocks)
	return out
}

// Jump transfers control unconditionally.
type Jump struct {
	instr
	Target flow.BlockID
}

func (Jump) Consumed() int { return 0 }
func (Jump) Produced() int { return 0 }
func (i Jump) Difference() int { return i.Produced() - i.Consumed() }
func (i Jump) String() string { return "JUMP " + i.Target.String() }

// Targets returns the single successor block.
func (i Jump) Targets() []flow.BlockID { return []flow.BlockID{i.Target} }

// CJump pops two values, compares them with Cond, and branches to Success
// or Failure.
type CJump struct {
	instr
	Success flow.BlockID
	Failure flow.BlockID
	Cond    prim.TestOp
}

func (CJump) Consumed() int { return 2 }
func (CJump) Produced() int { return 0 }
func (i CJump) Difference() int { return i.Produced() - i.Consumed() }

func (i CJump) String() string {
	return fmt.Sprintf("CJUMP %s then %s else %s", i.Cond, i.Success, i.Failure)
}

// Targets returns the success then the failure block.
func (i CJump) Targets() []flow.BlockID { return []flow.BlockID{i.Success, i.Failure} }

// CZJump pops one value, compares it against the zero of its kind with Cond,
// and branches to Success or Failure.
type CZJump struct {
	instr
	Success flow.BlockID
	Failure flow.BlockID
	Cond    prim.TestOp
}

func (CZJump) Consumed() int { return 1 }
func (CZJump) Produced() int { return 0 }
func (i CZJump) Difference() int { return i.Produced() - i.Consumed() }

func (i CZJump) String() string {
	return fmt.Sprintf("CZJUMP %s then %s else %s", i.Cond, i.Success, i.Failure)
}

// Targets returns the success then the failure block.
func (i CZJump) Targets() []flow.BlockID { return []flow.BlockID{i.Success, i.Failure} }

// Return leaves the enclosing method. Any return value has already been
// stored by the translator, so the stack effect is 0/0.
type Return struct {
	instr
}

func (Return) Consumed() int { return 0 }
func (Return) Produced() int { return 0 }
func (i Return) Difference() int { return i.Produced() - i.Consumed() }
func (Return) String() string { return "RETURN" }

// Targets returns no successors.
func (Return) Targets() []flow.BlockID { return nil }

// Throw pops an exception reference and unwinds.
type Throw struct {
	instr
}

func (Throw) Consumed() int { return 1 }
func (Throw) Produced() int { return 0 }
func (i Throw) Difference() int { return i.Produced() - i.Consumed() }
func (Throw) String() string { return "THROW" }

// Targets returns no successors.
func (Throw) Targets() []flow.BlockID { return nil }

// ---------------------------------------------------------------------------
// Stack and monitors
// ---------------------------------------------------------------------------

// Drop discards the top stack value of the given type.
type Drop struct {
	instr
	Type sym.TypeRef
}

func (Drop) Consumed() int { return 1 }
func (Drop) Produced() int { return 0 }
func (i Drop) Difference() int { return i.Produced() - i.Consumed() }
func (i Drop) String() string { return "DROP " + i.Type.String() }

// Dup duplicates the top stack value of the given type.
type Dup struct {
	instr
	Type sym.TypeRef
}

func (Dup) Consumed() int { return 1 }
func (Dup) Produced() int { return 2 }
func (i Dup) Difference() int { return i.Produced() - i.Consumed() }
func (i Dup) String() string { return "DUP " + i.Type.String() }

// MonitorEnter pops an object reference and acquires its monitor.
type MonitorEnter struct {
	instr
}

func (MonitorEnter) Consumed() int { return 1 }
func (MonitorEnter) Produced() int { return 0 }
func (i MonitorEnter) Difference() int { return i.Produced() - i.Consumed() }
func (MonitorEnter) String() string { return "MONITOR_ENTER" }

// MonitorExit pops an object reference and releases its monitor.
type MonitorExit struct {
	instr
}

func (MonitorExit) Consumed() int { return 1 }
func (MonitorExit) Produced() int { return 0 }
func (i MonitorExit) Difference() int { return i.Produced() - i.Consumed() }
func (MonitorExit) String() string { return "MONITOR_EXIT" }

// ---------------------------------------------------------------------------
// Classification helpers
// ---------------------------------------------------------------------------

// IsTerminator reports whether the instruction ends a basic block.
func IsTerminator(in Instruction) bool {
	switch in.(type) {
	case Switch, Jump, CJump, CZJump, Return, Throw:
		return true
	default:
		return false
	}
}

// Targets returns the successor blocks of a terminator, or nil for
// straight-line instructions.
func Targets(in Instruction) []flow.BlockID {
	if t, ok := in.(interface{ Targets() []flow.BlockID }); ok {
		return t.Targets()
	}
	return nil
}
