package icode

import (
	"testing"

	"github.com/fennec-lang/fennec/pkg/flow"
	"github.com/fennec-lang/fennec/pkg/prim"
	"github.com/fennec-lang/fennec/pkg/sym"
)

var (
	testClass = sym.ClassRef{Name: "Point"}
	testType  = sym.TypeRef{Name: "int"}
	testField = sym.FieldRef{Owner: testClass, Name: "x"}
	testLocal = sym.LocalRef{Name: "tmp", Index: 2}
)

func method(name string, params int) sym.MethodRef {
	return sym.MethodRef{Owner: testClass, Name: name, ParamCount: params}
}

func TestFixedStackEffects(t *testing.T) {
	tests := []struct {
		in       Instruction
		consumed int
		produced int
	}{
		{This{Class: testClass}, 0, 1},
		{This{Class: sym.ClassRef{Name: "Other"}}, 0, 1},
		{Constant{Value: sym.Literal{Value: 42}}, 0, 1},
		{Constant{Value: sym.Literal{Value: "hello"}}, 0, 1},
		{LoadArrayItem{}, 2, 1},
		{LoadLocal{Local: testLocal}, 0, 1},
		{LoadLocal{Local: testLocal, Arg: true}, 0, 1},
		{LoadField{Field: testField}, 1, 1},
		{LoadField{Field: testField, Static: true}, 1, 1},
		{StoreArrayItem{}, 3, 0},
		{StoreLocal{Local: testLocal}, 1, 0},
		{StoreLocal{Local: testLocal, Arg: true}, 1, 0},
		{StoreField{Field: testField}, 2, 0},
		{StoreField{Field: testField, Static: true}, 2, 0},
		{New{Class: testClass}, 0, 1},
		{CreateArray{Elem: testType}, 1, 1},
		{IsInstance{Type: testType}, 1, 1},
		{CheckCast{Type: testType}, 1, 1},
		{Switch{Tags: [][]int64{{1}, {2, 3}}, Blocks: []flow.BlockID{0, 1, 2}}, 1, 0},
		{Switch{}, 1, 0},
		{Jump{Target: 4}, 0, 0},
		{CJump{Success: 1, Failure: 2, Cond: prim.LT}, 2, 0},
		{CZJump{Success: 1, Failure: 2, Cond: prim.EQ}, 1, 0},
		{Return{}, 0, 0},
		{Throw{}, 1, 0},
		{Drop{Type: testType}, 1, 0},
		{Dup{Type: testType}, 1, 2},
		{MonitorEnter{}, 1, 0},
		{MonitorExit{}, 1, 0},
	}

	for _, tt := range tests {
		if got := tt.in.Consumed(); got != tt.consumed {
			t.Errorf("%s: Consumed() = %d, want %d", tt.in, got, tt.consumed)
		}
		if got := tt.in.Produced(); got != tt.produced {
			t.Errorf("%s: Produced() = %d, want %d", tt.in, got, tt.produced)
		}
	}
}

// sampleInstructions covers every variant once, for whole-algebra properties.
func sampleInstructions() []Instruction {
	return []Instruction{
		This{Class: testClass},
		Constant{Value: sym.Literal{Value: int64(7)}},
		LoadArrayItem{},
		LoadLocal{Local: testLocal, Arg: true},
		LoadField{Field: testField},
		StoreArrayItem{},
		StoreLocal{Local: testLocal},
		StoreField{Field: testField, Static: true},
		CallPrimitive{Op: prim.Arithmetic{Op: prim.Add, Kind: prim.KindInt}},
		CallMethod{Method: method("move", 2), Style: Dynamic{}},
		New{Class: testClass},
		CreateArray{Elem: testType},
		IsInstance{Type: testType},
		CheckCast{Type: testType},
		Switch{Tags: [][]int64{{0}}, Blocks: []flow.BlockID{1, 2}},
		Jump{Target: 1},
		CJump{Success: 1, Failure: 2, Cond: prim.GE},
		CZJump{Success: 1, Failure: 2, Cond: prim.NE},
		Return{},
		Throw{},
		Drop{Type: testType},
		Dup{Type: testType},
		MonitorEnter{},
		MonitorExit{},
	}
}

func TestDifferenceInvariant(t *testing.T) {
	for _, in := range sampleInstructions() {
		want := in.Produced() - in.Consumed()
		if got := in.Difference(); got != want {
			t.Errorf("%s: Difference() = %d, want %d", in, got, want)
		}
	}
}

func TestCallPrimitiveBuckets(t *testing.T) {
	tests := []struct {
		op       prim.Operation
		consumed int
	}{
		{prim.Negation{Kind: prim.KindInt}, 1},
		{prim.Test{Op: prim.EQ, Kind: prim.KindRef, Zero: true}, 1},
		{prim.Conversion{From: prim.KindInt, To: prim.KindLong}, 1},
		{prim.ArrayLength{Kind: prim.KindInt}, 1},
		{prim.Test{Op: prim.LT, Kind: prim.KindInt}, 2},
		{prim.Comparison{Op: prim.CmpL, Kind: prim.KindDouble}, 2},
		{prim.Arithmetic{Op: prim.Add, Kind: prim.KindInt}, 2},
		{prim.Logical{Op: prim.Xor, Kind: prim.KindLong}, 2},
		{prim.Shift{Op: prim.Shl, Kind: prim.KindInt}, 2},
		{prim.StringConcat{Kind: prim.KindString}, 2},
	}

	for _, tt := range tests {
		in := CallPrimitive{Op: tt.op}
		if got := in.Consumed(); got != tt.consumed {
			t.Errorf("CALL_PRIMITIVE %s: Consumed() = %d, want %d", tt.op, got, tt.consumed)
		}
		if got := in.Produced(); got != 1 {
			t.Errorf("CALL_PRIMITIVE %s: Produced() = %d, want 1", tt.op, got)
		}
	}
}

func TestCallPrimitiveUnclassifiedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Consumed() on an unclassified primitive did not panic")
		}
	}()
	CallPrimitive{}.Consumed()
}

func TestCallMethodEffects(t *testing.T) {
	tests := []struct {
		method   sym.MethodRef
		style    InvocationStyle
		consumed int
	}{
		{method("move", 2), Dynamic{}, 3},
		{method("init", 0), Static{OnInstance: true}, 1},
		{method("of", 1), Static{}, 1},
		{method("make", 3), NewInstance{}, 3},
		{method("render", 2), SuperCall{Trait: "Drawable"}, 3},
		{method("hash", 0), Dynamic{}, 1},
	}

	for _, tt := range tests {
		in := CallMethod{Method: tt.method, Style: tt.style}
		if got := in.Consumed(); got != tt.consumed {
			t.Errorf("CALL_METHOD %s (%s): Consumed() = %d, want %d", tt.method, tt.style, got, tt.consumed)
		}
		if got := in.Produced(); got != 1 {
			t.Errorf("CALL_METHOD %s (%s): Produced() = %d, want 1", tt.method, tt.style, got)
		}
	}
}

func TestCallMethodScenarios(t *testing.T) {
	call := CallMethod{Method: method("move", 2), Style: Dynamic{}}
	if call.Consumed() != 3 || call.Produced() != 1 || call.Difference() != -2 {
		t.Errorf("dynamic 2-param call: got %d/%d/%d, want 3/1/-2",
			call.Consumed(), call.Produced(), call.Difference())
	}

	ctor := CallMethod{Method: method("init", 0), Style: Static{OnInstance: true}}
	if ctor.Consumed() != 1 || ctor.Produced() != 1 || ctor.Difference() != 0 {
		t.Errorf("0-param constructor call: got %d/%d/%d, want 1/1/0",
			ctor.Consumed(), ctor.Produced(), ctor.Difference())
	}

	dup := Dup{Type: testType}
	if dup.Consumed() != 1 || dup.Produced() != 2 || dup.Difference() != 1 {
		t.Errorf("DUP: got %d/%d/%d, want 1/2/1", dup.Consumed(), dup.Produced(), dup.Difference())
	}
}

func TestRendering(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{This{Class: testClass}, "THIS Point"},
		{Constant{Value: sym.Literal{Value: 42}}, "CONSTANT 42"},
		{LoadLocal{Local: testLocal, Arg: true}, "LOAD_LOCAL tmp (arg)"},
		{LoadField{Field: testField, Static: true}, "LOAD_FIELD Point.x (static)"},
		{StoreField{Field: testField}, "STORE_FIELD Point.x"},
		{CallPrimitive{Op: prim.Arithmetic{Op: prim.Add, Kind: prim.KindInt}}, "CALL_PRIMITIVE ADD(int)"},
		{CallMethod{Method: method("move", 2), Style: Dynamic{}}, "CALL_METHOD Point.move (dynamic)"},
		{New{Class: testClass}, "NEW Point"},
		{CreateArray{Elem: testType}, "CREATE_ARRAY int"},
		{Switch{Tags: [][]int64{{1}}, Blocks: []flow.BlockID{3, 5}}, "SWITCH B3, B5"},
		{Jump{Target: 2}, "JUMP B2"},
		{CJump{Success: 1, Failure: 2, Cond: prim.LT}, "CJUMP LT then B1 else B2"},
		{CZJump{Success: 4, Failure: 0, Cond: prim.EQ}, "CZJUMP EQ then B4 else B0"},
		{Return{}, "RETURN"},
		{Dup{Type: testType}, "DUP int"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		// Rendering is pure: a second call yields the same output.
		if again := tt.in.String(); again != tt.want {
			t.Errorf("second String() = %q, want %q", again, tt.want)
		}
	}
}

func TestTerminatorClassification(t *testing.T) {
	for _, in := range sampleInstructions() {
		var want bool
		switch in.(type) {
		case Switch, Jump, CJump, CZJump, Return, Throw:
			want = true
		}
		if got := IsTerminator(in); got != want {
			t.Errorf("IsTerminator(%s) = %v, want %v", in, got, want)
		}
	}

	cj := CJump{Success: 7, Failure: 3, Cond: prim.GT}
	targets := Targets(cj)
	if len(targets) != 2 || targets[0] != 7 || targets[1] != 3 {
		t.Errorf("Targets(%s) = %v, want [B7 B3]", cj, targets)
	}
	if got := Targets(Dup{Type: testType}); got != nil {
		t.Errorf("Targets(DUP) = %v, want nil", got)
	}
}
