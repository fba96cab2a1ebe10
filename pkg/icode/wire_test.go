package icode

import (
	"bytes"
	"testing"

	"github.com/fennec-lang/fennec/pkg/flow"
	"github.com/fennec-lang/fennec/pkg/prim"
	"github.com/fennec-lang/fennec/pkg/sym"
)

// wireTestGraph builds a two-block method touching most variant payloads.
func wireTestGraph() *flow.Graph {
	g := flow.NewGraph("Point.move")
	entry := g.NewBlock()
	body := g.NewBlock()
	done := g.NewBlock()

	g.Append(entry,
		This{Class: testClass},
		LoadField{Field: testField},
		Constant{Value: sym.Literal{Value: int64(10)}},
		CallPrimitive{Op: prim.Test{Op: prim.LT, Kind: prim.KindInt}},
		CZJump{Success: body, Failure: done, Cond: prim.NE},
	)
	g.Append(body,
		This{Class: testClass},
		LoadLocal{Local: sym.LocalRef{Name: "dx", Index: 0}, Arg: true},
		CallMethod{Method: method("translate", 1), Style: SuperCall{Trait: "Movable"}},
		StoreLocal{Local: sym.LocalRef{Name: "tmp", Index: 1}},
		Jump{Target: done},
	)
	g.Append(done,
		Return{},
	)
	return g
}

func TestGraphRoundTrip(t *testing.T) {
	g := wireTestGraph()

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph failed: %v", err)
	}

	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph failed: %v", err)
	}

	if got, want := back.Dump(), g.Dump(); got != want {
		t.Errorf("round-tripped listing differs:\ngot:\n%s\nwant:\n%s", got, want)
	}

	// The stack-effect contract survives transport.
	for n, b := range g.Blocks() {
		rb := back.Block(flow.BlockID(n))
		if len(rb.Instrs) != len(b.Instrs) {
			t.Fatalf("block %s: %d instructions, want %d", b.ID, len(rb.Instrs), len(b.Instrs))
		}
		for i := range b.Instrs {
			if rb.Instrs[i].Difference() != b.Instrs[i].Difference() {
				t.Errorf("block %s instruction %d: Difference() = %d, want %d",
					b.ID, i, rb.Instrs[i].Difference(), b.Instrs[i].Difference())
			}
		}
	}

	if err := CheckGraph(back, 0); err != nil {
		t.Errorf("round-tripped graph fails depth check: %v", err)
	}
}

func TestMarshalGraphDeterministic(t *testing.T) {
	g := wireTestGraph()

	first, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph failed: %v", err)
	}
	second, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("canonical encoding produced different bytes for the same graph")
	}
}

func TestInstructionSequenceRoundTrip(t *testing.T) {
	seq := []Instruction{
		New{Class: testClass},
		CallMethod{Method: method("init", 0), Style: Static{OnInstance: true}},
		Dup{Type: sym.TypeRef{Name: "Point"}},
		StoreLocal{Local: sym.LocalRef{Name: "p", Index: 0}},
		Drop{Type: sym.TypeRef{Name: "Point"}},
	}

	data, err := MarshalInstructions(seq)
	if err != nil {
		t.Fatalf("MarshalInstructions failed: %v", err)
	}
	back, err := UnmarshalInstructions(data)
	if err != nil {
		t.Fatalf("UnmarshalInstructions failed: %v", err)
	}

	if len(back) != len(seq) {
		t.Fatalf("got %d instructions, want %d", len(back), len(seq))
	}
	for i := range seq {
		if back[i].String() != seq[i].String() {
			t.Errorf("instruction %d: got %s, want %s", i, back[i], seq[i])
		}
	}
}

func TestUnmarshalGraphRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalGraph([]byte{0xFF, 0x00, 0x01}); err == nil {
		t.Error("UnmarshalGraph accepted garbage bytes")
	}
}
