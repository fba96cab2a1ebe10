package icode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/fennec-lang/fennec/pkg/flow"
	"github.com/fennec-lang/fennec/pkg/prim"
	"github.com/fennec-lang/fennec/pkg/sym"
)

// WireVersion is the current wire format version. Increment on incompatible
// changes.
const WireVersion uint16 = 1

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("icode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ---------------------------------------------------------------------------
// Wire envelopes
// ---------------------------------------------------------------------------

// wireInstr is an adjacently tagged union: Op selects the variant and only
// that variant's fields are meaningful. Identifier strings live in the name
// pool and are referenced by index.
type wireInstr struct {
	Op string `cbor:"op"`

	Class  uint32    `cbor:"class,omitempty"`  // THIS, NEW, owner of methods/fields
	Name   uint32    `cbor:"name,omitempty"`   // method/field/local/type name
	Params int       `cbor:"params,omitempty"` // CALL_METHOD
	Index  int       `cbor:"index,omitempty"`  // LOAD_LOCAL, STORE_LOCAL
	Arg    bool      `cbor:"arg,omitempty"`
	Static bool      `cbor:"static,omitempty"`
	Value  any       `cbor:"value,omitempty"` // CONSTANT
	Style  wireStyle `cbor:"style"`
	Prim   wirePrim  `cbor:"prim"`

	Tags    [][]int64 `cbor:"tags,omitempty"`
	Blocks  []uint32  `cbor:"blocks,omitempty"`
	Target  uint32    `cbor:"target,omitempty"`
	Success uint32    `cbor:"success,omitempty"`
	Failure uint32    `cbor:"failure,omitempty"`
	Cond    uint8     `cbor:"cond,omitempty"`
}

type wireStyle struct {
	Kind       string `cbor:"kind,omitempty"`
	OnInstance bool   `cbor:"onInstance,omitempty"`
	Trait      uint32 `cbor:"trait,omitempty"`
}

type wirePrim struct {
	Cat  string `cbor:"cat,omitempty"`
	Op   uint8  `cbor:"op,omitempty"`
	Kind uint8  `cbor:"kind,omitempty"`
	From uint8  `cbor:"from,omitempty"`
	To   uint8  `cbor:"to,omitempty"`
	Zero bool   `cbor:"zero,omitempty"`
}

type wireBlock struct {
	Instrs []wireInstr `cbor:"instrs"`
}

// wireGraph is the serialized form of one method's flow graph. Block IDs are
// implicit: blocks appear in arena order.
type wireGraph struct {
	Version uint16      `cbor:"v"`
	Name    string      `cbor:"name"`
	Names   []string    `cbor:"names"`
	Blocks  []wireBlock `cbor:"blocks"`
}

// ---------------------------------------------------------------------------
// Marshal
// ---------------------------------------------------------------------------

// MarshalGraph serializes a flow graph of icode instructions to CBOR bytes.
func MarshalGraph(g *flow.Graph) ([]byte, error) {
	names := sym.NewNames()
	wg := wireGraph{
		Version: WireVersion,
		Name:    g.Name,
	}
	for _, b := range g.Blocks() {
		wb := wireBlock{Instrs: make([]wireInstr, 0, len(b.Instrs))}
		for i, raw := range b.Instrs {
			in, ok := raw.(Instruction)
			if !ok {
				return nil, fmt.Errorf("icode: marshal graph %q: block %s instruction %d is %T, not icode", g.Name, b.ID, i, raw)
			}
			wi, err := encodeInstr(in, names)
			if err != nil {
				return nil, fmt.Errorf("icode: marshal graph %q: block %s: %w", g.Name, b.ID, err)
			}
			wb.Instrs = append(wb.Instrs, wi)
		}
		wg.Blocks = append(wg.Blocks, wb)
	}
	wg.Names = names.All()
	return cborEncMode.Marshal(&wg)
}

// UnmarshalGraph deserializes a flow graph from CBOR bytes.
func UnmarshalGraph(data []byte) (*flow.Graph, error) {
	var wg wireGraph
	if err := cbor.Unmarshal(data, &wg); err != nil {
		return nil, fmt.Errorf("icode: unmarshal graph: %w", err)
	}
	if wg.Version != WireVersion {
		return nil, fmt.Errorf("icode: unmarshal graph %q: wire version %d, want %d", wg.Name, wg.Version, WireVersion)
	}

	g := flow.NewGraph(wg.Name)
	for range wg.Blocks {
		g.NewBlock()
	}
	for n, wb := range wg.Blocks {
		id := flow.BlockID(n)
		for _, wi := range wb.Instrs {
			in, err := decodeInstr(wi, wg.Names)
			if err != nil {
				return nil, fmt.Errorf("icode: unmarshal graph %q: block %s: %w", wg.Name, id, err)
			}
			g.Append(id, in)
		}
	}
	return g, nil
}

// MarshalInstructions serializes a straight-line instruction sequence.
func MarshalInstructions(instrs []Instruction) ([]byte, error) {
	g := flow.NewGraph("")
	id := g.NewBlock()
	for _, in := range instrs {
		g.Append(id, in)
	}
	return MarshalGraph(g)
}

// UnmarshalInstructions deserializes a sequence written by
// MarshalInstructions.
func UnmarshalInstructions(data []byte) ([]Instruction, error) {
	g, err := UnmarshalGraph(data)
	if err != nil {
		return nil, err
	}
	if g.Len() != 1 {
		return nil, fmt.Errorf("icode: unmarshal instructions: %d blocks, want 1", g.Len())
	}
	b := g.Block(0)
	out := make([]Instruction, len(b.Instrs))
	for i, raw := range b.Instrs {
		out[i] = raw.(Instruction)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Per-variant encoding
// ---------------------------------------------------------------------------

func encodeInstr(in Instruction, names *sym.Names) (wireInstr, error) {
	switch v := in.(type) {
	case This:
		return wireInstr{Op: "THIS", Class: names.Intern(v.Class.Name)}, nil
	case Constant:
		return wireInstr{Op: "CONSTANT", Value: v.Value.Value}, nil
	case LoadArrayItem:
		return wireInstr{Op: "LOAD_ARRAY_ITEM"}, nil
	case LoadLocal:
		return wireInstr{Op: "LOAD_LOCAL", Name: names.Intern(v.Local.Name), Index: v.Local.Index, Arg: v.Arg}, nil
	case LoadField:
		return wireInstr{Op: "LOAD_FIELD", Class: names.Intern(v.Field.Owner.Name), Name: names.Intern(v.Field.Name), Static: v.Static}, nil
	case StoreArrayItem:
		return wireInstr{Op: "STORE_ARRAY_ITEM"}, nil
	case StoreLocal:
		return wireInstr{Op: "STORE_LOCAL", Name: names.Intern(v.Local.Name), Index: v.Local.Index, Arg: v.Arg}, nil
	case StoreField:
		return wireInstr{Op: "STORE_FIELD", Class: names.Intern(v.Field.Owner.Name), Name: names.Intern(v.Field.Name), Static: v.Static}, nil
	case CallPrimitive:
		wp, err := encodePrim(v.Op)
		if err != nil {
			return wireInstr{}, err
		}
		return wireInstr{Op: "CALL_PRIMITIVE", Prim: wp}, nil
	case CallMethod:
		ws, err := encodeStyle(v.Style, names)
		if err != nil {
			return wireInstr{}, err
		}
		return wireInstr{
			Op:     "CALL_METHOD",
			Class:  names.Intern(v.Method.Owner.Name),
			Name:   names.Intern(v.Method.Name),
			Params: v.Method.ParamCount,
			Style:  ws,
		}, nil
	case New:
		return wireInstr{Op: "NEW", Class: names.Intern(v.Class.Name)}, nil
	case CreateArray:
		return wireInstr{Op: "CREATE_ARRAY", Name: names.Intern(v.Elem.Name)}, nil
	case IsInstance:
		return wireInstr{Op: "IS_INSTANCE", Name: names.Intern(v.Type.Name)}, nil
	case CheckCast:
		return wireInstr{Op: "CHECK_CAST", Name: names.Intern(v.Type.Name)}, nil
	case Switch:
		blocks := make([]uint32, len(v.Blocks))
		for i, id := range v.Blocks {
			blocks[i] = uint32(id)
		}
		return wireInstr{Op: "SWITCH", Tags: v.Tags, Blocks: blocks}, nil
	case Jump:
		return wireInstr{Op: "JUMP", Target: uint32(v.Target)}, nil
	case CJump:
		return wireInstr{Op: "CJUMP", Success: uint32(v.Success), Failure: uint32(v.Failure), Cond: uint8(v.Cond)}, nil
	case CZJump:
		return wireInstr{Op: "CZJUMP", Success: uint32(v.Success), Failure: uint32(v.Failure), Cond: uint8(v.Cond)}, nil
	case Return:
		return wireInstr{Op: "RETURN"}, nil
	case Throw:
		return wireInstr{Op: "THROW"}, nil
	case Drop:
		return wireInstr{Op: "DROP", Name: names.Intern(v.Type.Name)}, nil
	case Dup:
		return wireInstr{Op: "DUP", Name: names.Intern(v.Type.Name)}, nil
	case MonitorEnter:
		return wireInstr{Op: "MONITOR_ENTER"}, nil
	case MonitorExit:
		return wireInstr{Op: "MONITOR_EXIT"}, nil
	default:
		return wireInstr{}, fmt.Errorf("cannot encode instruction %T", in)
	}
}

func decodeInstr(w wireInstr, names []string) (Instruction, error) {
	name := func(id uint32) (string, error) {
		if int(id) >= len(names) {
			return "", fmt.Errorf("%s: name index %d out of range", w.Op, id)
		}
		return names[id], nil
	}

	switch w.Op {
	case "THIS":
		cls, err := name(w.Class)
		if err != nil {
			return nil, err
		}
		return This{Class: sym.ClassRef{Name: cls}}, nil
	case "CONSTANT":
		return Constant{Value: sym.Literal{Value: w.Value}}, nil
	case "LOAD_ARRAY_ITEM":
		return LoadArrayItem{}, nil
	case "LOAD_LOCAL", "STORE_LOCAL":
		n, err := name(w.Name)
		if err != nil {
			return nil, err
		}
		local := sym.LocalRef{Name: n, Index: w.Index}
		if w.Op == "LOAD_LOCAL" {
			return LoadLocal{Local: local, Arg: w.Arg}, nil
		}
		return StoreLocal{Local: local, Arg: w.Arg}, nil
	case "LOAD_FIELD", "STORE_FIELD":
		owner, err := name(w.Class)
		if err != nil {
			return nil, err
		}
		n, err := name(w.Name)
		if err != nil {
			return nil, err
		}
		field := sym.FieldRef{Owner: sym.ClassRef{Name: owner}, Name: n}
		if w.Op == "LOAD_FIELD" {
			return LoadField{Field: field, Static: w.Static}, nil
		}
		return StoreField{Field: field, Static: w.Static}, nil
	case "CALL_PRIMITIVE":
		op, err := decodePrim(w.Prim)
		if err != nil {
			return nil, err
		}
		return CallPrimitive{Op: op}, nil
	case "CALL_METHOD":
		owner, err := name(w.Class)
		if err != nil {
			return nil, err
		}
		n, err := name(w.Name)
		if err != nil {
			return nil, err
		}
		style, err := decodeStyle(w.Style, names)
		if err != nil {
			return nil, err
		}
		return CallMethod{
			Method: sym.MethodRef{Owner: sym.ClassRef{Name: owner}, Name: n, ParamCount: w.Params},
			Style:  style,
		}, nil
	case "NEW":
		cls, err := name(w.Class)
		if err != nil {
			return nil, err
		}
		return New{Class: sym.ClassRef{Name: cls}}, nil
	case "CREATE_ARRAY", "IS_INSTANCE", "CHECK_CAST", "DROP", "DUP":
		n, err := name(w.Name)
		if err != nil {
			return nil, err
		}
		t := sym.TypeRef{Name: n}
		switch w.Op {
		case "CREATE_ARRAY":
			return CreateArray{Elem: t}, nil
		case "IS_INSTANCE":
			return IsInstance{Type: t}, nil
		case "CHECK_CAST":
			return CheckCast{Type: t}, nil
		case "DROP":
			return Drop{Type: t}, nil
		default:
			return Dup{Type: t}, nil
		}
	case "SWITCH":
		blocks := make([]flow.BlockID, len(w.Blocks))
		for i, id := range w.Blocks {
			blocks[i] = flow.BlockID(id)
		}
		return Switch{Tags: w.Tags, Blocks: blocks}, nil
	case "JUMP":
		return Jump{Target: flow.BlockID(w.Target)}, nil
	case "CJUMP":
		return CJump{Success: flow.BlockID(w.Success), Failure: flow.BlockID(w.Failure), Cond: prim.TestOp(w.Cond)}, nil
	case "CZJUMP":
		return CZJump{Success: flow.BlockID(w.Success), Failure: flow.BlockID(w.Failure), Cond: prim.TestOp(w.Cond)}, nil
	case "RETURN":
		return Return{}, nil
	case "THROW":
		return Throw{}, nil
	case "MONITOR_ENTER":
		return MonitorEnter{}, nil
	case "MONITOR_EXIT":
		return MonitorExit{}, nil
	default:
		return nil, fmt.Errorf("unknown instruction op %q", w.Op)
	}
}

func encodeStyle(s InvocationStyle, names *sym.Names) (wireStyle, error) {
	switch v := s.(type) {
	case NewInstance:
		return wireStyle{Kind: "new"}, nil
	case Dynamic:
		return wireStyle{Kind: "dynamic"}, nil
	case Static:
		return wireStyle{Kind: "static", OnInstance: v.OnInstance}, nil
	case SuperCall:
		return wireStyle{Kind: "super", Trait: names.Intern(v.Trait)}, nil
	default:
		return wireStyle{}, fmt.Errorf("cannot encode invocation style %T", s)
	}
}

func decodeStyle(w wireStyle, names []string) (InvocationStyle, error) {
	switch w.Kind {
	case "new":
		return NewInstance{}, nil
	case "dynamic":
		return Dynamic{}, nil
	case "static":
		return Static{OnInstance: w.OnInstance}, nil
	case "super":
		if int(w.Trait) >= len(names) {
			return nil, fmt.Errorf("super: trait name index %d out of range", w.Trait)
		}
		return SuperCall{Trait: names[w.Trait]}, nil
	default:
		return nil, fmt.Errorf("unknown invocation style %q", w.Kind)
	}
}

func encodePrim(p prim.Operation) (wirePrim, error) {
	switch v := p.(type) {
	case prim.Negation:
		return wirePrim{Cat: "neg", Kind: uint8(v.Kind)}, nil
	case prim.Test:
		return wirePrim{Cat: "test", Op: uint8(v.Op), Kind: uint8(v.Kind), Zero: v.Zero}, nil
	case prim.Comparison:
		return wirePrim{Cat: "cmp", Op: uint8(v.Op), Kind: uint8(v.Kind)}, nil
	case prim.Arithmetic:
		return wirePrim{Cat: "arith", Op: uint8(v.Op), Kind: uint8(v.Kind)}, nil
	case prim.Logical:
		return wirePrim{Cat: "logical", Op: uint8(v.Op), Kind: uint8(v.Kind)}, nil
	case prim.Shift:
		return wirePrim{Cat: "shift", Op: uint8(v.Op), Kind: uint8(v.Kind)}, nil
	case prim.Conversion:
		return wirePrim{Cat: "conv", From: uint8(v.From), To: uint8(v.To)}, nil
	case prim.ArrayLength:
		return wirePrim{Cat: "len", Kind: uint8(v.Kind)}, nil
	case prim.StringConcat:
		return wirePrim{Cat: "concat", Kind: uint8(v.Kind)}, nil
	default:
		return wirePrim{}, fmt.Errorf("cannot encode primitive operation %T", p)
	}
}

func decodePrim(w wirePrim) (prim.Operation, error) {
	switch w.Cat {
	case "neg":
		return prim.Negation{Kind: prim.Kind(w.Kind)}, nil
	case "test":
		return prim.Test{Op: prim.TestOp(w.Op), Kind: prim.Kind(w.Kind), Zero: w.Zero}, nil
	case "cmp":
		return prim.Comparison{Op: prim.CompareOp(w.Op), Kind: prim.Kind(w.Kind)}, nil
	case "arith":
		return prim.Arithmetic{Op: prim.ArithOp(w.Op), Kind: prim.Kind(w.Kind)}, nil
	case "logical":
		return prim.Logical{Op: prim.LogicalOp(w.Op), Kind: prim.Kind(w.Kind)}, nil
	case "shift":
		return prim.Shift{Op: prim.ShiftOp(w.Op), Kind: prim.Kind(w.Kind)}, nil
	case "conv":
		return prim.Conversion{From: prim.Kind(w.From), To: prim.Kind(w.To)}, nil
	case "len":
		return prim.ArrayLength{Kind: prim.Kind(w.Kind)}, nil
	case "concat":
		return prim.StringConcat{Kind: prim.Kind(w.Kind)}, nil
	default:
		return nil, fmt.Errorf("unknown primitive category %q", w.Cat)
	}
}
