// Package flow owns basic-block identity for the intermediate code layer.
//
// Blocks live in an arena addressed by stable BlockID handles. Jump-bearing
// instructions store the handle, never a pointer to the block, so there is no
// cyclic ownership between a block and the instructions that target it. The
// arena assigns labels (B0, B1, ...) in creation order.
package flow

import (
	"fmt"
	"strings"
)

// BlockID is a stable handle to a basic block within one graph.
type BlockID uint32

// String returns the block's label.
func (id BlockID) String() string { return fmt.Sprintf("B%d", uint32(id)) }

// Instr is the minimal instruction surface the flow layer needs: the stack
// effect contract plus a diagnostic rendering. The icode package provides
// the implementations.
type Instr interface {
	Consumed() int
	Produced() int
	Difference() int
	String() string
}

// Terminator is implemented by instructions that transfer control to other
// blocks. Targets returns the possible successor blocks, in payload order.
type Terminator interface {
	Instr
	Targets() []BlockID
}

// Block is a maximal straight-line instruction run with a single entry.
type Block struct {
	ID     BlockID
	Instrs []Instr
}

// Append adds instructions to the end of the block.
func (b *Block) Append(in ...Instr) {
	b.Instrs = append(b.Instrs, in...)
}

// Graph is an arena of basic blocks for one method body.
type Graph struct {
	Name   string // method label, used in dumps
	blocks []*Block
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{Name: name}
}

// NewBlock allocates a fresh empty block and returns its handle.
func (g *Graph) NewBlock() BlockID {
	id := BlockID(len(g.blocks))
	g.blocks = append(g.blocks, &Block{ID: id})
	return id
}

// Block returns the block for a handle, or nil if the handle is not in this
// graph.
func (g *Graph) Block(id BlockID) *Block {
	if int(id) >= len(g.blocks) {
		return nil
	}
	return g.blocks[id]
}

// Append adds instructions to the named block.
func (g *Graph) Append(id BlockID, in ...Instr) {
	g.blocks[id].Append(in...)
}

// Blocks returns the blocks in creation order.
func (g *Graph) Blocks() []*Block {
	return g.blocks
}

// Len returns the number of blocks.
func (g *Graph) Len() int {
	return len(g.blocks)
}

// Dump returns a human-readable listing of the whole graph.
// Purely diagnostic; the output format is not stable.
func (g *Graph) Dump() string {
	var sb strings.Builder

	if g.Name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", g.Name))
	}
	sb.WriteString(fmt.Sprintf("; Blocks: %d\n", len(g.blocks)))

	for _, b := range g.blocks {
		sb.WriteString(fmt.Sprintf("%s:\n", b.ID))
		for i, in := range b.Instrs {
			sb.WriteString(fmt.Sprintf("  %04d  %s\n", i, in))
		}
		if t := b.Terminator(); t != nil {
			if targets := t.Targets(); len(targets) > 0 {
				labels := make([]string, len(targets))
				for i, id := range targets {
					labels[i] = id.String()
				}
				sb.WriteString(fmt.Sprintf("  ; -> %s\n", strings.Join(labels, ", ")))
			}
		}
	}
	return sb.String()
}

// Terminator returns the block's trailing control-transfer instruction, or
// nil when the block falls through (or is still under construction).
func (b *Block) Terminator() Terminator {
	if len(b.Instrs) == 0 {
		return nil
	}
	t, _ := b.Instrs[len(b.Instrs)-1].(Terminator)
	return t
}
