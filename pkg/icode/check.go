package icode

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/fennec-lang/fennec/pkg/flow"
)

var log = commonlog.GetLogger("fennec.icode")

// CheckBlock forward-scans one block's instructions from the given entry
// depth, asserting the operand stack never underflows. It returns the depth
// at block exit.
func CheckBlock(b *flow.Block, entry int) (int, error) {
	depth := entry
	for i, in := range b.Instrs {
		if depth < in.Consumed() {
			return depth, fmt.Errorf(
				"icode: %s: stack underflow at instruction %d (%s): depth %d, consumes %d",
				b.ID, i, in, depth, in.Consumed())
		}
		depth += in.Difference()
	}
	return depth, nil
}

// CheckGraph verifies stack-depth consistency across a whole flow graph: no
// block underflows, and every block is entered at one single depth no matter
// which path reaches it. Blocks without a trailing terminator fall through
// to the next block in arena order. Checking starts at the first block with
// the given entry depth; unreachable blocks are not checked.
func CheckGraph(g *flow.Graph, entry int) error {
	if g.Len() == 0 {
		return nil
	}

	entries := map[flow.BlockID]int{0: entry}
	work := []flow.BlockID{0}

	for len(work) > 0 {
		id := work[0]
		work = work[1:]

		b := g.Block(id)
		in := entries[id]
		out, err := CheckBlock(b, in)
		if err != nil {
			return fmt.Errorf("icode: graph %q: %w", g.Name, err)
		}
		log.Debugf("graph %q: block %s: entry depth %d, exit depth %d", g.Name, id, in, out)

		for _, succ := range successors(g, b) {
			if g.Block(succ) == nil {
				return fmt.Errorf("icode: graph %q: %s targets unknown block %s", g.Name, id, succ)
			}
			if seen, ok := entries[succ]; ok {
				if seen != out {
					return fmt.Errorf(
						"icode: graph %q: block %s entered at depth %d from %s but %d on an earlier path",
						g.Name, succ, out, id, seen)
				}
				continue
			}
			entries[succ] = out
			work = append(work, succ)
		}
	}
	return nil
}

// successors lists where control can go after the block: the terminator's
// targets, or the next block in arena order on fall-through.
func successors(g *flow.Graph, b *flow.Block) []flow.BlockID {
	if t := b.Terminator(); t != nil {
		return t.Targets()
	}
	next := b.ID + 1
	if int(next) >= g.Len() {
		return nil
	}
	return []flow.BlockID{next}
}
