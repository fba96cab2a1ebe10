package icode

// Depths accumulates successive Difference values over a straight-line
// instruction sequence, starting at the given depth. The result has one
// entry per instruction: the stack depth after that instruction executes.
func Depths(instrs []Instruction, start int) []int {
	out := make([]int, len(instrs))
	depth := start
	for i, in := range instrs {
		depth += in.Difference()
		out[i] = depth
	}
	return out
}

// NetEffect is the total stack-depth delta of a sequence.
func NetEffect(instrs []Instruction) int {
	net := 0
	for _, in := range instrs {
		net += in.Difference()
	}
	return net
}
