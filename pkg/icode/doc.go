// Package icode defines Fennec's intermediate code: the instruction set of
// an abstract stack machine sitting between the typed AST and the bytecode
// backends (JVM-style targets).
//
// Each instruction is an immutable value describing one primitive operation
// and, as part of its definition, its stack effect: how many operand-stack
// values it consumes and produces. The stack effect is the load-bearing
// contract of this package — stack-depth checking, block linearization, and
// code emission all read Consumed/Produced/Difference instead of re-deriving
// them from instruction semantics.
//
// The package consists of:
//
//   - Instruction: a closed set of variants (loads, stores, calls, allocation,
//     casts, control transfer, monitors), each a small struct carrying the
//     symbolic references and types the operation needs.
//
//   - InvocationStyle: how a CallMethod dispatches (new, dynamic, static on a
//     class or instance, super through a trait), which determines whether the
//     call consumes a receiver slot beneath its arguments.
//
//   - Depth scanning and checking: running stack-depth accumulation over
//     instruction sequences and whole flow graphs.
//
//   - A CBOR wire format so per-method intermediate code can be cached on
//     disk or handed between compiler processes. This is transport for the
//     IR itself, not target bytecode.
//
// Nothing in this package executes instructions or validates types; payloads
// are assumed well-formed by the AST translator that produces them.
//
// All values are immutable after construction and safe to share across
// concurrently compiled methods without synchronization.
package icode
