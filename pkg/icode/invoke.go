package icode

// InvocationStyle describes how a CallMethod dispatches. It is a closed set
// of four shapes; the predicates are derived from the shape alone, with no
// stored flags beyond the shape's own payload.
type InvocationStyle interface {
	// IsNew reports object construction.
	IsNew() bool

	// IsDynamic reports virtual/interface dispatch.
	IsDynamic() bool

	// IsStatic reports direct dispatch (constructors, private methods,
	// non-virtual calls).
	IsStatic() bool

	// HasInstance reports whether a call using this style expects a
	// receiver value beneath its arguments on the stack. It agrees exactly
	// with the receiver-slot count used by CallMethod.Consumed.
	HasInstance() bool

	// String renders the canonical form: "new", "dynamic", "static-class",
	// "static-instance", or "super(<trait>)".
	String() string

	isInvocationStyle()
}

// receiverSlots is the number of stack slots a call reserves for its
// receiver: 1 exactly when the style carries an instance. Kept as a single
// derivation from HasInstance so the two can never diverge.
func receiverSlots(s InvocationStyle) int {
	if s.HasInstance() {
		return 1
	}
	return 0
}

// NewInstance is object construction: the new object is materialized by the
// call itself, so no receiver sits on the stack beneath the arguments.
type NewInstance struct{}

func (NewInstance) isInvocationStyle() {}

func (NewInstance) IsNew() bool { return true }
func (NewInstance) IsDynamic() bool { return false }
func (NewInstance) IsStatic() bool { return false }
func (NewInstance) HasInstance() bool { return false }
func (NewInstance) String() string { return "new" }

// Dynamic is virtual or interface dispatch on a receiver.
type Dynamic struct{}

func (Dynamic) isInvocationStyle() {}

func (Dynamic) IsNew() bool { return false }
func (Dynamic) IsDynamic() bool { return true }
func (Dynamic) IsStatic() bool { return false }
func (Dynamic) HasInstance() bool { return true }
func (Dynamic) String() string { return "dynamic" }

// Static is direct dispatch. With OnInstance set the callee is an instance
// method (a constructor or private method) and still takes a receiver; unset
// it is a class-level method with no receiver at all.
type Static struct {
	OnInstance bool
}

func (Static) isInvocationStyle() {}

func (Static) IsNew() bool { return false }
func (Static) IsDynamic() bool { return false }
func (Static) IsStatic() bool { return true }
func (s Static) HasInstance() bool { return s.OnInstance }

func (s Static) String() string {
	if s.OnInstance {
		return "static-instance"
	}
	return "static-class"
}

// SuperCall dispatches through a named trait's implementation of the method.
// The trait name disambiguates when several traits supply the same method.
// A super call always has a receiver, like an instance-qualified static call.
type SuperCall struct {
	Trait string
}

func (SuperCall) isInvocationStyle() {}

func (SuperCall) IsNew() bool { return false }
func (SuperCall) IsDynamic() bool { return false }
func (SuperCall) IsStatic() bool { return false }
func (SuperCall) HasInstance() bool { return true }
func (s SuperCall) String() string { return "super(" + s.Trait + ")" }
