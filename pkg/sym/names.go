package sym

import "sync"

// ---------------------------------------------------------------------------
// Names: Interned identifier strings
// ---------------------------------------------------------------------------

// Names interns identifier strings to unique IDs.
// Class, method, field, and type names repeat heavily across a program;
// interning lets serializers and tables refer to them by index.
type Names struct {
	mu     sync.RWMutex
	byName map[string]uint32 // name -> ID
	byID   []string          // ID -> name
}

// NewNames creates a new empty name table.
func NewNames() *Names {
	return &Names{
		byName: make(map[string]uint32),
		byID:   make([]string, 0, 256),
	}
}

// Intern returns the ID for a name, creating a new one if needed.
func (n *Names) Intern(name string) uint32 {
	// Fast path: read-only lookup
	n.mu.RLock()
	if id, ok := n.byName[name]; ok {
		n.mu.RUnlock()
		return id
	}
	n.mu.RUnlock()

	// Slow path: need to add a new name
	n.mu.Lock()
	defer n.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := n.byName[name]; ok {
		return id
	}

	id := uint32(len(n.byID))
	n.byName[name] = id
	n.byID = append(n.byID, name)
	return id
}

// Lookup returns the ID for a name, or 0 and false if not found.
func (n *Names) Lookup(name string) (uint32, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	id, ok := n.byName[name]
	return id, ok
}

// Name returns the string for an ID, or "" if invalid.
func (n *Names) Name(id uint32) string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if int(id) >= len(n.byID) {
		return ""
	}
	return n.byID[id]
}

// Len returns the number of interned names.
func (n *Names) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.byID)
}

// All returns all names in ID order.
func (n *Names) All() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]string, len(n.byID))
	copy(out, n.byID)
	return out
}
