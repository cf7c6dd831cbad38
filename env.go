package monkey

import "sort"

// Env is a lexical environment frame with an outer link. Lookups walk
// outward; writes only ever touch the frame they are made on.
//
// Frames are shared, not owned: every closure created while a frame is
// active keeps a pointer to it, so a Define made on that frame after the
// closure was created is visible to the closure as well.
type Env struct {
	outer *Env
	table map[string]Value
}

// NewEnv creates a new frame enclosed by outer (which may be nil).
func NewEnv(outer *Env) *Env { return &Env{outer: outer, table: make(map[string]Value)} }

// Define binds name to v in this frame, creating or shadowing. Outer frames
// are never modified.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Get retrieves the nearest visible binding for name. ok is false when no
// frame in the chain binds it.
func (e *Env) Get(name string) (v Value, ok bool) {
	for f := e; f != nil; f = f.outer {
		if v, ok := f.table[name]; ok {
			return v, true
		}
	}
	return Null, false
}

// Outer returns the enclosing frame, or nil for a root frame.
func (e *Env) Outer() *Env { return e.outer }

// Names lists the names bound in this frame only, sorted.
func (e *Env) Names() []string {
	out := make([]string, 0, len(e.table))
	for k := range e.table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
