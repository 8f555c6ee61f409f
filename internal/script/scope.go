package script

import "github.com/kinduce/kinduce/internal/logic"

// binding is what a name resolves to during the build: for a state
// variable, its current-state reference; for a let, the inlined term.
type binding struct {
	term logic.Term
	let  bool
	used bool
	span Span
}

// scope is a stack of name bindings used only while building a
// system. A lookup resolves to the innermost enclosing binding;
// declaring a name bound in an outer frame shadows it without
// mutating it.
type scope struct {
	frames []map[string]*binding
}

func newScope() *scope {
	return &scope{frames: []map[string]*binding{{}}}
}

func (s *scope) push() {
	s.frames = append(s.frames, map[string]*binding{})
}

// pop discards the innermost frame, restoring the bindings that were
// visible before the matching push, and returns the discarded frame
// so the builder can report unused lets.
func (s *scope) pop() map[string]*binding {
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// declare binds a name in the innermost frame. Reports false if the
// name is already bound in that same frame.
func (s *scope) declare(name string, b *binding) bool {
	top := s.frames[len(s.frames)-1]
	if _, ok := top[name]; ok {
		return false
	}
	top[name] = b
	return true
}

// lookup resolves a name to its innermost binding.
func (s *scope) lookup(name string) (*binding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}
