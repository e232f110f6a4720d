package parser

import (
	"errors"

	"github.com/vyperlang/vydoc/pkg/types"
)

// maxScopeDepth bounds the scope stack: a contract frame and, inside an
// interface block, an interface frame
const maxScopeDepth = 2

type scopeFrame struct {
	name    string
	isIface bool
}

// scopeStack is the explicit scope-context stack threaded through the
// parse call chain. Frames are pushed when entering a contract or
// interface block and popped when leaving it; the stack is confined to
// the single-threaded parse of one document and never shared.
type scopeStack struct {
	frames []scopeFrame
}

// pushContract replaces any active scope with the given contract. Used
// both by the contract directive and by currentcontract re-scoping.
func (s *scopeStack) pushContract(name string) {
	s.frames = append(s.frames, scopeFrame{name: name})
}

// pushInterface pushes an interface frame. Interfaces nest at most one
// level below a contract.
func (s *scopeStack) pushInterface(name string) error {
	if len(s.frames) >= maxScopeDepth {
		return errors.New("scope stack depth exceeded")
	}
	if s.current().Interface != "" {
		return errors.New("interface scope already active")
	}
	s.frames = append(s.frames, scopeFrame{name: name, isIface: true})
	return nil
}

// pop removes the innermost frame
func (s *scopeStack) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// clear drops every frame; issued by "currentcontract:: None"
func (s *scopeStack) clear() {
	s.frames = nil
}

// setContract rebinds the active contract without touching nesting
// semantics: the stack is cleared and a single contract frame installed
func (s *scopeStack) setContract(name string) {
	s.clear()
	s.pushContract(name)
}

// current flattens the stack into the Scope consumed by the signature
// parser and resolver
func (s *scopeStack) current() types.Scope {
	var scope types.Scope
	for _, f := range s.frames {
		if f.isIface {
			scope.Interface = f.name
		} else {
			scope.Contract = f.name
		}
	}
	return scope
}
