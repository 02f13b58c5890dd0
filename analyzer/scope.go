package analyzer

import "github.com/tinyshader/hlslc/ast"

// Scope is a lexical binding scope: a name→decl map threaded to a
// parent scope (spec.md §3: "Block(scope)"). Function bodies, nested
// blocks, and for-loop headers each push one.
type Scope struct {
	parent *Scope
	names  map[string]ast.Decl
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: make(map[string]ast.Decl, 8)}
}

// Declare binds name in this scope, shadowing any outer binding.
func (s *Scope) Declare(name string, d ast.Decl) {
	s.names[name] = d
}

// Lookup resolves name against this scope and its ancestors.
func (s *Scope) Lookup(name string) (ast.Decl, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if d, ok := sc.names[name]; ok {
			return d, true
		}
	}
	return nil, false
}
