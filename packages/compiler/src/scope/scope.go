// Package scope resolves template-local names. Each view of a compiled template gets one Scope;
// embedded views chain to the view that declares them.
package scope

import (
	"fmt"
)

// Kind tells the view compiler how to read an entry at run time.
type Kind int

const (
	// Variable reads a property of the view context: "$implicit", "index" and so on.
	Variable Kind = iota
	// Reference reads a template reference through ɵɵreference.
	Reference
)

func (k Kind) String() string {
	if k == Reference {
		return "reference"
	}
	return "variable"
}

// Entry is the source of a local name.
type Entry struct {
	Kind Kind
	// Value is the context property a Variable reads.
	Value string
	// Slot is the node a Reference points at.
	Slot int
	// Directive is the index of the referenced directive on Slot, -1 for the node itself or
	// the TemplateRef of an <ng-template>.
	Directive int
}

// Scope is the table of names declared by one view.
type Scope struct {
	parent  *Scope
	depth   int
	entries map[string]Entry
	names   []string
}

// New creates a scope nested in parent. A nil parent starts the component view.
func New(parent *Scope) *Scope {
	s := &Scope{parent: parent, entries: map[string]Entry{}}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	return s
}

// Parent returns the enclosing scope, nil for the component view.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Depth is the number of views between s and the component view.
func (s *Scope) Depth() int {
	return s.depth
}

// Define adds name to this scope. Names must be unique within one scope; shadowing a name of
// an enclosing scope is allowed.
func (s *Scope) Define(name string, e Entry) error {
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("%q is already defined in this template", name)
	}
	s.entries[name] = e
	s.names = append(s.names, name)
	return nil
}

// Lookup returns the entry declared in this scope only.
func (s *Scope) Lookup(name string) (Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Resolve finds name in s or the nearest enclosing scope. hops is how many views outwards the
// declaring scope is.
func (s *Scope) Resolve(name string) (e Entry, hops int, ok bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.entries[name]; ok {
			return e, hops, true
		}
		hops++
	}
	return Entry{}, 0, false
}

// Names returns the names of this scope in definition order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.names...)
}
