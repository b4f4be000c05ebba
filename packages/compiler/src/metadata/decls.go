// Package metadata holds declaration records (what a component, directive, pipe or module
// declares) and the compile metadata the resolver derives from them.
package metadata

import (
	"fmt"
	"sync"

	"ngjit-go/packages/core"
)

// DeclKind tags the variants of Decl.
type DeclKind int

const (
	KindDirective DeclKind = iota
	KindComponent
	KindPipe
	KindModule
)

func (k DeclKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindPipe:
		return "pipe"
	case KindModule:
		return "module"
	default:
		return "directive"
	}
}

// Decl is one declaration record.
type Decl interface {
	Base() *DeclBase
	Kind() DeclKind
}

// DeclBase holds the fields every declaration has.
type DeclBase struct {
	Type *core.Type
	// ModuleURL names the source of the declaration in diagnostics and generated file names.
	ModuleURL string
}

func (b *DeclBase) Base() *DeclBase { return b }

// DirectiveDecl declares a directive.
type DirectiveDecl struct {
	DeclBase
	Selector string
	// Inputs are "prop" or "prop: bindingName".
	Inputs          []string
	ExportAs        string
	EntryComponents []*core.Type
}

func (*DirectiveDecl) Kind() DeclKind { return KindDirective }

// ComponentDecl declares a component: a directive with a template.
type ComponentDecl struct {
	DirectiveDecl
	Template    string
	TemplateURL string
	Styles      []string
	StyleURLs   []string
	// Encapsulation and PreserveWhitespaces fall back to the compiler config when nil.
	Encapsulation       *core.ViewEncapsulation
	PreserveWhitespaces *bool
}

func (*ComponentDecl) Kind() DeclKind { return KindComponent }

// PipeDecl declares a pipe. Pure defaults to true.
type PipeDecl struct {
	DeclBase
	Name string
	Pure *bool
}

func (*PipeDecl) Kind() DeclKind { return KindPipe }

// IsPure applies the default.
func (p *PipeDecl) IsPure() bool {
	return p.Pure == nil || *p.Pure
}

// Schema relaxes element and property checks.
type Schema string

const (
	CustomElementsSchema Schema = "custom-elements"
	NoErrorsSchema       Schema = "no-errors-schema"
)

// ModuleDecl declares a module.
type ModuleDecl struct {
	DeclBase
	Declarations    []*core.Type
	Imports         []*core.Type
	Exports         []*core.Type
	EntryComponents []*core.Type
	Bootstrap       []*core.Type
	Providers       []core.Provider
	Schemas         []Schema
	ID              string
}

func (*ModuleDecl) Kind() DeclKind { return KindModule }

// Registry maps declared types to their declaration. It replaces decorators: records are
// built once at registration and looked up by type identity.
type Registry struct {
	mu    sync.RWMutex
	decls map[*core.Type]Decl
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decls: map[*core.Type]Decl{}}
}

func (r *Registry) add(t *core.Type, d Decl) error {
	if t == nil {
		return fmt.Errorf("cannot declare a %s without a type", d.Kind())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.decls[t]; ok {
		return fmt.Errorf("type %s is already declared as a %s", t.Name, prev.Kind())
	}
	d.Base().Type = t
	r.decls[t] = d
	return nil
}

// Component registers a component declaration for t.
func (r *Registry) Component(t *core.Type, d ComponentDecl) error {
	return r.add(t, &d)
}

// Directive registers a directive declaration for t.
func (r *Registry) Directive(t *core.Type, d DirectiveDecl) error {
	return r.add(t, &d)
}

// Pipe registers a pipe declaration for t.
func (r *Registry) Pipe(t *core.Type, d PipeDecl) error {
	return r.add(t, &d)
}

// Module registers a module declaration for t.
func (r *Registry) Module(t *core.Type, d ModuleDecl) error {
	return r.add(t, &d)
}

// Lookup returns the declaration of t.
func (r *Registry) Lookup(t *core.Type) (Decl, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decls[t]
	return d, ok
}

// Types returns every registered type.
func (r *Registry) Types() []*core.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Type, 0, len(r.decls))
	for t := range r.decls {
		out = append(out, t)
	}
	return out
}
