package core

import (
	"errors"
	"fmt"
)

// RuntimeError is raised (as a panic) by instructions and recovered at the public entry points.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return e.Msg
}

// NewRuntimeError formats a RuntimeError.
func NewRuntimeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// recoverRuntime turns a panic from generated code into *err. Panics that are not errors
// are re-raised.
func recoverRuntime(err *error) {
	r := recover()
	if r == nil {
		return
	}
	leaveAll()
	if e, ok := r.(error); ok {
		var rt *RuntimeError
		if errors.As(e, &rt) {
			*err = rt
			return
		}
		*err = fmt.Errorf("view runtime: %w", e)
		return
	}
	panic(r)
}

type directiveInstance struct {
	typ      *Type
	instance any
	// inputs maps binding name to property name.
	inputs map[string]string
	// component is set for the component view hosted by this directive's element.
	component *View
}

type pipeInstance struct {
	pipe     PipeTransform
	pure     bool
	called   bool
	lastArgs []any
	last     any
}

// View is an instantiated view: a component view, an embedded view or a host view.
type View struct {
	def     *ViewDefinition
	context any
	// parent is the declaration parent used by nextContext.
	parent   *View
	injector Injector
	renderer *RendererType2
	root     *Node // where root nodes are appended, nil for embedded views until inserted

	slots       map[int]any
	templates   map[int]*templateSlot
	directives  map[int][]*directiveInstance
	order       []*directiveInstance
	containers  []*ViewContainerRef
	components  []*View
	rootNodes   []*Node
	projectable []*Node
	styles      *styleRegistry

	created   bool
	destroyed bool
}

// Context returns the view's context object.
func (v *View) Context() any {
	return v.context
}

// RootNodes returns the top-level nodes created by the view, including the nodes of views
// attached to top-level containers.
func (v *View) RootNodes() []*Node {
	var out []*Node
	for _, n := range v.rootNodes {
		if vc := v.containerFor(n); vc != nil {
			for _, child := range vc.views {
				out = append(out, child.RootNodes()...)
			}
		}
		out = append(out, n)
	}
	return out
}

func (v *View) containerFor(anchor *Node) *ViewContainerRef {
	if anchor.Kind != CommentNode {
		return nil
	}
	for _, vc := range v.containers {
		if vc.anchor == anchor {
			return vc
		}
	}
	return nil
}

func (v *View) node(slot int, op string) *Node {
	n, ok := v.slots[slot].(*Node)
	if !ok {
		panic(NewRuntimeError("%s: slot %d of %s has not been created", op, slot, v.def.Name))
	}
	return n
}

// refresh runs the creation pass once, then the update pass, then lifecycle hooks, embedded
// views and child component views.
func (v *View) refresh() {
	if v.destroyed {
		return
	}
	if !v.created {
		v.create()
	}
	enter(v)
	v.def.Template(RenderFlagsUpdate, v.context)
	leave()
	for _, d := range v.order {
		if h, ok := d.instance.(DoCheck); ok {
			h.NgDoCheck()
		}
	}
	for _, vc := range v.containers {
		for _, child := range vc.views {
			child.refresh()
		}
	}
	for _, c := range v.components {
		c.refresh()
	}
}

func (v *View) create() {
	if v.root != nil && len(v.root.Children) > 0 && v.root.Kind == ElementNode {
		v.projectable = append([]*Node(nil), v.root.Children...)
		for _, n := range v.projectable {
			n.Remove()
		}
	}
	if v.renderer != nil && v.styles != nil {
		v.styles.add(v.renderer)
	}
	enter(v)
	v.def.Template(RenderFlagsCreate, v.context)
	leave()
	v.created = true
	for _, d := range v.order {
		if h, ok := d.instance.(OnInit); ok {
			h.NgOnInit()
		}
	}
}

func (v *View) destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	for _, vc := range v.containers {
		vc.Clear()
	}
	for _, c := range v.components {
		c.destroy()
	}
	for _, d := range v.order {
		if h, ok := d.instance.(OnDestroy); ok {
			h.NgOnDestroy()
		}
	}
}

// TemplateRef is an <ng-template> that can be stamped out as embedded views.
type TemplateRef struct {
	def         *ViewDefinition
	declaration *View
}

// CreateEmbeddedView runs the template's creation pass against ctx. The view is detached
// until inserted into a container.
func (t *TemplateRef) CreateEmbeddedView(ctx any) *View {
	v := &View{
		def:        t.def,
		context:    ctx,
		parent:     t.declaration,
		injector:   t.declaration.injector,
		renderer:   t.declaration.renderer,
		styles:     t.declaration.styles,
		slots:      map[int]any{},
		templates:  map[int]*templateSlot{},
		directives: map[int][]*directiveInstance{},
	}
	v.create()
	return v
}

// ViewContainerRef manages the embedded views attached at one anchor.
type ViewContainerRef struct {
	anchor *Node
	host   *View
	views  []*View
}

// Len returns the number of attached views.
func (vc *ViewContainerRef) Len() int {
	return len(vc.views)
}

// Get returns the view at index.
func (vc *ViewContainerRef) Get(index int) *View {
	return vc.views[index]
}

// CreateEmbeddedView creates a view from tpl and inserts it at index (-1 appends).
func (vc *ViewContainerRef) CreateEmbeddedView(tpl *TemplateRef, ctx any, index int) *View {
	v := tpl.CreateEmbeddedView(ctx)
	vc.Insert(v, index)
	return v
}

// Insert attaches v at index (-1 appends) and moves its nodes in front of the next view or
// the anchor.
func (vc *ViewContainerRef) Insert(v *View, index int) {
	if index < 0 || index > len(vc.views) {
		index = len(vc.views)
	}
	vc.views = append(vc.views, nil)
	copy(vc.views[index+1:], vc.views[index:])
	vc.views[index] = v

	parent := vc.anchor.Parent
	if parent == nil {
		return
	}
	ref := vc.anchor
	if index+1 < len(vc.views) {
		if nodes := vc.views[index+1].RootNodes(); len(nodes) > 0 {
			ref = nodes[0]
		}
	}
	for _, n := range v.RootNodes() {
		parent.InsertBefore(n, ref)
	}
}

// Move re-inserts v at index.
func (vc *ViewContainerRef) Move(v *View, index int) {
	vc.detach(v)
	vc.Insert(v, index)
}

// IndexOf returns the index of v or -1.
func (vc *ViewContainerRef) IndexOf(v *View) int {
	for i, w := range vc.views {
		if w == v {
			return i
		}
	}
	return -1
}

// Remove destroys the view at index.
func (vc *ViewContainerRef) Remove(index int) {
	if index < 0 || index >= len(vc.views) {
		return
	}
	v := vc.views[index]
	vc.detach(v)
	v.destroy()
}

// Clear destroys every attached view.
func (vc *ViewContainerRef) Clear() {
	for len(vc.views) > 0 {
		vc.Remove(len(vc.views) - 1)
	}
}

func (vc *ViewContainerRef) detach(v *View) {
	i := vc.IndexOf(v)
	if i < 0 {
		return
	}
	for _, n := range v.RootNodes() {
		n.Remove()
	}
	vc.views = append(vc.views[:i], vc.views[i+1:]...)
}

type styleRegistry struct {
	seen   map[string]bool
	styles []string
}

func (s *styleRegistry) add(rt *RendererType2) {
	if s.seen[rt.ID] {
		return
	}
	s.seen[rt.ID] = true
	s.styles = append(s.styles, rt.ResolvedStyles()...)
}
