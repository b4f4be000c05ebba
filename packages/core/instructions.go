package core

import (
	"strings"
)

// frame is the instruction state of one view pass.
type frame struct {
	view    *View
	parents []*Node
	// cursor is the view nextContext and reference read from.
	cursor *View
}

var (
	frames []*frame
	// current is nil outside a template pass; listeners may still restore a view into it.
	current = &frame{}
	trace   func(op string, view string, slot int)
)

// SetTrace installs a hook that observes every slot-addressed instruction. It returns a
// function restoring the previous hook.
func SetTrace(fn func(op string, view string, slot int)) (restore func()) {
	prev := trace
	trace = fn
	return func() { trace = prev }
}

func traceOp(op string, slot int) {
	if trace != nil && current.view != nil {
		trace(op, current.view.def.Name, slot)
	}
}

func enter(v *View) {
	frames = append(frames, current)
	current = &frame{view: v, cursor: v}
}

func leave() {
	current = frames[len(frames)-1]
	frames = frames[:len(frames)-1]
}

func leaveAll() {
	if len(frames) > 0 {
		current = frames[0]
		frames = frames[:0]
	}
}

func activeView(op string) *View {
	if current.view == nil {
		panic(NewRuntimeError("%s called outside of a view pass", op))
	}
	return current.view
}

func (f *frame) appendNode(n *Node) {
	v := f.view
	if ca := v.renderer.ContentAttribute(); ca != "" && n.Kind == ElementNode {
		n.Attrs[ca] = ""
	}
	if len(f.parents) > 0 {
		f.parents[len(f.parents)-1].AppendChild(n)
		return
	}
	v.rootNodes = append(v.rootNodes, n)
	if v.root != nil {
		v.root.AppendChild(n)
	}
}

// ElementStart creates an element at slot and makes it the parent of the following nodes.
// attrs is a flat name/value list of static attributes.
func ElementStart(slot int, name string, attrs []any) {
	v := activeView("ɵɵelementStart")
	traceOp("elementStart", slot)
	n := newElement(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		key, val := Stringify(attrs[i]), Stringify(attrs[i+1])
		if key == "class" {
			for _, c := range strings.Fields(val) {
				n.Classes[c] = true
			}
			continue
		}
		n.Attrs[key] = val
	}
	v.slots[slot] = n
	current.appendNode(n)
	current.parents = append(current.parents, n)
}

// ElementEnd closes the innermost open element.
func ElementEnd() {
	activeView("ɵɵelementEnd")
	if len(current.parents) == 0 {
		panic(NewRuntimeError("ɵɵelementEnd without a matching ɵɵelementStart"))
	}
	current.parents = current.parents[:len(current.parents)-1]
}

// ElementContainerStart opens an <ng-container>: a logical group without an element.
func ElementContainerStart(slot int) {
	v := activeView("ɵɵelementContainerStart")
	traceOp("elementContainerStart", slot)
	n := NewFragment()
	n.Name = "ng-container"
	v.slots[slot] = n
	current.appendNode(n)
	current.parents = append(current.parents, n)
}

// ElementContainerEnd closes an <ng-container>.
func ElementContainerEnd() {
	ElementEnd()
}

// Text creates a text node at slot.
func Text(slot int, value string) {
	v := activeView("ɵɵtext")
	traceOp("text", slot)
	n := newText(value)
	v.slots[slot] = n
	current.appendNode(n)
}

// Interpolate concatenates alternating static strings and values.
func Interpolate(parts ...any) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(Stringify(p))
	}
	return sb.String()
}

// TextInterpolate updates the text node at slot with Interpolate(parts...).
func TextInterpolate(slot int, parts ...any) {
	v := activeView("ɵɵtextInterpolate")
	traceOp("textInterpolate", slot)
	v.node(slot, "ɵɵtextInterpolate").Text = Interpolate(parts...)
}

// Property writes a property binding to the directive inputs of slot, or to the node when no
// directive declares the input.
func Property(slot int, name string, value any) {
	v := activeView("ɵɵproperty")
	traceOp("property", slot)
	n := v.node(slot, "ɵɵproperty")
	matched := false
	for _, d := range v.directives[slot] {
		if prop, ok := d.inputs[name]; ok {
			if err := SetProperty(d.instance, prop, value); err != nil {
				panic(NewRuntimeError("%s: %v", d.typ.Name, err))
			}
			matched = true
		}
	}
	if !matched && n.Props != nil {
		n.Props[name] = value
	}
}

// Attribute sets or, for nil, removes an attribute.
func Attribute(slot int, name string, value any) {
	v := activeView("ɵɵattribute")
	traceOp("attribute", slot)
	n := v.node(slot, "ɵɵattribute")
	if value == nil {
		delete(n.Attrs, name)
		return
	}
	n.Attrs[name] = Stringify(value)
}

// ClassProp toggles a class.
func ClassProp(slot int, name string, value any) {
	v := activeView("ɵɵclassProp")
	traceOp("classProp", slot)
	v.node(slot, "ɵɵclassProp").Classes[name] = Truthy(value)
}

// StyleProp sets an inline style property. Styles are stored as props named "style.<name>".
func StyleProp(slot int, name string, value any) {
	v := activeView("ɵɵstyleProp")
	traceOp("styleProp", slot)
	n := v.node(slot, "ɵɵstyleProp")
	if value == nil {
		delete(n.Props, "style."+name)
		return
	}
	n.Props["style."+name] = Stringify(value)
}

// Listener registers fn on the innermost open element.
func Listener(event string, fn ListenerFn) {
	activeView("ɵɵlistener")
	if len(current.parents) == 0 {
		panic(NewRuntimeError("ɵɵlistener(%q) outside of an element", event))
	}
	current.parents[len(current.parents)-1].Listen(event, fn)
}

// Template declares an <ng-template> at slot. The template becomes a TemplateRef stored in the
// slot's container.
func Template(slot int, tpl TemplateFn, name string) {
	v := activeView("ɵɵtemplate")
	traceOp("template", slot)
	anchor := newComment("container")
	current.appendNode(anchor)
	vc := &ViewContainerRef{anchor: anchor, host: v}
	v.containers = append(v.containers, vc)
	v.slots[slot] = anchor
	ref := &TemplateRef{def: &ViewDefinition{Name: name, Template: tpl, Renderer: v.renderer}, declaration: v}
	v.templates[slot] = &templateSlot{ref: ref, container: vc}
}

type templateSlot struct {
	ref       *TemplateRef
	container *ViewContainerRef
}

func instantiate(v *View, t *Type) any {
	deps := make([]any, len(t.Deps))
	for i, tok := range t.Deps {
		if v.injector == nil {
			panic(NewRuntimeError("no injector to resolve %s for %s", TokenName(tok), t.Name))
		}
		dep, err := v.injector.Get(tok)
		if err != nil {
			panic(NewRuntimeError("%s: %v", t.Name, err))
		}
		deps[i] = dep
	}
	return t.New(deps...)
}

func addDirective(v *View, slot int, t *Type, inputs []any) *directiveInstance {
	d := &directiveInstance{typ: t, instance: instantiate(v, t), inputs: map[string]string{}}
	for i := 0; i+1 < len(inputs); i += 2 {
		d.inputs[Stringify(inputs[i])] = Stringify(inputs[i+1])
	}
	v.directives[slot] = append(v.directives[slot], d)
	v.order = append(v.order, d)
	if ts, ok := v.templates[slot]; ok {
		if tc, ok := d.instance.(TemplateConsumer); ok {
			tc.SetTemplate(ts.container, ts.ref)
		}
	}
	return d
}

// Directive instantiates t on the node at slot. inputs is a flat binding-name/property-name list.
func Directive(slot int, t *Type, inputs []any) {
	v := activeView("ɵɵdirective")
	traceOp("directive", slot)
	v.node(slot, "ɵɵdirective")
	addDirective(v, slot, t, inputs)
}

// Component instantiates t on the element at slot and attaches its component view.
func Component(slot int, t *Type, inputs []any, view *ViewDefinitionRef) {
	v := activeView("ɵɵcomponent")
	traceOp("component", slot)
	host := v.node(slot, "ɵɵcomponent")
	d := addDirective(v, slot, t, inputs)
	def := view.Definition()
	child := &View{
		def:        def,
		context:    d.instance,
		injector:   v.injector,
		renderer:   def.Renderer,
		styles:     v.styles,
		root:       host,
		slots:      map[int]any{},
		templates:  map[int]*templateSlot{},
		directives: map[int][]*directiveInstance{},
	}
	if ha := def.Renderer.HostAttribute(); ha != "" {
		host.Attrs[ha] = ""
	}
	d.component = child
	v.components = append(v.components, child)
}

// Projection inserts the host's original children (wildcard content) at this position.
func Projection(slot int) {
	v := activeView("ɵɵprojection")
	traceOp("projection", slot)
	anchor := newComment("projection")
	v.slots[slot] = anchor
	current.appendNode(anchor)
	if anchor.Parent == nil {
		v.rootNodes = append(v.rootNodes, v.projectable...)
		return
	}
	for _, n := range v.projectable {
		anchor.Parent.InsertBefore(n, anchor)
	}
}

// GetCurrentView returns an opaque handle of the view being created, for RestoreView.
func GetCurrentView() any {
	return activeView("ɵɵgetCurrentView")
}

// RestoreView makes the saved view the context cursor and returns its context.
func RestoreView(view any) any {
	v, ok := view.(*View)
	if !ok {
		panic(NewRuntimeError("ɵɵrestoreView: %T is not a view", view))
	}
	current.cursor = v
	return v.context
}

// NextContext moves the context cursor level declaration parents outwards and returns that
// view's context.
func NextContext(level int) any {
	if current.cursor == nil {
		panic(NewRuntimeError("ɵɵnextContext called without a current view"))
	}
	if level < 1 {
		level = 1
	}
	for i := 0; i < level; i++ {
		if current.cursor.parent == nil {
			panic(NewRuntimeError("ɵɵnextContext(%d): no parent context", level))
		}
		current.cursor = current.cursor.parent
	}
	return current.cursor.context
}

// Reference reads a template reference from the cursor view: the node at slot, the
// directive at index dir, or the TemplateRef of an <ng-template>.
func Reference(slot int, dir int) any {
	v := current.cursor
	if v == nil {
		panic(NewRuntimeError("ɵɵreference called without a current view"))
	}
	if dir >= 0 {
		ds := v.directives[slot]
		if dir >= len(ds) {
			panic(NewRuntimeError("ɵɵreference: no directive %d at slot %d", dir, slot))
		}
		return ds[dir].instance
	}
	if ts, ok := v.templates[slot]; ok {
		return ts.ref
	}
	return v.node(slot, "ɵɵreference")
}

// Pipe creates a pipe instance at slot.
func Pipe(slot int, t *Type, pure bool) {
	v := activeView("ɵɵpipe")
	traceOp("pipe", slot)
	inst, ok := instantiate(v, t).(PipeTransform)
	if !ok {
		panic(NewRuntimeError("%s does not implement PipeTransform", t.Name))
	}
	v.slots[slot] = &pipeInstance{pipe: inst, pure: pure}
}

// PipeBind transforms value through the pipe at slot. Pure pipes return the previous result
// while every argument is identical to the previous call's.
func PipeBind(slot int, value any, args ...any) any {
	v := activeView("ɵɵpipeBind")
	traceOp("pipeBind", slot)
	p, ok := v.slots[slot].(*pipeInstance)
	if !ok {
		panic(NewRuntimeError("ɵɵpipeBind: slot %d of %s is not a pipe", slot, v.def.Name))
	}
	all := append([]any{value}, args...)
	if p.pure && p.called && sameArgs(p.lastArgs, all) {
		return p.last
	}
	p.last = p.pipe.Transform(value, args...)
	p.lastArgs = all
	p.called = true
	return p.last
}

func sameArgs(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}
