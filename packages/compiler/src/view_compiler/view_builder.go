package view_compiler

import (
	"fmt"

	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/identifiers"
	"ngjit-go/packages/compiler/src/metadata"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/scope"
	tp "ngjit-go/packages/compiler/src/template_parser"
	"ngjit-go/packages/compiler/src/util"
)

// Instruction is one generated call of a view function. Slot is the node index the call
// addresses, -1 for calls that do not address a node.
type Instruction struct {
	Ref  *o.ExternalReference
	Slot int
	Stmt o.OutputStatement
}

// ViewIR is the instruction list pair of one view.
type ViewIR struct {
	FnName string
	// Parent is the function name of the declaring view, empty for the component view.
	Parent string
	Depth  int
	Slots  int
	Create []*Instruction
	Update []*Instruction
}

type pendingListener struct {
	fn *o.FunctionExpr
	d  *derivations
}

// viewBuilder visits the nodes of one view. Embedded templates get their own builder chained
// to the declaring one.
type viewBuilder struct {
	c      *componentCompiler
	parent *viewBuilder
	fnName string
	scope  *scope.Scope
	slots  int

	create    []*Instruction
	update    []*Instruction
	updateD   *derivations
	listeners []pendingListener
	savedView string

	// refSlots is filled while visiting; references may be read before their node is reached.
	refSlots map[string]int
}

func newViewBuilder(c *componentCompiler, parent *viewBuilder, fnName string) *viewBuilder {
	var parentScope *scope.Scope
	if parent != nil {
		parentScope = parent.scope
	}
	b := &viewBuilder{
		c:        c,
		parent:   parent,
		fnName:   fnName,
		scope:    scope.New(parentScope),
		refSlots: map[string]int{},
	}
	b.updateD = newDerivations(b)
	return b
}

func (b *viewBuilder) allocateSlot() int {
	slot := b.slots
	b.slots++
	return slot
}

func (b *viewBuilder) ancestor(hops int) *viewBuilder {
	v := b
	for i := 0; i < hops && v.parent != nil; i++ {
		v = v.parent
	}
	return v
}

func (b *viewBuilder) referenceTarget(name string) (slot int, dir int) {
	e, ok := b.scope.Lookup(name)
	slot, found := b.refSlots[name]
	if !ok || !found {
		b.c.reportError(fmt.Sprintf("Reference %q is not declared in view %s", name, b.fnName), nil)
		return 0, -1
	}
	return slot, e.Directive
}

func (b *viewBuilder) emitCreate(ref *o.ExternalReference, slot int, args ...o.OutputExpression) {
	b.create = append(b.create, &Instruction{Ref: ref, Slot: slot, Stmt: o.ToStmt(o.Call(o.ImportExpr(ref), args...))})
}

func (b *viewBuilder) emitUpdate(ref *o.ExternalReference, slot int, args ...o.OutputExpression) {
	b.update = append(b.update, &Instruction{Ref: ref, Slot: slot, Stmt: o.ToStmt(o.Call(o.ImportExpr(ref), args...))})
}

// bindingConverter converts update-block expressions of this view.
func (b *viewBuilder) bindingConverter(span *util.ParseSourceSpan) *converter {
	return &converter{view: b, d: b.updateD, span: span}
}

// flushPipes appends the pipe creations of the converted bindings. It runs after the owning
// node's own creation instructions and before its children.
func (b *viewBuilder) flushPipes(cvs ...*converter) {
	for _, cv := range cvs {
		b.create = append(b.create, cv.pipes...)
		cv.pipes = nil
	}
}

// declareReferences defines the references of the nodes in this view before any binding is
// converted, so that forward references resolve.
func (b *viewBuilder) declareReferences(nodes []tp.TemplateAst) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *tp.ElementAst:
			b.defineRefs(n.References, n.Directives)
			b.declareReferences(n.Children)
		case *tp.EmbeddedTemplateAst:
			b.defineRefs(n.References, n.Directives)
		}
	}
}

func (b *viewBuilder) defineRefs(refs []*tp.ReferenceAst, dirs []*tp.DirectiveAst) {
	for _, ref := range refs {
		dir := -1
		for i, d := range dirs {
			if ref.Directive != nil && d.Directive == ref.Directive {
				dir = i
				break
			}
		}
		if err := b.scope.Define(ref.Name, scope.Entry{Kind: scope.Reference, Slot: -1, Directive: dir}); err != nil {
			b.c.reportError(err.Error(), ref.Span)
		}
	}
}

func (b *viewBuilder) declareVariables(vars []*tp.VariableAst) {
	for _, v := range vars {
		if err := b.scope.Define(v.Name, scope.Entry{Kind: scope.Variable, Value: v.Value}); err != nil {
			b.c.reportError(err.Error(), v.Span)
		}
	}
}

func (b *viewBuilder) build(nodes []tp.TemplateAst) {
	b.declareReferences(nodes)
	tp.TemplateVisitAll(b, nodes, nil)
	b.c.builders = append(b.c.builders, b)
}

func (b *viewBuilder) VisitText(ast *tp.TextAst, _ interface{}) interface{} {
	slot := b.allocateSlot()
	b.emitCreate(identifiers.Text, slot, o.Literal(slot), o.Literal(ast.Value))
	return nil
}

func (b *viewBuilder) VisitBoundText(ast *tp.BoundTextAst, _ interface{}) interface{} {
	slot := b.allocateSlot()
	b.emitCreate(identifiers.Text, slot, o.Literal(slot), o.Literal(""))
	cv := b.bindingConverter(ast.Span)
	var args []o.OutputExpression
	if interp, ok := ast.Value.AST.(*expression_parser.Interpolation); ok {
		cv.source = ast.Value.Source
		args = cv.interpolationArgs(interp)
	} else {
		args = []o.OutputExpression{cv.convert(ast.Value)}
	}
	b.flushPipes(cv)
	b.emitUpdate(identifiers.TextInterpolate, slot, append([]o.OutputExpression{o.Literal(slot)}, args...)...)
	return nil
}

func (b *viewBuilder) VisitElement(ast *tp.ElementAst, _ interface{}) interface{} {
	slot := b.allocateSlot()
	for _, ref := range ast.References {
		b.refSlots[ref.Name] = slot
	}

	if ast.IsContainer() {
		b.emitCreate(identifiers.ElementContainerStart, slot, o.Literal(slot))
	} else {
		b.emitCreate(identifiers.ElementStart, slot, o.Literal(slot), o.Literal(ast.Name), b.attrsLiteral(ast.Attrs))
	}
	b.emitDirectives(slot, ast.Directives)

	for _, event := range ast.Outputs {
		b.emitListener(slot, ast.Name, event)
	}

	var cvs []*converter
	for _, input := range ast.Inputs {
		cvs = append(cvs, b.emitElementProperty(slot, input))
	}
	cvs = append(cvs, b.emitDirectiveInputs(slot, ast.Directives)...)
	b.flushPipes(cvs...)

	tp.TemplateVisitAll(b, ast.Children, nil)

	if ast.IsContainer() {
		b.emitCreate(identifiers.ElementContainerEnd, -1)
	} else {
		b.emitCreate(identifiers.ElementEnd, -1)
	}
	return nil
}

func (b *viewBuilder) VisitEmbeddedTemplate(ast *tp.EmbeddedTemplateAst, _ interface{}) interface{} {
	slot := b.allocateSlot()
	for _, ref := range ast.References {
		b.refSlots[ref.Name] = slot
	}
	fnName := b.c.pool.UniqueName(fmt.Sprintf("%s_%s_%d_Template", b.fnName, templateTag(ast), slot), false)

	b.emitCreate(identifiers.TemplateCreate, slot, o.Literal(slot), o.Variable(fnName), o.Literal(fnName))
	b.emitDirectives(slot, ast.Directives)
	b.flushPipes(b.emitDirectiveInputs(slot, ast.Directives)...)

	child := b.c.newView(b, fnName)
	child.declareVariables(ast.Variables)
	child.build(ast.Children)
	return nil
}

func (b *viewBuilder) VisitNgContent(ast *tp.NgContentAst, _ interface{}) interface{} {
	slot := b.allocateSlot()
	b.emitCreate(identifiers.Projection, slot, o.Literal(slot))
	return nil
}

func (b *viewBuilder) VisitReference(*tp.ReferenceAst, interface{}) interface{} { return nil }
func (b *viewBuilder) VisitVariable(*tp.VariableAst, interface{}) interface{}   { return nil }
func (b *viewBuilder) VisitEvent(*tp.BoundEventAst, interface{}) interface{}    { return nil }
func (b *viewBuilder) VisitAttr(*tp.AttrAst, interface{}) interface{}           { return nil }
func (b *viewBuilder) VisitDirective(*tp.DirectiveAst, interface{}) interface{} { return nil }
func (b *viewBuilder) VisitDirectiveProperty(*tp.BoundDirectivePropertyAst, interface{}) interface{} {
	return nil
}
func (b *viewBuilder) VisitElementProperty(*tp.BoundElementPropertyAst, interface{}) interface{} {
	return nil
}

// templateTag names an embedded template after its only element, as written before the
// structural directive was desugared.
func templateTag(ast *tp.EmbeddedTemplateAst) string {
	if len(ast.Children) == 1 {
		if el, ok := ast.Children[0].(*tp.ElementAst); ok {
			return util.SanitizeIdentifier(el.Name)
		}
	}
	return "ng_template"
}

func (b *viewBuilder) attrsLiteral(attrs []*tp.AttrAst) o.OutputExpression {
	if len(attrs) == 0 {
		return o.NullExpr()
	}
	entries := make([]o.OutputExpression, 0, 2*len(attrs))
	for _, a := range attrs {
		entries = append(entries, o.Literal(a.Name), o.Literal(a.Value))
	}
	return b.c.pool.GetConstLiteral(o.NewLiteralArrayExpr(entries, nil), false)
}

func (b *viewBuilder) inputsLiteral(dir *metadata.CompileDirectiveMetadata) o.OutputExpression {
	list := dir.InputList()
	if len(list) == 0 {
		return o.NullExpr()
	}
	entries := make([]o.OutputExpression, len(list))
	for i, v := range list {
		entries[i] = o.Literal(v)
	}
	return b.c.pool.GetConstLiteral(o.NewLiteralArrayExpr(entries, nil), false)
}

// emitDirectives creates the directives of a node. The component, listed first, is created
// before any other directive.
func (b *viewBuilder) emitDirectives(slot int, dirs []*tp.DirectiveAst) {
	for _, d := range dirs {
		meta := d.Directive
		typ := o.ImportExpr(identifiers.TypeReference(meta.Type, meta.ModuleURL))
		if meta.IsComponent {
			view := identifiers.Value(viewClassName(meta.Name()), meta.ModuleURL, meta.ComponentViewType)
			b.emitCreate(identifiers.Component, slot, o.Literal(slot), typ, b.inputsLiteral(meta), o.ImportExpr(view))
			continue
		}
		b.emitCreate(identifiers.Directive, slot, o.Literal(slot), typ, b.inputsLiteral(meta))
	}
}

func (b *viewBuilder) emitDirectiveInputs(slot int, dirs []*tp.DirectiveAst) []*converter {
	var cvs []*converter
	for _, d := range dirs {
		for _, input := range d.Inputs {
			cv := b.bindingConverter(input.Span)
			value := cv.convert(input.Value)
			b.emitUpdate(identifiers.Property, slot, o.Literal(slot), o.Literal(input.TemplateName), value)
			cvs = append(cvs, cv)
		}
	}
	return cvs
}

func (b *viewBuilder) emitElementProperty(slot int, input *tp.BoundElementPropertyAst) *converter {
	cv := b.bindingConverter(input.Span)
	value := cv.convert(input.Value)
	switch input.Type {
	case tp.PropertyBindingAttribute:
		b.emitUpdate(identifiers.Attribute, slot, o.Literal(slot), o.Literal(input.Name), value)
	case tp.PropertyBindingClass:
		b.emitUpdate(identifiers.ClassProp, slot, o.Literal(slot), o.Literal(input.Name), value)
	case tp.PropertyBindingStyle:
		if input.Unit != "" {
			value = o.Call(o.ImportExpr(identifiers.Interpolate), value, o.Literal(input.Unit))
		}
		b.emitUpdate(identifiers.StyleProp, slot, o.Literal(slot), o.Literal(input.Name), value)
	default:
		b.emitUpdate(identifiers.Property, slot, o.Literal(slot), o.Literal(input.Name), value)
	}
	return cv
}

// emitListener registers a closure on the open element. The closure body is completed when
// the component is finalized, once every reference slot is known.
func (b *viewBuilder) emitListener(slot int, tag string, event *tp.BoundEventAst) {
	d := newDerivations(b)
	cv := &converter{view: b, d: d, action: true, span: event.Span}
	body := cv.actionStatements(event.Handler)
	name := b.c.pool.UniqueName(fmt.Sprintf("%s_%s_%s_%d_listener",
		b.fnName, util.SanitizeIdentifier(tag), util.SanitizeIdentifier(event.Name), slot), false)
	fn := o.NewFunctionExpr([]*o.FnParam{o.NewFnParam(eventName)}, body, name, nil)
	b.listeners = append(b.listeners, pendingListener{fn: fn, d: d})
	b.emitCreate(identifiers.Listener, -1, o.Literal(event.Name), fn)
}

// finalize completes listener bodies and assembles the view function. Listeners of embedded
// views always restore their view; listeners of the component view only when they read a
// reference.
func (b *viewBuilder) finalize() (*o.DeclareFunctionStmt, *ViewIR) {
	for _, l := range b.listeners {
		pre, _ := l.d.statements()
		pre = append(pre, l.d.tempDeclarations()...)
		if b.parent != nil || len(l.d.refs) > 0 {
			if b.savedView == "" {
				b.savedView = b.c.pool.UniqueName("_r", true)
			}
			restore := o.ToStmt(o.Call(o.ImportExpr(identifiers.RestoreView), o.Variable(b.savedView)))
			pre = append([]o.OutputStatement{restore}, pre...)
		}
		l.fn.Statements = append(pre, l.fn.Statements...)
	}

	create := b.create
	if b.savedView != "" {
		save := o.NewDeclareVarStmt(b.savedView, o.Call(o.ImportExpr(identifiers.GetCurrentView)), o.StmtModifierFinal, nil)
		create = append([]*Instruction{{Ref: identifiers.GetCurrentView, Slot: -1, Stmt: save}}, create...)
	}
	_, preamble := b.updateD.statements()
	update := append(preamble, b.update...)

	var body []o.OutputStatement
	rf := o.Variable(renderFlagsName)
	if len(create) > 0 {
		body = append(body, o.NewIfStmt(o.Binary(o.BinaryOperatorBitwiseAnd, rf, o.Literal(1)), statementsOf(create), nil, nil))
	}
	if len(b.update) > 0 {
		stmts := append(b.updateD.tempDeclarations(), statementsOf(update)...)
		body = append(body, o.NewIfStmt(o.Binary(o.BinaryOperatorBitwiseAnd, rf, o.Literal(2)), stmts, nil, nil))
	}
	fn := o.NewDeclareFunctionStmt(b.fnName,
		[]*o.FnParam{o.NewFnParam(renderFlagsName), o.NewFnParam(contextName)},
		body, o.StmtModifierNone, nil)

	ir := &ViewIR{FnName: b.fnName, Depth: b.scope.Depth(), Slots: b.slots, Create: create, Update: update}
	if b.parent != nil {
		ir.Parent = b.parent.fnName
	}
	return fn, ir
}

func statementsOf(instrs []*Instruction) []o.OutputStatement {
	stmts := make([]o.OutputStatement, len(instrs))
	for i, in := range instrs {
		stmts[i] = in.Stmt
	}
	return stmts
}
