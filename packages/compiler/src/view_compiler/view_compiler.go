// Package view_compiler turns a parsed component template into generated view functions. Each
// view, the component view and one per embedded template, becomes a function of the render
// flags and the view context whose body is split into a creation block and an update block.
package view_compiler

import (
	"strings"

	"ngjit-go/packages/compiler/src/css"
	"ngjit-go/packages/compiler/src/identifiers"
	"ngjit-go/packages/compiler/src/metadata"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/pool"
	"ngjit-go/packages/compiler/src/schema"
	tp "ngjit-go/packages/compiler/src/template_parser"
	"ngjit-go/packages/compiler/src/util"
)

// ViewCompileResult names the exported variables of a compiled view. Views lists the
// instruction lists of every view, the component view first.
type ViewCompileResult struct {
	ViewClassVar    string
	RendererTypeVar string
	Views           []*ViewIR
}

// ViewCompiler compiles component and host views.
type ViewCompiler struct {
	schemaRegistry schema.ElementSchemaRegistry
}

// NewViewCompiler creates a new ViewCompiler
func NewViewCompiler(schemaRegistry schema.ElementSchemaRegistry) *ViewCompiler {
	return &ViewCompiler{schemaRegistry: schemaRegistry}
}

type componentCompiler struct {
	pool      *pool.ConstantPool
	component *metadata.CompileDirectiveMetadata
	moduleURL string
	pipes     map[string]*metadata.CompilePipeMetadata
	// views is in creation order; builders in completion order, innermost views first.
	views    []*viewBuilder
	builders []*viewBuilder
	errors   []*util.ParseError
}

func newComponentCompiler(outputCtx *pool.OutputContext, component *metadata.CompileDirectiveMetadata, usedPipes []*metadata.CompilePipeMetadata) *componentCompiler {
	c := &componentCompiler{
		pool:      outputCtx.ConstantPool,
		component: component,
		moduleURL: component.ModuleURL,
		pipes:     map[string]*metadata.CompilePipeMetadata{},
	}
	for _, p := range usedPipes {
		c.pipes[p.Name] = p
	}
	return c
}

func (c *componentCompiler) reportError(msg string, span *util.ParseSourceSpan) {
	c.errors = append(c.errors, util.NewParseError(span, msg))
}

func (c *componentCompiler) newView(parent *viewBuilder, fnName string) *viewBuilder {
	b := newViewBuilder(c, parent, fnName)
	c.views = append(c.views, b)
	return b
}

// finish emits the view functions, nested views before the views declaring them.
func (c *componentCompiler) finish(outputCtx *pool.OutputContext) ([]*ViewIR, error) {
	irs := map[*viewBuilder]*ViewIR{}
	for _, b := range c.builders {
		fn, ir := b.finalize()
		outputCtx.Statements = append(outputCtx.Statements, fn)
		irs[b] = ir
	}
	if err := util.NewTemplateParseError(c.component.Name(), c.errors); err != nil {
		return nil, err
	}
	views := make([]*ViewIR, 0, len(c.views))
	for _, b := range c.views {
		views = append(views, irs[b])
	}
	return views, nil
}

func viewClassName(componentName string) string {
	return "View_" + componentName + "_0"
}

// CompileComponent compiles the component view of component. styles reads the component's
// stylesheet variable; nil compiles a component without styles. Statements are appended to
// outputCtx.
func (vc *ViewCompiler) CompileComponent(
	outputCtx *pool.OutputContext,
	component *metadata.CompileDirectiveMetadata,
	template []tp.TemplateAst,
	styles o.OutputExpression,
	usedPipes []*metadata.CompilePipeMetadata,
) (*ViewCompileResult, error) {
	name := component.Name()
	cp := outputCtx.ConstantPool

	if styles == nil {
		styles = o.LiteralArr()
	}
	encapsulation := 0
	if component.Template != nil {
		encapsulation = int(component.Template.Encapsulation)
	}
	rendererTypeVar := cp.UniqueName("RenderType_"+util.SanitizeIdentifier(name), false)
	outputCtx.Statements = append(outputCtx.Statements, o.NewDeclareVarStmt(rendererTypeVar,
		o.Call(o.ImportExpr(identifiers.CreateRendererType2), o.Literal(encapsulation), styles, o.NewLiteralMapExpr(nil, nil)),
		o.StmtModifierExported|o.StmtModifierFinal, nil))

	c := newComponentCompiler(outputCtx, component, usedPipes)
	fnName := cp.UniqueName(util.SanitizeIdentifier(name)+"_Template", false)
	c.newView(nil, fnName).build(template)

	views, err := c.finish(outputCtx)
	if err != nil {
		return nil, err
	}

	viewClassVar := cp.UniqueName("View_"+util.SanitizeIdentifier(name)+"_", true)
	outputCtx.Statements = append(outputCtx.Statements, o.NewDeclareVarStmt(viewClassVar,
		o.Call(o.ImportExpr(identifiers.ViewDef), o.Literal(name), o.Variable(fnName), o.Variable(rendererTypeVar)),
		o.StmtModifierExported|o.StmtModifierFinal, nil))

	return &ViewCompileResult{ViewClassVar: viewClassVar, RendererTypeVar: rendererTypeVar, Views: views}, nil
}

// CompileHost compiles the host view used to bootstrap component dynamically: a single element
// matching the component's selector with the component on it.
func (vc *ViewCompiler) CompileHost(outputCtx *pool.OutputContext, component *metadata.CompileDirectiveMetadata) (*ViewCompileResult, error) {
	name := component.Name()
	cp := outputCtx.ConstantPool
	hostName := util.SanitizeIdentifier(name) + "_Host"

	c := newComponentCompiler(outputCtx, component, nil)
	fnName := cp.UniqueName(hostName+"_Template", false)
	b := c.newView(nil, fnName)

	tag, attrs, err := vc.hostElement(component.Selector)
	if err != nil {
		return nil, util.ConfigurationError(name, "Invalid selector of %s: %v", name, err)
	}
	slot := b.allocateSlot()
	b.emitCreate(identifiers.ElementStart, slot, o.Literal(slot), o.Literal(tag), b.attrsLiteral(attrs))
	b.emitDirectives(slot, []*tp.DirectiveAst{{Directive: component}})
	b.emitCreate(identifiers.ElementEnd, -1)
	c.builders = append(c.builders, b)

	views, err := c.finish(outputCtx)
	if err != nil {
		return nil, err
	}

	viewClassVar := cp.UniqueName("View_"+hostName+"_", true)
	outputCtx.Statements = append(outputCtx.Statements, o.NewDeclareVarStmt(viewClassVar,
		o.Call(o.ImportExpr(identifiers.ViewDef), o.Literal(name+"_Host"), o.Variable(fnName), o.NullExpr()),
		o.StmtModifierExported|o.StmtModifierFinal, nil))

	return &ViewCompileResult{ViewClassVar: viewClassVar, Views: views}, nil
}

// hostElement renders the first selector of a component as an element name and attributes.
func (vc *ViewCompiler) hostElement(selector string) (string, []*tp.AttrAst, error) {
	tag := vc.schemaRegistry.GetDefaultComponentElementName()
	if selector == "" {
		return tag, nil, nil
	}
	sels, err := css.ParseCssSelector(selector)
	if err != nil {
		return "", nil, err
	}
	sel := sels[0]
	if sel.Element != "" && sel.Element != "*" {
		tag = sel.Element
	}
	var attrs []*tp.AttrAst
	if len(sel.ClassNames) > 0 {
		attrs = append(attrs, &tp.AttrAst{Name: "class", Value: strings.Join(sel.ClassNames, " ")})
	}
	for i := 0; i+1 < len(sel.Attrs); i += 2 {
		attrs = append(attrs, &tp.AttrAst{Name: sel.Attrs[i], Value: sel.Attrs[i+1]})
	}
	return tag, attrs, nil
}
