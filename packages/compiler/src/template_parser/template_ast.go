package template_parser

import (
	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/util"
)

// TemplateAst is a node of a parsed template with its directives matched and bindings parsed.
type TemplateAst interface {
	SourceSpan() *util.ParseSourceSpan
	Visit(visitor TemplateAstVisitor, context interface{}) interface{}
}

// TextAst is static text.
type TextAst struct {
	Value string
	Span  *util.ParseSourceSpan
}

func (a *TextAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *TextAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitText(a, ctx)
}

// BoundTextAst is text with {{ }} interpolation. Value wraps an *expression_parser.Interpolation.
type BoundTextAst struct {
	Value *expression_parser.ASTWithSource
	Span  *util.ParseSourceSpan
}

func (a *BoundTextAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *BoundTextAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitBoundText(a, ctx)
}

// AttrAst is a static attribute.
type AttrAst struct {
	Name  string
	Value string
	Span  *util.ParseSourceSpan
}

func (a *AttrAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *AttrAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitAttr(a, ctx)
}

// PropertyBindingType tells the view compiler which instruction updates a binding.
type PropertyBindingType int

const (
	PropertyBindingProperty PropertyBindingType = iota
	PropertyBindingAttribute
	PropertyBindingClass
	PropertyBindingStyle
)

// BoundElementPropertyAst is a binding to a DOM property, attribute, class or style.
type BoundElementPropertyAst struct {
	Name  string
	Type  PropertyBindingType
	Value *expression_parser.ASTWithSource
	Unit  string
	Span  *util.ParseSourceSpan
}

func (a *BoundElementPropertyAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *BoundElementPropertyAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitElementProperty(a, ctx)
}

// BoundEventAst is an event listener. Handler is an action expression.
type BoundEventAst struct {
	Name    string
	Handler *expression_parser.ASTWithSource
	Span    *util.ParseSourceSpan
}

func (a *BoundEventAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *BoundEventAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitEvent(a, ctx)
}

// ReferenceAst is a #ref. Directive is nil for a reference to the element itself or, on an
// <ng-template>, to its TemplateRef.
type ReferenceAst struct {
	Name      string
	Directive *metadata.CompileDirectiveMetadata
	Span      *util.ParseSourceSpan
}

func (a *ReferenceAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *ReferenceAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitReference(a, ctx)
}

// VariableAst is a template-local variable declared with let-name="value" or microsyntax. Value
// names the property of the embedded view context; "$implicit" when not given.
type VariableAst struct {
	Name  string
	Value string
	Span  *util.ParseSourceSpan
}

func (a *VariableAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *VariableAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitVariable(a, ctx)
}

// BoundDirectivePropertyAst binds an expression to a directive input. TemplateName is the
// binding name used in the template, DirectiveName the directive's property.
type BoundDirectivePropertyAst struct {
	DirectiveName string
	TemplateName  string
	Value         *expression_parser.ASTWithSource
	Span          *util.ParseSourceSpan
}

func (a *BoundDirectivePropertyAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *BoundDirectivePropertyAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitDirectiveProperty(a, ctx)
}

// DirectiveAst is a directive matched on an element or template.
type DirectiveAst struct {
	Directive *metadata.CompileDirectiveMetadata
	Inputs    []*BoundDirectivePropertyAst
	Span      *util.ParseSourceSpan
}

func (a *DirectiveAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *DirectiveAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitDirective(a, ctx)
}

// ElementAst is an element, or an <ng-container> when Name is "ng-container".
type ElementAst struct {
	Name       string
	Attrs      []*AttrAst
	Inputs     []*BoundElementPropertyAst
	Outputs    []*BoundEventAst
	References []*ReferenceAst
	// Directives holds the component, if any, first.
	Directives    []*DirectiveAst
	Children      []TemplateAst
	Span          *util.ParseSourceSpan
	EndSourceSpan *util.ParseSourceSpan
}

func (a *ElementAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *ElementAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitElement(a, ctx)
}

// Component returns the component directive of the element, or nil.
func (a *ElementAst) Component() *DirectiveAst {
	for _, d := range a.Directives {
		if d.Directive.IsComponent {
			return d
		}
	}
	return nil
}

// IsContainer reports whether the element is an <ng-container>.
func (a *ElementAst) IsContainer() bool {
	return a.Name == "ng-container"
}

// EmbeddedTemplateAst is an <ng-template>, written explicitly or desugared from a *directive.
type EmbeddedTemplateAst struct {
	Attrs      []*AttrAst
	References []*ReferenceAst
	Variables  []*VariableAst
	Directives []*DirectiveAst
	Children   []TemplateAst
	Span       *util.ParseSourceSpan
}

func (a *EmbeddedTemplateAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *EmbeddedTemplateAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitEmbeddedTemplate(a, ctx)
}

// NgContentAst is an <ng-content> projection slot.
type NgContentAst struct {
	Index int
	Span  *util.ParseSourceSpan
}

func (a *NgContentAst) SourceSpan() *util.ParseSourceSpan { return a.Span }
func (a *NgContentAst) Visit(v TemplateAstVisitor, ctx interface{}) interface{} {
	return v.VisitNgContent(a, ctx)
}

// TemplateAstVisitor visits template nodes.
type TemplateAstVisitor interface {
	VisitNgContent(ast *NgContentAst, context interface{}) interface{}
	VisitEmbeddedTemplate(ast *EmbeddedTemplateAst, context interface{}) interface{}
	VisitElement(ast *ElementAst, context interface{}) interface{}
	VisitReference(ast *ReferenceAst, context interface{}) interface{}
	VisitVariable(ast *VariableAst, context interface{}) interface{}
	VisitEvent(ast *BoundEventAst, context interface{}) interface{}
	VisitElementProperty(ast *BoundElementPropertyAst, context interface{}) interface{}
	VisitAttr(ast *AttrAst, context interface{}) interface{}
	VisitBoundText(ast *BoundTextAst, context interface{}) interface{}
	VisitText(ast *TextAst, context interface{}) interface{}
	VisitDirective(ast *DirectiveAst, context interface{}) interface{}
	VisitDirectiveProperty(ast *BoundDirectivePropertyAst, context interface{}) interface{}
}

// TemplateVisitAll visits asts in order and collects the non-nil results.
func TemplateVisitAll(visitor TemplateAstVisitor, asts []TemplateAst, context interface{}) []interface{} {
	var result []interface{}
	for _, ast := range asts {
		if r := ast.Visit(visitor, context); r != nil {
			result = append(result, r)
		}
	}
	return result
}
