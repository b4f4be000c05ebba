package template_parser

import (
	"fmt"
	"strings"

	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/schema"
	"ngjit-go/packages/compiler/src/util"
)

const (
	propertyPartsSeparator = "."
	attributePrefix        = "attr"
	classPrefix            = "class"
	stylePrefix            = "style"
	templateAttrPrefix     = "*"
)

// ParsedPropertyType distinguishes literal attributes from real bindings.
type ParsedPropertyType int

const (
	ParsedPropertyTypeDefault ParsedPropertyType = iota
	ParsedPropertyTypeLiteralAttr
	ParsedPropertyTypeTwoWay
)

// ParsedProperty is a property binding or literal attribute before it is assigned to a
// directive input or the element.
type ParsedProperty struct {
	Name       string
	Expression *expression_parser.ASTWithSource
	Type       ParsedPropertyType
	SourceSpan *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

// IsLiteral reports whether the property came from a static attribute.
func (p *ParsedProperty) IsLiteral() bool {
	return p.Type == ParsedPropertyTypeLiteralAttr
}

// ParsedEvent is an event binding.
type ParsedEvent struct {
	Name       string
	Handler    *expression_parser.ASTWithSource
	SourceSpan *util.ParseSourceSpan
}

// ParsedVariable is a template variable from let-x or microsyntax.
type ParsedVariable struct {
	Name       string
	Value      string
	SourceSpan *util.ParseSourceSpan
}

// BindingParser parses the expressions of bindings and checks the pipes they use.
type BindingParser struct {
	exprParser     *expression_parser.Parser
	schemaRegistry schema.ElementSchemaRegistry
	pipesByName    map[string]*metadata.CompilePipeMetadata
	usedPipes      []*metadata.CompilePipeMetadata
	usedSeen       map[string]bool
	Errors         []*util.ParseError
}

// NewBindingParser creates a BindingParser that resolves pipes among pipes.
func NewBindingParser(
	exprParser *expression_parser.Parser,
	schemaRegistry schema.ElementSchemaRegistry,
	pipes []*metadata.CompilePipeMetadata,
) *BindingParser {
	bp := &BindingParser{
		exprParser:     exprParser,
		schemaRegistry: schemaRegistry,
		pipesByName:    map[string]*metadata.CompilePipeMetadata{},
		usedSeen:       map[string]bool{},
	}
	for _, p := range pipes {
		bp.pipesByName[p.Name] = p
	}
	return bp
}

// UsedPipes returns the pipes referenced by parsed bindings in first-use order.
func (bp *BindingParser) UsedPipes() []*metadata.CompilePipeMetadata {
	return bp.usedPipes
}

// ParseInterpolation parses text with {{ }} markers. It returns nil when there are none.
func (bp *BindingParser) ParseInterpolation(value string, sourceSpan *util.ParseSourceSpan) *expression_parser.ASTWithSource {
	ast, errs := bp.exprParser.ParseInterpolation(value, sourceSpan, sourceSpan.Start.Offset)
	bp.Errors = append(bp.Errors, errs...)
	if ast != nil {
		bp.checkPipes(ast, sourceSpan)
	}
	return ast
}

// ParseInlineTemplateBinding parses the value of a *directive attribute. Expression bindings
// become template properties, let and as clauses template variables. Every key is matchable.
func (bp *BindingParser) ParseInlineTemplateBinding(
	tplKey string,
	tplValue string,
	sourceSpan *util.ParseSourceSpan,
	absoluteValueOffset int,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*ParsedProperty,
	targetVars *[]*ParsedVariable,
) {
	result := bp.exprParser.ParseTemplateBindings(tplKey, tplValue, sourceSpan, sourceSpan.Start.Offset, absoluteValueOffset)
	bp.Errors = append(bp.Errors, result.Errors...)

	for _, binding := range result.TemplateBindings {
		switch b := binding.(type) {
		case *expression_parser.VariableBinding:
			value := "$implicit"
			if b.Value != nil {
				value = b.Value.Source
			}
			*targetVars = append(*targetVars, &ParsedVariable{Name: b.Key.Source, Value: value, SourceSpan: sourceSpan})
		case *expression_parser.ExpressionBinding:
			if b.Value != nil {
				bp.checkPipes(b.Value, sourceSpan)
				bp.parsePropertyAst(b.Key.Source, b.Value, false, sourceSpan, sourceSpan, targetMatchableAttrs, targetProps)
			} else {
				*targetMatchableAttrs = append(*targetMatchableAttrs, [2]string{b.Key.Source, ""})
				bp.ParseLiteralAttr(b.Key.Source, "", sourceSpan, absoluteValueOffset, nil, targetProps)
			}
		}
	}
}

// ParseLiteralAttr records a static attribute as a property that directives may consume.
func (bp *BindingParser) ParseLiteralAttr(
	name string,
	value string,
	sourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
	valueSpan *util.ParseSourceSpan,
	targetProps *[]*ParsedProperty,
) {
	*targetProps = append(*targetProps, &ParsedProperty{
		Name:       name,
		Expression: bp.exprParser.WrapLiteralPrimitive(value, sourceSpan, absoluteOffset),
		Type:       ParsedPropertyTypeLiteralAttr,
		SourceSpan: sourceSpan,
		ValueSpan:  valueSpan,
	})
}

// ParsePropertyBinding parses [name]="expression".
func (bp *BindingParser) ParsePropertyBinding(
	name string,
	expression string,
	isPartOfAssignmentBinding bool,
	sourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
	valueSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*ParsedProperty,
) {
	if name == "" {
		bp.reportError("Property name is missing in binding", sourceSpan)
	}
	span := valueSpan
	if span == nil {
		span = sourceSpan
	}
	ast := bp.parseBinding(expression, span, absoluteOffset)
	bp.parsePropertyAst(name, ast, isPartOfAssignmentBinding, sourceSpan, valueSpan, targetMatchableAttrs, targetProps)
}

// ParsePropertyInterpolation turns an attribute value containing {{ }} into a property
// binding. It reports whether the value was interpolated.
func (bp *BindingParser) ParsePropertyInterpolation(
	name string,
	value string,
	sourceSpan *util.ParseSourceSpan,
	valueSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*ParsedProperty,
) bool {
	span := valueSpan
	if span == nil {
		span = sourceSpan
	}
	expr := bp.ParseInterpolation(value, span)
	if expr == nil {
		return false
	}
	bp.parsePropertyAst(name, expr, false, sourceSpan, valueSpan, targetMatchableAttrs, targetProps)
	return true
}

func (bp *BindingParser) parsePropertyAst(
	name string,
	ast *expression_parser.ASTWithSource,
	isPartOfAssignmentBinding bool,
	sourceSpan *util.ParseSourceSpan,
	valueSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*ParsedProperty,
) {
	*targetMatchableAttrs = append(*targetMatchableAttrs, [2]string{name, ast.Source})
	typ := ParsedPropertyTypeDefault
	if isPartOfAssignmentBinding {
		typ = ParsedPropertyTypeTwoWay
	}
	*targetProps = append(*targetProps, &ParsedProperty{
		Name:       name,
		Expression: ast,
		Type:       typ,
		SourceSpan: sourceSpan,
		ValueSpan:  valueSpan,
	})
}

func (bp *BindingParser) parseBinding(value string, sourceSpan *util.ParseSourceSpan, absoluteOffset int) *expression_parser.ASTWithSource {
	ast, errs := bp.exprParser.ParseBinding(value, sourceSpan, absoluteOffset)
	bp.Errors = append(bp.Errors, errs...)
	bp.checkPipes(ast, sourceSpan)
	return ast
}

// CreateBoundElementProperty classifies a binding that no directive consumed. attr., class. and
// style. prefixes select the binding type; plain names are mapped to DOM property names.
func (bp *BindingParser) CreateBoundElementProperty(boundProp *ParsedProperty) *BoundElementPropertyAst {
	parts := strings.Split(boundProp.Name, propertyPartsSeparator)
	result := &BoundElementPropertyAst{
		Value: boundProp.Expression,
		Span:  boundProp.SourceSpan,
	}
	if len(parts) > 1 {
		switch parts[0] {
		case attributePrefix:
			result.Name = strings.Join(parts[1:], propertyPartsSeparator)
			result.Type = PropertyBindingAttribute
			bp.validatePropertyOrAttributeName(result.Name, boundProp.SourceSpan, true)
			return result
		case classPrefix:
			result.Name = parts[1]
			result.Type = PropertyBindingClass
			return result
		case stylePrefix:
			result.Name = parts[1]
			if len(parts) > 2 {
				result.Unit = parts[2]
			}
			result.Type = PropertyBindingStyle
			return result
		}
	}
	result.Name = bp.schemaRegistry.GetMappedPropName(boundProp.Name)
	result.Type = PropertyBindingProperty
	bp.validatePropertyOrAttributeName(result.Name, boundProp.SourceSpan, false)
	return result
}

// ParseEvent parses (name)="expression". Two-way bindings pass the synthesized
// "<name>Change" event here.
func (bp *BindingParser) ParseEvent(
	name string,
	expression string,
	sourceSpan *util.ParseSourceSpan,
	handlerSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetEvents *[]*ParsedEvent,
) {
	if name == "" {
		bp.reportError("Event name is missing in binding", sourceSpan)
	}
	ast := bp.parseAction(expression, handlerSpan)
	*targetMatchableAttrs = append(*targetMatchableAttrs, [2]string{name, ast.Source})
	*targetEvents = append(*targetEvents, &ParsedEvent{Name: name, Handler: ast, SourceSpan: sourceSpan})
}

func (bp *BindingParser) parseAction(value string, sourceSpan *util.ParseSourceSpan) *expression_parser.ASTWithSource {
	ast, errs := bp.exprParser.ParseAction(value, sourceSpan, sourceSpan.Start.Offset)
	bp.Errors = append(bp.Errors, errs...)
	if _, empty := ast.AST.(*expression_parser.EmptyExpr); empty && len(errs) == 0 {
		bp.reportError("Empty expressions are not allowed", sourceSpan)
	}
	return ast
}

func (bp *BindingParser) checkPipes(ast *expression_parser.ASTWithSource, sourceSpan *util.ParseSourceSpan) {
	expression_parser.Walk(ast, func(node expression_parser.AST) bool {
		pipe, ok := node.(*expression_parser.BindingPipe)
		if !ok {
			return true
		}
		meta, found := bp.pipesByName[pipe.Name]
		if !found {
			bp.reportError(fmt.Sprintf("The pipe '%s' could not be found", pipe.Name), sourceSpan)
			return true
		}
		if !bp.usedSeen[pipe.Name] {
			bp.usedSeen[pipe.Name] = true
			bp.usedPipes = append(bp.usedPipes, meta)
		}
		return true
	})
}

func (bp *BindingParser) reportError(message string, sourceSpan *util.ParseSourceSpan) {
	bp.Errors = append(bp.Errors, util.NewParseError(sourceSpan, message))
}

func (bp *BindingParser) validatePropertyOrAttributeName(name string, sourceSpan *util.ParseSourceSpan, isAttr bool) {
	var report schema.PropertyValidationResult
	if isAttr {
		report = bp.schemaRegistry.ValidateAttribute(name)
	} else {
		report = bp.schemaRegistry.ValidateProperty(name)
	}
	if report.Error {
		bp.reportError(report.Msg, sourceSpan)
	}
}
