// Package template_parser turns component templates into TemplateAst trees: HTML is parsed,
// directives are matched by selector, bindings are parsed and validated against the DOM
// schema, and *directive attributes are desugared into embedded templates.
package template_parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/css"
	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/ml_parser"
	"ngjit-go/packages/compiler/src/schema"
	"ngjit-go/packages/compiler/src/util"
)

const (
	kwBindIdx   = 1
	kwLetIdx    = 2
	kwRefIdx    = 3
	kwOnIdx     = 4
	kwBindonIdx = 5
	kwAtIdx     = 6
	identAt     = 7
	identBanana = 8
	identProp   = 9
	identEvent  = 10
)

var bindNameRegexp = regexp.MustCompile(`^(?:(?:(?:(bind-)|(let-)|(ref-|#)|(on-)|(bindon-)|(@))(.*))|\[\(([^\)]+)\)\]|\[([^\]]+)\]|\(([^\)]+)\))$`)

const implicitVariable = "$implicit"

// TemplateParseResult is a parsed template and the pipes it uses.
type TemplateParseResult struct {
	TemplateAst []TemplateAst
	UsedPipes   []*metadata.CompilePipeMetadata
	Errors      []*util.ParseError
}

// TemplateParser parses component templates.
type TemplateParser struct {
	config         *config.CompilerConfig
	exprParser     *expression_parser.Parser
	schemaRegistry schema.ElementSchemaRegistry
	htmlParser     *ml_parser.Parser
}

// NewTemplateParser creates a TemplateParser
func NewTemplateParser(
	cfg *config.CompilerConfig,
	exprParser *expression_parser.Parser,
	schemaRegistry schema.ElementSchemaRegistry,
	htmlParser *ml_parser.Parser,
) *TemplateParser {
	return &TemplateParser{
		config:         cfg,
		exprParser:     exprParser,
		schemaRegistry: schemaRegistry,
		htmlParser:     htmlParser,
	}
}

// Parse parses template for component against the directives and pipes visible to it. Any
// error-level problem fails the whole template with a *util.TemplateParseError.
func (tp *TemplateParser) Parse(
	component *metadata.CompileDirectiveMetadata,
	template string,
	directives []*metadata.CompileDirectiveMetadata,
	pipes []*metadata.CompilePipeMetadata,
	schemas []metadata.Schema,
	templateURL string,
	preserveWhitespaces bool,
) (*TemplateParseResult, error) {
	result := tp.TryParse(component, template, directives, pipes, schemas, templateURL, preserveWhitespaces)
	if err := util.NewTemplateParseError(component.Name(), result.Errors); err != nil {
		return nil, err
	}
	return result, nil
}

// TryParse is Parse without turning errors into a Go error.
func (tp *TemplateParser) TryParse(
	component *metadata.CompileDirectiveMetadata,
	template string,
	directives []*metadata.CompileDirectiveMetadata,
	pipes []*metadata.CompilePipeMetadata,
	schemas []metadata.Schema,
	templateURL string,
	preserveWhitespaces bool,
) *TemplateParseResult {
	htmlResult := tp.htmlParser.Parse(template, templateURL)
	if !preserveWhitespaces {
		htmlResult = ml_parser.RemoveWhitespaces(htmlResult)
	} else {
		ml_parser.StripPreserveWhitespacesAttr(htmlResult.RootNodes)
	}
	if len(htmlResult.Errors) > 0 {
		return &TemplateParseResult{Errors: htmlResult.Errors}
	}

	uniqDirectives := removeSummaryDuplicates(directives)
	bindingParser := NewBindingParser(tp.exprParser, tp.schemaRegistry, removePipeDuplicates(pipes))
	visitor := newTemplateParseVisitor(tp.schemaRegistry, uniqDirectives, bindingParser, schemas, tp.config != nil && tp.config.StrictTemplates)
	asts := visitor.visitNodes(htmlResult.RootNodes, false)

	errs := append(visitor.errors, bindingParser.Errors...)
	return &TemplateParseResult{TemplateAst: asts, UsedPipes: bindingParser.UsedPipes(), Errors: errs}
}

func removeSummaryDuplicates(items []*metadata.CompileDirectiveMetadata) []*metadata.CompileDirectiveMetadata {
	seen := map[any]bool{}
	out := make([]*metadata.CompileDirectiveMetadata, 0, len(items))
	for _, item := range items {
		if !seen[item.Type] {
			seen[item.Type] = true
			out = append(out, item)
		}
	}
	return out
}

func removePipeDuplicates(items []*metadata.CompilePipeMetadata) []*metadata.CompilePipeMetadata {
	seen := map[any]bool{}
	out := make([]*metadata.CompilePipeMetadata, 0, len(items))
	for _, item := range items {
		if !seen[item.Type] {
			seen[item.Type] = true
			out = append(out, item)
		}
	}
	return out
}

type elementOrDirectiveRef struct {
	name       string
	value      string
	sourceSpan *util.ParseSourceSpan
}

func (r *elementOrDirectiveRef) isReferenceToDirective(directive *metadata.CompileDirectiveMetadata) bool {
	if r.value == "" || directive.ExportAs == "" {
		return false
	}
	for _, exportAs := range strings.Split(directive.ExportAs, ",") {
		if strings.TrimSpace(exportAs) == r.value {
			return true
		}
	}
	return false
}

type templateParseVisitor struct {
	selectorMatcher *css.SelectorMatcher[*metadata.CompileDirectiveMetadata]
	directivesIndex map[*metadata.CompileDirectiveMetadata]int
	bindingParser   *BindingParser
	schemaRegistry  schema.ElementSchemaRegistry
	schemas         []metadata.Schema
	strict          bool
	ngContentCount  int
	errors          []*util.ParseError
}

func newTemplateParseVisitor(
	schemaRegistry schema.ElementSchemaRegistry,
	directives []*metadata.CompileDirectiveMetadata,
	bindingParser *BindingParser,
	schemas []metadata.Schema,
	strict bool,
) *templateParseVisitor {
	v := &templateParseVisitor{
		selectorMatcher: css.NewSelectorMatcher[*metadata.CompileDirectiveMetadata](),
		directivesIndex: map[*metadata.CompileDirectiveMetadata]int{},
		bindingParser:   bindingParser,
		schemaRegistry:  schemaRegistry,
		schemas:         schemas,
		strict:          strict,
	}
	for i, directive := range directives {
		v.directivesIndex[directive] = i
		selectors, err := css.ParseCssSelector(directive.Selector)
		if err != nil {
			v.reportError(err.Error(), util.TypeSourceSpan("directive", directive.Name(), directive.ModuleURL))
			continue
		}
		v.selectorMatcher.AddSelectables(selectors, directive)
	}
	return v
}

func (v *templateParseVisitor) reportError(message string, sourceSpan *util.ParseSourceSpan) {
	v.errors = append(v.errors, util.NewParseError(sourceSpan, message))
}

func (v *templateParseVisitor) visitNodes(nodes []ml_parser.Node, nonBindable bool) []TemplateAst {
	var out []TemplateAst
	for _, node := range nodes {
		var ast TemplateAst
		switch n := node.(type) {
		case *ml_parser.Element:
			if nonBindable {
				ast = v.visitNonBindableElement(n)
			} else {
				ast = v.visitElement(n)
			}
		case *ml_parser.Text:
			ast = v.visitText(n, nonBindable)
		}
		if ast != nil {
			out = append(out, ast)
		}
	}
	return out
}

func (v *templateParseVisitor) visitText(text *ml_parser.Text, nonBindable bool) TemplateAst {
	if !nonBindable {
		if expr := v.bindingParser.ParseInterpolation(text.Value, text.Span); expr != nil {
			return &BoundTextAst{Value: expr, Span: text.Span}
		}
	}
	return &TextAst{Value: text.Value, Span: text.Span}
}

func (v *templateParseVisitor) visitNonBindableElement(el *ml_parser.Element) TemplateAst {
	preparsed := PreparseElement(el)
	switch preparsed.Type {
	case PreparsedElementTypeScript, PreparsedElementTypeStyle, PreparsedElementTypeStylesheet:
		return nil
	}
	attrs := make([]*AttrAst, 0, len(el.Attrs))
	for _, a := range el.Attrs {
		attrs = append(attrs, &AttrAst{Name: a.Name, Value: a.Value, Span: a.Span})
	}
	return &ElementAst{
		Name:          el.Name,
		Attrs:         attrs,
		Children:      v.visitNodes(el.Children, true),
		Span:          el.Span,
		EndSourceSpan: el.EndSourceSpan,
	}
}

func (v *templateParseVisitor) visitElement(el *ml_parser.Element) TemplateAst {
	preparsed := PreparseElement(el)
	switch preparsed.Type {
	case PreparsedElementTypeScript, PreparsedElementTypeStyle:
		// Style and script elements are not rendered.
		return nil
	case PreparsedElementTypeStylesheet:
		if css.IsStyleUrlResolvable(preparsed.HrefAttr) {
			return nil
		}
	}

	var (
		matchableAttrs  [][2]string
		props           []*ParsedProperty
		refs            []*elementOrDirectiveRef
		elementVars     []*VariableAst
		events          []*ParsedEvent
		templateProps   []*ParsedProperty
		templateAttrs   [][2]string
		templateVars    []*VariableAst
		templateKey     string
		hasInlineTpl    bool
		attrs           []*AttrAst
		isTemplateElem  = ml_parser.IsNgTemplate(el.Name)
		elementSpan     = el.StartSourceSpan
		templateRefsOut []*ReferenceAst
	)
	if elementSpan == nil {
		elementSpan = el.Span
	}

	for _, attr := range el.Attrs {
		if strings.HasPrefix(attr.Name, templateAttrPrefix) {
			if hasInlineTpl {
				v.reportError("Can't have multiple template bindings on one element. Use only one attribute prefixed by *", attr.Span)
				continue
			}
			hasInlineTpl = true
			templateKey = attr.Name[len(templateAttrPrefix):]
			var parsedVars []*ParsedVariable
			v.bindingParser.ParseInlineTemplateBinding(templateKey, attr.Value, attr.Span, valueOffset(attr), &templateAttrs, &templateProps, &parsedVars)
			for _, pv := range parsedVars {
				templateVars = append(templateVars, &VariableAst{Name: pv.Name, Value: pv.Value, Span: pv.SourceSpan})
			}
			continue
		}
		if !v.parseAttr(isTemplateElem, attr, &matchableAttrs, &props, &events, &refs, &elementVars) {
			attrs = append(attrs, &AttrAst{Name: attr.Name, Value: attr.Value, Span: attr.Span})
			matchableAttrs = append(matchableAttrs, [2]string{attr.Name, attr.Value})
		}
	}

	elementSelector := css.CreateElementCssSelector(el.Name, matchableAttrs)
	directiveMetas, hasComponent := v.parseDirectives(elementSelector)
	var references []*ReferenceAst
	boundDirectivePropNames := map[string]bool{}
	directiveAsts := v.createDirectiveAsts(isTemplateElem, el.Name, directiveMetas, props, refs, elementSpan, &references, boundDirectivePropNames)
	elementProps := v.createElementPropertyAsts(el.Name, props, boundDirectivePropNames)

	var children []TemplateAst
	if preparsed.NonBindable {
		children = v.visitNodes(el.Children, true)
	} else {
		children = v.visitNodes(el.Children, false)
	}

	var parsed TemplateAst
	switch {
	case preparsed.Type == PreparsedElementTypeNgContent:
		if len(children) > 0 {
			v.reportError("<ng-content> element cannot have content.", elementSpan)
		}
		parsed = &NgContentAst{Index: v.ngContentCount, Span: elementSpan}
		v.ngContentCount++
	case isTemplateElem:
		v.assertAllEventsPublishedByDirectives(events)
		v.assertNoComponentsOnTemplate(directiveAsts, elementSpan)
		parsed = &EmbeddedTemplateAst{
			Attrs:      attrs,
			References: references,
			Variables:  elementVars,
			Directives: directiveAsts,
			Children:   children,
			Span:       elementSpan,
		}
	default:
		v.assertElementExists(hasComponent, el)
		v.assertOnlyOneComponent(directiveAsts, elementSpan)
		parsed = &ElementAst{
			Name:          el.Name,
			Attrs:         attrs,
			Inputs:        elementProps,
			Outputs:       toEventAsts(events),
			References:    references,
			Directives:    directiveAsts,
			Children:      children,
			Span:          elementSpan,
			EndSourceSpan: el.EndSourceSpan,
		}
	}

	if !hasInlineTpl {
		return parsed
	}

	templateSelector := css.CreateElementCssSelector("ng-template", templateAttrs)
	templateMetas, _ := v.parseDirectives(templateSelector)
	templateBound := map[string]bool{}
	templateDirectiveAsts := v.createDirectiveAsts(true, "ng-template", templateMetas, templateProps, nil, elementSpan, &templateRefsOut, templateBound)
	if len(templateDirectiveAsts) == 0 {
		v.reportError(fmt.Sprintf("Can't find a structural directive matching \"*%s\"", templateKey), elementSpan)
	} else {
		v.createElementPropertyAsts("ng-template", templateProps, templateBound)
		v.assertNoComponentsOnTemplate(templateDirectiveAsts, elementSpan)
	}
	return &EmbeddedTemplateAst{
		Variables:  templateVars,
		Directives: templateDirectiveAsts,
		Children:   []TemplateAst{parsed},
		Span:       elementSpan,
	}
}

func valueOffset(attr *ml_parser.Attribute) int {
	if attr.ValueSpan != nil {
		return attr.ValueSpan.Start.Offset
	}
	return attr.Span.Start.Offset
}

func toEventAsts(events []*ParsedEvent) []*BoundEventAst {
	out := make([]*BoundEventAst, 0, len(events))
	for _, e := range events {
		out = append(out, &BoundEventAst{Name: e.Name, Handler: e.Handler, Span: e.SourceSpan})
	}
	return out
}

// parseAttr parses binding syntax in an attribute name. It returns false for plain attributes.
func (v *templateParseVisitor) parseAttr(
	isTemplateElement bool,
	attr *ml_parser.Attribute,
	targetMatchableAttrs *[][2]string,
	targetProps *[]*ParsedProperty,
	targetEvents *[]*ParsedEvent,
	targetRefs *[]*elementOrDirectiveRef,
	targetVars *[]*VariableAst,
) bool {
	name := normalizeAttributeName(attr.Name)
	value := attr.Value
	srcSpan := attr.Span
	absoluteOffset := valueOffset(attr)
	valueSpan := attr.ValueSpan
	handlerSpan := valueSpan
	if handlerSpan == nil {
		handlerSpan = srcSpan
	}

	bindParts := bindNameRegexp.FindStringSubmatch(name)
	hasBinding := false
	if bindParts != nil {
		hasBinding = true
		switch {
		case bindParts[kwBindIdx] != "":
			v.bindingParser.ParsePropertyBinding(bindParts[identAt], value, false, srcSpan, absoluteOffset, valueSpan, targetMatchableAttrs, targetProps)
		case bindParts[kwLetIdx] != "":
			if isTemplateElement {
				v.parseVariable(bindParts[identAt], value, srcSpan, targetVars)
			} else {
				v.reportError(`"let-" is only supported on ng-template elements.`, srcSpan)
			}
		case bindParts[kwRefIdx] != "":
			v.parseReference(bindParts[identAt], value, srcSpan, targetRefs)
		case bindParts[kwOnIdx] != "":
			v.bindingParser.ParseEvent(bindParts[identAt], value, srcSpan, handlerSpan, targetMatchableAttrs, targetEvents)
		case bindParts[kwBindonIdx] != "":
			v.bindingParser.ParsePropertyBinding(bindParts[identAt], value, true, srcSpan, absoluteOffset, valueSpan, targetMatchableAttrs, targetProps)
			v.parseAssignmentEvent(bindParts[identAt], value, srcSpan, handlerSpan, targetMatchableAttrs, targetEvents)
		case bindParts[kwAtIdx] != "":
			v.reportError(fmt.Sprintf("Animation bindings are not supported: \"%s\"", attr.Name), srcSpan)
		case bindParts[identBanana] != "":
			v.bindingParser.ParsePropertyBinding(bindParts[identBanana], value, true, srcSpan, absoluteOffset, valueSpan, targetMatchableAttrs, targetProps)
			v.parseAssignmentEvent(bindParts[identBanana], value, srcSpan, handlerSpan, targetMatchableAttrs, targetEvents)
		case bindParts[identProp] != "":
			v.bindingParser.ParsePropertyBinding(bindParts[identProp], value, false, srcSpan, absoluteOffset, valueSpan, targetMatchableAttrs, targetProps)
		case bindParts[identEvent] != "":
			v.bindingParser.ParseEvent(bindParts[identEvent], value, srcSpan, handlerSpan, targetMatchableAttrs, targetEvents)
		}
	} else {
		hasBinding = v.bindingParser.ParsePropertyInterpolation(name, value, srcSpan, valueSpan, targetMatchableAttrs, targetProps)
	}

	if !hasBinding {
		v.bindingParser.ParseLiteralAttr(name, value, srcSpan, absoluteOffset, valueSpan, targetProps)
	}
	return hasBinding
}

func normalizeAttributeName(attrName string) string {
	if strings.HasPrefix(strings.ToLower(attrName), "data-") {
		return attrName[5:]
	}
	return attrName
}

func (v *templateParseVisitor) parseVariable(identifier, value string, sourceSpan *util.ParseSourceSpan, targetVars *[]*VariableAst) {
	if strings.Contains(identifier, "-") {
		v.reportError(`"-" is not allowed in variable names`, sourceSpan)
	} else if identifier == "" {
		v.reportError("Variable does not have a name", sourceSpan)
	}
	if value == "" {
		value = implicitVariable
	}
	*targetVars = append(*targetVars, &VariableAst{Name: identifier, Value: value, Span: sourceSpan})
}

func (v *templateParseVisitor) parseReference(identifier, value string, sourceSpan *util.ParseSourceSpan, targetRefs *[]*elementOrDirectiveRef) {
	if strings.Contains(identifier, "-") {
		v.reportError(`"-" is not allowed in reference names`, sourceSpan)
	} else if identifier == "" {
		v.reportError("Reference does not have a name", sourceSpan)
	}
	*targetRefs = append(*targetRefs, &elementOrDirectiveRef{name: identifier, value: value, sourceSpan: sourceSpan})
}

func (v *templateParseVisitor) parseAssignmentEvent(
	name, expression string,
	sourceSpan, handlerSpan *util.ParseSourceSpan,
	targetMatchableAttrs *[][2]string,
	targetEvents *[]*ParsedEvent,
) {
	v.bindingParser.ParseEvent(name+"Change", expression+"=$event", sourceSpan, handlerSpan, targetMatchableAttrs, targetEvents)
}

// parseDirectives matches the element selector. The component comes first, the other
// directives follow in declaration order.
func (v *templateParseVisitor) parseDirectives(elementSelector *css.CssSelector) ([]*metadata.CompileDirectiveMetadata, bool) {
	var matched []*metadata.CompileDirectiveMetadata
	seen := map[*metadata.CompileDirectiveMetadata]bool{}
	isComponent := false
	v.selectorMatcher.Match(elementSelector, func(_ *css.CssSelector, directive *metadata.CompileDirectiveMetadata) {
		if seen[directive] {
			return
		}
		seen[directive] = true
		matched = append(matched, directive)
		isComponent = isComponent || directive.IsComponent
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].IsComponent != matched[j].IsComponent {
			return matched[i].IsComponent
		}
		return v.directivesIndex[matched[i]] < v.directivesIndex[matched[j]]
	})
	return matched, isComponent
}

func (v *templateParseVisitor) createDirectiveAsts(
	isTemplateElement bool,
	elementName string,
	directives []*metadata.CompileDirectiveMetadata,
	props []*ParsedProperty,
	elementOrDirectiveRefs []*elementOrDirectiveRef,
	elementSourceSpan *util.ParseSourceSpan,
	targetReferences *[]*ReferenceAst,
	targetBoundDirectivePropNames map[string]bool,
) []*DirectiveAst {
	matchedReferences := map[string]bool{}
	addReference := func(ref *elementOrDirectiveRef, directive *metadata.CompileDirectiveMetadata) {
		for _, existing := range *targetReferences {
			if existing.Name == ref.name {
				v.reportError(fmt.Sprintf("Reference \"#%s\" is defined more than once", ref.name), ref.sourceSpan)
				return
			}
		}
		*targetReferences = append(*targetReferences, &ReferenceAst{Name: ref.name, Directive: directive, Span: ref.sourceSpan})
	}

	var component *metadata.CompileDirectiveMetadata
	directiveAsts := make([]*DirectiveAst, 0, len(directives))
	for _, directive := range directives {
		if directive.IsComponent {
			component = directive
		}
		inputs := v.createDirectivePropertyAsts(directive, props, targetBoundDirectivePropNames)
		for _, ref := range elementOrDirectiveRefs {
			if (ref.value == "" && directive.IsComponent) || ref.isReferenceToDirective(directive) {
				addReference(ref, directive)
				matchedReferences[ref.name] = true
			}
		}
		directiveAsts = append(directiveAsts, &DirectiveAst{Directive: directive, Inputs: inputs, Span: elementSourceSpan})
	}

	for _, ref := range elementOrDirectiveRefs {
		if ref.value != "" {
			if !matchedReferences[ref.name] {
				v.reportError(fmt.Sprintf("There is no directive with \"exportAs\" set to \"%s\"", ref.value), ref.sourceSpan)
			}
		} else if component == nil {
			addReference(ref, nil)
		}
	}
	return directiveAsts
}

func (v *templateParseVisitor) createDirectivePropertyAsts(
	directive *metadata.CompileDirectiveMetadata,
	boundProps []*ParsedProperty,
	targetBoundDirectivePropNames map[string]bool,
) []*BoundDirectivePropertyAst {
	boundPropsByName := map[string]*ParsedProperty{}
	for _, p := range boundProps {
		// A real binding wins over a literal attribute of the same name.
		if prev, ok := boundPropsByName[p.Name]; !ok || prev.IsLiteral() {
			boundPropsByName[p.Name] = p
		}
	}
	var out []*BoundDirectivePropertyAst
	for _, bindingName := range directive.InputOrder {
		boundProp, ok := boundPropsByName[bindingName]
		if !ok {
			continue
		}
		targetBoundDirectivePropNames[boundProp.Name] = true
		if isEmptyExpression(boundProp.Expression) {
			continue
		}
		out = append(out, &BoundDirectivePropertyAst{
			DirectiveName: directive.Inputs[bindingName],
			TemplateName:  bindingName,
			Value:         boundProp.Expression,
			Span:          boundProp.SourceSpan,
		})
	}
	return out
}

func (v *templateParseVisitor) createElementPropertyAsts(
	elementName string,
	props []*ParsedProperty,
	boundDirectivePropNames map[string]bool,
) []*BoundElementPropertyAst {
	var out []*BoundElementPropertyAst
	for _, prop := range props {
		if prop.IsLiteral() || boundDirectivePropNames[prop.Name] {
			continue
		}
		out = append(out, v.bindingParser.CreateBoundElementProperty(prop))
	}
	return v.checkPropertiesInSchema(elementName, out)
}

func (v *templateParseVisitor) checkPropertiesInSchema(elementName string, boundProps []*BoundElementPropertyAst) []*BoundElementPropertyAst {
	out := boundProps[:0]
	for _, boundProp := range boundProps {
		if boundProp.Type == PropertyBindingProperty && !v.schemaRegistry.HasProperty(elementName, boundProp.Name, v.schemas) {
			msg := fmt.Sprintf("Can't bind to '%s' since it isn't a known property of '%s'.", boundProp.Name, elementName)
			if strings.HasPrefix(elementName, "ng-") {
				msg += fmt.Sprintf("\n1. If '%s' is an Angular directive, then add 'CommonModule' to the '@NgModule.imports' of this component.", boundProp.Name) +
					"\n2. To allow any property add 'NO_ERRORS_SCHEMA' to the '@NgModule.schemas' of this component."
			} else if strings.Contains(elementName, "-") {
				msg += fmt.Sprintf("\n1. If '%s' is an Angular component and it has '%s' input, then verify that it is part of this module.", elementName, boundProp.Name) +
					fmt.Sprintf("\n2. If '%s' is a Web Component then add 'CUSTOM_ELEMENTS_SCHEMA' to the '@NgModule.schemas' of this component to suppress this message.", elementName) +
					"\n3. To allow any property add 'NO_ERRORS_SCHEMA' to the '@NgModule.schemas' of this component."
			}
			v.reportError(msg, boundProp.Span)
		}
		if !isEmptyExpression(boundProp.Value) {
			out = append(out, boundProp)
		}
	}
	return out
}

func (v *templateParseVisitor) assertElementExists(hasComponent bool, el *ml_parser.Element) {
	if !v.strict || hasComponent || v.schemaRegistry.HasElement(el.Name, v.schemas) {
		return
	}
	msg := fmt.Sprintf("'%s' is not a known element:\n", el.Name) +
		fmt.Sprintf("1. If '%s' is an Angular component, then verify that it is part of this module.\n", el.Name)
	if strings.Contains(el.Name, "-") {
		msg += fmt.Sprintf("2. If '%s' is a Web Component then add 'CUSTOM_ELEMENTS_SCHEMA' to the '@NgModule.schemas' of this component to suppress this message.", el.Name)
	} else {
		msg += "2. To allow any element add 'NO_ERRORS_SCHEMA' to the '@NgModule.schemas' of this component."
	}
	span := el.StartSourceSpan
	if span == nil {
		span = el.Span
	}
	v.reportError(msg, span)
}

func (v *templateParseVisitor) assertOnlyOneComponent(directives []*DirectiveAst, sourceSpan *util.ParseSourceSpan) {
	var names []string
	for _, d := range directives {
		if d.Directive.IsComponent {
			names = append(names, d.Directive.Name())
		}
	}
	if len(names) > 1 {
		v.reportError("More than one component matched on this element.\n"+
			"Make sure that only one component's selector can match a given element.\n"+
			"Conflicting components: "+strings.Join(names, ","), sourceSpan)
	}
}

func (v *templateParseVisitor) assertNoComponentsOnTemplate(directives []*DirectiveAst, sourceSpan *util.ParseSourceSpan) {
	var names []string
	for _, d := range directives {
		if d.Directive.IsComponent {
			names = append(names, d.Directive.Name())
		}
	}
	if len(names) > 0 {
		v.reportError("Components on an embedded template: "+strings.Join(names, ","), sourceSpan)
	}
}

func (v *templateParseVisitor) assertAllEventsPublishedByDirectives(events []*ParsedEvent) {
	for _, event := range events {
		v.reportError(fmt.Sprintf("Event binding %s not emitted by any directive on an embedded template. "+
			"Make sure that the event name is spelled correctly and all directives are listed in the \"@NgModule.declarations\".",
			event.Name), event.SourceSpan)
	}
}

func isEmptyExpression(ast *expression_parser.ASTWithSource) bool {
	if ast == nil {
		return true
	}
	_, empty := ast.AST.(*expression_parser.EmptyExpr)
	return empty
}
