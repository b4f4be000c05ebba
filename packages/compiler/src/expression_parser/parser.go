package expression_parser

import (
	"fmt"
	"strings"

	"ngjit-go/packages/compiler/src/util"
)

// InterpolationPiece represents a piece of interpolation
type InterpolationPiece struct {
	Text  string
	Start int
	End   int
}

// SplitInterpolation represents a split interpolation result
type SplitInterpolation struct {
	Strings     []InterpolationPiece
	Expressions []InterpolationPiece
	Offsets     []int
}

// TemplateBindingParseResult represents the result of parsing template bindings
type TemplateBindingParseResult struct {
	TemplateBindings []TemplateBinding
	Errors           []*util.ParseError
}

// ParseFlags represents the possible parse modes to be used as a bitmask
type ParseFlags int

const (
	ParseFlagsNone ParseFlags = 0
	// ParseFlagsAction indicates whether an output binding is being parsed
	ParseFlagsAction ParseFlags = 1 << 0
)

func getLocation(span *util.ParseSourceSpan) string {
	if span != nil && span.Start != nil {
		if loc := span.Start.String(); loc != "" {
			return loc
		}
	}
	return "(unknown)"
}

// Parser parses binding expressions, actions, interpolations and microsyntax.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// ParseAction parses an event handler expression. Chains and assignments are allowed, pipes
// are not.
func (p *Parser) ParseAction(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) (*ASTWithSource, []*util.ParseError) {
	var errors []*util.ParseError
	p.checkNoInterpolation(&errors, input, parseSourceSpan)
	ast := p.newParseAST(input, parseSourceSpan, absoluteOffset, ParseFlagsAction, &errors, 0).parseChain()
	return p.wrap(ast, input, parseSourceSpan, absoluteOffset), errors
}

// ParseBinding parses a property binding expression.
func (p *Parser) ParseBinding(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) (*ASTWithSource, []*util.ParseError) {
	var errors []*util.ParseError
	p.checkNoInterpolation(&errors, input, parseSourceSpan)
	ast := p.newParseAST(input, parseSourceSpan, absoluteOffset, ParseFlagsNone, &errors, 0).parseChain()
	return p.wrap(ast, input, parseSourceSpan, absoluteOffset), errors
}

// ParseTemplateBindings parses the microsyntax of a structural directive attribute, e.g.
// templateKey "ngFor" with value "let item of items; index as i".
func (p *Parser) ParseTemplateBindings(templateKey, templateValue string, parseSourceSpan *util.ParseSourceSpan, absoluteKeyOffset, absoluteValueOffset int) *TemplateBindingParseResult {
	var errors []*util.ParseError
	parser := p.newParseAST(templateValue, parseSourceSpan, absoluteValueOffset, ParseFlagsNone, &errors, 0)
	return parser.parseTemplateBindings(&TemplateBindingIdentifier{
		Source: templateKey,
		Span:   &AbsoluteSourceSpan{Start: absoluteKeyOffset, End: absoluteKeyOffset + len(templateKey)},
	})
}

// ParseInterpolation parses text containing {{ }} markers. It returns nil if the input has no
// interpolation.
func (p *Parser) ParseInterpolation(input string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) (*ASTWithSource, []*util.ParseError) {
	var errors []*util.ParseError
	split := p.SplitInterpolation(input, parseSourceSpan, &errors)
	if len(split.Expressions) == 0 {
		return nil, errors
	}

	exprs := make([]AST, 0, len(split.Expressions))
	for i, piece := range split.Expressions {
		ast := p.newParseAST(piece.Text, parseSourceSpan, absoluteOffset, ParseFlagsNone, &errors, split.Offsets[i]).parseChain()
		exprs = append(exprs, ast)
	}
	strs := make([]string, len(split.Strings))
	for i, s := range split.Strings {
		strs[i] = s.Text
	}
	span := NewParseSpan(0, len(input))
	interpolation := &Interpolation{
		astBase:     base(span, span.ToAbsolute(absoluteOffset)),
		Strings:     strs,
		Expressions: exprs,
	}
	return p.wrap(interpolation, input, parseSourceSpan, absoluteOffset), errors
}

// WrapLiteralPrimitive wraps a static attribute value so it can be bound like an expression.
func (p *Parser) WrapLiteralPrimitive(value string, parseSourceSpan *util.ParseSourceSpan, absoluteOffset int) *ASTWithSource {
	span := NewParseSpan(0, len(value))
	lit := &LiteralPrimitive{astBase: base(span, span.ToAbsolute(absoluteOffset)), Value: value}
	return p.wrap(lit, value, parseSourceSpan, absoluteOffset)
}

func (p *Parser) wrap(ast AST, input string, span *util.ParseSourceSpan, absoluteOffset int) *ASTWithSource {
	ps := NewParseSpan(0, len(input))
	return &ASTWithSource{
		astBase:        base(ps, ps.ToAbsolute(absoluteOffset)),
		AST:            ast,
		Source:         input,
		Location:       getLocation(span),
		AbsoluteOffset: absoluteOffset,
	}
}

func (p *Parser) newParseAST(input string, span *util.ParseSourceSpan, absoluteOffset int, flags ParseFlags, errors *[]*util.ParseError, offset int) *parseAST {
	return &parseAST{
		input:           input,
		parseSourceSpan: span,
		absoluteOffset:  absoluteOffset,
		tokens:          p.lexer.Tokenize(input),
		parseFlags:      flags,
		errors:          errors,
		offset:          offset,
	}
}

func (p *Parser) checkNoInterpolation(errors *[]*util.ParseError, input string, parseSourceSpan *util.ParseSourceSpan) {
	start := strings.Index(input, "{{")
	if start < 0 {
		return
	}
	if strings.Contains(input[start+2:], "}}") {
		*errors = append(*errors, getParseError(
			"Got interpolation ({{}}) where expression was expected",
			input,
			fmt.Sprintf("at column %d in", start),
			parseSourceSpan,
		))
	}
}

// getInterpolationEndIndex finds the closing marker, ignoring quoted text.
func getInterpolationEndIndex(input, expressionEnd string, start int) int {
	var quote byte
	for i := start; i < len(input); i++ {
		c := input[i]
		switch {
		case quote != 0:
			if c == quote && input[i-1] != '\\' {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case strings.HasPrefix(input[i:], expressionEnd):
			return i
		}
	}
	return -1
}

// SplitInterpolation splits input into literal strings and expression texts. An opening
// marker without a closing one is kept as literal text.
func (p *Parser) SplitInterpolation(input string, parseSourceSpan *util.ParseSourceSpan, errors *[]*util.ParseError) *SplitInterpolation {
	const interpStart, interpEnd = "{{", "}}"
	out := &SplitInterpolation{}
	i := 0
	for {
		idx := strings.Index(input[i:], interpStart)
		if idx < 0 {
			break
		}
		fullStart := i + idx
		exprStart := fullStart + len(interpStart)
		exprEnd := getInterpolationEndIndex(input, interpEnd, exprStart)
		if exprEnd < 0 {
			break
		}
		out.Strings = append(out.Strings, InterpolationPiece{Text: input[i:fullStart], Start: i, End: fullStart})

		text := input[exprStart:exprEnd]
		if strings.TrimSpace(text) == "" {
			*errors = append(*errors, getParseError(
				"Blank expressions are not allowed in interpolated strings",
				input,
				fmt.Sprintf("at column %d in", fullStart),
				parseSourceSpan,
			))
		}
		fullEnd := exprEnd + len(interpEnd)
		out.Expressions = append(out.Expressions, InterpolationPiece{Text: text, Start: fullStart, End: fullEnd})
		out.Offsets = append(out.Offsets, exprStart)
		i = fullEnd
	}
	out.Strings = append(out.Strings, InterpolationPiece{Text: input[i:], Start: i, End: len(input)})
	return out
}

type parseAST struct {
	input           string
	parseSourceSpan *util.ParseSourceSpan
	absoluteOffset  int
	tokens          []*Token
	parseFlags      ParseFlags
	errors          *[]*util.ParseError
	offset          int

	index             int
	rparensExpected   int
	rbracketsExpected int
	rbracesExpected   int
}

func (p *parseAST) peek(offset int) *Token {
	i := p.index + offset
	if i >= 0 && i < len(p.tokens) {
		return p.tokens[i]
	}
	return EOF
}

func (p *parseAST) next() *Token {
	return p.peek(0)
}

func (p *parseAST) atEOF() bool {
	return p.index >= len(p.tokens)
}

// inputIndex returns the index of the next token to be processed
func (p *parseAST) inputIndex() int {
	if p.atEOF() {
		return p.currentEndIndex()
	}
	return p.next().Index + p.offset
}

// currentEndIndex returns the end index of the last processed token
func (p *parseAST) currentEndIndex() int {
	if p.index > 0 {
		return p.peek(-1).End + p.offset
	}
	if len(p.tokens) == 0 {
		return len(p.input) + p.offset
	}
	return p.next().Index + p.offset
}

func (p *parseAST) currentAbsoluteOffset() int {
	return p.absoluteOffset + p.inputIndex()
}

func (p *parseAST) span(start int) *ParseSpan {
	end := p.currentEndIndex()
	if start > end {
		start, end = end, start
	}
	return NewParseSpan(start, end)
}

func (p *parseAST) base(start int) astBase {
	span := p.span(start)
	return base(span, span.ToAbsolute(p.absoluteOffset))
}

func (p *parseAST) advance() {
	p.index++
}

func (p *parseAST) consumeOptionalCharacter(code rune) bool {
	if p.next().IsCharacter(code) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) expectCharacter(code rune) {
	if !p.consumeOptionalCharacter(code) {
		p.error(fmt.Sprintf("Missing expected %c", code))
	}
}

func (p *parseAST) consumeOptionalOperator(op string) bool {
	if p.next().IsOperator(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) prettyPrintToken(tok *Token) string {
	if tok == EOF {
		return "end of input"
	}
	return "token " + tok.String()
}

func (p *parseAST) expectIdentifierOrKeyword() string {
	n := p.next()
	if !n.IsIdentifier() && !n.IsKeyword() {
		p.error(fmt.Sprintf("Unexpected %s, expected identifier or keyword", p.prettyPrintToken(n)))
		return ""
	}
	p.advance()
	return n.String()
}

func (p *parseAST) expectIdentifierOrKeywordOrString() string {
	n := p.next()
	if !n.IsIdentifier() && !n.IsKeyword() && !n.IsString() {
		p.error(fmt.Sprintf("Unexpected %s, expected identifier, keyword, or string", p.prettyPrintToken(n)))
		return ""
	}
	p.advance()
	return n.String()
}

func (p *parseAST) parseChain() AST {
	var exprs []AST
	start := p.inputIndex()
	for p.index < len(p.tokens) {
		exprs = append(exprs, p.parsePipe())

		if p.consumeOptionalCharacter(';') {
			if p.parseFlags&ParseFlagsAction == 0 {
				p.error("Binding expression cannot contain chained expression")
			}
			for p.consumeOptionalCharacter(';') {
			}
		} else if p.index < len(p.tokens) {
			errorIndex := p.index
			p.error(fmt.Sprintf("Unexpected token '%s'", p.next()))
			if p.index == errorIndex {
				break
			}
		}
	}
	switch len(exprs) {
	case 0:
		span := NewParseSpan(p.offset, p.offset+len(p.input))
		return &EmptyExpr{base(span, span.ToAbsolute(p.absoluteOffset))}
	case 1:
		return exprs[0]
	}
	return &Chain{astBase: p.base(start), Expressions: exprs}
}

func (p *parseAST) parsePipe() AST {
	start := p.inputIndex()
	result := p.parseExpression()
	if p.consumeOptionalOperator("|") {
		if p.parseFlags&ParseFlagsAction != 0 {
			p.error("Cannot have a pipe in an action expression")
		}
		for {
			name := p.expectIdentifierOrKeyword()
			var args []AST
			for p.consumeOptionalCharacter(':') {
				args = append(args, p.parseExpression())
			}
			result = &BindingPipe{astBase: p.base(start), Exp: result, Name: name, Args: args}
			if !p.consumeOptionalOperator("|") {
				break
			}
		}
	}
	return result
}

func (p *parseAST) parseExpression() AST {
	return p.parseConditional()
}

func (p *parseAST) parseConditional() AST {
	start := p.inputIndex()
	result := p.parseLogicalOr()

	if p.consumeOptionalOperator("?") {
		yes := p.parsePipe()
		var no AST
		if !p.consumeOptionalCharacter(':') {
			end := p.inputIndex()
			expression := p.input[start-p.offset : end-p.offset]
			p.error(fmt.Sprintf("Conditional expression %s requires all 3 expressions", expression))
			no = &EmptyExpr{p.base(start)}
		} else {
			no = p.parsePipe()
		}
		return &Conditional{astBase: p.base(start), Condition: result, TrueExp: yes, FalseExp: no}
	}
	return result
}

// parseBinaryLevel parses a left-associative chain of the given operators.
func (p *parseAST) parseBinaryLevel(next func() AST, operators ...string) AST {
	start := p.inputIndex()
	result := next()
	for p.next().Type == TokenTypeOperator {
		operator := p.next().StrValue
		matched := false
		for _, op := range operators {
			if op == operator {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		p.advance()
		right := next()
		result = &Binary{astBase: p.base(start), Operation: operator, Left: result, Right: right}
	}
	return result
}

func (p *parseAST) parseLogicalOr() AST {
	return p.parseBinaryLevel(p.parseLogicalAnd, "||")
}

func (p *parseAST) parseLogicalAnd() AST {
	return p.parseBinaryLevel(p.parseNullishCoalescing, "&&")
}

func (p *parseAST) parseNullishCoalescing() AST {
	return p.parseBinaryLevel(p.parseEquality, "??")
}

func (p *parseAST) parseEquality() AST {
	return p.parseBinaryLevel(p.parseRelational, "==", "===", "!=", "!==")
}

func (p *parseAST) parseRelational() AST {
	return p.parseBinaryLevel(p.parseAdditive, "<", ">", "<=", ">=")
}

func (p *parseAST) parseAdditive() AST {
	return p.parseBinaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *parseAST) parseMultiplicative() AST {
	return p.parseBinaryLevel(p.parsePrefix, "*", "%", "/")
}

func (p *parseAST) parsePrefix() AST {
	if p.next().Type == TokenTypeOperator {
		start := p.inputIndex()
		switch operator := p.next().StrValue; operator {
		case "+", "-":
			p.advance()
			result := p.parsePrefix()
			return &Unary{astBase: p.base(start), Operator: operator, Expr: result}
		case "!":
			p.advance()
			result := p.parsePrefix()
			return &PrefixNot{astBase: p.base(start), Expression: result}
		}
	}
	return p.parseCallChain()
}

func (p *parseAST) parseCallChain() AST {
	start := p.inputIndex()
	result := p.parsePrimary()
	for {
		switch {
		case p.consumeOptionalCharacter('.'):
			result = p.parseAccessMember(result, start, false)
		case p.consumeOptionalOperator("?."):
			switch {
			case p.consumeOptionalCharacter('('):
				result = p.parseCall(result, start, true)
			case p.consumeOptionalCharacter('['):
				result = p.parseKeyedReadOrWrite(result, start, true)
			default:
				result = p.parseAccessMember(result, start, true)
			}
		case p.consumeOptionalCharacter('['):
			result = p.parseKeyedReadOrWrite(result, start, false)
		case p.consumeOptionalCharacter('('):
			result = p.parseCall(result, start, false)
		default:
			return result
		}
	}
}

func (p *parseAST) parsePrimary() AST {
	start := p.inputIndex()
	n := p.next()
	switch {
	case p.consumeOptionalCharacter('('):
		p.rparensExpected++
		result := p.parsePipe()
		p.rparensExpected--
		p.expectCharacter(')')
		return result
	case n.IsKeywordNamed("null"), n.IsKeywordNamed("undefined"):
		p.advance()
		return &LiteralPrimitive{astBase: p.base(start), Value: nil}
	case n.IsKeywordNamed("true"):
		p.advance()
		return &LiteralPrimitive{astBase: p.base(start), Value: true}
	case n.IsKeywordNamed("false"):
		p.advance()
		return &LiteralPrimitive{astBase: p.base(start), Value: false}
	case n.IsKeywordNamed("this"):
		p.advance()
		return &ThisReceiver{ImplicitReceiver{p.base(start)}}
	case p.consumeOptionalCharacter('['):
		p.rbracketsExpected++
		elements := p.parseExpressionList(']')
		p.rbracketsExpected--
		p.expectCharacter(']')
		return &LiteralArray{astBase: p.base(start), Expressions: elements}
	case n.IsCharacter('{'):
		return p.parseLiteralMap()
	case n.IsIdentifier():
		receiver := &ImplicitReceiver{p.base(start)}
		return p.parseAccessMember(receiver, start, false)
	case n.IsNumber():
		p.advance()
		return &LiteralPrimitive{astBase: p.base(start), Value: n.NumValue}
	case n.IsString():
		p.advance()
		return &LiteralPrimitive{astBase: p.base(start), Value: n.StrValue}
	case n.IsError():
		p.error(n.StrValue)
		return &EmptyExpr{p.base(start)}
	case p.index >= len(p.tokens):
		p.error("Unexpected end of expression: " + p.input)
		return &EmptyExpr{p.base(start)}
	}
	p.error(fmt.Sprintf("Unexpected token %s", n))
	return &EmptyExpr{p.base(start)}
}

func (p *parseAST) parseExpressionList(terminator rune) []AST {
	var result []AST
	if !p.next().IsCharacter(terminator) {
		for {
			result = append(result, p.parsePipe())
			if !p.consumeOptionalCharacter(',') {
				break
			}
		}
	}
	return result
}

func (p *parseAST) parseLiteralMap() AST {
	start := p.inputIndex()
	var keys []LiteralMapKey
	var values []AST
	p.expectCharacter('{')
	if !p.consumeOptionalCharacter('}') {
		p.rbracesExpected++
		for {
			quoted := p.next().IsString()
			key := p.expectIdentifierOrKeywordOrString()
			keys = append(keys, LiteralMapKey{Key: key, Quoted: quoted})
			if quoted || p.next().IsCharacter(':') {
				p.expectCharacter(':')
				values = append(values, p.parsePipe())
			} else {
				// shorthand {a} reads a from the implicit receiver
				span := p.span(start)
				values = append(values, &PropertyRead{
					astBase:  base(span, span.ToAbsolute(p.absoluteOffset)),
					Receiver: &ImplicitReceiver{base(span, span.ToAbsolute(p.absoluteOffset))},
					Name:     key,
				})
			}
			if !p.consumeOptionalCharacter(',') || p.next().IsCharacter('}') {
				break
			}
		}
		p.rbracesExpected--
		p.expectCharacter('}')
	}
	return &LiteralMap{astBase: p.base(start), Keys: keys, Values: values}
}

func (p *parseAST) parseAccessMember(receiver AST, start int, isSafe bool) AST {
	id := p.expectIdentifierOrKeyword()

	if isSafe {
		if p.next().IsOperator("=") {
			p.error("The '?.' operator cannot be used in the assignment")
			return &EmptyExpr{p.base(start)}
		}
		return &SafePropertyRead{astBase: p.base(start), Receiver: receiver, Name: id}
	}
	if p.consumeOptionalOperator("=") {
		if p.parseFlags&ParseFlagsAction == 0 {
			p.error("Bindings cannot contain assignments")
			return &EmptyExpr{p.base(start)}
		}
		value := p.parseConditional()
		return &PropertyWrite{astBase: p.base(start), Receiver: receiver, Name: id, Value: value}
	}
	return &PropertyRead{astBase: p.base(start), Receiver: receiver, Name: id}
}

func (p *parseAST) parseCall(receiver AST, start int, isSafe bool) AST {
	p.rparensExpected++
	args := p.parseExpressionList(')')
	p.rparensExpected--
	p.expectCharacter(')')
	if isSafe {
		return &SafeCall{astBase: p.base(start), Receiver: receiver, Args: args}
	}
	return &Call{astBase: p.base(start), Receiver: receiver, Args: args}
}

func (p *parseAST) parseKeyedReadOrWrite(receiver AST, start int, isSafe bool) AST {
	p.rbracketsExpected++
	key := p.parsePipe()
	p.rbracketsExpected--
	p.expectCharacter(']')
	if p.consumeOptionalOperator("=") {
		if isSafe {
			p.error("The '?.' operator cannot be used in the assignment")
			return &EmptyExpr{p.base(start)}
		}
		if p.parseFlags&ParseFlagsAction == 0 {
			p.error("Bindings cannot contain assignments")
			return &EmptyExpr{p.base(start)}
		}
		value := p.parseConditional()
		return &KeyedWrite{astBase: p.base(start), Receiver: receiver, Key: key, Value: value}
	}
	if isSafe {
		return &SafeKeyedRead{astBase: p.base(start), Receiver: receiver, Key: key}
	}
	return &KeyedRead{astBase: p.base(start), Receiver: receiver, Key: key}
}

func (p *parseAST) expectTemplateBindingKey() *TemplateBindingIdentifier {
	var result strings.Builder
	start := p.currentAbsoluteOffset()
	for {
		result.WriteString(p.expectIdentifierOrKeywordOrString())
		if !p.consumeOptionalOperator("-") {
			break
		}
		result.WriteString("-")
	}
	key := result.String()
	return &TemplateBindingIdentifier{
		Source: key,
		Span:   &AbsoluteSourceSpan{Start: start, End: start + len(key)},
	}
}

// parseTemplateBindings reads `key expr`, `let x = y` and `expr as x` clauses. Keys after the
// first are prefixed with the template key: `of` under `ngFor` becomes `ngForOf`.
func (p *parseAST) parseTemplateBindings(templateKey *TemplateBindingIdentifier) *TemplateBindingParseResult {
	bindings := p.parseDirectiveKeywordBindings(templateKey)

	for p.index < len(p.tokens) {
		clauseStart := p.index
		if letBinding := p.parseLetBinding(); letBinding != nil {
			bindings = append(bindings, letBinding)
		} else {
			key := p.expectTemplateBindingKey()
			if binding := p.parseAsBinding(key); binding != nil {
				bindings = append(bindings, binding)
			} else {
				if key.Source != "" {
					key.Source = templateKey.Source + strings.ToUpper(key.Source[:1]) + key.Source[1:]
				}
				bindings = append(bindings, p.parseDirectiveKeywordBindings(key)...)
			}
		}
		p.consumeStatementTerminator()
		if p.index == clauseStart {
			p.advance()
		}
	}
	return &TemplateBindingParseResult{TemplateBindings: bindings, Errors: *p.errors}
}

func (p *parseAST) parseDirectiveKeywordBindings(key *TemplateBindingIdentifier) []TemplateBinding {
	p.consumeOptionalCharacter(':') // trackBy: trackByFunction
	value := p.getDirectiveBoundTarget()
	spanEnd := p.currentAbsoluteOffset()
	// `cond as x` binds x to the directive key itself.
	asBinding := p.parseAsBinding(key)
	if asBinding == nil {
		p.consumeStatementTerminator()
		spanEnd = p.currentAbsoluteOffset()
	}
	bindings := []TemplateBinding{&ExpressionBinding{
		sourceSpan: &AbsoluteSourceSpan{Start: key.Span.Start, End: spanEnd},
		Key:        key,
		Value:      value,
	}}
	if asBinding != nil {
		bindings = append(bindings, asBinding)
	}
	return bindings
}

func (p *parseAST) getDirectiveBoundTarget() *ASTWithSource {
	if p.next() == EOF || p.next().IsKeywordNamed("as") || p.next().IsKeywordNamed("let") {
		return nil
	}
	ast := p.parsePipe()
	span := ast.Span()
	return &ASTWithSource{
		astBase:        base(span, span.ToAbsolute(p.absoluteOffset)),
		AST:            ast,
		Source:         p.input[span.Start-p.offset : span.End-p.offset],
		Location:       getLocation(p.parseSourceSpan),
		AbsoluteOffset: p.absoluteOffset + span.Start,
	}
}

func (p *parseAST) parseAsBinding(value *TemplateBindingIdentifier) TemplateBinding {
	if !p.next().IsKeywordNamed("as") {
		return nil
	}
	p.advance()
	key := p.expectTemplateBindingKey()
	p.consumeStatementTerminator()
	return &VariableBinding{
		sourceSpan: &AbsoluteSourceSpan{Start: value.Span.Start, End: p.currentAbsoluteOffset()},
		Key:        key,
		Value:      value,
	}
}

func (p *parseAST) parseLetBinding() TemplateBinding {
	if !p.next().IsKeywordNamed("let") {
		return nil
	}
	spanStart := p.currentAbsoluteOffset()
	p.advance()
	key := p.expectTemplateBindingKey()
	var value *TemplateBindingIdentifier
	if p.consumeOptionalOperator("=") {
		value = p.expectTemplateBindingKey()
	}
	p.consumeStatementTerminator()
	return &VariableBinding{
		sourceSpan: &AbsoluteSourceSpan{Start: spanStart, End: p.currentAbsoluteOffset()},
		Key:        key,
		Value:      value,
	}
}

func (p *parseAST) consumeStatementTerminator() {
	if !p.consumeOptionalCharacter(';') {
		p.consumeOptionalCharacter(',')
	}
}

// error records an error and skips tokens until a recoverable point
func (p *parseAST) error(message string) {
	*p.errors = append(*p.errors, getParseError(message, p.input, p.getErrorLocationText(p.index), p.parseSourceSpan))
	p.skip()
}

func (p *parseAST) getErrorLocationText(index int) string {
	if index < len(p.tokens) {
		return fmt.Sprintf("at column %d in", p.tokens[index].Index+1)
	}
	return "at the end of the expression"
}

func (p *parseAST) skip() {
	n := p.next()
	for p.index < len(p.tokens) &&
		!n.IsCharacter(';') &&
		!n.IsOperator("|") &&
		(p.rparensExpected <= 0 || !n.IsCharacter(')')) &&
		(p.rbracesExpected <= 0 || !n.IsCharacter('}')) &&
		(p.rbracketsExpected <= 0 || !n.IsCharacter(']')) {
		p.advance()
		n = p.next()
	}
}

func getParseError(message, input, locationText string, parseSourceSpan *util.ParseSourceSpan) *util.ParseError {
	if locationText != "" {
		locationText = " " + locationText + " "
	}
	msg := fmt.Sprintf("Parser Error: %s%s[%s] in %s", message, locationText, input, getLocation(parseSourceSpan))
	return util.NewParseError(parseSourceSpan, msg)
}
