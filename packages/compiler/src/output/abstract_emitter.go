package output

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	singleQuoteEscapeStringRe = regexp.MustCompile(`'|\\|\n|\r|\$`)
	legalIdentifierRe         = regexp.MustCompile(`(?i)^[$A-Z_][0-9A-Z_$]*$`)
	indentWith                = "  "
)

var binaryOperators = map[BinaryOperator]string{
	BinaryOperatorAnd:             "&&",
	BinaryOperatorBigger:          ">",
	BinaryOperatorBiggerEquals:    ">=",
	BinaryOperatorBitwiseAnd:      "&",
	BinaryOperatorDivide:          "/",
	BinaryOperatorAssign:          "=",
	BinaryOperatorEquals:          "==",
	BinaryOperatorIdentical:       "===",
	BinaryOperatorLower:           "<",
	BinaryOperatorLowerEquals:     "<=",
	BinaryOperatorMinus:           "-",
	BinaryOperatorModulo:          "%",
	BinaryOperatorMultiply:        "*",
	BinaryOperatorNotEquals:       "!=",
	BinaryOperatorNotIdentical:    "!==",
	BinaryOperatorNullishCoalesce: "??",
	BinaryOperatorOr:              "||",
	BinaryOperatorPlus:            "+",
}

// EmittedLine represents a line being emitted
type EmittedLine struct {
	PartsLength int
	Parts       []string
	Indent      int
}

// EmitterVisitorContext collects emitted source lines.
type EmitterVisitorContext struct {
	lines  []*EmittedLine
	indent int
}

// CreateRootEmitterVisitorContext creates a context at indent 0.
func CreateRootEmitterVisitorContext() *EmitterVisitorContext {
	return NewEmitterVisitorContext(0)
}

// NewEmitterVisitorContext creates a new EmitterVisitorContext
func NewEmitterVisitorContext(indent int) *EmitterVisitorContext {
	return &EmitterVisitorContext{
		lines:  []*EmittedLine{{Indent: indent}},
		indent: indent,
	}
}

func (ctx *EmitterVisitorContext) currentLine() *EmittedLine {
	return ctx.lines[len(ctx.lines)-1]
}

// Println prints lastPart and ends the line.
func (ctx *EmitterVisitorContext) Println(lastPart string) {
	ctx.Print(lastPart, true)
}

// LineIsEmpty checks if the current line is empty
func (ctx *EmitterVisitorContext) LineIsEmpty() bool {
	return len(ctx.currentLine().Parts) == 0
}

// LineLength returns the length of the current line
func (ctx *EmitterVisitorContext) LineLength() int {
	line := ctx.currentLine()
	return line.Indent*len(indentWith) + line.PartsLength
}

// Print appends part to the current line.
func (ctx *EmitterVisitorContext) Print(part string, newLine bool) {
	if len(part) > 0 {
		line := ctx.currentLine()
		line.Parts = append(line.Parts, part)
		line.PartsLength += len(part)
	}
	if newLine {
		ctx.lines = append(ctx.lines, &EmittedLine{Indent: ctx.indent})
	}
}

// RemoveEmptyLastLine removes the empty last line
func (ctx *EmitterVisitorContext) RemoveEmptyLastLine() {
	if ctx.LineIsEmpty() {
		ctx.lines = ctx.lines[:len(ctx.lines)-1]
	}
}

// IncIndent increases the indent
func (ctx *EmitterVisitorContext) IncIndent() {
	ctx.indent++
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// DecIndent decreases the indent
func (ctx *EmitterVisitorContext) DecIndent() {
	ctx.indent--
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// ToSource joins the emitted lines.
func (ctx *EmitterVisitorContext) ToSource() string {
	lines := ctx.lines
	if len(lines) > 0 && len(lines[len(lines)-1].Parts) == 0 {
		lines = lines[:len(lines)-1]
	}
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if len(line.Parts) > 0 {
			sb.WriteString(strings.Repeat(indentWith, line.Indent))
			sb.WriteString(strings.Join(line.Parts, ""))
		}
	}
	return sb.String()
}

// Visitor is what a complete emitter implements.
type Visitor interface {
	ExpressionVisitor
	StatementVisitor
}

// AbstractEmitterVisitor prints everything that reads the same in every target. Recursion goes
// through self so that the methods of an embedding emitter are reached.
type AbstractEmitterVisitor struct {
	self                  Visitor
	lastIfCondition       OutputExpression
	escapeDollarInStrings bool
}

// NewAbstractEmitterVisitor creates a new AbstractEmitterVisitor
func NewAbstractEmitterVisitor(escapeDollarInStrings bool) *AbstractEmitterVisitor {
	return &AbstractEmitterVisitor{escapeDollarInStrings: escapeDollarInStrings}
}

// setSelf installs the outermost emitter.
func (v *AbstractEmitterVisitor) setSelf(self Visitor) {
	v.self = self
}

func (v *AbstractEmitterVisitor) getContext(context interface{}) *EmitterVisitorContext {
	if ctx, ok := context.(*EmitterVisitorContext); ok {
		return ctx
	}
	panic("context must be *EmitterVisitorContext")
}

func (v *AbstractEmitterVisitor) VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{} {
	ctx := v.getContext(context)
	stmt.Expr.VisitExpression(v.self, ctx)
	ctx.Println(";")
	return nil
}

func (v *AbstractEmitterVisitor) VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("return ", false)
	stmt.Value.VisitExpression(v.self, ctx)
	ctx.Println(";")
	return nil
}

func (v *AbstractEmitterVisitor) VisitIfStmt(stmt *IfStmt, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("if (", false)
	v.lastIfCondition = stmt.Condition
	stmt.Condition.VisitExpression(v.self, ctx)
	v.lastIfCondition = nil
	ctx.Print(") {", false)

	hasElseCase := len(stmt.FalseCase) > 0
	if len(stmt.TrueCase) <= 1 && !hasElseCase {
		ctx.Print(" ", false)
		v.VisitAllStatements(stmt.TrueCase, ctx)
		ctx.RemoveEmptyLastLine()
		ctx.Print(" ", false)
	} else {
		ctx.Println("")
		ctx.IncIndent()
		v.VisitAllStatements(stmt.TrueCase, ctx)
		ctx.DecIndent()
		if hasElseCase {
			ctx.Println("} else {")
			ctx.IncIndent()
			v.VisitAllStatements(stmt.FalseCase, ctx)
			ctx.DecIndent()
		}
	}
	ctx.Println("}")
	return nil
}

func (v *AbstractEmitterVisitor) VisitInvokeFunctionExpr(expr *InvokeFunctionExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	_, parens := expr.Fn.(*FunctionExpr)
	if parens {
		ctx.Print("(", false)
	}
	expr.Fn.VisitExpression(v.self, ctx)
	if parens {
		ctx.Print(")", false)
	}
	ctx.Print("(", false)
	v.VisitAllExpressions(expr.Args, ctx, ",")
	ctx.Print(")", false)
	return nil
}

func (v *AbstractEmitterVisitor) VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{} {
	v.getContext(context).Print(ast.Name, false)
	return nil
}

func (v *AbstractEmitterVisitor) VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{} {
	v.getContext(context).Print(v.literal(ast.Value), false)
	return nil
}

func (v *AbstractEmitterVisitor) literal(value interface{}) string {
	switch val := value.(type) {
	case nil:
		return "null"
	case string:
		return EscapeIdentifier(val, v.escapeDollarInStrings, true)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (v *AbstractEmitterVisitor) VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("(", false)
	ast.Condition.VisitExpression(v.self, ctx)
	ctx.Print("? ", false)
	ast.TrueCase.VisitExpression(v.self, ctx)
	ctx.Print(": ", false)
	ast.FalseCase.VisitExpression(v.self, ctx)
	ctx.Print(")", false)
	return nil
}

func (v *AbstractEmitterVisitor) VisitNotExpr(ast *NotExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("!", false)
	ast.Condition.VisitExpression(v.self, ctx)
	return nil
}

func (v *AbstractEmitterVisitor) VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	var opStr string
	switch ast.Operator {
	case UnaryOperatorPlus:
		opStr = "+"
	case UnaryOperatorMinus:
		opStr = "-"
	default:
		panic(fmt.Sprintf("Unknown operator %d", ast.Operator))
	}

	parens := ast != v.lastIfCondition
	if parens {
		ctx.Print("(", false)
	}
	ctx.Print(opStr, false)
	ast.Expr.VisitExpression(v.self, ctx)
	if parens {
		ctx.Print(")", false)
	}
	return nil
}

func (v *AbstractEmitterVisitor) VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	operator, ok := binaryOperators[ast.Operator]
	if !ok {
		panic(fmt.Sprintf("Unknown operator %d", ast.Operator))
	}

	parens := ast != v.lastIfCondition
	if parens {
		ctx.Print("(", false)
	}
	ast.Lhs.VisitExpression(v.self, ctx)
	ctx.Print(" "+operator+" ", false)
	ast.Rhs.VisitExpression(v.self, ctx)
	if parens {
		ctx.Print(")", false)
	}
	return nil
}

func (v *AbstractEmitterVisitor) VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ast.Receiver.VisitExpression(v.self, ctx)
	if legalIdentifierRe.MatchString(ast.Name) {
		ctx.Print(".", false)
		ctx.Print(ast.Name, false)
	} else {
		ctx.Print("["+EscapeIdentifier(ast.Name, v.escapeDollarInStrings, true)+"]", false)
	}
	return nil
}

func (v *AbstractEmitterVisitor) VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ast.Receiver.VisitExpression(v.self, ctx)
	ctx.Print("[", false)
	ast.Index.VisitExpression(v.self, ctx)
	ctx.Print("]", false)
	return nil
}

func (v *AbstractEmitterVisitor) VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("[", false)
	v.VisitAllExpressions(ast.Entries, ctx, ",")
	ctx.Print("]", false)
	return nil
}

func (v *AbstractEmitterVisitor) VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("{", false)
	visitAllObjects(func(entry *LiteralMapEntry) {
		ctx.Print(EscapeIdentifier(entry.Key, v.escapeDollarInStrings, entry.Quoted)+":", false)
		entry.Value.VisitExpression(v.self, ctx)
	}, ast.Entries, ctx, ",")
	ctx.Print("}", false)
	return nil
}

// VisitAllExpressions prints expressions separated by separator, wrapping long lines.
func (v *AbstractEmitterVisitor) VisitAllExpressions(expressions []OutputExpression, ctx *EmitterVisitorContext, separator string) {
	visitAllObjects(func(expr OutputExpression) {
		expr.VisitExpression(v.self, ctx)
	}, expressions, ctx, separator)
}

// VisitAllStatements visits all statements
func (v *AbstractEmitterVisitor) VisitAllStatements(statements []OutputStatement, ctx *EmitterVisitorContext) {
	for _, stmt := range statements {
		stmt.VisitStatement(v.self, ctx)
	}
}

func visitAllObjects[T any](handler func(T), items []T, ctx *EmitterVisitorContext, separator string) {
	incrementedIndent := false
	for i, item := range items {
		if i > 0 {
			if ctx.LineLength() > 80 {
				ctx.Print(separator, true)
				if !incrementedIndent {
					ctx.IncIndent()
					ctx.IncIndent()
					incrementedIndent = true
				}
			} else {
				ctx.Print(separator, false)
			}
		}
		handler(item)
	}
	if incrementedIndent {
		ctx.DecIndent()
		ctx.DecIndent()
	}
}

// EscapeIdentifier quotes input as a single-quoted string when alwaysQuote is set or when it is
// not a legal identifier.
func EscapeIdentifier(input string, escapeDollar bool, alwaysQuote bool) string {
	body := singleQuoteEscapeStringRe.ReplaceAllStringFunc(input, func(match string) string {
		switch match {
		case "$":
			if escapeDollar {
				return "\\$"
			}
			return "$"
		case "\n":
			return "\\n"
		case "\r":
			return "\\r"
		default:
			return "\\" + match
		}
	})

	if alwaysQuote || !legalIdentifierRe.MatchString(body) {
		return "'" + body + "'"
	}
	return body
}
