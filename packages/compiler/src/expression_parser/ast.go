package expression_parser

// ParseSpan represents a span within an expression
type ParseSpan struct {
	Start int
	End   int
}

// NewParseSpan creates a new ParseSpan
func NewParseSpan(start, end int) *ParseSpan {
	return &ParseSpan{Start: start, End: end}
}

// ToAbsolute converts a ParseSpan to an AbsoluteSourceSpan
func (ps *ParseSpan) ToAbsolute(absoluteOffset int) *AbsoluteSourceSpan {
	return &AbsoluteSourceSpan{Start: absoluteOffset + ps.Start, End: absoluteOffset + ps.End}
}

// AbsoluteSourceSpan records the absolute position of a text span in a source file
type AbsoluteSourceSpan struct {
	Start int
	End   int
}

// AST is the base interface for all AST nodes
type AST interface {
	Span() *ParseSpan
	SourceSpan() *AbsoluteSourceSpan
	Visit(visitor AstVisitor, context interface{}) interface{}
}

type astBase struct {
	span       *ParseSpan
	sourceSpan *AbsoluteSourceSpan
}

func (a astBase) Span() *ParseSpan                { return a.span }
func (a astBase) SourceSpan() *AbsoluteSourceSpan { return a.sourceSpan }

func base(span *ParseSpan, sourceSpan *AbsoluteSourceSpan) astBase {
	return astBase{span: span, sourceSpan: sourceSpan}
}

// EmptyExpr represents an empty expression
type EmptyExpr struct{ astBase }

func (e *EmptyExpr) Visit(visitor AstVisitor, context interface{}) interface{} {
	return nil
}

// ImplicitReceiver is the receiver of a bare identifier such as `items` in `items.length`.
type ImplicitReceiver struct{ astBase }

func (i *ImplicitReceiver) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitImplicitReceiver(i, context)
}

// ThisReceiver is an explicit `this`. Reads through it always target the component.
type ThisReceiver struct{ ImplicitReceiver }

func (t *ThisReceiver) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitThisReceiver(t, context)
}

// Chain represents multiple expressions separated by a semicolon
type Chain struct {
	astBase
	Expressions []AST
}

func (c *Chain) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitChain(c, context)
}

// Conditional is `cond ? a : b`.
type Conditional struct {
	astBase
	Condition AST
	TrueExp   AST
	FalseExp  AST
}

func (c *Conditional) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitConditional(c, context)
}

// PropertyRead represents a property read operation
type PropertyRead struct {
	astBase
	Receiver AST
	Name     string
}

func (p *PropertyRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPropertyRead(p, context)
}

// SafePropertyRead represents a safe property read operation (?.)
type SafePropertyRead struct {
	astBase
	Receiver AST
	Name     string
}

func (p *SafePropertyRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitSafePropertyRead(p, context)
}

// PropertyWrite is `a.b = value`, only valid in actions.
type PropertyWrite struct {
	astBase
	Receiver AST
	Name     string
	Value    AST
}

func (p *PropertyWrite) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPropertyWrite(p, context)
}

// KeyedRead is `a[key]`.
type KeyedRead struct {
	astBase
	Receiver AST
	Key      AST
}

func (k *KeyedRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitKeyedRead(k, context)
}

// SafeKeyedRead is `a?.[key]`.
type SafeKeyedRead struct {
	astBase
	Receiver AST
	Key      AST
}

func (k *SafeKeyedRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitSafeKeyedRead(k, context)
}

// KeyedWrite is `a[key] = value`.
type KeyedWrite struct {
	astBase
	Receiver AST
	Key      AST
	Value    AST
}

func (k *KeyedWrite) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitKeyedWrite(k, context)
}

// BindingPipe is `exp | name:arg1:arg2`.
type BindingPipe struct {
	astBase
	Exp  AST
	Name string
	Args []AST
}

func (b *BindingPipe) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPipe(b, context)
}

// LiteralPrimitive is a string, number, boolean, null or undefined literal. Value is nil for
// null and undefined, float64 for numbers.
type LiteralPrimitive struct {
	astBase
	Value interface{}
}

func (l *LiteralPrimitive) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralPrimitive(l, context)
}

// LiteralArray is `[a, b]`.
type LiteralArray struct {
	astBase
	Expressions []AST
}

func (l *LiteralArray) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArray(l, context)
}

// LiteralMapKey is one key of a literal map.
type LiteralMapKey struct {
	Key    string
	Quoted bool
}

// LiteralMap is `{a: 1, 'b': 2}`.
type LiteralMap struct {
	astBase
	Keys   []LiteralMapKey
	Values []AST
}

func (l *LiteralMap) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMap(l, context)
}

// Interpolation is `a {{b}} c`: len(Strings) == len(Expressions)+1.
type Interpolation struct {
	astBase
	Strings     []string
	Expressions []AST
}

func (i *Interpolation) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitInterpolation(i, context)
}

// Binary is `left op right`.
type Binary struct {
	astBase
	Operation string
	Left      AST
	Right     AST
}

func (b *Binary) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitBinary(b, context)
}

// Unary is `-x` or `+x`.
type Unary struct {
	astBase
	Operator string
	Expr     AST
}

func (u *Unary) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitUnary(u, context)
}

// PrefixNot is `!x`.
type PrefixNot struct {
	astBase
	Expression AST
}

func (p *PrefixNot) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPrefixNot(p, context)
}

// Call is `receiver(args)`.
type Call struct {
	astBase
	Receiver AST
	Args     []AST
}

func (c *Call) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitCall(c, context)
}

// SafeCall is `receiver?.(args)`.
type SafeCall struct {
	astBase
	Receiver AST
	Args     []AST
}

func (c *SafeCall) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitSafeCall(c, context)
}

// ASTWithSource wraps a parsed expression with its source text and location.
type ASTWithSource struct {
	astBase
	AST            AST
	Source         string
	Location       string
	AbsoluteOffset int
}

func (a *ASTWithSource) Visit(visitor AstVisitor, context interface{}) interface{} {
	return a.AST.Visit(visitor, context)
}

func (a *ASTWithSource) String() string {
	return a.Source + " in " + a.Location
}

// TemplateBindingIdentifier represents an identifier in a template binding
type TemplateBindingIdentifier struct {
	Source string
	Span   *AbsoluteSourceSpan
}

// TemplateBinding is one clause of a `*dir="..."` microsyntax: a VariableBinding or an
// ExpressionBinding.
type TemplateBinding interface {
	SourceSpan() *AbsoluteSourceSpan
}

// VariableBinding is `let x = key` or `key as x`. Value is nil for a bare `let x`.
type VariableBinding struct {
	sourceSpan *AbsoluteSourceSpan
	Key        *TemplateBindingIdentifier
	Value      *TemplateBindingIdentifier
}

func (v *VariableBinding) SourceSpan() *AbsoluteSourceSpan { return v.sourceSpan }

// ExpressionBinding binds Value to the directive input Key. Value is nil for a key-only
// binding such as the bare directive name.
type ExpressionBinding struct {
	sourceSpan *AbsoluteSourceSpan
	Key        *TemplateBindingIdentifier
	Value      *ASTWithSource
}

func (e *ExpressionBinding) SourceSpan() *AbsoluteSourceSpan { return e.sourceSpan }

// AstVisitor is the interface for visiting AST nodes
type AstVisitor interface {
	VisitUnary(ast *Unary, context interface{}) interface{}
	VisitBinary(ast *Binary, context interface{}) interface{}
	VisitChain(ast *Chain, context interface{}) interface{}
	VisitConditional(ast *Conditional, context interface{}) interface{}
	VisitThisReceiver(ast *ThisReceiver, context interface{}) interface{}
	VisitImplicitReceiver(ast *ImplicitReceiver, context interface{}) interface{}
	VisitInterpolation(ast *Interpolation, context interface{}) interface{}
	VisitKeyedRead(ast *KeyedRead, context interface{}) interface{}
	VisitKeyedWrite(ast *KeyedWrite, context interface{}) interface{}
	VisitLiteralArray(ast *LiteralArray, context interface{}) interface{}
	VisitLiteralMap(ast *LiteralMap, context interface{}) interface{}
	VisitLiteralPrimitive(ast *LiteralPrimitive, context interface{}) interface{}
	VisitPipe(ast *BindingPipe, context interface{}) interface{}
	VisitPrefixNot(ast *PrefixNot, context interface{}) interface{}
	VisitPropertyRead(ast *PropertyRead, context interface{}) interface{}
	VisitPropertyWrite(ast *PropertyWrite, context interface{}) interface{}
	VisitSafePropertyRead(ast *SafePropertyRead, context interface{}) interface{}
	VisitSafeKeyedRead(ast *SafeKeyedRead, context interface{}) interface{}
	VisitCall(ast *Call, context interface{}) interface{}
	VisitSafeCall(ast *SafeCall, context interface{}) interface{}
}

// Walk calls fn for ast and every node below it in evaluation order. fn returning false
// stops descent into that node's children.
func Walk(ast AST, fn func(AST) bool) {
	if ast == nil || !fn(ast) {
		return
	}
	walkAll := func(list []AST) {
		for _, a := range list {
			Walk(a, fn)
		}
	}
	switch n := ast.(type) {
	case *ASTWithSource:
		Walk(n.AST, fn)
	case *Chain:
		walkAll(n.Expressions)
	case *Conditional:
		Walk(n.Condition, fn)
		Walk(n.TrueExp, fn)
		Walk(n.FalseExp, fn)
	case *PropertyRead:
		Walk(n.Receiver, fn)
	case *SafePropertyRead:
		Walk(n.Receiver, fn)
	case *PropertyWrite:
		Walk(n.Receiver, fn)
		Walk(n.Value, fn)
	case *KeyedRead:
		Walk(n.Receiver, fn)
		Walk(n.Key, fn)
	case *SafeKeyedRead:
		Walk(n.Receiver, fn)
		Walk(n.Key, fn)
	case *KeyedWrite:
		Walk(n.Receiver, fn)
		Walk(n.Key, fn)
		Walk(n.Value, fn)
	case *BindingPipe:
		Walk(n.Exp, fn)
		walkAll(n.Args)
	case *LiteralArray:
		walkAll(n.Expressions)
	case *LiteralMap:
		walkAll(n.Values)
	case *Interpolation:
		walkAll(n.Expressions)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Unary:
		Walk(n.Expr, fn)
	case *PrefixNot:
		Walk(n.Expression, fn)
	case *Call:
		Walk(n.Receiver, fn)
		walkAll(n.Args)
	case *SafeCall:
		Walk(n.Receiver, fn)
		walkAll(n.Args)
	}
}
