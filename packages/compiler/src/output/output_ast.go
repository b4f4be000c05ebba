// Package output is the statement program the view and module compilers generate, together with
// the back ends that turn it into runnable values.
package output

import (
	"ngjit-go/packages/compiler/src/util"
)

// UnaryOperator represents unary operators
type UnaryOperator int

const (
	UnaryOperatorMinus UnaryOperator = iota
	UnaryOperatorPlus
)

// BinaryOperator represents binary operators
type BinaryOperator int

const (
	BinaryOperatorEquals BinaryOperator = iota
	BinaryOperatorNotEquals
	BinaryOperatorAssign
	BinaryOperatorIdentical
	BinaryOperatorNotIdentical
	BinaryOperatorMinus
	BinaryOperatorPlus
	BinaryOperatorDivide
	BinaryOperatorMultiply
	BinaryOperatorModulo
	BinaryOperatorAnd
	BinaryOperatorOr
	BinaryOperatorBitwiseAnd
	BinaryOperatorLower
	BinaryOperatorLowerEquals
	BinaryOperatorBigger
	BinaryOperatorBiggerEquals
	BinaryOperatorNullishCoalesce
)

// OutputExpression is an expression of the generated program.
type OutputExpression interface {
	GetSourceSpan() *util.ParseSourceSpan
	VisitExpression(visitor ExpressionVisitor, context interface{}) interface{}
}

// ExpressionVisitor is the interface for visiting expressions
type ExpressionVisitor interface {
	VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{}
	VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{}
	VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{}
	VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{}
	VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{}
	VisitNotExpr(ast *NotExpr, context interface{}) interface{}
	VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{}
	VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{}
	VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{}
	VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{}
	VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{}
	VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{}
	VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{}
}

// ExpressionBase is the base struct for all expressions
type ExpressionBase struct {
	SourceSpan *util.ParseSourceSpan
}

// GetSourceSpan returns the source span
func (e *ExpressionBase) GetSourceSpan() *util.ParseSourceSpan {
	return e.SourceSpan
}

// ReadVarExpr reads a local variable or parameter.
type ReadVarExpr struct {
	ExpressionBase
	Name string
}

// NewReadVarExpr creates a new ReadVarExpr
func NewReadVarExpr(name string, sourceSpan *util.ParseSourceSpan) *ReadVarExpr {
	return &ReadVarExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Name: name}
}

func (r *ReadVarExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadVarExpr(r, context)
}

// Set assigns value to the variable.
func (r *ReadVarExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value, nil)
}

// LiteralExpr is nil, a bool, a number or a string.
type LiteralExpr struct {
	ExpressionBase
	Value interface{}
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value interface{}, sourceSpan *util.ParseSourceSpan) *LiteralExpr {
	return &LiteralExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Value: value}
}

func (l *LiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralExpr(l, context)
}

// BinaryOperatorExpr is lhs <op> rhs. With BinaryOperatorAssign the lhs is a ReadVarExpr,
// ReadPropExpr or ReadKeyExpr.
type BinaryOperatorExpr struct {
	ExpressionBase
	Operator BinaryOperator
	Lhs      OutputExpression
	Rhs      OutputExpression
}

// NewBinaryOperatorExpr creates a new BinaryOperatorExpr
func NewBinaryOperatorExpr(operator BinaryOperator, lhs, rhs OutputExpression, sourceSpan *util.ParseSourceSpan) *BinaryOperatorExpr {
	return &BinaryOperatorExpr{
		ExpressionBase: ExpressionBase{SourceSpan: sourceSpan},
		Operator:       operator,
		Lhs:            lhs,
		Rhs:            rhs,
	}
}

func (b *BinaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitBinaryOperatorExpr(b, context)
}

// InvokeFunctionExpr calls Fn. A ReadPropExpr callee is a method call on its receiver.
type InvokeFunctionExpr struct {
	ExpressionBase
	Fn   OutputExpression
	Args []OutputExpression
}

// NewInvokeFunctionExpr creates a new InvokeFunctionExpr
func NewInvokeFunctionExpr(fn OutputExpression, args []OutputExpression, sourceSpan *util.ParseSourceSpan) *InvokeFunctionExpr {
	return &InvokeFunctionExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Fn: fn, Args: args}
}

func (i *InvokeFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInvokeFunctionExpr(i, context)
}

// ExternalReference names a value that lives outside the generated program: a runtime
// instruction, a declared type, a late-bound view definition. Runtime is the value itself.
type ExternalReference struct {
	ModuleName string
	Name       string
	Runtime    interface{}
}

// ExternalExpr refers to an ExternalReference.
type ExternalExpr struct {
	ExpressionBase
	Value *ExternalReference
}

// NewExternalExpr creates a new ExternalExpr
func NewExternalExpr(value *ExternalReference, sourceSpan *util.ParseSourceSpan) *ExternalExpr {
	return &ExternalExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Value: value}
}

func (e *ExternalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitExternalExpr(e, context)
}

type ConditionalExpr struct {
	ExpressionBase
	Condition OutputExpression
	TrueCase  OutputExpression
	FalseCase OutputExpression
}

// NewConditionalExpr creates a new ConditionalExpr. A nil falseCase evaluates to null.
func NewConditionalExpr(condition, trueCase, falseCase OutputExpression, sourceSpan *util.ParseSourceSpan) *ConditionalExpr {
	if falseCase == nil {
		falseCase = NullExpr()
	}
	return &ConditionalExpr{
		ExpressionBase: ExpressionBase{SourceSpan: sourceSpan},
		Condition:      condition,
		TrueCase:       trueCase,
		FalseCase:      falseCase,
	}
}

func (c *ConditionalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitConditionalExpr(c, context)
}

type NotExpr struct {
	ExpressionBase
	Condition OutputExpression
}

func NewNotExpr(condition OutputExpression, sourceSpan *util.ParseSourceSpan) *NotExpr {
	return &NotExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Condition: condition}
}

func (n *NotExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitNotExpr(n, context)
}

// FnParam is a function parameter.
type FnParam struct {
	Name string
}

func NewFnParam(name string) *FnParam {
	return &FnParam{Name: name}
}

// FunctionExpr is a function literal. Name is optional and only used for stack traces.
type FunctionExpr struct {
	ExpressionBase
	Params     []*FnParam
	Statements []OutputStatement
	Name       string
}

func NewFunctionExpr(params []*FnParam, statements []OutputStatement, name string, sourceSpan *util.ParseSourceSpan) *FunctionExpr {
	return &FunctionExpr{
		ExpressionBase: ExpressionBase{SourceSpan: sourceSpan},
		Params:         params,
		Statements:     statements,
		Name:           name,
	}
}

func (f *FunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitFunctionExpr(f, context)
}

// ToDeclStmt turns the function literal into a named function declaration.
func (f *FunctionExpr) ToDeclStmt(name string, modifiers StmtModifier) *DeclareFunctionStmt {
	return NewDeclareFunctionStmt(name, f.Params, f.Statements, modifiers, f.SourceSpan)
}

type UnaryOperatorExpr struct {
	ExpressionBase
	Operator UnaryOperator
	Expr     OutputExpression
}

func NewUnaryOperatorExpr(operator UnaryOperator, expr OutputExpression, sourceSpan *util.ParseSourceSpan) *UnaryOperatorExpr {
	return &UnaryOperatorExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Operator: operator, Expr: expr}
}

func (u *UnaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitUnaryOperatorExpr(u, context)
}

// ReadPropExpr reads receiver.name.
type ReadPropExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Name     string
}

func NewReadPropExpr(receiver OutputExpression, name string, sourceSpan *util.ParseSourceSpan) *ReadPropExpr {
	return &ReadPropExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Receiver: receiver, Name: name}
}

func (r *ReadPropExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadPropExpr(r, context)
}

// Set assigns value to the property.
func (r *ReadPropExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value, nil)
}

// ReadKeyExpr reads receiver[index].
type ReadKeyExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Index    OutputExpression
}

func NewReadKeyExpr(receiver, index OutputExpression, sourceSpan *util.ParseSourceSpan) *ReadKeyExpr {
	return &ReadKeyExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Receiver: receiver, Index: index}
}

func (r *ReadKeyExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadKeyExpr(r, context)
}

// Set assigns value to the keyed slot.
func (r *ReadKeyExpr) Set(value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, r, value, nil)
}

type LiteralArrayExpr struct {
	ExpressionBase
	Entries []OutputExpression
}

func NewLiteralArrayExpr(entries []OutputExpression, sourceSpan *util.ParseSourceSpan) *LiteralArrayExpr {
	return &LiteralArrayExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Entries: entries}
}

func (l *LiteralArrayExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArrayExpr(l, context)
}

// IsConstant reports whether every entry is a literal.
func (l *LiteralArrayExpr) IsConstant() bool {
	for _, e := range l.Entries {
		if !isConstant(e) {
			return false
		}
	}
	return true
}

type LiteralMapEntry struct {
	Key    string
	Value  OutputExpression
	Quoted bool
}

func NewLiteralMapEntry(key string, value OutputExpression, quoted bool) *LiteralMapEntry {
	return &LiteralMapEntry{Key: key, Value: value, Quoted: quoted}
}

type LiteralMapExpr struct {
	ExpressionBase
	Entries []*LiteralMapEntry
}

func NewLiteralMapExpr(entries []*LiteralMapEntry, sourceSpan *util.ParseSourceSpan) *LiteralMapExpr {
	return &LiteralMapExpr{ExpressionBase: ExpressionBase{SourceSpan: sourceSpan}, Entries: entries}
}

func (l *LiteralMapExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMapExpr(l, context)
}

// IsConstant reports whether every value is a literal.
func (l *LiteralMapExpr) IsConstant() bool {
	for _, e := range l.Entries {
		if !isConstant(e.Value) {
			return false
		}
	}
	return true
}

func isConstant(e OutputExpression) bool {
	switch e := e.(type) {
	case *LiteralExpr:
		return true
	case *LiteralArrayExpr:
		return e.IsConstant()
	case *LiteralMapExpr:
		return e.IsConstant()
	}
	return false
}

// StmtModifier flags declarations.
type StmtModifier int

const (
	StmtModifierNone     StmtModifier = 0
	StmtModifierFinal    StmtModifier = 1 << 0
	StmtModifierExported StmtModifier = 1 << 2
)

// StatementVisitor is the interface for visiting statements
type StatementVisitor interface {
	VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{}
	VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{}
	VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{}
	VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{}
	VisitIfStmt(stmt *IfStmt, context interface{}) interface{}
}

// OutputStatement is a statement of the generated program.
type OutputStatement interface {
	GetModifiers() StmtModifier
	GetSourceSpan() *util.ParseSourceSpan
	VisitStatement(visitor StatementVisitor, context interface{}) interface{}
}

// StatementBase is the base struct for all statements
type StatementBase struct {
	Modifiers  StmtModifier
	SourceSpan *util.ParseSourceSpan
}

// GetModifiers returns the modifiers
func (s *StatementBase) GetModifiers() StmtModifier {
	return s.Modifiers
}

// GetSourceSpan returns the source span
func (s *StatementBase) GetSourceSpan() *util.ParseSourceSpan {
	return s.SourceSpan
}

// HasModifier reports whether modifier is set.
func (s *StatementBase) HasModifier(modifier StmtModifier) bool {
	return s.Modifiers&modifier != 0
}

// DeclareVarStmt declares name, optionally initialized with Value.
type DeclareVarStmt struct {
	StatementBase
	Name  string
	Value OutputExpression
}

func NewDeclareVarStmt(name string, value OutputExpression, modifiers StmtModifier, sourceSpan *util.ParseSourceSpan) *DeclareVarStmt {
	return &DeclareVarStmt{
		StatementBase: StatementBase{Modifiers: modifiers, SourceSpan: sourceSpan},
		Name:          name,
		Value:         value,
	}
}

func (d *DeclareVarStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareVarStmt(d, context)
}

type DeclareFunctionStmt struct {
	StatementBase
	Name       string
	Params     []*FnParam
	Statements []OutputStatement
}

func NewDeclareFunctionStmt(name string, params []*FnParam, statements []OutputStatement, modifiers StmtModifier, sourceSpan *util.ParseSourceSpan) *DeclareFunctionStmt {
	return &DeclareFunctionStmt{
		StatementBase: StatementBase{Modifiers: modifiers, SourceSpan: sourceSpan},
		Name:          name,
		Params:        params,
		Statements:    statements,
	}
}

func (d *DeclareFunctionStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareFunctionStmt(d, context)
}

type ExpressionStatement struct {
	StatementBase
	Expr OutputExpression
}

func NewExpressionStatement(expr OutputExpression, sourceSpan *util.ParseSourceSpan) *ExpressionStatement {
	return &ExpressionStatement{StatementBase: StatementBase{SourceSpan: sourceSpan}, Expr: expr}
}

func (e *ExpressionStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitExpressionStmt(e, context)
}

type ReturnStatement struct {
	StatementBase
	Value OutputExpression
}

func NewReturnStatement(value OutputExpression, sourceSpan *util.ParseSourceSpan) *ReturnStatement {
	return &ReturnStatement{StatementBase: StatementBase{SourceSpan: sourceSpan}, Value: value}
}

func (r *ReturnStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitReturnStmt(r, context)
}

type IfStmt struct {
	StatementBase
	Condition OutputExpression
	TrueCase  []OutputStatement
	FalseCase []OutputStatement
}

func NewIfStmt(condition OutputExpression, trueCase, falseCase []OutputStatement, sourceSpan *util.ParseSourceSpan) *IfStmt {
	return &IfStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Condition:     condition,
		TrueCase:      trueCase,
		FalseCase:     falseCase,
	}
}

func (i *IfStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitIfStmt(i, context)
}

// Shorthands used by the compilers.

func Variable(name string) *ReadVarExpr {
	return NewReadVarExpr(name, nil)
}

func Literal(value interface{}) *LiteralExpr {
	return NewLiteralExpr(value, nil)
}

func NullExpr() *LiteralExpr {
	return NewLiteralExpr(nil, nil)
}

func LiteralArr(entries ...OutputExpression) *LiteralArrayExpr {
	return NewLiteralArrayExpr(entries, nil)
}

func ImportExpr(ref *ExternalReference) *ExternalExpr {
	return NewExternalExpr(ref, nil)
}

func Prop(receiver OutputExpression, name string) *ReadPropExpr {
	return NewReadPropExpr(receiver, name, nil)
}

func Key(receiver, index OutputExpression) *ReadKeyExpr {
	return NewReadKeyExpr(receiver, index, nil)
}

func Call(fn OutputExpression, args ...OutputExpression) *InvokeFunctionExpr {
	return NewInvokeFunctionExpr(fn, args, nil)
}

func Binary(op BinaryOperator, lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(op, lhs, rhs, nil)
}

func ToStmt(expr OutputExpression) *ExpressionStatement {
	return NewExpressionStatement(expr, expr.GetSourceSpan())
}

func Return(expr OutputExpression) *ReturnStatement {
	return NewReturnStatement(expr, nil)
}
