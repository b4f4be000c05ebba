package view_compiler

import (
	"fmt"
	"sort"
	"strings"

	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/identifiers"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/scope"
	"ngjit-go/packages/compiler/src/util"
)

const (
	contextName     = "ctx"
	renderFlagsName = "rf"
	eventName       = "$event"
)

var binaryOperators = map[string]o.BinaryOperator{
	"==":  o.BinaryOperatorEquals,
	"!=":  o.BinaryOperatorNotEquals,
	"===": o.BinaryOperatorIdentical,
	"!==": o.BinaryOperatorNotIdentical,
	"+":   o.BinaryOperatorPlus,
	"-":   o.BinaryOperatorMinus,
	"*":   o.BinaryOperatorMultiply,
	"/":   o.BinaryOperatorDivide,
	"%":   o.BinaryOperatorModulo,
	"&&":  o.BinaryOperatorAnd,
	"||":  o.BinaryOperatorOr,
	"<":   o.BinaryOperatorLower,
	"<=":  o.BinaryOperatorLowerEquals,
	">":   o.BinaryOperatorBigger,
	">=":  o.BinaryOperatorBiggerEquals,
	"??":  o.BinaryOperatorNullishCoalesce,
}

type refKey struct {
	hops int
	name string
}

// derivations records the outer contexts and template references one block of generated code
// reads. The statements deriving them are only built once the whole component is visited, as a
// reference may point at a node created later in an enclosing view.
type derivations struct {
	view     *viewBuilder
	contexts map[int]string
	refs     map[refKey]string
	refOrder []refKey
	// temps hold receivers of safe accesses that must be evaluated once.
	temps []string
}

func newDerivations(view *viewBuilder) *derivations {
	return &derivations{view: view, contexts: map[int]string{}, refs: map[refKey]string{}}
}

// context returns the context of the view hops levels outwards.
func (d *derivations) context(hops int) o.OutputExpression {
	if hops == 0 {
		return o.Variable(contextName)
	}
	name, ok := d.contexts[hops]
	if !ok {
		name = d.view.c.pool.UniqueName("ctx_r", true)
		d.contexts[hops] = name
	}
	return o.Variable(name)
}

func (d *derivations) reference(hops int, name string) o.OutputExpression {
	key := refKey{hops: hops, name: name}
	v, ok := d.refs[key]
	if !ok {
		v = d.view.c.pool.UniqueName(util.SanitizeIdentifier(name)+"_r", true)
		d.refs[key] = v
		d.refOrder = append(d.refOrder, key)
	}
	return o.Variable(v)
}

func (d *derivations) temp() *o.ReadVarExpr {
	name := d.view.c.pool.UniqueName("tmp_", true)
	d.temps = append(d.temps, name)
	return o.Variable(name)
}

// tempDeclarations declares the temporaries without a value; they are assigned where used.
func (d *derivations) tempDeclarations() []o.OutputStatement {
	stmts := make([]o.OutputStatement, len(d.temps))
	for i, name := range d.temps {
		stmts[i] = o.NewDeclareVarStmt(name, nil, o.StmtModifierNone, nil)
	}
	return stmts
}

// statements walks outwards in ascending hop order. Each step moves the runtime cursor by the
// difference to the previous hop, and references are read while the cursor sits on the view
// that declares them.
func (d *derivations) statements() ([]o.OutputStatement, []*Instruction) {
	hopSet := map[int]bool{}
	for h := range d.contexts {
		hopSet[h] = true
	}
	for _, k := range d.refOrder {
		hopSet[k.hops] = true
	}
	hops := make([]int, 0, len(hopSet))
	for h := range hopSet {
		hops = append(hops, h)
	}
	sort.Ints(hops)

	var (
		stmts []o.OutputStatement
		instr []*Instruction
	)
	add := func(ref *o.ExternalReference, slot int, stmt o.OutputStatement) {
		stmts = append(stmts, stmt)
		instr = append(instr, &Instruction{Ref: ref, Slot: slot, Stmt: stmt})
	}
	prev := 0
	for _, h := range hops {
		if h > 0 {
			next := o.Call(o.ImportExpr(identifiers.NextContext), o.Literal(h-prev))
			if name, ok := d.contexts[h]; ok {
				add(identifiers.NextContext, -1, o.NewDeclareVarStmt(name, next, o.StmtModifierFinal, nil))
			} else {
				add(identifiers.NextContext, -1, o.ToStmt(next))
			}
			prev = h
		}
		for _, k := range d.refOrder {
			if k.hops != h {
				continue
			}
			owner := d.view.ancestor(h)
			slot, dir := owner.referenceTarget(k.name)
			call := o.Call(o.ImportExpr(identifiers.Reference), o.Literal(slot), o.Literal(dir))
			add(identifiers.Reference, slot, o.NewDeclareVarStmt(d.refs[k], call, o.StmtModifierFinal, nil))
		}
	}
	return stmts, instr
}

// converter turns one binding or action expression into an output expression.
type converter struct {
	view   *viewBuilder
	d      *derivations
	action bool
	span   *util.ParseSourceSpan
	source string
	// pipes collects the pipe instances created for this expression.
	pipes []*Instruction
}

func (cv *converter) convert(ast expression_parser.AST) o.OutputExpression {
	if ws, ok := ast.(*expression_parser.ASTWithSource); ok {
		cv.source = ws.Source
		ast = ws.AST
	}
	res := ast.Visit(cv, nil)
	if res == nil {
		return o.NullExpr()
	}
	return res.(o.OutputExpression)
}

func (cv *converter) convertAll(asts []expression_parser.AST) []o.OutputExpression {
	out := make([]o.OutputExpression, len(asts))
	for i, a := range asts {
		out[i] = cv.convert(a)
	}
	return out
}

func (cv *converter) reportError(format string, args ...any) o.OutputExpression {
	cv.view.c.reportError(fmt.Sprintf(format, args...), cv.span)
	return o.NullExpr()
}

// local resolves name against the template scopes. $event shadows everything inside actions.
func (cv *converter) local(name string) (o.OutputExpression, *scope.Entry) {
	if cv.action && name == eventName {
		return o.Variable(eventName), nil
	}
	e, hops, ok := cv.view.scope.Resolve(name)
	if !ok {
		return nil, nil
	}
	if e.Kind == scope.Reference {
		return cv.d.reference(hops, name), &e
	}
	return o.Prop(cv.d.context(hops), e.Value), &e
}

// component is the context of the component view; unresolved names read from it.
func (cv *converter) component() o.OutputExpression {
	return cv.d.context(cv.view.scope.Depth())
}

func (cv *converter) VisitUnary(ast *expression_parser.Unary, _ interface{}) interface{} {
	op := o.UnaryOperatorPlus
	if ast.Operator == "-" {
		op = o.UnaryOperatorMinus
	}
	return o.NewUnaryOperatorExpr(op, cv.convert(ast.Expr), nil)
}

func (cv *converter) VisitBinary(ast *expression_parser.Binary, _ interface{}) interface{} {
	op, ok := binaryOperators[ast.Operation]
	if !ok {
		return cv.reportError("Unsupported operation %s", ast.Operation)
	}
	return o.Binary(op, cv.convert(ast.Left), cv.convert(ast.Right))
}

func (cv *converter) VisitChain(ast *expression_parser.Chain, _ interface{}) interface{} {
	return cv.reportError("Multiple expressions are only allowed in event handlers")
}

func (cv *converter) VisitConditional(ast *expression_parser.Conditional, _ interface{}) interface{} {
	return o.NewConditionalExpr(cv.convert(ast.Condition), cv.convert(ast.TrueExp), cv.convert(ast.FalseExp), nil)
}

func (cv *converter) VisitThisReceiver(ast *expression_parser.ThisReceiver, _ interface{}) interface{} {
	return cv.component()
}

func (cv *converter) VisitImplicitReceiver(ast *expression_parser.ImplicitReceiver, _ interface{}) interface{} {
	return cv.component()
}

func (cv *converter) VisitInterpolation(ast *expression_parser.Interpolation, _ interface{}) interface{} {
	return o.NewInvokeFunctionExpr(o.ImportExpr(identifiers.Interpolate), cv.interpolationArgs(ast), nil)
}

// interpolationArgs alternates the static strings and the converted expressions.
func (cv *converter) interpolationArgs(ast *expression_parser.Interpolation) []o.OutputExpression {
	args := make([]o.OutputExpression, 0, len(ast.Strings)+len(ast.Expressions))
	for i, s := range ast.Strings {
		args = append(args, o.Literal(s))
		if i < len(ast.Expressions) {
			args = append(args, cv.convert(ast.Expressions[i]))
		}
	}
	return args
}

func (cv *converter) VisitKeyedRead(ast *expression_parser.KeyedRead, _ interface{}) interface{} {
	return o.Key(cv.convert(ast.Receiver), cv.convert(ast.Key))
}

func (cv *converter) VisitKeyedWrite(ast *expression_parser.KeyedWrite, _ interface{}) interface{} {
	return o.Key(cv.convert(ast.Receiver), cv.convert(ast.Key)).Set(cv.convert(ast.Value))
}

func (cv *converter) VisitLiteralArray(ast *expression_parser.LiteralArray, _ interface{}) interface{} {
	return o.NewLiteralArrayExpr(cv.convertAll(ast.Expressions), nil)
}

func (cv *converter) VisitLiteralMap(ast *expression_parser.LiteralMap, _ interface{}) interface{} {
	entries := make([]*o.LiteralMapEntry, len(ast.Keys))
	for i, k := range ast.Keys {
		entries[i] = o.NewLiteralMapEntry(k.Key, cv.convert(ast.Values[i]), k.Quoted)
	}
	return o.NewLiteralMapExpr(entries, nil)
}

func (cv *converter) VisitLiteralPrimitive(ast *expression_parser.LiteralPrimitive, _ interface{}) interface{} {
	return o.Literal(ast.Value)
}

// VisitPipe allocates a pipe slot in the current view. The creation instruction is emitted by
// the caller after the owning node's own creation instructions.
func (cv *converter) VisitPipe(ast *expression_parser.BindingPipe, _ interface{}) interface{} {
	if cv.action {
		return cv.reportError("Cannot have a pipe in an action expression")
	}
	pipe, ok := cv.view.c.pipes[ast.Name]
	if !ok {
		return cv.reportError("The pipe '%s' could not be found", ast.Name)
	}
	slot := cv.view.allocateSlot()
	create := o.ToStmt(o.Call(o.ImportExpr(identifiers.Pipe),
		o.Literal(slot),
		o.ImportExpr(identifiers.TypeReference(pipe.Type, cv.view.c.moduleURL)),
		o.Literal(pipe.Pure)))
	cv.pipes = append(cv.pipes, &Instruction{Ref: identifiers.Pipe, Slot: slot, Stmt: create})

	args := []o.OutputExpression{o.Literal(slot), cv.convert(ast.Exp)}
	args = append(args, cv.convertAll(ast.Args)...)
	return o.NewInvokeFunctionExpr(o.ImportExpr(identifiers.PipeBind), args, nil)
}

func (cv *converter) VisitPrefixNot(ast *expression_parser.PrefixNot, _ interface{}) interface{} {
	return o.NewNotExpr(cv.convert(ast.Expression), nil)
}

func (cv *converter) VisitPropertyRead(ast *expression_parser.PropertyRead, _ interface{}) interface{} {
	switch ast.Receiver.(type) {
	case *expression_parser.ImplicitReceiver:
		if local, _ := cv.local(ast.Name); local != nil {
			return local
		}
		return o.Prop(cv.component(), ast.Name)
	case *expression_parser.ThisReceiver:
		return o.Prop(cv.component(), ast.Name)
	}
	return o.Prop(cv.convert(ast.Receiver), ast.Name)
}

func (cv *converter) VisitPropertyWrite(ast *expression_parser.PropertyWrite, _ interface{}) interface{} {
	switch ast.Receiver.(type) {
	case *expression_parser.ImplicitReceiver:
		if _, entry := cv.local(ast.Name); entry != nil {
			return cv.reportError("Cannot assign value \"%s\" to template variable \"%s\". Template variables are read-only.",
				cv.sourceOf(ast.Value), ast.Name)
		}
		return o.Prop(cv.component(), ast.Name).Set(cv.convert(ast.Value))
	case *expression_parser.ThisReceiver:
		return o.Prop(cv.component(), ast.Name).Set(cv.convert(ast.Value))
	}
	return o.Prop(cv.convert(ast.Receiver), ast.Name).Set(cv.convert(ast.Value))
}

// safe guards access against a null receiver: receiver == null ? null : access(receiver).
// A receiver with calls, pipes or writes is stored in a temporary so it runs once:
// (tmp_0 = receiver) == null ? null : access(tmp_0).
func (cv *converter) safe(receiver expression_parser.AST, access func(o.OutputExpression) o.OutputExpression) o.OutputExpression {
	r := cv.convert(receiver)
	guard := r
	if hasSideEffects(receiver) {
		tmp := cv.d.temp()
		guard, r = tmp.Set(r), tmp
	}
	return o.NewConditionalExpr(o.Binary(o.BinaryOperatorEquals, guard, o.NullExpr()), o.NullExpr(), access(r), nil)
}

// hasSideEffects reports whether evaluating ast twice could be observed.
func hasSideEffects(ast expression_parser.AST) bool {
	switch e := ast.(type) {
	case *expression_parser.Call, *expression_parser.SafeCall, *expression_parser.BindingPipe,
		*expression_parser.PropertyWrite, *expression_parser.KeyedWrite:
		return true
	case *expression_parser.ASTWithSource:
		return hasSideEffects(e.AST)
	case *expression_parser.PropertyRead:
		return hasSideEffects(e.Receiver)
	case *expression_parser.SafePropertyRead:
		return hasSideEffects(e.Receiver)
	case *expression_parser.KeyedRead:
		return hasSideEffects(e.Receiver) || hasSideEffects(e.Key)
	case *expression_parser.SafeKeyedRead:
		return hasSideEffects(e.Receiver) || hasSideEffects(e.Key)
	case *expression_parser.Conditional:
		return hasSideEffects(e.Condition) || hasSideEffects(e.TrueExp) || hasSideEffects(e.FalseExp)
	case *expression_parser.Binary:
		return hasSideEffects(e.Left) || hasSideEffects(e.Right)
	case *expression_parser.Unary:
		return hasSideEffects(e.Expr)
	case *expression_parser.PrefixNot:
		return hasSideEffects(e.Expression)
	case *expression_parser.Chain:
		return anySideEffects(e.Expressions)
	case *expression_parser.LiteralArray:
		return anySideEffects(e.Expressions)
	case *expression_parser.LiteralMap:
		return anySideEffects(e.Values)
	case *expression_parser.Interpolation:
		return anySideEffects(e.Expressions)
	}
	return false
}

func anySideEffects(asts []expression_parser.AST) bool {
	for _, a := range asts {
		if hasSideEffects(a) {
			return true
		}
	}
	return false
}

func (cv *converter) VisitSafePropertyRead(ast *expression_parser.SafePropertyRead, _ interface{}) interface{} {
	return cv.safe(ast.Receiver, func(r o.OutputExpression) o.OutputExpression { return o.Prop(r, ast.Name) })
}

func (cv *converter) VisitSafeKeyedRead(ast *expression_parser.SafeKeyedRead, _ interface{}) interface{} {
	return cv.safe(ast.Receiver, func(r o.OutputExpression) o.OutputExpression { return o.Key(r, cv.convert(ast.Key)) })
}

func (cv *converter) VisitCall(ast *expression_parser.Call, _ interface{}) interface{} {
	return o.NewInvokeFunctionExpr(cv.convert(ast.Receiver), cv.convertAll(ast.Args), nil)
}

func (cv *converter) VisitSafeCall(ast *expression_parser.SafeCall, _ interface{}) interface{} {
	return cv.safe(ast.Receiver, func(r o.OutputExpression) o.OutputExpression {
		return o.NewInvokeFunctionExpr(r, cv.convertAll(ast.Args), nil)
	})
}

// actionStatements converts an event handler. The value of the last expression is returned.
func (cv *converter) actionStatements(ast expression_parser.AST) []o.OutputStatement {
	if ws, ok := ast.(*expression_parser.ASTWithSource); ok {
		cv.source = ws.Source
		ast = ws.AST
	}
	exprs := []expression_parser.AST{ast}
	if chain, ok := ast.(*expression_parser.Chain); ok {
		exprs = chain.Expressions
	}
	var (
		stmts []o.OutputStatement
		last  o.OutputExpression
	)
	for _, e := range exprs {
		if _, empty := e.(*expression_parser.EmptyExpr); empty {
			continue
		}
		if last != nil {
			stmts = append(stmts, o.ToStmt(last))
		}
		last = cv.convert(e)
	}
	if last != nil {
		stmts = append(stmts, o.Return(last))
	}
	return stmts
}

// sourceOf returns the template text of ast.
func (cv *converter) sourceOf(ast expression_parser.AST) string {
	if sp := ast.Span(); sp != nil && sp.Start >= 0 && sp.End <= len(cv.source) && sp.Start <= sp.End {
		return strings.TrimSpace(cv.source[sp.Start:sp.End])
	}
	return cv.source
}
