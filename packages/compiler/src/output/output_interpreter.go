package output

import (
	"fmt"
	"math"
	"reflect"

	"ngjit-go/packages/core"
)

// Interpreter evaluates the program directly. Property access, calls and conversions go through
// the runtime's reflection helpers; generated functions become func(...any) any closures that
// the runtime adapts to its callback types.
type Interpreter struct{}

// NewInterpreter creates an Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Execute implements Backend.
func (in *Interpreter) Execute(sourceURL string, statements []OutputStatement, reflector Reflector) (result map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("evaluating %s: %w", sourceURL, e)
		}
	}()

	ctx := newExecutionContext(nil, reflector)
	visitor := &statementInterpreter{}
	visitor.visitAllStatements(statements, ctx)

	result = make(map[string]interface{}, len(ctx.exports))
	for _, name := range ctx.exports {
		result[name] = ctx.vars[name]
	}
	return result, nil
}

type executionContext struct {
	parent    *executionContext
	vars      map[string]interface{}
	reflector Reflector
	exports   []string
}

func newExecutionContext(parent *executionContext, reflector Reflector) *executionContext {
	return &executionContext{parent: parent, vars: map[string]interface{}{}, reflector: reflector}
}

func (c *executionContext) lookup(name string) (*executionContext, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			return cur, true
		}
	}
	return nil, false
}

type returnValue struct {
	value interface{}
}

type statementInterpreter struct{}

func execCtx(context interface{}) *executionContext {
	return context.(*executionContext)
}

// visitAllStatements runs statements in order. Function declarations are hoisted.
func (v *statementInterpreter) visitAllStatements(statements []OutputStatement, ctx *executionContext) *returnValue {
	for _, stmt := range statements {
		if fn, ok := stmt.(*DeclareFunctionStmt); ok {
			v.VisitDeclareFunctionStmt(fn, ctx)
		}
	}
	for _, stmt := range statements {
		if _, ok := stmt.(*DeclareFunctionStmt); ok {
			continue
		}
		if rv, ok := stmt.VisitStatement(v, ctx).(*returnValue); ok {
			return rv
		}
	}
	return nil
}

func (v *statementInterpreter) VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{} {
	ctx := execCtx(context)
	var value interface{}
	if stmt.Value != nil {
		value = v.eval(stmt.Value, ctx)
	}
	ctx.vars[stmt.Name] = value
	if stmt.HasModifier(StmtModifierExported) {
		ctx.exports = append(ctx.exports, stmt.Name)
	}
	return nil
}

func (v *statementInterpreter) VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{} {
	ctx := execCtx(context)
	ctx.vars[stmt.Name] = v.createFunction(stmt.Params, stmt.Statements, ctx)
	if stmt.HasModifier(StmtModifierExported) {
		ctx.exports = append(ctx.exports, stmt.Name)
	}
	return nil
}

func (v *statementInterpreter) VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{} {
	v.eval(stmt.Expr, execCtx(context))
	return nil
}

func (v *statementInterpreter) VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{} {
	return &returnValue{value: v.eval(stmt.Value, execCtx(context))}
}

func (v *statementInterpreter) VisitIfStmt(stmt *IfStmt, context interface{}) interface{} {
	ctx := execCtx(context)
	var rv *returnValue
	if core.Truthy(v.eval(stmt.Condition, ctx)) {
		rv = v.visitAllStatements(stmt.TrueCase, ctx)
	} else {
		rv = v.visitAllStatements(stmt.FalseCase, ctx)
	}
	if rv != nil {
		return rv
	}
	return nil
}

func (v *statementInterpreter) createFunction(params []*FnParam, body []OutputStatement, defCtx *executionContext) func(...interface{}) interface{} {
	return func(args ...interface{}) interface{} {
		ctx := newExecutionContext(defCtx, defCtx.reflector)
		for i, p := range params {
			var a interface{}
			if i < len(args) {
				a = args[i]
			}
			ctx.vars[p.Name] = a
		}
		if rv := v.visitAllStatements(body, ctx); rv != nil {
			return rv.value
		}
		return nil
	}
}

func (v *statementInterpreter) eval(expr OutputExpression, ctx *executionContext) interface{} {
	return expr.VisitExpression(v, ctx)
}

func (v *statementInterpreter) evalAll(exprs []OutputExpression, ctx *executionContext) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = v.eval(e, ctx)
	}
	return out
}

func (v *statementInterpreter) VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{} {
	ctx := execCtx(context)
	owner, ok := ctx.lookup(ast.Name)
	if !ok {
		panic(core.NewRuntimeError("Not declared variable %s", ast.Name))
	}
	return owner.vars[ast.Name]
}

func (v *statementInterpreter) VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{} {
	return ast.Value
}

func (v *statementInterpreter) VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{} {
	return execCtx(context).reflector.ResolveExternalReference(ast.Value)
}

func (v *statementInterpreter) VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{} {
	ctx := execCtx(context)
	if core.Truthy(v.eval(ast.Condition, ctx)) {
		return v.eval(ast.TrueCase, ctx)
	}
	return v.eval(ast.FalseCase, ctx)
}

func (v *statementInterpreter) VisitNotExpr(ast *NotExpr, context interface{}) interface{} {
	return !core.Truthy(v.eval(ast.Condition, execCtx(context)))
}

func (v *statementInterpreter) VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{} {
	return v.createFunction(ast.Params, ast.Statements, execCtx(context))
}

func (v *statementInterpreter) VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{} {
	n := core.ToNumber(v.eval(ast.Expr, execCtx(context)))
	switch ast.Operator {
	case UnaryOperatorMinus:
		return -n
	case UnaryOperatorPlus:
		return n
	}
	panic(core.NewRuntimeError("Unknown operator %d", ast.Operator))
}

func (v *statementInterpreter) VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{} {
	ctx := execCtx(context)
	switch ast.Operator {
	case BinaryOperatorAssign:
		return v.assign(ast.Lhs, v.eval(ast.Rhs, ctx), ctx)
	case BinaryOperatorAnd:
		l := v.eval(ast.Lhs, ctx)
		if !core.Truthy(l) {
			return l
		}
		return v.eval(ast.Rhs, ctx)
	case BinaryOperatorOr:
		l := v.eval(ast.Lhs, ctx)
		if core.Truthy(l) {
			return l
		}
		return v.eval(ast.Rhs, ctx)
	case BinaryOperatorNullishCoalesce:
		if l := v.eval(ast.Lhs, ctx); l != nil {
			return l
		}
		return v.eval(ast.Rhs, ctx)
	}

	l, r := v.eval(ast.Lhs, ctx), v.eval(ast.Rhs, ctx)
	switch ast.Operator {
	case BinaryOperatorEquals:
		return core.LooseEqual(l, r)
	case BinaryOperatorNotEquals:
		return !core.LooseEqual(l, r)
	case BinaryOperatorIdentical:
		return core.Identical(l, r)
	case BinaryOperatorNotIdentical:
		return !core.Identical(l, r)
	case BinaryOperatorPlus:
		_, ls := l.(string)
		_, rs := r.(string)
		if ls || rs {
			return core.Stringify(l) + core.Stringify(r)
		}
		return core.ToNumber(l) + core.ToNumber(r)
	case BinaryOperatorMinus:
		return core.ToNumber(l) - core.ToNumber(r)
	case BinaryOperatorMultiply:
		return core.ToNumber(l) * core.ToNumber(r)
	case BinaryOperatorDivide:
		return core.ToNumber(l) / core.ToNumber(r)
	case BinaryOperatorModulo:
		return math.Mod(core.ToNumber(l), core.ToNumber(r))
	case BinaryOperatorBitwiseAnd:
		return float64(int64(core.ToNumber(l)) & int64(core.ToNumber(r)))
	case BinaryOperatorLower, BinaryOperatorLowerEquals, BinaryOperatorBigger, BinaryOperatorBiggerEquals:
		return compare(ast.Operator, l, r)
	}
	panic(core.NewRuntimeError("Unknown operator %d", ast.Operator))
}

func compare(op BinaryOperator, l, r interface{}) bool {
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		switch op {
		case BinaryOperatorLower:
			return ls < rs
		case BinaryOperatorLowerEquals:
			return ls <= rs
		case BinaryOperatorBigger:
			return ls > rs
		default:
			return ls >= rs
		}
	}
	a, b := core.ToNumber(l), core.ToNumber(r)
	switch op {
	case BinaryOperatorLower:
		return a < b
	case BinaryOperatorLowerEquals:
		return a <= b
	case BinaryOperatorBigger:
		return a > b
	default:
		return a >= b
	}
}

func (v *statementInterpreter) assign(target OutputExpression, value interface{}, ctx *executionContext) interface{} {
	switch t := target.(type) {
	case *ReadVarExpr:
		owner, ok := ctx.lookup(t.Name)
		if !ok {
			panic(core.NewRuntimeError("Not declared variable %s", t.Name))
		}
		owner.vars[t.Name] = value
	case *ReadPropExpr:
		recv := v.eval(t.Receiver, ctx)
		if err := core.SetProperty(recv, t.Name, value); err != nil {
			panic(core.NewRuntimeError("%v", err))
		}
	case *ReadKeyExpr:
		recv := v.eval(t.Receiver, ctx)
		setKey(recv, v.eval(t.Index, ctx), value)
	default:
		panic(core.NewRuntimeError("Invalid assignment target %T", target))
	}
	return value
}

func setKey(obj, key, value interface{}) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() != reflect.Struct {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		kv, err := core.ConvertValue(key, rv.Type().Key())
		if err == nil {
			var ev reflect.Value
			if ev, err = core.ConvertValue(value, rv.Type().Elem()); err == nil {
				rv.SetMapIndex(kv, ev)
				return
			}
		}
		panic(core.NewRuntimeError("%v", err))
	case reflect.Slice:
		i := int(core.ToNumber(key))
		if i < 0 || i >= rv.Len() {
			panic(core.NewRuntimeError("index %d out of range", i))
		}
		ev, err := core.ConvertValue(value, rv.Type().Elem())
		if err != nil {
			panic(core.NewRuntimeError("%v", err))
		}
		rv.Index(i).Set(ev)
		return
	}
	if err := core.SetProperty(obj, core.Stringify(key), value); err != nil {
		panic(core.NewRuntimeError("%v", err))
	}
}

func (v *statementInterpreter) VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{} {
	recv := v.eval(ast.Receiver, execCtx(context))
	if recv == nil {
		panic(core.NewRuntimeError("Cannot read properties of null (reading '%s')", ast.Name))
	}
	value, _ := core.GetProperty(recv, ast.Name)
	return value
}

func (v *statementInterpreter) VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{} {
	ctx := execCtx(context)
	recv := v.eval(ast.Receiver, ctx)
	if recv == nil {
		panic(core.NewRuntimeError("Cannot read properties of null"))
	}
	return core.GetKey(recv, v.eval(ast.Index, ctx))
}

func (v *statementInterpreter) VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{} {
	ctx := execCtx(context)
	var fn interface{}
	if prop, ok := ast.Fn.(*ReadPropExpr); ok {
		recv := v.eval(prop.Receiver, ctx)
		if recv == nil {
			panic(core.NewRuntimeError("Cannot read properties of null (reading '%s')", prop.Name))
		}
		m, ok := core.GetProperty(recv, prop.Name)
		if !ok {
			panic(core.NewRuntimeError("%s is not a function", prop.Name))
		}
		fn = m
	} else {
		fn = v.eval(ast.Fn, ctx)
	}
	return core.CallFunc(fn, v.evalAll(ast.Args, ctx)...)
}

func (v *statementInterpreter) VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{} {
	return v.evalAll(ast.Entries, execCtx(context))
}

func (v *statementInterpreter) VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{} {
	ctx := execCtx(context)
	out := make(map[string]interface{}, len(ast.Entries))
	for _, e := range ast.Entries {
		out[e.Key] = v.eval(e.Value, ctx)
	}
	return out
}
