package output

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"ngjit-go/packages/core"
)

// Reflector resolves external references to runtime values.
type Reflector interface {
	ResolveExternalReference(ref *ExternalReference) interface{}
}

// Backend turns a generated program into values. The result holds every exported declaration
// by name.
type Backend interface {
	Execute(sourceURL string, statements []OutputStatement, reflector Reflector) (map[string]interface{}, error)
}

// JitEvaluator emits the program as JavaScript and runs it in an embedded goja runtime.
// Generated functions become Go funcs through goja's function conversion, so the runtime never
// sees JavaScript values.
type JitEvaluator struct{}

// NewJitEvaluator creates a new JitEvaluator
func NewJitEvaluator() *JitEvaluator {
	return &JitEvaluator{}
}

// Execute implements Backend.
func (je *JitEvaluator) Execute(sourceURL string, statements []OutputStatement, reflector Reflector) (map[string]interface{}, error) {
	return je.EvaluateStatements(sourceURL, statements, reflector)
}

// EvaluateStatements emits statements and evaluates them.
func (je *JitEvaluator) EvaluateStatements(sourceURL string, statements []OutputStatement, reflector Reflector) (map[string]interface{}, error) {
	converter := NewJitEmitterVisitor(reflector)
	ctx := CreateRootEmitterVisitorContext()
	converter.VisitAllStatements(statements, ctx)
	converter.CreateReturnStmt(ctx)
	return je.EvaluateCode(sourceURL, ctx, converter.argNames, converter.argValues)
}

// EvaluateCode wraps the emitted source in a function taking the external values as
// parameters, runs it and exports what it returns.
func (je *JitEvaluator) EvaluateCode(sourceURL string, ctx *EmitterVisitorContext, argNames []string, argValues []interface{}) (result map[string]interface{}, err error) {
	src := fmt.Sprintf("(function(%s) {\n\"use strict\";\n%s\n})\n//# sourceURL=%s",
		strings.Join(argNames, ","), ctx.ToSource(), sourceURL)

	prog, err := goja.Compile(sourceURL, src, true)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", sourceURL, err)
	}

	vm := goja.New()
	vm.SetFieldNameMapper(fieldNameMapper{})

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("evaluating %s: %w", sourceURL, e)
		}
	}()

	fnVal, err := vm.RunProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", sourceURL, err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, errors.New("generated program is not a function")
	}
	args := make([]goja.Value, len(argValues))
	for i, a := range argValues {
		args[i] = vm.ToValue(a)
	}
	res, err := je.ExecuteFunction(fn, args)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", sourceURL, err)
	}
	exports, ok := res.Export().(map[string]interface{})
	if !ok {
		return map[string]interface{}{}, nil
	}
	return exports, nil
}

// ExecuteFunction calls the wrapped program.
func (je *JitEvaluator) ExecuteFunction(fn goja.Callable, args []goja.Value) (goja.Value, error) {
	return fn(goja.Undefined(), args...)
}

// fieldNameMapper exposes Go fields and methods under the same names template expressions use
// in the interpreter.
type fieldNameMapper struct{}

func (fieldNameMapper) FieldName(_ reflect.Type, f reflect.StructField) string {
	return core.FieldName(f)
}

func (fieldNameMapper) MethodName(_ reflect.Type, m reflect.Method) string {
	return core.MethodName(m)
}

// JitEmitterVisitor emits JavaScript in which external references are parameters of the
// enclosing function and exported declarations are collected for the return value.
type JitEmitterVisitor struct {
	*AbstractJsEmitterVisitor
	reflector        Reflector
	argNames         []string
	argValues        []interface{}
	argIDs           map[interface{}]int
	evalExportedVars []string
}

// NewJitEmitterVisitor creates a new JitEmitterVisitor
func NewJitEmitterVisitor(reflector Reflector) *JitEmitterVisitor {
	v := &JitEmitterVisitor{
		AbstractJsEmitterVisitor: NewAbstractJsEmitterVisitor(),
		reflector:                reflector,
		argIDs:                   map[interface{}]int{},
	}
	v.setSelf(v)
	return v
}

// CreateReturnStmt emits "return {exported: exported, ...};".
func (jev *JitEmitterVisitor) CreateReturnStmt(ctx *EmitterVisitorContext) {
	entries := make([]*LiteralMapEntry, 0, len(jev.evalExportedVars))
	for _, resultVar := range jev.evalExportedVars {
		entries = append(entries, NewLiteralMapEntry(resultVar, Variable(resultVar), false))
	}
	NewReturnStatement(NewLiteralMapExpr(entries, nil), nil).VisitStatement(jev, ctx)
}

// GetArgs returns the external values by parameter name.
func (jev *JitEmitterVisitor) GetArgs() map[string]interface{} {
	result := make(map[string]interface{}, len(jev.argNames))
	for i, name := range jev.argNames {
		result[name] = jev.argValues[i]
	}
	return result
}

func (jev *JitEmitterVisitor) VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{} {
	ctx := jev.getContext(context)
	value := jev.reflector.ResolveExternalReference(ast.Value)
	jev.emitReferenceToExternal(ast.Value, value, ctx)
	return nil
}

func (jev *JitEmitterVisitor) VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{} {
	if stmt.HasModifier(StmtModifierExported) {
		jev.evalExportedVars = append(jev.evalExportedVars, stmt.Name)
	}
	return jev.AbstractJsEmitterVisitor.VisitDeclareVarStmt(stmt, context)
}

func (jev *JitEmitterVisitor) VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{} {
	if stmt.HasModifier(StmtModifierExported) {
		jev.evalExportedVars = append(jev.evalExportedVars, stmt.Name)
	}
	return jev.AbstractJsEmitterVisitor.VisitDeclareFunctionStmt(stmt, context)
}

func (jev *JitEmitterVisitor) emitReferenceToExternal(ref *ExternalReference, value interface{}, ctx *EmitterVisitorContext) {
	key := identityKey(ref, value)
	id, ok := jev.argIDs[key]
	if !ok {
		id = len(jev.argValues)
		jev.argIDs[key] = id
		jev.argValues = append(jev.argValues, value)
		jev.argNames = append(jev.argNames, fmt.Sprintf("jit_%s_%d", identifierName(ref), id))
	}
	ctx.Print(jev.argNames[id], false)
}

type funcKey struct {
	module, name string
	ptr          uintptr
}

// identityKey is the map key under which value is bound once. Funcs are not comparable, so
// they are keyed by their reference name and code pointer.
func identityKey(ref *ExternalReference, value interface{}) interface{} {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return ref
	}
	if rv.Kind() == reflect.Func {
		return funcKey{module: ref.ModuleName, name: ref.Name, ptr: rv.Pointer()}
	}
	if rv.Type().Comparable() {
		return value
	}
	return ref
}

func identifierName(ref *ExternalReference) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			return r
		}
		return '_'
	}, ref.Name)
	if name == "" {
		return "val"
	}
	return name
}
