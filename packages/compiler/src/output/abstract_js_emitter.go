package output

import (
	"fmt"
)

// AbstractJsEmitterVisitor prints declarations and functions as ES5.
type AbstractJsEmitterVisitor struct {
	*AbstractEmitterVisitor
}

// NewAbstractJsEmitterVisitor creates a new AbstractJsEmitterVisitor
func NewAbstractJsEmitterVisitor() *AbstractJsEmitterVisitor {
	v := &AbstractJsEmitterVisitor{AbstractEmitterVisitor: NewAbstractEmitterVisitor(false)}
	v.setSelf(v)
	return v
}

func (v *AbstractJsEmitterVisitor) VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print(fmt.Sprintf("var %s", stmt.Name), false)
	if stmt.Value != nil {
		ctx.Print(" = ", false)
		stmt.Value.VisitExpression(v.self, ctx)
	}
	ctx.Println(";")
	return nil
}

func (v *AbstractJsEmitterVisitor) VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	namePart := ""
	if ast.Name != "" {
		namePart = " " + ast.Name
	}
	ctx.Print(fmt.Sprintf("function%s(", namePart), false)
	v.visitParams(ast.Params, ctx)
	ctx.Println(") {")
	ctx.IncIndent()
	v.VisitAllStatements(ast.Statements, ctx)
	ctx.DecIndent()
	ctx.Print("}", false)
	return nil
}

func (v *AbstractJsEmitterVisitor) VisitDeclareFunctionStmt(stmt *DeclareFunctionStmt, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print(fmt.Sprintf("function %s(", stmt.Name), false)
	v.visitParams(stmt.Params, ctx)
	ctx.Println(") {")
	ctx.IncIndent()
	v.VisitAllStatements(stmt.Statements, ctx)
	ctx.DecIndent()
	ctx.Println("}")
	return nil
}

// VisitExternalExpr prints the reference by name. Printed programs are for reading; the JIT
// emitter binds externals to arguments instead.
func (v *AbstractJsEmitterVisitor) VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{} {
	v.getContext(context).Print(ast.Value.Name, false)
	return nil
}

func (v *AbstractJsEmitterVisitor) visitParams(params []*FnParam, ctx *EmitterVisitorContext) {
	visitAllObjects(func(param *FnParam) {
		ctx.Print(param.Name, false)
	}, params, ctx, ",")
}

// EmitStatements prints statements as a JavaScript program.
func EmitStatements(statements []OutputStatement) string {
	ctx := CreateRootEmitterVisitorContext()
	NewAbstractJsEmitterVisitor().VisitAllStatements(statements, ctx)
	return ctx.ToSource()
}
