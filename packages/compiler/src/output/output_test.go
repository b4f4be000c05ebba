package output_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/core"
)

type runtimeReflector struct{}

func (runtimeReflector) ResolveExternalReference(ref *o.ExternalReference) interface{} {
	return ref.Runtime
}

type counter struct {
	Count int
	Label string `ng:"title"`
	calls int
}

func (c *counter) Inc() {
	c.calls++
}

func backends() map[string]o.Backend {
	return map[string]o.Backend{
		"interpreter": o.NewInterpreter(),
		"jit":         o.NewJitEvaluator(),
	}
}

func exported(name string, value o.OutputExpression) o.OutputStatement {
	return o.NewDeclareVarStmt(name, value, o.StmtModifierExported|o.StmtModifierFinal, nil)
}

func TestEmitter(t *testing.T) {
	t.Run("should print declarations, functions and conditionals", func(t *testing.T) {
		stmts := []o.OutputStatement{
			o.NewDeclareFunctionStmt("App_Template", []*o.FnParam{o.NewFnParam("rf"), o.NewFnParam("ctx")}, []o.OutputStatement{
				o.NewIfStmt(o.Binary(o.BinaryOperatorBitwiseAnd, o.Variable("rf"), o.Literal(1)), []o.OutputStatement{
					o.ToStmt(o.Call(o.ImportExpr(&o.ExternalReference{Name: "ɵɵtext"}), o.Literal(0), o.Literal("hi"))),
				}, nil, nil),
			}, o.StmtModifierNone, nil),
			exported("styles_App", o.LiteralArr(o.Literal("a[_ngcontent-%COMP%] {}"))),
			exported("x", o.NewConditionalExpr(o.NewNotExpr(o.Prop(o.Variable("ctx"), "$implicit"), nil), o.Literal(true), nil, nil)),
		}
		want := "function App_Template(rf,ctx) {\n" +
			"  if (rf & 1) { ɵɵtext(0,'hi'); }\n" +
			"}\n" +
			"var styles_App = ['a[_ngcontent-%COMP%] {}'];\n" +
			"var x = (!ctx.$implicit? true: null);"
		if diff := cmp.Diff(want, o.EmitStatements(stmts)); diff != "" {
			t.Errorf("EmitStatements() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should escape strings and quote odd property names", func(t *testing.T) {
		src := o.EmitStatements([]o.OutputStatement{
			o.ToStmt(o.Prop(o.Variable("a"), "data-x")),
			o.ToStmt(o.Literal("it's\n")),
			o.ToStmt(o.Literal("")),
		})
		assert.Equal(t, "a['data-x'];\n'it\\'s\\n';\n'';", src)
	})

	t.Run("should bind each external value to one parameter", func(t *testing.T) {
		double := func(x int) int { return x * 2 }
		ref := &o.ExternalReference{Name: "double", Runtime: double}
		v := o.NewJitEmitterVisitor(runtimeReflector{})
		ctx := o.CreateRootEmitterVisitorContext()
		v.VisitAllStatements([]o.OutputStatement{
			o.ToStmt(o.Call(o.ImportExpr(ref), o.Literal(1))),
			o.ToStmt(o.Call(o.ImportExpr(ref), o.Literal(2))),
		}, ctx)
		assert.Equal(t, "jit_double_0(1);\njit_double_0(2);", ctx.ToSource())
		assert.Len(t, v.GetArgs(), 1)
	})
}

func TestBackends(t *testing.T) {
	for name, backend := range backends() {
		backend := backend
		t.Run(name, func(t *testing.T) {
			t.Run("should return exported declarations", func(t *testing.T) {
				add := o.NewFunctionExpr([]*o.FnParam{o.NewFnParam("a"), o.NewFnParam("b")}, []o.OutputStatement{
					o.Return(o.Binary(o.BinaryOperatorPlus, o.Variable("a"), o.Variable("b"))),
				}, "", nil)
				res, err := backend.Execute("ng:///sum.js", []o.OutputStatement{
					add.ToDeclStmt("add", o.StmtModifierNone),
					o.NewDeclareVarStmt("hidden", o.Literal(1), o.StmtModifierNone, nil),
					exported("sum", o.Call(o.Variable("add"), o.Literal(1), o.Literal(2))),
					exported("greeting", o.Binary(o.BinaryOperatorPlus, o.Literal("n="), o.Literal(3))),
				}, runtimeReflector{})
				require.NoError(t, err)
				assert.Len(t, res, 2)
				assert.Equal(t, 3.0, core.ToNumber(res["sum"]))
				assert.Equal(t, "n=3", res["greeting"])
			})

			t.Run("should pass generated functions to Go callbacks", func(t *testing.T) {
				apply := func(fn func(int) int, x int) int { return fn(x) }
				res, err := backend.Execute("ng:///apply.js", []o.OutputStatement{
					exported("r", o.Call(o.ImportExpr(&o.ExternalReference{Name: "apply", Runtime: apply}),
						o.NewFunctionExpr([]*o.FnParam{o.NewFnParam("x")}, []o.OutputStatement{
							o.Return(o.Binary(o.BinaryOperatorMultiply, o.Variable("x"), o.Literal(2))),
						}, "twice", nil),
						o.Literal(21))),
				}, runtimeReflector{})
				require.NoError(t, err)
				assert.Equal(t, 42.0, core.ToNumber(res["r"]))
			})

			t.Run("should read, write and call template-visible members", func(t *testing.T) {
				c := &counter{Count: 1, Label: "clicks"}
				ext := o.ImportExpr(&o.ExternalReference{Name: "counter", Runtime: c})
				res, err := backend.Execute("ng:///members.js", []o.OutputStatement{
					o.ToStmt(o.Prop(ext, "count").Set(o.Binary(o.BinaryOperatorPlus, o.Prop(ext, "count"), o.Literal(1)))),
					o.ToStmt(o.Call(o.Prop(ext, "inc"))),
					exported("title", o.Prop(ext, "title")),
					exported("short", o.Binary(o.BinaryOperatorAnd, o.Literal(nil), o.Prop(ext, "title"))),
				}, runtimeReflector{})
				require.NoError(t, err)
				assert.Equal(t, 2, c.Count)
				assert.Equal(t, 1, c.calls)
				assert.Equal(t, "clicks", res["title"])
				assert.Nil(t, res["short"])
			})

			t.Run("should report failures as errors", func(t *testing.T) {
				boom := func() { panic(core.NewRuntimeError("boom")) }
				_, err := backend.Execute("ng:///boom.js", []o.OutputStatement{
					o.ToStmt(o.Call(o.ImportExpr(&o.ExternalReference{Name: "boom", Runtime: boom}))),
				}, runtimeReflector{})
				require.Error(t, err)
				assert.Contains(t, err.Error(), "boom")
			})
		})
	}

	t.Run("interpreter should reject undeclared variables", func(t *testing.T) {
		_, err := o.NewInterpreter().Execute("ng:///x.js", []o.OutputStatement{
			o.ToStmt(o.Variable("nope")),
		}, runtimeReflector{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Not declared variable nope")
	})
}
