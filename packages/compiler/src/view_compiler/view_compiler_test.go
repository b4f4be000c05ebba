package view_compiler_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/common"
	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/identifiers"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/ml_parser"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/pool"
	"ngjit-go/packages/compiler/src/schema"
	tp "ngjit-go/packages/compiler/src/template_parser"
	"ngjit-go/packages/compiler/src/util"
	vc "ngjit-go/packages/compiler/src/view_compiler"
	"ngjit-go/packages/core"
)

const moduleURL = "ngjit-go/test"

func directive(t *core.Type, selector string, inputs ...string) *metadata.CompileDirectiveMetadata {
	m := &metadata.CompileDirectiveMetadata{
		Type:      t,
		ModuleURL: moduleURL,
		Selector:  selector,
		Inputs:    map[string]string{},
	}
	for _, in := range inputs {
		m.Inputs[in] = in
		m.InputOrder = append(m.InputOrder, in)
	}
	return m
}

// component declares a component whose instances are created by newInstance.
func component(name, selector string, newInstance func() any, inputs ...string) *metadata.CompileDirectiveMetadata {
	m := directive(core.NewType(name, func(...any) any { return newInstance() }), selector, inputs...)
	m.IsComponent = true
	m.Template = &metadata.CompileTemplateMetadata{Encapsulation: core.ViewEncapsulationNone}
	m.ComponentViewType = core.NewViewDefinitionRef("View_" + name + "_0")
	return m
}

var (
	ngIf      = directive(common.NgIfType, "[ngIf]", "ngIf", "ngIfElse")
	ngForOf   = directive(common.NgForOfType, "[ngFor][ngForOf]", "ngForOf", "ngForTrackBy")
	uppercase = &metadata.CompilePipeMetadata{Type: common.UpperCasePipeType, Name: "uppercase", Pure: true}
)

type runtimeReflector struct{}

func (runtimeReflector) ResolveExternalReference(ref *o.ExternalReference) interface{} {
	return ref.Runtime
}

func backends() map[string]o.Backend {
	return map[string]o.Backend{
		"interpreter": o.NewInterpreter(),
		"jit":         o.NewJitEvaluator(),
	}
}

type compiled struct {
	outputCtx *pool.OutputContext
	results   map[*metadata.CompileDirectiveMetadata]*vc.ViewCompileResult
	host      *vc.ViewCompileResult
	root      *metadata.CompileDirectiveMetadata
}

func (c *compiled) source() string {
	return o.EmitStatements(c.outputCtx.Program())
}

type templateDecl struct {
	meta     *metadata.CompileDirectiveMetadata
	template string
}

func parseTemplate(comp *metadata.CompileDirectiveMetadata, template string, directives []*metadata.CompileDirectiveMetadata) (*tp.TemplateParseResult, error) {
	parser := tp.NewTemplateParser(
		config.NewCompilerConfig(),
		expression_parser.NewParser(expression_parser.NewLexer()),
		schema.NewDomElementSchemaRegistry(),
		ml_parser.NewParser(),
	)
	return parser.Parse(comp, template, directives, []*metadata.CompilePipeMetadata{uppercase}, nil, comp.Name()+".html", false)
}

// compileAll compiles every component view into one program and the host view of the first.
func compileAll(decls []templateDecl, directives ...*metadata.CompileDirectiveMetadata) (*compiled, error) {
	c := &compiled{
		outputCtx: pool.NewOutputContext("ng:///test.js"),
		results:   map[*metadata.CompileDirectiveMetadata]*vc.ViewCompileResult{},
		root:      decls[0].meta,
	}
	for _, d := range decls {
		directives = append(directives, d.meta)
	}
	compiler := vc.NewViewCompiler(schema.NewDomElementSchemaRegistry())
	for _, d := range decls {
		parsed, err := parseTemplate(d.meta, d.template, directives)
		if err != nil {
			return nil, err
		}
		res, err := compiler.CompileComponent(c.outputCtx, d.meta, parsed.TemplateAst, nil, parsed.UsedPipes)
		if err != nil {
			return nil, err
		}
		c.results[d.meta] = res
	}
	host, err := compiler.CompileHost(c.outputCtx, c.root)
	if err != nil {
		return nil, err
	}
	c.host = host
	return c, nil
}

func compile(t *testing.T, decls ...templateDecl) *compiled {
	t.Helper()
	c, err := compileAll(decls, ngIf, ngForOf)
	require.NoError(t, err)
	return c
}

// run evaluates the program with backend, resolves the view definitions and creates the root
// component.
func (c *compiled) run(t *testing.T, backend o.Backend) *core.ComponentRef {
	t.Helper()
	exports, err := backend.Execute(c.outputCtx.GenFilePath, c.outputCtx.Program(), runtimeReflector{})
	require.NoError(t, err)
	for meta, res := range c.results {
		def, ok := exports[res.ViewClassVar].(*core.ViewDefinition)
		require.True(t, ok, "export %s", res.ViewClassVar)
		meta.ComponentViewType.SetDelegate(def)
	}
	hostDef, ok := exports[c.host.ViewClassVar].(*core.ViewDefinition)
	require.True(t, ok)
	hostView := core.NewViewDefinitionRef(c.host.ViewClassVar)
	hostView.SetDelegate(hostDef)

	ref, err := core.NewComponentFactory(c.root.Selector, c.root.Type, hostView, c.root.Inputs, nil).Create(nil)
	require.NoError(t, err)
	require.NoError(t, ref.DetectChanges())
	return ref
}

type listCmp struct {
	Items []any
	Title string
}

func TestCompileComponent(t *testing.T) {
	t.Run("should emit creation and update blocks", func(t *testing.T) {
		app := component("App", "app", func() any { return &listCmp{} })
		src := compile(t, templateDecl{app, `<div class="a" title="t">{{title}}</div>`}).source()

		assert.Contains(t, src, "var RenderType_App = ɵcrt(1,[],{});")
		assert.Contains(t, src, "function App_Template(rf,ctx) {")
		assert.Contains(t, src, "ɵɵelementStart(0,'div',['class','a','title','t']);")
		assert.Contains(t, src, "ɵɵtext(1,'');")
		assert.Contains(t, src, "ɵɵtextInterpolate(1,'',ctx.title,'');")
		assert.Contains(t, src, "var View_App_0 = ɵvid('App',App_Template,RenderType_App);")
		assert.Contains(t, src, "function App_Host_Template(rf,ctx) {")
	})

	t.Run("should name embedded views after their parent, tag and slot", func(t *testing.T) {
		app := component("App", "app", func() any { return &listCmp{} })
		c := compile(t, templateDecl{app, `<span></span><div *ngFor="let x of items"><b *ngIf="x"></b></div><ng-template [ngIf]="title"></ng-template>`})
		var names []string
		for _, v := range c.results[app].Views {
			names = append(names, v.FnName)
		}
		assert.Equal(t, []string{
			"App_Template",
			"App_div_1_Template",
			"App_div_1_Template_b_1_Template",
			"App_ng_template_2_Template",
		}, names)
		assert.Contains(t, c.source(), "ɵɵtemplate(1,App_div_1_Template,'App_div_1_Template');")
	})

	t.Run("should compile one embedded view per template regardless of item count", func(t *testing.T) {
		app := component("App", "app", func() any { return &listCmp{Items: []any{1, 2}} })
		c := compile(t, templateDecl{app, `<div *ngFor="let x of items">{{x}}</div>`})
		views := c.results[app].Views
		require.Len(t, views, 2)
		assert.Equal(t, "App_div_0_Template", views[1].FnName)
		assert.Equal(t, "App_Template", views[1].Parent)
		assert.Equal(t, 1, views[1].Depth)
		assert.Equal(t, 1, strings.Count(c.source(), "function App_div_0_Template("))

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				ref := c.run(t, backend)
				divs := ref.Location.FindAll("div")
				require.Len(t, divs, 2)
				assert.Equal(t, "1", divs[0].TextContent())
				assert.Equal(t, "2", divs[1].TextContent())
			})
		}
	})

	t.Run("should report writes to template variables", func(t *testing.T) {
		app := component("App", "app", func() any { return &listCmp{} })
		_, err := compileAll([]templateDecl{{app, `<div *ngFor="let x of items" (click)="x = 1"></div>`}}, ngForOf)
		require.Error(t, err)
		var tpe *util.TemplateParseError
		require.True(t, errors.As(err, &tpe))
		assert.Contains(t, err.Error(), `Cannot assign value "1" to template variable "x". Template variables are read-only.`)
	})

	t.Run("should create pipes before the children of their node", func(t *testing.T) {
		app := component("App", "app", func() any { return &listCmp{Title: "hello"} })
		c := compile(t, templateDecl{app, `<p [title]="title | uppercase"><i></i></p>`})
		root := c.results[app].Views[0]
		var ops []string
		for _, in := range root.Create {
			ops = append(ops, fmt.Sprintf("%s:%d", in.Ref.Name, in.Slot))
		}
		assert.Equal(t, []string{"ɵɵelementStart:0", "ɵɵpipe:1", "ɵɵelementStart:2", "ɵɵelementEnd:-1", "ɵɵelementEnd:-1"}, ops)

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				ref := c.run(t, backend)
				assert.Equal(t, "HELLO", ref.Location.Find("p").Props["title"])
			})
		}
	})
}

type pickerCmp struct {
	Groups []any
	Title  string
	picked []string
}

func (p *pickerCmp) Pick(item any, title string) {
	p.picked = append(p.picked, fmt.Sprintf("%s/%s", core.Stringify(item), title))
}

func groups(items ...[]any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = map[string]any{"items": it}
	}
	return out
}

type named struct{ Name string }

type counterCmp struct {
	Calls int
	Empty bool
	Item  *named
}

func (c *counterCmp) Next() any {
	c.Calls++
	if c.Empty {
		return nil
	}
	return &named{Name: "ada"}
}

func TestSafeNavigation(t *testing.T) {
	t.Run("should evaluate a call receiver once per update", func(t *testing.T) {
		counter := &counterCmp{}
		app := component("Counter", "counter", func() any { return counter })
		c := compile(t, templateDecl{app, `<p>{{next()?.name}}</p>`})
		src := c.source()
		assert.Contains(t, src, "var tmp_0;")
		assert.Contains(t, src, "(tmp_0 = ctx.next()) == null")

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				counter.Calls, counter.Empty = 0, false
				ref := c.run(t, backend)
				assert.Equal(t, 1, counter.Calls)
				assert.Equal(t, "ada", ref.Location.Find("p").TextContent())

				counter.Empty = true
				require.NoError(t, ref.DetectChanges())
				assert.Equal(t, 2, counter.Calls)
				assert.Equal(t, "", ref.Location.Find("p").TextContent())
			})
		}
	})

	t.Run("should evaluate a call receiver once in listeners", func(t *testing.T) {
		counter := &counterCmp{}
		app := component("Counter", "counter", func() any { return counter })
		c := compile(t, templateDecl{app, `<button (click)="next()?.name"></button>`})

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				counter.Calls, counter.Empty = 0, false
				ref := c.run(t, backend)
				_, err := ref.Location.Find("button").Dispatch("click", nil)
				require.NoError(t, err)
				assert.Equal(t, 1, counter.Calls)
			})
		}
	})

	t.Run("should read plain receivers in place", func(t *testing.T) {
		app := component("Counter", "counter", func() any { return &counterCmp{Item: &named{Name: "x"}} })
		src := compile(t, templateDecl{app, `<p>{{item?.name}}</p>`}).source()
		assert.NotContains(t, src, "tmp_")
		assert.Contains(t, src, "(ctx.item == null)")
	})
}

func TestContextResolution(t *testing.T) {
	t.Run("should read each name from the nearest declaring view", func(t *testing.T) {
		app := component("App", "app", func() any {
			return &listCmp{Title: "T", Items: []any{
				map[string]any{"inner": []any{
					map[string]any{"name": "b1", "leaves": []any{"x", "y"}},
				}},
			}}
		})
		c := compile(t, templateDecl{app, `<div *ngFor="let a of items"><p *ngFor="let b of a.inner"><span *ngFor="let a of b.leaves">{{a}}-{{b.name}}-{{title}}</span></p></div>`})
		src := c.source()
		assert.Contains(t, src, "var ctx_r0 = ɵɵnextContext(1);")
		assert.Contains(t, src, "var ctx_r1 = ɵɵnextContext(2);")
		assert.Contains(t, src, "ɵɵtextInterpolate(1,'',ctx.$implicit,'-',ctx_r0.$implicit.name,'-',ctx_r1.title,'');")

		views := c.results[app].Views
		require.Len(t, views, 4)
		assert.Equal(t, 3, views[3].Depth)

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				ref := c.run(t, backend)
				var texts []string
				for _, s := range ref.Location.FindAll("span") {
					texts = append(texts, s.TextContent())
				}
				assert.Equal(t, []string{"x-b1-T", "y-b1-T"}, texts)
			})
		}
	})

	t.Run("should re-derive listener contexts after views are rebuilt", func(t *testing.T) {
		picker := &pickerCmp{Title: "root", Groups: groups([]any{"a", "b"})}
		app := component("Picker", "picker", func() any { return picker })
		c := compile(t, templateDecl{app, `<div *ngFor="let group of groups"><button *ngFor="let item of group.items" (click)="pick(item, title)">{{item}}</button></div>`})
		src := c.source()
		assert.Contains(t, src, "var _r0 = ɵɵgetCurrentView();")
		assert.Contains(t, src, "function Picker_div_0_Template_button_1_Template_button_click_0_listener($event) {")
		assert.Contains(t, src, "ɵɵrestoreView(_r0);")

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				picker.Groups = groups([]any{"a", "b"})
				picker.picked = nil
				ref := c.run(t, backend)

				buttons := ref.Location.FindAll("button")
				require.Len(t, buttons, 2)
				_, err := buttons[1].Dispatch("click", nil)
				require.NoError(t, err)

				picker.Groups = nil
				require.NoError(t, ref.DetectChanges())
				require.Empty(t, ref.Location.FindAll("button"))
				picker.Groups = groups([]any{"c"}, []any{"d"})
				picker.Title = "rebuilt"
				require.NoError(t, ref.DetectChanges())

				buttons = ref.Location.FindAll("button")
				require.Len(t, buttons, 2)
				_, err = buttons[1].Dispatch("click", nil)
				require.NoError(t, err)
				assert.Equal(t, []string{"b/root", "d/rebuilt"}, picker.picked)
				picker.Title = "root"
			})
		}
	})

	t.Run("should read template references from listeners", func(t *testing.T) {
		said := ""
		app := component("Greeter", "greeter", func() any {
			return &greeter{say: func(s string) { said = s }}
		})
		c := compile(t, templateDecl{app, `<button (click)="greet(box.name)"></button><input #box>`})
		src := c.source()
		assert.Contains(t, src, "var box_r0 = ɵɵreference(1,-1);")
		assert.Contains(t, src, "return ctx.greet(box_r0.name);")

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				said = ""
				ref := c.run(t, backend)
				_, err := ref.Location.Find("button").Dispatch("click", nil)
				require.NoError(t, err)
				assert.Equal(t, "input", said)
			})
		}
	})

	t.Run("should report references that are declared twice", func(t *testing.T) {
		app := component("App", "app", func() any { return &listCmp{} })
		_, err := compileAll([]templateDecl{{app, `<input #box><input #box>`}})
		require.Error(t, err)
	})
}

type greeter struct {
	say func(string)
}

func (g *greeter) Greet(s string) {
	g.say(s)
}

type childCmp struct {
	Name string
}

func TestComponentTree(t *testing.T) {
	t.Run("should pass inputs to child components", func(t *testing.T) {
		app := component("Parent", "parent", func() any { return &listCmp{Title: "kid"} })
		child := component("Child", "child", func() any { return &childCmp{} }, "name")
		c := compile(t,
			templateDecl{app, `<child [name]="title"></child><child name="static"></child>`},
			templateDecl{child, `<em>{{name}}</em>`},
		)
		src := c.source()
		assert.Contains(t, src, "var _c0 = ['name','name'];")
		assert.Contains(t, src, "ɵɵcomponent(0,Child,_c0,View_Child_0);")
		assert.Contains(t, src, "ɵɵproperty(0,'name',ctx.title);")

		for name, backend := range backends() {
			t.Run(name, func(t *testing.T) {
				ref := c.run(t, backend)
				ems := ref.Location.FindAll("em")
				require.Len(t, ems, 2)
				assert.Equal(t, "kid", ems[0].TextContent())
				assert.Equal(t, "static", ems[1].TextContent())
			})
		}
	})

	t.Run("should render the host element from the selector", func(t *testing.T) {
		app := component("App", "my-app.main[role=main]", func() any { return &listCmp{} })
		src := compile(t, templateDecl{app, `x`}).source()
		assert.Contains(t, src, "ɵɵelementStart(0,'my-app',['class','main','role','main']);")
		assert.Contains(t, src, "var View_App_Host_0 = ɵvid('App_Host',App_Host_Template,null);")
	})
}

func TestInstructionLists(t *testing.T) {
	templates := []string{
		`<div [title]="title" (click)="pick(title)">{{title | uppercase}}</div>`,
		`<ul><li *ngFor="let x of items; let i = index" [class.odd]="i % 2" (click)="pick(x)">{{i}}: {{x}}</li></ul>`,
		`<ng-container *ngIf="title"><b #b [style.width.px]="3">{{b.name}}</b></ng-container>`,
	}
	for _, template := range templates {
		app := component("App", "app", func() any { return &pickerCmp{} })
		c := compile(t, templateDecl{app, template})

		t.Run("should keep creation instructions out of the update block: "+template, func(t *testing.T) {
			for _, view := range c.results[app].Views {
				created := map[int]bool{}
				for _, in := range view.Create {
					assert.True(t, identifiers.CreationInstructions[in.Ref], "%s in creation block of %s", in.Ref.Name, view.FnName)
					if in.Slot >= 0 {
						assert.Less(t, in.Slot, view.Slots)
						created[in.Slot] = true
					}
				}
				for _, in := range view.Update {
					assert.False(t, identifiers.CreationInstructions[in.Ref], "%s in update block of %s", in.Ref.Name, view.FnName)
					if in.Slot >= 0 && in.Ref != identifiers.Reference {
						assert.True(t, created[in.Slot], "%s targets slot %d before creation in %s", in.Ref.Name, in.Slot, view.FnName)
					}
				}
			}
		})

		t.Run("should emit the same program twice: "+template, func(t *testing.T) {
			again := compile(t, templateDecl{app, template})
			assert.Equal(t, c.source(), again.source())
		})
	}
}

func TestGeneratedNames(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("view and listener names are unique", prop.ForAll(
		func(siblings, depth int) bool {
			inner := `<i (click)="pick(x)"></i>`
			for d := 0; d < depth; d++ {
				inner = `<p *ngFor="let x of items" (click)="pick(x)">` + inner + `</p>`
			}
			template := strings.Repeat(`<div *ngIf="title">`+inner+`</div>`, siblings)
			app := component("App", "app", func() any { return &pickerCmp{} })
			c, err := compileAll([]templateDecl{{app, template}}, ngIf, ngForOf)
			if err != nil {
				return false
			}
			seen := map[string]bool{}
			for _, v := range c.results[app].Views {
				if seen[v.FnName] {
					return false
				}
				seen[v.FnName] = true
			}
			src := c.source()
			for name := range seen {
				if strings.Count(src, "function "+name+"(") != 1 {
					return false
				}
			}
			return strings.Count(src, "_listener($event)") == siblings*(depth+1)
		},
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}
