package jit_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"ngjit-go/packages/common"
	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/jit"
	"ngjit-go/packages/compiler/src/logging"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/ml_parser"
	"ngjit-go/packages/compiler/src/ng_module_compiler"
	"ngjit-go/packages/compiler/src/resolver"
	"ngjit-go/packages/compiler/src/schema"
	sc "ngjit-go/packages/compiler/src/style_compiler"
	tp "ngjit-go/packages/compiler/src/template_parser"
	"ngjit-go/packages/compiler/src/util"
	vc "ngjit-go/packages/compiler/src/view_compiler"
	"ngjit-go/packages/core"
)

type appCmp struct {
	Title string
	Items []any
}

type childCmp struct {
	Label string
}

var none = core.ViewEncapsulationNone

type app struct {
	reg       *metadata.Registry
	appType   *core.Type
	childType *core.Type
	module    *core.Type
}

// declareApp registers AppModule: App renders a list through NgForOf and passes its title to
// Child.
func declareApp(t *testing.T, id string) *app {
	t.Helper()
	a := &app{
		reg:       metadata.NewRegistry(),
		appType:   core.NewType("App", func(...any) any { return &appCmp{Title: "hello", Items: []any{"a", "b"}} }),
		childType: core.NewType("Child", func(...any) any { return &childCmp{} }),
		module:    core.NewType("AppModule", nil),
	}
	require.NoError(t, common.Declare(a.reg))
	require.NoError(t, a.reg.Component(a.appType, metadata.ComponentDecl{
		DirectiveDecl: metadata.DirectiveDecl{DeclBase: metadata.DeclBase{ModuleURL: "package:app/app.go"}, Selector: "my-app"},
		Template:      `<h1>{{title | uppercase}}</h1><ul><li *ngFor="let item of items; let i = index">{{i}}:{{item}}</li></ul><child-cmp [label]="title"></child-cmp>`,
		Encapsulation: &none,
	}))
	require.NoError(t, a.reg.Component(a.childType, metadata.ComponentDecl{
		DirectiveDecl: metadata.DirectiveDecl{DeclBase: metadata.DeclBase{ModuleURL: "package:app/child.go"}, Selector: "child-cmp", Inputs: []string{"label"}},
		Template:      `<span>{{label}}</span>`,
		Encapsulation: &none,
	}))
	require.NoError(t, a.reg.Module(a.module, metadata.ModuleDecl{
		DeclBase:     metadata.DeclBase{ModuleURL: "package:app/app_module.go"},
		Declarations: []*core.Type{a.appType, a.childType},
		Imports:      []*core.Type{common.CommonModule},
		Bootstrap:    []*core.Type{a.appType},
		ID:           id,
	}))
	return a
}

type options struct {
	useJit bool
	loader resolver.ResourceLoader
	log    logging.Logger
}

func newCompiler(reg *metadata.Registry, opts options) *jit.JitCompiler {
	cfg := config.NewCompilerConfig(config.WithUseJit(opts.useJit))
	summaries := resolver.NewSummaryResolver()
	schemaRegistry := schema.NewDomElementSchemaRegistry()
	return jit.NewJitCompiler(
		resolver.NewCompileMetadataResolver(cfg, reg, opts.loader, summaries, opts.log),
		tp.NewTemplateParser(cfg, expression_parser.NewParser(expression_parser.NewLexer()), schemaRegistry, ml_parser.NewParser()),
		sc.NewStyleCompiler(),
		vc.NewViewCompiler(schemaRegistry),
		ng_module_compiler.NewNgModuleCompiler(),
		summaries,
		jit.NewJitReflector(nil),
		cfg,
		opts.log,
		nil,
	)
}

func bootstrap(t *testing.T, factory *core.NgModuleFactory, component *core.Type) *core.ComponentRef {
	t.Helper()
	moduleRef, err := factory.Create(nil)
	require.NoError(t, err)
	cfr, err := moduleRef.ComponentFactoryResolver()
	require.NoError(t, err)
	cf, err := cfr.ResolveComponentFactory(component)
	require.NoError(t, err)
	ref, err := cf.Create(moduleRef)
	require.NoError(t, err)
	require.NoError(t, ref.DetectChanges())
	return ref
}

var backends = []struct {
	name   string
	useJit bool
}{
	{"interpreter", false},
	{"jit", true},
}

func TestCompileModule(t *testing.T) {
	for _, b := range backends {
		t.Run("should compile and render a module with the "+b.name+" back end", func(t *testing.T) {
			a := declareApp(t, "")
			jc := newCompiler(a.reg, options{useJit: b.useJit})
			factory, err := jc.CompileModuleSync(a.module)
			require.NoError(t, err)
			assert.Equal(t, []*core.Type{a.appType}, factory.Bootstrap)

			ref := bootstrap(t, factory, a.appType)
			assert.Equal(t,
				`<my-app><h1>HELLO</h1><ul><li>0:a</li><li>1:b</li></ul><child-cmp><span>hello</span></child-cmp></my-app>`,
				ref.Location.HTML())

			ref.Instance.(*appCmp).Items = []any{"c"}
			ref.Instance.(*appCmp).Title = "bye"
			require.NoError(t, ref.DetectChanges())
			assert.Equal(t,
				`<my-app><h1>BYE</h1><ul><li>0:c</li></ul><child-cmp><span>bye</span></child-cmp></my-app>`,
				ref.Location.HTML())
		})
	}

	t.Run("should return cached module factories", func(t *testing.T) {
		a := declareApp(t, "")
		jc := newCompiler(a.reg, options{})
		first, err := jc.CompileModuleSync(a.module)
		require.NoError(t, err)
		second, err := jc.CompileModuleSync(a.module)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("should return the factories of all declared components", func(t *testing.T) {
		a := declareApp(t, "")
		jc := newCompiler(a.reg, options{})
		res, err := jc.CompileModuleAndAllComponentsSync(a.module)
		require.NoError(t, err)
		require.Len(t, res.ComponentFactories, 2)
		assert.Same(t, a.appType, res.ComponentFactories[0].ComponentType)
		assert.Same(t, a.childType, res.ComponentFactories[1].ComponentType)

		ref, err := res.ComponentFactories[1].Create(nil)
		require.NoError(t, err)
		require.NoError(t, ref.SetInput("label", "direct"))
		require.NoError(t, ref.DetectChanges())
		assert.Equal(t, `<child-cmp><span>direct</span></child-cmp>`, ref.Location.HTML())
	})

	t.Run("should expose component factories of compiled components", func(t *testing.T) {
		a := declareApp(t, "")
		jc := newCompiler(a.reg, options{})
		_, err := jc.CompileModuleSync(a.module)
		require.NoError(t, err)

		cf, err := jc.GetComponentFactory(a.childType)
		require.NoError(t, err)
		assert.Equal(t, "child-cmp", cf.Selector)

		_, err = jc.GetComponentFactory(common.NgIfType)
		assert.ErrorIs(t, err, util.ErrConfiguration)
		assert.ErrorContains(t, err, "Could not compile 'NgIf' because it is not a component.")
	})

	t.Run("should log compiled modules", func(t *testing.T) {
		var buf bytes.Buffer
		log := logging.New(&logging.Config{Level: logging.LevelDebug, Format: "json", Output: &buf})
		a := declareApp(t, "")
		_, err := newCompiler(a.reg, options{log: log}).CompileModuleSync(a.module)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"msg":"compiled module","component":"jit_compiler","module":"AppModule"`)
		assert.Contains(t, buf.String(), `"msg":"compiled component"`)
	})
}

func TestCompileErrors(t *testing.T) {
	t.Run("should report template errors without caching the template", func(t *testing.T) {
		reg := metadata.NewRegistry()
		broken := core.NewType("Broken", nil)
		module := core.NewType("BrokenModule", nil)
		require.NoError(t, reg.Component(broken, metadata.ComponentDecl{
			DirectiveDecl: metadata.DirectiveDecl{Selector: "broken"},
			Template:      `<div [foo]="x"></div>`,
		}))
		require.NoError(t, reg.Module(module, metadata.ModuleDecl{Declarations: []*core.Type{broken}}))
		jc := newCompiler(reg, options{})

		for i := 0; i < 2; i++ {
			_, err := jc.CompileModuleSync(module)
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrTemplate)
			assert.ErrorContains(t, err, "Can't bind to 'foo' since it isn't a known property of 'div'.")
		}
	})

	t.Run("should require entry components to be declared", func(t *testing.T) {
		reg := metadata.NewRegistry()
		orphan := core.NewType("Orphan", nil)
		module := core.NewType("OrphanModule", nil)
		require.NoError(t, reg.Component(orphan, metadata.ComponentDecl{Template: "x"}))
		require.NoError(t, reg.Module(module, metadata.ModuleDecl{EntryComponents: []*core.Type{orphan}}))
		_, err := newCompiler(reg, options{}).CompileModuleSync(module)
		assert.ErrorContains(t, err, "Component Orphan is not part of any NgModule or the module has not been imported into your module.")
	})
}

func TestCompileModuleAsync(t *testing.T) {
	declare := func(t *testing.T) (*metadata.Registry, *core.Type, *core.Type) {
		reg := metadata.NewRegistry()
		card := core.NewType("Card", func(...any) any { return &childCmp{Label: "card"} })
		module := core.NewType("CardModule", nil)
		require.NoError(t, reg.Component(card, metadata.ComponentDecl{
			DirectiveDecl: metadata.DirectiveDecl{DeclBase: metadata.DeclBase{ModuleURL: "package:app/card.go"}, Selector: "card"},
			TemplateURL:   "card.html",
			Styles:        []string{"h1 { color: red; }"},
			StyleURLs:     []string{"card.css"},
		}))
		require.NoError(t, reg.Module(module, metadata.ModuleDecl{Declarations: []*core.Type{card}, Bootstrap: []*core.Type{card}}))
		return reg, card, module
	}
	loader := resolver.StaticResourceLoader{
		"package:app/card.html": "<h1>{{label}}</h1>",
		"package:app/card.css":  "@import 'theme.css';\np { margin: 0; }",
		"package:app/theme.css": "body { margin: 1px; }",
	}

	t.Run("should refuse to load resources synchronously", func(t *testing.T) {
		reg, _, module := declare(t)
		_, err := newCompiler(reg, options{loader: loader}).CompileModuleSync(module)
		assert.ErrorIs(t, err, util.ErrSyncAsync)
		assert.EqualError(t, err, "Can't compile synchronously as Card is still being loaded!")
	})

	for _, b := range backends {
		t.Run("should load templates and nested stylesheets with the "+b.name+" back end", func(t *testing.T) {
			reg, card, module := declare(t)
			jc := newCompiler(reg, options{useJit: b.useJit, loader: loader})
			factory, err := jc.CompileModuleAsync(context.Background(), module)
			require.NoError(t, err)

			ref := bootstrap(t, factory, card)
			assert.Equal(t, "card", ref.Location.Find("h1").TextContent())

			styles := ref.Styles()
			require.Len(t, styles, 3)
			assert.Regexp(t, `^h1\[_ngcontent-c\d+\] \{ color: red; \}$`, styles[0])
			assert.Regexp(t, `p\[_ngcontent-c\d+\] \{ margin: 0; \}`, styles[1])
			assert.Regexp(t, `body\[_ngcontent-c\d+\] \{ margin: 1px; \}`, styles[2])
			assert.False(t, strings.Contains(strings.Join(styles, ""), "%COMP%"))
		})
	}

	t.Run("should fail with the loader error", func(t *testing.T) {
		reg, _, module := declare(t)
		_, err := newCompiler(reg, options{loader: resolver.StaticResourceLoader{}}).CompileModuleAsync(context.Background(), module)
		assert.ErrorContains(t, err, "resource package:app/card.html not found")
	})

	t.Run("should report stylesheet cycles", func(t *testing.T) {
		reg, _, module := declare(t)
		cyclic := resolver.StaticResourceLoader{
			"package:app/card.html": "<h1></h1>",
			"package:app/card.css":  "@import 'theme.css';",
			"package:app/theme.css": "@import 'card.css';",
		}
		_, err := newCompiler(reg, options{loader: cyclic}).CompileModuleAsync(context.Background(), module)
		assert.ErrorIs(t, err, util.ErrStyleCycle)
		assert.ErrorContains(t, err, "package:app/card.css -> package:app/theme.css -> package:app/card.css")
	})
}

type shoutPipe struct{}

func (shoutPipe) Transform(value any, _ ...any) any {
	return strings.ToUpper(value.(string)) + "!"
}

func TestClearCache(t *testing.T) {
	shout := core.NewType("ShoutPipe", func(...any) any { return shoutPipe{} })
	loads := 0
	summaries := &metadata.SummaryProvider{Name: "shout", Load: func() []any {
		loads++
		return []any{&metadata.Summary{Type: shout, Pipe: &metadata.CompilePipeMetadata{Type: shout, Name: "shout", Pure: true}}}
	}}
	declare := func(t *testing.T) (*metadata.Registry, *core.Type, *core.Type) {
		reg := metadata.NewRegistry()
		greet := core.NewType("Greet", func(...any) any { return &childCmp{Label: "hi"} })
		module := core.NewType("GreetModule", nil)
		require.NoError(t, reg.Component(greet, metadata.ComponentDecl{
			DirectiveDecl: metadata.DirectiveDecl{Selector: "greet"},
			Template:      `{{label | shout}}`,
		}))
		require.NoError(t, reg.Module(module, metadata.ModuleDecl{
			Declarations: []*core.Type{greet, shout},
			Bootstrap:    []*core.Type{greet},
		}))
		return reg, greet, module
	}

	t.Run("should recompile everything but precompiled summaries after a clear", func(t *testing.T) {
		loads = 0
		reg, greet, module := declare(t)
		jc := newCompiler(reg, options{})
		jc.LoadAotSummaries(summaries)
		assert.True(t, jc.HasAotSummary(shout))

		first, err := jc.CompileModuleSync(module)
		require.NoError(t, err)
		firstCF, err := jc.GetComponentFactory(greet)
		require.NoError(t, err)
		assert.Equal(t, "HI!", bootstrap(t, first, greet).Location.TextContent())

		jc.ClearCache()
		jc.LoadAotSummaries(summaries)
		assert.Equal(t, 1, loads)
		assert.True(t, jc.HasAotSummary(shout))

		second, err := jc.CompileModuleSync(module)
		require.NoError(t, err)
		secondCF, err := jc.GetComponentFactory(greet)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.NotSame(t, firstCF, secondCF)
		assert.Equal(t, "HI!", bootstrap(t, second, greet).Location.TextContent())
	})

	t.Run("should recompile a cleared module", func(t *testing.T) {
		reg, _, module := declare(t)
		jc := newCompiler(reg, options{})
		jc.LoadAotSummaries(summaries)
		first, err := jc.CompileModuleSync(module)
		require.NoError(t, err)
		jc.ClearCacheFor(module)
		second, err := jc.CompileModuleSync(module)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})

	t.Run("should answer summary queries while other goroutines compile", func(t *testing.T) {
		reg, _, module := declare(t)
		jc := newCompiler(reg, options{})
		jc.LoadAotSummaries(summaries)

		var g errgroup.Group
		for i := 0; i < 4; i++ {
			g.Go(func() error {
				_, err := jc.CompileModuleSync(module)
				return err
			})
			g.Go(func() error {
				if !jc.HasAotSummary(shout) {
					return fmt.Errorf("summary of %s missing", shout.Name)
				}
				jc.ClearCacheFor(module)
				return nil
			})
		}
		require.NoError(t, g.Wait())
	})

	for _, b := range backends {
		t.Run("should recompile only a cleared component with the "+b.name+" back end", func(t *testing.T) {
			a := declareApp(t, "")
			jc := newCompiler(a.reg, options{useJit: b.useJit})
			factory, err := jc.CompileModuleSync(a.module)
			require.NoError(t, err)
			appCF, err := jc.GetComponentFactory(a.appType)
			require.NoError(t, err)
			childCF, err := jc.GetComponentFactory(a.childType)
			require.NoError(t, err)

			again, err := jc.CompileModuleSync(a.module)
			require.NoError(t, err)
			assert.Same(t, factory, again)
			sameCF, err := jc.GetComponentFactory(a.childType)
			require.NoError(t, err)
			assert.Same(t, childCF, sameCF)

			jc.ClearCacheFor(a.childType)
			again, err = jc.CompileModuleSync(a.module)
			require.NoError(t, err)
			assert.Same(t, factory, again)
			newChildCF, err := jc.GetComponentFactory(a.childType)
			require.NoError(t, err)
			assert.NotSame(t, childCF, newChildCF)
			newAppCF, err := jc.GetComponentFactory(a.appType)
			require.NoError(t, err)
			assert.Same(t, appCF, newAppCF)

			ref := bootstrap(t, again, a.appType)
			assert.Equal(t, `<child-cmp><span>hello</span></child-cmp>`, ref.Location.Find("child-cmp").HTML())
		})
	}
}

func TestModuleIDs(t *testing.T) {
	t.Run("should let the last module registered under an id win", func(t *testing.T) {
		first := declareApp(t, "shared-id")
		second := declareApp(t, "shared-id")

		f1, err := newCompiler(first.reg, options{}).CompileModuleSync(first.module)
		require.NoError(t, err)
		f2, err := newCompiler(second.reg, options{useJit: true}).CompileModuleSync(second.module)
		require.NoError(t, err)

		got, err := core.GetModuleFactory("shared-id")
		require.NoError(t, err)
		assert.Same(t, f2, got)
		assert.NotSame(t, f1, got)
	})
}
