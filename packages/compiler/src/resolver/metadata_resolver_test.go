package resolver_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/resolver"
	"ngjit-go/packages/compiler/src/util"
	"ngjit-go/packages/core"
)

type fixture struct {
	reg *metadata.Registry
	res *resolver.CompileMetadataResolver
	sum *resolver.SummaryResolver
}

func newFixture(loader resolver.ResourceLoader) *fixture {
	reg := metadata.NewRegistry()
	sum := resolver.NewSummaryResolver()
	return &fixture{
		reg: reg,
		sum: sum,
		res: resolver.NewCompileMetadataResolver(config.NewCompilerConfig(), reg, loader, sum, nil),
	}
}

func base(url string) metadata.DeclBase {
	return metadata.DeclBase{ModuleURL: url}
}

func TestGetNgModuleMetadata(t *testing.T) {
	var (
		tooltip   = core.NewType("Tooltip", nil)
		internal  = core.NewType("Internal", nil)
		shout     = core.NewType("ShoutPipe", nil)
		shared    = core.NewType("SharedModule", nil)
		app       = core.NewType("App", nil)
		appModule = core.NewType("AppModule", nil)
		svc       = core.NewType("Service", nil)
		sharedSvc = core.NewType("SharedService", nil)
	)
	setup := func(t *testing.T) *fixture {
		f := newFixture(nil)
		require.NoError(t, f.reg.Directive(tooltip, metadata.DirectiveDecl{DeclBase: base("package:shared"), Selector: "[tooltip]", Inputs: []string{"text: tooltip"}}))
		require.NoError(t, f.reg.Directive(internal, metadata.DirectiveDecl{DeclBase: base("package:shared"), Selector: "[internal]"}))
		require.NoError(t, f.reg.Pipe(shout, metadata.PipeDecl{DeclBase: base("package:shared"), Name: "shout"}))
		require.NoError(t, f.reg.Module(shared, metadata.ModuleDecl{
			DeclBase:     base("package:shared"),
			Declarations: []*core.Type{tooltip, internal, shout},
			Exports:      []*core.Type{tooltip, shout},
			Providers:    []core.Provider{{Token: sharedSvc}},
		}))
		require.NoError(t, f.reg.Component(app, metadata.ComponentDecl{
			DirectiveDecl: metadata.DirectiveDecl{DeclBase: base("package:app"), Selector: "my-app"},
			Template:      "<p tooltip></p>",
		}))
		require.NoError(t, f.reg.Module(appModule, metadata.ModuleDecl{
			DeclBase:     base("package:app"),
			Declarations: []*core.Type{app},
			Imports:      []*core.Type{shared},
			Bootstrap:    []*core.Type{app},
			Providers:    []core.Provider{{Token: svc}},
			ID:           "app",
		}))
		return f
	}

	t.Run("should collect what imported modules export", func(t *testing.T) {
		f := setup(t)
		m, err := f.res.GetNgModuleMetadata(appModule)
		require.NoError(t, err)

		tm := m.TransitiveModule
		assert.Equal(t, []*core.Type{shared, appModule}, tm.Modules)
		assert.Equal(t, []*core.Type{tooltip, app}, tm.Directives)
		assert.Equal(t, []*core.Type{shout}, tm.Pipes)
		assert.Equal(t, []*core.Type{app}, tm.EntryComponents)
		if diff := cmp.Diff([]any{sharedSvc, svc}, tokens(tm.Providers)); diff != "" {
			t.Errorf("providers mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "app", m.ID)

		again, err := f.res.GetNgModuleMetadata(appModule)
		require.NoError(t, err)
		assert.Same(t, m, again)
	})

	t.Run("should reject imports that are not modules", func(t *testing.T) {
		f := setup(t)
		bad := core.NewType("BadModule", nil)
		require.NoError(t, f.reg.Module(bad, metadata.ModuleDecl{Imports: []*core.Type{tooltip}}))
		_, err := f.res.GetNgModuleMetadata(bad)
		assert.ErrorIs(t, err, util.ErrConfiguration)
		assert.ErrorContains(t, err, "Unexpected value 'Tooltip' imported by the module 'BadModule'")
	})

	t.Run("should reject exports that are neither declared nor imported", func(t *testing.T) {
		f := setup(t)
		bad := core.NewType("BadModule", nil)
		require.NoError(t, f.reg.Module(bad, metadata.ModuleDecl{Exports: []*core.Type{internal}}))
		_, err := f.res.GetNgModuleMetadata(bad)
		assert.ErrorContains(t, err, "Can't export Internal from BadModule as it was neither declared nor imported!")
	})

	t.Run("should parse directive inputs", func(t *testing.T) {
		f := setup(t)
		_, err := f.res.GetNgModuleMetadata(appModule)
		require.NoError(t, err)
		p, err := f.res.LoadDirectiveMetadata(shared, tooltip, true)
		require.NoError(t, err)
		assert.Nil(t, p)
		meta, err := f.res.GetDirectiveMetadata(tooltip)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"tooltip": "text"}, meta.Inputs)
		assert.Equal(t, []string{"tooltip"}, meta.InputOrder)
		assert.False(t, meta.IsComponent)
	})

	t.Run("should give inline components late-bound artifacts", func(t *testing.T) {
		f := setup(t)
		_, err := f.res.LoadDirectiveMetadata(appModule, app, true)
		require.NoError(t, err)
		meta, err := f.res.GetDirectiveMetadata(app)
		require.NoError(t, err)
		require.True(t, meta.IsComponent)
		assert.Equal(t, core.ViewEncapsulationNone, meta.Template.Encapsulation)
		assert.False(t, meta.ComponentViewType.Resolved())
		assert.NotNil(t, meta.RendererType)
		assert.Same(t, app, meta.ComponentFactory.ComponentType)
	})

	t.Run("should fail before a directive is loaded", func(t *testing.T) {
		f := setup(t)
		_, err := f.res.GetDirectiveMetadata(tooltip)
		assert.Error(t, err)
	})

	t.Run("should prefer summaries over declarations", func(t *testing.T) {
		f := setup(t)
		precompiled := &metadata.CompileDirectiveMetadata{Type: tooltip, Selector: "[tip]"}
		f.sum.AddSummary(&metadata.Summary{Type: tooltip, Directive: precompiled})
		p, err := f.res.LoadDirectiveMetadata(shared, tooltip, true)
		require.NoError(t, err)
		assert.Nil(t, p)
		got, err := f.res.GetDirectiveSummary(tooltip)
		require.NoError(t, err)
		assert.Same(t, precompiled, got)
	})
}

func tokens(providers []core.Provider) []any {
	out := make([]any, len(providers))
	for i, p := range providers {
		out[i] = p.Token
	}
	return out
}

func TestLoadDirectiveMetadata(t *testing.T) {
	cmpType := core.NewType("Card", nil)
	module := core.NewType("CardModule", nil)
	declare := func(t *testing.T, f *fixture) {
		require.NoError(t, f.reg.Component(cmpType, metadata.ComponentDecl{
			DirectiveDecl: metadata.DirectiveDecl{DeclBase: base("package:app/card/card.go"), Selector: "card"},
			TemplateURL:   "card.html",
			Styles:        []string{"@import 'inline.css'; p { margin: 0; }"},
			StyleURLs:     []string{"card.css"},
		}))
	}
	loader := resolver.StaticResourceLoader{
		"package:app/card/card.html":      "<p>{{title}}</p>",
		"package:app/card/inline.css":     "i {}",
		"package:app/card/card.css":       "@import 'theme/base.css';\nb {}",
		"package:app/card/theme/base.css": "@import '../card.css';\nbody {}",
	}

	t.Run("should refuse resources in sync mode", func(t *testing.T) {
		f := newFixture(loader)
		declare(t, f)
		_, err := f.res.LoadDirectiveMetadata(module, cmpType, true)
		assert.ErrorIs(t, err, util.ErrSyncAsync)
		assert.EqualError(t, err, "Can't compile synchronously as Card is still being loaded!")
	})

	t.Run("should load the template and every reachable stylesheet once", func(t *testing.T) {
		f := newFixture(loader)
		declare(t, f)
		p, err := f.res.LoadDirectiveMetadata(module, cmpType, false)
		require.NoError(t, err)
		require.NotNil(t, p)

		_, err = f.res.GetDirectiveMetadata(cmpType)
		require.Error(t, err)

		require.NoError(t, p.Load(context.Background()))
		require.NoError(t, p.Finish())

		meta, err := f.res.GetDirectiveMetadata(cmpType)
		require.NoError(t, err)
		tpl := meta.Template
		assert.Equal(t, "<p>{{title}}</p>", tpl.Template)
		assert.Equal(t, core.ViewEncapsulationEmulated, tpl.Encapsulation)
		assert.Equal(t, []string{" p { margin: 0; }"}, tpl.Styles)
		assert.Equal(t, []string{"package:app/card/inline.css", "package:app/card/card.css"}, tpl.StyleURLs)

		var urls []string
		for _, s := range tpl.ExternalStylesheets {
			urls = append(urls, s.ModuleURL)
		}
		assert.Equal(t, []string{
			"package:app/card/inline.css",
			"package:app/card/card.css",
			"package:app/card/theme/base.css",
		}, urls)
		assert.Equal(t, []string{"package:app/card/card.css"}, tpl.ExternalStylesheets[2].StyleURLs)
	})

	t.Run("should report missing resources", func(t *testing.T) {
		f := newFixture(resolver.StaticResourceLoader{})
		declare(t, f)
		p, err := f.res.LoadDirectiveMetadata(module, cmpType, false)
		require.NoError(t, err)
		assert.ErrorContains(t, p.Load(context.Background()), "loading template package:app/card/card.html of Card")
	})

	t.Run("should stop on a cancelled context", func(t *testing.T) {
		f := newFixture(loader)
		declare(t, f)
		p, err := f.res.LoadDirectiveMetadata(module, cmpType, false)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, p.Load(ctx), context.Canceled)
	})

	t.Run("should require a template", func(t *testing.T) {
		f := newFixture(loader)
		empty := core.NewType("Empty", nil)
		require.NoError(t, f.reg.Component(empty, metadata.ComponentDecl{}))
		_, err := f.res.LoadDirectiveMetadata(module, empty, true)
		assert.ErrorContains(t, err, "No template specified for component Empty")
	})
}
