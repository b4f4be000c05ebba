package platform_browser_dynamic_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/common"
	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/logging"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/resolver"
	"ngjit-go/packages/compiler/src/util"
	"ngjit-go/packages/core"
	pbd "ngjit-go/packages/platform_browser_dynamic"
)

type hello struct {
	Name string
	Show bool
}

type loader struct {
	compiler any
}

func declare(t *testing.T) (*metadata.Registry, *core.Type, *core.Type, *core.Type) {
	t.Helper()
	reg := metadata.NewRegistry()
	require.NoError(t, common.Declare(reg))
	none := core.ViewEncapsulationNone
	helloType := core.NewType("Hello", func(...any) any { return &hello{Name: "world", Show: true} })
	loaderType := core.NewType("Loader", func(deps ...any) any { return &loader{compiler: deps[0]} }, pbd.CompilerType)
	module := core.NewType("HelloModule", nil)
	require.NoError(t, reg.Component(helloType, metadata.ComponentDecl{
		DirectiveDecl: metadata.DirectiveDecl{Selector: "hello"},
		Template:      `<p *ngIf="show">Hello {{name | titlecase}}</p>`,
		Encapsulation: &none,
	}))
	require.NoError(t, reg.Module(module, metadata.ModuleDecl{
		Declarations: []*core.Type{helloType},
		Imports:      []*core.Type{common.CommonModule},
		Bootstrap:    []*core.Type{helloType},
		Providers:    []core.Provider{{Token: loaderType}},
	}))
	return reg, helloType, loaderType, module
}

func boolPtr(b bool) *bool { return &b }

func TestCreateCompiler(t *testing.T) {
	t.Run("should let later options win over the defaults", func(t *testing.T) {
		reg, _, _, _ := declare(t)
		f := pbd.NewJitCompilerFactory(reg, pbd.WithDefaultOptions(config.CompilerOptions{UseJit: boolPtr(true), PreserveWhitespaces: boolPtr(true)}))

		c, err := f.CreateCompiler()
		require.NoError(t, err)
		assert.True(t, c.Config.UseJit)
		assert.True(t, c.Config.PreserveWhitespaces)

		c, err = f.CreateCompiler(config.CompilerOptions{UseJit: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, c.Config.UseJit)
		assert.True(t, c.Config.PreserveWhitespaces)
	})

	t.Run("should reject unknown encapsulation names", func(t *testing.T) {
		reg, _, _, _ := declare(t)
		bad := "Scoped"
		_, err := pbd.NewJitCompilerFactory(reg).CreateCompiler(config.CompilerOptions{DefaultEncapsulation: &bad})
		assert.Error(t, err)
	})

	for _, useJit := range []bool{false, true} {
		t.Run("should provide the compiler to compiled modules", func(t *testing.T) {
			reg, helloType, loaderType, module := declare(t)
			c, err := pbd.NewJitCompilerFactory(reg).CreateCompiler(config.CompilerOptions{UseJit: boolPtr(useJit)})
			require.NoError(t, err)

			factory, err := c.CompileModuleSync(module)
			require.NoError(t, err)
			moduleRef, err := factory.Create(nil)
			require.NoError(t, err)

			l, err := moduleRef.Get(loaderType)
			require.NoError(t, err)
			assert.Same(t, c, l.(*loader).compiler)

			cf, err := c.GetComponentFactory(helloType)
			require.NoError(t, err)
			ref, err := cf.Create(moduleRef)
			require.NoError(t, err)
			require.NoError(t, ref.DetectChanges())
			assert.Equal(t, "<hello><p>Hello World</p></hello>", ref.Location.HTML())

			ref.Instance.(*hello).Show = false
			require.NoError(t, ref.DetectChanges())
			assert.Equal(t, "<hello></hello>", ref.Location.HTML())
		})
	}

	t.Run("should load resources through the configured loader", func(t *testing.T) {
		reg := metadata.NewRegistry()
		page := core.NewType("Page", func(...any) any { return &hello{Name: "page"} })
		module := core.NewType("PageModule", nil)
		require.NoError(t, reg.Component(page, metadata.ComponentDecl{
			DirectiveDecl: metadata.DirectiveDecl{DeclBase: metadata.DeclBase{ModuleURL: "package:site/page.go"}, Selector: "page"},
			TemplateURL:   "page.html",
		}))
		require.NoError(t, reg.Module(module, metadata.ModuleDecl{Declarations: []*core.Type{page}, Bootstrap: []*core.Type{page}}))

		var buf bytes.Buffer
		c, err := pbd.NewJitCompilerFactory(reg,
			pbd.WithResourceLoader(resolver.StaticResourceLoader{"package:site/page.html": "<b>{{name}}</b>"}),
			pbd.WithLogger(logging.New(&logging.Config{Level: logging.LevelDebug, Format: "text", Output: &buf})),
		).CreateCompiler()
		require.NoError(t, err)

		_, err = c.CompileModuleSync(module)
		assert.ErrorIs(t, err, util.ErrSyncAsync)

		res, err := c.CompileModuleAndAllComponentsAsync(context.Background(), module)
		require.NoError(t, err)
		require.Len(t, res.ComponentFactories, 1)
		ref, err := res.ComponentFactories[0].Create(nil)
		require.NoError(t, err)
		require.NoError(t, ref.DetectChanges())
		assert.Equal(t, "page", ref.Location.TextContent())
		assert.Contains(t, buf.String(), "msg=\"created compiler\"")
	})
}

func TestGetModuleID(t *testing.T) {
	reg, helloType, _, module := declare(t)
	named := core.NewType("NamedModule", nil)
	require.NoError(t, reg.Module(named, metadata.ModuleDecl{ID: "named", Imports: []*core.Type{module}}))
	c, err := pbd.NewJitCompilerFactory(reg).CreateCompiler()
	require.NoError(t, err)

	t.Run("should return the declared id", func(t *testing.T) {
		id, err := c.GetModuleID(named)
		require.NoError(t, err)
		assert.Equal(t, "named", id)
	})

	t.Run("should return an empty id for modules without one", func(t *testing.T) {
		id, err := c.GetModuleID(module)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("should fail for types that are not modules", func(t *testing.T) {
		_, err := c.GetModuleID(helloType)
		assert.ErrorIs(t, err, util.ErrConfiguration)
		assert.ErrorContains(t, err, "Hello is not an NgModule")
	})
}
