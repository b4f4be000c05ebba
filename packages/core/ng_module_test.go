package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/core"
)

type engine struct{ Power int }

type car struct {
	Engine *engine
	Brand  any
}

var (
	engineType = core.NewType("Engine", func(...any) any { return &engine{Power: 100} })
	carType    = core.NewType("Car", func(deps ...any) any {
		return &car{Engine: deps[0].(*engine), Brand: deps[1]}
	}, engineType, []any{core.DepFlagsOptional, "brand"})
	moduleType = core.NewType("GarageModule", nil)
)

func factory(providers ...any) *core.NgModuleFactory {
	return core.CreateModuleFactory(moduleType, nil, func(any) *core.NgModuleDefinition {
		return core.ModuleDef(providers)
	})
}

func TestNgModuleRef(t *testing.T) {
	t.Run("should instantiate class providers once with their deps", func(t *testing.T) {
		ref, err := factory(
			core.ModuleProviderDef(core.TypeClassProvider, engineType, engineType, nil),
			core.ModuleProviderDef(core.TypeClassProvider, carType, carType, carType.Deps),
		).Create(nil)
		require.NoError(t, err)

		c1, err := ref.Get(carType)
		require.NoError(t, err)
		c2, err := ref.Get(carType)
		require.NoError(t, err)
		assert.Same(t, c1, c2)
		assert.Equal(t, 100, c1.(*car).Engine.Power)
		assert.Nil(t, c1.(*car).Brand)
	})

	t.Run("should support value, factory and existing providers", func(t *testing.T) {
		ref, err := factory(
			core.ModuleProviderDef(core.TypeValueProvider, "brand", "acme", nil),
			core.ModuleProviderDef(core.TypeFactoryProvider, "label", func(brand string, n float64) string {
				return brand + "!"
			}, []any{"brand", []any{core.DepFlagsValue, 3}}),
			core.ModuleProviderDef(core.TypeUseExistingProvider, "alias", "label", nil),
		).Create(nil)
		require.NoError(t, err)

		v, err := ref.Get("alias")
		require.NoError(t, err)
		assert.Equal(t, "acme!", v)
	})

	t.Run("should let later providers override earlier ones", func(t *testing.T) {
		ref, err := factory(
			core.ModuleProviderDef(core.TypeValueProvider, "brand", "first", nil),
			core.ModuleProviderDef(core.TypeValueProvider, "brand", "second", nil),
		).Create(nil)
		require.NoError(t, err)
		v, err := ref.Get("brand")
		require.NoError(t, err)
		assert.Equal(t, "second", v)
	})

	t.Run("should resolve skip-self deps from the parent", func(t *testing.T) {
		parent, err := factory(core.ModuleProviderDef(core.TypeValueProvider, "brand", "parent", nil)).Create(nil)
		require.NoError(t, err)
		child, err := factory(
			core.ModuleProviderDef(core.TypeValueProvider, "brand", "child", nil),
			core.ModuleProviderDef(core.TypeFactoryProvider, "inherited", func(b string) string { return b },
				[]any{[]any{core.DepFlagsSkipSelf, "brand"}}),
		).Create(parent)
		require.NoError(t, err)

		v, err := child.Get("inherited")
		require.NoError(t, err)
		assert.Equal(t, "parent", v)
		self, err := child.Get(core.InjectorToken)
		require.NoError(t, err)
		assert.Same(t, child, self)
	})

	t.Run("should report missing and cyclic providers", func(t *testing.T) {
		a := core.NewInjectionToken("A")
		b := core.NewInjectionToken("B")
		ref, err := factory(
			core.ModuleProviderDef(core.TypeUseExistingProvider, a, b, nil),
			core.ModuleProviderDef(core.TypeUseExistingProvider, b, a, nil),
		).Create(nil)
		require.NoError(t, err)

		_, err = ref.Get("nothing")
		assert.EqualError(t, err, "No provider for nothing!")
		_, err = ref.Get(a)
		assert.EqualError(t, err, "Cannot instantiate cyclic dependency! InjectionToken A")
	})
}

func TestModuleFactoryRegistry(t *testing.T) {
	t.Run("should replace factories registered under the same id", func(t *testing.T) {
		first, second := factory(), factory()
		core.RegisterModuleFactory("garage", first)
		core.RegisterModuleFactory("garage", second)
		got, err := core.GetModuleFactory("garage")
		require.NoError(t, err)
		assert.Same(t, second, got)
	})

	t.Run("should fail for unknown ids", func(t *testing.T) {
		_, err := core.GetModuleFactory("nowhere")
		assert.EqualError(t, err, "No module with ID nowhere loaded")
	})
}

func TestRendererType2(t *testing.T) {
	t.Run("should degrade emulated encapsulation without styles", func(t *testing.T) {
		rt := core.CreateRendererType2(int(core.ViewEncapsulationEmulated), nil, nil)
		assert.Equal(t, core.ViewEncapsulationNone, rt.Encapsulation)
		assert.Empty(t, rt.ContentAttribute())
	})

	t.Run("should scope styles to the renderer id", func(t *testing.T) {
		rt := core.CreateRendererType2(int(core.ViewEncapsulationEmulated),
			[]any{"a[_ngcontent-%COMP%] {}", []any{"b[_nghost-%COMP%] {}"}}, nil)
		assert.Equal(t, []string{
			"a[_ngcontent-" + rt.ID + "] {}",
			"b[_nghost-" + rt.ID + "] {}",
		}, rt.ResolvedStyles())
		assert.Equal(t, "_ngcontent-"+rt.ID, rt.ContentAttribute())
		assert.Equal(t, "_nghost-"+rt.ID, rt.HostAttribute())

		other := core.CreateRendererType2(int(core.ViewEncapsulationNone), []any{"c {}"}, nil)
		assert.NotEqual(t, rt.ID, other.ID)
		assert.Empty(t, other.HostAttribute())
	})

	t.Run("should update shared holders in place", func(t *testing.T) {
		holder := &core.RendererType2{}
		compiled := core.CreateRendererType2(int(core.ViewEncapsulationShadowDom), []any{"x {}"}, nil)
		holder.CopyFrom(compiled)
		assert.Equal(t, compiled.ID, holder.ID)
		assert.Equal(t, core.ViewEncapsulationShadowDom, holder.Encapsulation)
	})

	t.Run("should parse encapsulation names", func(t *testing.T) {
		enc, err := core.ParseViewEncapsulation("emulated")
		require.NoError(t, err)
		assert.Equal(t, core.ViewEncapsulationEmulated, enc)
		_, err = core.ParseViewEncapsulation("native")
		assert.Error(t, err)
	})
}
