package core_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/core"
)

type profile struct {
	FirstName string
	Implicit  any `ng:"$implicit"`
	Hidden    int `ng:"-"`
	Tags      []string
}

func (p *profile) Greeting() string { return "hi " + p.FirstName }

func TestGetProperty(t *testing.T) {
	p := &profile{FirstName: "ada", Implicit: 7, Tags: []string{"x", "y"}}

	t.Run("should read fields by template name", func(t *testing.T) {
		v, ok := core.GetProperty(p, "firstName")
		require.True(t, ok)
		assert.Equal(t, "ada", v)
		v, ok = core.GetProperty(p, "$implicit")
		require.True(t, ok)
		assert.Equal(t, 7, v)
		_, ok = core.GetProperty(p, "hidden")
		assert.False(t, ok)
	})

	t.Run("should bind methods", func(t *testing.T) {
		v, ok := core.GetProperty(p, "greeting")
		require.True(t, ok)
		assert.Equal(t, "hi ada", core.CallFunc(v))
	})

	t.Run("should read maps and lengths", func(t *testing.T) {
		v, ok := core.GetProperty(map[string]any{"a": 1}, "a")
		require.True(t, ok)
		assert.Equal(t, 1, v)
		v, ok = core.GetProperty(p.Tags, "length")
		require.True(t, ok)
		assert.Equal(t, 2, v)
		assert.Equal(t, "y", core.GetKey(p.Tags, float64(1)))
		assert.Nil(t, core.GetKey(p.Tags, 5))
	})
}

func TestSetProperty(t *testing.T) {
	t.Run("should convert values to the field type", func(t *testing.T) {
		p := &profile{}
		require.NoError(t, core.SetProperty(p, "tags", []any{"a", "b"}))
		assert.Equal(t, []string{"a", "b"}, p.Tags)
		assert.Error(t, core.SetProperty(p, "missing", 1))
	})

	t.Run("should write map entries", func(t *testing.T) {
		m := map[string]any{}
		require.NoError(t, core.SetProperty(m, "k", "v"))
		assert.Equal(t, "v", m["k"])
	})
}

func TestTemplateSemantics(t *testing.T) {
	t.Run("should follow template truthiness", func(t *testing.T) {
		for _, v := range []any{nil, false, 0, 0.0, math.NaN(), "", []int(nil)} {
			assert.False(t, core.Truthy(v), "%v", v)
		}
		for _, v := range []any{true, 1, -0.5, "0", []int{}, struct{}{}} {
			assert.True(t, core.Truthy(v), "%v", v)
		}
	})

	t.Run("should stringify numbers without trailing zeros", func(t *testing.T) {
		assert.Equal(t, "3", core.Stringify(3.0))
		assert.Equal(t, "2.5", core.Stringify(float32(2.5)))
		assert.Equal(t, "", core.Stringify(nil))
	})

	t.Run("should compare numbers by value", func(t *testing.T) {
		properties := gopter.NewProperties(nil)
		properties.Property("int and float forms are loosely equal", prop.ForAll(
			func(n int32) bool {
				return core.LooseEqual(int(n), float64(n)) && core.Identical(int64(n), float64(n))
			},
			gen.Int32(),
		))
		properties.Property("numbers equal their decimal strings", prop.ForAll(
			func(n int16) bool {
				return core.LooseEqual(core.Stringify(int(n)), n)
			},
			gen.Int16(),
		))
		properties.TestingRun(t)
	})
}
