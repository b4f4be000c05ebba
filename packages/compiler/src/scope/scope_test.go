package scope_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/compiler/src/scope"
)

func TestScope(t *testing.T) {
	t.Run("should resolve names in the declaring scope with zero hops", func(t *testing.T) {
		s := scope.New(nil)
		require.NoError(t, s.Define("item", scope.Entry{Kind: scope.Variable, Value: "$implicit"}))
		e, hops, ok := s.Resolve("item")
		require.True(t, ok)
		assert.Equal(t, 0, hops)
		assert.Equal(t, "$implicit", e.Value)
	})

	t.Run("should count hops outwards", func(t *testing.T) {
		root := scope.New(nil)
		require.NoError(t, root.Define("r", scope.Entry{Kind: scope.Reference, Slot: 3, Directive: -1}))
		outer := scope.New(root)
		require.NoError(t, outer.Define("o", scope.Entry{Value: "$implicit"}))
		inner := scope.New(outer)

		_, hops, ok := inner.Resolve("o")
		require.True(t, ok)
		assert.Equal(t, 1, hops)
		e, hops, ok := inner.Resolve("r")
		require.True(t, ok)
		assert.Equal(t, 2, hops)
		assert.Equal(t, scope.Reference, e.Kind)
		assert.Equal(t, 2, inner.Depth())
	})

	t.Run("should let the nearest declaration win", func(t *testing.T) {
		outer := scope.New(nil)
		require.NoError(t, outer.Define("x", scope.Entry{Value: "outer"}))
		inner := scope.New(outer)
		require.NoError(t, inner.Define("x", scope.Entry{Value: "inner"}))
		e, hops, _ := inner.Resolve("x")
		assert.Equal(t, "inner", e.Value)
		assert.Equal(t, 0, hops)
	})

	t.Run("should reject duplicates in one scope", func(t *testing.T) {
		s := scope.New(nil)
		require.NoError(t, s.Define("x", scope.Entry{}))
		assert.Error(t, s.Define("x", scope.Entry{}))
		assert.Equal(t, []string{"x"}, s.Names())
	})

	t.Run("should not resolve unknown names", func(t *testing.T) {
		_, _, ok := scope.New(scope.New(nil)).Resolve("nope")
		assert.False(t, ok)
	})
}

func TestScopeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// A chain of depth n where level i declares "v<i>": resolving from the innermost scope
	// yields hops == n-1-i.
	properties.Property("hops equal the distance to the declaring scope", prop.ForAll(
		func(depth int, pick int) bool {
			var s *scope.Scope
			for i := 0; i < depth; i++ {
				s = scope.New(s)
				if err := s.Define(fmt.Sprintf("v%d", i), scope.Entry{Value: fmt.Sprint(i)}); err != nil {
					return false
				}
			}
			target := pick % depth
			e, hops, ok := s.Resolve(fmt.Sprintf("v%d", target))
			return ok && hops == depth-1-target && e.Value == fmt.Sprint(target)
		},
		gen.IntRange(1, 12),
		gen.IntRange(0, 100),
	))

	// When every level declares the same name, the innermost one wins.
	properties.Property("shadowing resolves to the innermost declaration", prop.ForAll(
		func(depth int) bool {
			var s *scope.Scope
			for i := 0; i < depth; i++ {
				s = scope.New(s)
				_ = s.Define("x", scope.Entry{Value: fmt.Sprint(i)})
			}
			e, hops, ok := s.Resolve("x")
			return ok && hops == 0 && e.Value == fmt.Sprint(depth-1)
		},
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
