package expression_parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ep "ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/util"
)

func newParser() *ep.Parser {
	return ep.NewParser(ep.NewLexer())
}

func parseBinding(t *testing.T, text string) string {
	t.Helper()
	ast, errs := newParser().ParseBinding(text, nil, 0)
	require.Empty(t, errs)
	return ep.Serialize(ast)
}

func parseAction(t *testing.T, text string) string {
	t.Helper()
	ast, errs := newParser().ParseAction(text, nil, 0)
	require.Empty(t, errs)
	return ep.Serialize(ast)
}

func firstError(errs []*util.ParseError) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Msg
}

func TestLexer(t *testing.T) {
	t.Run("should tokenize operators and identifiers", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize("a?.b !== c ?? 'x'")
		var got []string
		for _, tok := range tokens {
			got = append(got, tok.String())
		}
		want := []string{"a", "?.", "b", "!==", "c", "??", "x"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tokens mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse numbers as float64", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize("1.5e2")
		require.Len(t, tokens, 1)
		assert.True(t, tokens[0].IsNumber())
		assert.Equal(t, 150.0, tokens[0].NumValue)
	})

	t.Run("should unescape strings", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize(`"a\nbA"`)
		require.Len(t, tokens, 1)
		assert.Equal(t, "a\nbA", tokens[0].StrValue)
	})

	t.Run("should report an unterminated quote", func(t *testing.T) {
		tokens := ep.NewLexer().Tokenize(`'abc`)
		require.Len(t, tokens, 1)
		assert.True(t, tokens[0].IsError())
		assert.Contains(t, tokens[0].StrValue, "Unterminated quote")
	})
}

func TestParseBinding(t *testing.T) {
	cases := map[string]string{
		"a":                "a",
		"a.b.c":            "a.b.c",
		"a?.b":             "a?.b",
		"a[0]":             "a[0]",
		"a?.[k]":           "a?.[k]",
		"f(1, 'x')":        `f(1, "x")`,
		"a ? b : c":        "a ? b : c",
		"1 + 2 * 3":        "(1 + (2 * 3))",
		"a && b || c":      "((a && b) || c)",
		"a ?? b":           "(a ?? b)",
		"!a":               "!a",
		"-a":               "-a",
		"[1, 2]":           "[1, 2]",
		"{a: 1, 'b': c}":   `{a: 1, "b": c}`,
		"x | upper":        "(x | upper)",
		"x | slice:1:2":    "(x | slice:1:2)",
		"x | a | b":        "((x | a) | b)",
		"this.name":        "this.name",
		"null":             "null",
		"(a + b) * c":      "((a + b) * c)",
		"items.length > 0": "(items.length > 0)",
	}
	for input, want := range cases {
		t.Run("should parse "+input, func(t *testing.T) {
			assert.Equal(t, want, parseBinding(t, input))
		})
	}

	t.Run("should reject chains", func(t *testing.T) {
		_, errs := newParser().ParseBinding("a; b", nil, 0)
		assert.Contains(t, firstError(errs), "Binding expression cannot contain chained expression")
	})

	t.Run("should reject assignments", func(t *testing.T) {
		_, errs := newParser().ParseBinding("a = 1", nil, 0)
		assert.Contains(t, firstError(errs), "Bindings cannot contain assignments")
	})

	t.Run("should reject interpolation", func(t *testing.T) {
		_, errs := newParser().ParseBinding("{{a}}", nil, 0)
		assert.Contains(t, firstError(errs), "Got interpolation ({{}}) where expression was expected")
	})

	t.Run("should report missing conditional branches", func(t *testing.T) {
		_, errs := newParser().ParseBinding("a ? b", nil, 0)
		assert.Contains(t, firstError(errs), "requires all 3 expressions")
	})
}

func TestParseAction(t *testing.T) {
	t.Run("should parse assignments and chains", func(t *testing.T) {
		assert.Equal(t, "a = 1; b.c = d", parseAction(t, "a = 1; b.c = d"))
		assert.Equal(t, "a[0] = 1", parseAction(t, "a[0] = 1"))
	})

	t.Run("should parse calls with the event", func(t *testing.T) {
		assert.Equal(t, "onClick($event, x)", parseAction(t, "onClick($event, x)"))
	})

	t.Run("should reject pipes", func(t *testing.T) {
		_, errs := newParser().ParseAction("a | b", nil, 0)
		assert.Contains(t, firstError(errs), "Cannot have a pipe in an action expression")
	})

	t.Run("should reject safe navigation assignments", func(t *testing.T) {
		_, errs := newParser().ParseAction("a?.b = 1", nil, 0)
		assert.Contains(t, firstError(errs), "The '?.' operator cannot be used in the assignment")
	})
}

func TestParseInterpolation(t *testing.T) {
	t.Run("should return nil without markers", func(t *testing.T) {
		ast, errs := newParser().ParseInterpolation("plain", nil, 0)
		assert.Nil(t, ast)
		assert.Empty(t, errs)
	})

	t.Run("should split strings and expressions", func(t *testing.T) {
		ast, errs := newParser().ParseInterpolation("a {{b}} c {{ d | p }}", nil, 0)
		require.Empty(t, errs)
		interp, ok := ast.AST.(*ep.Interpolation)
		require.True(t, ok)
		if diff := cmp.Diff([]string{"a ", " c ", ""}, interp.Strings); diff != "" {
			t.Errorf("strings mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, interp.Expressions, 2)
		assert.Equal(t, "(d | p)", ep.Serialize(interp.Expressions[1]))
	})

	t.Run("should ignore closing markers inside quotes", func(t *testing.T) {
		ast, errs := newParser().ParseInterpolation("{{ '}}' }}", nil, 0)
		require.Empty(t, errs)
		assert.Equal(t, `{{ "}}" }}`, ep.Serialize(ast))
	})

	t.Run("should report blank expressions", func(t *testing.T) {
		_, errs := newParser().ParseInterpolation("{{ }}", nil, 0)
		assert.Contains(t, firstError(errs), "Blank expressions are not allowed")
	})

	t.Run("should keep an unterminated marker as text", func(t *testing.T) {
		split := newParser().SplitInterpolation("a {{ b", nil, new([]*util.ParseError))
		assert.Empty(t, split.Expressions)
		require.Len(t, split.Strings, 1)
		assert.Equal(t, "a {{ b", split.Strings[0].Text)
	})
}

type binding struct {
	Kind  string
	Key   string
	Value string
}

func templateBindings(t *testing.T, key, value string) []binding {
	t.Helper()
	res := newParser().ParseTemplateBindings(key, value, nil, 0, 0)
	require.Empty(t, res.Errors)
	var out []binding
	for _, b := range res.TemplateBindings {
		switch b := b.(type) {
		case *ep.VariableBinding:
			v := ""
			if b.Value != nil {
				v = b.Value.Source
			}
			out = append(out, binding{"var", b.Key.Source, v})
		case *ep.ExpressionBinding:
			v := ""
			if b.Value != nil {
				v = b.Value.Source
			}
			out = append(out, binding{"expr", b.Key.Source, v})
		}
	}
	return out
}

func TestParseTemplateBindings(t *testing.T) {
	t.Run("should desugar ngFor", func(t *testing.T) {
		got := templateBindings(t, "ngFor", "let item of items; let i = index; trackBy: byId")
		want := []binding{
			{"expr", "ngFor", ""},
			{"var", "item", ""},
			{"expr", "ngForOf", "items"},
			{"var", "i", "index"},
			{"expr", "ngForTrackBy", "byId"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should support as bindings", func(t *testing.T) {
		got := templateBindings(t, "ngIf", "user$ | async as user")
		want := []binding{
			{"expr", "ngIf", "user$ | async"},
			{"var", "user", "ngIf"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should support key-as clauses", func(t *testing.T) {
		got := templateBindings(t, "ngFor", "let x of xs; index as i")
		assert.Equal(t, binding{"var", "i", "index"}, got[len(got)-1])
	})

	t.Run("should support a bare condition", func(t *testing.T) {
		got := templateBindings(t, "ngIf", "show; else other")
		want := []binding{
			{"expr", "ngIf", "show"},
			{"expr", "ngIfElse", "other"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("bindings mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestWalk(t *testing.T) {
	t.Run("should visit pipes in nested positions", func(t *testing.T) {
		ast, errs := newParser().ParseBinding("f(a | p1) ? [b | p2] : c", nil, 0)
		require.Empty(t, errs)
		var pipes []string
		ep.Walk(ast, func(n ep.AST) bool {
			if p, ok := n.(*ep.BindingPipe); ok {
				pipes = append(pipes, p.Name)
			}
			return true
		})
		assert.Equal(t, []string{"p1", "p2"}, pipes)
	})
}
