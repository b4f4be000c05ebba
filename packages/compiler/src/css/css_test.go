package css_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/compiler/src/css"
)

func matchAll(t *testing.T, matcher *css.SelectorMatcher[string], element string, attrs [][2]string) []string {
	t.Helper()
	var matched []string
	matcher.Match(css.CreateElementCssSelector(element, attrs), func(_ *css.CssSelector, name string) {
		matched = append(matched, name)
	})
	return matched
}

func addSelector(t *testing.T, matcher *css.SelectorMatcher[string], selector, name string) {
	t.Helper()
	parsed, err := css.ParseCssSelector(selector)
	require.NoError(t, err)
	matcher.AddSelectables(parsed, name)
}

func TestCssSelector(t *testing.T) {
	t.Run("should parse elements, classes and attributes", func(t *testing.T) {
		sels, err := css.ParseCssSelector(`my-cmp.Foo[title="Bar"][ngFor][ngForOf]`)
		require.NoError(t, err)
		require.Len(t, sels, 1)
		assert.Equal(t, "my-cmp", sels[0].Element)
		assert.Equal(t, []string{"foo"}, sels[0].ClassNames)
		assert.Equal(t, []string{"title", "bar", "ngFor", "", "ngForOf", ""}, sels[0].Attrs)
		assert.Equal(t, "my-cmp.foo[title=bar][ngFor][ngForOf]", sels[0].String())
	})

	t.Run("should parse selector lists and :not", func(t *testing.T) {
		sels, err := css.ParseCssSelector(`[a], :not(.b)`)
		require.NoError(t, err)
		require.Len(t, sels, 2)
		assert.Equal(t, "*", sels[1].Element)
		assert.Equal(t, "*:not(.b)", sels[1].String())
	})

	t.Run("should reject nested :not", func(t *testing.T) {
		_, err := css.ParseCssSelector(`:not(:not(a))`)
		assert.Error(t, err)
	})
}

func TestSelectorMatcher(t *testing.T) {
	t.Run("should match by element, class and attribute", func(t *testing.T) {
		m := css.NewSelectorMatcher[string]()
		addSelector(t, m, "my-cmp", "Cmp")
		addSelector(t, m, ".active", "Active")
		addSelector(t, m, "[ngIf]", "NgIf")
		addSelector(t, m, "input[type=text]", "TextInput")

		assert.Equal(t, []string{"Cmp"}, matchAll(t, m, "my-cmp", nil))
		assert.Equal(t, []string{"Active", "NgIf"}, matchAll(t, m, "div", [][2]string{{"class", "x active"}, {"ngIf", ""}}))
		assert.Equal(t, []string{"TextInput"}, matchAll(t, m, "input", [][2]string{{"type", "TEXT"}}))
		assert.Empty(t, matchAll(t, m, "input", [][2]string{{"type", "checkbox"}}))
	})

	t.Run("should require every attribute of a compound selector", func(t *testing.T) {
		m := css.NewSelectorMatcher[string]()
		addSelector(t, m, "[ngFor][ngForOf]", "NgForOf")
		assert.Empty(t, matchAll(t, m, "li", [][2]string{{"ngFor", ""}}))
		assert.Equal(t, []string{"NgForOf"}, matchAll(t, m, "li", [][2]string{{"ngFor", ""}, {"ngForOf", ""}}))
	})

	t.Run("should match a selector list only once", func(t *testing.T) {
		m := css.NewSelectorMatcher[string]()
		addSelector(t, m, "[a],[b]", "Dir")
		assert.Equal(t, []string{"Dir"}, matchAll(t, m, "div", [][2]string{{"a", ""}, {"b", ""}}))
		assert.Equal(t, []string{"Dir"}, matchAll(t, m, "div", [][2]string{{"b", ""}}))
	})

	t.Run("should honor :not", func(t *testing.T) {
		m := css.NewSelectorMatcher[string]()
		addSelector(t, m, "div:not(.skip)", "Dir")
		assert.Equal(t, []string{"Dir"}, matchAll(t, m, "div", nil))
		assert.Empty(t, matchAll(t, m, "div", [][2]string{{"class", "skip"}}))
	})
}

func TestShadowCss(t *testing.T) {
	shim := func(src string) string {
		return css.NewShadowCss().ShimCssText(src, "_ngcontent-%COMP%", "_nghost-%COMP%")
	}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", ".a {color: red}", ".a[_ngcontent-%COMP%] {color: red}"},
		{"combinators", "div > p, span b {x: y}", "div[_ngcontent-%COMP%] > p[_ngcontent-%COMP%], span[_ngcontent-%COMP%] b[_ngcontent-%COMP%] {x: y}"},
		{"pseudo", "a:hover {x: y}", "a[_ngcontent-%COMP%]:hover {x: y}"},
		{"host", ":host {x: y}", "[_nghost-%COMP%] {x: y}"},
		{"host with selector", ":host(.on) p {x: y}", ".on[_nghost-%COMP%] p[_ngcontent-%COMP%] {x: y}"},
		{"deep", "p ::ng-deep span {x: y}", "p[_ngcontent-%COMP%] span {x: y}"},
		{"media", "@media (max-width: 10px) { p {x: y} }", "@media (max-width: 10px) { p[_ngcontent-%COMP%] {x: y} }"},
		{"keyframes", "@keyframes k { from {x: y} }", "@keyframes k { from {x: y} }"},
		{"comments", "/* c */p {x: y}", "p[_ngcontent-%COMP%] {x: y}"},
	}
	for _, tc := range cases {
		t.Run("should shim "+tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, shim(tc.in)); diff != "" {
				t.Errorf("shim mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractStyleUrls(t *testing.T) {
	t.Run("should extract resolvable imports", func(t *testing.T) {
		res := css.ExtractStyleUrls("package:app/cmp.css", `@import "a.css"; @import url('/abs.css'); p {x: y}`)
		assert.Equal(t, []string{"package:app/a.css"}, res.StyleUrls)
		assert.NotContains(t, res.Style, `"a.css"`)
		assert.Contains(t, res.Style, "/abs.css")
	})

	t.Run("should leave http imports alone", func(t *testing.T) {
		assert.False(t, css.IsStyleUrlResolvable("http://x/y.css"))
		assert.True(t, css.IsStyleUrlResolvable("asset:x/y.css"))
		assert.True(t, css.IsStyleUrlResolvable("y.css"))
	})
}

func TestGetMatchingElementTemplate(t *testing.T) {
	t.Run("should render the element a selector matches", func(t *testing.T) {
		sels, err := css.ParseCssSelector(`my-cmp.big[title=x][open]`)
		require.NoError(t, err)
		assert.Equal(t, `<my-cmp class="big" title="x" open></my-cmp>`, sels[0].GetMatchingElementTemplate())
	})

	t.Run("should fall back to a div", func(t *testing.T) {
		sels, err := css.ParseCssSelector(`[dir]`)
		require.NoError(t, err)
		assert.Equal(t, `<div dir></div>`, sels[0].GetMatchingElementTemplate())
	})
}
