package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopCatalogue = `
components:
  - name: Shop
    selector: shop
    encapsulation: None
    template: '<h1>{{name | titlecase}}</h1><cart-line *ngFor="let item of items" [item]="item"></cart-line>'
    state:
      name: corner shop
      items: [apples, pears]
  - name: CartLine
    selector: cart-line
    inputs: [item]
    template_url: cart-line.html
    styles: ["li { color: green; }"]
modules:
  - name: ShopModule
    declarations: [Shop, CartLine]
    imports: [CommonModule]
    bootstrap: [Shop]
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.yaml"), []byte(shopCatalogue), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart-line.html"), []byte("<li>{{item}}</li>"), 0o644))
	return filepath.Join(dir, "shop.yaml")
}

func execute(argv ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), argv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRender(t *testing.T) {
	for _, backend := range []string{"interpret", "jit"} {
		t.Run("should render a component with the "+backend+" back end", func(t *testing.T) {
			path := writeProject(t)
			code, stdout, stderr := execute("render", path, "ShopModule", "Shop", "--backend", backend)
			require.Equal(t, 0, code, stderr)
			assert.Regexp(t, `^<shop><h1>Corner Shop</h1><cart-line _nghost-c\d+><li _ngcontent-c\d+>apples</li></cart-line>`, stdout)
		})
	}

	t.Run("should set inputs and print styles", func(t *testing.T) {
		path := writeProject(t)
		code, stdout, stderr := execute("render", path, "ShopModule", "CartLine", "--input", "item=plums", "--styles")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, ">plums</li></cart-line>\n")
		assert.Regexp(t, `li\[_ngcontent-c\d+\] \{ color: green; \}`, stdout)
	})

	t.Run("should report unknown components", func(t *testing.T) {
		path := writeProject(t)
		code, _, stderr := execute("render", path, "ShopModule", "Basket")
		assert.Equal(t, 1, code)
		assert.Equal(t, "ngjit: unknown type \"Basket\"\n", stderr)
	})

	t.Run("should reject unknown back ends", func(t *testing.T) {
		path := writeProject(t)
		code, _, stderr := execute("render", path, "ShopModule", "Shop", "--backend", "wasm")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, `unknown back end "wasm"`)
	})
}

func TestCompile(t *testing.T) {
	t.Run("should print every generated program", func(t *testing.T) {
		path := writeProject(t)
		code, stdout, stderr := execute("compile", path)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "// ng:///ShopModule/Shop.ngfactory.js\n")
		assert.Contains(t, stdout, "// ng:///ShopModule/CartLine_Host.ngfactory.js\n")
		assert.Contains(t, stdout, "// ng:///ShopModule/module.ngfactory.js\n")
		assert.Contains(t, stdout, "ShopModuleNgFactory")
	})

	t.Run("should fail on a missing module", func(t *testing.T) {
		path := writeProject(t)
		code, _, stderr := execute("compile", path, "--module", "Nope")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, `unknown type "Nope"`)
	})

	t.Run("should require a catalogue", func(t *testing.T) {
		code, _, _ := execute("compile")
		assert.Equal(t, 1, code)
	})
}
