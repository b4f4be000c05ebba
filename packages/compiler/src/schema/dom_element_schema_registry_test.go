package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/schema"
)

func TestDomElementSchemaRegistry(t *testing.T) {
	registry := schema.NewDomElementSchemaRegistry()

	t.Run("should detect elements", func(t *testing.T) {
		assert.True(t, registry.HasElement("div", nil))
		assert.True(t, registry.HasElement("b", nil))
		assert.True(t, registry.HasElement("ng-container", nil))
		assert.False(t, registry.HasElement("unknown-tag", nil))
		assert.True(t, registry.HasElement("unknown-tag", []metadata.Schema{metadata.CustomElementsSchema}))
	})

	t.Run("should detect properties on regular elements", func(t *testing.T) {
		assert.True(t, registry.HasProperty("div", "id", nil))
		assert.True(t, registry.HasProperty("div", "title", nil))
		assert.True(t, registry.HasProperty("input", "value", nil))
		assert.True(t, registry.HasProperty("video", "currentTime", nil))
		assert.False(t, registry.HasProperty("div", "value", nil))
		assert.False(t, registry.HasProperty("div", "unknown", nil))
	})

	t.Run("should treat custom elements like unknown elements", func(t *testing.T) {
		assert.True(t, registry.HasProperty("my-cmp", "title", nil))
		assert.False(t, registry.HasProperty("my-cmp", "fooBar", nil))
		assert.True(t, registry.HasProperty("my-cmp", "fooBar", []metadata.Schema{metadata.CustomElementsSchema}))
	})

	t.Run("should never allow properties on ng-container", func(t *testing.T) {
		assert.False(t, registry.HasProperty("ng-container", "id", []metadata.Schema{metadata.CustomElementsSchema}))
	})

	t.Run("should allow anything under NO_ERRORS_SCHEMA", func(t *testing.T) {
		assert.True(t, registry.HasProperty("div", "fooBar", []metadata.Schema{metadata.NoErrorsSchema}))
		assert.True(t, registry.HasElement("foo-bar", []metadata.Schema{metadata.NoErrorsSchema}))
	})

	t.Run("should map attribute names to properties", func(t *testing.T) {
		assert.Equal(t, "className", registry.GetMappedPropName("class"))
		assert.Equal(t, "htmlFor", registry.GetMappedPropName("for"))
		assert.Equal(t, "title", registry.GetMappedPropName("title"))
	})

	t.Run("should reject event properties", func(t *testing.T) {
		res := registry.ValidateProperty("onclick")
		assert.True(t, res.Error)
		assert.Contains(t, res.Msg, "please use (click)=...")
		assert.False(t, registry.ValidateProperty("title").Error)
	})
}
