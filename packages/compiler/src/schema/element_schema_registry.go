package schema

import "ngjit-go/packages/compiler/src/metadata"

// ElementSchemaRegistry is an abstract interface for element schema registry
type ElementSchemaRegistry interface {
	// HasProperty checks if a property exists on an element
	HasProperty(tagName string, propName string, schemas []metadata.Schema) bool

	// HasElement checks if an element exists
	HasElement(tagName string, schemas []metadata.Schema) bool

	// GetMappedPropName returns the DOM property an attribute-style name binds to
	GetMappedPropName(propName string) string

	// GetDefaultComponentElementName is the host element name of components without a
	// selector
	GetDefaultComponentElementName() string

	// ValidateProperty validates a property name
	ValidateProperty(name string) PropertyValidationResult

	// ValidateAttribute validates an attribute name
	ValidateAttribute(name string) PropertyValidationResult
}

// PropertyValidationResult represents the result of property validation
type PropertyValidationResult struct {
	Error bool
	Msg   string
}
