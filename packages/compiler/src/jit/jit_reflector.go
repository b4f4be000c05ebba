package jit

import (
	"fmt"

	"ngjit-go/packages/compiler/src/output"
)

// JitReflector resolves external references of generated code to runtime values. References
// carry their value; Context answers the ones that only have a name.
type JitReflector struct {
	Context map[string]interface{}
}

// NewJitReflector creates a reflector with an optional name table.
func NewJitReflector(context map[string]interface{}) *JitReflector {
	return &JitReflector{Context: context}
}

// ResolveExternalReference panics when neither the reference nor Context has a value, as
// generated code cannot run without it.
func (r *JitReflector) ResolveExternalReference(ref *output.ExternalReference) interface{} {
	if ref.Runtime != nil {
		return ref.Runtime
	}
	if v, ok := r.Context[ref.Name]; ok {
		return v
	}
	panic(fmt.Errorf("no value provided for %s symbol '%s'", ref.ModuleName, ref.Name))
}
