// Package summaries encodes precompiled directive and pipe metadata as CBOR bundles. A
// decoded bundle is a SummaryProvider the JIT compiler loads instead of resolving the
// declarations again.
package summaries

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/core"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("summaries: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Bundle is the wire form of a summary provider. Types are referenced by name.
type Bundle struct {
	Name       string      `cbor:"1,keyasint"`
	Directives []Directive `cbor:"2,keyasint,omitempty"`
	Pipes      []Pipe      `cbor:"3,keyasint,omitempty"`
	Includes   []Bundle    `cbor:"4,keyasint,omitempty"`
}

// Directive is a precompiled directive. Components need compiled views and have no wire form.
type Directive struct {
	Type       string   `cbor:"1,keyasint"`
	ModuleURL  string   `cbor:"2,keyasint,omitempty"`
	Selector   string   `cbor:"3,keyasint"`
	ExportAs   string   `cbor:"4,keyasint,omitempty"`
	InputOrder []string `cbor:"5,keyasint,omitempty"`
	// Properties is parallel to InputOrder.
	Properties []string `cbor:"6,keyasint,omitempty"`
}

type Pipe struct {
	Type string `cbor:"1,keyasint"`
	Name string `cbor:"2,keyasint"`
	Pure bool   `cbor:"3,keyasint"`
}

// TypeTable resolves type names of a bundle.
type TypeTable func(name string) (*core.Type, bool)

// TypesOf is a TypeTable over the given types, keyed by name.
func TypesOf(types ...*core.Type) TypeTable {
	byName := make(map[string]*core.Type, len(types))
	for _, t := range types {
		byName[t.Name] = t
	}
	return func(name string) (*core.Type, bool) {
		t, ok := byName[name]
		return t, ok
	}
}

// NewBundle builds a bundle from resolved metadata.
func NewBundle(name string, directives []*metadata.CompileDirectiveMetadata, pipes []*metadata.CompilePipeMetadata) (*Bundle, error) {
	b := &Bundle{Name: name}
	for _, d := range directives {
		if d.IsComponent {
			return nil, fmt.Errorf("summaries: component %s cannot be summarized", d.Name())
		}
		w := Directive{
			Type:       d.Name(),
			ModuleURL:  d.ModuleURL,
			Selector:   d.Selector,
			ExportAs:   d.ExportAs,
			InputOrder: append([]string(nil), d.InputOrder...),
		}
		for _, binding := range d.InputOrder {
			w.Properties = append(w.Properties, d.Inputs[binding])
		}
		b.Directives = append(b.Directives, w)
	}
	for _, p := range pipes {
		b.Pipes = append(b.Pipes, Pipe{Type: p.Type.Name, Name: p.Name, Pure: p.Pure})
	}
	return b, nil
}

// Marshal serializes a bundle to canonical CBOR.
func Marshal(b *Bundle) ([]byte, error) {
	return encMode.Marshal(b)
}

// Unmarshal deserializes a bundle.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("summaries: unmarshal bundle: %w", err)
	}
	return &b, nil
}

// Provider resolves the bundle's type names and returns a provider of its summaries.
// Included bundles become nested providers.
func (b *Bundle) Provider(types TypeTable) (*metadata.SummaryProvider, error) {
	var entries []any
	lookup := func(name string) (*core.Type, error) {
		t, ok := types(name)
		if !ok {
			return nil, fmt.Errorf("summaries: bundle %s refers to unknown type %s", b.Name, name)
		}
		return t, nil
	}
	for _, d := range b.Directives {
		if len(d.Properties) != len(d.InputOrder) {
			return nil, fmt.Errorf("summaries: directive %s has %d inputs and %d properties", d.Type, len(d.InputOrder), len(d.Properties))
		}
		t, err := lookup(d.Type)
		if err != nil {
			return nil, err
		}
		meta := &metadata.CompileDirectiveMetadata{
			Type:       t,
			ModuleURL:  d.ModuleURL,
			Selector:   d.Selector,
			ExportAs:   d.ExportAs,
			Inputs:     make(map[string]string, len(d.InputOrder)),
			InputOrder: d.InputOrder,
		}
		for i, binding := range d.InputOrder {
			meta.Inputs[binding] = d.Properties[i]
		}
		entries = append(entries, &metadata.Summary{Type: t, Directive: meta})
	}
	for _, p := range b.Pipes {
		t, err := lookup(p.Type)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &metadata.Summary{Type: t, Pipe: &metadata.CompilePipeMetadata{Type: t, Name: p.Name, Pure: p.Pure}})
	}
	for i := range b.Includes {
		nested, err := b.Includes[i].Provider(types)
		if err != nil {
			return nil, err
		}
		entries = append(entries, nested)
	}
	return &metadata.SummaryProvider{
		Name: b.Name,
		Load: func() []any { return entries },
	}, nil
}

// Decode unmarshals data and resolves it against types.
func Decode(data []byte, types TypeTable) (*metadata.SummaryProvider, error) {
	b, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return b.Provider(types)
}
