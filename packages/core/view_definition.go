package core

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Render flags passed to a TemplateFn.
const (
	RenderFlagsCreate = 1
	RenderFlagsUpdate = 2
)

// TemplateFn is a generated view function. It runs its creation block when rf&1 is set and its
// update block when rf&2 is set.
type TemplateFn func(rf int, ctx any)

// ViewDefinition is the compiled form of one component view.
type ViewDefinition struct {
	Name     string
	Template TemplateFn
	// Renderer is the renderer type of the component that owns the view; nil for host views.
	Renderer *RendererType2
}

// ViewDef is the instruction that builds a ViewDefinition from generated code.
func ViewDef(name string, tpl TemplateFn, renderer *RendererType2) *ViewDefinition {
	return &ViewDefinition{Name: name, Template: tpl, Renderer: renderer}
}

// ViewDefinitionRef is a late-bound handle to a ViewDefinition. Generated code refers to it
// before the target component is compiled; the compiler fills it in afterwards.
type ViewDefinitionRef struct {
	Name     string
	delegate *ViewDefinition
}

// NewViewDefinitionRef returns an unresolved reference.
func NewViewDefinitionRef(name string) *ViewDefinitionRef {
	return &ViewDefinitionRef{Name: name}
}

// SetDelegate resolves the reference.
func (r *ViewDefinitionRef) SetDelegate(def *ViewDefinition) {
	r.delegate = def
}

// Resolved reports whether SetDelegate has been called.
func (r *ViewDefinitionRef) Resolved() bool {
	return r.delegate != nil
}

// Definition returns the resolved definition or panics with a RuntimeError.
func (r *ViewDefinitionRef) Definition() *ViewDefinition {
	if r.delegate == nil {
		panic(NewRuntimeError("view %s has not been compiled yet", r.Name))
	}
	return r.delegate
}

// ViewEncapsulation selects how component styles are scoped.
type ViewEncapsulation int

const (
	ViewEncapsulationEmulated ViewEncapsulation = iota
	ViewEncapsulationNone
	ViewEncapsulationShadowDom
)

func (e ViewEncapsulation) String() string {
	switch e {
	case ViewEncapsulationNone:
		return "None"
	case ViewEncapsulationShadowDom:
		return "ShadowDom"
	default:
		return "Emulated"
	}
}

// ParseViewEncapsulation accepts "Emulated", "None" and "ShadowDom" in any case.
func ParseViewEncapsulation(s string) (ViewEncapsulation, error) {
	switch strings.ToLower(s) {
	case "", "emulated":
		return ViewEncapsulationEmulated, nil
	case "none":
		return ViewEncapsulationNone, nil
	case "shadowdom":
		return ViewEncapsulationShadowDom, nil
	}
	return 0, fmt.Errorf("unknown view encapsulation %q", s)
}

// ContentAttr and HostAttr are the placeholders used by emulated encapsulation. %COMP% is
// replaced by the renderer id.
const (
	ContentAttr = "_ngcontent-%COMP%"
	HostAttr    = "_nghost-%COMP%"
)

// RendererType2 describes how a component renders: its styles and encapsulation.
type RendererType2 struct {
	ID            string
	Encapsulation ViewEncapsulation
	// Styles holds strings and nested []any of strings from stylesheet dependencies.
	Styles []any
	Data   map[string]any
}

var rendererCount atomic.Int64

// CreateRendererType2 is the instruction that materializes a renderer type. Emulated
// encapsulation without styles degrades to None.
func CreateRendererType2(encapsulation int, styles []any, data map[string]any) *RendererType2 {
	rt := &RendererType2{
		Encapsulation: ViewEncapsulation(encapsulation),
		Styles:        styles,
		Data:          data,
	}
	if rt.Encapsulation == ViewEncapsulationEmulated && len(flattenStyles(styles)) == 0 && len(data) == 0 {
		rt.Encapsulation = ViewEncapsulationNone
	}
	if rt.Data == nil {
		rt.Data = map[string]any{}
	}
	rt.ID = fmt.Sprintf("c%d", rendererCount.Add(1)-1)
	return rt
}

// CopyFrom overwrites r with src in place, so earlier holders of r see the compiled values.
func (r *RendererType2) CopyFrom(src *RendererType2) {
	*r = *src
}

// ContentAttribute returns the attribute set on every element of an emulated view, or "".
func (r *RendererType2) ContentAttribute() string {
	if r == nil || r.Encapsulation != ViewEncapsulationEmulated {
		return ""
	}
	return strings.ReplaceAll(ContentAttr, "%COMP%", r.ID)
}

// HostAttribute returns the attribute set on the host element of an emulated component, or "".
func (r *RendererType2) HostAttribute() string {
	if r == nil || r.Encapsulation != ViewEncapsulationEmulated {
		return ""
	}
	return strings.ReplaceAll(HostAttr, "%COMP%", r.ID)
}

// ResolvedStyles flattens nested style arrays and substitutes the renderer id.
func (r *RendererType2) ResolvedStyles() []string {
	if r == nil {
		return nil
	}
	flat := flattenStyles(r.Styles)
	for i, s := range flat {
		flat[i] = strings.ReplaceAll(s, "%COMP%", r.ID)
	}
	return flat
}

func flattenStyles(styles []any) []string {
	var out []string
	for _, s := range styles {
		switch v := s.(type) {
		case string:
			out = append(out, v)
		case []any:
			out = append(out, flattenStyles(v)...)
		case []string:
			out = append(out, v...)
		}
	}
	return out
}
