package metadata

import (
	"ngjit-go/packages/core"
)

// CompileStylesheetMetadata is one stylesheet: inline styles and the URLs it imports.
type CompileStylesheetMetadata struct {
	ModuleURL string
	Styles    []string
	StyleURLs []string
}

// CompileTemplateMetadata is a component template after resources have been loaded.
type CompileTemplateMetadata struct {
	Encapsulation       core.ViewEncapsulation
	Template            string
	TemplateURL         string
	Styles              []string
	StyleURLs           []string
	ExternalStylesheets []*CompileStylesheetMetadata
	PreserveWhitespaces bool
}

// CompileDirectiveMetadata is the resolved form of a directive or component declaration.
// Directive summaries handed to the template parser use the same struct.
type CompileDirectiveMetadata struct {
	Type        *core.Type
	ModuleURL   string
	IsComponent bool
	Selector    string
	ExportAs    string
	// Inputs maps binding name to directive property name.
	Inputs          map[string]string
	InputOrder      []string
	EntryComponents []*core.Type
	Template        *CompileTemplateMetadata

	// Late-bound artifacts, created with the metadata and filled in by the compiler.
	ComponentViewType *core.ViewDefinitionRef
	RendererType      *core.RendererType2
	ComponentFactory  *core.ComponentFactory
}

// Name is the declared type's name.
func (m *CompileDirectiveMetadata) Name() string {
	return m.Type.Name
}

// InputList flattens Inputs to binding/property pairs in declaration order.
func (m *CompileDirectiveMetadata) InputList() []any {
	out := make([]any, 0, 2*len(m.InputOrder))
	for _, b := range m.InputOrder {
		out = append(out, b, m.Inputs[b])
	}
	return out
}

// CompilePipeMetadata is the resolved form of a pipe declaration.
type CompilePipeMetadata struct {
	Type *core.Type
	Name string
	Pure bool
}

// TransitiveCompileNgModuleMetadata is everything visible from a module: its own declarations
// plus what imported modules export, in first-seen order.
type TransitiveCompileNgModuleMetadata struct {
	Directives         []*core.Type
	Pipes              []*core.Type
	Modules            []*core.Type
	EntryComponents    []*core.Type
	Providers          []core.Provider
	ExportedDirectives []*core.Type
	ExportedPipes      []*core.Type

	seenDirectives, seenPipes, seenModules, seenEntry, seenExpDirs, seenExpPipes map[*core.Type]bool
}

// NewTransitiveCompileNgModuleMetadata returns an empty set.
func NewTransitiveCompileNgModuleMetadata() *TransitiveCompileNgModuleMetadata {
	return &TransitiveCompileNgModuleMetadata{
		seenDirectives: map[*core.Type]bool{},
		seenPipes:      map[*core.Type]bool{},
		seenModules:    map[*core.Type]bool{},
		seenEntry:      map[*core.Type]bool{},
		seenExpDirs:    map[*core.Type]bool{},
		seenExpPipes:   map[*core.Type]bool{},
	}
}

func addOnce(list *[]*core.Type, seen map[*core.Type]bool, t *core.Type) {
	if !seen[t] {
		seen[t] = true
		*list = append(*list, t)
	}
}

func (t *TransitiveCompileNgModuleMetadata) AddDirective(d *core.Type) {
	addOnce(&t.Directives, t.seenDirectives, d)
}

func (t *TransitiveCompileNgModuleMetadata) AddPipe(p *core.Type) {
	addOnce(&t.Pipes, t.seenPipes, p)
}

func (t *TransitiveCompileNgModuleMetadata) AddModule(m *core.Type) {
	addOnce(&t.Modules, t.seenModules, m)
}

func (t *TransitiveCompileNgModuleMetadata) AddEntryComponent(c *core.Type) {
	addOnce(&t.EntryComponents, t.seenEntry, c)
}

func (t *TransitiveCompileNgModuleMetadata) AddExportedDirective(d *core.Type) {
	addOnce(&t.ExportedDirectives, t.seenExpDirs, d)
}

func (t *TransitiveCompileNgModuleMetadata) AddExportedPipe(p *core.Type) {
	addOnce(&t.ExportedPipes, t.seenExpPipes, p)
}

func (t *TransitiveCompileNgModuleMetadata) AddProvider(p core.Provider) {
	t.Providers = append(t.Providers, p)
}

// CompileNgModuleMetadata is the resolved form of a module declaration. Its summary, used by
// importing modules, is the same struct.
type CompileNgModuleMetadata struct {
	Type                *core.Type
	ModuleURL           string
	DeclaredDirectives  []*core.Type
	ExportedDirectives  []*core.Type
	DeclaredPipes       []*core.Type
	ExportedPipes       []*core.Type
	EntryComponents     []*core.Type
	BootstrapComponents []*core.Type
	Providers           []core.Provider
	ImportedModules     []*core.Type
	ExportedModules     []*core.Type
	Schemas             []Schema
	ID                  string
	TransitiveModule    *TransitiveCompileNgModuleMetadata
}

// Summary is a precompiled declaration: exactly one of Directive, Pipe and Module is set.
// Component summaries carry resolved ComponentViewType and ComponentFactory values.
type Summary struct {
	Type      *core.Type
	Directive *CompileDirectiveMetadata
	Pipe      *CompilePipeMetadata
	Module    *CompileNgModuleMetadata
}

// SummaryProvider lazily yields summaries. Entries of Load are *Summary or nested
// *SummaryProvider values. Providers are deduplicated by pointer.
type SummaryProvider struct {
	Name string
	Load func() []any
}
