// Package catalogue reads declaration files. A catalogue lists components, directives and
// modules in TOML or YAML; Declare turns it into registry declarations whose instances are
// plain maps seeded from each entry's state.
package catalogue

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/core"
)

// Catalogue is a parsed declaration file.
type Catalogue struct {
	// ModuleURL is the default source URL of entries. Template and style URLs resolve
	// against it.
	ModuleURL  string           `toml:"module_url" yaml:"module_url"`
	Components []ComponentEntry `toml:"components" yaml:"components"`
	Directives []DirectiveEntry `toml:"directives" yaml:"directives"`
	Modules    []ModuleEntry    `toml:"modules" yaml:"modules"`

	// Dir is the directory of the file (set at load time).
	Dir string `toml:"-" yaml:"-"`
}

// DirectiveEntry declares a directive.
type DirectiveEntry struct {
	Name      string         `toml:"name" yaml:"name"`
	ModuleURL string         `toml:"module_url" yaml:"module_url"`
	Selector  string         `toml:"selector" yaml:"selector"`
	Inputs    []string       `toml:"inputs" yaml:"inputs"`
	ExportAs  string         `toml:"export_as" yaml:"export_as"`
	State     map[string]any `toml:"state" yaml:"state"`
}

// ComponentEntry declares a component.
type ComponentEntry struct {
	Name                string         `toml:"name" yaml:"name"`
	ModuleURL           string         `toml:"module_url" yaml:"module_url"`
	Selector            string         `toml:"selector" yaml:"selector"`
	Inputs              []string       `toml:"inputs" yaml:"inputs"`
	ExportAs            string         `toml:"export_as" yaml:"export_as"`
	State               map[string]any `toml:"state" yaml:"state"`
	EntryComponents     []string       `toml:"entry_components" yaml:"entry_components"`
	Template            string         `toml:"template" yaml:"template"`
	TemplateURL         string         `toml:"template_url" yaml:"template_url"`
	Styles              []string       `toml:"styles" yaml:"styles"`
	StyleURLs           []string       `toml:"style_urls" yaml:"style_urls"`
	Encapsulation       string         `toml:"encapsulation" yaml:"encapsulation"`
	PreserveWhitespaces *bool          `toml:"preserve_whitespaces" yaml:"preserve_whitespaces"`
}

// ModuleEntry declares a module. Names refer to catalogue entries or to types already in
// the registry, such as CommonModule.
type ModuleEntry struct {
	Name            string          `toml:"name" yaml:"name"`
	ID              string          `toml:"id" yaml:"id"`
	Declarations    []string        `toml:"declarations" yaml:"declarations"`
	Imports         []string        `toml:"imports" yaml:"imports"`
	Exports         []string        `toml:"exports" yaml:"exports"`
	EntryComponents []string        `toml:"entry_components" yaml:"entry_components"`
	Bootstrap       []string        `toml:"bootstrap" yaml:"bootstrap"`
	Schemas         []string        `toml:"schemas" yaml:"schemas"`
	Providers       []ProviderEntry `toml:"providers" yaml:"providers"`
}

// ProviderEntry is a module provider. Token names a type when one with that name exists and
// is a string token otherwise. Exactly one of Value, Class and Existing is expected.
type ProviderEntry struct {
	Token    string `toml:"token" yaml:"token"`
	Value    any    `toml:"value" yaml:"value"`
	Class    string `toml:"class" yaml:"class"`
	Existing string `toml:"existing" yaml:"existing"`
}

// Load reads a catalogue file. The format follows the extension: .toml, .yaml or .yml.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if c.ModuleURL == "" {
		c.ModuleURL = "package:" + filepath.Base(path)
	}
	return c, nil
}

// Parse decodes a catalogue in the given format ("toml", "yaml" or "yml").
func Parse(data []byte, format string) (*Catalogue, error) {
	var c Catalogue
	switch strings.ToLower(format) {
	case "toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalogue format %q", format)
	}
	return &c, nil
}

// Declared is the outcome of Declare: every type by name, catalogue entries and registry
// types alike.
type Declared struct {
	Types map[string]*core.Type
}

// Lookup returns the type called name.
func (d *Declared) Lookup(name string) (*core.Type, error) {
	t, ok := d.Types[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Declare registers every entry of c in reg. Types already in reg are visible to module
// entries by name.
func (c *Catalogue) Declare(reg *metadata.Registry) (*Declared, error) {
	d := &Declared{Types: map[string]*core.Type{}}
	for _, t := range reg.Types() {
		d.Types[t.Name] = t
	}
	define := func(name string, state map[string]any) (*core.Type, error) {
		if name == "" {
			return nil, fmt.Errorf("catalogue entry without a name")
		}
		if _, ok := d.Types[name]; ok {
			return nil, fmt.Errorf("duplicate declaration name %s", name)
		}
		t := core.NewType(name, newInstance(state))
		d.Types[name] = t
		return t, nil
	}

	// Types first, so entries may refer to each other in any order.
	directives := make([]*core.Type, len(c.Directives))
	for i, e := range c.Directives {
		t, err := define(e.Name, e.State)
		if err != nil {
			return nil, err
		}
		directives[i] = t
	}
	components := make([]*core.Type, len(c.Components))
	for i, e := range c.Components {
		t, err := define(e.Name, e.State)
		if err != nil {
			return nil, err
		}
		components[i] = t
	}
	modules := make([]*core.Type, len(c.Modules))
	for i, e := range c.Modules {
		t, err := define(e.Name, nil)
		if err != nil {
			return nil, err
		}
		modules[i] = t
	}

	for i, e := range c.Directives {
		err := reg.Directive(directives[i], metadata.DirectiveDecl{
			DeclBase: c.base(e.ModuleURL),
			Selector: e.Selector,
			Inputs:   e.Inputs,
			ExportAs: e.ExportAs,
		})
		if err != nil {
			return nil, err
		}
	}
	for i, e := range c.Components {
		decl, err := c.componentDecl(d, e)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", e.Name, err)
		}
		if err := reg.Component(components[i], decl); err != nil {
			return nil, err
		}
	}
	for i, e := range c.Modules {
		decl, err := c.moduleDecl(d, e)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", e.Name, err)
		}
		if err := reg.Module(modules[i], decl); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (c *Catalogue) base(moduleURL string) metadata.DeclBase {
	if moduleURL == "" {
		moduleURL = c.ModuleURL
	}
	return metadata.DeclBase{ModuleURL: moduleURL}
}

func (c *Catalogue) componentDecl(d *Declared, e ComponentEntry) (metadata.ComponentDecl, error) {
	entryComponents, err := d.lookupAll(e.EntryComponents)
	if err != nil {
		return metadata.ComponentDecl{}, err
	}
	decl := metadata.ComponentDecl{
		DirectiveDecl: metadata.DirectiveDecl{
			DeclBase:        c.base(e.ModuleURL),
			Selector:        e.Selector,
			Inputs:          e.Inputs,
			ExportAs:        e.ExportAs,
			EntryComponents: entryComponents,
		},
		Template:            e.Template,
		TemplateURL:         e.TemplateURL,
		Styles:              e.Styles,
		StyleURLs:           e.StyleURLs,
		PreserveWhitespaces: e.PreserveWhitespaces,
	}
	if e.Encapsulation != "" {
		enc, err := core.ParseViewEncapsulation(e.Encapsulation)
		if err != nil {
			return metadata.ComponentDecl{}, err
		}
		decl.Encapsulation = &enc
	}
	return decl, nil
}

func (c *Catalogue) moduleDecl(d *Declared, e ModuleEntry) (metadata.ModuleDecl, error) {
	decl := metadata.ModuleDecl{DeclBase: c.base(""), ID: e.ID}
	lists := []struct {
		names []string
		dst   *[]*core.Type
	}{
		{e.Declarations, &decl.Declarations},
		{e.Imports, &decl.Imports},
		{e.Exports, &decl.Exports},
		{e.EntryComponents, &decl.EntryComponents},
		{e.Bootstrap, &decl.Bootstrap},
	}
	for _, l := range lists {
		types, err := d.lookupAll(l.names)
		if err != nil {
			return metadata.ModuleDecl{}, err
		}
		*l.dst = types
	}
	for _, s := range e.Schemas {
		decl.Schemas = append(decl.Schemas, metadata.Schema(s))
	}
	for _, p := range e.Providers {
		provider, err := d.provider(p)
		if err != nil {
			return metadata.ModuleDecl{}, err
		}
		decl.Providers = append(decl.Providers, provider)
	}
	return decl, nil
}

func (d *Declared) lookupAll(names []string) ([]*core.Type, error) {
	var out []*core.Type
	for _, n := range names {
		t, err := d.Lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *Declared) token(name string) any {
	if t, ok := d.Types[name]; ok {
		return t
	}
	return name
}

func (d *Declared) provider(e ProviderEntry) (core.Provider, error) {
	if e.Token == "" {
		return core.Provider{}, fmt.Errorf("provider without a token")
	}
	p := core.Provider{Token: d.token(e.Token)}
	switch {
	case e.Value != nil:
		p.UseValue = e.Value
	case e.Class != "":
		t, err := d.Lookup(e.Class)
		if err != nil {
			return core.Provider{}, err
		}
		p.UseClass = t
	case e.Existing != "":
		p.UseExisting = d.token(e.Existing)
	}
	return p, nil
}

// newInstance returns a factory of fresh copies of state. Nested maps and lists are shared.
func newInstance(state map[string]any) func(...any) any {
	return func(...any) any {
		inst := maps.Clone(state)
		if inst == nil {
			inst = map[string]any{}
		}
		return inst
	}
}
