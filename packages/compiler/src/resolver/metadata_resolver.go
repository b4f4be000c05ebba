// Package resolver derives compile metadata from registered declarations and precompiled
// summaries. Components whose template or stylesheets live behind URLs are loaded through a
// ResourceLoader in two steps: Pending.Load fetches, Pending.Finish records the metadata.
package resolver

import (
	"context"
	"fmt"

	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/css"
	"ngjit-go/packages/compiler/src/logging"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/util"
	"ngjit-go/packages/core"
)

// CompileMetadataResolver caches metadata per type. It is not safe for concurrent use; only
// Pending.Load may run on other goroutines.
type CompileMetadataResolver struct {
	config    *config.CompilerConfig
	registry  *metadata.Registry
	loader    ResourceLoader
	summaries *SummaryResolver
	log       logging.Logger

	directiveCache map[*core.Type]*metadata.CompileDirectiveMetadata
	pipeCache      map[*core.Type]*metadata.CompilePipeMetadata
	ngModuleCache  map[*core.Type]*metadata.CompileNgModuleMetadata
	resolving      map[*core.Type]bool
}

// NewCompileMetadataResolver creates a resolver. loader may be nil when no declaration uses
// TemplateURL or StyleURLs.
func NewCompileMetadataResolver(cfg *config.CompilerConfig, registry *metadata.Registry, loader ResourceLoader, summaries *SummaryResolver, log logging.Logger) *CompileMetadataResolver {
	if log == nil {
		log = logging.Nop()
	}
	r := &CompileMetadataResolver{
		config:    cfg,
		registry:  registry,
		loader:    loader,
		summaries: summaries,
		log:       log.WithComponent("metadata_resolver"),
	}
	r.ClearCache()
	return r
}

// ClearCache drops every resolved entry. Summaries are kept.
func (r *CompileMetadataResolver) ClearCache() {
	r.directiveCache = map[*core.Type]*metadata.CompileDirectiveMetadata{}
	r.pipeCache = map[*core.Type]*metadata.CompilePipeMetadata{}
	r.ngModuleCache = map[*core.Type]*metadata.CompileNgModuleMetadata{}
	r.resolving = map[*core.Type]bool{}
}

// ClearCacheFor drops the entries of t.
func (r *CompileMetadataResolver) ClearCacheFor(t *core.Type) {
	delete(r.directiveCache, t)
	delete(r.pipeCache, t)
	delete(r.ngModuleCache, t)
}

func (r *CompileMetadataResolver) kindOf(t *core.Type) (metadata.DeclKind, bool) {
	if s := r.summaries.ResolveSummary(t); s != nil {
		switch {
		case s.Module != nil:
			return metadata.KindModule, true
		case s.Pipe != nil:
			return metadata.KindPipe, true
		case s.Directive != nil && s.Directive.IsComponent:
			return metadata.KindComponent, true
		case s.Directive != nil:
			return metadata.KindDirective, true
		}
	}
	d, ok := r.registry.Lookup(t)
	if !ok {
		return 0, false
	}
	return d.Kind(), true
}

// IsDirective reports whether t is a directive or a component.
func (r *CompileMetadataResolver) IsDirective(t *core.Type) bool {
	k, ok := r.kindOf(t)
	return ok && (k == metadata.KindDirective || k == metadata.KindComponent)
}

// IsPipe reports whether t is a pipe.
func (r *CompileMetadataResolver) IsPipe(t *core.Type) bool {
	k, ok := r.kindOf(t)
	return ok && k == metadata.KindPipe
}

// IsNgModule reports whether t is a module.
func (r *CompileMetadataResolver) IsNgModule(t *core.Type) bool {
	k, ok := r.kindOf(t)
	return ok && k == metadata.KindModule
}

// GetNgModuleMetadata resolves the module t together with everything it imports.
func (r *CompileMetadataResolver) GetNgModuleMetadata(t *core.Type) (*metadata.CompileNgModuleMetadata, error) {
	if m, ok := r.ngModuleCache[t]; ok {
		return m, nil
	}
	if s := r.summaries.ResolveSummary(t); s != nil && s.Module != nil {
		return s.Module, nil
	}
	d, ok := r.registry.Lookup(t)
	decl, isModule := d.(*metadata.ModuleDecl)
	if !ok || !isModule {
		return nil, util.ConfigurationError(t.Name, "%s is not an NgModule", t.Name)
	}
	if r.resolving[t] {
		return nil, util.ConfigurationError(t.Name, "Cannot import the module %s into itself", t.Name)
	}
	r.resolving[t] = true
	defer delete(r.resolving, t)

	m := &metadata.CompileNgModuleMetadata{
		Type:                t,
		ModuleURL:           decl.ModuleURL,
		BootstrapComponents: decl.Bootstrap,
		Providers:           decl.Providers,
		Schemas:             decl.Schemas,
		ID:                  decl.ID,
	}

	var imported, exported []*metadata.CompileNgModuleMetadata
	for _, imp := range decl.Imports {
		if !r.IsNgModule(imp) {
			return nil, util.ConfigurationError(t.Name, "Unexpected value '%s' imported by the module '%s'. Please add an NgModule declaration.", imp.Name, t.Name)
		}
		im, err := r.GetNgModuleMetadata(imp)
		if err != nil {
			return nil, err
		}
		imported = append(imported, im)
		m.ImportedModules = append(m.ImportedModules, imp)
	}
	for _, exp := range decl.Exports {
		if !r.IsNgModule(exp) {
			continue
		}
		em, err := r.GetNgModuleMetadata(exp)
		if err != nil {
			return nil, err
		}
		exported = append(exported, em)
		m.ExportedModules = append(m.ExportedModules, exp)
	}

	tm := transitiveModule(imported, exported)
	for _, dt := range decl.Declarations {
		switch {
		case r.IsDirective(dt):
			m.DeclaredDirectives = append(m.DeclaredDirectives, dt)
			tm.AddDirective(dt)
		case r.IsPipe(dt):
			m.DeclaredPipes = append(m.DeclaredPipes, dt)
			tm.AddPipe(dt)
		default:
			return nil, util.ConfigurationError(t.Name, "Unexpected value '%s' declared by the module '%s'. Please add a Pipe, Directive or Component declaration.", dt.Name, t.Name)
		}
	}

	visibleDirectives := setOf(tm.Directives)
	visiblePipes := setOf(tm.Pipes)
	for _, exp := range decl.Exports {
		switch {
		case r.IsNgModule(exp):
		case visibleDirectives[exp]:
			m.ExportedDirectives = append(m.ExportedDirectives, exp)
			tm.AddExportedDirective(exp)
		case visiblePipes[exp]:
			m.ExportedPipes = append(m.ExportedPipes, exp)
			tm.AddExportedPipe(exp)
		default:
			return nil, util.ConfigurationError(t.Name, "Can't export %s from %s as it was neither declared nor imported!", exp.Name, t.Name)
		}
	}

	for _, ec := range append(append([]*core.Type(nil), decl.EntryComponents...), decl.Bootstrap...) {
		k, ok := r.kindOf(ec)
		if !ok || k != metadata.KindComponent {
			return nil, util.ConfigurationError(t.Name, "%s cannot be used as an entry component.", ec.Name)
		}
		m.EntryComponents = append(m.EntryComponents, ec)
		tm.AddEntryComponent(ec)
	}
	for _, p := range decl.Providers {
		tm.AddProvider(p)
	}
	tm.AddModule(t)
	m.TransitiveModule = tm

	r.ngModuleCache[t] = m
	return m, nil
}

// transitiveModule collects what imported modules export to the importer, and everything of
// the re-exported modules.
func transitiveModule(imported, exported []*metadata.CompileNgModuleMetadata) *metadata.TransitiveCompileNgModuleMetadata {
	tm := metadata.NewTransitiveCompileNgModuleMetadata()
	addModule := func(m *metadata.CompileNgModuleMetadata) {
		for _, mod := range m.TransitiveModule.Modules {
			tm.AddModule(mod)
		}
		for _, ec := range m.TransitiveModule.EntryComponents {
			tm.AddEntryComponent(ec)
		}
		for _, p := range m.TransitiveModule.Providers {
			tm.AddProvider(p)
		}
	}
	for _, m := range imported {
		addModule(m)
		for _, d := range m.TransitiveModule.ExportedDirectives {
			tm.AddDirective(d)
		}
		for _, p := range m.TransitiveModule.ExportedPipes {
			tm.AddPipe(p)
		}
	}
	for _, m := range exported {
		addModule(m)
		for _, d := range m.TransitiveModule.ExportedDirectives {
			tm.AddExportedDirective(d)
		}
		for _, p := range m.TransitiveModule.ExportedPipes {
			tm.AddExportedPipe(p)
		}
	}
	return tm
}

func setOf(types []*core.Type) map[*core.Type]bool {
	out := make(map[*core.Type]bool, len(types))
	for _, t := range types {
		out[t] = true
	}
	return out
}

// Pending is a component whose template or stylesheets are still being fetched.
type Pending struct {
	Type *core.Type

	r        *CompileMetadataResolver
	decl     *metadata.ComponentDecl
	template string
	sheets   []*metadata.CompileStylesheetMetadata
}

// LoadDirectiveMetadata resolves the directive t declared by moduleType. Components that need
// resources return a Pending; in sync mode that is a SyncAsyncError instead.
func (r *CompileMetadataResolver) LoadDirectiveMetadata(moduleType, t *core.Type, isSync bool) (*Pending, error) {
	if _, ok := r.directiveCache[t]; ok {
		return nil, nil
	}
	if s := r.summaries.ResolveSummary(t); s != nil && s.Directive != nil {
		return nil, nil
	}
	d, ok := r.registry.Lookup(t)
	if !ok {
		return nil, util.ConfigurationError(t.Name, "%s declared by %s is not registered", t.Name, moduleType.Name)
	}
	switch decl := d.(type) {
	case *metadata.DirectiveDecl:
		meta, err := r.directiveMetadata(decl, nil)
		if err != nil {
			return nil, err
		}
		r.directiveCache[t] = meta
		return nil, nil
	case *metadata.ComponentDecl:
		if decl.Template == "" && decl.TemplateURL == "" {
			return nil, util.ConfigurationError(t.Name, "No template specified for component %s", t.Name)
		}
		p := &Pending{Type: t, r: r, decl: decl, template: decl.Template}
		if !needsLoading(decl) {
			return nil, p.Finish()
		}
		if isSync {
			return nil, util.SyncAsyncError(t.Name)
		}
		if r.loader == nil {
			return nil, util.ConfigurationError(t.Name, "No ResourceLoader configured to load the resources of %s", t.Name)
		}
		return p, nil
	}
	return nil, util.ConfigurationError(t.Name, "%s is not a directive", t.Name)
}

func needsLoading(decl *metadata.ComponentDecl) bool {
	if decl.TemplateURL != "" || len(decl.StyleURLs) > 0 {
		return true
	}
	for _, s := range decl.Styles {
		if len(css.ExtractStyleUrls(decl.ModuleURL, s).StyleUrls) > 0 {
			return true
		}
	}
	return false
}

// Load fetches the template and every stylesheet reachable from the component. It touches no
// resolver state and may run concurrently with other loads.
func (p *Pending) Load(ctx context.Context) error {
	decl := p.decl
	if decl.TemplateURL != "" {
		url := css.ResolveUrl(decl.ModuleURL, decl.TemplateURL)
		tpl, err := p.r.loader.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("loading template %s of %s: %w", url, p.Type.Name, err)
		}
		p.template = tpl
	}
	seen := map[string]bool{}
	var load func(url string) error
	load = func(url string) error {
		if seen[url] {
			return nil
		}
		seen[url] = true
		text, err := p.r.loader.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("loading stylesheet %s of %s: %w", url, p.Type.Name, err)
		}
		extracted := css.ExtractStyleUrls(url, text)
		p.sheets = append(p.sheets, &metadata.CompileStylesheetMetadata{
			ModuleURL: url,
			Styles:    []string{extracted.Style},
			StyleURLs: extracted.StyleUrls,
		})
		for _, nested := range extracted.StyleUrls {
			if err := load(nested); err != nil {
				return err
			}
		}
		return nil
	}
	for _, url := range componentStylesheet(decl).StyleURLs {
		if err := load(url); err != nil {
			return err
		}
	}
	return nil
}

// Finish records the component metadata. It must run on the compiling goroutine.
func (p *Pending) Finish() error {
	sheet := componentStylesheet(p.decl)
	encapsulation := p.r.config.DefaultEncapsulation
	if p.decl.Encapsulation != nil {
		encapsulation = *p.decl.Encapsulation
	}
	if encapsulation == core.ViewEncapsulationEmulated && len(sheet.Styles) == 0 && len(sheet.StyleURLs) == 0 {
		encapsulation = core.ViewEncapsulationNone
	}
	tpl := &metadata.CompileTemplateMetadata{
		Encapsulation:       encapsulation,
		Template:            p.template,
		TemplateURL:         p.decl.TemplateURL,
		Styles:              sheet.Styles,
		StyleURLs:           sheet.StyleURLs,
		ExternalStylesheets: p.sheets,
		PreserveWhitespaces: config.PreserveWhitespacesDefault(p.decl.PreserveWhitespaces, p.r.config.PreserveWhitespaces),
	}
	meta, err := p.r.directiveMetadata(&p.decl.DirectiveDecl, tpl)
	if err != nil {
		return err
	}
	p.r.directiveCache[p.Type] = meta
	p.r.log.Debug(context.Background(), "loaded component", "type", p.Type.Name, "stylesheets", len(p.sheets))
	return nil
}

// componentStylesheet moves the @imports of inline styles next to the declared style URLs.
func componentStylesheet(decl *metadata.ComponentDecl) *metadata.CompileStylesheetMetadata {
	sheet := &metadata.CompileStylesheetMetadata{ModuleURL: decl.ModuleURL}
	for _, s := range decl.Styles {
		extracted := css.ExtractStyleUrls(decl.ModuleURL, s)
		sheet.Styles = append(sheet.Styles, extracted.Style)
		sheet.StyleURLs = append(sheet.StyleURLs, extracted.StyleUrls...)
	}
	for _, u := range decl.StyleURLs {
		sheet.StyleURLs = append(sheet.StyleURLs, css.ResolveUrl(decl.ModuleURL, u))
	}
	return sheet
}

// directiveMetadata builds the metadata of a directive, or of a component when tpl is set.
func (r *CompileMetadataResolver) directiveMetadata(decl *metadata.DirectiveDecl, tpl *metadata.CompileTemplateMetadata) (*metadata.CompileDirectiveMetadata, error) {
	t := decl.Type
	if tpl == nil && decl.Selector == "" {
		return nil, util.ConfigurationError(t.Name, "Directive %s has no selector, please add it!", t.Name)
	}
	meta := &metadata.CompileDirectiveMetadata{
		Type:            t,
		ModuleURL:       decl.ModuleURL,
		IsComponent:     tpl != nil,
		Selector:        decl.Selector,
		ExportAs:        decl.ExportAs,
		Inputs:          map[string]string{},
		EntryComponents: decl.EntryComponents,
		Template:        tpl,
	}
	for _, in := range decl.Inputs {
		parts := util.SplitAtColon(in, []string{in, in})
		prop, binding := parts[0], parts[1]
		if _, dup := meta.Inputs[binding]; !dup {
			meta.InputOrder = append(meta.InputOrder, binding)
		}
		meta.Inputs[binding] = prop
	}
	if tpl != nil {
		for _, ec := range decl.EntryComponents {
			if k, ok := r.kindOf(ec); !ok || k != metadata.KindComponent {
				return nil, util.ConfigurationError(t.Name, "%s cannot be used as an entry component.", ec.Name)
			}
		}
		meta.ComponentViewType = core.NewViewDefinitionRef("View_" + t.Name + "_0")
		meta.RendererType = &core.RendererType2{}
		meta.ComponentFactory = core.NewComponentFactory(decl.Selector, t,
			core.NewViewDefinitionRef("View_"+t.Name+"_Host_0"), meta.Inputs, nil)
	}
	return meta, nil
}

// GetDirectiveMetadata returns metadata loaded by LoadDirectiveMetadata.
func (r *CompileMetadataResolver) GetDirectiveMetadata(t *core.Type) (*metadata.CompileDirectiveMetadata, error) {
	if meta, ok := r.directiveCache[t]; ok {
		return meta, nil
	}
	if s := r.summaries.ResolveSummary(t); s != nil && s.Directive != nil {
		return s.Directive, nil
	}
	return nil, util.InternalError("GetDirectiveMetadata can only be called after LoadDirectiveMetadata for a module that declares %s", t.Name)
}

// GetDirectiveSummary returns the metadata other templates see of the directive t.
func (r *CompileMetadataResolver) GetDirectiveSummary(t *core.Type) (*metadata.CompileDirectiveMetadata, error) {
	if s := r.summaries.ResolveSummary(t); s != nil && s.Directive != nil {
		return s.Directive, nil
	}
	if meta, ok := r.directiveCache[t]; ok {
		return meta, nil
	}
	return nil, util.InternalError("Could not load the summary for directive %s.", t.Name)
}

// GetOrLoadPipeMetadata resolves the pipe t.
func (r *CompileMetadataResolver) GetOrLoadPipeMetadata(t *core.Type) (*metadata.CompilePipeMetadata, error) {
	if meta, ok := r.pipeCache[t]; ok {
		return meta, nil
	}
	if s := r.summaries.ResolveSummary(t); s != nil && s.Pipe != nil {
		return s.Pipe, nil
	}
	d, ok := r.registry.Lookup(t)
	decl, isPipe := d.(*metadata.PipeDecl)
	if !ok || !isPipe {
		return nil, util.ConfigurationError(t.Name, "%s is not a pipe", t.Name)
	}
	meta := &metadata.CompilePipeMetadata{Type: t, Name: decl.Name, Pure: decl.IsPure()}
	r.pipeCache[t] = meta
	return meta, nil
}

// GetPipeSummary is GetOrLoadPipeMetadata for pipes visible to a template.
func (r *CompileMetadataResolver) GetPipeSummary(t *core.Type) (*metadata.CompilePipeMetadata, error) {
	return r.GetOrLoadPipeMetadata(t)
}
