// Package jit is the compilation orchestrator. It loads a module graph, compiles every
// component template and the host views of entry components, links the results into the
// late-bound handles created with the metadata, and assembles module factories. Results are
// cached per declared type.
package jit

import (
	"context"
	"fmt"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/logging"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/ng_module_compiler"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/pool"
	"ngjit-go/packages/compiler/src/resolver"
	sc "ngjit-go/packages/compiler/src/style_compiler"
	tp "ngjit-go/packages/compiler/src/template_parser"
	"ngjit-go/packages/compiler/src/util"
	vc "ngjit-go/packages/compiler/src/view_compiler"
	"ngjit-go/packages/core"
)

// ModuleWithComponentFactories is a module factory plus the factories of every component the
// module graph declares.
type ModuleWithComponentFactories struct {
	NgModuleFactory    *core.NgModuleFactory
	ComponentFactories []*core.ComponentFactory
}

// CompiledTemplate is one component or host view to compile.
type CompiledTemplate struct {
	IsHost     bool
	CompType   *core.Type
	CompMeta   *metadata.CompileDirectiveMetadata
	NgModule   *metadata.CompileNgModuleMetadata
	Directives []*core.Type
	IsCompiled bool
}

// compiled resolves the component's late-bound handles. The renderer type is copied in place
// because generated code of other components already holds the pointer.
func (t *CompiledTemplate) compiled(view *core.ViewDefinition, rendererType *core.RendererType2) {
	if t.IsHost {
		t.CompMeta.ComponentFactory.HostView().SetDelegate(view)
	} else {
		t.CompMeta.RendererType.CopyFrom(rendererType)
		view.Renderer = t.CompMeta.RendererType
		t.CompMeta.ComponentViewType.SetDelegate(view)
	}
	t.IsCompiled = true
}

// JitCompiler compiles modules and components at runtime. Calls are serialized and must not
// be made from generated code.
type JitCompiler struct {
	mu sync.Mutex

	metadataResolver *resolver.CompileMetadataResolver
	templateParser   *tp.TemplateParser
	styleCompiler    *sc.StyleCompiler
	viewCompiler     *vc.ViewCompiler
	ngModuleCompiler *ng_module_compiler.NgModuleCompiler
	summaryResolver  *resolver.SummaryResolver
	reflector        o.Reflector
	backend          o.Backend
	config           *config.CompilerConfig
	log              logging.Logger

	getExtraNgModuleProviders func(module *core.Type) []core.Provider
	onProgram                 func(sourceURL, source string)

	compiledTemplateCache     map[*core.Type]*CompiledTemplate
	compiledHostTemplateCache map[*core.Type]*CompiledTemplate
	compiledNgModuleCache     map[*core.Type]*core.NgModuleFactory
	sharedStylesheetCount     int
	addedAotSummaries         map[*metadata.SummaryProvider]bool
}

// NewJitCompiler wires a compiler. The back end follows cfg.UseJit.
func NewJitCompiler(
	metadataResolver *resolver.CompileMetadataResolver,
	templateParser *tp.TemplateParser,
	styleCompiler *sc.StyleCompiler,
	viewCompiler *vc.ViewCompiler,
	ngModuleCompiler *ng_module_compiler.NgModuleCompiler,
	summaryResolver *resolver.SummaryResolver,
	reflector o.Reflector,
	cfg *config.CompilerConfig,
	log logging.Logger,
	getExtraNgModuleProviders func(module *core.Type) []core.Provider,
) *JitCompiler {
	var backend o.Backend = o.NewInterpreter()
	if cfg.UseJit {
		backend = o.NewJitEvaluator()
	}
	if log == nil {
		log = logging.Nop()
	}
	if getExtraNgModuleProviders == nil {
		getExtraNgModuleProviders = func(*core.Type) []core.Provider { return nil }
	}
	return &JitCompiler{
		metadataResolver:          metadataResolver,
		templateParser:            templateParser,
		styleCompiler:             styleCompiler,
		viewCompiler:              viewCompiler,
		ngModuleCompiler:          ngModuleCompiler,
		summaryResolver:           summaryResolver,
		reflector:                 reflector,
		backend:                   backend,
		config:                    cfg,
		log:                       log.WithComponent("jit_compiler"),
		getExtraNgModuleProviders: getExtraNgModuleProviders,
		compiledTemplateCache:     map[*core.Type]*CompiledTemplate{},
		compiledHostTemplateCache: map[*core.Type]*CompiledTemplate{},
		compiledNgModuleCache:     map[*core.Type]*core.NgModuleFactory{},
		addedAotSummaries:         map[*metadata.SummaryProvider]bool{},
	}
}

// CompileModuleSync compiles moduleType and its components. It fails with a SyncAsyncError
// when a component needs resources.
func (jc *JitCompiler) CompileModuleSync(moduleType *core.Type) (*core.NgModuleFactory, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.compileModuleAndComponents(context.Background(), moduleType, true)
}

// CompileModuleAsync loads the resources of the module graph under ctx, then compiles.
func (jc *JitCompiler) CompileModuleAsync(ctx context.Context, moduleType *core.Type) (*core.NgModuleFactory, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.compileModuleAndComponents(ctx, moduleType, false)
}

// CompileModuleAndAllComponentsSync also returns the factory of every declared component.
func (jc *JitCompiler) CompileModuleAndAllComponentsSync(moduleType *core.Type) (*ModuleWithComponentFactories, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.compileModuleAndAllComponents(context.Background(), moduleType, true)
}

// CompileModuleAndAllComponentsAsync is the asynchronous CompileModuleAndAllComponentsSync.
func (jc *JitCompiler) CompileModuleAndAllComponentsAsync(ctx context.Context, moduleType *core.Type) (*ModuleWithComponentFactories, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.compileModuleAndAllComponents(ctx, moduleType, false)
}

// GetComponentFactory returns the factory of a loaded or precompiled component.
func (jc *JitCompiler) GetComponentFactory(component *core.Type) (*core.ComponentFactory, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	meta, err := jc.metadataResolver.GetDirectiveSummary(component)
	if err != nil {
		return nil, err
	}
	if !meta.IsComponent || meta.ComponentFactory == nil {
		return nil, notAComponent(component)
	}
	return meta.ComponentFactory, nil
}

// LoadAotSummaries clears the caches and registers precompiled summaries. A provider that was
// loaded before is skipped.
func (jc *JitCompiler) LoadAotSummaries(summaries *metadata.SummaryProvider) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.clearCache()
	jc.addAotSummaries(summaries)
}

func (jc *JitCompiler) addAotSummaries(p *metadata.SummaryProvider) {
	if jc.addedAotSummaries[p] {
		return
	}
	jc.addedAotSummaries[p] = true
	for _, entry := range p.Load() {
		switch e := entry.(type) {
		case *metadata.SummaryProvider:
			jc.addAotSummaries(e)
		case *metadata.Summary:
			jc.summaryResolver.AddSummary(e)
		}
	}
	jc.log.Debug(context.Background(), "loaded summaries", "provider", p.Name)
}

// ModuleID returns the id moduleType was declared with, empty when it has none.
func (jc *JitCompiler) ModuleID(moduleType *core.Type) (string, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	meta, err := jc.metadataResolver.GetNgModuleMetadata(moduleType)
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// HasAotSummary reports whether t was precompiled.
func (jc *JitCompiler) HasAotSummary(t *core.Type) bool {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.hasAotSummary(t)
}

func (jc *JitCompiler) hasAotSummary(t *core.Type) bool {
	return jc.summaryResolver.ResolveSummary(t) != nil
}

func (jc *JitCompiler) filterJitIdentifiers(types []*core.Type) []*core.Type {
	out := make([]*core.Type, 0, len(types))
	for _, t := range types {
		if !jc.hasAotSummary(t) {
			out = append(out, t)
		}
	}
	return out
}

func (jc *JitCompiler) compileModuleAndComponents(ctx context.Context, moduleType *core.Type, isSync bool) (*core.NgModuleFactory, error) {
	if err := jc.loadModules(ctx, moduleType, isSync); err != nil {
		return nil, err
	}
	if err := jc.compileComponents(moduleType, nil); err != nil {
		return nil, err
	}
	return jc.compileModule(moduleType)
}

func (jc *JitCompiler) compileModuleAndAllComponents(ctx context.Context, moduleType *core.Type, isSync bool) (*ModuleWithComponentFactories, error) {
	if err := jc.loadModules(ctx, moduleType, isSync); err != nil {
		return nil, err
	}
	var factories []*core.ComponentFactory
	if err := jc.compileComponents(moduleType, &factories); err != nil {
		return nil, err
	}
	factory, err := jc.compileModule(moduleType)
	if err != nil {
		return nil, err
	}
	return &ModuleWithComponentFactories{NgModuleFactory: factory, ComponentFactories: factories}, nil
}

// loadModules resolves the directives and pipes of every module reachable from mainModule.
// Component resources are fetched concurrently; their metadata is recorded afterwards on this
// goroutine.
func (jc *JitCompiler) loadModules(ctx context.Context, mainModule *core.Type, isSync bool) error {
	mainMeta, err := jc.metadataResolver.GetNgModuleMetadata(mainModule)
	if err != nil {
		return err
	}
	var loading []*resolver.Pending
	for _, nested := range jc.filterJitIdentifiers(mainMeta.TransitiveModule.Modules) {
		moduleMeta, err := jc.metadataResolver.GetNgModuleMetadata(nested)
		if err != nil {
			return err
		}
		for _, ref := range jc.filterJitIdentifiers(moduleMeta.DeclaredDirectives) {
			p, err := jc.metadataResolver.LoadDirectiveMetadata(moduleMeta.Type, ref, isSync)
			if err != nil {
				return err
			}
			if p != nil {
				loading = append(loading, p)
			}
		}
		for _, ref := range jc.filterJitIdentifiers(moduleMeta.DeclaredPipes) {
			if _, err := jc.metadataResolver.GetOrLoadPipeMetadata(ref); err != nil {
				return err
			}
		}
	}
	if len(loading) == 0 {
		return nil
	}

	jc.log.Debug(ctx, "loading component resources", "module", mainModule.Name, "components", len(loading))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range loading {
		p := p // per-iteration copy (Go 1.22+ loop semantics on a 1.21 toolchain)
		g.Go(func() error { return p.Load(gctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, p := range loading {
		if err := p.Finish(); err != nil {
			return err
		}
	}
	return nil
}

func (jc *JitCompiler) compileModule(moduleType *core.Type) (*core.NgModuleFactory, error) {
	if f, ok := jc.compiledNgModuleCache[moduleType]; ok {
		return f, nil
	}
	moduleMeta, err := jc.metadataResolver.GetNgModuleMetadata(moduleType)
	if err != nil {
		return nil, err
	}
	var entryComponents []*metadata.CompileDirectiveMetadata
	for _, t := range moduleMeta.TransitiveModule.EntryComponents {
		meta, err := jc.metadataResolver.GetDirectiveSummary(t)
		if err != nil {
			return nil, err
		}
		entryComponents = append(entryComponents, meta)
	}
	extraProviders := append(append([]core.Provider(nil), jc.config.Providers...), jc.getExtraNgModuleProviders(moduleType)...)

	outputCtx := pool.NewOutputContext(ngModuleJitURL(moduleMeta))
	res, err := jc.ngModuleCompiler.Compile(outputCtx, moduleMeta, entryComponents, extraProviders)
	if err != nil {
		return nil, err
	}
	exports, err := jc.interpretOrJit(outputCtx)
	if err != nil {
		return nil, err
	}
	factory, ok := exports[res.NgModuleFactoryVar].(*core.NgModuleFactory)
	if !ok {
		return nil, util.InternalError("%s did not produce a module factory", outputCtx.GenFilePath)
	}
	jc.compiledNgModuleCache[moduleType] = factory
	jc.log.Debug(context.Background(), "compiled module", "module", moduleType.Name)
	return factory, nil
}

// templateSet keeps templates in insertion order, once per view kind and type.
type templateSet struct {
	order []*CompiledTemplate
	seen  map[*CompiledTemplate]bool
}

func (s *templateSet) add(t *CompiledTemplate) {
	if !s.seen[t] {
		s.seen[t] = true
		s.order = append(s.order, t)
	}
}

// CompileComponents compiles the component views of every module reachable from mainModule,
// then the host views of entry components. When allComponentFactories is set, host views of
// all declared components are compiled too and their factories appended to it.
func (jc *JitCompiler) CompileComponents(mainModule *core.Type, allComponentFactories *[]*core.ComponentFactory) error {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.compileComponents(mainModule, allComponentFactories)
}

func (jc *JitCompiler) compileComponents(mainModule *core.Type, allComponentFactories *[]*core.ComponentFactory) error {
	ngModule, err := jc.metadataResolver.GetNgModuleMetadata(mainModule)
	if err != nil {
		return err
	}
	moduleByJitDirective := map[*core.Type]*metadata.CompileNgModuleMetadata{}
	templates := &templateSet{seen: map[*CompiledTemplate]bool{}}
	// Templates created in this call, committed to the caches once compiled.
	created := map[*core.Type]*CompiledTemplate{}
	createdHosts := map[*core.Type]*CompiledTemplate{}

	transJitModules := jc.filterJitIdentifiers(ngModule.TransitiveModule.Modules)
	for _, localMod := range transJitModules {
		localModuleMeta, err := jc.metadataResolver.GetNgModuleMetadata(localMod)
		if err != nil {
			return err
		}
		for _, dirRef := range jc.filterJitIdentifiers(localModuleMeta.DeclaredDirectives) {
			moduleByJitDirective[dirRef] = localModuleMeta
			dirMeta, err := jc.metadataResolver.GetDirectiveMetadata(dirRef)
			if err != nil {
				return err
			}
			if !dirMeta.IsComponent {
				continue
			}
			tpl, err := jc.createCompiledTemplate(dirMeta, localModuleMeta, created)
			if err != nil {
				return err
			}
			templates.add(tpl)
			if allComponentFactories != nil {
				host, err := jc.createCompiledHostTemplate(dirRef, localModuleMeta, createdHosts)
				if err != nil {
					return err
				}
				templates.add(host)
				*allComponentFactories = append(*allComponentFactories, dirMeta.ComponentFactory)
			}
		}
	}

	for _, localMod := range transJitModules {
		localModuleMeta, err := jc.metadataResolver.GetNgModuleMetadata(localMod)
		if err != nil {
			return err
		}
		for _, dirRef := range jc.filterJitIdentifiers(localModuleMeta.DeclaredDirectives) {
			dirMeta, err := jc.metadataResolver.GetDirectiveMetadata(dirRef)
			if err != nil {
				return err
			}
			if !dirMeta.IsComponent {
				continue
			}
			for _, ec := range dirMeta.EntryComponents {
				host, err := jc.createCompiledHostTemplate(ec, moduleByJitDirective[ec], createdHosts)
				if err != nil {
					return err
				}
				templates.add(host)
			}
		}
		for _, ec := range localModuleMeta.EntryComponents {
			if jc.hasAotSummary(ec) {
				continue
			}
			host, err := jc.createCompiledHostTemplate(ec, moduleByJitDirective[ec], createdHosts)
			if err != nil {
				return err
			}
			templates.add(host)
		}
	}

	for _, tpl := range templates.order {
		if err := jc.compileTemplate(tpl); err != nil {
			return err
		}
	}
	return nil
}

func notAComponent(t *core.Type) error {
	return util.ConfigurationError(t.Name, "Could not compile '%s' because it is not a component.", t.Name)
}

func (jc *JitCompiler) createCompiledHostTemplate(compType *core.Type, ngModule *metadata.CompileNgModuleMetadata, created map[*core.Type]*CompiledTemplate) (*CompiledTemplate, error) {
	if ngModule == nil {
		return nil, util.ConfigurationError(compType.Name, "Component %s is not part of any NgModule or the module has not been imported into your module.", compType.Name)
	}
	if t, ok := jc.compiledHostTemplateCache[compType]; ok {
		return t, nil
	}
	if t, ok := created[compType]; ok {
		return t, nil
	}
	compMeta, err := jc.metadataResolver.GetDirectiveMetadata(compType)
	if err != nil {
		return nil, err
	}
	if !compMeta.IsComponent {
		return nil, notAComponent(compType)
	}
	t := &CompiledTemplate{IsHost: true, CompType: compType, CompMeta: compMeta, NgModule: ngModule, Directives: []*core.Type{compType}}
	created[compType] = t
	return t, nil
}

func (jc *JitCompiler) createCompiledTemplate(compMeta *metadata.CompileDirectiveMetadata, ngModule *metadata.CompileNgModuleMetadata, created map[*core.Type]*CompiledTemplate) (*CompiledTemplate, error) {
	if t, ok := jc.compiledTemplateCache[compMeta.Type]; ok {
		return t, nil
	}
	if t, ok := created[compMeta.Type]; ok {
		return t, nil
	}
	if !compMeta.IsComponent {
		return nil, notAComponent(compMeta.Type)
	}
	t := &CompiledTemplate{CompType: compMeta.Type, CompMeta: compMeta, NgModule: ngModule, Directives: ngModule.TransitiveModule.Directives}
	created[compMeta.Type] = t
	return t, nil
}

func (jc *JitCompiler) compileTemplate(template *CompiledTemplate) error {
	if template.IsCompiled {
		return nil
	}
	if template.IsHost {
		return jc.compileHostTemplate(template)
	}
	compMeta := template.CompMeta
	outputCtx := pool.NewOutputContext(templateJitURL(template.NgModule.Type, compMeta.Name()))

	componentStylesheet := jc.styleCompiler.CompileComponent(outputCtx, compMeta)
	linker := sc.NewLinker(map[string]*sc.CompiledStylesheet{}, jc.evalStylesheet)
	for _, sheet := range compMeta.Template.ExternalStylesheets {
		linker.Add(jc.styleCompiler.CompileStyles(pool.NewOutputContext(""), compMeta, sheet))
	}
	if err := linker.Link(componentStylesheet); err != nil {
		return err
	}

	directives := make([]*metadata.CompileDirectiveMetadata, 0, len(template.Directives))
	for _, d := range template.Directives {
		summary, err := jc.metadataResolver.GetDirectiveSummary(d)
		if err != nil {
			return err
		}
		directives = append(directives, summary)
	}
	pipes := make([]*metadata.CompilePipeMetadata, 0, len(template.NgModule.TransitiveModule.Pipes))
	for _, p := range template.NgModule.TransitiveModule.Pipes {
		summary, err := jc.metadataResolver.GetPipeSummary(p)
		if err != nil {
			return err
		}
		pipes = append(pipes, summary)
	}

	parsed, err := jc.templateParser.Parse(compMeta, compMeta.Template.Template, directives, pipes,
		template.NgModule.Schemas, templateSourceURL(template.NgModule.Type, compMeta), compMeta.Template.PreserveWhitespaces)
	if err != nil {
		return err
	}
	res, err := jc.viewCompiler.CompileComponent(outputCtx, compMeta, parsed.TemplateAst, o.Variable(componentStylesheet.StylesVar), parsed.UsedPipes)
	if err != nil {
		return err
	}
	exports, err := jc.interpretOrJit(outputCtx)
	if err != nil {
		return err
	}
	view, ok := exports[res.ViewClassVar].(*core.ViewDefinition)
	if !ok {
		return util.InternalError("%s did not produce %s", outputCtx.GenFilePath, res.ViewClassVar)
	}
	rendererType, ok := exports[res.RendererTypeVar].(*core.RendererType2)
	if !ok {
		return util.InternalError("%s did not produce %s", outputCtx.GenFilePath, res.RendererTypeVar)
	}
	template.compiled(view, rendererType)
	jc.compiledTemplateCache[template.CompType] = template
	jc.log.Debug(context.Background(), "compiled component", "component", compMeta.Name(), "views", len(res.Views))
	return nil
}

func (jc *JitCompiler) compileHostTemplate(template *CompiledTemplate) error {
	compMeta := template.CompMeta
	outputCtx := pool.NewOutputContext(templateJitURL(template.NgModule.Type, compMeta.Name()+"_Host"))
	res, err := jc.viewCompiler.CompileHost(outputCtx, compMeta)
	if err != nil {
		return err
	}
	exports, err := jc.interpretOrJit(outputCtx)
	if err != nil {
		return err
	}
	view, ok := exports[res.ViewClassVar].(*core.ViewDefinition)
	if !ok {
		return util.InternalError("%s did not produce %s", outputCtx.GenFilePath, res.ViewClassVar)
	}
	template.compiled(view, nil)
	jc.compiledHostTemplateCache[template.CompType] = template
	return nil
}

// evalStylesheet evaluates an external stylesheet whose dependencies are linked.
func (jc *JitCompiler) evalStylesheet(cs *sc.CompiledStylesheet) ([]any, error) {
	cs.OutputCtx.GenFilePath = sharedStylesheetJitURL(cs.Meta, jc.sharedStylesheetCount)
	jc.sharedStylesheetCount++
	exports, err := jc.interpretOrJit(cs.OutputCtx)
	if err != nil {
		return nil, err
	}
	styles, ok := exports[cs.StylesVar].([]any)
	if !ok {
		return nil, util.InternalError("%s did not produce a style array", cs.OutputCtx.GenFilePath)
	}
	return styles, nil
}

func (jc *JitCompiler) interpretOrJit(outputCtx *pool.OutputContext) (map[string]interface{}, error) {
	program := outputCtx.Program()
	if jc.onProgram != nil {
		jc.onProgram(outputCtx.GenFilePath, o.EmitStatements(program))
	}
	return jc.backend.Execute(outputCtx.GenFilePath, program, jc.reflector)
}

// OnProgram registers fn to receive the JavaScript source of every program before it runs.
func (jc *JitCompiler) OnProgram(fn func(sourceURL, source string)) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.onProgram = fn
}

// ClearCacheFor drops everything compiled for t. Precompiled summaries stay.
func (jc *JitCompiler) ClearCacheFor(t *core.Type) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	delete(jc.compiledNgModuleCache, t)
	jc.metadataResolver.ClearCacheFor(t)
	delete(jc.compiledHostTemplateCache, t)
	delete(jc.compiledTemplateCache, t)
	jc.log.Info(context.Background(), "cleared compiler cache", "type", t.Name)
}

// ClearCache drops everything compiled so far. Precompiled summaries stay.
func (jc *JitCompiler) ClearCache() {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.clearCache()
	jc.log.Info(context.Background(), "cleared compiler cache")
}

func (jc *JitCompiler) clearCache() {
	jc.metadataResolver.ClearCache()
	jc.compiledTemplateCache = map[*core.Type]*CompiledTemplate{}
	jc.compiledHostTemplateCache = map[*core.Type]*CompiledTemplate{}
	jc.compiledNgModuleCache = map[*core.Type]*core.NgModuleFactory{}
}

func ngModuleJitURL(m *metadata.CompileNgModuleMetadata) string {
	return fmt.Sprintf("ng:///%s/module.ngfactory.js", m.Type.Name)
}

func templateJitURL(module *core.Type, compName string) string {
	return fmt.Sprintf("ng:///%s/%s.ngfactory.js", module.Name, compName)
}

func templateSourceURL(module *core.Type, comp *metadata.CompileDirectiveMetadata) string {
	if comp.Template.TemplateURL != "" {
		return comp.Template.TemplateURL
	}
	return fmt.Sprintf("ng:///%s/%s.html", module.Name, comp.Name())
}

func sharedStylesheetJitURL(meta *metadata.CompileStylesheetMetadata, id int) string {
	return fmt.Sprintf("ng:///css/%d%s.ngstyle.js", id, path.Base(meta.ModuleURL))
}
