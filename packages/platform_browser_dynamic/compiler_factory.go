// Package platform_browser_dynamic exposes the runtime compiler: a factory that wires the
// compiler pipeline from options and a facade over the JIT compiler.
package platform_browser_dynamic

import (
	"context"
	"os"

	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/expression_parser"
	"ngjit-go/packages/compiler/src/jit"
	"ngjit-go/packages/compiler/src/logging"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/ml_parser"
	"ngjit-go/packages/compiler/src/ng_module_compiler"
	"ngjit-go/packages/compiler/src/resolver"
	"ngjit-go/packages/compiler/src/schema"
	sc "ngjit-go/packages/compiler/src/style_compiler"
	tp "ngjit-go/packages/compiler/src/template_parser"
	vc "ngjit-go/packages/compiler/src/view_compiler"
	"ngjit-go/packages/core"
)

// CompilerType is the token modules inject to reach the compiler that compiled them.
var CompilerType = core.NewType("Compiler", nil)

// CompilerImpl is the public compiler. It forwards to a JitCompiler and makes itself
// available to every module it compiles under CompilerType.
type CompilerImpl struct {
	delegate *jit.JitCompiler
	Config   *config.CompilerConfig
}

// CompileModuleSync compiles moduleType. Components with templateUrl or styleUrls make it fail.
func (c *CompilerImpl) CompileModuleSync(moduleType *core.Type) (*core.NgModuleFactory, error) {
	return c.delegate.CompileModuleSync(moduleType)
}

// CompileModuleAsync loads component resources before compiling moduleType.
func (c *CompilerImpl) CompileModuleAsync(ctx context.Context, moduleType *core.Type) (*core.NgModuleFactory, error) {
	return c.delegate.CompileModuleAsync(ctx, moduleType)
}

func (c *CompilerImpl) CompileModuleAndAllComponentsSync(moduleType *core.Type) (*jit.ModuleWithComponentFactories, error) {
	return c.delegate.CompileModuleAndAllComponentsSync(moduleType)
}

func (c *CompilerImpl) CompileModuleAndAllComponentsAsync(ctx context.Context, moduleType *core.Type) (*jit.ModuleWithComponentFactories, error) {
	return c.delegate.CompileModuleAndAllComponentsAsync(ctx, moduleType)
}

func (c *CompilerImpl) GetComponentFactory(component *core.Type) (*core.ComponentFactory, error) {
	return c.delegate.GetComponentFactory(component)
}

func (c *CompilerImpl) LoadAotSummaries(summaries *metadata.SummaryProvider) {
	c.delegate.LoadAotSummaries(summaries)
}

func (c *CompilerImpl) HasAotSummary(t *core.Type) bool {
	return c.delegate.HasAotSummary(t)
}

func (c *CompilerImpl) ClearCache() {
	c.delegate.ClearCache()
}

func (c *CompilerImpl) ClearCacheFor(t *core.Type) {
	c.delegate.ClearCacheFor(t)
}

// GetModuleID returns the id moduleType registers its factory under, empty when it has none.
func (c *CompilerImpl) GetModuleID(moduleType *core.Type) (string, error) {
	return c.delegate.ModuleID(moduleType)
}

// OnProgram receives the JavaScript source of every generated program.
func (c *CompilerImpl) OnProgram(fn func(sourceURL, source string)) {
	c.delegate.OnProgram(fn)
}

func (c *CompilerImpl) extraNgModuleProviders(*core.Type) []core.Provider {
	return []core.Provider{{Token: CompilerType, UseValue: c}}
}

// JitCompilerFactory creates compilers over one declaration registry.
type JitCompilerFactory struct {
	registry       *metadata.Registry
	defaultOptions []config.CompilerOptions
	loader         resolver.ResourceLoader
	log            logging.Logger
	reflectorNames map[string]interface{}
}

// FactoryOption configures a JitCompilerFactory.
type FactoryOption func(*JitCompilerFactory)

// WithResourceLoader sets the loader for templateUrl and styleUrls.
func WithResourceLoader(loader resolver.ResourceLoader) FactoryOption {
	return func(f *JitCompilerFactory) {
		f.loader = loader
	}
}

// WithLogger sets the logger. Without it the factory builds one from the merged LogLevel and
// LogFormat options, or discards logs when neither is set.
func WithLogger(log logging.Logger) FactoryOption {
	return func(f *JitCompilerFactory) {
		f.log = log
	}
}

// WithDefaultOptions sets options that come before the ones given to CreateCompiler.
func WithDefaultOptions(options ...config.CompilerOptions) FactoryOption {
	return func(f *JitCompilerFactory) {
		f.defaultOptions = append(f.defaultOptions, options...)
	}
}

// WithReflectorNames adds values for external references that carry only a name.
func WithReflectorNames(names map[string]interface{}) FactoryOption {
	return func(f *JitCompilerFactory) {
		f.reflectorNames = names
	}
}

func NewJitCompilerFactory(registry *metadata.Registry, opts ...FactoryOption) *JitCompilerFactory {
	f := &JitCompilerFactory{registry: registry}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCompiler merges the default options with options, later ones winning, and wires a
// fresh compiler pipeline. Compilers created by one factory share nothing but the registry.
func (f *JitCompilerFactory) CreateCompiler(options ...config.CompilerOptions) (*CompilerImpl, error) {
	merged := config.MergeOptions(append(append([]config.CompilerOptions(nil), f.defaultOptions...), options...)...)
	cfg, err := merged.ToConfig()
	if err != nil {
		return nil, err
	}

	log := f.log
	if log == nil {
		log = loggerFor(merged)
	}

	summaries := resolver.NewSummaryResolver()
	schemaRegistry := schema.NewDomElementSchemaRegistry()
	c := &CompilerImpl{Config: cfg}
	c.delegate = jit.NewJitCompiler(
		resolver.NewCompileMetadataResolver(cfg, f.registry, f.loader, summaries, log),
		tp.NewTemplateParser(cfg, expression_parser.NewParser(expression_parser.NewLexer()), schemaRegistry, ml_parser.NewParser()),
		sc.NewStyleCompiler(),
		vc.NewViewCompiler(schemaRegistry),
		ng_module_compiler.NewNgModuleCompiler(),
		summaries,
		jit.NewJitReflector(f.reflectorNames),
		cfg,
		log,
		c.extraNgModuleProviders,
	)
	log.Debug(context.Background(), "created compiler", "use_jit", cfg.UseJit, "encapsulation", cfg.DefaultEncapsulation.String())
	return c, nil
}

func loggerFor(o config.CompilerOptions) logging.Logger {
	if o.LogLevel == "" && o.LogFormat == "" {
		return logging.Nop()
	}
	return logging.New(&logging.Config{
		Level:  logging.ParseLevel(o.LogLevel),
		Format: o.LogFormat,
		Output: os.Stderr,
	})
}
