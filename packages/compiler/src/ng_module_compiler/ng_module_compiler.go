// Package ng_module_compiler emits module factories: the provider table of a module, led by the
// component factory resolver of its entry components, wrapped in a factory that is optionally
// registered under the module id.
package ng_module_compiler

import (
	"fmt"

	"ngjit-go/packages/compiler/src/identifiers"
	"ngjit-go/packages/compiler/src/metadata"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/pool"
	"ngjit-go/packages/compiler/src/util"
	"ngjit-go/packages/core"
)

const logVar = "_l"

// NgModuleCompileResult names the exported factory variable.
type NgModuleCompileResult struct {
	NgModuleFactoryVar string
}

// NgModuleCompiler compiles modules.
type NgModuleCompiler struct{}

// NewNgModuleCompiler creates a new NgModuleCompiler
func NewNgModuleCompiler() *NgModuleCompiler {
	return &NgModuleCompiler{}
}

// Compile appends <Module>NgFactory to outputCtx. entryComponents are the components whose
// factories the module's resolver hands out; their ComponentFactory must be set.
func (c *NgModuleCompiler) Compile(
	outputCtx *pool.OutputContext,
	module *metadata.CompileNgModuleMetadata,
	entryComponents []*metadata.CompileDirectiveMetadata,
	extraProviders []core.Provider,
) (*NgModuleCompileResult, error) {
	b := &providerBuilder{moduleURL: module.ModuleURL}

	defs := []o.OutputExpression{b.componentFactoryResolverDef(entryComponents)}
	var providers []core.Provider
	if tm := module.TransitiveModule; tm != nil {
		for _, m := range tm.Modules {
			providers = append(providers, core.Provider{Token: m, UseClass: m})
		}
		providers = append(providers, tm.Providers...)
	}
	providers = append(providers, extraProviders...)
	for _, p := range providers {
		def, err := b.providerDef(p)
		if err != nil {
			return nil, util.ConfigurationError(module.Type.Name, "Invalid provider for %s: %v", module.Type.Name, err)
		}
		defs = append(defs, def)
	}

	moduleDef := o.Call(o.ImportExpr(identifiers.ModuleDef), o.NewLiteralArrayExpr(defs, nil))
	defFactory := o.NewFunctionExpr([]*o.FnParam{o.NewFnParam(logVar)}, []o.OutputStatement{o.Return(moduleDef)}, "", nil)

	bootstrap := make([]o.OutputExpression, len(module.BootstrapComponents))
	for i, t := range module.BootstrapComponents {
		bootstrap[i] = o.ImportExpr(identifiers.TypeReference(t, module.ModuleURL))
	}

	factoryVar := util.SanitizeIdentifier(module.Type.Name) + "NgFactory"
	outputCtx.Statements = append(outputCtx.Statements, o.NewDeclareVarStmt(factoryVar,
		o.Call(o.ImportExpr(identifiers.CreateModuleFactory),
			o.ImportExpr(identifiers.TypeReference(module.Type, module.ModuleURL)),
			o.NewLiteralArrayExpr(bootstrap, nil),
			defFactory),
		o.StmtModifierExported|o.StmtModifierFinal, nil))

	if module.ID != "" {
		outputCtx.Statements = append(outputCtx.Statements, o.ToStmt(
			o.Call(o.ImportExpr(identifiers.RegisterModuleFactory), o.Literal(module.ID), o.Variable(factoryVar))))
	}
	return &NgModuleCompileResult{NgModuleFactoryVar: factoryVar}, nil
}

type providerBuilder struct {
	moduleURL string
}

// componentFactoryResolverDef provides the resolver of entryComponents. Its deps are the
// factory list as a value, the parent resolver and the module ref.
func (b *providerBuilder) componentFactoryResolverDef(entryComponents []*metadata.CompileDirectiveMetadata) o.OutputExpression {
	factories := make([]o.OutputExpression, 0, len(entryComponents))
	for _, comp := range entryComponents {
		ref := identifiers.Value(util.SanitizeIdentifier(comp.Name())+"NgFactory", comp.ModuleURL, comp.ComponentFactory)
		factories = append(factories, o.ImportExpr(ref))
	}
	deps := o.LiteralArr(
		o.LiteralArr(o.Literal(core.DepFlagsValue), o.NewLiteralArrayExpr(factories, nil)),
		o.LiteralArr(o.Literal(core.DepFlagsSkipSelf|core.DepFlagsOptional), o.ImportExpr(identifiers.ComponentFactoryResolver)),
		o.ImportExpr(identifiers.NgModuleRef),
	)
	return o.Call(o.ImportExpr(identifiers.ModuleProviderDef),
		o.Literal(core.TypeClassProvider),
		o.ImportExpr(identifiers.ComponentFactoryResolver),
		o.ImportExpr(identifiers.CodegenComponentFactoryType),
		deps)
}

func (b *providerBuilder) providerDef(p core.Provider) (o.OutputExpression, error) {
	if p.Token == nil {
		return nil, fmt.Errorf("provider without a token")
	}
	var (
		flags int
		value o.OutputExpression
		deps  = p.Deps
	)
	switch {
	case p.UseValue != nil:
		flags = core.TypeValueProvider
		value = b.valueExpr("value", p.UseValue)
		deps = nil
	case p.UseClass != nil:
		flags = core.TypeClassProvider
		value = o.ImportExpr(identifiers.TypeReference(p.UseClass, b.moduleURL))
		if deps == nil {
			deps = p.UseClass.Deps
		}
	case p.UseFactory != nil:
		flags = core.TypeFactoryProvider
		value = b.valueExpr(core.TokenName(p.Token)+"Factory", p.UseFactory)
	case p.UseExisting != nil:
		flags = core.TypeUseExistingProvider
		value = b.tokenExpr(p.UseExisting)
		deps = nil
	default:
		t, ok := p.Token.(*core.Type)
		if !ok {
			return nil, fmt.Errorf("provider for %s has no value, class, factory or existing token", core.TokenName(p.Token))
		}
		flags = core.TypeClassProvider
		value = o.ImportExpr(identifiers.TypeReference(t, b.moduleURL))
		if deps == nil {
			deps = t.Deps
		}
	}
	depExprs := make([]o.OutputExpression, len(deps))
	for i, d := range deps {
		depExprs[i] = b.depExpr(d)
	}
	return o.Call(o.ImportExpr(identifiers.ModuleProviderDef),
		o.Literal(flags), b.tokenExpr(p.Token), value, o.NewLiteralArrayExpr(depExprs, nil)), nil
}

// depExpr keeps the [flags, token] form of a dependency.
func (b *providerBuilder) depExpr(dep any) o.OutputExpression {
	if pair, ok := dep.([]any); ok && len(pair) == 2 {
		if flags, ok := pair[0].(int); ok {
			return o.LiteralArr(o.Literal(flags), b.tokenExpr(pair[1]))
		}
	}
	return b.tokenExpr(dep)
}

func (b *providerBuilder) tokenExpr(token any) o.OutputExpression {
	switch t := token.(type) {
	case *core.Type:
		return o.ImportExpr(identifiers.TypeReference(t, b.moduleURL))
	case string:
		return o.Literal(t)
	}
	return b.valueExpr(core.TokenName(token), token)
}

func (b *providerBuilder) valueExpr(name string, v any) o.OutputExpression {
	return o.ImportExpr(identifiers.Value(util.SanitizeIdentifier(name), b.moduleURL, v))
}
