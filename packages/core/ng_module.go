package core

import (
	"fmt"
	"sync"
)

// Provider definition flags, shared with the module compiler.
const (
	TypeValueProvider       = 1 << 8
	TypeClassProvider       = 1 << 9
	TypeFactoryProvider     = 1 << 10
	TypeUseExistingProvider = 1 << 11
)

// Dependency flags for the [flags, token] form of a provider dep.
const (
	DepFlagsNone     = 0
	DepFlagsOptional = 1 << 1
	DepFlagsSkipSelf = 1 << 2
	DepFlagsValue    = 1 << 3
)

// NgModuleProviderDef is one provider of a module definition.
type NgModuleProviderDef struct {
	Flags int
	Token any
	Value any
	Deps  []any
}

// ModuleProviderDef is the instruction building an NgModuleProviderDef.
func ModuleProviderDef(flags int, token any, value any, deps []any) *NgModuleProviderDef {
	return &NgModuleProviderDef{Flags: flags, Token: token, Value: value, Deps: deps}
}

// NgModuleDefinition is the provider table of a module. A later provider for the same token
// overrides an earlier one.
type NgModuleDefinition struct {
	Providers []*NgModuleProviderDef
	byToken   map[any]int
}

// ModuleDef is the instruction building an NgModuleDefinition.
func ModuleDef(providers []any) *NgModuleDefinition {
	def := &NgModuleDefinition{byToken: map[any]int{}}
	for _, p := range providers {
		pd, ok := p.(*NgModuleProviderDef)
		if !ok {
			panic(NewRuntimeError("ɵɵmoduleDef: %T is not a provider definition", p))
		}
		def.byToken[pd.Token] = len(def.Providers)
		def.Providers = append(def.Providers, pd)
	}
	return def
}

// NgModuleFactory creates module instances with their injector.
type NgModuleFactory struct {
	ModuleType *Type
	Bootstrap  []*Type

	defFactory func(l any) *NgModuleDefinition
	once       sync.Once
	def        *NgModuleDefinition
}

// CreateModuleFactory is the instruction emitted as the <Module>NgFactory variable.
func CreateModuleFactory(moduleType *Type, bootstrap []any, defFactory func(l any) *NgModuleDefinition) *NgModuleFactory {
	f := &NgModuleFactory{ModuleType: moduleType, defFactory: defFactory}
	for _, b := range bootstrap {
		if t, ok := b.(*Type); ok {
			f.Bootstrap = append(f.Bootstrap, t)
		}
	}
	return f
}

// Definition evaluates the module definition once.
func (f *NgModuleFactory) Definition() (def *NgModuleDefinition, err error) {
	defer recoverRuntime(&err)
	f.once.Do(func() {
		f.def = f.defFactory(nil)
	})
	if f.def == nil {
		return nil, NewRuntimeError("module definition of %s is not available", f.ModuleType.Name)
	}
	return f.def, nil
}

// Create instantiates the module with an optional parent injector.
func (f *NgModuleFactory) Create(parent Injector) (*NgModuleRef, error) {
	def, err := f.Definition()
	if err != nil {
		return nil, err
	}
	ref := &NgModuleRef{factory: f, def: def, parent: parent, instances: map[any]any{}, resolving: map[any]bool{}}
	inst, err := ref.instantiate(f.ModuleType)
	if err != nil {
		return nil, fmt.Errorf("instantiating %s: %w", f.ModuleType.Name, err)
	}
	ref.Instance = inst
	return ref, nil
}

// NgModuleRef is a module instance and its injector.
type NgModuleRef struct {
	Instance any

	factory   *NgModuleFactory
	def       *NgModuleDefinition
	parent    Injector
	instances map[any]any
	resolving map[any]bool
}

// Bootstrap returns the bootstrap component types of the module.
func (r *NgModuleRef) Bootstrap() []*Type {
	return r.factory.Bootstrap
}

// ComponentFactoryResolver returns the module's synthesized resolver.
func (r *NgModuleRef) ComponentFactoryResolver() (ComponentFactoryResolver, error) {
	v, err := r.Get(ComponentFactoryResolverToken)
	if err != nil {
		return nil, err
	}
	cfr, ok := v.(ComponentFactoryResolver)
	if !ok {
		return nil, fmt.Errorf("%T is not a ComponentFactoryResolver", v)
	}
	return cfr, nil
}

// Get resolves token, instantiating providers lazily. Unknown tokens fall through to the parent.
func (r *NgModuleRef) Get(token any) (any, error) {
	switch token {
	case InjectorToken, NgModuleRefToken:
		return r, nil
	}
	idx, ok := r.def.byToken[token]
	if !ok {
		if r.parent != nil {
			return r.parent.Get(token)
		}
		return nil, fmt.Errorf("No provider for %s!", TokenName(token))
	}
	if inst, ok := r.instances[token]; ok {
		return inst, nil
	}
	if r.resolving[token] {
		return nil, fmt.Errorf("Cannot instantiate cyclic dependency! %s", TokenName(token))
	}
	r.resolving[token] = true
	defer delete(r.resolving, token)

	p := r.def.Providers[idx]
	inst, err := r.createProvider(p)
	if err != nil {
		return nil, err
	}
	r.instances[token] = inst
	return inst, nil
}

func (r *NgModuleRef) createProvider(p *NgModuleProviderDef) (inst any, err error) {
	switch {
	case p.Flags&TypeValueProvider != 0:
		return p.Value, nil
	case p.Flags&TypeUseExistingProvider != 0:
		return r.Get(p.Value)
	}
	deps, err := r.resolveDeps(p.Deps)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", TokenName(p.Token), err)
	}
	defer recoverRuntime(&err)
	switch {
	case p.Flags&TypeClassProvider != 0:
		t, ok := p.Value.(*Type)
		if !ok {
			return nil, fmt.Errorf("class provider for %s is not a type", TokenName(p.Token))
		}
		return t.New(deps...), nil
	case p.Flags&TypeFactoryProvider != 0:
		return CallFunc(p.Value, deps...), nil
	}
	return nil, fmt.Errorf("unknown provider flags %d for %s", p.Flags, TokenName(p.Token))
}

func (r *NgModuleRef) instantiate(t *Type) (any, error) {
	deps, err := r.resolveDeps(t.Deps)
	if err != nil {
		return nil, err
	}
	return t.New(deps...), nil
}

func (r *NgModuleRef) resolveDeps(deps []any) ([]any, error) {
	out := make([]any, len(deps))
	for i, d := range deps {
		flags, token := DepFlagsNone, d
		if pair, ok := d.([]any); ok && len(pair) == 2 {
			if f, ok := pair[0].(int); ok {
				flags, token = f, pair[1]
			} else if IsNumber(pair[0]) {
				flags, token = int(ToNumber(pair[0])), pair[1]
			}
		}
		if flags&DepFlagsValue != 0 {
			out[i] = token
			continue
		}
		var (
			v   any
			err error
		)
		if flags&DepFlagsSkipSelf != 0 {
			if r.parent == nil {
				err = fmt.Errorf("No provider for %s!", TokenName(token))
			} else {
				v, err = r.parent.Get(token)
			}
		} else {
			v, err = r.Get(token)
		}
		if err != nil {
			if flags&DepFlagsOptional != 0 {
				continue
			}
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var (
	moduleFactoriesMu sync.RWMutex
	moduleFactories   = map[string]*NgModuleFactory{}
)

// RegisterModuleFactory registers factory under id. A later registration for the same id
// replaces the earlier one.
func RegisterModuleFactory(id string, factory *NgModuleFactory) {
	moduleFactoriesMu.Lock()
	defer moduleFactoriesMu.Unlock()
	moduleFactories[id] = factory
}

// GetModuleFactory returns the factory registered under id.
func GetModuleFactory(id string) (*NgModuleFactory, error) {
	moduleFactoriesMu.RLock()
	defer moduleFactoriesMu.RUnlock()
	f, ok := moduleFactories[id]
	if !ok {
		return nil, fmt.Errorf("No module with ID %s loaded", id)
	}
	return f, nil
}
