package core

import "fmt"

// Injector resolves tokens.
type Injector interface {
	Get(token any) (any, error)
}

// ComponentFactory creates instances of one component through its host view.
type ComponentFactory struct {
	Selector           string
	ComponentType      *Type
	Inputs             map[string]string
	NgContentSelectors []string

	hostView *ViewDefinitionRef
}

// NewComponentFactory is the instruction that binds a host view to a component type.
func NewComponentFactory(selector string, componentType *Type, hostView *ViewDefinitionRef, inputs map[string]string, ngContentSelectors []string) *ComponentFactory {
	return &ComponentFactory{
		Selector:           selector,
		ComponentType:      componentType,
		Inputs:             inputs,
		NgContentSelectors: ngContentSelectors,
		hostView:           hostView,
	}
}

// HostView exposes the late-bound host view definition.
func (f *ComponentFactory) HostView() *ViewDefinitionRef {
	return f.hostView
}

// Create builds the host element and component instance. The component view is created and
// updated by the first DetectChanges.
func (f *ComponentFactory) Create(injector Injector) (ref *ComponentRef, err error) {
	defer recoverRuntime(&err)
	root := NewFragment()
	host := &View{
		def:        f.hostView.Definition(),
		injector:   injector,
		root:       root,
		slots:      map[int]any{},
		templates:  map[int]*templateSlot{},
		directives: map[int][]*directiveInstance{},
		styles:     &styleRegistry{seen: map[string]bool{}},
	}
	host.create()
	ds := host.directives[0]
	if len(ds) == 0 || ds[0].component == nil {
		return nil, NewRuntimeError("host view of %s did not create the component", f.ComponentType.Name)
	}
	return &ComponentRef{
		Instance: ds[0].instance,
		Location: host.node(0, "create"),
		hostView: host,
	}, nil
}

// ComponentRef is a created component.
type ComponentRef struct {
	Instance any
	Location *Node

	hostView *View
}

// DetectChanges runs the update pass of the component and everything below it.
func (r *ComponentRef) DetectChanges() (err error) {
	defer recoverRuntime(&err)
	r.hostView.refresh()
	return nil
}

// SetInput writes a component input as a parent binding would.
func (r *ComponentRef) SetInput(name string, value any) error {
	d := r.hostView.directives[0][0]
	prop, ok := d.inputs[name]
	if !ok {
		prop = name
	}
	return SetProperty(d.instance, prop, value)
}

// Styles returns the resolved styles of every component rendered so far.
func (r *ComponentRef) Styles() []string {
	return r.hostView.styles.styles
}

// Destroy tears the component down and detaches its host element.
func (r *ComponentRef) Destroy() {
	r.hostView.destroy()
	r.Location.Remove()
}

// ComponentFactoryResolver looks up factories for entry components.
type ComponentFactoryResolver interface {
	ResolveComponentFactory(t *Type) (*ComponentFactory, error)
}

// CodegenComponentFactoryResolver is the resolver synthesized for every module.
type CodegenComponentFactoryResolver struct {
	factories map[*Type]*ComponentFactory
	parent    ComponentFactoryResolver
}

// CodegenComponentFactoryResolverType is provided by generated module definitions. Its deps are
// the factory list, the parent resolver (optional) and the module ref.
var CodegenComponentFactoryResolverType = NewType("CodegenComponentFactoryResolver", func(deps ...any) any {
	r := &CodegenComponentFactoryResolver{factories: map[*Type]*ComponentFactory{}}
	if len(deps) > 0 {
		list, _ := deps[0].([]any)
		for _, f := range list {
			if cf, ok := f.(*ComponentFactory); ok {
				r.factories[cf.ComponentType] = cf
			}
		}
	}
	if len(deps) > 1 {
		r.parent, _ = deps[1].(ComponentFactoryResolver)
	}
	return r
})

func (r *CodegenComponentFactoryResolver) ResolveComponentFactory(t *Type) (*ComponentFactory, error) {
	if f, ok := r.factories[t]; ok {
		return f, nil
	}
	if r.parent != nil {
		return r.parent.ResolveComponentFactory(t)
	}
	return nil, fmt.Errorf("No component factory found for %s. Did you add it to entryComponents?", t.Name)
}
