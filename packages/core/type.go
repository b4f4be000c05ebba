// Package core is the runtime that compiled views execute against: declared types, the
// instruction set emitted by the view compiler, an in-memory node tree, component and module
// factories.
//
// Instructions keep their state in package variables and must run on a single goroutine.
package core

import "fmt"

// Type is the identity of a declared component, directive, pipe, module or service.
// Declarations are looked up by pointer, so every Type must be created once and shared.
type Type struct {
	Name string
	// Deps lists the injection tokens resolved and passed to Factory.
	Deps    []any
	Factory func(deps ...any) any
}

// NewType declares a type with a factory. Factory may be nil for types that are never
// instantiated, such as modules without a constructor.
func NewType(name string, factory func(deps ...any) any, deps ...any) *Type {
	return &Type{Name: name, Factory: factory, Deps: deps}
}

func (t *Type) String() string {
	return t.Name
}

// New instantiates the type with already resolved dependencies.
func (t *Type) New(deps ...any) any {
	if t.Factory == nil {
		return &struct{}{}
	}
	return t.Factory(deps...)
}

// InjectionToken is a non-type injection token.
type InjectionToken struct {
	Desc string
}

// NewInjectionToken creates a token that is only equal to itself.
func NewInjectionToken(desc string) *InjectionToken {
	return &InjectionToken{Desc: desc}
}

func (t *InjectionToken) String() string {
	return fmt.Sprintf("InjectionToken %s", t.Desc)
}

// Well-known tokens provided by every module injector.
var (
	InjectorToken                 = NewInjectionToken("Injector")
	NgModuleRefToken              = NewInjectionToken("NgModuleRef")
	ComponentFactoryResolverToken = NewInjectionToken("ComponentFactoryResolver")
)

// TokenName renders a token for error messages.
func TokenName(token any) string {
	switch t := token.(type) {
	case *Type:
		return t.Name
	case *InjectionToken:
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprintf("%v", token)
	}
}

// Lifecycle hooks a directive may implement.
type (
	OnInit interface {
		NgOnInit()
	}
	DoCheck interface {
		NgDoCheck()
	}
	OnDestroy interface {
		NgOnDestroy()
	}
)

// InputSetter lets a directive receive inputs without reflection.
type InputSetter interface {
	SetInput(name string, value any)
}

// TemplateConsumer is implemented by structural directives. It is called once, right after
// the directive is created on an <ng-template> slot.
type TemplateConsumer interface {
	SetTemplate(vc *ViewContainerRef, tpl *TemplateRef)
}

// PipeTransform is implemented by pipe instances.
type PipeTransform interface {
	Transform(value any, args ...any) any
}

// Provider configures one injection token. Exactly one of UseValue, UseClass, UseFactory and
// UseExisting is expected to be set.
type Provider struct {
	Token       any
	UseValue    any
	UseClass    *Type
	UseFactory  func(deps ...any) any
	UseExisting any
	Deps        []any
}
