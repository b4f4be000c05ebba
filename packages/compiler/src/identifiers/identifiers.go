// Package identifiers names the runtime symbols generated code calls. Each reference carries the
// runtime value it resolves to, so the JIT reflector needs no lookup table.
package identifiers

import (
	"ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/core"
)

// CORE is the module path of the runtime.
const CORE = "ngjit-go/packages/core"

func ref(name string, runtime interface{}) *output.ExternalReference {
	return &output.ExternalReference{ModuleName: CORE, Name: name, Runtime: runtime}
}

// Instructions
var (
	ElementStart          = ref("ɵɵelementStart", core.ElementStart)
	ElementEnd            = ref("ɵɵelementEnd", core.ElementEnd)
	ElementContainerStart = ref("ɵɵelementContainerStart", core.ElementContainerStart)
	ElementContainerEnd   = ref("ɵɵelementContainerEnd", core.ElementContainerEnd)

	Text            = ref("ɵɵtext", core.Text)
	TextInterpolate = ref("ɵɵtextInterpolate", core.TextInterpolate)
	Interpolate     = ref("ɵɵinterpolate", core.Interpolate)

	Property  = ref("ɵɵproperty", core.Property)
	Attribute = ref("ɵɵattribute", core.Attribute)
	ClassProp = ref("ɵɵclassProp", core.ClassProp)
	StyleProp = ref("ɵɵstyleProp", core.StyleProp)

	Listener = ref("ɵɵlistener", core.Listener)

	TemplateCreate = ref("ɵɵtemplate", core.Template)
	Directive      = ref("ɵɵdirective", core.Directive)
	Component      = ref("ɵɵcomponent", core.Component)
	Projection     = ref("ɵɵprojection", core.Projection)

	GetCurrentView = ref("ɵɵgetCurrentView", core.GetCurrentView)
	RestoreView    = ref("ɵɵrestoreView", core.RestoreView)
	NextContext    = ref("ɵɵnextContext", core.NextContext)
	Reference      = ref("ɵɵreference", core.Reference)

	Pipe     = ref("ɵɵpipe", core.Pipe)
	PipeBind = ref("ɵɵpipeBind", core.PipeBind)
)

// Definitions
var (
	ViewDef             = ref("ɵvid", core.ViewDef)
	CreateRendererType2 = ref("ɵcrt", core.CreateRendererType2)

	CreateModuleFactory   = ref("ɵcmf", core.CreateModuleFactory)
	ModuleDef             = ref("ɵmod", core.ModuleDef)
	ModuleProviderDef     = ref("ɵmpd", core.ModuleProviderDef)
	RegisterModuleFactory = ref("ɵregisterModuleFactory", core.RegisterModuleFactory)
)

// Tokens and types provided by every module.
var (
	InjectorRef                 = ref("Injector", core.InjectorToken)
	NgModuleRef                 = ref("NgModuleRef", core.NgModuleRefToken)
	ComponentFactoryResolver    = ref("ComponentFactoryResolver", core.ComponentFactoryResolverToken)
	CodegenComponentFactoryType = ref("CodegenComponentFactoryResolver", core.CodegenComponentFactoryResolverType)
)

// CreationInstructions are only valid in the creation block of a template function. Every
// other instruction belongs to the update block or to listeners.
var CreationInstructions = map[*output.ExternalReference]bool{
	ElementStart:          true,
	ElementEnd:            true,
	ElementContainerStart: true,
	ElementContainerEnd:   true,
	Text:                  true,
	Listener:              true,
	TemplateCreate:        true,
	Directive:             true,
	Component:             true,
	Projection:            true,
	GetCurrentView:        true,
	Pipe:                  true,
}

// TypeReference refers to a declared type from generated code.
func TypeReference(t *core.Type, moduleURL string) *output.ExternalReference {
	return &output.ExternalReference{ModuleName: moduleURL, Name: t.Name, Runtime: t}
}

// Value refers to an arbitrary runtime value, such as a late-bound view definition.
func Value(name, moduleURL string, v interface{}) *output.ExternalReference {
	return &output.ExternalReference{ModuleName: moduleURL, Name: name, Runtime: v}
}
