// Package common provides the built-in structural directives and pipes and the module that
// exports them.
package common

import (
	"ngjit-go/packages/core"
)

// NgIfContext is the context of the views NgIf stamps out. `*ngIf="cond as value"` and
// `let value` both read the condition.
type NgIfContext struct {
	Implicit any `ng:"$implicit"`
	NgIf     any `ng:"ngIf"`
}

// NgIf renders its template while the condition is truthy and the else template, when one is
// bound, while it is falsy.
type NgIf struct {
	vc        *core.ViewContainerRef
	context   NgIfContext
	then      *core.TemplateRef
	elseTpl   *core.TemplateRef
	thenView  *core.View
	elseView  *core.View
	condition bool
}

// NgIfType is the declared type of NgIf.
var NgIfType = core.NewType("NgIf", func(...any) any { return &NgIf{} })

func (d *NgIf) SetTemplate(vc *core.ViewContainerRef, tpl *core.TemplateRef) {
	d.vc = vc
	d.then = tpl
}

func (d *NgIf) SetInput(name string, value any) {
	switch name {
	case "ngIf":
		d.context.Implicit = value
		d.context.NgIf = value
		d.condition = core.Truthy(value)
	case "ngIfThen":
		if tpl := templateInput("ngIfThen", value); tpl != d.then {
			d.then = tpl
			d.clear()
		}
	case "ngIfElse":
		if tpl := templateInput("ngIfElse", value); tpl != d.elseTpl {
			d.elseTpl = tpl
			d.clear()
		}
	}
}

// clear drops the rendered view so the next check renders from the new templates.
func (d *NgIf) clear() {
	d.thenView, d.elseView = nil, nil
	if d.vc != nil {
		d.vc.Clear()
	}
}

// NgDoCheck swaps the rendered view after the inputs of one update pass are applied.
func (d *NgIf) NgDoCheck() {
	if d.vc == nil {
		return
	}
	if d.condition {
		if d.thenView == nil {
			d.vc.Clear()
			d.elseView = nil
			if d.then != nil {
				d.thenView = d.vc.CreateEmbeddedView(d.then, &d.context, -1)
			}
		}
		return
	}
	if d.elseView == nil {
		d.vc.Clear()
		d.thenView = nil
		if d.elseTpl != nil {
			d.elseView = d.vc.CreateEmbeddedView(d.elseTpl, &d.context, -1)
		}
	}
}

func templateInput(name string, value any) *core.TemplateRef {
	if value == nil {
		return nil
	}
	tpl, ok := value.(*core.TemplateRef)
	if !ok {
		panic(core.NewRuntimeError("%s must be a TemplateRef, but received '%s'", name, core.Stringify(value)))
	}
	return tpl
}
