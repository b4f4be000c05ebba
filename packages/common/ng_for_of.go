package common

import (
	"reflect"

	"ngjit-go/packages/core"
)

// NgForOfContext is the context of one row. Every exported field can be bound with
// `let x = field`, e.g. `*ngFor="let item of items; let i = index; let last = last"`.
type NgForOfContext struct {
	Implicit any `ng:"$implicit"`
	NgForOf  any `ng:"ngForOf"`
	Index    int
	Count    int
	First    bool
	Last     bool
	Even     bool
	Odd      bool
}

func (c *NgForOfContext) update(items any, index, count int) {
	c.NgForOf = items
	c.Index = index
	c.Count = count
	c.First = index == 0
	c.Last = index == count-1
	c.Even = index%2 == 0
	c.Odd = !c.Even
}

type forRecord struct {
	key  any
	view *core.View
}

// NgForOf renders its template once per item of a slice or array. Rows are matched to the
// previous pass by item identity, or by the result of trackBy(index, item) when one is bound,
// so a row's view survives reordering.
type NgForOf struct {
	vc      *core.ViewContainerRef
	tpl     *core.TemplateRef
	items   any
	trackBy any
	records []forRecord
}

// NgForOfType is the declared type of NgForOf.
var NgForOfType = core.NewType("NgForOf", func(...any) any { return &NgForOf{} })

func (d *NgForOf) SetTemplate(vc *core.ViewContainerRef, tpl *core.TemplateRef) {
	d.vc = vc
	d.tpl = tpl
}

func (d *NgForOf) SetInput(name string, value any) {
	switch name {
	case "ngForOf":
		d.items = value
	case "ngForTrackBy":
		if value != nil && reflect.ValueOf(value).Kind() != reflect.Func {
			panic(core.NewRuntimeError("trackBy must be a function, but received %s", core.Stringify(value)))
		}
		d.trackBy = value
	case "ngForTemplate":
		if tpl := templateInput("ngForTemplate", value); tpl != nil {
			d.tpl = tpl
		}
	}
}

func (d *NgForOf) key(index int, item any) any {
	if d.trackBy == nil {
		return item
	}
	return core.CallFunc(d.trackBy, index, item)
}

// NgDoCheck reconciles the rendered rows with the current items.
func (d *NgForOf) NgDoCheck() {
	if d.vc == nil || d.tpl == nil {
		return
	}
	items := iterate(d.items)

	old := d.records
	used := make([]bool, len(old))
	next := make([]forRecord, 0, len(items))
	for i, item := range items {
		key := d.key(i, item)
		found := -1
		for j, r := range old {
			if !used[j] && core.Identical(r.key, key) {
				found = j
				break
			}
		}
		if found >= 0 {
			used[found] = true
			ctx := old[found].view.Context().(*NgForOfContext)
			ctx.Implicit = item
			next = append(next, forRecord{key: key, view: old[found].view})
			continue
		}
		view := d.tpl.CreateEmbeddedView(&NgForOfContext{Implicit: item})
		next = append(next, forRecord{key: key, view: view})
	}

	for j, r := range old {
		if !used[j] {
			d.vc.Remove(d.vc.IndexOf(r.view))
		}
	}
	for i, r := range next {
		switch idx := d.vc.IndexOf(r.view); {
		case idx < 0:
			d.vc.Insert(r.view, i)
		case idx != i:
			d.vc.Move(r.view, i)
		}
		r.view.Context().(*NgForOfContext).update(d.items, i, len(next))
	}
	d.records = next
}

func iterate(items any) []any {
	if items == nil {
		return nil
	}
	if list, ok := items.([]any); ok {
		return list
	}
	v := reflect.ValueOf(items)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}
		return out
	}
	panic(core.NewRuntimeError("Cannot find a differ supporting object '%s' of type '%T'. NgFor only supports binding to Iterables such as Arrays.",
		core.Stringify(items), items))
}
