package style_compiler

import (
	"ngjit-go/packages/compiler/src/util"
)

// EvalFunc evaluates a compiled stylesheet whose dependencies are linked and returns its style
// array.
type EvalFunc func(cs *CompiledStylesheet) ([]any, error)

// Linker resolves the imports of compiled stylesheets, leaves first. A linker lives for one
// compile: each URL is evaluated at most once, and a sheet that imports itself, directly or
// through others, fails with a StyleCycleError.
type Linker struct {
	byURL    map[string]*CompiledStylesheet
	eval     EvalFunc
	done     map[string][]any
	visiting []string
}

// NewLinker returns a linker over the external stylesheets of one compile, keyed by module URL.
func NewLinker(byURL map[string]*CompiledStylesheet, eval EvalFunc) *Linker {
	return &Linker{byURL: byURL, eval: eval, done: map[string][]any{}}
}

// Add makes an external stylesheet available to later Link calls. The first sheet added for a
// URL wins.
func (l *Linker) Add(cs *CompiledStylesheet) {
	if _, ok := l.byURL[cs.Meta.ModuleURL]; !ok {
		l.byURL[cs.Meta.ModuleURL] = cs
	}
}

// Link sets the value of every dependency of cs.
func (l *Linker) Link(cs *CompiledStylesheet) error {
	for _, dep := range cs.Dependencies {
		styles, err := l.evaluate(dep.ModuleURL)
		if err != nil {
			return err
		}
		dep.SetValue(styles)
	}
	return nil
}

func (l *Linker) evaluate(url string) ([]any, error) {
	if styles, ok := l.done[url]; ok {
		return styles, nil
	}
	for i, v := range l.visiting {
		if v == url {
			cycle := append(append([]string(nil), l.visiting[i:]...), url)
			return nil, util.StyleCycleError(cycle)
		}
	}
	cs, ok := l.byURL[url]
	if !ok {
		return nil, util.InternalError("no compiled stylesheet for %s", url)
	}

	l.visiting = append(l.visiting, url)
	defer func() { l.visiting = l.visiting[:len(l.visiting)-1] }()

	if err := l.Link(cs); err != nil {
		return nil, err
	}
	styles, err := l.eval(cs)
	if err != nil {
		return nil, err
	}
	l.done[url] = styles
	return styles, nil
}
