package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ngjit-go/packages/core"
)

type cmdRender struct {
	inputs map[string]string
	styles bool
}

func (*cmdRender) help() *commandHelp {
	return &commandHelp{
		usage:   "render CATALOGUE MODULE COMPONENT",
		summary: "Compile a module and print a component's rendered node tree",
		args:    cobra.ExactArgs(3),
	}
}

func (cmd *cmdRender) flags(flags *pflag.FlagSet) {
	flags.StringToStringVarP(&cmd.inputs, "input", "i", nil, "set a component input before rendering (name=value)")
	flags.BoolVar(&cmd.styles, "styles", false, "also print the component styles")
}

func (cmd *cmdRender) run(ctx context.Context, env *environment, argv []string) error {
	p, err := env.load(argv[0])
	if err != nil {
		return err
	}
	moduleType, err := p.declared.Lookup(argv[1])
	if err != nil {
		return err
	}
	componentType, err := p.declared.Lookup(argv[2])
	if err != nil {
		return err
	}

	res, err := p.compiler.CompileModuleAndAllComponentsAsync(ctx, moduleType)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", argv[1], err)
	}
	var factory *core.ComponentFactory
	for _, cf := range res.ComponentFactories {
		if cf.ComponentType == componentType {
			factory = cf
		}
	}
	if factory == nil {
		return fmt.Errorf("%s is not a component declared by %s", argv[2], argv[1])
	}

	moduleRef, err := res.NgModuleFactory.Create(nil)
	if err != nil {
		return err
	}
	ref, err := factory.Create(moduleRef)
	if err != nil {
		return err
	}
	defer ref.Destroy()

	names := make([]string, 0, len(cmd.inputs))
	for name := range cmd.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ref.SetInput(name, cmd.inputs[name]); err != nil {
			return err
		}
	}
	if err := ref.DetectChanges(); err != nil {
		return err
	}

	fmt.Fprintln(env.stdout, ref.Location.HTML())
	if cmd.styles {
		for _, s := range ref.Styles() {
			fmt.Fprintln(env.stdout, s)
		}
	}
	return nil
}
