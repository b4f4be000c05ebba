package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cmdCompile struct {
	module string
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile CATALOGUE",
		summary: "Print the generated programs of every module in a catalogue",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.module, "module", "m", "", "compile only this module")
}

func (cmd *cmdCompile) run(ctx context.Context, env *environment, argv []string) error {
	p, err := env.load(argv[0])
	if err != nil {
		return err
	}
	p.compiler.OnProgram(func(sourceURL, source string) {
		fmt.Fprintf(env.stdout, "// %s\n%s\n", sourceURL, source)
	})

	var names []string
	if cmd.module != "" {
		names = []string{cmd.module}
	} else {
		for _, m := range p.catalogue.Modules {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("%s declares no modules", argv[0])
	}
	for _, name := range names {
		t, err := p.declared.Lookup(name)
		if err != nil {
			return err
		}
		if _, err := p.compiler.CompileModuleAndAllComponentsAsync(ctx, t); err != nil {
			return fmt.Errorf("compiling %s: %w", name, err)
		}
	}
	return nil
}
