package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ngjit-go/packages/common"
	"ngjit-go/packages/compiler/src/catalogue"
	"ngjit-go/packages/compiler/src/config"
	"ngjit-go/packages/compiler/src/logging"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/compiler/src/resolver"
	pbd "ngjit-go/packages/platform_browser_dynamic"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, env *environment, argv []string) error
}

type commandHelp struct {
	usage   string
	summary string
	args    cobra.PositionalArgs
}

// globalFlags apply to every command.
type globalFlags struct {
	backend    string
	configPath string
	logLevel   string
	logFormat  string
}

type environment struct {
	stdout io.Writer
	stderr io.Writer
	log    logging.Logger
	global *globalFlags
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(argv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ngjit: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	global := &globalFlags{}
	root := &cobra.Command{
		Use:           "ngjit [options] COMMAND",
		Short:         "Compile component catalogues into executable views",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	pf := root.PersistentFlags()
	pf.StringVar(&global.backend, "backend", "", "code back end: interpret or jit (default from config, else interpret)")
	pf.StringVar(&global.configPath, "config", "", "compiler options file (yaml, toml or json)")
	pf.StringVar(&global.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&global.logFormat, "log-format", "", "text or json (default text)")

	commands := []command{
		&cmdCompile{},
		&cmdRender{},
	}
	for _, cmd := range commands {
		cmd := cmd
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  help.args,
			RunE: func(c *cobra.Command, args []string) error {
				env := &environment{stdout: stdout, stderr: stderr, global: global}
				return cmd.run(c.Context(), env, args)
			},
		}
		cmd.flags(cobraCmd.Flags())
		root.AddCommand(cobraCmd)
	}
	return root
}

// compilerOptions merges the options file and environment with the command line flags,
// flags last.
func (env *environment) compilerOptions() (config.CompilerOptions, error) {
	fromFile, err := config.LoadOptions(env.global.configPath)
	if err != nil {
		return config.CompilerOptions{}, err
	}
	flags := config.CompilerOptions{LogLevel: env.global.logLevel, LogFormat: env.global.logFormat}
	switch env.global.backend {
	case "":
	case "interpret":
		useJit := false
		flags.UseJit = &useJit
	case "jit":
		useJit := true
		flags.UseJit = &useJit
	default:
		return config.CompilerOptions{}, fmt.Errorf("unknown back end %q (choose interpret or jit)", env.global.backend)
	}
	return config.MergeOptions(fromFile, flags), nil
}

// project is a loaded catalogue plus a compiler over it.
type project struct {
	catalogue *catalogue.Catalogue
	declared  *catalogue.Declared
	compiler  *pbd.CompilerImpl
}

func (env *environment) load(path string) (*project, error) {
	opts, err := env.compilerOptions()
	if err != nil {
		return nil, err
	}
	level := opts.LogLevel
	if level == "" {
		level = "warn"
	}
	env.log = logging.New(&logging.Config{Level: logging.ParseLevel(level), Format: opts.LogFormat, Output: env.stderr})

	cat, err := catalogue.Load(path)
	if err != nil {
		return nil, err
	}
	reg := metadata.NewRegistry()
	if err := common.Declare(reg); err != nil {
		return nil, err
	}
	declared, err := cat.Declare(reg)
	if err != nil {
		return nil, err
	}
	factory := pbd.NewJitCompilerFactory(reg,
		pbd.WithResourceLoader(resolver.FileResourceLoader{Root: cat.Dir}),
		pbd.WithLogger(env.log),
	)
	compiler, err := factory.CreateCompiler(opts)
	if err != nil {
		return nil, err
	}
	return &project{catalogue: cat, declared: declared, compiler: compiler}, nil
}
