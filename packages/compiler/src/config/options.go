package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"ngjit-go/packages/core"
)

// CompilerOptions are user-facing options. Unset pointer fields mean "inherit".
type CompilerOptions struct {
	UseJit               *bool
	DefaultEncapsulation *string
	PreserveWhitespaces  *bool
	StrictTemplates      *bool
	LogLevel             string
	LogFormat            string

	Providers []core.Provider
}

// MergeOptions folds a list of options: for each field the last defined value wins, and
// providers are concatenated in order.
func MergeOptions(optionsArr ...CompilerOptions) CompilerOptions {
	var out CompilerOptions
	for _, o := range optionsArr {
		out.UseJit = lastDefined(out.UseJit, o.UseJit)
		out.DefaultEncapsulation = lastDefined(out.DefaultEncapsulation, o.DefaultEncapsulation)
		out.PreserveWhitespaces = lastDefined(out.PreserveWhitespaces, o.PreserveWhitespaces)
		out.StrictTemplates = lastDefined(out.StrictTemplates, o.StrictTemplates)
		if o.LogLevel != "" {
			out.LogLevel = o.LogLevel
		}
		if o.LogFormat != "" {
			out.LogFormat = o.LogFormat
		}
		out.Providers = append(out.Providers, o.Providers...)
	}
	return out
}

func lastDefined[T any](prev, next *T) *T {
	if next != nil {
		return next
	}
	return prev
}

// ToConfig converts merged options into a CompilerConfig.
func (o CompilerOptions) ToConfig() (*CompilerConfig, error) {
	var opts []CompilerConfigOption
	if o.UseJit != nil {
		opts = append(opts, WithUseJit(*o.UseJit))
	}
	if o.DefaultEncapsulation != nil {
		enc, err := core.ParseViewEncapsulation(*o.DefaultEncapsulation)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDefaultEncapsulation(enc))
	}
	opts = append(opts, WithPreserveWhitespaces(PreserveWhitespacesDefault(o.PreserveWhitespaces, false)))
	if o.StrictTemplates != nil {
		opts = append(opts, WithStrictTemplates(*o.StrictTemplates))
	}
	if len(o.Providers) > 0 {
		opts = append(opts, WithProviders(o.Providers...))
	}
	return NewCompilerConfig(opts...), nil
}

// EnvPrefix is the prefix of environment overrides, e.g. NGJIT_USE_JIT=true.
const EnvPrefix = "NGJIT"

// LoadOptions reads compiler options from path (yaml, toml or json by extension) and from
// NGJIT_* environment variables. An empty path only reads the environment, and a missing
// default file "ngjit.*" in the working directory is not an error.
func LoadOptions(path string) (CompilerOptions, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"use_jit", "default_encapsulation", "preserve_whitespaces", "strict_templates", "log_level", "log_format"} {
		if err := v.BindEnv(key); err != nil {
			return CompilerOptions{}, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ngjit")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return CompilerOptions{}, fmt.Errorf("reading compiler options: %w", err)
		}
	}

	var opts CompilerOptions
	if v.IsSet("use_jit") {
		b := v.GetBool("use_jit")
		opts.UseJit = &b
	}
	if v.IsSet("default_encapsulation") {
		s := v.GetString("default_encapsulation")
		opts.DefaultEncapsulation = &s
	}
	if v.IsSet("preserve_whitespaces") {
		b := v.GetBool("preserve_whitespaces")
		opts.PreserveWhitespaces = &b
	}
	if v.IsSet("strict_templates") {
		b := v.GetBool("strict_templates")
		opts.StrictTemplates = &b
	}
	opts.LogLevel = v.GetString("log_level")
	opts.LogFormat = v.GetString("log_format")
	return opts, nil
}
