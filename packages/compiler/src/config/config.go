package config

import (
	"ngjit-go/packages/core"
)

// CompilerConfig represents the compiler configuration
type CompilerConfig struct {
	DefaultEncapsulation core.ViewEncapsulation
	PreserveWhitespaces  bool
	// UseJit selects the dynamic-compilation back end instead of the interpreter.
	UseJit bool
	// StrictTemplates reports elements that are neither known HTML elements nor components.
	StrictTemplates bool
	// Providers are added to every compiled module.
	Providers []core.Provider
}

// NewCompilerConfig creates a new CompilerConfig with optional parameters
func NewCompilerConfig(opts ...CompilerConfigOption) *CompilerConfig {
	config := &CompilerConfig{
		DefaultEncapsulation: core.ViewEncapsulationEmulated,
		PreserveWhitespaces:  PreserveWhitespacesDefault(nil, false),
		UseJit:               false,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CompilerConfigOption is a function that modifies CompilerConfig
type CompilerConfigOption func(*CompilerConfig)

// WithDefaultEncapsulation sets the default encapsulation
func WithDefaultEncapsulation(encapsulation core.ViewEncapsulation) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.DefaultEncapsulation = encapsulation
	}
}

// WithPreserveWhitespaces sets whether to preserve whitespaces
func WithPreserveWhitespaces(preserve bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.PreserveWhitespaces = preserve
	}
}

// WithUseJit selects the JavaScript back end.
func WithUseJit(useJit bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.UseJit = useJit
	}
}

// WithStrictTemplates turns on unknown element checking.
func WithStrictTemplates(strict bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.StrictTemplates = strict
	}
}

// WithProviders appends module providers.
func WithProviders(providers ...core.Provider) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Providers = append(c.Providers, providers...)
	}
}

// PreserveWhitespacesDefault returns the default value for preserveWhitespaces
func PreserveWhitespacesDefault(preserveWhitespacesOption *bool, defaultSetting bool) bool {
	if preserveWhitespacesOption == nil {
		return defaultSetting
	}
	return *preserveWhitespacesOption
}
