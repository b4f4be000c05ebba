// Package style_compiler turns component stylesheets into style arrays. Emulated components get
// their rules scoped with the %COMP% attribute placeholders, and every @import becomes a
// dependency that is linked to the evaluated styles of the imported sheet.
package style_compiler

import (
	"ngjit-go/packages/compiler/src/css"
	"ngjit-go/packages/compiler/src/metadata"
	o "ngjit-go/packages/compiler/src/output"
	"ngjit-go/packages/compiler/src/pool"
	"ngjit-go/packages/compiler/src/util"
	"ngjit-go/packages/core"
)

// StylesCompileDependency is a stylesheet imported by a compiled stylesheet. Its placeholder is
// an element of the importing style array until SetValue links the evaluated styles.
type StylesCompileDependency struct {
	ModuleURL   string
	placeholder *o.ExternalReference
}

// SetValue provides the evaluated style array of the imported sheet.
func (d *StylesCompileDependency) SetValue(styles []any) {
	d.placeholder.Runtime = styles
}

// CompiledStylesheet is the output of one stylesheet compile.
type CompiledStylesheet struct {
	OutputCtx    *pool.OutputContext
	StylesVar    string
	Dependencies []*StylesCompileDependency
	IsShimmed    bool
	Meta         *metadata.CompileStylesheetMetadata
}

// StyleCompiler compiles stylesheets.
type StyleCompiler struct {
	shadowCss *css.ShadowCss
}

// NewStyleCompiler creates a new StyleCompiler
func NewStyleCompiler() *StyleCompiler {
	return &StyleCompiler{shadowCss: css.NewShadowCss()}
}

// NeedsStyleShim reports whether comp's styles are scoped.
func NeedsStyleShim(comp *metadata.CompileDirectiveMetadata) bool {
	return comp.Template != nil && comp.Template.Encapsulation == core.ViewEncapsulationEmulated
}

// CompileComponent compiles the inline styles and style URLs of comp into styles_<Comp>.
func (sc *StyleCompiler) CompileComponent(outputCtx *pool.OutputContext, comp *metadata.CompileDirectiveMetadata) *CompiledStylesheet {
	template := comp.Template
	stylesheet := &metadata.CompileStylesheetMetadata{
		ModuleURL: comp.ModuleURL,
		Styles:    template.Styles,
		StyleURLs: template.StyleURLs,
	}
	name := outputCtx.ConstantPool.UniqueName("styles_"+util.SanitizeIdentifier(comp.Name()), false)
	return sc.compileStyles(outputCtx, comp, stylesheet, name)
}

// CompileStyles compiles an external stylesheet of comp. Each external sheet is evaluated in its
// own output context, so its variable is always "styles".
func (sc *StyleCompiler) CompileStyles(outputCtx *pool.OutputContext, comp *metadata.CompileDirectiveMetadata, stylesheet *metadata.CompileStylesheetMetadata) *CompiledStylesheet {
	return sc.compileStyles(outputCtx, comp, stylesheet, "styles")
}

func (sc *StyleCompiler) compileStyles(outputCtx *pool.OutputContext, comp *metadata.CompileDirectiveMetadata, stylesheet *metadata.CompileStylesheetMetadata, stylesVar string) *CompiledStylesheet {
	shim := NeedsStyleShim(comp)
	exprs := make([]o.OutputExpression, 0, len(stylesheet.Styles)+len(stylesheet.StyleURLs))
	for _, style := range stylesheet.Styles {
		exprs = append(exprs, o.Literal(sc.shimIfNeeded(style, shim)))
	}
	var deps []*StylesCompileDependency
	for _, url := range stylesheet.StyleURLs {
		dep := &StylesCompileDependency{
			ModuleURL:   url,
			placeholder: &o.ExternalReference{ModuleName: url, Name: "styles"},
		}
		deps = append(deps, dep)
		exprs = append(exprs, o.ImportExpr(dep.placeholder))
	}
	outputCtx.Statements = append(outputCtx.Statements, o.NewDeclareVarStmt(stylesVar,
		o.NewLiteralArrayExpr(exprs, nil), o.StmtModifierExported|o.StmtModifierFinal, nil))
	return &CompiledStylesheet{
		OutputCtx:    outputCtx,
		StylesVar:    stylesVar,
		Dependencies: deps,
		IsShimmed:    shim,
		Meta:         stylesheet,
	}
}

func (sc *StyleCompiler) shimIfNeeded(style string, shim bool) string {
	if !shim {
		return style
	}
	return sc.shadowCss.ShimCssText(style, core.ContentAttr, core.HostAttr)
}
