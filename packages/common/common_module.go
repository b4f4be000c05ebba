package common

import (
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/core"
)

const moduleURL = "ngjit-go/packages/common"

// CommonModule exports NgIf, NgForOf and the built-in pipes.
var CommonModule = core.NewType("CommonModule", nil)

var impure = false

// Declare registers the common directives, pipes and CommonModule. Modules import
// CommonModule to use them.
func Declare(reg *metadata.Registry) error {
	base := func(t *core.Type) metadata.DeclBase {
		return metadata.DeclBase{Type: t, ModuleURL: moduleURL}
	}
	directives := []struct {
		t    *core.Type
		decl metadata.DirectiveDecl
	}{
		{NgIfType, metadata.DirectiveDecl{
			DeclBase: base(NgIfType),
			Selector: "[ngIf]",
			Inputs:   []string{"ngIf", "ngIfThen", "ngIfElse"},
		}},
		{NgForOfType, metadata.DirectiveDecl{
			DeclBase: base(NgForOfType),
			Selector: "[ngFor][ngForOf]",
			Inputs:   []string{"ngForOf", "ngForTrackBy", "ngForTemplate"},
		}},
	}
	pipes := []struct {
		t    *core.Type
		decl metadata.PipeDecl
	}{
		{UpperCasePipeType, metadata.PipeDecl{DeclBase: base(UpperCasePipeType), Name: "uppercase"}},
		{LowerCasePipeType, metadata.PipeDecl{DeclBase: base(LowerCasePipeType), Name: "lowercase"}},
		{TitleCasePipeType, metadata.PipeDecl{DeclBase: base(TitleCasePipeType), Name: "titlecase"}},
		{JsonPipeType, metadata.PipeDecl{DeclBase: base(JsonPipeType), Name: "json", Pure: &impure}},
		{SlicePipeType, metadata.PipeDecl{DeclBase: base(SlicePipeType), Name: "slice", Pure: &impure}},
	}

	var exports []*core.Type
	for _, d := range directives {
		if err := reg.Directive(d.t, d.decl); err != nil {
			return err
		}
		exports = append(exports, d.t)
	}
	for _, p := range pipes {
		if err := reg.Pipe(p.t, p.decl); err != nil {
			return err
		}
		exports = append(exports, p.t)
	}
	return reg.Module(CommonModule, metadata.ModuleDecl{
		DeclBase:     base(CommonModule),
		Declarations: exports,
		Exports:      exports,
	})
}
