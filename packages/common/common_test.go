package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngjit-go/packages/common"
	"ngjit-go/packages/compiler/src/metadata"
	"ngjit-go/packages/core"
)

// create hosts a component whose view is tpl and whose instance is comp.
func create(t *testing.T, comp any, tpl core.TemplateFn) *core.ComponentRef {
	t.Helper()
	compType := core.NewType("TestCmp", func(...any) any { return comp })
	view := core.NewViewDefinitionRef("View_TestCmp_0")
	view.SetDelegate(core.ViewDef("TestCmp", tpl, core.CreateRendererType2(int(core.ViewEncapsulationNone), nil, nil)))
	host := core.NewViewDefinitionRef("View_TestCmp_Host_0")
	host.SetDelegate(core.ViewDef("TestCmp_Host", func(rf int, _ any) {
		if rf&core.RenderFlagsCreate != 0 {
			core.ElementStart(0, "test-cmp", nil)
			core.Component(0, compType, nil, view)
			core.ElementEnd()
		}
	}, nil))
	ref, err := core.NewComponentFactory("test-cmp", compType, host, nil, nil).Create(nil)
	require.NoError(t, err)
	return ref
}

func mount(t *testing.T, comp any, tpl core.TemplateFn) *core.ComponentRef {
	t.Helper()
	ref := create(t, comp, tpl)
	require.NoError(t, ref.DetectChanges())
	return ref
}

type listCmp struct {
	Items   []any
	TrackBy any
}

func rowTemplate(rf int, ctx any) {
	if rf&core.RenderFlagsCreate != 0 {
		core.ElementStart(0, "li", nil)
		core.Text(1, "")
		core.ElementEnd()
	}
	if rf&core.RenderFlagsUpdate != 0 {
		row := ctx.(*common.NgForOfContext)
		core.TextInterpolate(1, "", row.Index, ":", row.Implicit, "")
		core.ClassProp(0, "first", row.First)
		core.ClassProp(0, "last", row.Last)
		core.ClassProp(0, "odd", row.Odd)
	}
}

func listTemplate(rf int, ctx any) {
	if rf&core.RenderFlagsCreate != 0 {
		core.ElementStart(0, "ul", nil)
		core.Template(1, rowTemplate, "row")
		core.Directive(1, common.NgForOfType, []any{"ngForOf", "ngForOf", "ngForTrackBy", "ngForTrackBy"})
		core.ElementEnd()
	}
	if rf&core.RenderFlagsUpdate != 0 {
		c := ctx.(*listCmp)
		core.Property(1, "ngForOf", c.Items)
		core.Property(1, "ngForTrackBy", c.TrackBy)
	}
}

func TestNgForOf(t *testing.T) {
	t.Run("should render one row per item with row context", func(t *testing.T) {
		cmp := &listCmp{Items: []any{"a", "b", "c"}}
		ref := mount(t, cmp, listTemplate)
		assert.Equal(t,
			`<test-cmp><ul><li class="first">0:a</li><li class="odd">1:b</li><li class="last">2:c</li></ul></test-cmp>`,
			ref.Location.HTML())
	})

	t.Run("should keep row nodes when items are reordered", func(t *testing.T) {
		cmp := &listCmp{Items: []any{"a", "b", "c"}}
		ref := mount(t, cmp, listTemplate)
		before := ref.Location.FindAll("li")
		require.Len(t, before, 3)

		cmp.Items = []any{"c", "a", "b"}
		require.NoError(t, ref.DetectChanges())
		after := ref.Location.FindAll("li")
		require.Len(t, after, 3)
		assert.Same(t, before[2], after[0])
		assert.Same(t, before[0], after[1])
		assert.Equal(t, "0:c1:a2:b", ref.Location.TextContent())
	})

	t.Run("should add and remove rows", func(t *testing.T) {
		cmp := &listCmp{Items: []any{"a", "b"}}
		ref := mount(t, cmp, listTemplate)
		cmp.Items = []any{"b", "d", "e"}
		require.NoError(t, ref.DetectChanges())
		assert.Equal(t, "0:b1:d2:e", ref.Location.TextContent())
		cmp.Items = nil
		require.NoError(t, ref.DetectChanges())
		assert.Empty(t, ref.Location.FindAll("li"))
	})

	t.Run("should match rows by trackBy", func(t *testing.T) {
		type item struct{ ID int }
		cmp := &listCmp{
			Items:   []any{&item{ID: 1}, &item{ID: 2}},
			TrackBy: func(_ int, it *item) int { return it.ID },
		}
		ref := mount(t, cmp, listTemplate)
		before := ref.Location.FindAll("li")

		cmp.Items = []any{&item{ID: 2}, &item{ID: 1}}
		require.NoError(t, ref.DetectChanges())
		after := ref.Location.FindAll("li")
		assert.Same(t, before[1], after[0])
		assert.Same(t, before[0], after[1])
	})

	t.Run("should reject values that are not lists", func(t *testing.T) {
		ref := create(t, &listCmp{}, func(rf int, ctx any) {
			listTemplate(rf&core.RenderFlagsCreate, ctx)
			if rf&core.RenderFlagsUpdate != 0 {
				core.Property(1, "ngForOf", 42)
			}
		})
		err := ref.DetectChanges()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NgFor only supports binding to Iterables")
	})
}

type ifCmp struct {
	Show bool
	User any
}

func thenTemplate(rf int, ctx any) {
	if rf&core.RenderFlagsCreate != 0 {
		core.ElementStart(0, "span", nil)
		core.Text(1, "")
		core.ElementEnd()
	}
	if rf&core.RenderFlagsUpdate != 0 {
		core.TextInterpolate(1, "hi ", ctx.(*common.NgIfContext).Implicit, "")
	}
}

func elseTemplate(rf int, _ any) {
	if rf&core.RenderFlagsCreate != 0 {
		core.ElementStart(0, "em", nil)
		core.Text(1, "nobody")
		core.ElementEnd()
	}
}

func ifTemplate(rf int, ctx any) {
	if rf&core.RenderFlagsCreate != 0 {
		core.Template(0, thenTemplate, "then")
		core.Directive(0, common.NgIfType, []any{"ngIf", "ngIf", "ngIfElse", "ngIfElse"})
		core.Template(1, elseTemplate, "else")
	}
	if rf&core.RenderFlagsUpdate != 0 {
		c := ctx.(*ifCmp)
		cond := any(nil)
		if c.Show {
			cond = c.User
		}
		core.Property(0, "ngIf", cond)
		core.Property(0, "ngIfElse", core.Reference(1, -1))
	}
}

func TestNgIf(t *testing.T) {
	t.Run("should switch between the then and else templates", func(t *testing.T) {
		cmp := &ifCmp{User: "ada"}
		ref := mount(t, cmp, ifTemplate)
		assert.Equal(t, "<test-cmp><em>nobody</em></test-cmp>", ref.Location.HTML())

		cmp.Show = true
		require.NoError(t, ref.DetectChanges())
		assert.Equal(t, "<test-cmp><span>hi ada</span></test-cmp>", ref.Location.HTML())

		span := ref.Location.Find("span")
		cmp.User = "grace"
		require.NoError(t, ref.DetectChanges())
		assert.Same(t, span, ref.Location.Find("span"))
		assert.Equal(t, "hi grace", span.TextContent())

		cmp.Show = false
		require.NoError(t, ref.DetectChanges())
		assert.Nil(t, ref.Location.Find("span"))
		assert.NotNil(t, ref.Location.Find("em"))
	})
}

func TestPipes(t *testing.T) {
	t.Run("should convert case", func(t *testing.T) {
		assert.Equal(t, "ABC", common.UpperCasePipe{}.Transform("aBc"))
		assert.Equal(t, "abc", common.LowerCasePipe{}.Transform("aBc"))
		title := common.TitleCasePipeType.New().(core.PipeTransform)
		assert.Equal(t, "Hello Big World", title.Transform("hello bIG world"))
		assert.Nil(t, common.UpperCasePipe{}.Transform(nil))
	})

	t.Run("should reject non-string input to case pipes", func(t *testing.T) {
		assert.PanicsWithError(t, "InvalidPipeArgument: '3' for pipe 'UpperCasePipe'", func() {
			common.UpperCasePipe{}.Transform(3)
		})
	})

	t.Run("should render json", func(t *testing.T) {
		assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}", common.JsonPipe{}.Transform(map[string]any{"a": []int{1, 2}}))
	})

	t.Run("should slice strings and lists", func(t *testing.T) {
		p := common.SlicePipe{}
		assert.Equal(t, "ell", p.Transform("hello", 1, 4))
		assert.Equal(t, "lo", p.Transform("hello", -2))
		assert.Equal(t, []any{2, 3}, p.Transform([]int{1, 2, 3}, 1))
		assert.Equal(t, "", p.Transform("abc", 2, 1))
		assert.Nil(t, p.Transform(nil, 1))
	})
}

func TestDeclare(t *testing.T) {
	t.Run("should export every directive and pipe from CommonModule", func(t *testing.T) {
		reg := metadata.NewRegistry()
		require.NoError(t, common.Declare(reg))
		d, ok := reg.Lookup(common.CommonModule)
		require.True(t, ok)
		mod := d.(*metadata.ModuleDecl)
		assert.Len(t, mod.Exports, 7)

		p, ok := reg.Lookup(common.JsonPipeType)
		require.True(t, ok)
		assert.False(t, p.(*metadata.PipeDecl).IsPure())
	})

	t.Run("should fail when declared twice into one registry", func(t *testing.T) {
		reg := metadata.NewRegistry()
		require.NoError(t, common.Declare(reg))
		assert.Error(t, common.Declare(reg))
	})
}
