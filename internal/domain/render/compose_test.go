package render

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/bananalab/canvas-api/internal/catalog"
	"github.com/bananalab/canvas-api/internal/domain/project"
)

var a4Preset = project.PresetSnapshot{
	WidthCm:         21,
	HeightCm:        29.7,
	DPI:             300,
	BackgroundColor: "#ffffff",
}

func docWithLayout(layout string, elements ...project.Element) *project.Document {
	return &project.Document{
		Pages: []project.Page{{
			Layout: layout,
			Cells:  []project.Cell{{Elements: elements}},
		}},
		NextSeq: 100,
	}
}

func imageEl(id string, z, seq int) project.Element {
	return project.Element{
		ID: id, Type: project.ElementImage,
		Position: project.Position{X: 0, Y: 0},
		Size:     project.Size{Width: 100, Height: 100},
		ZIndex:   z, Seq: seq, Opacity: 1,
		Content: "https://cdn.example.com/" + id + ".jpg",
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	doc := docWithLayout("grid-2x2",
		imageEl("a", 2, 1), imageEl("b", 1, 2), imageEl("c", 2, 3))

	first := Compose(doc, a4Preset)
	second := Compose(doc, a4Preset)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("composing the same document twice produced different plans")
	}
}

func TestComposePaintOrder(t *testing.T) {
	doc := docWithLayout("full-bleed",
		imageEl("top", 3, 1),
		imageEl("bottom", 1, 5),
		imageEl("mid-old", 2, 2),
		imageEl("mid-new", 2, 4))

	plan := Compose(doc, a4Preset)
	items := plan.Pages[0].Items

	var order []string
	for _, it := range items {
		order = append(order, strings.TrimSuffix(strings.TrimPrefix(it.Content, "https://cdn.example.com/"), ".jpg"))
	}

	want := []string{"bottom", "mid-old", "mid-new", "top"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("paint order %v, want %v", order, want)
	}
}

func TestComposeUnknownLayoutFallsBack(t *testing.T) {
	doc := docWithLayout("does-not-exist", imageEl("a", 0, 1))

	plan := Compose(doc, a4Preset)

	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "does-not-exist") {
		t.Fatalf("expected unknown-layout warning, got %v", plan.Warnings)
	}

	// Full-bleed fallback: the single cell covers the whole page, so a
	// 100% element fills the page exactly.
	frame := plan.Pages[0].Items[0].Frame
	if frame.X != 0 || frame.Y != 0 || frame.W != a4Preset.WidthCm || frame.H != a4Preset.HeightCm {
		t.Fatalf("fallback frame %+v, want full page", frame)
	}
}

func TestComposeEmptyPagePlaceholder(t *testing.T) {
	doc := &project.Document{Pages: []project.Page{{Cells: []project.Cell{{}}}}}

	plan := Compose(doc, a4Preset)

	if len(plan.Pages[0].Items) != 1 {
		t.Fatalf("expected 1 placeholder item, got %d", len(plan.Pages[0].Items))
	}
	if plan.Pages[0].Items[0].Kind != ItemPlaceholder {
		t.Fatalf("kind %q, want placeholder", plan.Pages[0].Items[0].Kind)
	}
	if len(plan.Warnings) != 1 {
		t.Fatalf("expected empty-page warning, got %v", plan.Warnings)
	}
}

func TestComposeUnknownMaskDegrades(t *testing.T) {
	el := imageEl("a", 0, 1)
	el.Style.Mask = "starburst"
	doc := docWithLayout("full-bleed", el)

	plan := Compose(doc, a4Preset)

	if !plan.Pages[0].Items[0].Mask.IsNone() {
		t.Fatal("unknown mask must degrade to no clipping")
	}
	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "starburst") {
		t.Fatalf("expected unknown-mask warning, got %v", plan.Warnings)
	}
}

func TestComposeCellMaskOverridesElementMask(t *testing.T) {
	el := imageEl("a", 0, 1)
	el.Style.Mask = "rounded"
	doc := &project.Document{
		Pages: []project.Page{{
			Layout: "full-bleed",
			Cells:  []project.Cell{{Mask: "circle", Elements: []project.Element{el}}},
		}},
	}

	plan := Compose(doc, a4Preset)
	if got := plan.Pages[0].Items[0].Mask.ID; got != "circle" {
		t.Fatalf("mask %q, want circle", got)
	}
}

func TestComposeUnknownFilterIsIdentity(t *testing.T) {
	el := imageEl("a", 0, 1)
	el.Style.Filter = "N o p e"
	doc := docWithLayout("full-bleed", el)

	plan := Compose(doc, a4Preset)
	if !plan.Pages[0].Items[0].Filter.IsIdentity() {
		t.Fatal("unknown filter must resolve to identity")
	}
}

func TestComposeOutOfBoundsGeometryPassesThrough(t *testing.T) {
	el := imageEl("a", 0, 1)
	el.Position = project.Position{X: -50, Y: 150}
	el.Size = project.Size{Width: 200, Height: 200}
	doc := docWithLayout("full-bleed", el)

	plan := Compose(doc, a4Preset)
	frame := plan.Pages[0].Items[0].Frame

	if math.Abs(frame.X-(-0.5*a4Preset.WidthCm)) > 1e-9 {
		t.Errorf("frame.X = %v, should extend past the page", frame.X)
	}
	if math.Abs(frame.W-2*a4Preset.WidthCm) > 1e-9 {
		t.Errorf("frame.W = %v, want twice the page width", frame.W)
	}
	for _, w := range plan.Warnings {
		t.Errorf("unexpected warning for out-of-bounds geometry: %s", w)
	}
}

func TestComposeGridSplitsPage(t *testing.T) {
	doc := &project.Document{
		Pages: []project.Page{{
			Layout: "split-vertical",
			Cells: []project.Cell{
				{Elements: []project.Element{imageEl("left", 0, 1)}},
				{Elements: []project.Element{imageEl("right", 0, 2)}},
			},
		}},
	}

	plan := Compose(doc, a4Preset)
	items := plan.Pages[0].Items
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	left, right := items[0].Frame, items[1].Frame
	if left.X >= right.X {
		t.Fatalf("cells out of order: left.X=%v right.X=%v", left.X, right.X)
	}
	if right.X+right.W > a4Preset.WidthCm+1e-9 {
		t.Errorf("right cell overflows the page: %v", right)
	}
	if math.Abs(left.W-right.W) > 1e-9 {
		t.Errorf("unequal split: %v vs %v", left.W, right.W)
	}
}

func TestCellFramesUnitAgnostic(t *testing.T) {
	cm := CellFrames(mustTemplate(t, "grid-2x2"), 20, 20, 4)
	px := CellFrames(mustTemplate(t, "grid-2x2"), 2000, 2000, 4)

	for i := range cm {
		if math.Abs(cm[i].X*100-px[i].X) > 1e-6 || math.Abs(cm[i].W*100-px[i].W) > 1e-6 {
			t.Fatalf("cell %d: cm frame %+v does not scale to px frame %+v", i, cm[i], px[i])
		}
	}
}

func mustTemplate(t *testing.T, id string) catalog.Template {
	t.Helper()
	tpl, err := catalog.Get(id)
	if err != nil {
		t.Fatalf("template %s: %v", id, err)
	}
	return tpl
}
