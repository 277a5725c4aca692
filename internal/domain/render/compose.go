// Package render turns a design document into print output. Composition is
// a pure function from document plus product parameters to a page plan in
// physical units; the PDF backend then draws the plan. Keeping the two
// apart makes renders reproducible: the same document and preset always
// produce the same plan.
package render

import (
	"fmt"
	"sort"

	"github.com/bananalab/canvas-api/internal/catalog"
	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/masks"
	"github.com/bananalab/canvas-api/internal/pkg/geom"
)

// ItemKind discriminates drawable plan items
type ItemKind string

const (
	ItemImage       ItemKind = "image"
	ItemText        ItemKind = "text"
	ItemShape       ItemKind = "shape"
	ItemPlaceholder ItemKind = "placeholder"
)

// Item is one drawable unit positioned on the page in centimeters.
type Item struct {
	Kind      ItemKind
	Frame     geom.Rect // cm, page coordinates, may extend past the page
	Rotation  float64   // degrees clockwise
	Opacity   float64   // 0..1
	Content   string    // text body or image URL / data URI
	Mask      masks.Shape
	Filter    masks.Filter
	Style     project.ElementStyle
	CellStyle catalog.CellStyle

	zIndex int
	seq    int
}

// PagePlan is one composed page.
type PagePlan struct {
	BackgroundColor string
	BackgroundImage string
	Items           []Item
}

// Plan is the full composed document, ready for a drawing backend.
type Plan struct {
	WidthCm  float64
	HeightCm float64
	DPI      float64
	Pages    []PagePlan
	// Warnings records degradations applied during composition: unknown
	// layouts, unknown masks, empty pages. The render still succeeds.
	Warnings []string
}

// Compose lays out every page of the document against the product
// dimensions. It never fails: broken references degrade to fallbacks and
// are reported as warnings.
func Compose(doc *project.Document, preset project.PresetSnapshot) *Plan {
	plan := &Plan{
		WidthCm:  preset.WidthCm,
		HeightCm: preset.HeightCm,
		DPI:      preset.DPI,
	}

	for pi, page := range doc.Pages {
		plan.Pages = append(plan.Pages, composePage(plan, pi, page, preset))
	}
	return plan
}

func composePage(plan *Plan, pageIndex int, page project.Page, preset project.PresetSnapshot) PagePlan {
	out := PagePlan{
		BackgroundColor: page.BackgroundColor,
		BackgroundImage: page.BackgroundImage,
	}
	if out.BackgroundColor == "" {
		out.BackgroundColor = preset.BackgroundColor
	}

	tpl := resolveTemplate(plan, pageIndex, page.Layout)
	g := newGrid(tpl, preset.WidthCm, preset.HeightCm)

	for ci, cell := range page.Cells {
		frame := g.cellFrame(ci)
		style := tpl.CellStyleAt(ci)

		for _, el := range cell.Elements {
			item := composeElement(plan, pageIndex, el, cell, frame)
			item.CellStyle = style
			out.Items = append(out.Items, item)
		}
	}

	if len(out.Items) == 0 {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("page %d is empty, rendering placeholder", pageIndex+1))
		box := geom.Rect{W: preset.WidthCm, H: preset.HeightCm}
		out.Items = append(out.Items, Item{
			Kind:    ItemPlaceholder,
			Frame:   box.Inset(box.W * 0.25),
			Opacity: 1,
			Mask:    masks.NoneShape,
			Filter:  masks.Original,
		})
	}

	// Paint order: z-index ascending, insertion sequence breaks ties so
	// stacking is stable across save/load round trips.
	sort.SliceStable(out.Items, func(i, j int) bool {
		if out.Items[i].zIndex != out.Items[j].zIndex {
			return out.Items[i].zIndex < out.Items[j].zIndex
		}
		return out.Items[i].seq < out.Items[j].seq
	})

	return out
}

func composeElement(plan *Plan, pageIndex int, el project.Element, cell project.Cell, frame geom.Rect) Item {
	item := Item{
		Frame:    geom.FromPercent(frame, el.Position.X, el.Position.Y, el.Size.Width, el.Size.Height),
		Rotation: el.Rotation,
		Opacity:  el.Opacity,
		Content:  el.Content,
		Style:    el.Style,
		Filter:   masks.Original,
		Mask:     masks.NoneShape,
		zIndex:   el.ZIndex,
		seq:      el.Seq,
	}

	switch el.Type {
	case project.ElementImage:
		item.Kind = ItemImage
		maskID := el.Style.Mask
		if cell.Mask != "" {
			maskID = cell.Mask
		}
		if maskID != "" && !masks.KnownMask(maskID) {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("page %d: unknown mask %q, image left unclipped", pageIndex+1, maskID))
		}
		item.Mask = masks.ResolveMask(maskID)
		item.Filter = masks.ResolveFilter(el.Style.Filter)
	case project.ElementText:
		item.Kind = ItemText
	default:
		item.Kind = ItemShape
	}
	return item
}

// resolveTemplate looks the page layout up in the catalog. An unknown
// layout id degrades to the full-bleed template instead of failing the
// render.
func resolveTemplate(plan *Plan, pageIndex int, layoutID string) catalog.Template {
	if layoutID == "" {
		layoutID = "full-bleed"
	}
	tpl, err := catalog.Get(layoutID)
	if err != nil {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("page %d: unknown layout %q, using full-bleed", pageIndex+1, layoutID))
		tpl, _ = catalog.Get("full-bleed")
	}
	return tpl
}

// CellFrames lays a template's grid out on an arbitrary canvas and returns
// the frames of the first count cells. The math is unit-agnostic:
// composition calls it in centimeters, the editor calls it in pixels, so
// hit-testing and print placement can never drift apart.
func CellFrames(tpl catalog.Template, width, height float64, count int) []geom.Rect {
	g := newGrid(tpl, width, height)
	if count < tpl.CellCount {
		count = tpl.CellCount
	}
	out := make([]geom.Rect, count)
	for i := range out {
		out[i] = g.cellFrame(i)
	}
	return out
}

// grid resolves a template against a physical page size, in centimeters.
// Gaps and padding are percentages of page width.
type grid struct {
	tpl     catalog.Template
	content geom.Rect
	gap     float64
	colW    float64
	rowH    float64
}

func newGrid(tpl catalog.Template, widthCm, heightCm float64) grid {
	padding := tpl.PaddingPct / 100 * widthCm
	gap := tpl.GapPct / 100 * widthCm

	content := geom.Rect{
		X: padding,
		Y: padding,
		W: widthCm - 2*padding,
		H: heightCm - 2*padding,
	}

	cols, rows := tpl.Columns, tpl.Rows
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return grid{
		tpl:     tpl,
		content: content,
		gap:     gap,
		colW:    (content.W - gap*float64(cols-1)) / float64(cols),
		rowH:    (content.H - gap*float64(rows-1)) / float64(rows),
	}
}

// cellFrame returns the frame for document cell ci. Cells past the
// template's count keep flowing row-major on the same grid rather than
// vanishing; they may overflow the page, which is fine.
func (g grid) cellFrame(ci int) geom.Rect {
	span := g.tpl.CellSpan(ci)
	return geom.Rect{
		X: g.content.X + float64(span.Col)*(g.colW+g.gap),
		Y: g.content.Y + float64(span.Row)*(g.rowH+g.gap),
		W: float64(span.ColSpan)*g.colW + float64(span.ColSpan-1)*g.gap,
		H: float64(span.RowSpan)*g.rowH + float64(span.RowSpan-1)*g.gap,
	}
}
