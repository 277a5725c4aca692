// Package catalog is the registry of page layout templates. A template
// describes a grid (columns x rows), optional explicit per-cell spans for
// asymmetric arrangements, and per-cell style tiers. Templates are static
// data versioned with the binary; the editor uses them to draw cell
// outlines and the render pipeline uses the same definitions to place
// cells in the output document.
package catalog

import "errors"

// ErrUnknownLayout is returned by Get for an unregistered template id.
var ErrUnknownLayout = errors.New("unknown layout template")

// Category groups templates for the template picker.
type Category string

const (
	CategoryHero      Category = "hero"
	CategoryEditorial Category = "editorial"
	CategoryMinimal   Category = "minimal"
	CategoryClassic   Category = "classic"
)

// CornerTier is the cell corner-rounding style hint.
type CornerTier int

const (
	CornerNone CornerTier = iota
	CornerSoft
	CornerRound
)

// ShadowTier is the cell drop-shadow style hint.
type ShadowTier int

const (
	ShadowNone ShadowTier = iota
	ShadowSoft
	ShadowDeep
)

// CellStyle carries the per-cell style descriptor. Tiers are tagged values
// interpreted by the renderer, not style strings.
type CellStyle struct {
	Corner CornerTier `json:"corner"`
	Shadow ShadowTier `json:"shadow"`
}

// Span places one cell on the grid with explicit line positions. Col and
// Row are zero-based grid coordinates; ColSpan/RowSpan are >= 1.
type Span struct {
	Col     int `json:"col"`
	Row     int `json:"row"`
	ColSpan int `json:"colSpan"`
	RowSpan int `json:"rowSpan"`
}

// Template is one registered layout.
type Template struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Columns  int      `json:"columns"`
	Rows     int      `json:"rows"`
	// Spans lists one entry per cell in cell-index order. When nil the
	// cells flow row-major, one grid slot each.
	Spans []Span `json:"spans,omitempty"`
	// Styles lists one entry per cell; when shorter than CellCount the
	// zero style applies to the remainder.
	Styles []CellStyle `json:"styles,omitempty"`
	// GapPct is the gutter between cells as a percentage of page width.
	GapPct float64 `json:"gapPct"`
	// PaddingPct is the page-edge inset as a percentage of page width.
	PaddingPct float64 `json:"paddingPct"`
	// MaskCategories names the mask groups compatible with this template.
	MaskCategories []string `json:"maskCategories"`
	CellCount      int      `json:"cellCount"`
}

// CellSpan returns the grid placement for cell index i, deriving row-major
// flow when the template has no explicit spans.
func (t Template) CellSpan(i int) Span {
	if i < len(t.Spans) {
		return t.Spans[i]
	}
	cols := t.Columns
	if cols < 1 {
		cols = 1
	}
	return Span{Col: i % cols, Row: i / cols, ColSpan: 1, RowSpan: 1}
}

// CellStyleAt returns the style descriptor for cell index i.
func (t Template) CellStyleAt(i int) CellStyle {
	if i < len(t.Styles) {
		return t.Styles[i]
	}
	return CellStyle{}
}

var templates = map[string]Template{}
var templateOrder []string

func register(t Template) {
	if t.CellCount == 0 {
		if len(t.Spans) > 0 {
			t.CellCount = len(t.Spans)
		} else {
			t.CellCount = t.Columns * t.Rows
		}
	}
	templates[t.ID] = t
	templateOrder = append(templateOrder, t.ID)
}

func init() {
	register(Template{
		ID: "full-bleed", Name: "Full Bleed", Category: CategoryHero,
		Columns: 1, Rows: 1,
		MaskCategories: []string{"basic"},
	})
	register(Template{
		ID: "hero-frame", Name: "Framed Hero", Category: CategoryHero,
		Columns: 1, Rows: 1, PaddingPct: 6,
		Styles:         []CellStyle{{Corner: CornerSoft, Shadow: ShadowDeep}},
		MaskCategories: []string{"basic", "artistic"},
	})
	register(Template{
		ID: "split-vertical", Name: "Two Up", Category: CategoryClassic,
		Columns: 2, Rows: 1, GapPct: 2, PaddingPct: 4,
		Styles:         []CellStyle{{Corner: CornerSoft}, {Corner: CornerSoft}},
		MaskCategories: []string{"basic"},
	})
	register(Template{
		ID: "split-horizontal", Name: "Stacked Pair", Category: CategoryClassic,
		Columns: 1, Rows: 2, GapPct: 2, PaddingPct: 4,
		MaskCategories: []string{"basic"},
	})
	register(Template{
		ID: "grid-2x2", Name: "Four Square", Category: CategoryClassic,
		Columns: 2, Rows: 2, GapPct: 2, PaddingPct: 4,
		Styles: []CellStyle{
			{Corner: CornerSoft}, {Corner: CornerSoft},
			{Corner: CornerSoft}, {Corner: CornerSoft},
		},
		MaskCategories: []string{"basic", "geometric"},
	})
	register(Template{
		ID: "grid-3x3", Name: "Nine Grid", Category: CategoryMinimal,
		Columns: 3, Rows: 3, GapPct: 1.5, PaddingPct: 3,
		MaskCategories: []string{"basic", "geometric"},
	})
	register(Template{
		ID: "editorial-left", Name: "Feature Left", Category: CategoryEditorial,
		Columns: 3, Rows: 2, GapPct: 2, PaddingPct: 4,
		Spans: []Span{
			{Col: 0, Row: 0, ColSpan: 2, RowSpan: 2}, // large feature
			{Col: 2, Row: 0, ColSpan: 1, RowSpan: 1},
			{Col: 2, Row: 1, ColSpan: 1, RowSpan: 1},
		},
		Styles: []CellStyle{
			{Corner: CornerSoft, Shadow: ShadowSoft}, {Corner: CornerSoft}, {Corner: CornerSoft},
		},
		MaskCategories: []string{"basic", "geometric"},
	})
	register(Template{
		ID: "editorial-top", Name: "Feature Top", Category: CategoryEditorial,
		Columns: 3, Rows: 2, GapPct: 2, PaddingPct: 4,
		Spans: []Span{
			{Col: 0, Row: 0, ColSpan: 3, RowSpan: 1},
			{Col: 0, Row: 1, ColSpan: 1, RowSpan: 1},
			{Col: 1, Row: 1, ColSpan: 1, RowSpan: 1},
			{Col: 2, Row: 1, ColSpan: 1, RowSpan: 1},
		},
		MaskCategories: []string{"basic"},
	})
	register(Template{
		ID: "mosaic-5", Name: "Mosaic Five", Category: CategoryEditorial,
		Columns: 4, Rows: 2, GapPct: 1.5, PaddingPct: 3,
		Spans: []Span{
			{Col: 0, Row: 0, ColSpan: 2, RowSpan: 2},
			{Col: 2, Row: 0, ColSpan: 1, RowSpan: 1},
			{Col: 3, Row: 0, ColSpan: 1, RowSpan: 1},
			{Col: 2, Row: 1, ColSpan: 1, RowSpan: 1},
			{Col: 3, Row: 1, ColSpan: 1, RowSpan: 1},
		},
		MaskCategories: []string{"basic", "geometric", "artistic"},
	})
	register(Template{
		ID: "minimal-center", Name: "Centered", Category: CategoryMinimal,
		Columns: 3, Rows: 3, PaddingPct: 2,
		Spans: []Span{
			{Col: 1, Row: 1, ColSpan: 1, RowSpan: 1},
		},
		Styles:         []CellStyle{{Corner: CornerRound, Shadow: ShadowSoft}},
		MaskCategories: []string{"basic", "artistic"},
	})
}

// Get returns the template for id or ErrUnknownLayout.
func Get(id string) (Template, error) {
	t, ok := templates[id]
	if !ok {
		return Template{}, ErrUnknownLayout
	}
	return t, nil
}

// List returns every template in registration order.
func List() []Template {
	out := make([]Template, 0, len(templateOrder))
	for _, id := range templateOrder {
		out = append(out, templates[id])
	}
	return out
}

// ListByCategory returns the templates of one category, in order.
func ListByCategory(c Category) []Template {
	var out []Template
	for _, id := range templateOrder {
		if templates[id].Category == c {
			out = append(out, templates[id])
		}
	}
	return out
}
