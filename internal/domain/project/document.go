package project

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ElementType discriminates the element variants
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementShape ElementType = "shape"
)

// Position is a percentage-based position relative to the containing cell.
// Values are not clamped to 0-100: out-of-bounds designs are valid.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a percentage-based size relative to the containing cell.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementStyle carries the type-specific styling. Only the fields for the
// element's type are meaningful; the rest stay zero.
type ElementStyle struct {
	// Text
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Color      string  `json:"color,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"`

	// Image
	Mask   string `json:"mask,omitempty"`
	Filter string `json:"filter,omitempty"`

	// Shape
	Shape       string  `json:"shape,omitempty"` // rectangle, circle
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Element is a positioned content unit inside a cell. Content holds text
// for text elements, a URL or base64 data URI for images, and is unused
// for shapes.
type Element struct {
	ID       string       `json:"id"`
	Type     ElementType  `json:"type"`
	Position Position     `json:"position"`
	Size     Size         `json:"size"`
	ZIndex   int          `json:"zIndex"`
	// Seq is the insertion sequence, persisted explicitly so z-index
	// tie-breaking survives save/load round trips.
	Seq      int          `json:"seq"`
	Rotation float64      `json:"rotation,omitempty"`
	Opacity  float64      `json:"opacity"`
	Content  string       `json:"content,omitempty"`
	Style    ElementStyle `json:"style,omitempty"`
	// UploadError marks an image whose materialization failed during the
	// last manual save; content then still holds the original data URI.
	UploadError string `json:"uploadError,omitempty"`
}

// HasDataURI reports whether an image element still embeds raw base64 data.
func (e *Element) HasDataURI() bool {
	return e.Type == ElementImage && strings.HasPrefix(e.Content, "data:")
}

// Cell is one slot of a page's layout grid.
type Cell struct {
	// Mask optionally overrides the element-level masks for the cell.
	Mask     string    `json:"mask,omitempty"`
	Elements []Element `json:"elements"`
}

// Page is one ordered page of the design.
type Page struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	// Layout names a catalog template; empty means a single full-bleed cell.
	Layout string `json:"layout,omitempty"`
	Cells  []Cell `json:"cells"`
}

// Document is the serializable design document: pages, cells, elements.
type Document struct {
	Pages []Page `json:"pages"`
	// NextSeq is the insertion-sequence counter for new elements.
	NextSeq int `json:"nextSeq,omitempty"`
}

// NewDocument creates a document with a single empty page.
func NewDocument(backgroundColor string) *Document {
	return &Document{
		Pages: []Page{{
			BackgroundColor: backgroundColor,
			Cells:           []Cell{{Elements: []Element{}}},
		}},
	}
}

// DecodeDocument parses and normalizes a persisted document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode design document: %w", err)
	}
	doc.normalize()
	return &doc, nil
}

// Encode serializes the document to its persisted JSON form.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// normalize repairs defaults after decoding: opacity 0 means unset (fully
// opaque), missing seq values get assigned past the current maximum so
// existing relative order is kept.
func (d *Document) normalize() {
	maxSeq := 0
	for pi := range d.Pages {
		for ci := range d.Pages[pi].Cells {
			for ei := range d.Pages[pi].Cells[ci].Elements {
				el := &d.Pages[pi].Cells[ci].Elements[ei]
				if el.Opacity <= 0 || el.Opacity > 1 {
					el.Opacity = 1
				}
				if el.Seq > maxSeq {
					maxSeq = el.Seq
				}
			}
		}
	}
	if d.NextSeq <= maxSeq {
		d.NextSeq = maxSeq + 1
	}
	for pi := range d.Pages {
		for ci := range d.Pages[pi].Cells {
			for ei := range d.Pages[pi].Cells[ci].Elements {
				el := &d.Pages[pi].Cells[ci].Elements[ei]
				if el.Seq == 0 {
					el.Seq = d.NextSeq
					d.NextSeq++
				}
			}
		}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{NextSeq: d.NextSeq, Pages: make([]Page, len(d.Pages))}
	for i, p := range d.Pages {
		out.Pages[i] = clonePage(p)
	}
	return out
}

func clonePage(p Page) Page {
	cp := p
	cp.Cells = make([]Cell, len(p.Cells))
	for i, c := range p.Cells {
		cc := c
		cc.Elements = make([]Element, len(c.Elements))
		copy(cc.Elements, c.Elements)
		cp.Cells[i] = cc
	}
	return cp
}

// ElementCount returns the total number of elements across all pages.
func (d *Document) ElementCount() int {
	n := 0
	for _, p := range d.Pages {
		for _, c := range p.Cells {
			n += len(c.Elements)
		}
	}
	return n
}

// ImageURLs returns the content URLs of all materialized image elements.
func (d *Document) ImageURLs() []string {
	var urls []string
	for _, p := range d.Pages {
		if p.BackgroundImage != "" {
			urls = append(urls, p.BackgroundImage)
		}
		for _, c := range p.Cells {
			for _, e := range c.Elements {
				if e.Type == ElementImage && e.Content != "" && !strings.HasPrefix(e.Content, "data:") {
					urls = append(urls, e.Content)
				}
			}
		}
	}
	return urls
}
