// Package masks holds the static registries of crop shapes and color filter
// presets applicable to image elements. Both registries are lookups with
// defaulting: an unknown mask id resolves to the unclipped rectangle and an
// unknown filter name resolves to the identity preset.
package masks

// Kind discriminates how a Shape is expressed geometrically.
type Kind string

const (
	KindNone    Kind = "none"    // no clipping
	KindEllipse Kind = "ellipse" // ellipse inscribed in the box (circle when square)
	KindRounded Kind = "rounded" // rounded rectangle, Radius as percent of min side
	KindPolygon Kind = "polygon" // closed polygon, Points in unit space (0..1)
	KindFrame   Kind = "frame"   // inner rectangle inset, Inset as percent per side
)

// Shape is a resolvable crop path for an image element. Polygon points are
// expressed in the element's unit box so the renderer can scale them to any
// absolute rect.
type Shape struct {
	ID       string       `json:"id"`
	Kind     Kind         `json:"kind"`
	Radius   float64      `json:"radius,omitempty"`
	Inset    float64      `json:"inset,omitempty"`
	Points   [][2]float64 `json:"points,omitempty"`
	Category string       `json:"category"`
}

// IsNone reports whether the shape performs no clipping.
func (s Shape) IsNone() bool {
	return s.Kind == KindNone
}

// NoneShape is the fallback for unknown and "none" mask ids.
var NoneShape = Shape{ID: "none", Kind: KindNone, Category: "basic"}

var shapes = map[string]Shape{
	"none":      NoneShape,
	"rectangle": {ID: "rectangle", Kind: KindNone, Category: "basic"},
	"circle":    {ID: "circle", Kind: KindEllipse, Category: "basic"},
	"ellipse":   {ID: "ellipse", Kind: KindEllipse, Category: "basic"},
	"rounded":   {ID: "rounded", Kind: KindRounded, Radius: 12, Category: "basic"},
	"squircle":  {ID: "squircle", Kind: KindRounded, Radius: 30, Category: "basic"},
	"hexagon": {ID: "hexagon", Kind: KindPolygon, Category: "geometric", Points: [][2]float64{
		{0.25, 0}, {0.75, 0}, {1, 0.5}, {0.75, 1}, {0.25, 1}, {0, 0.5},
	}},
	"diamond": {ID: "diamond", Kind: KindPolygon, Category: "geometric", Points: [][2]float64{
		{0.5, 0}, {1, 0.5}, {0.5, 1}, {0, 0.5},
	}},
	"triangle": {ID: "triangle", Kind: KindPolygon, Category: "geometric", Points: [][2]float64{
		{0.5, 0}, {1, 1}, {0, 1},
	}},
	"pentagon": {ID: "pentagon", Kind: KindPolygon, Category: "geometric", Points: [][2]float64{
		{0.5, 0}, {1, 0.38}, {0.81, 1}, {0.19, 1}, {0, 0.38},
	}},
	"diagonal": {ID: "diagonal", Kind: KindPolygon, Category: "artistic", Points: [][2]float64{
		{0, 0}, {1, 0.15}, {1, 1}, {0, 0.85},
	}},
	"polaroid": {ID: "polaroid", Kind: KindFrame, Inset: 6, Category: "artistic"},
}

// categories groups mask ids; layout templates declare which groups they
// accept so the editor can narrow the picker per template.
var categories = map[string][]string{
	"basic":     {"none", "rectangle", "circle", "ellipse", "rounded", "squircle"},
	"geometric": {"hexagon", "diamond", "triangle", "pentagon"},
	"artistic":  {"diagonal", "polaroid"},
}

// ResolveMask returns the shape for id, falling back to NoneShape for
// unknown and empty ids. It never fails: a broken mask reference degrades
// to an unclipped image.
func ResolveMask(id string) Shape {
	if s, ok := shapes[id]; ok {
		return s
	}
	return NoneShape
}

// KnownMask reports whether id names a registered shape.
func KnownMask(id string) bool {
	_, ok := shapes[id]
	return ok
}

// MasksInCategory returns the mask ids of a named group, nil when unknown.
func MasksInCategory(category string) []string {
	return categories[category]
}

// ListMasks returns every registered shape, for the registry endpoint.
func ListMasks() []Shape {
	out := make([]Shape, 0, len(shapes))
	for _, c := range []string{"basic", "geometric", "artistic"} {
		for _, id := range categories[c] {
			out = append(out, shapes[id])
		}
	}
	return out
}
