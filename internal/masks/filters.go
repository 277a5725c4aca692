package masks

// Filter is a color adjustment preset. Brightness, contrast
// and saturation are percentages where 100 is identity; tint and hue are
// offsets where 0 is identity; blur is a radius in pixels.
type Filter struct {
	Name       string  `json:"name"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Tint       float64 `json:"tint"`
	Hue        float64 `json:"hue"`
	Blur       float64 `json:"blur"`
}

// Original is the identity preset. ResolveFilter guarantees it is always
// present and returns it for unknown names.
var Original = Filter{Name: "Original", Brightness: 100, Contrast: 100, Saturation: 100}

// IsIdentity reports whether applying the filter changes nothing.
func (f Filter) IsIdentity() bool {
	return f.Brightness == 100 && f.Contrast == 100 && f.Saturation == 100 &&
		f.Tint == 0 && f.Hue == 0 && f.Blur == 0
}

var filters = map[string]Filter{
	"Original": Original,
	"Vivid":    {Name: "Vivid", Brightness: 105, Contrast: 115, Saturation: 130},
	"Mono":     {Name: "Mono", Brightness: 100, Contrast: 105, Saturation: 0},
	"Warm":     {Name: "Warm", Brightness: 102, Contrast: 100, Saturation: 110, Tint: 15},
	"Cool":     {Name: "Cool", Brightness: 100, Contrast: 100, Saturation: 105, Tint: -15},
	"Fade":     {Name: "Fade", Brightness: 110, Contrast: 85, Saturation: 80},
	"Noir":     {Name: "Noir", Brightness: 90, Contrast: 130, Saturation: 0},
	"Retro":    {Name: "Retro", Brightness: 105, Contrast: 90, Saturation: 70, Hue: 10},
	"Dream":    {Name: "Dream", Brightness: 108, Contrast: 95, Saturation: 90, Blur: 2},
}

var filterOrder = []string{
	"Original", "Vivid", "Mono", "Warm", "Cool", "Fade", "Noir", "Retro", "Dream",
}

// ResolveFilter returns the preset for name, or Original when unknown.
func ResolveFilter(name string) Filter {
	if f, ok := filters[name]; ok {
		return f
	}
	return Original
}

// ListFilters returns every preset in display order.
func ListFilters() []Filter {
	out := make([]Filter, 0, len(filterOrder))
	for _, name := range filterOrder {
		out = append(out, filters[name])
	}
	return out
}
