// Package geom is the single source of truth for unit conversions between
// physical sizes (cm, inches), DPI and the percentage coordinates used to
// position elements. Both the editor session and the render pipeline import
// it; the same math runs in both places so the preview matches the print.
package geom

const (
	// CmPerInch is the exact definition of the inch.
	CmPerInch = 2.54
	// PointsPerInch is the PDF point density (1pt = 1/72in).
	PointsPerInch = 72.0
)

// CmToPixels converts a physical length to pixels at the given DPI.
func CmToPixels(cm, dpi float64) float64 {
	return cm / CmPerInch * dpi
}

// PixelsToCm converts pixels back to centimeters at the given DPI.
func PixelsToCm(px, dpi float64) float64 {
	return px / dpi * CmPerInch
}

// CmToInch converts centimeters to inches.
func CmToInch(cm float64) float64 {
	return cm / CmPerInch
}

// InchToCm converts inches to centimeters.
func InchToCm(in float64) float64 {
	return in * CmPerInch
}

// CmToPoints converts centimeters to PDF points.
func CmToPoints(cm float64) float64 {
	return cm / CmPerInch * PointsPerInch
}

// ToPixels converts a percentage of a container dimension into pixels.
func ToPixels(valuePercent, containerSizePx float64) float64 {
	return valuePercent / 100.0 * containerSizePx
}

// ToPercent is the inverse of ToPixels.
func ToPercent(valuePx, containerSizePx float64) float64 {
	if containerSizePx == 0 {
		return 0
	}
	return valuePx / containerSizePx * 100.0
}

// Rect is an absolute pixel-space rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PageBox returns the pixel box of a page with the given physical size.
func PageBox(widthCm, heightCm, dpi float64) Rect {
	return Rect{W: CmToPixels(widthCm, dpi), H: CmToPixels(heightCm, dpi)}
}

// FromPercent resolves a percentage-positioned box against a container.
// Values are intentionally not clamped: out-of-bounds geometry is valid
// input and resolves to out-of-bounds output.
func FromPercent(container Rect, xPct, yPct, wPct, hPct float64) Rect {
	return Rect{
		X: container.X + ToPixels(xPct, container.W),
		Y: container.Y + ToPixels(yPct, container.H),
		W: ToPixels(wPct, container.W),
		H: ToPixels(hPct, container.H),
	}
}

// Contains reports whether the point (px, py) falls inside r.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Inset returns r shrunk by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}
