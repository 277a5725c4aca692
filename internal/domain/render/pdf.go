package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/bananalab/canvas-api/internal/masks"
	"github.com/bananalab/canvas-api/internal/pkg/geom"
	pkgimaging "github.com/bananalab/canvas-api/internal/pkg/imaging"
)

// ImageSource fetches the raw bytes of an image referenced by a plan item:
// a stored asset URL or an embedded data URI.
type ImageSource interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// PDFRenderer draws a composed plan into a print-ready PDF.
type PDFRenderer struct {
	images ImageSource
}

// NewPDFRenderer creates the PDF drawing backend
func NewPDFRenderer(images ImageSource) *PDFRenderer {
	return &PDFRenderer{images: images}
}

// Render writes the plan as a PDF. Unfetchable or undecodable images
// degrade to placeholder boxes and are reported as warnings; only output
// failures are errors.
func (r *PDFRenderer) Render(ctx context.Context, plan *Plan, w io.Writer) ([]string, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "cm",
		Size:    gofpdf.SizeType{Wd: plan.WidthCm, Ht: plan.HeightCm},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	warnings := append([]string(nil), plan.Warnings...)
	imageSeq := 0

	for pi, page := range plan.Pages {
		pdf.AddPage()

		cr, cg, cb := parseHexColor(page.BackgroundColor, 255, 255, 255)
		pdf.SetFillColor(cr, cg, cb)
		pdf.Rect(0, 0, plan.WidthCm, plan.HeightCm, "F")

		if page.BackgroundImage != "" {
			full := geom.Rect{W: plan.WidthCm, H: plan.HeightCm}
			bg := Item{Kind: ItemImage, Frame: full, Opacity: 1, Mask: masks.NoneShape, Filter: masks.Original, Content: page.BackgroundImage}
			if err := r.drawImage(ctx, pdf, bg, &imageSeq); err != nil {
				warnings = append(warnings, fmt.Sprintf("page %d: background image skipped: %v", pi+1, err))
			}
		}

		for _, item := range page.Items {
			var err error
			switch item.Kind {
			case ItemImage:
				err = r.drawImage(ctx, pdf, item, &imageSeq)
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("page %d: image skipped: %v", pi+1, err))
					drawPlaceholder(pdf, item.Frame, "Image unavailable")
					err = nil
				}
			case ItemText:
				drawText(pdf, item)
			case ItemShape:
				drawShape(pdf, item)
			case ItemPlaceholder:
				drawPlaceholder(pdf, item.Frame, "Empty page")
			}
			if err != nil {
				return warnings, err
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return warnings, fmt.Errorf("failed to write pdf: %w", err)
	}
	return warnings, nil
}

func (r *PDFRenderer) drawImage(ctx context.Context, pdf *gofpdf.Fpdf, item Item, seq *int) error {
	data, err := r.images.Fetch(ctx, item.Content)
	if err != nil {
		return err
	}

	imageType := sniffImageType(data)

	// Color filters are baked into the embedded image.
	if !item.Filter.IsIdentity() {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to decode image: %w", err)
		}
		filtered := pkgimaging.ApplyFilter(img, pkgimaging.FilterParams{
			Brightness: item.Filter.Brightness,
			Contrast:   item.Filter.Contrast,
			Saturation: item.Filter.Saturation,
			Tint:       item.Filter.Tint,
			Hue:        item.Filter.Hue,
			Blur:       item.Filter.Blur,
		})
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, filtered, &jpeg.Options{Quality: 92}); err != nil {
			return fmt.Errorf("failed to encode filtered image: %w", err)
		}
		data = buf.Bytes()
		imageType = "JPG"
	}

	*seq++
	name := fmt.Sprintf("img-%d", *seq)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return fmt.Errorf("failed to register image: %s", pdf.Error())
	}

	frame := item.Frame
	withTransforms(pdf, item, func() {
		applyClip(pdf, frame, item.Mask)

		// Cover-fit: scale to fill the frame, center, let the clip crop
		// the overflow.
		iw, ih := info.Extent()
		dw, dh := frame.W, frame.H
		if iw > 0 && ih > 0 {
			scale := dw / iw
			if s := dh / ih; s > scale {
				scale = s
			}
			dw, dh = iw*scale, ih*scale
		}
		x := frame.X - (dw-frame.W)/2
		y := frame.Y - (dh-frame.H)/2

		pdf.ImageOptions(name, x, y, dw, dh, false, gofpdf.ImageOptions{ImageType: imageType}, 0, "")
		pdf.ClipEnd()
	})

	if pdf.Err() {
		return fmt.Errorf("failed to draw image: %s", pdf.Error())
	}
	return nil
}

// applyClip opens the clip path matching the mask shape. Callers must pair
// it with ClipEnd.
func applyClip(pdf *gofpdf.Fpdf, frame geom.Rect, mask masks.Shape) {
	minSide := frame.W
	if frame.H < minSide {
		minSide = frame.H
	}

	switch mask.Kind {
	case masks.KindEllipse:
		cx, cy := frame.Center()
		pdf.ClipEllipse(cx, cy, frame.W/2, frame.H/2, false)
	case masks.KindRounded:
		radius := mask.Radius / 100 * minSide
		pdf.ClipRoundedRect(frame.X, frame.Y, frame.W, frame.H, radius, false)
	case masks.KindPolygon:
		points := make([]gofpdf.PointType, len(mask.Points))
		for i, p := range mask.Points {
			points[i] = gofpdf.PointType{
				X: frame.X + p[0]*frame.W,
				Y: frame.Y + p[1]*frame.H,
			}
		}
		pdf.ClipPolygon(points, false)
	case masks.KindFrame:
		inner := frame.Inset(mask.Inset / 100 * minSide)
		pdf.ClipRect(inner.X, inner.Y, inner.W, inner.H, false)
	default:
		pdf.ClipRect(frame.X, frame.Y, frame.W, frame.H, false)
	}
}

func drawText(pdf *gofpdf.Fpdf, item Item) {
	size := item.Style.FontSize
	if size <= 0 {
		size = 14
	}

	style := ""
	if item.Style.FontWeight == "bold" {
		style = "B"
	}
	pdf.SetFont(mapFont(item.Style.FontFamily), style, size)

	tr, tg, tb := parseHexColor(item.Style.Color, 0, 0, 0)
	pdf.SetTextColor(tr, tg, tb)

	lineHeight := item.Style.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	// Font size is in points, cell heights in centimeters.
	lineCm := size / geom.PointsPerInch * geom.CmPerInch * lineHeight

	align := "L"
	switch item.Style.TextAlign {
	case "center":
		align = "C"
	case "right":
		align = "R"
	}

	withTransforms(pdf, item, func() {
		pdf.SetXY(item.Frame.X, item.Frame.Y)
		pdf.MultiCell(item.Frame.W, lineCm, item.Content, "", align, false)
	})
}

func drawShape(pdf *gofpdf.Fpdf, item Item) {
	fr, fg, fb := parseHexColor(item.Style.Fill, 200, 200, 200)
	pdf.SetFillColor(fr, fg, fb)

	mode := "F"
	if item.Style.Stroke != "" && item.Style.StrokeWidth > 0 {
		sr, sg, sb := parseHexColor(item.Style.Stroke, 0, 0, 0)
		pdf.SetDrawColor(sr, sg, sb)
		pdf.SetLineWidth(item.Style.StrokeWidth / 10) // mm to cm
		mode = "FD"
	}

	withTransforms(pdf, item, func() {
		if item.Style.Shape == "circle" {
			cx, cy := item.Frame.Center()
			pdf.Ellipse(cx, cy, item.Frame.W/2, item.Frame.H/2, 0, mode)
		} else {
			pdf.Rect(item.Frame.X, item.Frame.Y, item.Frame.W, item.Frame.H, mode)
		}
	})
}

func drawPlaceholder(pdf *gofpdf.Fpdf, frame geom.Rect, label string) {
	pdf.SetFillColor(238, 238, 238)
	pdf.SetDrawColor(204, 204, 204)
	pdf.SetLineWidth(0.05)
	pdf.Rect(frame.X, frame.Y, frame.W, frame.H, "FD")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(170, 170, 170)
	pdf.SetXY(frame.X, frame.Y)
	pdf.CellFormat(frame.W, frame.H, label, "", 0, "CM", false, 0, "")
}

// withTransforms wraps a draw call in the item's rotation and opacity.
func withTransforms(pdf *gofpdf.Fpdf, item Item, draw func()) {
	rotated := item.Rotation != 0
	translucent := item.Opacity > 0 && item.Opacity < 1

	if translucent {
		pdf.SetAlpha(item.Opacity, "Normal")
	}
	if rotated {
		cx, cy := item.Frame.Center()
		pdf.TransformBegin()
		pdf.TransformRotate(-item.Rotation, cx, cy)
	}

	draw()

	if rotated {
		pdf.TransformEnd()
	}
	if translucent {
		pdf.SetAlpha(1, "Normal")
	}
}

// mapFont maps a design font family onto the core PDF fonts.
func mapFont(family string) string {
	switch strings.ToLower(family) {
	case "times", "georgia", "serif":
		return "Times"
	case "courier", "monospace":
		return "Courier"
	default:
		return "Helvetica"
	}
}

// sniffImageType detects the format gofpdf should register the bytes as.
func sniffImageType(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "GIF"
	default:
		return "JPG"
	}
}

// parseHexColor parses #rgb and #rrggbb, falling back to the given default.
func parseHexColor(s string, dr, dg, db int) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		r, okR := hexNibble(s[0])
		g, okG := hexNibble(s[1])
		b, okB := hexNibble(s[2])
		if okR && okG && okB {
			return r * 17, g * 17, b * 17
		}
	case 6:
		hi := [3]int{}
		ok := true
		for i := 0; i < 3; i++ {
			h, okH := hexNibble(s[i*2])
			l, okL := hexNibble(s[i*2+1])
			if !okH || !okL {
				ok = false
				break
			}
			hi[i] = h*16 + l
		}
		if ok {
			return hi[0], hi[1], hi[2]
		}
	}
	return dr, dg, db
}

func hexNibble(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
