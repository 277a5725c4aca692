package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/bananalab/canvas-api/internal/domain/project"
)

type imageSourceStub struct {
	images map[string][]byte
}

func (s *imageSourceStub) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := s.images[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderProducesPDF(t *testing.T) {
	source := &imageSourceStub{images: map[string][]byte{
		"https://cdn.example.com/a.jpg": testPNG(t),
	}}
	r := NewPDFRenderer(source)

	el := imageEl("a", 0, 1)
	el.Style.Mask = "circle"
	el.Style.Filter = "Mono"
	text := project.Element{
		ID: "caption", Type: project.ElementText,
		Position: project.Position{X: 10, Y: 80},
		Size:     project.Size{Width: 80, Height: 10},
		Seq:      2, Opacity: 1, Content: "Our summer",
		Style: project.ElementStyle{FontSize: 18, TextAlign: "center", Color: "#333333"},
	}
	shape := project.Element{
		ID: "backdrop", Type: project.ElementShape,
		Position: project.Position{X: 5, Y: 5},
		Size:     project.Size{Width: 90, Height: 90},
		ZIndex:   -1, Seq: 3, Opacity: 0.5, Rotation: 15,
		Style: project.ElementStyle{Shape: "rectangle", Fill: "#ffeecc"},
	}

	doc := docWithLayout("full-bleed", el, text, shape)
	plan := Compose(doc, a4Preset)

	var out bytes.Buffer
	warnings, err := r.Render(context.Background(), plan, &out)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if !strings.HasPrefix(out.String(), "%PDF") {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderMissingImageDegrades(t *testing.T) {
	r := NewPDFRenderer(&imageSourceStub{images: map[string][]byte{}})

	doc := docWithLayout("full-bleed", imageEl("gone", 0, 1))
	plan := Compose(doc, a4Preset)

	var out bytes.Buffer
	warnings, err := r.Render(context.Background(), plan, &out)
	if err != nil {
		t.Fatalf("a missing image must not fail the render, got %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "image skipped") {
		t.Fatalf("expected image-skipped warning, got %v", warnings)
	}
	if !strings.HasPrefix(out.String(), "%PDF") {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderEmptyPageDrawsPlaceholderText(t *testing.T) {
	r := NewPDFRenderer(&imageSourceStub{images: map[string][]byte{}})

	doc := docWithLayout("full-bleed")
	plan := Compose(doc, a4Preset)

	var out bytes.Buffer
	if _, err := r.Render(context.Background(), plan, &out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(out.String(), "%PDF") {
		t.Fatal("output is not a PDF")
	}
	// The page carries no text elements, so a font resource can only come
	// from the placeholder label drawn inside the frame.
	if !strings.Contains(out.String(), "Helvetica") {
		t.Fatal("empty page rendered without placeholder text")
	}
}

func TestRenderInlineDataURI(t *testing.T) {
	source := NewStorageImageSource(nil, "")
	r := NewPDFRenderer(source)

	el := imageEl("inline", 0, 1)
	el.Content = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

	doc := docWithLayout("full-bleed", el)
	plan := Compose(doc, a4Preset)

	var out bytes.Buffer
	warnings, err := r.Render(context.Background(), plan, &out)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestSniffImageType(t *testing.T) {
	if got := sniffImageType(testPNG(t)); got != "PNG" {
		t.Errorf("png sniffed as %s", got)
	}
	if got := sniffImageType([]byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0}); got != "JPG" {
		t.Errorf("jpeg sniffed as %s", got)
	}
	if got := sniffImageType([]byte("GIF89a....")); got != "GIF" {
		t.Errorf("gif sniffed as %s", got)
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b int
	}{
		{"#ffffff", 255, 255, 255},
		{"#000000", 0, 0, 0},
		{"#ff8040", 255, 128, 64},
		{"#fff", 255, 255, 255},
		{"#f00", 255, 0, 0},
		{"not-a-color", 9, 9, 9},
		{"", 9, 9, 9},
	}
	for _, c := range cases {
		r, g, b := parseHexColor(c.in, 9, 9, 9)
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("parseHexColor(%q) = (%d,%d,%d), want (%d,%d,%d)", c.in, r, g, b, c.r, c.g, c.b)
		}
	}
}
