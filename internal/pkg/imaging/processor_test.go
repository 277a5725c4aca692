package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// testJPEG encodes a w x h gradient as JPEG bytes.
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestProcessThumbnailIsCoverFit150(t *testing.T) {
	src := testJPEG(t, 2000, 2000)
	p := NewProcessor(DefaultConfig())

	result, err := p.Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ThumbWidth != 150 || result.ThumbHeight != 150 {
		t.Fatalf("thumbnail = %dx%d, want 150x150", result.ThumbWidth, result.ThumbHeight)
	}

	// Thumbnail must decode as JPEG
	cfg, format, err := image.DecodeConfig(bytes.NewReader(result.Thumbnail))
	if err != nil {
		t.Fatalf("thumbnail not decodable: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("thumbnail format = %s, want jpeg", format)
	}
	if cfg.Width != 150 || cfg.Height != 150 {
		t.Fatalf("decoded thumbnail = %dx%d", cfg.Width, cfg.Height)
	}

	if len(result.Thumbnail) >= len(src) {
		t.Fatalf("thumbnail (%d bytes) should be smaller than source (%d bytes)", len(result.Thumbnail), len(src))
	}
}

func TestProcessNonSquareCoverCrop(t *testing.T) {
	src := testJPEG(t, 800, 400)
	p := NewProcessor(DefaultConfig())

	result, err := p.Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cover fit crops, never letterboxes
	if result.ThumbWidth != 150 || result.ThumbHeight != 150 {
		t.Fatalf("thumbnail = %dx%d, want 150x150", result.ThumbWidth, result.ThumbHeight)
	}
}

func TestProcessResizesOversizedOriginal(t *testing.T) {
	src := testJPEG(t, 600, 300)
	p := NewProcessor(Config{MaxWidth: 300, MaxHeight: 300, ThumbWidth: 150, ThumbHeight: 150, Quality: 85})

	result, err := p.Process(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Width != 300 || result.Height != 150 {
		t.Fatalf("resized original = %dx%d, want 300x150", result.Width, result.Height)
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	p := NewProcessor(DefaultConfig())
	if _, err := p.Process(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestApplyFilterIdentity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{200, 100, 50, 255})

	out := ApplyFilter(img, FilterParams{Brightness: 100, Contrast: 100, Saturation: 100})
	if out != image.Image(img) {
		t.Fatal("identity filter should return the input image unchanged")
	}
}

func TestApplyFilterMonoDesaturates(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{250, 20, 20, 255})
		}
	}

	out := ApplyFilter(img, FilterParams{Brightness: 100, Contrast: 100, Saturation: 0})
	r, g, b, _ := out.At(0, 0).RGBA()
	if r != g || g != b {
		t.Fatalf("saturation 0 should produce grey pixels, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestApplyTintWarmsReds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{100, 100, 100, 255})

	out := ApplyFilter(img, FilterParams{Brightness: 100, Contrast: 100, Saturation: 100, Tint: 50})
	r, _, b, _ := out.At(0, 0).RGBA()
	if r>>8 <= 100 || b>>8 >= 100 {
		t.Fatalf("warm tint should raise red and lower blue, got r=%d b=%d", r>>8, b>>8)
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := map[string]string{
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
		"image/jpeg": ".jpg",
		"weird/type": ".jpg",
	}
	for mime, want := range cases {
		if got := ExtensionForMime(mime); got != want {
			t.Errorf("ExtensionForMime(%q) = %q, want %q", mime, got, want)
		}
	}
}
