package geom

import (
	"math"
	"testing"
)

func TestPercentPixelRoundTrip(t *testing.T) {
	containers := []float64{1, 150, 944.8, 2362.2, 10000}
	values := []float64{0, 0.001, 12.5, 50, 99.999, 100, 150, -25}

	for _, c := range containers {
		for _, v := range values {
			px := ToPixels(v, c)
			back := ToPercent(px, c)
			if math.Abs(back-v) > 1e-6 {
				t.Errorf("round trip %v%% in %vpx: got %v", v, c, back)
			}
		}
	}
}

func TestCmToPixels(t *testing.T) {
	// 20cm at 300dpi is 2362.2047... px
	got := CmToPixels(20, 300)
	want := 20.0 / 2.54 * 300.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("CmToPixels(20, 300) = %v, want %v", got, want)
	}
	if math.Abs(PixelsToCm(got, 300)-20) > 1e-9 {
		t.Fatal("PixelsToCm does not invert CmToPixels")
	}
}

func TestCmToPoints(t *testing.T) {
	if math.Abs(CmToPoints(2.54)-72) > 1e-9 {
		t.Fatalf("one inch should be 72pt, got %v", CmToPoints(2.54))
	}
}

func TestFromPercentResolvesAgainstContainer(t *testing.T) {
	container := Rect{X: 100, Y: 50, W: 400, H: 200}
	r := FromPercent(container, 25, 50, 50, 25)

	if r.X != 200 || r.Y != 150 || r.W != 200 || r.H != 50 {
		t.Fatalf("unexpected rect: %+v", r)
	}
}

func TestFromPercentDoesNotClamp(t *testing.T) {
	container := Rect{W: 100, H: 100}
	r := FromPercent(container, -20, 110, 150, 10)

	if r.X != -20 || r.Y != 110 || r.W != 150 {
		t.Fatalf("out-of-bounds geometry must pass through, got %+v", r)
	}
}

func TestContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 20}

	cases := []struct {
		x, y float64
		want bool
	}{
		{15, 15, true},
		{10, 10, true},  // edge inclusive
		{30, 30, true},  // far edge inclusive
		{9.9, 15, false},
		{31, 15, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestToPercentZeroContainer(t *testing.T) {
	if got := ToPercent(50, 0); got != 0 {
		t.Fatalf("zero container should yield 0, got %v", got)
	}
}
