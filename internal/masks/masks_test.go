package masks

import "testing"

func TestResolveMaskFallsBackToNone(t *testing.T) {
	for _, id := range []string{"", "none", "does-not-exist", "starburst"} {
		s := ResolveMask(id)
		if id == "none" && s.ID != "none" {
			t.Errorf("none must resolve to the none shape, got %q", s.ID)
		}
		if id != "none" && KnownMask(id) {
			continue
		}
		if !s.IsNone() {
			t.Errorf("ResolveMask(%q) should degrade to an unclipped shape, got kind %q", id, s.Kind)
		}
	}
}

func TestResolveMaskKnownShapes(t *testing.T) {
	circle := ResolveMask("circle")
	if circle.Kind != KindEllipse {
		t.Fatalf("circle kind = %q", circle.Kind)
	}
	hex := ResolveMask("hexagon")
	if hex.Kind != KindPolygon || len(hex.Points) != 6 {
		t.Fatalf("hexagon should be a 6-point polygon, got %d points", len(hex.Points))
	}
	polaroid := ResolveMask("polaroid")
	if polaroid.Kind != KindFrame || polaroid.Inset <= 0 {
		t.Fatalf("polaroid should be a frame with inset, got %+v", polaroid)
	}
}

func TestMaskCategories(t *testing.T) {
	basic := MasksInCategory("basic")
	if len(basic) == 0 {
		t.Fatal("basic category must not be empty")
	}
	for _, id := range basic {
		if !KnownMask(id) {
			t.Errorf("category references unknown mask %q", id)
		}
	}
	if MasksInCategory("nope") != nil {
		t.Error("unknown category should return nil")
	}
}

func TestResolveFilterOriginalIsIdentity(t *testing.T) {
	f := ResolveFilter("Original")
	if !f.IsIdentity() {
		t.Fatalf("Original must be the identity preset: %+v", f)
	}
	if got := ResolveFilter("NoSuchPreset"); got.Name != "Original" {
		t.Fatalf("unknown filter should resolve to Original, got %q", got.Name)
	}
}

func TestListFiltersContainsOriginalFirst(t *testing.T) {
	all := ListFilters()
	if len(all) == 0 || all[0].Name != "Original" {
		t.Fatalf("Original must lead the filter list, got %v", all)
	}
}

func TestListMasksStableOrder(t *testing.T) {
	a := ListMasks()
	b := ListMasks()
	if len(a) != len(b) {
		t.Fatal("length changed between calls")
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("order not stable at %d: %q vs %q", i, a[i].ID, b[i].ID)
		}
	}
}
