package catalog

import (
	"errors"
	"testing"
)

func TestGetUnknownLayout(t *testing.T) {
	_, err := Get("no-such-template")
	if !errors.Is(err, ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout, got %v", err)
	}
}

func TestGetKnownLayout(t *testing.T) {
	tpl, err := Get("grid-2x2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tpl.Columns != 2 || tpl.Rows != 2 || tpl.CellCount != 4 {
		t.Fatalf("unexpected grid: %+v", tpl)
	}
}

func TestImplicitCellSpansFlowRowMajor(t *testing.T) {
	tpl, _ := Get("grid-3x3")

	cases := []struct {
		idx      int
		col, row int
	}{
		{0, 0, 0}, {2, 2, 0}, {3, 0, 1}, {8, 2, 2},
	}
	for _, c := range cases {
		s := tpl.CellSpan(c.idx)
		if s.Col != c.col || s.Row != c.row || s.ColSpan != 1 || s.RowSpan != 1 {
			t.Errorf("cell %d: got %+v, want col=%d row=%d", c.idx, s, c.col, c.row)
		}
	}
}

func TestExplicitSpansForAsymmetricLayout(t *testing.T) {
	tpl, _ := Get("editorial-left")
	if tpl.CellCount != 3 {
		t.Fatalf("editorial-left should declare 3 cells, got %d", tpl.CellCount)
	}

	feature := tpl.CellSpan(0)
	if feature.ColSpan != 2 || feature.RowSpan != 2 {
		t.Fatalf("feature cell should span 2x2, got %+v", feature)
	}
	side := tpl.CellSpan(2)
	if side.Col != 2 || side.Row != 1 {
		t.Fatalf("side cell misplaced: %+v", side)
	}
}

func TestCellStyleDefaultsToZero(t *testing.T) {
	tpl, _ := Get("split-horizontal")
	st := tpl.CellStyleAt(1)
	if st.Corner != CornerNone || st.Shadow != ShadowNone {
		t.Fatalf("missing style entries must default to zero tiers, got %+v", st)
	}
}

func TestCellCountDerivedFromSpans(t *testing.T) {
	tpl, _ := Get("minimal-center")
	// 3x3 grid but a single explicit cell.
	if tpl.CellCount != 1 {
		t.Fatalf("minimal-center cell count = %d, want 1", tpl.CellCount)
	}
}

func TestCellSpansDoNotOverlap(t *testing.T) {
	for _, tpl := range List() {
		occupied := map[[2]int]int{}
		for i := 0; i < tpl.CellCount; i++ {
			s := tpl.CellSpan(i)
			for c := s.Col; c < s.Col+s.ColSpan; c++ {
				for r := s.Row; r < s.Row+s.RowSpan; r++ {
					if c < 0 || c >= tpl.Columns || r < 0 || r >= tpl.Rows {
						t.Errorf("template %q: cell %d leaves the %dx%d grid at (%d,%d)",
							tpl.ID, i, tpl.Columns, tpl.Rows, c, r)
						continue
					}
					if prev, ok := occupied[[2]int{c, r}]; ok {
						t.Errorf("template %q: cell %d overlaps cell %d at grid slot (%d,%d)",
							tpl.ID, i, prev, c, r)
					}
					occupied[[2]int{c, r}] = i
				}
			}
		}
	}
}

func TestMaskCategoriesPresent(t *testing.T) {
	for _, tpl := range List() {
		if len(tpl.MaskCategories) == 0 {
			t.Errorf("template %q declares no mask categories", tpl.ID)
		}
	}
}

func TestListByCategory(t *testing.T) {
	heroes := ListByCategory(CategoryHero)
	if len(heroes) == 0 {
		t.Fatal("expected hero templates")
	}
	for _, tpl := range heroes {
		if tpl.Category != CategoryHero {
			t.Errorf("template %q leaked into hero list", tpl.ID)
		}
	}
}
