package project

import (
	"testing"
)

func testDoc() *Document {
	doc := NewDocument("#ffffff")
	doc.Pages[0].Cells[0].Elements = []Element{
		{ID: "el-1", Type: ElementImage, Position: Position{X: 10, Y: 10}, Size: Size{Width: 50, Height: 50}, Opacity: 1, Seq: 1, Content: "https://cdn.example.com/a.jpg"},
		{ID: "el-2", Type: ElementText, Position: Position{X: 5, Y: 80}, Size: Size{Width: 90, Height: 10}, Opacity: 1, Seq: 2, Content: "Summer 2026"},
	}
	doc.NextSeq = 3
	return doc
}

func TestAddPage(t *testing.T) {
	doc := testDoc()

	page, err := doc.AddPage(0, 0, "#fafafa")
	if err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if page.BackgroundColor != "#fafafa" {
		t.Errorf("background = %q", page.BackgroundColor)
	}
	if len(page.Cells) != 1 {
		t.Errorf("new page should start with one cell, got %d", len(page.Cells))
	}

	// prepend
	if _, err := doc.AddPage(-1, 0, "#000000"); err != nil {
		t.Fatalf("prepend: %v", err)
	}
	if doc.Pages[0].BackgroundColor != "#000000" {
		t.Errorf("prepended page not at index 0")
	}

	if _, err := doc.AddPage(10, 0, ""); err != ErrPageNotFound {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestAddPageRespectsCap(t *testing.T) {
	doc := testDoc()
	if _, err := doc.AddPage(0, 1, ""); err != ErrPageLimitExceeded {
		t.Fatalf("expected ErrPageLimitExceeded, got %v", err)
	}
}

func TestDeleteLastPage(t *testing.T) {
	doc := testDoc()
	if err := doc.DeletePage(0); err != ErrLastPage {
		t.Fatalf("expected ErrLastPage, got %v", err)
	}

	if _, err := doc.AddPage(0, 0, ""); err != nil {
		t.Fatal(err)
	}
	if err := doc.DeletePage(1); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
}

func TestDuplicatePageAssignsFreshIDs(t *testing.T) {
	doc := testDoc()

	clone, err := doc.DuplicatePage(0, 0)
	if err != nil {
		t.Fatalf("DuplicatePage: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}

	seen := map[string]bool{}
	for _, c := range doc.Pages[0].Cells {
		for _, e := range c.Elements {
			seen[e.ID] = true
		}
	}
	for _, c := range clone.Cells {
		for _, e := range c.Elements {
			if seen[e.ID] {
				t.Errorf("duplicated element reused id %s", e.ID)
			}
			if e.Seq < 3 {
				t.Errorf("duplicated element kept old seq %d", e.Seq)
			}
		}
	}

	// content and geometry copy over
	if clone.Cells[0].Elements[1].Content != "Summer 2026" {
		t.Errorf("clone lost element content")
	}
}

func TestAddElement(t *testing.T) {
	doc := testDoc()

	el, err := doc.AddElement(0, 0, Element{Type: ElementShape, Size: Size{Width: 20, Height: 20}})
	if err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if el.ID == "" {
		t.Error("expected generated id")
	}
	if el.Seq != 3 {
		t.Errorf("seq = %d, want 3", el.Seq)
	}
	if el.Opacity != 1 {
		t.Errorf("opacity default = %v, want 1", el.Opacity)
	}

	if _, err := doc.AddElement(0, 0, Element{ID: "el-1"}); err != ErrDuplicateElement {
		t.Errorf("expected ErrDuplicateElement, got %v", err)
	}
	if _, err := doc.AddElement(5, 0, Element{}); err != ErrPageNotFound {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	if _, err := doc.AddElement(0, 5, Element{}); err != ErrCellNotFound {
		t.Errorf("expected ErrCellNotFound, got %v", err)
	}
}

func TestDuplicateElementOffsets(t *testing.T) {
	doc := testDoc()

	dup, err := doc.DuplicateElement("el-1")
	if err != nil {
		t.Fatalf("DuplicateElement: %v", err)
	}
	if dup.ID == "el-1" {
		t.Error("duplicate kept the original id")
	}
	if dup.Position.X != 12 || dup.Position.Y != 12 {
		t.Errorf("duplicate at (%v,%v), want (12,12)", dup.Position.X, dup.Position.Y)
	}
	if dup.Content != "https://cdn.example.com/a.jpg" {
		t.Errorf("duplicate lost content")
	}
}

func TestUpdateElementClearsUploadError(t *testing.T) {
	doc := testDoc()
	doc.Pages[0].Cells[0].Elements[0].UploadError = "upload failed"

	newContent := "https://cdn.example.com/b.jpg"
	el, err := doc.UpdateElement("el-1", ElementPatch{Content: &newContent})
	if err != nil {
		t.Fatalf("UpdateElement: %v", err)
	}
	if el.UploadError != "" {
		t.Errorf("uploadError not cleared on content change")
	}
	if el.Content != newContent {
		t.Errorf("content = %q", el.Content)
	}

	if _, err := doc.UpdateElement("missing", ElementPatch{}); err != ErrElementNotFound {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
}

func TestDecodeDocumentNormalizes(t *testing.T) {
	raw := []byte(`{"pages":[{"cells":[{"elements":[
		{"id":"a","type":"image","opacity":0},
		{"id":"b","type":"text","seq":7}
	]}]}]}`)

	doc, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}

	a := doc.FindElement("a")
	if a.Opacity != 1 {
		t.Errorf("opacity 0 should normalize to 1, got %v", a.Opacity)
	}
	if a.Seq <= 7 {
		t.Errorf("missing seq should be assigned past the max, got %d", a.Seq)
	}
	if doc.NextSeq <= a.Seq {
		t.Errorf("nextSeq %d not past assigned seq %d", doc.NextSeq, a.Seq)
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	doc := testDoc()
	doc.Pages[0].Cells[0].Elements = append(doc.Pages[0].Cells[0].Elements,
		Element{ID: "el-1", Type: ElementText, Opacity: 1})

	err := doc.Validate()
	if err == nil {
		t.Fatal("expected validation error for duplicate ids")
	}
}

func TestValidateAcceptsOutOfBoundsGeometry(t *testing.T) {
	doc := testDoc()
	doc.Pages[0].Cells[0].Elements[0].Position = Position{X: -40, Y: 180}
	doc.Pages[0].Cells[0].Elements[0].Size = Size{Width: 300, Height: 300}

	if err := doc.Validate(); err != nil {
		t.Fatalf("out-of-bounds geometry must be valid, got %v", err)
	}
}
