package project

import (
	"github.com/google/uuid"
)

// duplicateOffsetPct is the position shift applied to duplicated elements
// so the copy is not hidden exactly under the original.
const duplicateOffsetPct = 2.0

// AddPage inserts an empty page after afterIndex (-1 prepends). pageCap <= 0
// means unlimited.
func (d *Document) AddPage(afterIndex int, pageCap int, backgroundColor string) (*Page, error) {
	if pageCap > 0 && len(d.Pages) >= pageCap {
		return nil, ErrPageLimitExceeded
	}
	if afterIndex < -1 || afterIndex >= len(d.Pages) {
		return nil, ErrPageNotFound
	}

	page := Page{
		BackgroundColor: backgroundColor,
		Cells:           []Cell{{Elements: []Element{}}},
	}

	at := afterIndex + 1
	d.Pages = append(d.Pages, Page{})
	copy(d.Pages[at+1:], d.Pages[at:])
	d.Pages[at] = page

	return &d.Pages[at], nil
}

// DuplicatePage deep-clones the page at index, inserting the copy right
// after it. Every element gets a fresh id: persistence treats id collisions
// as update-in-place, so reusing ids would silently merge elements.
func (d *Document) DuplicatePage(index int, pageCap int) (*Page, error) {
	if pageCap > 0 && len(d.Pages) >= pageCap {
		return nil, ErrPageLimitExceeded
	}
	if index < 0 || index >= len(d.Pages) {
		return nil, ErrPageNotFound
	}

	clone := clonePage(d.Pages[index])
	for ci := range clone.Cells {
		for ei := range clone.Cells[ci].Elements {
			clone.Cells[ci].Elements[ei].ID = uuid.New().String()
			clone.Cells[ci].Elements[ei].Seq = d.nextSeq()
		}
	}

	at := index + 1
	d.Pages = append(d.Pages, Page{})
	copy(d.Pages[at+1:], d.Pages[at:])
	d.Pages[at] = clone

	return &d.Pages[at], nil
}

// DeletePage removes the page at index. The last remaining page cannot be
// deleted.
func (d *Document) DeletePage(index int) error {
	if index < 0 || index >= len(d.Pages) {
		return ErrPageNotFound
	}
	if len(d.Pages) == 1 {
		return ErrLastPage
	}
	d.Pages = append(d.Pages[:index], d.Pages[index+1:]...)
	return nil
}

// AddElement appends an element to the given cell, assigning a fresh id
// when none is provided and the insertion sequence number. Returns the
// stored element.
func (d *Document) AddElement(pageIndex, cellIndex int, el Element) (*Element, error) {
	if pageIndex < 0 || pageIndex >= len(d.Pages) {
		return nil, ErrPageNotFound
	}
	page := &d.Pages[pageIndex]
	if cellIndex < 0 || cellIndex >= len(page.Cells) {
		return nil, ErrCellNotFound
	}

	if el.ID == "" {
		el.ID = uuid.New().String()
	} else if d.findByID(el.ID) != nil {
		return nil, ErrDuplicateElement
	}
	if el.Opacity <= 0 || el.Opacity > 1 {
		el.Opacity = 1
	}
	el.Seq = d.nextSeq()

	cell := &page.Cells[cellIndex]
	cell.Elements = append(cell.Elements, el)
	return &cell.Elements[len(cell.Elements)-1], nil
}

// ElementPatch is a partial element update; nil fields are left untouched.
type ElementPatch struct {
	Position *Position     `json:"position,omitempty"`
	Size     *Size         `json:"size,omitempty"`
	ZIndex   *int          `json:"zIndex,omitempty"`
	Rotation *float64      `json:"rotation,omitempty"`
	Opacity  *float64      `json:"opacity,omitempty"`
	Content  *string       `json:"content,omitempty"`
	Style    *ElementStyle `json:"style,omitempty"`
}

// UpdateElement applies a partial update to the element with the given id.
func (d *Document) UpdateElement(id string, patch ElementPatch) (*Element, error) {
	el := d.findByID(id)
	if el == nil {
		return nil, ErrElementNotFound
	}

	if patch.Position != nil {
		el.Position = *patch.Position
	}
	if patch.Size != nil {
		el.Size = *patch.Size
	}
	if patch.ZIndex != nil {
		el.ZIndex = *patch.ZIndex
	}
	if patch.Rotation != nil {
		el.Rotation = *patch.Rotation
	}
	if patch.Opacity != nil {
		el.Opacity = *patch.Opacity
	}
	if patch.Content != nil {
		el.Content = *patch.Content
		el.UploadError = ""
	}
	if patch.Style != nil {
		el.Style = *patch.Style
	}
	return el, nil
}

// DeleteElement removes the element with the given id.
func (d *Document) DeleteElement(id string) error {
	for pi := range d.Pages {
		for ci := range d.Pages[pi].Cells {
			cell := &d.Pages[pi].Cells[ci]
			for ei := range cell.Elements {
				if cell.Elements[ei].ID == id {
					cell.Elements = append(cell.Elements[:ei], cell.Elements[ei+1:]...)
					return nil
				}
			}
		}
	}
	return ErrElementNotFound
}

// DuplicateElement copies the element with the given id into the same cell,
// offset slightly, with a fresh id.
func (d *Document) DuplicateElement(id string) (*Element, error) {
	for pi := range d.Pages {
		for ci := range d.Pages[pi].Cells {
			cell := &d.Pages[pi].Cells[ci]
			for ei := range cell.Elements {
				if cell.Elements[ei].ID == id {
					dup := cell.Elements[ei]
					dup.ID = uuid.New().String()
					dup.Seq = d.nextSeq()
					dup.Position.X += duplicateOffsetPct
					dup.Position.Y += duplicateOffsetPct
					cell.Elements = append(cell.Elements, dup)
					return &cell.Elements[len(cell.Elements)-1], nil
				}
			}
		}
	}
	return nil, ErrElementNotFound
}

// FindElement returns the element with the given id, or nil.
func (d *Document) FindElement(id string) *Element {
	return d.findByID(id)
}

func (d *Document) findByID(id string) *Element {
	for pi := range d.Pages {
		for ci := range d.Pages[pi].Cells {
			for ei := range d.Pages[pi].Cells[ci].Elements {
				if d.Pages[pi].Cells[ci].Elements[ei].ID == id {
					return &d.Pages[pi].Cells[ci].Elements[ei]
				}
			}
		}
	}
	return nil
}

func (d *Document) nextSeq() int {
	if d.NextSeq == 0 {
		d.NextSeq = 1
	}
	seq := d.NextSeq
	d.NextSeq++
	return seq
}
