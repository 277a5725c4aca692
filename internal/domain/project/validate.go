package project

import (
	"fmt"

	"github.com/bananalab/canvas-api/internal/catalog"
)

// ValidationError reports a malformed design document with the offending
// field path.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid design document: %s: %s", e.Field, e.Message)
}

// Validate checks structural invariants before persistence or rendering.
// Geometry is deliberately not range-checked: out-of-bounds positions are
// valid designs.
func (d *Document) Validate() error {
	if len(d.Pages) == 0 {
		return &ValidationError{Field: "pages", Message: "a project must have at least one page"}
	}

	seen := make(map[string]string, d.ElementCount())

	for pi, page := range d.Pages {
		if page.Layout != "" {
			if tpl, err := catalog.Get(page.Layout); err == nil {
				if len(page.Cells) > tpl.CellCount {
					return &ValidationError{
						Field:   fmt.Sprintf("pages[%d].cells", pi),
						Message: fmt.Sprintf("layout %q allows %d cells, document has %d", page.Layout, tpl.CellCount, len(page.Cells)),
					}
				}
			}
			// Unknown layout ids are not rejected here: the renderer
			// degrades them to a full-bleed page.
		}

		for ci, cell := range page.Cells {
			for ei, el := range cell.Elements {
				path := fmt.Sprintf("pages[%d].cells[%d].elements[%d]", pi, ci, ei)

				if el.ID == "" {
					return &ValidationError{Field: path + ".id", Message: "element id is required"}
				}
				if prev, dup := seen[el.ID]; dup {
					return &ValidationError{
						Field:   path + ".id",
						Message: fmt.Sprintf("duplicate element id %q (also at %s)", el.ID, prev),
					}
				}
				seen[el.ID] = path

				switch el.Type {
				case ElementText, ElementImage, ElementShape:
				default:
					return &ValidationError{Field: path + ".type", Message: fmt.Sprintf("unknown element type %q", el.Type)}
				}

				if el.Opacity < 0 || el.Opacity > 1 {
					return &ValidationError{Field: path + ".opacity", Message: "opacity must be within 0..1"}
				}
			}
		}
	}
	return nil
}
