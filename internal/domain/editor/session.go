// Package editor implements the headless canvas editing session: pointer
// gestures against the page grid, selection, zoom and debounced auto-save.
// A session owns a working copy of the design document; clients talk to it
// over a websocket and receive the updated state after each operation.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bananalab/canvas-api/internal/catalog"
	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/domain/render"
	"github.com/bananalab/canvas-api/internal/pkg/geom"
	"github.com/bananalab/canvas-api/internal/pkg/logger"
)

const (
	// MinZoom and MaxZoom clamp the editor zoom factor.
	MinZoom = 0.25
	MaxZoom = 3.0

	// baseScreenDPI is the canvas density at zoom 1.
	baseScreenDPI = 96.0

	// handleHitPx is the pointer slop around a resize handle.
	handleHitPx = 12.0

	autosaveDebounce = 2 * time.Second
)

// Gesture is the session's pointer state
type Gesture string

const (
	GestureIdle     Gesture = "idle"
	GestureDragging Gesture = "dragging"
	GestureResizing Gesture = "resizing"
)

// Handle names a resize grip on the selection box.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleNE Handle = "ne"
	HandleSW Handle = "sw"
	HandleSE Handle = "se"
)

// Saver persists editor state in the background. Implemented by the
// project service's auto-save path.
type Saver interface {
	SaveProgress(ctx context.Context, ownerID, projectID uuid.UUID, doc *project.Document, thumbnails []string, takenAt time.Time) error
}

// Session is one user editing one project. All operations are serialized
// through the session mutex; the websocket handler calls them from its
// read loop.
type Session struct {
	mu sync.Mutex

	ownerID   uuid.UUID
	projectID uuid.UUID
	preset    project.PresetSnapshot
	doc       *project.Document

	page     int
	zoom     float64
	selected string
	gesture  Gesture
	handle   Handle

	lastX float64
	lastY float64

	saver     Saver
	saveTimer *time.Timer
	closed    bool
}

// NewSession creates an editing session over a working document copy.
func NewSession(ownerID, projectID uuid.UUID, preset project.PresetSnapshot, doc *project.Document, saver Saver) *Session {
	return &Session{
		ownerID:   ownerID,
		projectID: projectID,
		preset:    preset,
		doc:       doc,
		zoom:      1.0,
		gesture:   GestureIdle,
		saver:     saver,
	}
}

// State is the session snapshot sent to the client after each operation.
type State struct {
	Document *project.Document `json:"document"`
	Page     int               `json:"page"`
	Zoom     float64           `json:"zoom"`
	Selected string            `json:"selected,omitempty"`
	Gesture  Gesture           `json:"gesture"`
}

// State returns the current session snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		Document: s.doc,
		Page:     s.page,
		Zoom:     s.zoom,
		Selected: s.selected,
		Gesture:  s.gesture,
	}
}

// canvasSize returns the page canvas in pixels at the current zoom.
func (s *Session) canvasSize() (float64, float64) {
	return geom.CmToPixels(s.preset.WidthCm, baseScreenDPI) * s.zoom,
		geom.CmToPixels(s.preset.HeightCm, baseScreenDPI) * s.zoom
}

// SetZoom sets the zoom factor, clamped to the supported range.
func (s *Session) SetZoom(zoom float64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	s.zoom = zoom
	return s.stateLocked()
}

// SelectPage switches the active page.
func (s *Session) SelectPage(index int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Pages) {
		return s.stateLocked(), project.ErrPageNotFound
	}
	s.page = index
	s.selected = ""
	s.gesture = GestureIdle
	return s.stateLocked(), nil
}

// PointerDown starts a gesture at canvas pixel coordinates. A press on a
// resize handle of the current selection starts resizing; a press on an
// element selects it and starts dragging; a press on empty canvas clears
// the selection.
func (s *Session) PointerDown(x, y float64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastX, s.lastY = x, y

	if s.selected != "" {
		if h, ok := s.handleAt(x, y); ok {
			s.gesture = GestureResizing
			s.handle = h
			return s.stateLocked()
		}
	}

	if id, ok := s.hitTest(x, y); ok {
		s.selected = id
		s.gesture = GestureDragging
	} else {
		s.selected = ""
		s.gesture = GestureIdle
	}
	return s.stateLocked()
}

// PointerMove continues the active gesture. Deltas are converted from
// pixels to cell percentages; positions are deliberately not clamped, an
// element may be moved partially or fully off its cell.
func (s *Session) PointerMove(x, y float64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	dx, dy := x-s.lastX, y-s.lastY
	s.lastX, s.lastY = x, y

	if s.gesture == GestureIdle || s.selected == "" {
		return s.stateLocked()
	}

	el := s.doc.FindElement(s.selected)
	cell, ok := s.cellFrameOf(s.selected)
	if el == nil || !ok {
		s.gesture = GestureIdle
		return s.stateLocked()
	}

	dxPct := geom.ToPercent(dx, cell.W)
	dyPct := geom.ToPercent(dy, cell.H)

	switch s.gesture {
	case GestureDragging:
		el.Position.X += dxPct
		el.Position.Y += dyPct
	case GestureResizing:
		s.resize(el, dxPct, dyPct)
	}
	return s.stateLocked()
}

// PointerUp ends the gesture and schedules an auto-save.
func (s *Session) PointerUp() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gesture != GestureIdle {
		s.scheduleSaveLocked()
	}
	s.gesture = GestureIdle
	s.handle = ""
	return s.stateLocked()
}

// resize applies a handle drag. Opposite edges stay anchored: dragging the
// north-west grip moves the origin and shrinks the size by the same amount.
func (s *Session) resize(el *project.Element, dxPct, dyPct float64) {
	switch s.handle {
	case HandleSE:
		el.Size.Width += dxPct
		el.Size.Height += dyPct
	case HandleSW:
		el.Position.X += dxPct
		el.Size.Width -= dxPct
		el.Size.Height += dyPct
	case HandleNE:
		el.Position.Y += dyPct
		el.Size.Width += dxPct
		el.Size.Height -= dyPct
	case HandleNW:
		el.Position.X += dxPct
		el.Position.Y += dyPct
		el.Size.Width -= dxPct
		el.Size.Height -= dyPct
	}
}

// hitTest finds the top-most element under the pointer on the active
// page: highest z-index wins, insertion order breaks ties.
func (s *Session) hitTest(x, y float64) (string, bool) {
	page := s.doc.Pages[s.page]
	frames := s.cellFrames()

	bestID := ""
	bestZ, bestSeq := 0, 0
	found := false

	for ci, cell := range page.Cells {
		if ci >= len(frames) {
			break
		}
		for _, el := range cell.Elements {
			frame := geom.FromPercent(frames[ci], el.Position.X, el.Position.Y, el.Size.Width, el.Size.Height)
			if !frame.Contains(x, y) {
				continue
			}
			if !found || el.ZIndex > bestZ || (el.ZIndex == bestZ && el.Seq > bestSeq) {
				bestID, bestZ, bestSeq = el.ID, el.ZIndex, el.Seq
				found = true
			}
		}
	}
	return bestID, found
}

// handleAt checks whether the pointer is on a resize grip of the selected
// element.
func (s *Session) handleAt(x, y float64) (Handle, bool) {
	frame, ok := s.selectedFrame()
	if !ok {
		return "", false
	}

	corners := []struct {
		h    Handle
		x, y float64
	}{
		{HandleNW, frame.X, frame.Y},
		{HandleNE, frame.X + frame.W, frame.Y},
		{HandleSW, frame.X, frame.Y + frame.H},
		{HandleSE, frame.X + frame.W, frame.Y + frame.H},
	}
	for _, c := range corners {
		if x >= c.x-handleHitPx && x <= c.x+handleHitPx &&
			y >= c.y-handleHitPx && y <= c.y+handleHitPx {
			return c.h, true
		}
	}
	return "", false
}

// selectedFrame returns the selected element's frame in canvas pixels.
func (s *Session) selectedFrame() (geom.Rect, bool) {
	el := s.doc.FindElement(s.selected)
	cell, ok := s.cellFrameOf(s.selected)
	if el == nil || !ok {
		return geom.Rect{}, false
	}
	return geom.FromPercent(cell, el.Position.X, el.Position.Y, el.Size.Width, el.Size.Height), true
}

// cellFrames computes the active page's cell frames in canvas pixels.
func (s *Session) cellFrames() []geom.Rect {
	page := s.doc.Pages[s.page]
	layout := page.Layout
	if layout == "" {
		layout = "full-bleed"
	}
	tpl, err := catalog.Get(layout)
	if err != nil {
		tpl, _ = catalog.Get("full-bleed")
	}
	cw, ch := s.canvasSize()
	return render.CellFrames(tpl, cw, ch, len(page.Cells))
}

// cellFrameOf returns the frame of the cell containing the given element.
func (s *Session) cellFrameOf(elementID string) (geom.Rect, bool) {
	page := s.doc.Pages[s.page]
	frames := s.cellFrames()
	for ci, cell := range page.Cells {
		if ci >= len(frames) {
			break
		}
		for _, el := range cell.Elements {
			if el.ID == elementID {
				return frames[ci], true
			}
		}
	}
	return geom.Rect{}, false
}

// AddElement inserts an element into a cell of the active page and selects
// it.
func (s *Session) AddElement(cellIndex int, el project.Element) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.doc.AddElement(s.page, cellIndex, el)
	if err != nil {
		return s.stateLocked(), err
	}
	s.selected = added.ID
	s.scheduleSaveLocked()
	return s.stateLocked(), nil
}

// UpdateElement applies a partial element update.
func (s *Session) UpdateElement(id string, patch project.ElementPatch) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.doc.UpdateElement(id, patch); err != nil {
		return s.stateLocked(), err
	}
	s.scheduleSaveLocked()
	return s.stateLocked(), nil
}

// DeleteElement removes an element.
func (s *Session) DeleteElement(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.DeleteElement(id); err != nil {
		return s.stateLocked(), err
	}
	if s.selected == id {
		s.selected = ""
		s.gesture = GestureIdle
	}
	s.scheduleSaveLocked()
	return s.stateLocked(), nil
}

// DuplicateElement copies an element with a slight offset and selects the
// copy.
func (s *Session) DuplicateElement(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup, err := s.doc.DuplicateElement(id)
	if err != nil {
		return s.stateLocked(), err
	}
	s.selected = dup.ID
	s.scheduleSaveLocked()
	return s.stateLocked(), nil
}

// scheduleSaveLocked debounces the background auto-save: rapid edits
// collapse into one snapshot.
func (s *Session) scheduleSaveLocked() {
	if s.saver == nil || s.closed {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	doc := s.doc.Clone()
	ownerID, projectID := s.ownerID, s.projectID
	s.saveTimer = time.AfterFunc(autosaveDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.saver.SaveProgress(ctx, ownerID, projectID, doc, nil, time.Now()); err != nil {
			logger.LogWarn(ctx, "Editor auto-save failed",
				"project_id", projectID.String(), "error", err.Error())
		}
	})
}

// Close flushes a pending auto-save immediately and stops the session.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	doc := s.doc.Clone()
	ownerID, projectID := s.ownerID, s.projectID
	saver := s.saver
	s.mu.Unlock()

	if saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := saver.SaveProgress(ctx, ownerID, projectID, doc, nil, time.Now()); err != nil {
		logger.LogWarn(ctx, "Final editor auto-save failed",
			"project_id", projectID.String(), "error", err.Error())
	}
}
