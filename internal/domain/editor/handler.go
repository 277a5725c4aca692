package editor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/middleware"
	"github.com/bananalab/canvas-api/internal/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024 // design documents ride along in messages
)

// ProjectGateway loads editor state. Implemented by the project service.
type ProjectGateway interface {
	Get(ctx context.Context, ownerID, projectID uuid.UUID) (*project.Project, error)
	LoadProgress(ctx context.Context, ownerID, projectID uuid.UUID) (*project.Document, []string, error)
}

// Handler handles editor websocket connections
type Handler struct {
	projects ProjectGateway
	saver    Saver
	upgrader websocket.Upgrader
}

// NewHandler creates editor handler
func NewHandler(projects ProjectGateway, saver Saver, allowedOrigins []string) *Handler {
	return &Handler{
		projects: projects,
		saver:    saver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// command is one editor operation sent by the client.
type command struct {
	Type string `json:"type"`

	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Zoom float64 `json:"zoom,omitempty"`
	Page int     `json:"page,omitempty"`

	CellIndex int                   `json:"cellIndex,omitempty"`
	ElementID string                `json:"elementId,omitempty"`
	Element   *project.Element      `json:"element,omitempty"`
	Patch     *project.ElementPatch `json:"patch,omitempty"`
}

// reply is the server's answer to a command.
type reply struct {
	Type  string `json:"type"` // state | error
	State *State `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}

// Connect handles GET /projects/{id}/editor/ws
// @Summary Open an editing session over websocket
// @Tags Editor
// @Param id path string true "Project ID"
// @Success 101
// @Failure 400,403,404 {object} response.Response
// @Router /projects/{id}/editor/ws [get]
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}
	userID := middleware.GetUserID(r.Context())

	p, err := h.projects.Get(r.Context(), userID, projectID)
	if err != nil {
		response.NotFound(w, "Project not found")
		return
	}
	doc, _, err := h.projects.LoadProgress(r.Context(), userID, projectID)
	if err != nil {
		response.InternalError(w)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := NewSession(userID, projectID, p.Preset, doc, h.saver)
	go h.serve(conn, session)
}

// serve runs the session loop: one reader goroutine dispatching commands,
// one writer goroutine draining replies and pings.
func (h *Handler) serve(conn *websocket.Conn, session *Session) {
	out := make(chan reply, 16)
	done := make(chan struct{})

	go h.writePump(conn, out, done)

	defer func() {
		session.Close()
		close(done)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Initial state so the client can draw immediately.
	state := session.State()
	out <- reply{Type: "state", State: &state}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("editor websocket closed unexpectedly")
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			out <- reply{Type: "error", Error: "invalid message"}
			continue
		}
		out <- h.dispatch(session, cmd)
	}
}

func (h *Handler) dispatch(session *Session, cmd command) reply {
	var (
		state State
		err   error
	)

	switch cmd.Type {
	case "pointer_down":
		state = session.PointerDown(cmd.X, cmd.Y)
	case "pointer_move":
		state = session.PointerMove(cmd.X, cmd.Y)
	case "pointer_up":
		state = session.PointerUp()
	case "zoom":
		state = session.SetZoom(cmd.Zoom)
	case "select_page":
		state, err = session.SelectPage(cmd.Page)
	case "add_element":
		if cmd.Element == nil {
			return reply{Type: "error", Error: "missing element"}
		}
		state, err = session.AddElement(cmd.CellIndex, *cmd.Element)
	case "update_element":
		if cmd.Patch == nil {
			return reply{Type: "error", Error: "missing patch"}
		}
		state, err = session.UpdateElement(cmd.ElementID, *cmd.Patch)
	case "delete_element":
		state, err = session.DeleteElement(cmd.ElementID)
	case "duplicate_element":
		state, err = session.DuplicateElement(cmd.ElementID)
	default:
		return reply{Type: "error", Error: "unknown command " + cmd.Type}
	}

	if err != nil {
		return reply{Type: "error", Error: err.Error()}
	}
	return reply{Type: "state", State: &state}
}

func (h *Handler) writePump(conn *websocket.Conn, out <-chan reply, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	// Closing the conn on writer exit errors the read loop out, so a dead
	// writer tears down the whole session instead of leaving the reader
	// blocked on a full out channel.
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Routes returns editor router, mounted under /projects/{id}/editor.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", h.Connect)
	return r
}
