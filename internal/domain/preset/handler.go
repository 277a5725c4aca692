package preset

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bananalab/canvas-api/internal/pkg/response"
)

// Handler handles preset HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates preset handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /presets
// @Summary List active product presets
// @Tags Preset
// @Produce json
// @Param product_type query string false "Filter by product type"
// @Success 200 {object} response.Response{data=[]Preset}
// @Failure 500 {object} response.Response
// @Router /presets [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	productType := ProductType(r.URL.Query().Get("product_type"))

	presets, err := h.service.List(r.Context(), productType)
	if err != nil {
		response.InternalError(w)
		return
	}
	if presets == nil {
		presets = []*Preset{}
	}
	response.OK(w, presets)
}

// GetByID handles GET /presets/{id}
// @Summary Get a preset by ID
// @Tags Preset
// @Produce json
// @Param id path string true "Preset ID"
// @Success 200 {object} response.Response{data=Preset}
// @Failure 400,404,500 {object} response.Response
// @Router /presets/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid preset ID")
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPresetNotFound) {
			response.NotFound(w, "Preset not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Routes returns preset router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	return r
}
