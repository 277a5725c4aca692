// Package registry exposes the static design vocabularies over HTTP: the
// layout template catalog, the mask shapes and the color filter presets.
// Everything here is read-only and compiled into the binary.
package registry

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bananalab/canvas-api/internal/catalog"
	"github.com/bananalab/canvas-api/internal/masks"
	"github.com/bananalab/canvas-api/internal/pkg/response"
)

// Handler handles registry HTTP requests
type Handler struct{}

// NewHandler creates registry handler
func NewHandler() *Handler {
	return &Handler{}
}

// Layouts handles GET /layouts
// @Summary List layout templates
// @Tags Registry
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Response
// @Router /layouts [get]
func (h *Handler) Layouts(w http.ResponseWriter, r *http.Request) {
	if c := r.URL.Query().Get("category"); c != "" {
		response.OK(w, catalog.ListByCategory(catalog.Category(c)))
		return
	}
	response.OK(w, catalog.List())
}

// Masks handles GET /masks
// @Summary List mask shapes
// @Tags Registry
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Response
// @Router /masks [get]
func (h *Handler) Masks(w http.ResponseWriter, r *http.Request) {
	if c := r.URL.Query().Get("category"); c != "" {
		ids := masks.MasksInCategory(c)
		out := make([]masks.Shape, 0, len(ids))
		for _, id := range ids {
			out = append(out, masks.ResolveMask(id))
		}
		response.OK(w, out)
		return
	}
	response.OK(w, masks.ListMasks())
}

// Filters handles GET /filters
// @Summary List color filter presets
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Response
// @Router /filters [get]
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	response.OK(w, masks.ListFilters())
}

// Routes returns registry router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/layouts", h.Layouts)
	r.Get("/masks", h.Masks)
	r.Get("/filters", h.Filters)
	return r
}
