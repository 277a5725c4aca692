package asset

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bananalab/canvas-api/internal/middleware"
	"github.com/bananalab/canvas-api/internal/pkg/response"
)

// Handler handles asset HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates asset handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /projects/{id}/images
// @Summary Upload an image into a project
// @Tags Asset
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID"
// @Param file formData file true "Image file"
// @Success 201 {object} response.Response{data=Asset}
// @Failure 400,413,422,500 {object} response.Response
// @Router /projects/{id}/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	userID := middleware.GetUserID(r.Context())
	a, err := h.service.Upload(r.Context(), userID, projectID, file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, a)
}

// List handles GET /projects/{id}/images
// @Summary List a project's images
// @Tags Asset
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Response{data=[]Asset}
// @Failure 400,500 {object} response.Response
// @Router /projects/{id}/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	assets, err := h.service.ListByProject(r.Context(), projectID)
	if err != nil {
		response.InternalError(w)
		return
	}
	if assets == nil {
		assets = []*Asset{}
	}
	response.OK(w, assets)
}

// Cleanup handles POST /projects/{id}/images/cleanup
// @Summary Delete images no longer used by the design
// @Tags Asset
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Response
// @Failure 400,403,404,500 {object} response.Response
// @Router /projects/{id}/images/cleanup [post]
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	removed, err := h.service.CleanupUnused(r.Context(), userID, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, map[string]int{"removed": removed})
}

// Delete handles DELETE /images/{id}
// @Summary Delete an image
// @Tags Asset
// @Param id path string true "Asset ID"
// @Success 204
// @Failure 400,403,404,500 {object} response.Response
// @Router /images/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid asset ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, assetID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// ProjectRoutes returns the project-scoped asset routes, mounted under
// /projects/{id}.
func (h *Handler) ProjectRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Get("/", h.List)
	r.Post("/cleanup", h.Cleanup)
	return r
}

// Routes returns the standalone asset routes
func (h *Handler) Routes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAssetNotFound):
		response.NotFound(w, "Asset not found")
	case errors.Is(err, ErrNotAssetOwner):
		response.Forbidden(w, "You do not own this asset")
	case errors.Is(err, ErrFileTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit")
	case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrInvalidDataURI):
		response.Error(w, http.StatusUnprocessableEntity, "UNSUPPORTED_IMAGE", "Could not decode image")
	default:
		log.Error().Err(err).Msg("asset handler error")
		response.InternalError(w)
	}
}
