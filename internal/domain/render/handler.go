package render

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bananalab/canvas-api/internal/domain/project"
	"github.com/bananalab/canvas-api/internal/middleware"
	"github.com/bananalab/canvas-api/internal/pkg/response"
)

// Handler handles export HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates render handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Export handles POST /projects/{id}/export
// @Summary Render the project to PDF synchronously
// @Tags Export
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Response{data=ExportResult}
// @Failure 400,403,404,422,500 {object} response.Response
// @Router /projects/{id}/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.service.Export(r.Context(), userID, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OKWithWarnings(w, result, result.Warnings)
}

// ExportAsync handles POST /projects/{id}/export/async
// @Summary Queue a PDF export for the render worker
// @Tags Export
// @Produce json
// @Param id path string true "Project ID"
// @Success 202 {object} response.Response{data=ExportJob}
// @Failure 400,403,404,500 {object} response.Response
// @Router /projects/{id}/export/async [post]
func (h *Handler) ExportAsync(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	job, err := h.service.EnqueueExport(r.Context(), userID, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /projects/{id}/export/{jobID}
// @Summary Get export job status
// @Tags Export
// @Produce json
// @Param id path string true "Project ID"
// @Param jobID path string true "Job ID"
// @Success 200 {object} response.Response{data=ExportJob}
// @Failure 400,403,404,500 {object} response.Response
// @Router /projects/{id}/export/{jobID} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.BadRequest(w, "Invalid job ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	job, err := h.service.GetJob(r.Context(), userID, jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, job)
}

// ProjectRoutes returns the project-scoped export routes, mounted under
// /projects/{id}.
func (h *Handler) ProjectRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Export)
	r.Post("/async", h.ExportAsync)
	r.Get("/{jobID}", h.GetJob)
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
	case errors.Is(err, project.ErrProjectNotFound):
		response.NotFound(w, "Project not found")
	case errors.Is(err, project.ErrNotProjectOwner):
		response.Forbidden(w, "You do not own this project")
	case errors.Is(err, ErrEmptyProject):
		response.Error(w, http.StatusUnprocessableEntity, "EMPTY_PROJECT", "Save the project before exporting")
	case errors.Is(err, ErrJobNotFound):
		response.NotFound(w, "Export job not found")
	case errors.Is(err, ErrNotJobOwner):
		response.Forbidden(w, "You do not own this export job")
	default:
		log.Error().Err(err).Msg("export handler error")
		response.InternalError(w)
	}
}
