package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bananalab/canvas-api/internal/middleware"
	"github.com/bananalab/canvas-api/internal/pkg/response"
	"github.com/bananalab/canvas-api/internal/pkg/validator"
)

// Handler handles project HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates project handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /projects
// @Summary Create a project from a preset
// @Tags Project
// @Accept json
// @Produce json
// @Param request body CreateProjectRequest true "Project data"
// @Success 201 {object} response.Response{data=ProjectDetailResponse}
// @Failure 400,404,422,500 {object} response.Response
// @Router /projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	p, err := h.service.Create(r.Context(), userID, req.PresetID, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, _ := p.Document()
	response.Created(w, ProjectDetailFromEntity(p, doc))
}

// List handles GET /projects
// @Summary List the user's projects
// @Tags Project
// @Produce json
// @Success 200 {object} response.Response{data=[]ProjectResponse}
// @Failure 500 {object} response.Response
// @Router /projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	projects, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectResponseFromEntity(p))
	}
	response.OK(w, out)
}

// GetByID handles GET /projects/{id}
// @Summary Get project with its saved document
// @Tags Project
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Response{data=ProjectDetailResponse}
// @Failure 400,403,404,500 {object} response.Response
// @Router /projects/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	p, err := h.service.Get(r.Context(), userID, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := p.Document()
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, ProjectDetailFromEntity(p, doc))
}

// Update handles PATCH /projects/{id}
// @Summary Rename a project or change its status
// @Tags Project
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body UpdateProjectRequest true "Fields to change"
// @Success 200 {object} response.Response{data=ProjectResponse}
// @Failure 400,403,404,422,500 {object} response.Response
// @Router /projects/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	p, err := h.service.UpdateMeta(r.Context(), userID, projectID, req.Name, Status(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ProjectResponseFromEntity(p))
}

// Delete handles DELETE /projects/{id}
// @Summary Delete a project
// @Tags Project
// @Param id path string true "Project ID"
// @Success 204
// @Failure 400,403,404,409,500 {object} response.Response
// @Router /projects/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, projectID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// SaveProgress handles PUT /projects/{id}/progress
// @Summary Auto-save the editor state
// @Tags Project
// @Accept json
// @Param id path string true "Project ID"
// @Param request body SaveProgressRequest true "Snapshot"
// @Success 204
// @Failure 400,403,404,422,500 {object} response.Response
// @Router /projects/{id}/progress [post]
func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	doc, err := DecodeDocument(req.Document)
	if err != nil {
		response.BadRequest(w, "Invalid document")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.SaveProgress(r.Context(), userID, projectID, doc, req.Thumbnails, req.Timestamp); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// LoadProgress handles GET /projects/{id}/progress
// @Summary Load the most recent editor state
// @Tags Project
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Response{data=ProgressResponse}
// @Failure 400,403,404,500 {object} response.Response
// @Router /projects/{id}/progress [get]
func (h *Handler) LoadProgress(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	doc, thumbs, err := h.service.LoadProgress(r.Context(), userID, projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ProgressResponse{Document: doc, Thumbnails: thumbs})
}

// Save handles POST /projects/{id}/save
// @Summary Authoritative save with image materialization
// @Tags Project
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body SaveRequest true "Document"
// @Success 200 {object} response.Response{data=SaveResult}
// @Failure 400,403,404,409,422,500 {object} response.Response
// @Router /projects/{id}/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	doc, err := DecodeDocument(req.Document)
	if err != nil {
		response.BadRequest(w, "Invalid document")
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.service.Save(r.Context(), userID, projectID, doc, req.Thumbnails)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

// AddPage handles POST /projects/{id}/pages
// @Summary Insert an empty page
// @Tags Project
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body AddPageRequest true "Insert position"
// @Success 200 {object} response.Response{data=Document}
// @Failure 400,403,404,409,500 {object} response.Response
// @Router /projects/{id}/pages [post]
func (h *Handler) AddPage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req AddPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	userID := middleware.GetUserID(r.Context())
	doc, err := h.service.AddPage(r.Context(), userID, projectID, req.AfterIndex)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, doc)
}

// DuplicatePage handles POST /projects/{id}/pages/{index}/duplicate
// @Summary Duplicate a page
// @Tags Project
// @Produce json
// @Param id path string true "Project ID"
// @Param index path int true "Page index"
// @Success 200 {object} response.Response{data=Document}
// @Failure 400,403,404,409,500 {object} response.Response
// @Router /projects/{id}/pages/{index}/duplicate [post]
func (h *Handler) DuplicatePage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, "Invalid page index")
		return
	}

	userID := middleware.GetUserID(r.Context())
	doc, err := h.service.DuplicatePage(r.Context(), userID, projectID, index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, doc)
}

// DeletePage handles DELETE /projects/{id}/pages/{index}
// @Summary Delete a page
// @Tags Project
// @Produce json
// @Param id path string true "Project ID"
// @Param index path int true "Page index"
// @Success 200 {object} response.Response{data=Document}
// @Failure 400,403,404,409,500 {object} response.Response
// @Router /projects/{id}/pages/{index} [delete]
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, "Invalid page index")
		return
	}

	userID := middleware.GetUserID(r.Context())
	doc, err := h.service.DeletePage(r.Context(), userID, projectID, index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, doc)
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
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", "Document validation failed",
			map[string]string{vErr.Field: vErr.Message})
		return
	}

	switch {
	case errors.Is(err, ErrProjectNotFound):
		response.NotFound(w, "Project not found")
	case errors.Is(err, ErrPresetNotFound):
		response.NotFound(w, "Preset not found")
	case errors.Is(err, ErrPresetInactive):
		response.Error(w, http.StatusUnprocessableEntity, "PRESET_INACTIVE", "This preset is no longer available")
	case errors.Is(err, ErrNotProjectOwner):
		response.Forbidden(w, "You do not own this project")
	case errors.Is(err, ErrProjectOrdered):
		response.Conflict(w, "Project is attached to an order")
	case errors.Is(err, ErrSaveInProgress):
		response.Conflict(w, "A save is already in progress")
	case errors.Is(err, ErrLastPage):
		response.Conflict(w, "Cannot delete the last page")
	case errors.Is(err, ErrPageLimitExceeded):
		response.Conflict(w, "Page limit reached for this product")
	case errors.Is(err, ErrPageNotFound):
		response.NotFound(w, "Page not found")
	case errors.Is(err, ErrCellNotFound):
		response.NotFound(w, "Cell not found")
	case errors.Is(err, ErrElementNotFound):
		response.NotFound(w, "Element not found")
	case errors.Is(err, ErrDuplicateElement):
		response.Conflict(w, "Element ID already exists")
	default:
		log.Error().Err(err).Msg("project handler error")
		response.InternalError(w)
	}
}
