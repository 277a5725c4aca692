package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns project router
func (h *Handler) Routes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(identity)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/progress", h.SaveProgress)
	r.Get("/{id}/progress", h.LoadProgress)
	r.Post("/{id}/save", h.Save)

	r.Post("/{id}/pages", h.AddPage)
	r.Post("/{id}/pages/{index}/duplicate", h.DuplicatePage)
	r.Delete("/{id}/pages/{index}", h.DeletePage)

	return r
}
