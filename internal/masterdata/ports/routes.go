package ports

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers port routes under the master setup module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionView))
		r.Get("/ports", h.list)
		r.Get("/ports/options", h.options)
		r.Get("/ports/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionCreate))
		r.Post("/ports", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionEdit))
		r.Put("/ports/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionDelete))
		r.Delete("/ports/{id}", h.delete)
	})
}
