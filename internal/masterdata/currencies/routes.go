package currencies

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionView))
		r.Get("/currencies", h.list)
		r.Get("/currencies/options", h.options)
		r.Get("/currencies/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionCreate))
		r.Post("/currencies", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionEdit))
		r.Put("/currencies/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionDelete))
		r.Delete("/currencies/{id}", h.delete)
	})
}
