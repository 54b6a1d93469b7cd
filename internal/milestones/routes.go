package milestones

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers milestone routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionView))
		r.Get("/milestones", h.listDefinitions)
		r.Get("/milestones/{id}", h.getDefinition)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionCreate))
		r.Post("/milestones", h.createDefinition)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionEdit))
		r.Put("/milestones/{id}", h.updateDefinition)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMasterSetup, rbac.ActionDelete))
		r.Delete("/milestones/{id}", h.deleteDefinition)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMonitoring, rbac.ActionView))
		r.Get("/bookings/{bookingID}/milestones", h.listInstances)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMonitoring, rbac.ActionEdit))
		r.Post("/booking-milestones/{id}/transition", h.transition)
	})
}
