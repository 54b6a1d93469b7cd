package bookings

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers booking routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBookings, rbac.ActionView))
		r.Get("/bookings", h.list)
		r.Get("/bookings/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBookings, rbac.ActionCreate))
		r.Post("/bookings", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBookings, rbac.ActionEdit))
		r.Put("/bookings/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMonitoring, rbac.ActionView))
		r.Get("/monitoring/bookings", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleMonitoring, rbac.ActionEdit))
		r.Post("/bookings/{id}/status", h.setStatus)
	})
}
