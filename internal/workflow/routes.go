package workflow

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.Require(rbac.ModuleMonitoring, rbac.ActionView))
		r.Get("/bookings/{bookingID}/workflow", h.view)
	})
}
