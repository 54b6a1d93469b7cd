package rbac

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(ModuleAdminUsers, ActionView))
		r.Get("/roles", h.listRoles)
		r.Get("/roles/{role}/permissions", h.getPermissions)
		r.Get("/permissions/catalog", h.catalog)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(ModuleAdminUsers, ActionEdit))
		r.Put("/roles/{role}/permissions", h.putPermissions)
	})
}
