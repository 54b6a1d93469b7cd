package quotations

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers quotation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleQuotations, rbac.ActionView))
		r.Get("/quotations", h.list)
		r.Get("/quotations/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleQuotations, rbac.ActionCreate))
		r.Post("/quotations", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleQuotations, rbac.ActionEdit))
		r.Put("/quotations/{id}", h.update)
		r.Post("/quotations/{id}/submit", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleQuotations, rbac.ActionApprove))
		r.Post("/quotations/{id}/approve", h.approve)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleQuotations, rbac.ActionReject))
		r.Post("/quotations/{id}/reject", h.reject)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleQuotations, rbac.ActionExport))
		r.Get("/quotations/export", h.exportCSV)
	})
}
