package billing

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers billing and collection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBilling, rbac.ActionView))
		r.Get("/invoices", h.list)
		r.Get("/invoices/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBilling, rbac.ActionCreate))
		r.Post("/invoices", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBilling, rbac.ActionEdit))
		r.Post("/invoices/{id}/bill", h.bill)
		r.Post("/invoices/{id}/payments", h.applyPayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleBilling, rbac.ActionExport))
		r.Get("/invoices/export", h.exportCSV)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCollectionMonitoring, rbac.ActionView))
		r.Get("/collections/aging", h.aging)
		r.Get("/collections/outstanding", h.outstanding)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCollectionMonitoring, rbac.ActionExport))
		r.Get("/collections/outstanding/export", h.exportOutstandingCSV)
	})
}
