package cashadvance

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers cash advance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionView))
		r.Get("/cash-advances", h.list)
		r.Get("/cash-advances/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionCreate))
		r.Post("/cash-advances", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionApprove))
		r.Post("/cash-advances/{id}/approve", h.approve)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionReject))
		r.Post("/cash-advances/{id}/reject", h.reject)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionDisburse))
		r.Post("/cash-advances/{id}/release", h.release)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionEdit))
		r.Post("/cash-advances/{id}/liquidate", h.liquidate)
	})
}
