package rfp

import (
	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/rbac"
)

// MountRoutes registers rfp routes. Payment requests live under the cash
// advance permission module; disbursement needs its dedicated action.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionView))
		r.Get("/rfps", h.list)
		r.Get("/rfps/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionCreate))
		r.Post("/rfps", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionEdit))
		r.Put("/rfps/{id}", h.update)
		r.Post("/rfps/{id}/submit", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionApprove))
		r.Post("/rfps/{id}/approve", h.approve)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionReject))
		r.Post("/rfps/{id}/reject", h.reject)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCashAdvance, rbac.ActionDisburse))
		r.Post("/rfps/{id}/disburse", h.disburse)
	})
}
