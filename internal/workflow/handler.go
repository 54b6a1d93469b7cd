package workflow

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/platform/httpx"
	"github.com/sbclc/sbclc/internal/rbac"
)

// BookingInfo is the slice of a booking the assistant needs.
type BookingInfo struct {
	ServiceType milestones.ServiceType
	BookingDate time.Time
}

// BookingSource resolves a booking for the assistant without this package
// depending on the bookings module.
type BookingSource interface {
	BookingInfo(ctx context.Context, id int64) (BookingInfo, error)
}

type Handler struct {
	Bookings BookingSource
	Tracker  *milestones.Tracker
	RBAC     rbac.Middleware
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid booking ID")
		return
	}
	info, err := h.Bookings.BookingInfo(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	instances, err := h.Tracker.List(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Build(info.ServiceType, instances, info.BookingDate, time.Now()))
}
