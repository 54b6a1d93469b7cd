package bookings

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/platform/httpx"
	"github.com/sbclc/sbclc/internal/rbac"
	"github.com/sbclc/sbclc/internal/shared"
)

// Handler exposes booking intake and monitoring endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditLogger
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, audit: audit, rbac: rbacMW}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	booking, err := h.service.Create(r.Context(), req, principal.ID)
	if err != nil {
		h.logger.Error("create booking", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "booking.create", booking.ID)
	httpx.JSON(w, http.StatusCreated, booking)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid booking ID")
		return
	}
	booking, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, booking)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, page, perPage, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list bookings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Booking{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid booking ID")
		return
	}
	var req UpdateBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	booking, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update booking", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "booking.update", id)
	httpx.JSON(w, http.StatusOK, booking)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid booking ID")
		return
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	booking, err := h.service.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		h.logger.Error("set booking status", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "booking.status", id)
	httpx.JSON(w, http.StatusOK, booking)
}

func parseFilter(r *http.Request) (ListFilter, int, int, error) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:      Status(strings.TrimSpace(q.Get("status"))),
		ServiceType: milestones.ServiceType(strings.TrimSpace(q.Get("serviceType"))),
		Search:      strings.TrimSpace(q.Get("q")),
	}
	for key, dst := range map[string]*time.Time{"dateFrom": &filter.DateFrom, "dateTo": &filter.DateTo} {
		if raw := q.Get(key); raw != "" {
			ts, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return ListFilter{}, 0, 0, httpx.ErrValidation
			}
			*dst = ts
		}
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage
	return filter, page, perPage, nil
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil || h.audit == nil {
		return
	}
	_ = h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "booking",
		EntityID: strconv.FormatInt(id, 10),
	})
}
