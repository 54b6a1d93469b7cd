package cashadvance

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/platform/httpx"
	"github.com/sbclc/sbclc/internal/rbac"
	"github.com/sbclc/sbclc/internal/shared"
)

// Handler exposes cash advance endpoints.
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
	var req CreateAdvanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	ca, err := h.service.Create(r.Context(), req, principal.ID)
	if err != nil {
		h.logger.Error("create cash advance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "cash_advance.create", ca.ID)
	httpx.JSON(w, http.StatusCreated, ca)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid cash advance ID")
		return
	}
	ca, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ca)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	filter := ListFilter{
		Status:   Status(strings.TrimSpace(q.Get("status"))),
		Category: Category(strings.TrimSpace(q.Get("category"))),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}
	if raw := q.Get("requestedBy"); raw != "" {
		filter.RequestedBy, _ = strconv.ParseInt(raw, 10, 64)
	}
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list cash advances", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []CashAdvance{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "cash_advance.approve", func(id, actor int64) (CashAdvance, error) {
		return h.service.Approve(r.Context(), id, actor)
	})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.decide(w, r, "cash_advance.reject", func(id, actor int64) (CashAdvance, error) {
		return h.service.Reject(r.Context(), id, actor, req.Reason)
	})
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "cash_advance.release", func(id, actor int64) (CashAdvance, error) {
		return h.service.Release(r.Context(), id, actor)
	})
}

func (h *Handler) liquidate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid cash advance ID")
		return
	}
	var req LiquidateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	result, err := h.service.Liquidate(r.Context(), id, req)
	if err != nil {
		h.logger.Error("liquidate cash advance", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "cash_advance.liquidate", id)
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string, fn func(id, actor int64) (CashAdvance, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid cash advance ID")
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	ca, err := fn(id, principal.ID)
	if err != nil {
		h.logger.Error(action, slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, action, id)
	httpx.JSON(w, http.StatusOK, ca)
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil || h.audit == nil {
		return
	}
	_ = h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "cash_advance",
		EntityID: strconv.FormatInt(id, 10),
	})
}
