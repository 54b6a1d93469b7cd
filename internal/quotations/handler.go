package quotations

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/platform/httpx"
	"github.com/sbclc/sbclc/internal/rbac"
	"github.com/sbclc/sbclc/internal/shared"
)

// Handler exposes quotation endpoints.
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
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	q, err := h.service.Create(r.Context(), req, principal.ID)
	if err != nil {
		h.logger.Error("create quotation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "quotation.create", q.ID)
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation ID")
		return
	}
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, page, perPage := parseListQuery(r)
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list quotations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Quotation{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation ID")
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	q, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update quotation", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "quotation.update", id)
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "quotation.submit", func(id, _ int64) (Quotation, error) {
		return h.service.Submit(r.Context(), id)
	})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "quotation.approve", func(id, actor int64) (Quotation, error) {
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
	h.decide(w, r, "quotation.reject", func(id, actor int64) (Quotation, error) {
		return h.service.Reject(r.Context(), id, actor, req.Reason)
	})
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string, fn func(id, actor int64) (Quotation, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation ID")
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	q, err := fn(id, principal.ID)
	if err != nil {
		h.logger.Error(action, slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, action, id)
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter, _, _ := parseListQuery(r)
	filter.Limit = 10000
	filter.Offset = 0
	items, _, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("export quotations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=quotations-%s.csv", time.Now().Format("20060102")))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"doc_number", "customer", "service_type", "origin", "destination", "currency", "total", "status", "quote_date", "valid_until"})
	for _, q := range items {
		_ = cw.Write([]string{
			q.DocNumber,
			q.CustomerName,
			string(q.ServiceType),
			q.OriginPort,
			q.DestPort,
			q.Currency,
			strconv.FormatFloat(q.TotalAmount, 'f', 2, 64),
			string(q.Status),
			q.QuoteDate.Format("2006-01-02"),
			q.ValidUntil.Format("2006-01-02"),
		})
	}
	cw.Flush()
}

func parseListQuery(r *http.Request) (ListFilter, int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	return ListFilter{
		Status: Status(strings.TrimSpace(q.Get("status"))),
		Search: strings.TrimSpace(q.Get("q")),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}, page, perPage
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil || h.audit == nil {
		return
	}
	_ = h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "quotation",
		EntityID: strconv.FormatInt(id, 10),
	})
}
