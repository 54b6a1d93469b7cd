package billing

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

// Handler exposes invoicing and collection monitoring endpoints.
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
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	inv, err := h.service.Create(r.Context(), req, principal.ID)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "invoice.create", inv.ID)
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice ID")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, page, perPage := parseListQuery(r)
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) bill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice ID")
		return
	}
	inv, err := h.service.Bill(r.Context(), id)
	if err != nil {
		h.logger.Error("bill invoice", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "invoice.bill", id)
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice ID")
		return
	}
	var req PaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	inv, err := h.service.ApplyPayment(r.Context(), id, req)
	if err != nil {
		h.logger.Error("apply payment", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "invoice.payment", id)
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "asOf must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	bucket, err := h.service.Aging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("aging report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"as_of":   asOf.Format("2006-01-02"),
		"buckets": bucket,
		"total":   bucket.Total(),
	})
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Outstanding(r.Context())
	if err != nil {
		h.logger.Error("outstanding invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter, _, _ := parseListQuery(r)
	filter.Limit = 10000
	filter.Offset = 0
	items, _, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("export invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeInvoiceCSV(w, "invoices", items)
}

func (h *Handler) exportOutstandingCSV(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Outstanding(r.Context())
	if err != nil {
		h.logger.Error("export outstanding", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeInvoiceCSV(w, "outstanding", items)
}

func writeInvoiceCSV(w http.ResponseWriter, name string, items []Invoice) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.csv", name, time.Now().Format("20060102")))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"doc_number", "customer", "currency", "total", "paid", "outstanding", "status", "invoice_date", "due_date"})
	for _, inv := range items {
		_ = cw.Write([]string{
			inv.DocNumber,
			inv.CustomerName,
			inv.Currency,
			FormatMoney(inv.TotalAmount),
			FormatMoney(inv.AmountPaid),
			FormatMoney(inv.Outstanding()),
			string(inv.Status),
			inv.InvoiceDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
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
		Status: InvoiceStatus(strings.TrimSpace(q.Get("status"))),
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
		Entity:   "invoice",
		EntityID: strconv.FormatInt(id, 10),
	})
}
