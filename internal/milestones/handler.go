package milestones

import (
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

// Handler exposes milestone master data and booking tracking endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	tracker *Tracker
	audit   *shared.AuditLogger
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tracker *Tracker, audit *shared.AuditLogger, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, tracker: tracker, audit: audit, rbac: rbacMW}
}

func (h *Handler) listDefinitions(w http.ResponseWriter, r *http.Request) {
	serviceType := ServiceType(strings.TrimSpace(r.URL.Query().Get("serviceType")))
	defs, err := h.service.List(r.Context(), serviceType)
	if err != nil {
		h.logger.Error("list milestone definitions", slog.String("service_type", string(serviceType)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]DefinitionResponse, len(defs))
	for i, def := range defs {
		out[i] = ToResponse(def)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid milestone ID")
		return
	}
	def, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToResponse(def))
}

func (h *Handler) createDefinition(w http.ResponseWriter, r *http.Request) {
	var req CreateDefinitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	def, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create milestone definition", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "milestone.create", def.ID)
	httpx.JSON(w, http.StatusCreated, ToResponse(def))
}

func (h *Handler) updateDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid milestone ID")
		return
	}
	var req UpdateDefinitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	def, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update milestone definition", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "milestone.update", def.ID)
	httpx.JSON(w, http.StatusOK, ToResponse(def))
}

func (h *Handler) deleteDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid milestone ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete milestone definition", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "milestone.delete", id)
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) listInstances(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid booking ID")
		return
	}
	instances, err := h.tracker.List(r.Context(), bookingID)
	if err != nil {
		h.logger.Error("list booking milestones", slog.Int64("booking_id", bookingID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"booking_id": bookingID,
		"progress":   Progress(instances),
		"milestones": instances,
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid instance ID")
		return
	}
	var req TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	inst, err := h.tracker.Transition(r.Context(), id, req.State, at)
	if err != nil {
		h.logger.Error("transition booking milestone", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, "milestone.transition", inst.ID)
	httpx.JSON(w, http.StatusOK, inst)
}

func (h *Handler) recordAudit(r *http.Request, action string, id int64) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil || h.audit == nil {
		return
	}
	_ = h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "milestone",
		EntityID: strconv.FormatInt(id, 10),
	})
}
