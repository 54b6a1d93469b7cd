package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sbclc/sbclc/internal/platform/httpx"
	"github.com/sbclc/sbclc/internal/shared"
)

// Handler exposes the permission matrix endpoints consumed by the admin UI.
type Handler struct {
	logger  *slog.Logger
	service *Service
	audit   *shared.AuditLogger
	rbac    Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger, rbac Middleware) *Handler {
	return &Handler{logger: logger, service: service, audit: audit, rbac: rbac}
}

type permissionsResponse struct {
	Role         string              `json:"role"`
	Version      int64               `json:"version"`
	Permissions  map[string][]string `json:"permissions"`
	AccessLevels map[string]string   `json:"access_levels"`
}

type replacePermissionsRequest struct {
	Permissions map[string][]string `json:"permissions"`
	Version     int64               `json:"version"`
}

type catalogModule struct {
	Module  string   `json:"module"`
	Actions []string `json:"actions"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(chi.URLParam(r, "role"))
	perms, err := h.service.Get(r.Context(), role)
	if err != nil {
		h.logger.Error("get permissions", slog.String("role", role), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPermissionsResponse(perms))
}

func (h *Handler) putPermissions(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(chi.URLParam(r, "role"))
	var req replacePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	grants := make(map[ModuleID][]Action, len(req.Permissions))
	for module, actions := range req.Permissions {
		id := ModuleID(module)
		if !KnownModule(id) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown module "+module)
			return
		}
		converted := make([]Action, 0, len(actions))
		for _, action := range actions {
			a := Action(action)
			if !KnownAction(a) {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown action "+action)
				return
			}
			converted = append(converted, a)
		}
		grants[id] = converted
	}

	// NewMatrix silently drops grants for non-applicable actions; they are
	// meaningless and must neither persist nor fail the whole save.
	saved, err := h.service.Replace(r.Context(), role, NewMatrix(grants), req.Version)
	if err != nil {
		h.logger.Error("replace permissions", slog.String("role", role), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if principal := shared.PrincipalFromContext(r.Context()); principal != nil && h.audit != nil {
		_ = h.audit.Record(r.Context(), shared.AuditLog{
			ActorID:  principal.ID,
			Action:   "permissions.replace",
			Entity:   "role",
			EntityID: saved.Role,
			Meta:     map[string]any{"version": saved.Version},
		})
	}

	httpx.JSON(w, http.StatusOK, toPermissionsResponse(saved))
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	modules := make([]catalogModule, 0, len(moduleCatalog))
	for _, module := range Modules() {
		actions := ApplicableActions(module)
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		modules = append(modules, catalogModule{Module: string(module), Actions: names})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"modules": modules})
}

func toPermissionsResponse(perms RolePermissions) permissionsResponse {
	grants := make(map[string][]string)
	for module, actions := range perms.Matrix.GrantMap() {
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		grants[string(module)] = names
	}
	levels := make(map[string]string, len(moduleCatalog))
	for _, module := range Modules() {
		levels[string(module)] = string(perms.Matrix.AccessLevel(module))
	}
	return permissionsResponse{
		Role:         perms.Role,
		Version:      perms.Version,
		Permissions:  grants,
		AccessLevels: levels,
	}
}
