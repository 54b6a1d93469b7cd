package rbac

import (
	"log/slog"
	"net/http"

	"github.com/sbclc/sbclc/internal/shared"
)

// Middleware wires permission checks into HTTP route groups.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require ensures the current principal's role is granted module/action.
// Unauthenticated requests get 401; denied and not-applicable both get 403.
func (m Middleware) Require(module ModuleID, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			decision, err := m.Service.Check(r.Context(), principal.Role, module, action)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac check", slog.String("role", principal.Role), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if decision != DecisionGranted {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny passes when the role is granted at least one of the listed
// module/action pairs.
func (m Middleware) RequireAny(pairs ...Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			for _, req := range pairs {
				decision, err := m.Service.Check(r.Context(), principal.Role, req.Module, req.Action)
				if err != nil {
					if m.Logger != nil {
						m.Logger.Error("rbac check", slog.String("role", principal.Role), slog.Any("error", err))
					}
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				if decision == DecisionGranted {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// Requirement names one module/action pair for RequireAny.
type Requirement struct {
	Module ModuleID
	Action Action
}
