package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sbclc/sbclc/internal/auth"
	"github.com/sbclc/sbclc/internal/billing"
	"github.com/sbclc/sbclc/internal/bookings"
	"github.com/sbclc/sbclc/internal/cashadvance"
	"github.com/sbclc/sbclc/internal/masterdata/currencies"
	"github.com/sbclc/sbclc/internal/masterdata/ports"
	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/observability"
	"github.com/sbclc/sbclc/internal/quotations"
	"github.com/sbclc/sbclc/internal/rbac"
	"github.com/sbclc/sbclc/internal/rfp"
	"github.com/sbclc/sbclc/internal/shared"
	"github.com/sbclc/sbclc/internal/workflow"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	PrincipalLoader *auth.PrincipalLoader

	AuthHandler        *auth.Handler
	PermissionsHandler *rbac.Handler
	MilestonesHandler  *milestones.Handler
	WorkflowHandler    *workflow.Handler
	BookingsHandler    *bookings.Handler
	QuotationsHandler  *quotations.Handler
	CashAdvanceHandler *cashadvance.Handler
	RFPHandler         *rfp.Handler
	BillingHandler     *billing.Handler
	PortsHandler       *ports.Handler
	CurrenciesHandler  *currencies.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with SBCLC defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	if params.PrincipalLoader != nil {
		r.Use(params.PrincipalLoader.Middleware)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Token bootstrap for cookie clients: a fresh session fetches its
		// CSRF token here before the first mutating request.
		r.Get("/auth/csrf", func(w http.ResponseWriter, req *http.Request) {
			sess := shared.SessionFromContext(req.Context())
			token, err := params.CSRFManager.EnsureToken(req.Context(), sess)
			if err != nil {
				params.Logger.Error("issue csrf token", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"csrf_token":"` + token + `"}`))
		})

		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}
		if params.MilestonesHandler != nil {
			params.MilestonesHandler.MountRoutes(r)
		}
		if params.BookingsHandler != nil {
			params.BookingsHandler.MountRoutes(r)
		}
		if params.WorkflowHandler != nil {
			params.WorkflowHandler.MountRoutes(r)
		}
		if params.QuotationsHandler != nil {
			params.QuotationsHandler.MountRoutes(r)
		}
		if params.CashAdvanceHandler != nil {
			params.CashAdvanceHandler.MountRoutes(r)
		}
		if params.RFPHandler != nil {
			params.RFPHandler.MountRoutes(r)
		}
		if params.BillingHandler != nil {
			params.BillingHandler.MountRoutes(r)
		}
		if params.PortsHandler != nil {
			params.PortsHandler.MountRoutes(r)
		}
		if params.CurrenciesHandler != nil {
			params.CurrenciesHandler.MountRoutes(r)
		}
	})

	return r
}
