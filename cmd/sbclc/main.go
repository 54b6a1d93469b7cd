package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sbclc/sbclc/internal/app"
	"github.com/sbclc/sbclc/internal/auth"
	"github.com/sbclc/sbclc/internal/billing"
	"github.com/sbclc/sbclc/internal/bookings"
	"github.com/sbclc/sbclc/internal/cashadvance"
	"github.com/sbclc/sbclc/internal/masterdata/currencies"
	"github.com/sbclc/sbclc/internal/masterdata/ports"
	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/observability"
	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/db"
	"github.com/sbclc/sbclc/internal/quotations"
	"github.com/sbclc/sbclc/internal/rbac"
	"github.com/sbclc/sbclc/internal/rfp"
	"github.com/sbclc/sbclc/internal/shared"
	"github.com/sbclc/sbclc/internal/workflow"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "sbclc_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	queryCache := cache.NewQueryCache(cfg.CacheTTL)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	principalLoader := auth.NewPrincipalLoader(logger, authService)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, queryCache)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewHandler(logger, rbacService, auditLogger, rbacMiddleware)

	milestoneRepo := milestones.NewRepository(dbpool)
	milestoneService := milestones.NewService(milestoneRepo, queryCache)
	tracker := milestones.NewTracker(milestoneService, milestoneRepo)
	milestonesHandler := milestones.NewHandler(logger, milestoneService, tracker, auditLogger, rbacMiddleware)

	bookingRepo := bookings.NewRepository(dbpool)
	bookingService := bookings.NewService(logger, bookingRepo, tracker)
	bookingsHandler := bookings.NewHandler(logger, bookingService, auditLogger, rbacMiddleware)

	workflowHandler := &workflow.Handler{
		Bookings: bookingService,
		Tracker:  tracker,
		RBAC:     rbacMiddleware,
	}

	quotationRepo := quotations.NewRepository(dbpool)
	quotationService := quotations.NewService(quotationRepo)
	quotationsHandler := quotations.NewHandler(logger, quotationService, auditLogger, rbacMiddleware)

	advanceRepo := cashadvance.NewRepository(dbpool)
	advanceService := cashadvance.NewService(advanceRepo)
	advanceHandler := cashadvance.NewHandler(logger, advanceService, auditLogger, rbacMiddleware)

	rfpRepo := rfp.NewRepository(dbpool)
	rfpService := rfp.NewService(rfpRepo)
	rfpHandler := rfp.NewHandler(logger, rfpService, auditLogger, rbacMiddleware)

	billingRepo := billing.NewRepository(dbpool)
	billingService := billing.NewService(billingRepo)
	billingHandler := billing.NewHandler(logger, billingService, auditLogger, rbacMiddleware)

	portRepo := ports.NewRepository(dbpool)
	portService := ports.NewService(portRepo, queryCache)
	portsHandler := ports.NewHandler(logger, portService, rbacMiddleware)

	currencyRepo := currencies.NewRepository(dbpool)
	currencyService := currencies.NewService(currencyRepo, queryCache)
	currenciesHandler := currencies.NewHandler(logger, currencyService, rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		PrincipalLoader:    principalLoader,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		MilestonesHandler:  milestonesHandler,
		WorkflowHandler:    workflowHandler,
		BookingsHandler:    bookingsHandler,
		QuotationsHandler:  quotationsHandler,
		CashAdvanceHandler: advanceHandler,
		RFPHandler:         rfpHandler,
		BillingHandler:     billingHandler,
		PortsHandler:       portsHandler,
		CurrenciesHandler:  currenciesHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
