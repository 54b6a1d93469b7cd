package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/shared"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestAs(role string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	if role == "" {
		return req
	}
	ctx := shared.ContextWithPrincipal(context.Background(), &shared.Principal{ID: 7, Role: role})
	return req.WithContext(ctx)
}

func TestRequireGranted(t *testing.T) {
	repo := newMemoryRBACRepo()
	svc := newTestService(repo)
	_, err := svc.Replace(context.Background(), "ops", NewMatrix(map[ModuleID][]Action{ModuleBookings: {ActionView}}), 0)
	require.NoError(t, err)

	mw := Middleware{Service: svc}
	handler := mw.Require(ModuleBookings, ActionView)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("ops"))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireDenied(t *testing.T) {
	svc := newTestService(newMemoryRBACRepo())
	mw := Middleware{Service: svc}
	handler := mw.Require(ModuleBookings, ActionDelete)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("ops"))
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireUnauthenticated(t *testing.T) {
	svc := newTestService(newMemoryRBACRepo())
	mw := Middleware{Service: svc}
	handler := mw.Require(ModuleBookings, ActionView)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs(""))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAny(t *testing.T) {
	repo := newMemoryRBACRepo()
	svc := newTestService(repo)
	_, err := svc.Replace(context.Background(), "viewer", NewMatrix(map[ModuleID][]Action{ModuleMonitoring: {ActionView}}), 0)
	require.NoError(t, err)

	mw := Middleware{Service: svc}
	handler := mw.RequireAny(
		Requirement{Module: ModuleBookings, Action: ActionView},
		Requirement{Module: ModuleMonitoring, Action: ActionView},
	)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("viewer"))
	require.Equal(t, http.StatusOK, rr.Code)
}
