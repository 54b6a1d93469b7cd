package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sbclc/sbclc/internal/shared"
)

// PrincipalLoader resolves the session user into a request principal so
// downstream permission checks never touch the session store directly.
type PrincipalLoader struct {
	logger  *slog.Logger
	service *Service
}

// NewPrincipalLoader constructs a PrincipalLoader.
func NewPrincipalLoader(logger *slog.Logger, service *Service) *PrincipalLoader {
	return &PrincipalLoader{logger: logger, service: service}
}

// Middleware attaches the authenticated principal to the request context.
// Requests with no session user pass through unauthenticated; endpoint
// guards decide whether that is acceptable.
func (pl *PrincipalLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := strconv.ParseInt(sess.User(), 10, 64)
		if err != nil {
			pl.logger.Warn("malformed session user id", slog.String("value", sess.User()))
			next.ServeHTTP(w, r)
			return
		}
		user, err := pl.service.UserByID(r.Context(), userID)
		if err != nil {
			// Deleted or deactivated account: drop the stale session.
			sess.SetUser("")
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
