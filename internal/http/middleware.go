package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/example/house-doorbell/internal/application"
	"github.com/example/house-doorbell/internal/logging"
)

// Authenticator checks a username and password pair and returns the matching account.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (application.User, error)
}

// RequireUser authenticates requests via HTTP basic auth and attaches the resulting
// principal to the request context.
func RequireUser(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="doorbell"`)
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingCredentials)
				return
			}

			user, err := auth.Authenticate(r.Context(), username, password)
			if err != nil {
				switch {
				case errors.Is(err, application.ErrInvalidCredentials):
					w.Header().Set("WWW-Authenticate", `Basic realm="doorbell"`)
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "INVALID_CREDENTIALS",
						Message:   "the username or password is incorrect",
					})
				default:
					responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "authentication failed"})
				}
				return
			}

			principal := application.Principal{UserID: user.ID, Role: user.Role, Muted: user.Muted}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request-scoped logger to the context and records start and
// completion of each request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
