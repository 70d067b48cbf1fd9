// Package shared holds helpers used across feature handlers.
package shared

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/enrollhub/internal/app/features/errors"
	enterprisestore "github.com/dalemusser/enrollhub/internal/app/store/enterprises"
	"github.com/dalemusser/enrollhub/internal/app/system/timeouts"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

type ctxKey int

const enterpriseKey ctxKey = 0

// RequireEnterprise resolves the {enterprise} URL parameter against the
// store and verifies the X-Access-Code header. On success the loaded
// enterprise is placed in the request context for handlers to read via
// CurrentEnterprise. Unknown codes get 404; bad access codes get 401.
func RequireEnterprise(store *enterprisestore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := chi.URLParam(r, "enterprise")
			accessCode := r.Header.Get("X-Access-Code")

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()

			ent, err := store.VerifyAccessCode(ctx, code, accessCode)
			switch {
			case errors.Is(err, enterprisestore.ErrInvalidCode),
				errors.Is(err, enterprisestore.ErrEnterpriseNotFound):
				errLog.NotFound(w, r, "Unknown enterprise.")
				return
			case errors.Is(err, enterprisestore.ErrBadAccessCode):
				logger.Warn("access code rejected", zap.String("enterprise", code))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid access code."}`))
				return
			case err != nil:
				errLog.Serve(w, r, http.StatusInternalServerError, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), enterpriseKey, ent)))
		})
	}
}

// CurrentEnterprise returns the enterprise placed in the context by
// RequireEnterprise, or nil outside that middleware.
func CurrentEnterprise(r *http.Request) *models.Enterprise {
	ent, _ := r.Context().Value(enterpriseKey).(*models.Enterprise)
	return ent
}

// WithEnterprise injects an enterprise into a request context.
// Handler tests use this to bypass the middleware.
func WithEnterprise(r *http.Request, ent *models.Enterprise) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), enterpriseKey, ent))
}
