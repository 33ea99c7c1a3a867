package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const csrfHeader = "X-CSRF-Token"

// CSRF protects cookie-identified requests. Bearer-authenticated requests are
// exempt since the browser never attaches the token on its own. When disabled
// the handler is returned unchanged.
func CSRF(enabled bool, cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	pairs, err := cfg.KeyPairs()
	if err != nil || len(pairs) == 0 {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "csrf keys unavailable"))
			})
		}
	}

	protect := csrf.Protect(
		pairs[0],
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.RequestHeader(csrfHeader),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := csrf.FailureReason(r)
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, reason, "csrf token invalid"))
		})),
	)

	return func(next http.Handler) http.Handler {
		withToken := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(csrfHeader, csrf.Token(r))
			next.ServeHTTP(w, r)
		})
		guarded := protect(withToken)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) != "" {
				r = csrf.UnsafeSkipCheck(r)
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
