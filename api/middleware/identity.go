package middleware

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	sessionKeyValue = "session_key"
	sessionKeyBytes = 16
)

var errSessionUnavailable = errors.New("session cookie middleware not installed")

type sessionState struct {
	session *sessions.Session
	request *http.Request
	key     string
}

// NewCookieStore builds the signed (and optionally encrypted) cookie store that
// carries the anonymous session key.
func NewCookieStore(cfg config.SessionConfig) (*sessions.CookieStore, error) {
	pairs, err := cfg.KeyPairs()
	if err != nil {
		return nil, err
	}
	store := sessions.NewCookieStore(pairs...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// SessionIdentity loads the anonymous session cookie. The key itself is only
// minted when a handler calls EnsureSessionKey.
func SessionIdentity(store sessions.Store, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, cookieName)
			if err != nil && logg != nil {
				// A tampered or stale cookie yields a fresh session.
				logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "session.cookie_invalid")
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			state := &sessionState{session: sess}
			if key, ok := sess.Values[sessionKeyValue].(string); ok {
				state.key = key
			}

			ctx := context.WithValue(r.Context(), ctxSession, state)
			if state.key != "" && logg != nil {
				ctx = logg.WithSessionKey(ctx, state.key)
			}
			r = r.WithContext(ctx)
			state.request = r
			next.ServeHTTP(w, r)
		})
	}
}

// EnsureSessionKey returns the request's anonymous session key, creating it and
// writing the cookie when absent. It must run before the response body.
func EnsureSessionKey(w http.ResponseWriter, r *http.Request) (string, error) {
	if key := stringValue(r.Context(), ctxSessionKey); key != "" {
		return key, nil
	}
	state := sessionStateFrom(r.Context())
	if state == nil {
		return "", errSessionUnavailable
	}
	if state.key != "" {
		return state.key, nil
	}

	raw := securecookie.GenerateRandomKey(sessionKeyBytes)
	if raw == nil {
		return "", errors.New("generate session key")
	}
	key := hex.EncodeToString(raw)
	state.session.Values[sessionKeyValue] = key
	if err := state.session.Save(state.request, w); err != nil {
		return "", err
	}
	state.key = key
	return key, nil
}

func sessionStateFrom(ctx context.Context) *sessionState {
	if ctx == nil {
		return nil
	}
	state, _ := ctx.Value(ctxSession).(*sessionState)
	return state
}
