package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxIdempotencyKey = 128

	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour

	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL = 2 * time.Minute
)

// replayHeaders are restored on a replay; checkout answers with a redirect.
var replayHeaders = []string{"Content-Type", "Location"}

// idempotencyWindow reports how long a keyed response is kept for the route.
// Routes not listed are passed through untouched.
func idempotencyWindow(method, path string) (time.Duration, bool) {
	if method != http.MethodPost {
		return 0, false
	}
	switch {
	case path == "/orders/create", strings.HasPrefix(path, "/orders/cancel/"):
		return criticalIdempotencyTTL, true
	case path == "/accounts/register",
		path == "/admin/orders/status",
		path == "/admin/products",
		path == "/admin/products/actions":
		return defaultIdempotencyTTL, true
	}
	return 0, false
}

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	RequestHash string            `json:"request_hash"`
	Status      int               `json:"status,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty"`
}

// Idempotency replays the stored response when a client repeats a keyed
// request. The key is claimed before the handler runs, so a concurrent
// duplicate gets a conflict instead of a second execution. Server errors
// release the key so the client can retry.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := idempotencyWindow(r.Method, r.URL.Path)
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if !ok || store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(clientKey) > maxIdempotencyKey {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			digest := sha256.Sum256(body)
			requestHash := hex.EncodeToString(digest[:])
			key := store.IdempotencyKey(idempotencyOwner(r)+"|"+r.URL.Path, clientKey)

			pending, _ := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
			claimed, err := store.SetNX(ctx, key, string(pending), pendingTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayIdempotent(w, r, store, key, requestHash, logg)
				return
			}

			rec := &bufferedRecorder{statusRecorder: statusRecorder{ResponseWriter: w}}
			next.ServeHTTP(rec, r)

			if rec.code() >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release_failed", err)
				}
				return
			}

			final := idempotencyRecord{
				RequestHash: requestHash,
				Status:      rec.code(),
				Body:        base64.StdEncoding.EncodeToString(rec.buf.Bytes()),
			}
			for _, name := range replayHeaders {
				if v := rec.Header().Get(name); v != "" {
					if final.Headers == nil {
						final.Headers = make(map[string]string, len(replayHeaders))
					}
					final.Headers[name] = v
				}
			}
			payload, _ := json.Marshal(final)
			if err := store.Set(ctx, key, string(payload), ttl); err != nil && logg != nil {
				logg.Error(ctx, "idempotency.store_failed", err)
			}
		})
	}
}

func replayIdempotent(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// Released between claim and read; the client may retry.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request is being retried"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
	default:
		for name, v := range record.Headers {
			w.Header().Set(name, v)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(record.Status)
		if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
			_, _ = w.Write(decoded)
		}
	}
}

// idempotencyOwner scopes keys to the caller so two customers sending the
// same key never collide.
func idempotencyOwner(r *http.Request) string {
	if id := UserIDFromContext(r.Context()); id != "" {
		return "user:" + id
	}
	return "session:" + SessionKeyFromContext(r.Context())
}

type bufferedRecorder struct {
	statusRecorder
	buf bytes.Buffer
}

func (r *bufferedRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.statusRecorder.Write(b)
}
