package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	authcore "github.com/rodaquino-OMNI/authcore"
	"github.com/rodaquino-OMNI/authcore/token"
)

type sessionContextKey struct{}

// SessionFromContext returns the session snapshot injected by
// [RequireSession].
func SessionFromContext(ctx context.Context) (authcore.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(authcore.Session)
	return s, ok
}

// RequireSession admits requests only while the engine holds an
// authenticated session. The check goes through the engine's full pipeline,
// so freshness debounce and in-flight de-duplication apply; a suppressed
// check falls back to the current snapshot.
func RequireSession(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			session, err := engine.CheckAuth(r.Context())
			if err != nil && !errors.Is(err, authcore.ErrCheckSuppressed) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if session.Phase != authcore.PhaseAuthenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireValidToken shape-validates the Authorization bearer token through
// the engine's credential validator. No network traffic; the client address
// selects the rate-limit bucket.
func RequireValidToken(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			verdict := engine.ValidateToken(raw, clientKey(r))
			if !verdict.Valid {
				status := http.StatusUnauthorized
				if verdict.Error == token.KindRateLimited {
					status = http.StatusTooManyRequests
				}
				http.Error(w, http.StatusText(status), status)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
