package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Keys are the accepted API keys. Public keys may run and list probes; admin
// keys may also clear the probe history.
type Keys struct {
	Public []string
	Admin  []string
}

// presentedKey reads a bearer token, falling back to X-API-Key.
func presentedKey(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func matches(key string, accepted []string) bool {
	if key == "" {
		return false
	}
	for _, k := range accepted {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// RequireAny admits any configured key. With no keys configured at all the
// API is open.
func RequireAny(keys Keys) func(http.Handler) http.Handler {
	if len(keys.Public) == 0 && len(keys.Admin) == 0 {
		return passThrough
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := presentedKey(r)
			if !matches(key, keys.Public) && !matches(key, keys.Admin) {
				deny(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits admin keys only: 401 without a key, 403 with any other.
// With no admin keys configured the route is open.
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	if len(keys.Admin) == 0 {
		return passThrough
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch key := presentedKey(r); {
			case matches(key, keys.Admin):
				next.ServeHTTP(w, r)
			case key == "":
				deny(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
			default:
				deny(w, http.StatusForbidden, `{"error":"forbidden"}`)
			}
		})
	}
}

func passThrough(next http.Handler) http.Handler { return next }

func deny(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
