package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// SameOrigin reports whether the request's Origin header, when present,
// names the host serving the request. Requests without Origin pass.
func SameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// RequireSameOrigin rejects cross-origin state-changing requests with 403.
func RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SameOrigin(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Запрос отклонён: недопустимый источник."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
