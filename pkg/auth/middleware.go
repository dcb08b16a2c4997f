package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const sessionKey contextKey = "admin_session"

// SessionFromContext は context から管理者セッションを取得する
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// WithSession は context に管理者セッションをセットする
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionLookup resolves a session id to a live session.
type SessionLookup interface {
	Lookup(id string) (*Session, bool)
}

// RequireSession は認証必須ミドルウェア。セッションを検証し、context にセットする。
// Authenticated responses are never cached.
func RequireSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName())
			if err != nil {
				unauthorized(w)
				return
			}

			s, ok := sessions.Lookup(cookie.Value)
			if !ok {
				unauthorized(w)
				return
			}

			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Pragma", "no-cache")
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Требуется авторизация."})
}
