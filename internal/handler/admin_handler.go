package handler

import (
	"net/http"
	"time"

	"github.com/bktrade/site/internal/service"
	"github.com/bktrade/site/pkg/auth"
)

// AdminHandler handles the admin session lifecycle.
type AdminHandler struct {
	auth         service.AdminAuthService
	clientIP     func(*http.Request) string
	secureCookie bool
}

// NewAdminHandler creates an AdminHandler. secureCookie sets the Secure
// flag on the session cookie and should be true behind TLS.
func NewAdminHandler(authService service.AdminAuthService, clientIP func(*http.Request) string, secureCookie bool) *AdminHandler {
	return &AdminHandler{auth: authService, clientIP: clientIP, secureCookie: secureCookie}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sess, err := h.auth.Login(r.Context(), h.clientIP(r), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	auth.SetSessionCookie(w, sess, h.secureCookie)
	writeJSON(w, http.StatusOK, loginResponse{Message: msgLoggedIn, Username: sess.Username})
}

// Logout handles POST /api/admin/logout. Requires a session.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		h.auth.Logout(sess.ID)
	}
	auth.ClearSessionCookie(w, h.secureCookie)
	writeMessage(w, http.StatusOK, msgLoggedOut)
}

type meResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Me handles GET /api/admin/me. Requires a session.
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Требуется авторизация.")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Username: sess.Username, ExpiresAt: sess.ExpiresAt})
}
