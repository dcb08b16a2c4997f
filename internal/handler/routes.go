package handler

import (
	"net/http"

	"github.com/bktrade/site/pkg/auth"
)

// Router holds everything NewRouter wires together.
type Router struct {
	Handler     *Handler
	Leads       *LeadHandler
	Admin       *AdminHandler
	Sessions    auth.SessionLookup
	RateLimiter *RateLimiter
	Site        *Site
	ClientIP    func(*http.Request) string
}

// NewRouter builds the full HTTP handler of the site.
func NewRouter(rt Router) http.Handler {
	requireSession := auth.RequireSession(rt.Sessions)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/health", rt.Handler.Health)
	api.HandleFunc("GET /api/version", rt.Handler.Version)
	api.HandleFunc("POST /api/requests", rt.Leads.Submit)

	// 管理 API（login 以外はセッション必須）
	api.Handle("POST /api/admin/login", auth.RequireSameOrigin(http.HandlerFunc(rt.Admin.Login)))
	api.Handle("POST /api/admin/logout", requireSession(auth.RequireSameOrigin(http.HandlerFunc(rt.Admin.Logout))))
	api.Handle("GET /api/admin/me", requireSession(http.HandlerFunc(rt.Admin.Me)))
	api.Handle("GET /api/admin/requests", requireSession(http.HandlerFunc(rt.Leads.AdminList)))
	api.Handle("POST /api/admin/requests/{id}/status", requireSession(auth.RequireSameOrigin(http.HandlerFunc(rt.Leads.UpdateStatus))))
	api.HandleFunc("/api/", rt.Handler.APINotFound)

	mux := http.NewServeMux()
	mux.Handle("/api/", rt.RateLimiter.Middleware(api))
	mux.HandleFunc("GET /sitemap.xml", rt.Handler.Sitemap)
	mux.HandleFunc("GET /robots.txt", rt.Handler.Robots)
	for pattern, page := range sitePages {
		mux.HandleFunc("GET "+pattern, rt.Site.Page(page))
	}
	mux.Handle("/", rt.Site)

	return RequestLogger(rt.ClientIP)(Recover(SecurityHeaders(RobotsTag(mux))))
}
