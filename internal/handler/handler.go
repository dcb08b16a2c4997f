package handler

import (
	"net/http"
	"strings"

	"github.com/bktrade/site/internal/repository"
)

// Handler serves the informational endpoints of the site.
type Handler struct {
	db      repository.DB
	version string
	siteURL string
}

func New(db repository.DB, version, siteURL string) *Handler {
	return &Handler{
		db:      db,
		version: version,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

type versionResponse struct {
	Version string `json:"version"`
}

// Version handles GET /api/version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{Version: h.version})
}

// APINotFound answers unknown /api/ routes with a JSON 404.
func (h *Handler) APINotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Не найдено.")
}
