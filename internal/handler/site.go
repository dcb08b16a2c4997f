package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// sitePages maps public routes to files under <public>/pages.
var sitePages = map[string]string{
	"/{$}":                           "index",
	"/catalog":                       "catalog",
	"/about":                         "about",
	"/contacts":                      "contacts",
	"/uslugi/pomoshch-snabzhentsu":   "service-1",
	"/uslugi/kompleksnoe-snabzhenie": "service-2",
	"/uslugi/poisk-materialov":       "service-3",
}

// Site serves the static part of the site from a public directory.
type Site struct {
	dir string
}

func NewSite(dir string) *Site {
	return &Site{dir: dir}
}

func (s *Site) pagePath(name string) string {
	return filepath.Join(s.dir, "pages", name+".html")
}

// Page returns a handler that serves the named page.
func (s *Site) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.pagePath(name)
		if _, err := os.Stat(p); err != nil {
			s.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, p)
	}
}

// ServeHTTP serves files under the public directory. Directories are not
// listed; anything missing gets the 404 page.
func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.NotFound(w, r)
		return
	}
	clean := path.Clean("/" + r.URL.Path)
	p := filepath.Join(s.dir, filepath.FromSlash(clean))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		s.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, p)
}

// NotFound writes the 404 page, or a plain body when the page is missing.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(s.pagePath("404"))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read 404 page", "error", err)
		}
		http.Error(w, "404 page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}
