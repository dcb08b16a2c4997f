package handler

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
)

// sitemapPaths are the public pages listed in sitemap.xml.
var sitemapPaths = []string{
	"/",
	"/catalog",
	"/about",
	"/contacts",
	"/uslugi/pomoshch-snabzhentsu",
	"/uslugi/kompleksnoe-snabzhenie",
	"/uslugi/poisk-materialov",
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap handles GET /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range sitemapPaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + p})
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		slog.Error("sitemap marshal failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}

// Robots handles GET /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\nSitemap: %s/sitemap.xml\n", h.siteURL)
}
