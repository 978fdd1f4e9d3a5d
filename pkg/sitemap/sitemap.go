// Package sitemap renders the public route list as a sitemap document.
package sitemap

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

var ErrNoBaseURL = errors.New("sitemap: base url is required")

// Route is one public page and its crawl hints.
type Route struct {
	Path       string
	Priority   float64
	ChangeFreq string
}

// Routes is the fixed list of public pages.
var Routes = []Route{
	{Path: "/", Priority: 1.0, ChangeFreq: "daily"},
	{Path: "/properties", Priority: 0.9, ChangeFreq: "daily"},
	{Path: "/rentals", Priority: 0.8, ChangeFreq: "daily"},
	{Path: "/investments", Priority: 0.8, ChangeFreq: "weekly"},
	{Path: "/membership", Priority: 0.8, ChangeFreq: "monthly"},
	{Path: "/services", Priority: 0.7, ChangeFreq: "monthly"},
	{Path: "/about", Priority: 0.6, ChangeFreq: "monthly"},
	{Path: "/contact", Priority: 0.6, ChangeFreq: "monthly"},
	{Path: "/member/login", Priority: 0.3, ChangeFreq: "yearly"},
	{Path: "/privacy", Priority: 0.2, ChangeFreq: "yearly"},
	{Path: "/terms", Priority: 0.2, ChangeFreq: "yearly"},
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority"`
}

// Write renders routes under baseURL, stamping lastmod with the date of now.
func Write(w io.Writer, baseURL string, routes []Route, now time.Time) error {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return ErrNoBaseURL
	}

	set := urlSet{Xmlns: xmlns, URLs: make([]urlEntry, 0, len(routes))}
	lastMod := now.UTC().Format("2006-01-02")
	for _, r := range routes {
		path := r.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		loc := base + path
		if path == "/" {
			loc = base + "/"
		}
		set.URLs = append(set.URLs, urlEntry{
			Loc:        loc,
			LastMod:    lastMod,
			ChangeFreq: r.ChangeFreq,
			Priority:   strconv.FormatFloat(r.Priority, 'f', 1, 64),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
