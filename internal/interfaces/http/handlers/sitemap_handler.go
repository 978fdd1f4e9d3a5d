package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/response"
	"luxe-estates.backend/pkg/sitemap"
)

// SitemapHandler serves the public sitemap
type SitemapHandler struct {
	baseURL string
	now     func() time.Time
}

// NewSitemapHandler creates a sitemap handler rooted at baseURL
func NewSitemapHandler(baseURL string) *SitemapHandler {
	return &SitemapHandler{baseURL: baseURL, now: time.Now}
}

// Get writes the sitemap document
// GET /sitemap.xml
func (h *SitemapHandler) Get(c *gin.Context) {
	var buf bytes.Buffer
	if err := sitemap.Write(&buf, h.baseURL, sitemap.Routes, h.now()); err != nil {
		response.Error(c, domainerrors.InternalServerError(err.Error()))
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}
