package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/services"
)

type SEOHandler struct {
	seo services.SEOService
}

func NewSEOHandler(seo services.SEOService) *SEOHandler {
	return &SEOHandler{seo: seo}
}

// GET /api/seo/:page
func (h *SEOHandler) Get(c *gin.Context) {
	view, err := h.seo.Get(c.Request.Context(), requestLocale(c), c.Param("page"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"seo": view})
}

// GET /api/seo/:page/og.png
func (h *SEOHandler) OGImage(c *gin.Context) {
	img, err := h.seo.OGImage(c.Request.Context(), requestLocale(c), c.Param("page"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", img)
}

// GET /sitemap.xml
func (h *SEOHandler) Sitemap(c *gin.Context) {
	body, err := h.seo.Sitemap(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// GET /api/admin/seo
func (h *SEOHandler) AdminList(c *gin.Context) {
	rows, err := h.seo.AdminList(c.Request.Context(), c.Query("page"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": rows})
}

// PUT /api/admin/seo
func (h *SEOHandler) Upsert(c *gin.Context) {
	var in services.PageSEOInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.seo.Upsert(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"seo": row})
}

// DELETE /api/admin/seo/:page/:locale
func (h *SEOHandler) Delete(c *gin.Context) {
	if err := h.seo.Delete(c.Request.Context(), c.Param("page"), c.Param("locale")); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
