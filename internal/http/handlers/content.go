package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/services"
)

type ContentHandler struct {
	content services.ContentService
}

func NewContentHandler(content services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// GET /api/admin/content?locale=&prefix=
func (h *ContentHandler) List(c *gin.Context) {
	locale := requestLocale(c)
	if raw := c.Query("locale"); raw != "" {
		l, ok := i18n.ParseLocale(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, services.CodeInvalidLocale, nil)
			return
		}
		locale = l
	}
	entries, err := h.content.Entries(c.Request.Context(), locale, c.Query("prefix"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"locale": locale, "entries": entries})
}

// PUT /api/admin/content
func (h *ContentHandler) Upsert(c *gin.Context) {
	var req struct {
		Locale string `json:"locale"`
		Key    string `json:"key"`
		Value  string `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.content.Upsert(c.Request.Context(), req.Locale, req.Key, req.Value)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"block": row})
}

// DELETE /api/admin/content/:locale/:key
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.content.Delete(c.Request.Context(), c.Param("locale"), c.Param("key")); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}
