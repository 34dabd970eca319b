package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/services"
)

// SiteHandler serves settings and the settings-derived surfaces: theme,
// integrations, WhatsApp link and dictionaries.
type SiteHandler struct {
	settings     services.SettingsService
	theme        services.ThemeService
	integrations services.IntegrationsService
	whatsapp     services.WhatsAppService
	content      services.ContentService
}

func NewSiteHandler(
	settings services.SettingsService,
	theme services.ThemeService,
	integrations services.IntegrationsService,
	whatsapp services.WhatsAppService,
	content services.ContentService,
) *SiteHandler {
	return &SiteHandler{
		settings:     settings,
		theme:        theme,
		integrations: integrations,
		whatsapp:     whatsapp,
		content:      content,
	}
}

// GET /api/settings
func (h *SiteHandler) PublicSettings(c *gin.Context) {
	pub, err := h.settings.Public(c.Request.Context(), requestLocale(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": pub})
}

// GET /api/admin/settings
func (h *SiteHandler) AdminSettings(c *gin.Context) {
	s, err := h.settings.Admin(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": s})
}

// PATCH /api/admin/settings
func (h *SiteHandler) UpdateSettings(c *gin.Context) {
	var patch services.SettingsPatch
	if !bindJSON(c, &patch) {
		return
	}
	s, err := h.settings.Update(c.Request.Context(), patch)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": s})
}

// GET /api/theme.css
func (h *SiteHandler) ThemeCSS(c *gin.Context) {
	sheet, err := h.theme.Stylesheet(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("ETag", sheet.ETag)
	c.Header("Cache-Control", "public, max-age=60")
	if c.GetHeader("If-None-Match") == sheet.ETag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(sheet.CSS))
}

// GET /api/integrations
func (h *SiteHandler) Integrations(c *gin.Context) {
	out, err := h.integrations.Get(c.Request.Context(), requestLocale(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/whatsapp
func (h *SiteHandler) WhatsApp(c *gin.Context) {
	link, err := h.whatsapp.Link(c.Request.Context(), requestLocale(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, link)
}

// GET /api/locales
func (h *SiteHandler) Locales(c *gin.Context) {
	type localeInfo struct {
		Code string `json:"code"`
		Dir  string `json:"dir"`
	}
	out := make([]localeInfo, 0, len(i18n.Supported()))
	for _, l := range i18n.Supported() {
		out = append(out, localeInfo{Code: l.String(), Dir: l.Dir()})
	}
	response.RespondOK(c, gin.H{
		"locales": out,
		"default": h.settings.DefaultLocale(c.Request.Context()).String(),
		"current": requestLocale(c).String(),
	})
}

// GET /api/i18n/:locale
func (h *SiteHandler) Dictionary(c *gin.Context) {
	locale, ok := i18n.ParseLocale(c.Param("locale"))
	if !ok {
		response.RespondError(c, http.StatusNotFound, services.CodeNotFound, nil)
		return
	}
	dict, err := h.content.Dictionary(c.Request.Context(), locale)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"locale": locale, "dir": locale.Dir(), "messages": dict})
}
