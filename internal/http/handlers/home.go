package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/services"
)

type HomeHandler struct {
	home  services.HomeService
	stats services.StatsService
}

func NewHomeHandler(home services.HomeService, stats services.StatsService) *HomeHandler {
	return &HomeHandler{home: home, stats: stats}
}

// GET /api/home
func (h *HomeHandler) Home(c *gin.Context) {
	page, err := h.home.Get(c.Request.Context(), requestLocale(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/admin/stats
func (h *HomeHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}
