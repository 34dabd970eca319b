package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/marmora-backend/internal/http/middleware"
	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/ctxutil"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/services"
)

func requestLocale(c *gin.Context) i18n.Locale { return middleware.RequestLocale(c) }

func submitMeta(c *gin.Context) services.SubmitMeta {
	meta := services.SubmitMeta{Locale: requestLocale(c), ClientIP: c.ClientIP()}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.ClientIP != "" {
		meta.ClientIP = rd.ClientIP
	}
	return meta
}

func parsePage(c *gin.Context) services.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return services.Page{Limit: limit, Offset: offset}
}

// queryBool returns nil when the parameter is absent.
func queryBool(c *gin.Context, name string) *bool {
	v := strings.ToLower(strings.TrimSpace(c.Query(name)))
	if v == "" {
		return nil
	}
	b := v == "1" || v == "true" || v == "yes"
	return &b
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidID, err)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, services.CodeInvalidRequest, err)
		return false
	}
	return true
}
