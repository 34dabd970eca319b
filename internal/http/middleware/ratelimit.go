package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/services"
)

// RateLimit throttles a route per client IP under scope. Limiter failures let
// the request through.
func RateLimit(log *logger.Logger, limiter redis.Limiter, scope string) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ok, retry, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			log.Warn("Rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(response.RetryAfter(retry)))
			response.RespondError(c, http.StatusTooManyRequests, services.CodeRateLimited, nil)
			return
		}
		c.Next()
	}
}
