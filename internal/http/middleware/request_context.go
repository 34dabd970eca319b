package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/platform/ctxutil"
)

// AttachRequestContext gives every request a RequestData carrying the client IP.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, rd := ctxutil.EnsureRequestData(c.Request.Context())
		rd.ClientIP = c.ClientIP()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
