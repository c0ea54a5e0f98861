package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the canonical request id header.
const Header = "X-Request-ID"

// ContextKey is where the request id is stored on the gin context.
const ContextKey = "request_id"

// Middleware propagates an incoming X-Request-ID or generates one when
// the client did not send any.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ContextKey, rid)
		c.Writer.Header().Set(Header, rid)
		c.Next()
	}
}

// Value returns the request id stored on the gin context.
func Value(c *gin.Context) string {
	if v, ok := c.Get(ContextKey); ok {
		if rid, ok := v.(string); ok {
			return rid
		}
	}
	return ""
}
