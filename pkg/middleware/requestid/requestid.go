package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request ID between client and server.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware tags every request with an ID, honoring one supplied by the
// caller so upstream proxies can correlate their logs with ours.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID assigned to this request, or "".
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
