package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaStartKey    = "meta_start"
	metaCacheHitKey = "meta_cache_hit"
)

// WithResponseMeta stamps the request start time so handlers can report
// processing duration in the response meta block.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit marks whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(metaCacheHitKey, hit)
}

// ExtractMeta assembles the meta block for the current request: elapsed
// processing time plus the cache flag when one was recorded. Returns nil
// when WithResponseMeta is not installed and nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := map[string]interface{}{}
	if start, ok := c.Value(metaStartKey).(time.Time); ok {
		meta["processing_time_ms"] = time.Since(start).Milliseconds()
	}
	if hit, ok := c.Value(metaCacheHitKey).(bool); ok {
		meta["cache_hit"] = hit
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
