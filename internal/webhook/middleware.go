package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/platform/httpkit"
)

const contextSourceKey = "webhook_source"

// KeyLookup resolves an API key to its channel label.
type KeyLookup interface {
	LookupAPIKey(ctx context.Context, key string) (string, bool, error)
}

// APIKeyAuth authenticates webhook callers via the X-API-Key header
// and stores the resolved channel label on the context.
func APIKeyAuth(lookup KeyLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			httpkit.Error(c, http.StatusUnauthorized, "missing api key")
			c.Abort()
			return
		}

		source, ok, err := lookup.LookupAPIKey(c.Request.Context(), key)
		if err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "internal server error")
			c.Abort()
			return
		}
		if !ok {
			httpkit.Error(c, http.StatusUnauthorized, "invalid api key")
			c.Abort()
			return
		}

		c.Set(contextSourceKey, source)
		c.Next()
	}
}
