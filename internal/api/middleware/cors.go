package middleware

import (
	"net/http"
	"strings"

	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/utils"

	"github.com/gin-gonic/gin"
)

// CORSConfig configures the CORS middleware
type CORSConfig struct {
	// Comma-separated list of allowed origins; "*" allows any
	AllowedOrigins string
	// Development mode echoes any origin back
	Development bool
}

// CORS middleware
func CORS(config CORSConfig) gin.HandlerFunc {
	var allowed []string
	for _, o := range strings.Split(config.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case config.Development || len(allowed) == 0:
			if origin != "" {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			} else {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			}
		case origin != "":
			originAllowed := false
			for _, a := range allowed {
				if a == "*" || a == origin {
					originAllowed = true
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
			if !originAllowed {
				utils.AbortWithCode(c, http.StatusForbidden, common.ErrCodeOriginNotAllowed)
				return
			}
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Retry-After, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
