package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig lists who may call the API from a browser.
type CORSConfig struct {
	FrontendURL string
	Production  bool
	// PreviewPrefix admits Vercel preview deployments such as
	// quickfolio-git-feature.vercel.app.
	PreviewPrefix string
}

// CORSMiddleware answers preflights and echoes allowed origins. Origins not on
// the list get no CORS headers and the browser blocks the response.
func CORSMiddleware(cfg CORSConfig) gin.HandlerFunc {
	allowed := map[string]bool{}
	if cfg.FrontendURL != "" {
		allowed[strings.TrimRight(cfg.FrontendURL, "/")] = true
	}
	devOrigins := map[string]bool{
		"http://localhost:3000": true,
		"http://127.0.0.1:3000": true,
		"http://localhost:3001": true,
	}
	prefix := cfg.PreviewPrefix
	if prefix == "" {
		prefix = "quickfolio"
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		isAllowed := origin == "" || allowed[origin]
		if !isAllowed && !cfg.Production && devOrigins[origin] {
			isAllowed = true
		}
		if !isAllowed && strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, ".vercel.app") {
			sub := strings.TrimSuffix(strings.TrimPrefix(origin, "https://"), ".vercel.app")
			// Prevents lookalikes such as evil-quickfolio.vercel.app.
			if strings.HasPrefix(sub, prefix+"-") || sub == prefix {
				isAllowed = true
			}
		}

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
		}
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			if isAllowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}

		c.Next()
	}
}
