package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds baseline hardening headers to all responses.
// frameOrigins lists who may embed rendered previews in an iframe; with none
// given, framing is denied outright.
func SecurityHeadersMiddleware(frameOrigins ...string) gin.HandlerFunc {
	frameAncestors := "'none'"
	frameOptions := "DENY"
	if len(frameOrigins) > 0 {
		frameAncestors = "'self' " + strings.Join(frameOrigins, " ")
		frameOptions = "SAMEORIGIN"
	}

	csp := "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
		"img-src 'self' data: https:; " +
		"font-src 'self' https://fonts.gstatic.com; " +
		"connect-src 'self'; " +
		"frame-ancestors " + frameAncestors + "; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	return func(c *gin.Context) {
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", frameOptions)
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
		c.Header("Content-Security-Policy", csp)

		if c.GetHeader("Authorization") != "" {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}

		c.Next()
	}
}
