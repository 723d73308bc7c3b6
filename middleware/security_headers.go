// middleware/security_headers.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityConfig controls the Content-Security-Policy emitted on every
// response. AllowedDomains widens connect-src for the frontend origins the
// socket and API are served to.
type SecurityConfig struct {
	AllowedDomains []string
	AllowInlineJS  bool
}

// SecurityHeadersWithConfig sets the standard hardening headers plus a CSP
// built from the config.
func SecurityHeadersWithConfig(config SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			h.Del("Server")
			h.Del("X-Powered-By")

			return next(c)
		}
	}
}

func buildCSP(config SecurityConfig) string {
	directives := []string{
		"default-src 'self'",
		"img-src 'self' data: https:",
		"style-src 'self' 'unsafe-inline'",
	}

	if config.AllowInlineJS {
		directives = append(directives, "script-src 'self' 'unsafe-inline'")
	} else {
		directives = append(directives, "script-src 'self'")
	}

	if len(config.AllowedDomains) > 0 {
		directives = append(directives, "connect-src 'self' "+strings.Join(config.AllowedDomains, " "))
	}

	return strings.Join(directives, "; ")
}
