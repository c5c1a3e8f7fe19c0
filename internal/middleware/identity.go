package middleware

// identity.go holds the request identity helpers shared by the rate limiter,
// the cache and the admin guard.  Participants are anonymous: the only
// handles on a request are its IP, the session code in the path and, for
// operators, the subject of a verified admin token.

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	CtxSubject = "subject"
	CtxRole    = "role"
)

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// sessionScope returns the upper-cased :code path parameter or "none".
func sessionScope(c echo.Context) string {
	if code := strings.ToUpper(strings.TrimSpace(c.Param("code"))); code != "" {
		return code
	}
	return "none"
}

// Subject returns the admin subject stored by JWTAuth, or "anon".
func Subject(c echo.Context) string {
	if s, ok := c.Get(CtxSubject).(string); ok && s != "" {
		return s
	}
	return "anon"
}
