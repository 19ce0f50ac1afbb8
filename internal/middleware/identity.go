package middleware

// identity.go holds helpers shared by the rate limiter and cache
// middleware for attributing a request to a caller.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user ID
// stored by JWTAuth, or "anon" for unauthenticated requests.  The
// claim may arrive as a string or a JSON number depending on how the
// token was minted, so both are accepted.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		if v > 0 {
			return strconv.FormatUint(uint64(v), 10)
		}
	case uint64:
		if v > 0 {
			return strconv.FormatUint(v, 10)
		}
	}
	return "anon"
}
