package middleware

// identity.go holds the helpers that read the identity JWTAuth stored in the
// Echo context.  Anonymous callers (public routes) have none.

import (
    "github.com/labstack/echo/v4"
)

// AdminID returns the authenticated admin's id.  ok is false on routes not
// behind JWTAuth.
func AdminID(c echo.Context) (id uint64, ok bool) {
    id, ok = c.Get(ctxAdminID).(uint64)
    return id, ok && id != 0
}

// currentUserID returns the string form of the caller's id, or "anon".
func currentUserID(c echo.Context) string {
    if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
        return s
    }
    return "anon"
}
