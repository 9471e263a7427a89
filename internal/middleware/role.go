package middleware

import (
    "net/http"

    "github.com/google/logger"
    "github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when JWTAuth stored one of
// roles under "role".  Anything else is answered with 403; a route that
// forgot JWTAuth therefore fails closed.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]struct{}, len(roles))
    for _, r := range roles {
        allowed[r] = struct{}{}
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, _ := c.Get(ctxRole).(string)
            if _, ok := allowed[role]; !ok {
                logger.Warningf("forbidden: %s %s by user=%s role=%q",
                    c.Request().Method, c.Path(), currentUserID(c), role)
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
