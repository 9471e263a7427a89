package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // admin id to string for the user_id context key
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/festa-do-viso/internal/utils" // access token parsing
)

// Context keys set by JWTAuth.
const (
    ctxUserID   = "user_id"
    ctxAdminID  = "admin_id"
    ctxRole     = "role"
    ctxUsername = "username"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the admin's identity into the request context.  The provided
// secret must match the one used when issuing tokens.  Handlers read the
// identity with AdminID; RequireRole reads c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            // Signature, algorithm and expiry are all checked here.
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set(ctxUserID, strconv.FormatUint(claims.AdminID, 10))
            c.Set(ctxAdminID, claims.AdminID)
            c.Set(ctxRole, claims.Role)
            c.Set(ctxUsername, claims.Username)
            return next(c)
        }
    }
}
