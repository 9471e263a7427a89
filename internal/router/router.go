package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/festa-do-viso/internal/config"
	"github.com/iliyamo/festa-do-viso/internal/handler"
	"github.com/iliyamo/festa-do-viso/internal/middleware"
	"github.com/iliyamo/festa-do-viso/internal/model"
)

// RegisterRoutes registers the routes that sit outside /v1.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	// Load balancers and monitoring probe this; it pings the database.
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers the admin authentication endpoints.  Login,
// refresh and logout work without an access token; /me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Body refresh_token revokes that token; a bearer token alone revokes all.
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
}

// RegisterPublic registers the participant endpoints.  Reads go through the
// response cache (nil disables it); the claim POST is rate limited.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rc *middleware.ResponseCache, rl config.RateLimitConfig, rdb *redis.Client) {
	cache := middleware.Cache(rc)
	g := e.Group("/v1")

	g.GET("/sheets", p.ListSheets, cache)
	g.GET("/sheets/:id", p.GetSheet, cache)
	g.GET("/sheets/:id/numbers", p.Numbers, cache)
	g.GET("/sheets/:id/numbers/:number", p.NumberStatus, cache)
	g.POST("/sheets/:id/claims", p.Claim, middleware.RateLimit(rl, rdb))

	g.GET("/winners", p.ListWinners, cache)
	g.GET("/stats", p.GetStats, cache)
}
