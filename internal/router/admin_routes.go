package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festa-do-viso/internal/handler"
	"github.com/iliyamo/festa-do-viso/internal/middleware"
	"github.com/iliyamo/festa-do-viso/internal/model"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.  All
// routes require a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Sheets ----
	g.POST("/sheets", h.CreateSheet)
	g.PATCH("/sheets/:id/toggle", h.ToggleSheet)
	g.DELETE("/sheets/:id", h.DeleteSheet)

	// ---- Claims (with contacts) ----
	g.GET("/sheets/:id/claims", h.ListClaims)
	g.GET("/sheets/:id/claims/:number", h.ClaimFor)
	g.DELETE("/claims/:id", h.DeleteClaim)

	// ---- Draws ----
	g.POST("/sheets/:id/draws", h.ResolveDraw)
	g.GET("/sheets/:id/draws/:date", h.FindDraw)
	g.GET("/sheets/:id/winners", h.ListSheetWinners)
	g.DELETE("/winners/:id", h.DeleteWinner)
}
