package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festa-do-viso/internal/service"
)

// AdminHandler serves the endpoints behind JWTAuth + RequireRole("ADMIN").
// Responses here include contacts.
type AdminHandler struct {
	Sheets  *service.SheetService
	Claims  *service.ClaimService
	Winners *service.WinnerService
}

// NewAdminHandler panics if any dependency is nil.
func NewAdminHandler(sheets *service.SheetService, claims *service.ClaimService, winners *service.WinnerService) *AdminHandler {
	if sheets == nil || claims == nil || winners == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Sheets: sheets, Claims: claims, Winners: winners}
}

// CreateSheet handles POST /v1/admin/sheets.
func (h *AdminHandler) CreateSheet(c echo.Context) error {
	var req sheetReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	s, err := h.Sheets.Create(ctx, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toSheet(s))
}

// ToggleSheet handles PATCH /v1/admin/sheets/:id/toggle.
func (h *AdminHandler) ToggleSheet(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	s, err := h.Sheets.ToggleActive(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toSheet(s))
}

// DeleteSheet handles DELETE /v1/admin/sheets/:id.  The last sheet cannot
// be deleted (409).
func (h *AdminHandler) DeleteSheet(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Sheets.Delete(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListClaims handles GET /v1/admin/sheets/:id/claims.
func (h *AdminHandler) ListClaims(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	claims, err := h.Claims.ListClaims(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]claimResp, 0, len(claims))
	for _, cl := range claims {
		out = append(out, toClaim(cl))
	}
	return c.JSON(http.StatusOK, out)
}

// ClaimFor handles GET /v1/admin/sheets/:id/claims/:number.  A free number
// is answered with available=true and a null claim.
func (h *AdminHandler) ClaimFor(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	n, ok := pathNumber(c)
	if !ok {
		return badRequest(c, "invalid number")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	cl, err := h.Claims.ClaimFor(ctx, id, n)
	if err != nil {
		return respondErr(c, err)
	}
	resp := adminNumberResp{numberResp: numberResp{SheetID: id, Number: n, Available: cl == nil}}
	if cl != nil {
		r := toClaim(cl)
		resp.Claim = &r
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteClaim handles DELETE /v1/admin/claims/:id.
func (h *AdminHandler) DeleteClaim(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid claim id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Claims.DeleteClaim(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResolveDraw handles POST /v1/admin/sheets/:id/draws.  A winner is 201,
// a draw nobody holds is 200 with outcome "no_winner".
func (h *AdminHandler) ResolveDraw(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	var req drawReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	date, err := service.ParseDrawDate(req.DrawDate)
	if err != nil {
		return respondErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Winners.Resolve(ctx, id, date, req.WinningNumber)
	if err != nil {
		return respondErr(c, err)
	}
	status := http.StatusOK
	if out.HasWinner() {
		status = http.StatusCreated
	}
	return c.JSON(status, toOutcome(out))
}

// FindDraw handles GET /v1/admin/sheets/:id/draws/:date.
func (h *AdminHandler) FindDraw(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	date, err := service.ParseDrawDate(c.Param("date"))
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	w, err := h.Winners.FindByDateAndSheet(ctx, id, date)
	if err != nil {
		return respondErr(c, err)
	}
	if w == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no winner recorded for this draw"})
	}
	return c.JSON(http.StatusOK, toWinner(w))
}

// ListSheetWinners handles GET /v1/admin/sheets/:id/winners.
func (h *AdminHandler) ListSheetWinners(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Winners.ListWinnersBySheet(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toWinners(list))
}

// DeleteWinner handles DELETE /v1/admin/winners/:id.
func (h *AdminHandler) DeleteWinner(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid winner id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Winners.DeleteWinner(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
