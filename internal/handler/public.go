package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festa-do-viso/internal/service"
)

// PublicHandler serves the participant-facing endpoints.  Nothing here
// requires a token and no response includes a contact.
type PublicHandler struct {
	Sheets  *service.SheetService
	Claims  *service.ClaimService
	Winners *service.WinnerService
	Stats   *service.StatsService
}

// NewPublicHandler panics if any dependency is nil.
func NewPublicHandler(sheets *service.SheetService, claims *service.ClaimService, winners *service.WinnerService, stats *service.StatsService) *PublicHandler {
	if sheets == nil || claims == nil || winners == nil || stats == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Sheets: sheets, Claims: claims, Winners: winners, Stats: stats}
}

// ListSheets handles GET /v1/sheets.  ?active=true limits the list to
// active sheets.
func (h *PublicHandler) ListSheets(c echo.Context) error {
	activeOnly := false
	if v := c.QueryParam("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "active must be true or false")
		}
		activeOnly = b
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list := h.Sheets.ListAll
	if activeOnly {
		list = h.Sheets.ListActive
	}
	sheets, err := list(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toSheets(sheets))
}

// GetSheet handles GET /v1/sheets/:id.
func (h *PublicHandler) GetSheet(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	s, err := h.Sheets.Get(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toSheet(s))
}

// Numbers handles GET /v1/sheets/:id/numbers: the occupied numbers and the
// free ones.
func (h *PublicHandler) Numbers(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	occupied, err := h.Claims.OccupiedNumbers(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, numbersResp{SheetID: id, Occupied: occupied, Available: freeNumbers(occupied)})
}

// NumberStatus handles GET /v1/sheets/:id/numbers/:number.
func (h *PublicHandler) NumberStatus(c echo.Context) error {
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

	free, err := h.Claims.IsAvailable(ctx, id, n)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, numberResp{SheetID: id, Number: n, Available: free})
}

// Claim handles POST /v1/sheets/:id/claims.
func (h *PublicHandler) Claim(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid sheet id")
	}
	var req claimReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	claim, err := h.Claims.Allocate(ctx, id, req.Number, req.Name, req.Contact)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toPublicClaim(claim))
}

// ListWinners handles GET /v1/winners.
func (h *PublicHandler) ListWinners(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Winners.ListWinners(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toPublicWinners(list))
}

// GetStats handles GET /v1/stats.
func (h *PublicHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Stats.Compute(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
