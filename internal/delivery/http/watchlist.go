package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"breakout-trading/internal/dto"
)

func (h *HttpAPIHandler) SetupWatchlist(base *echo.Group) {
	v1 := base.Group("/v1/watchlist")
	{
		v1.GET("", h.GetWatchlist)
		v1.POST("/refresh", h.RefreshWatchlist)
	}
}

func (h *HttpAPIHandler) GetWatchlist(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.SignalService.Watchlist(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to get watchlist", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}

// RefreshWatchlist triggers a universe screening run synchronously and
// returns its summary.
func (h *HttpAPIHandler) RefreshWatchlist(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.UniverseScreener.Refresh(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to refresh watchlist", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Universe screening finished", result))
}
