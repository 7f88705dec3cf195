package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"breakout-trading/internal/dto"
)

func (h *HttpAPIHandler) SetupPaperTrading(base *echo.Group) {
	v1 := base.Group("/v1/trading")
	{
		v1.GET("/positions", h.GetOpenPositions)
		v1.GET("/trades", h.GetClosedTrades)
		v1.GET("/stats", h.GetTradingStats)
		v1.GET("/monthly", h.GetMonthlyPerformance)
	}
}

func (h *HttpAPIHandler) GetOpenPositions(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.PositionManagerService.OpenPositions(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to list open positions", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}

func (h *HttpAPIHandler) GetClosedTrades(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid limit, expected a positive integer"))
		}
		limit = parsed
	}

	result, err := h.service.PositionManagerService.ClosedTrades(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to list closed trades", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}

func (h *HttpAPIHandler) GetTradingStats(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.PositionManagerService.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to compute trading stats", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}

func (h *HttpAPIHandler) GetMonthlyPerformance(c echo.Context) error {
	ctx := c.Request().Context()

	months := 12
	if monthsStr := c.QueryParam("months"); monthsStr != "" {
		parsed, err := strconv.Atoi(monthsStr)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid months, expected a positive integer"))
		}
		months = parsed
	}

	result, err := h.service.PositionManagerService.MonthlyPerformance(ctx, months)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to compute monthly performance", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}
