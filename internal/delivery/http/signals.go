package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"breakout-trading/internal/dto"
	"breakout-trading/pkg/utils"
)

func (h *HttpAPIHandler) SetupSignals(base *echo.Group) {
	v1 := base.Group("/v1/signals")
	{
		v1.GET("", h.GetSignals)
		v1.GET("/status", h.GetScannerStatus)
	}
}

// GetSignals lists stored signals either for one date (?date=YYYY-MM-DD)
// or over a trailing window (?days=N). With neither, it returns today.
func (h *HttpAPIHandler) GetSignals(c echo.Context) error {
	ctx := c.Request().Context()

	param := dto.GetSignalsParam{}
	if dateStr := c.QueryParam("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid date, expected YYYY-MM-DD"))
		}
		param.Date = utils.ToPointer(date)
	} else if daysStr := c.QueryParam("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid days, expected a positive integer"))
		}
		param.Days = utils.ToPointer(days)
	} else {
		param.Date = utils.ToPointer(utils.DateOnly(utils.TimeNowET()))
	}

	result, err := h.service.SignalService.Signals(ctx, param)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to list signals", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}

func (h *HttpAPIHandler) GetScannerStatus(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.service.ScannerService.Status(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to get scanner status", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("OK", result))
}
