package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"breakout-trading/internal/dto"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs")
	{
		v1.POST("/run", h.RunJob)
	}
}

// RunJob triggers one job by name, bypassing its schedule and the
// session-phase gate.
func (h *HttpAPIHandler) RunJob(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.RunJobRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	if err := h.service.SchedulerService.RunJob(ctx, req.Job); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Job finished", map[string]string{"job": req.Job}))
}
