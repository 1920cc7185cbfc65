package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/dto"
	"club-commerce-backend/internal/model"
	"club-commerce-backend/internal/service"
)

type ApplicationHandler struct {
	applications *service.ApplicationService
}

func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ApplicationRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	app, err := h.applications.Submit(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"success": true, "data": app})
}

func (h *ApplicationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	status := model.ApplicationStatus(c.QueryParam("status"))
	apps, err := h.applications.List(ctx, status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": apps})
}

func (h *ApplicationHandler) Decide(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ApplicationDecision
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	app, err := h.applications.Decide(ctx, c.Param("id"), model.ApplicationStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": app})
}
