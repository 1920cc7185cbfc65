package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/dto"
	"club-commerce-backend/internal/repository"
)

type SettingsHandler struct {
	settings repository.SettingsRepository
}

func NewSettingsHandler(settings repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settings.Get(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": settings})
}

func (h *SettingsHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SettingsUpdate
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	set := map[string]any{}
	if req.SiteTitle != nil {
		set["siteTitle"] = *req.SiteTitle
	}
	if req.ContactEmail != nil {
		set["contactEmail"] = *req.ContactEmail
	}
	if req.ReceiptFooter != nil {
		set["receiptFooter"] = *req.ReceiptFooter
	}
	if req.AdminEmails != nil {
		set["adminEmails"] = req.AdminEmails
	}
	if len(set) == 0 {
		return apperr.Validation("no settings fields to update")
	}

	if err := h.settings.Update(ctx, set); err != nil {
		return err
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": settings})
}
