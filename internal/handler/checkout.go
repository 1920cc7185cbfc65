package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/dto"
	"club-commerce-backend/internal/service"
)

type CheckoutHandler struct {
	checkout   *service.CheckoutService
	reconciler *service.Reconciler
	gateway    client.GatewayClient
	logger     *slog.Logger
}

func NewCheckoutHandler(
	checkout *service.CheckoutService,
	reconciler *service.Reconciler,
	gateway client.GatewayClient,
	logger *slog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:   checkout,
		reconciler: reconciler,
		gateway:    gateway,
		logger:     logger,
	}
}

func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	resp, err := h.checkout.CreateSession(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": resp})
}

func (h *CheckoutHandler) CreateDonationSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DonationRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	resp, err := h.checkout.CreateDonationSession(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": resp})
}

// Webhook ingests gateway payment notifications. The signature is computed
// over the exact raw bytes, so this handler reads the body itself and never
// binds JSON before verification. The response status steers gateway
// redelivery: 2xx acknowledges, 4xx acknowledges an unprocessable payload,
// 5xx requests redelivery.
func (h *CheckoutHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperr.Validation("unreadable webhook body")
	}

	event, err := h.gateway.VerifyWebhook(body, c.Request().Header.Get("Gateway-Signature"))
	if err != nil {
		h.logger.Warn("webhook rejected", "error", err)
		return err
	}

	if event.EventType != "checkout.session.completed" {
		h.logger.Info("ignoring webhook event", "event_type", event.EventType, "event_id", event.EventID)
		return c.JSON(http.StatusOK, map[string]any{"received": true})
	}

	order, changed, err := h.reconciler.Reconcile(ctx, event)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindValidation {
			// Unprocessable event: acknowledge so the gateway stops
			// redelivering; retrying cannot fix a malformed payload.
			h.logger.Error("dropping malformed payment event",
				"event_id", event.EventID, "error", err)
			return c.JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"message": appErr.Message,
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"received": true,
		"order_id": order.ID,
		"created":  changed,
	})
}
