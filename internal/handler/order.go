package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/model"
	"club-commerce-backend/internal/repository"
	"club-commerce-backend/internal/service"
)

type OrderHandler struct {
	orders   repository.OrderRepository
	receipts *service.ReceiptGenerator
}

func NewOrderHandler(orders repository.OrderRepository, receipts *service.ReceiptGenerator) *OrderHandler {
	return &OrderHandler{orders: orders, receipts: receipts}
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	orders, err := h.orders.List(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": orders})
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": order})
}

// Receipt renders the order's receipt on demand. Rendering is deterministic
// so there is no cached artifact to invalidate.
func (h *OrderHandler) Receipt(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if order.Status != model.OrderPaid {
		return apperr.Conflict("order %s is not paid, no receipt available", order.ID)
	}

	artifact, err := h.receipts.Generate(order)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+artifact.Filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", artifact.Bytes)
}
