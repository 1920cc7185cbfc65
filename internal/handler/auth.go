package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/dto"
	"club-commerce-backend/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    dto.LoginResponse{Token: token},
	})
}
