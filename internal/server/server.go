package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/handler"
	"club-commerce-backend/internal/middleware"
	"club-commerce-backend/internal/service"
)

type Server struct {
	echo               *echo.Echo
	authHandler        *handler.AuthHandler
	checkoutHandler    *handler.CheckoutHandler
	orderHandler       *handler.OrderHandler
	applicationHandler *handler.ApplicationHandler
	settingsHandler    *handler.SettingsHandler
	authService        *service.AuthService
	logger             *slog.Logger
}

func NewServer(
	authHandler *handler.AuthHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	applicationHandler *handler.ApplicationHandler,
	settingsHandler *handler.SettingsHandler,
	authService *service.AuthService,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:               e,
		authHandler:        authHandler,
		checkoutHandler:    checkoutHandler,
		orderHandler:       orderHandler,
		applicationHandler: applicationHandler,
		settingsHandler:    settingsHandler,
		authService:        authService,
		logger:             logger,
	}

	e.HTTPErrorHandler = s.handleError
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/auth/login", s.authHandler.Login)

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/session", s.checkoutHandler.CreateSession)
	// The webhook route must see the raw request body; nothing on this
	// path binds JSON before signature verification.
	checkout.POST("/webhook", s.checkoutHandler.Webhook)

	api.POST("/donations/session", s.checkoutHandler.CreateDonationSession)

	api.GET("/orders/:id/receipt", s.orderHandler.Receipt)

	api.POST("/applications", s.applicationHandler.Submit)

	// -------- admin (bearer token required) --------
	admin := api.Group("/admin", middleware.RequireAdmin(s.authService))
	admin.GET("/orders", s.orderHandler.List)
	admin.GET("/orders/:id", s.orderHandler.Get)
	admin.GET("/applications", s.applicationHandler.List)
	admin.PATCH("/applications/:id/status", s.applicationHandler.Decide)
	admin.GET("/settings", s.settingsHandler.Get)
	admin.PATCH("/settings", s.settingsHandler.Update)
}

// handleError maps the domain error taxonomy to structured JSON. Anything
// unclassified is logged with its cause and reduced to a generic 500 so
// internals never leak.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, map[string]any{
			"success": false,
			"message": httpErr.Message,
		})
		return
	}

	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindSignature:
		status = http.StatusBadRequest
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUpstream:
		status = http.StatusBadGateway
	default:
		s.logger.Error("unhandled error",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}

	_ = c.JSON(status, map[string]any{
		"success": false,
		"message": apperr.MessageOf(err),
	})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
