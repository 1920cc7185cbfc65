package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/dto"
	"club-commerce-backend/internal/model"
	"club-commerce-backend/internal/repository"
)

const minDonationCents = 100

// CheckoutService opens gateway checkout sessions. Prices and totals are
// resolved server-side from store products; client-supplied amounts are
// never trusted.
type CheckoutService struct {
	gateway  client.GatewayClient
	products repository.ProductRepository
	orders   repository.OrderRepository
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewCheckoutService(
	gateway client.GatewayClient,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	baseURL string,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateway:  gateway,
		products: products,
		orders:   orders,
		baseURL:  baseURL,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *CheckoutService) CreateSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("checkout requires at least one item")
	}
	if !validEmail(req.CustomerEmail) {
		return nil, apperr.Validation("a valid customer email is required")
	}

	skus := make([]string, len(req.Items))
	quantities := make(map[string]int, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive")
		}
		if _, dup := quantities[item.SKU]; dup {
			return nil, apperr.Validation("duplicate item %q in checkout", item.SKU)
		}
		skus[i] = item.SKU
		quantities[item.SKU] = item.Quantity
	}

	products, err := s.products.FindBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("look up products: %w", err)
	}
	if len(products) != len(req.Items) {
		return nil, apperr.Validation("one or more items refer to unknown products")
	}

	var total int64
	currency := "usd"
	lineItems := make([]model.LineItem, len(products))
	sessionItems := make([]client.SessionItem, len(products))
	for i, product := range products {
		qty := quantities[product.SKU]
		total += product.Price * int64(qty)
		if product.Currency != "" {
			currency = product.Currency
		}
		lineItems[i] = model.LineItem{
			Title:    product.Title,
			Quantity: qty,
			Price:    product.Price,
		}
		sessionItems[i] = client.SessionItem{
			Name:      product.Title,
			Quantity:  qty,
			UnitPrice: product.Price,
		}
	}

	orderID := "order." + uuid.NewString()
	session, err := s.gateway.CreateSession(ctx, client.SessionParams{
		OrderID:       orderID,
		CustomerEmail: req.CustomerEmail,
		Items:         sessionItems,
		SuccessURL:    s.baseURL + "/checkout/success",
		CancelURL:     s.baseURL + "/checkout/cancelled",
	})
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:            orderID,
		Type:          model.OrderDocType,
		Kind:          model.OrderKindPurchase,
		SessionID:     session.ID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Items:         lineItems,
		Total:         total,
		Currency:      currency,
		Status:        model.OrderPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.orders.CreateIfNotExists(ctx, order); err != nil {
		return nil, fmt.Errorf("store pending order: %w", err)
	}

	s.logger.Info("checkout session created",
		"order_id", orderID, "session_id", session.ID, "total", total)

	return &dto.CheckoutResponse{
		OrderID:     orderID,
		SessionID:   session.ID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// CreateDonationSession opens a session for a payer-chosen amount. The
// pending order carries a single synthetic line item and flows through the
// same reconciliation path as purchases.
func (s *CheckoutService) CreateDonationSession(ctx context.Context, req *dto.DonationRequest) (*dto.CheckoutResponse, error) {
	if req.Amount < minDonationCents {
		return nil, apperr.Validation("donation amount must be at least %d cents", minDonationCents)
	}
	if !validEmail(req.DonorEmail) {
		return nil, apperr.Validation("a valid donor email is required")
	}

	orderID := "order." + uuid.NewString()
	item := client.SessionItem{Name: "Donation", Quantity: 1, UnitPrice: req.Amount}

	session, err := s.gateway.CreateSession(ctx, client.SessionParams{
		OrderID:       orderID,
		CustomerEmail: req.DonorEmail,
		Items:         []client.SessionItem{item},
		SuccessURL:    s.baseURL + "/donate/success",
		CancelURL:     s.baseURL + "/donate/cancelled",
	})
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:            orderID,
		Type:          model.OrderDocType,
		Kind:          model.OrderKindDonation,
		SessionID:     session.ID,
		CustomerEmail: req.DonorEmail,
		CustomerName:  req.DonorName,
		Items:         []model.LineItem{{Title: "Donation", Quantity: 1, Price: req.Amount}},
		Total:         req.Amount,
		Currency:      "usd",
		Status:        model.OrderPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.orders.CreateIfNotExists(ctx, order); err != nil {
		return nil, fmt.Errorf("store pending donation: %w", err)
	}

	s.logger.Info("donation session created",
		"order_id", orderID, "session_id", session.ID, "amount", req.Amount)

	return &dto.CheckoutResponse{
		OrderID:     orderID,
		SessionID:   session.ID,
		CheckoutURL: session.CheckoutURL,
	}, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
