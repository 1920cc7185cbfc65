package repository

import (
	"context"
	"time"

	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/model"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*model.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	// CreateIfNotExists writes the order only when its ID is free; a lost
	// race is a silent no-op, so callers re-read to learn the winner.
	CreateIfNotExists(ctx context.Context, order *model.Order) error
	// MarkPaid transitions an order to Paid. With rev set the patch is
	// conditional on the revision and a stale revision yields Conflict.
	MarkPaid(ctx context.Context, id, rev string, paidAt time.Time) error
	List(ctx context.Context, limit int) ([]*model.Order, error)
}

type orderRepoImpl struct {
	store *client.Store
}

func NewOrderRepository(store *client.Store) OrderRepository {
	return &orderRepoImpl{store: store}
}

func (r *orderRepoImpl) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := r.store.GetDocument(ctx, id, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	var order model.Order
	err := r.store.Fetch(ctx,
		`*[_type == $type && sessionId == $sid][0]`,
		map[string]any{"type": model.OrderDocType, "sid": sessionID},
		&order,
	)
	if err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, nil
	}
	return &order, nil
}

func (r *orderRepoImpl) CreateIfNotExists(ctx context.Context, order *model.Order) error {
	return r.store.CreateIfNotExists(ctx, order)
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, id, rev string, paidAt time.Time) error {
	return r.store.Patch(ctx, id, map[string]any{
		"status": model.OrderPaid,
		"paidAt": paidAt.UTC().Format(time.RFC3339),
	}, rev)
}

func (r *orderRepoImpl) List(ctx context.Context, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []*model.Order
	err := r.store.Fetch(ctx,
		`*[_type == $type] | order(createdAt desc) [0...$limit]`,
		map[string]any{"type": model.OrderDocType, "limit": limit},
		&orders,
	)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
