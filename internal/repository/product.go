package repository

import (
	"context"

	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/model"
)

type ProductRepository interface {
	FindBySKUs(ctx context.Context, skus []string) ([]*model.Product, error)
}

type productRepoImpl struct {
	store *client.Store
}

func NewProductRepository(store *client.Store) ProductRepository {
	return &productRepoImpl{store: store}
}

func (r *productRepoImpl) FindBySKUs(ctx context.Context, skus []string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.store.Fetch(ctx,
		`*[_type == $type && sku in $skus]`,
		map[string]any{"type": model.ProductDocType, "skus": skus},
		&products,
	)
	if err != nil {
		return nil, err
	}
	return products, nil
}
