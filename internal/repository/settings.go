package repository

import (
	"context"
	"errors"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/model"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, set map[string]any) error
}

type settingsRepoImpl struct {
	store *client.Store
}

func NewSettingsRepository(store *client.Store) SettingsRepository {
	return &settingsRepoImpl{store: store}
}

// Get returns the singleton settings document, creating it with defaults
// on first read.
func (r *settingsRepoImpl) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := r.store.GetDocument(ctx, model.SettingsDocID, &settings)
	if err == nil {
		return &settings, nil
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		return nil, err
	}

	defaults := model.DefaultSettings()
	if err := r.store.CreateIfNotExists(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

func (r *settingsRepoImpl) Update(ctx context.Context, set map[string]any) error {
	return r.store.Patch(ctx, model.SettingsDocID, set, "")
}
