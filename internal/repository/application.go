package repository

import (
	"context"
	"time"

	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/model"
)

type ApplicationRepository interface {
	// FindActive returns the pending or approved application for the
	// (email, targetRef) pair, or nil when none exists.
	FindActive(ctx context.Context, email, targetRef string) (*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	Create(ctx context.Context, app *model.Application) error
	SetStatus(ctx context.Context, id string, status model.ApplicationStatus, decidedAt time.Time) error
	List(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error)
}

type applicationRepoImpl struct {
	store *client.Store
}

func NewApplicationRepository(store *client.Store) ApplicationRepository {
	return &applicationRepoImpl{store: store}
}

func (r *applicationRepoImpl) FindActive(ctx context.Context, email, targetRef string) (*model.Application, error) {
	var app model.Application
	err := r.store.Fetch(ctx,
		`*[_type == $type && email == $email && targetRef == $target && status in ["pending", "approved"]][0]`,
		map[string]any{"type": model.ApplicationDocType, "email": email, "target": targetRef},
		&app,
	)
	if err != nil {
		return nil, err
	}
	if app.ID == "" {
		return nil, nil
	}
	return &app, nil
}

func (r *applicationRepoImpl) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	if err := r.store.GetDocument(ctx, id, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepoImpl) Create(ctx context.Context, app *model.Application) error {
	return r.store.Create(ctx, app)
}

func (r *applicationRepoImpl) SetStatus(ctx context.Context, id string, status model.ApplicationStatus, decidedAt time.Time) error {
	return r.store.Patch(ctx, id, map[string]any{
		"status":    status,
		"decidedAt": decidedAt.UTC().Format(time.RFC3339),
	}, "")
}

func (r *applicationRepoImpl) List(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	query := `*[_type == $type] | order(submittedAt desc)`
	params := map[string]any{"type": model.ApplicationDocType}
	if status != "" {
		query = `*[_type == $type && status == $status] | order(submittedAt desc)`
		params["status"] = status
	}

	var apps []*model.Application
	if err := r.store.Fetch(ctx, query, params, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
