package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"club-commerce-backend/internal/model"
)

// EventLedger records gateway events this instance has already reconciled.
// Fast-path dedup only: instances do not share it, so the store's
// create-if-not-exists stays the cross-instance correctness mechanism.
type EventLedger interface {
	Lookup(ctx context.Context, eventID string) (*model.ProcessedEvent, error)
	MarkProcessed(ctx context.Context, eventID, eventType, orderID string) error
}

type eventLedgerImpl struct {
	db *gorm.DB
}

func NewEventLedger(db *gorm.DB) EventLedger {
	return &eventLedgerImpl{db: db}
}

func (r *eventLedgerImpl) Lookup(ctx context.Context, eventID string) (*model.ProcessedEvent, error) {
	var rec model.ProcessedEvent
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *eventLedgerImpl) MarkProcessed(ctx context.Context, eventID, eventType, orderID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProcessedEvent{
			EventID:     eventID,
			EventType:   eventType,
			OrderID:     orderID,
			ProcessedAt: time.Now(),
		}).Error
}
