package model

import "time"

// PaymentEvent is a signature-verified gateway webhook notification. It is
// ephemeral: consumed once by the reconciler, never written to the store.
type PaymentEvent struct {
	EventID       string
	EventType     string
	SessionID     string
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerName  string
	// OrderID is the order document ID we embedded in the session metadata
	// at checkout; empty for sessions created outside this backend.
	OrderID string
	Items   []EventItem
}

type EventItem struct {
	Name      string
	Quantity  int
	UnitPrice int64
}

// ProcessedEvent is a local ledger row recording a webhook event that has
// already been reconciled. Fast-path dedup only: the store's
// create-if-not-exists primitive remains the correctness mechanism, since
// independent instances do not share this ledger.
type ProcessedEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	OrderID     string `gorm:"size:96;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
