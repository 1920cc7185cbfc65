package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/model"
	"club-commerce-backend/internal/repository"
)

// Reconciler matches verified payment events to exactly one order document
// each. Webhook delivery is at-least-once; every path below must therefore
// be safe to replay, and the only concurrency-correctness mechanism is the
// store's create-if-not-exists / conditional-patch primitive, never an
// in-process lock (the server may run as multiple instances).
type Reconciler struct {
	orders   repository.OrderRepository
	ledger   repository.EventLedger
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewReconciler(
	orders repository.OrderRepository,
	ledger repository.EventLedger,
	notifier Notifier,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		orders:   orders,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile ensures exactly one Paid order exists for the event's session.
// Returns the finalized order and whether this call changed anything
// (created the order or completed a pending one). Redelivery of an already
// processed event returns the existing order with changed == false and
// triggers no notification.
//
// Error classification drives the webhook response: Validation means the
// event is unprocessable and must be acknowledged to stop redelivery
// storms; Upstream means the store is unavailable and the gateway should
// redeliver.
func (r *Reconciler) Reconcile(ctx context.Context, event *model.PaymentEvent) (*model.Order, bool, error) {
	if err := validateEvent(event); err != nil {
		return nil, false, err
	}

	// Fast path: this instance already processed the event.
	if rec, err := r.ledger.Lookup(ctx, event.EventID); err == nil && rec != nil {
		order, err := r.orders.GetByID(ctx, rec.OrderID)
		if err == nil {
			return order, false, nil
		}
		// Ledger points at a vanished order; fall through to the store.
		r.logger.Warn("event ledger entry has no order, reconciling from store",
			"event_id", event.EventID, "order_id", rec.OrderID)
	} else if err != nil {
		r.logger.Warn("event ledger lookup failed", "event_id", event.EventID, "error", err)
	}

	orderID := event.OrderID
	if orderID == "" {
		orderID = "order." + event.SessionID
	}

	order, changed, err := r.finalize(ctx, orderID, event)
	if err != nil {
		return nil, false, err
	}

	if err := r.ledger.MarkProcessed(ctx, event.EventID, event.EventType, order.ID); err != nil {
		// Losing the fast path is harmless; the store stays authoritative.
		r.logger.Warn("event ledger write failed", "event_id", event.EventID, "error", err)
	}

	if changed {
		r.notifier.OrderPaid(order)
	}
	return order, changed, nil
}

func (r *Reconciler) finalize(ctx context.Context, orderID string, event *model.PaymentEvent) (*model.Order, bool, error) {
	existing, err := r.lookupOrder(ctx, orderID, event.SessionID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if existing.Status == model.OrderPaid {
			return existing, false, nil
		}
		return r.completePending(ctx, existing, event)
	}

	// No order yet: the session was created outside our checkout flow, or
	// the webhook beat the checkout write. Build the order from the event.
	candidate := orderFromEvent(orderID, event, r.now().UTC())
	if err := r.orders.CreateIfNotExists(ctx, candidate); err != nil {
		return nil, false, err
	}

	// A concurrent delivery may have won the create; the store's copy is
	// the truth either way.
	stored, err := r.orders.GetByID(ctx, candidate.ID)
	if err != nil {
		return nil, false, err
	}
	created := stored.ReceiptNumber == candidate.ReceiptNumber
	if created {
		r.logger.Info("order created from payment event",
			"order_id", stored.ID, "session_id", event.SessionID, "amount", event.Amount)
	}
	return stored, created, nil
}

func (r *Reconciler) completePending(ctx context.Context, order *model.Order, event *model.PaymentEvent) (*model.Order, bool, error) {
	if order.Total != event.Amount {
		return nil, false, apperr.Validation(
			"gateway charged %d but order %s totals %d", event.Amount, order.ID, order.Total)
	}

	paidAt := r.now().UTC()
	err := r.orders.MarkPaid(ctx, order.ID, order.Rev, paidAt)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindConflict {
			// A concurrent delivery patched first. Re-read and treat its
			// result as ours.
			stored, err := r.orders.GetByID(ctx, order.ID)
			if err != nil {
				return nil, false, err
			}
			return stored, false, nil
		}
		return nil, false, err
	}

	order.Status = model.OrderPaid
	order.PaidAt = &paidAt
	r.logger.Info("pending order completed",
		"order_id", order.ID, "session_id", event.SessionID)
	return order, true, nil
}

func (r *Reconciler) lookupOrder(ctx context.Context, orderID, sessionID string) (*model.Order, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err == nil {
		return order, nil
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		return nil, err
	}
	// The checkout flow may have stored the order under a different ID;
	// the session ID is the fallback key.
	return r.orders.FindBySessionID(ctx, sessionID)
}

func orderFromEvent(orderID string, event *model.PaymentEvent, paidAt time.Time) *model.Order {
	items := make([]model.LineItem, len(event.Items))
	for i, it := range event.Items {
		items[i] = model.LineItem{
			Title:    it.Name,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
		}
	}
	if len(items) == 0 {
		items = []model.LineItem{{Title: "Donation", Quantity: 1, Price: event.Amount}}
	}

	kind := model.OrderKindPurchase
	if len(event.Items) == 0 {
		kind = model.OrderKindDonation
	}

	return &model.Order{
		ID:            orderID,
		Type:          model.OrderDocType,
		Kind:          kind,
		SessionID:     event.SessionID,
		CustomerEmail: event.CustomerEmail,
		CustomerName:  event.CustomerName,
		Items:         items,
		Total:         event.Amount,
		Currency:      event.Currency,
		Status:        model.OrderPaid,
		ReceiptNumber: uuid.NewString(),
		CreatedAt:     paidAt,
		PaidAt:        &paidAt,
	}
}

func validateEvent(event *model.PaymentEvent) error {
	switch {
	case event.SessionID == "":
		return apperr.Validation("payment event has no session id")
	case event.CustomerEmail == "":
		return apperr.Validation("payment event has no customer email")
	case event.Amount <= 0:
		return apperr.Validation("payment event amount must be positive, got %d", event.Amount)
	}

	if len(event.Items) > 0 {
		var sum int64
		for _, it := range event.Items {
			if it.Quantity <= 0 {
				return apperr.Validation("payment event item %q has non-positive quantity", it.Name)
			}
			if it.UnitPrice < 0 {
				return apperr.Validation("payment event item %q has negative price", it.Name)
			}
			sum += it.UnitPrice * int64(it.Quantity)
		}
		if sum != event.Amount {
			return apperr.Validation(
				"payment event amount %d does not match item total %d", event.Amount, sum)
		}
	}
	return nil
}
