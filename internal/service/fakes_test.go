package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/client"
	"club-commerce-backend/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeOrderRepo mimics the document store's semantics: create-if-not-exists
// is a silent no-op on collision, conditional patches fail with Conflict on
// a stale revision. Safe for concurrent use so reconciliation races can be
// exercised.
type fakeOrderRepo struct {
	mu   sync.Mutex
	docs map[string]*model.Order
	rev  int
	// fail makes every call report an unavailable store.
	fail bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{docs: map[string]*model.Order{}}
}

func (f *fakeOrderRepo) errIfDown() error {
	if f.fail {
		return apperr.Upstream("document store unreachable", fmt.Errorf("connection refused"))
	}
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errIfDown(); err != nil {
		return nil, err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, apperr.NotFound("document %q not found", id)
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errIfDown(); err != nil {
		return nil, err
	}
	for _, doc := range f.docs {
		if doc.SessionID == sessionID {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) CreateIfNotExists(_ context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errIfDown(); err != nil {
		return err
	}
	if _, exists := f.docs[order.ID]; exists {
		return nil
	}
	f.rev++
	cp := *order
	cp.Rev = fmt.Sprintf("rev-%d", f.rev)
	f.docs[order.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, id, rev string, paidAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errIfDown(); err != nil {
		return err
	}
	doc, ok := f.docs[id]
	if !ok {
		return apperr.NotFound("document %q not found", id)
	}
	if rev != "" && rev != doc.Rev {
		return &apperr.Error{Kind: apperr.KindConflict, Message: "document revision mismatch"}
	}
	f.rev++
	doc.Status = model.OrderPaid
	doc.PaidAt = &paidAt
	doc.Rev = fmt.Sprintf("rev-%d", f.rev)
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ int) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errIfDown(); err != nil {
		return nil, err
	}
	var orders []*model.Order
	for _, doc := range f.docs {
		cp := *doc
		orders = append(orders, &cp)
	}
	return orders, nil
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]*model.ProcessedEvent
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: map[string]*model.ProcessedEvent{}}
}

func (f *fakeLedger) Lookup(_ context.Context, eventID string) (*model.ProcessedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.entries[eventID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeLedger) MarkProcessed(_ context.Context, eventID, eventType, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.entries[eventID]; exists {
		return nil
	}
	f.entries[eventID] = &model.ProcessedEvent{
		EventID:     eventID,
		EventType:   eventType,
		OrderID:     orderID,
		ProcessedAt: time.Now(),
	}
	return nil
}

// recordNotifier counts finalization notifications.
type recordNotifier struct {
	mu     sync.Mutex
	orders []string
}

func (r *recordNotifier) OrderPaid(order *model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order.ID)
}

func (r *recordNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeProductRepo struct {
	products map[string]*model.Product
}

func (f *fakeProductRepo) FindBySKUs(_ context.Context, skus []string) ([]*model.Product, error) {
	var out []*model.Product
	for _, sku := range skus {
		if p, ok := f.products[sku]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	sessions []client.SessionParams
	nextID   int
}

func (f *fakeGateway) CreateSession(_ context.Context, params client.SessionParams) (*client.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sessions = append(f.sessions, params)
	id := fmt.Sprintf("cs_%d", f.nextID)
	return &client.Session{ID: id, CheckoutURL: "https://pay.example.com/" + id}, nil
}

func (f *fakeGateway) VerifyWebhook([]byte, string) (*model.PaymentEvent, error) {
	panic("not used by these tests")
}

type fakeAppRepo struct {
	mu   sync.Mutex
	docs map[string]*model.Application
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{docs: map[string]*model.Application{}}
}

func (f *fakeAppRepo) FindActive(_ context.Context, email, targetRef string) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.docs {
		if app.Email == email && app.TargetRef == targetRef &&
			(app.Status == model.ApplicationPending || app.Status == model.ApplicationApproved) {
			cp := *app
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.docs[id]
	if !ok {
		return nil, apperr.NotFound("document %q not found", id)
	}
	cp := *app
	return &cp, nil
}

func (f *fakeAppRepo) Create(_ context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *app
	f.docs[app.ID] = &cp
	return nil
}

func (f *fakeAppRepo) SetStatus(_ context.Context, id string, status model.ApplicationStatus, decidedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.docs[id]
	if !ok {
		return apperr.NotFound("document %q not found", id)
	}
	app.Status = status
	app.DecidedAt = &decidedAt
	return nil
}

func (f *fakeAppRepo) List(_ context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Application
	for _, app := range f.docs {
		if status == "" || app.Status == status {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out, nil
}
