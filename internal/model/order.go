package model

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPaid      OrderStatus = "Paid"
	OrderCancelled OrderStatus = "Cancelled"
)

type OrderKind string

const (
	OrderKindPurchase OrderKind = "purchase"
	OrderKindDonation OrderKind = "donation"
)

// LineItem is a denormalized snapshot of one purchased product. Prices are
// in the smallest currency unit (cents) at the time of checkout.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Order is a document store record of one purchase or donation. The ID is
// assigned at checkout (or derived from the gateway session for orders
// created directly from a webhook) and never changes.
type Order struct {
	ID            string      `json:"_id"`
	Rev           string      `json:"_rev,omitempty"`
	Type          string      `json:"_type"`
	Kind          OrderKind   `json:"kind"`
	SessionID     string      `json:"sessionId"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerName  string      `json:"customerName,omitempty"`
	Items         []LineItem  `json:"items"`
	Total         int64       `json:"total"`
	Currency      string      `json:"currency"`
	Status        OrderStatus `json:"status"`
	ReceiptNumber string      `json:"receiptNumber,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	PaidAt        *time.Time  `json:"paidAt,omitempty"`
}

const OrderDocType = "order"

// ComputedTotal sums the line items; the stored total must always match.
func (o *Order) ComputedTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}
