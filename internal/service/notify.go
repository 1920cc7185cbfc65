package service

import (
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/gomail.v2"

	"club-commerce-backend/internal/config"
	"club-commerce-backend/internal/model"
)

// Notifier announces a finalized order. Strictly best-effort: failures are
// logged and never undo or block reconciliation.
type Notifier interface {
	OrderPaid(order *model.Order)
}

type mailNotifier struct {
	dialer   *gomail.Dialer
	from     string
	receipts *ReceiptGenerator
	logger   *slog.Logger
}

// NewNotifier builds an SMTP notifier, or a no-op one when SMTP is not
// configured.
func NewNotifier(cfg *config.SMTP, receipts *ReceiptGenerator, logger *slog.Logger) Notifier {
	if cfg.Host == "" || cfg.From == "" {
		logger.Info("smtp not configured, order notifications disabled")
		return noopNotifier{}
	}
	return &mailNotifier{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		receipts: receipts,
		logger:   logger,
	}
}

// OrderPaid sends the receipt mail on a detached goroutine so the
// reconciliation result never waits on SMTP.
func (n *mailNotifier) OrderPaid(order *model.Order) {
	go n.send(order)
}

func (n *mailNotifier) send(order *model.Order) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", order.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Your receipt (%s)", order.ReceiptNumber))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Thank you! Your payment of %s was received.\nYour receipt is attached.\n",
		formatCents(order.Total),
	))

	if artifact, err := n.receipts.Generate(order); err != nil {
		// The order is final regardless; the receipt can be re-rendered
		// on demand later.
		n.logger.Warn("receipt rendering failed for notification",
			"order_id", order.ID, "error", err)
	} else {
		msg.Attach(artifact.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(artifact.Bytes)
			return err
		}))
	}

	if err := n.dialer.DialAndSend(msg); err != nil {
		n.logger.Warn("receipt mail failed",
			"order_id", order.ID, "to", order.CustomerEmail, "error", err)
		return
	}
	n.logger.Info("receipt mail sent", "order_id", order.ID, "to", order.CustomerEmail)
}

type noopNotifier struct{}

func (noopNotifier) OrderPaid(*model.Order) {}
