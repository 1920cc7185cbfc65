package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/config"
	"club-commerce-backend/internal/model"
)

// GatewayClient adapts the hosted payment gateway: it creates checkout
// sessions and verifies inbound webhook deliveries.
type GatewayClient interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
	VerifyWebhook(rawBody []byte, signatureHeader string) (*model.PaymentEvent, error)
}

type SessionParams struct {
	OrderID       string
	CustomerEmail string
	Items         []SessionItem
	SuccessURL    string
	CancelURL     string
}

type SessionItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type Session struct {
	ID          string
	CheckoutURL string
}

// signatureTolerance bounds how stale a webhook timestamp may be before we
// reject it, limiting replay of captured deliveries.
const signatureTolerance = 5 * time.Minute

type gatewayClientImpl struct {
	httpClient    *http.Client
	baseAPIURL    string
	secretKey     string
	webhookSecret []byte
	now           func() time.Time
}

func NewGatewayClient(cfg *config.Gateway) GatewayClient {
	return &gatewayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseAPIURL:    cfg.BaseAPIURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: []byte(cfg.WebhookSecret),
		now:           time.Now,
	}
}

type createSessionResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *gatewayClientImpl) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	payload := map[string]any{
		"line_items":     params.Items,
		"customer_email": params.CustomerEmail,
		"success_url":    params.SuccessURL,
		"cancel_url":     params.CancelURL,
		"metadata": map[string]string{
			"order_id": params.OrderID,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal session payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseAPIURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, apperr.Upstream(
			"payment gateway rejected the session",
			fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(b)),
		)
	}

	var result createSessionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperr.Upstream("payment gateway returned an unreadable response", err)
	}

	return &Session{ID: result.ID, CheckoutURL: result.URL}, nil
}

// webhookEnvelope is the gateway's wire format. Only unmarshalled after the
// signature over the raw bytes has been verified.
type webhookEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		SessionID     string `json:"session_id"`
		AmountTotal   int64  `json:"amount_total"`
		Currency      string `json:"currency"`
		CustomerEmail string `json:"customer_email"`
		CustomerName  string `json:"customer_name"`
		Metadata      struct {
			OrderID string `json:"order_id"`
		} `json:"metadata"`
		LineItems []SessionItem `json:"line_items"`
	} `json:"data"`
}

// VerifyWebhook checks the HMAC signature over the exact raw body and only
// then parses it. The header carries `t=<unix>,v1=<hex>`; the signed
// message is "<t>.<body>". An unverifiable payload is never trusted.
func (c *gatewayClientImpl) VerifyWebhook(rawBody []byte, signatureHeader string) (*model.PaymentEvent, error) {
	if err := verifySignature(c.webhookSecret, rawBody, signatureHeader, c.now()); err != nil {
		return nil, err
	}

	var env webhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, apperr.Validation("webhook payload is not valid JSON")
	}

	event := &model.PaymentEvent{
		EventID:       env.ID,
		EventType:     env.Type,
		SessionID:     env.Data.SessionID,
		Amount:        env.Data.AmountTotal,
		Currency:      env.Data.Currency,
		CustomerEmail: env.Data.CustomerEmail,
		CustomerName:  env.Data.CustomerName,
		OrderID:       env.Data.Metadata.OrderID,
	}
	for _, it := range env.Data.LineItems {
		event.Items = append(event.Items, model.EventItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return event, nil
}

func verifySignature(secret, body []byte, header string, now time.Time) error {
	if header == "" {
		return apperr.Signature("missing webhook signature header")
	}

	var ts int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return apperr.Signature("malformed webhook signature timestamp")
			}
			ts = parsed
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if ts == 0 || len(candidates) == 0 {
		return apperr.Signature("malformed webhook signature header")
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return apperr.Signature("webhook signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return apperr.Signature("webhook signature mismatch")
}

// SignWebhook produces a signature header for a payload; the counterpart of
// verifySignature, used by tests and local gateway simulation.
func SignWebhook(secret, body []byte, at time.Time) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
