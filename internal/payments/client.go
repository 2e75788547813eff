package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/port"
	"golang.org/x/text/currency"
)

// Client captures payments through the processor's REST API. It covers only
// the boundary the checkout flow needs; receipts, refunds and the rest of the
// payment lifecycle live with the processor.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

var _ port.PaymentProcessor = (*Client)(nil)

func New(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL is empty")
	}
	if token == "" {
		return nil, errors.New("access token is empty")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type createPaymentRequest struct {
	SourceID       string    `json:"source_id"`
	OrderID        string    `json:"order_id"`
	AmountMoney    wireMoney `json:"amount_money"`
	IdempotencyKey string    `json:"idempotency_key"`
}

type wireMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paymentEnvelope struct {
	Payment wirePayment `json:"payment"`
}

type wirePayment struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	AmountMoney wireMoney `json:"amount_money"`
	ReceiptURL  string    `json:"receipt_url"`
}

func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (domain.Receipt, error) {
	var zero domain.Receipt

	if req.SourceID == "" {
		return zero, fmt.Errorf("source id is empty: %w", domain.ErrValidation)
	}
	if req.Amount.IsZero() {
		return zero, fmt.Errorf("amount is zero, use the zero-settle path: %w", domain.ErrValidation)
	}
	if req.IdempotencyKey == "" {
		return zero, fmt.Errorf("idempotency key is empty: %w", domain.ErrValidation)
	}

	body := createPaymentRequest{
		SourceID: req.SourceID,
		OrderID:  req.OrderID,
		AmountMoney: wireMoney{
			Amount:   req.Amount.Amount,
			Currency: req.Amount.Currency.String(),
		},
		IdempotencyKey: req.IdempotencyKey,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/payments", bytes.NewReader(b))
	if err != nil {
		return zero, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("hc.Do: %v: %w", err, domain.ErrTransient)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return zero, mapStatusError(res)
	}

	var envelope paymentEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("json.Decode: %w", err)
	}

	amount, err := mapWireMoneyToDomain(envelope.Payment.AmountMoney)
	if err != nil {
		return zero, fmt.Errorf("mapWireMoneyToDomain: %w", err)
	}

	return domain.Receipt{
		PaymentID:  envelope.Payment.ID,
		OrderID:    envelope.Payment.OrderID,
		Amount:     amount,
		ReceiptURL: envelope.Payment.ReceiptURL,
	}, nil
}

func mapWireMoneyToDomain(m wireMoney) (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(m.Currency)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", m.Currency, err)
	}

	return domain.Money{Amount: m.Amount, Currency: parsedCurrency}, nil
}

func mapStatusError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	detail := strings.TrimSpace(string(body))

	var kind error
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		kind = domain.ErrAuth
	case res.StatusCode == http.StatusNotFound:
		kind = domain.ErrNotFound
	case res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests:
		kind = domain.ErrTransient
	default:
		kind = domain.ErrValidation
	}

	if detail == "" {
		return kind
	}

	return fmt.Errorf("%s: %w", detail, kind)
}
