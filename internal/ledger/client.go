package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nikolayk812/cartledger/internal/domain"
	"github.com/nikolayk812/cartledger/internal/port"
)

// Client talks to the external order ledger over its REST API. It is the only
// component with network access to the order of record. Every ledger-reported
// failure is mapped 1:1 into the domain error taxonomy; nothing is swallowed
// or downgraded.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	logger  *slog.Logger
}

var (
	_ port.OrderLedger       = (*Client)(nil)
	_ port.LocationDirectory = (*Client)(nil)
)

func New(baseURL, token string, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL is empty")
	}
	if token == "" {
		return nil, errors.New("access token is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order

	if orderID == "" {
		return o, fmt.Errorf("orderID is empty: %w", domain.ErrValidation)
	}

	var envelope orderEnvelope
	if err := c.do(ctx, http.MethodGet, "/v2/orders/"+orderID, nil, &envelope); err != nil {
		return o, fmt.Errorf("c.do: %w", err)
	}

	order, err := mapWireOrderToDomain(envelope.Order)
	if err != nil {
		return o, fmt.Errorf("mapWireOrderToDomain: %w", err)
	}

	return order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, req domain.MutationRequest) (domain.Order, error) {
	var o domain.Order

	if req.TargetOrderID == "" {
		return o, fmt.Errorf("target order id is empty: %w", domain.ErrValidation)
	}
	if req.IdempotencyKey == "" {
		return o, fmt.Errorf("idempotency key is empty: %w", domain.ErrValidation)
	}

	body := mapMutationToWire(req)

	var envelope orderEnvelope
	if err := c.do(ctx, http.MethodPut, "/v2/orders/"+req.TargetOrderID, body, &envelope); err != nil {
		return o, fmt.Errorf("c.do: %w", err)
	}

	order, err := mapWireOrderToDomain(envelope.Order)
	if err != nil {
		return o, fmt.Errorf("mapWireOrderToDomain: %w", err)
	}

	return order, nil
}

func (c *Client) PayOrderZero(ctx context.Context, orderID, idempotencyKey string) (domain.Receipt, error) {
	var r domain.Receipt

	if orderID == "" {
		return r, fmt.Errorf("orderID is empty: %w", domain.ErrValidation)
	}
	if idempotencyKey == "" {
		return r, fmt.Errorf("idempotency key is empty: %w", domain.ErrValidation)
	}

	body := payOrderRequest{IdempotencyKey: idempotencyKey}

	var envelope orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/v2/orders/"+orderID+"/pay", body, &envelope); err != nil {
		return r, fmt.Errorf("c.do: %w", err)
	}

	order, err := mapWireOrderToDomain(envelope.Order)
	if err != nil {
		return r, fmt.Errorf("mapWireOrderToDomain: %w", err)
	}

	return domain.Receipt{
		OrderID: order.ID,
		Amount:  order.Total,
	}, nil
}

func (c *Client) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var envelope locationsEnvelope
	if err := c.do(ctx, http.MethodGet, "/v2/locations", nil, &envelope); err != nil {
		return nil, fmt.Errorf("c.do: %w", err)
	}

	return mapWireLocationsToDomain(envelope.Locations), nil
}

// do sends one JSON request and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		// Transport failures and timeouts are retryable with the same request.
		return fmt.Errorf("hc.Do: %v: %w", err, domain.ErrTransient)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return c.mapError(res)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

func (c *Client) mapError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	var envelope errorEnvelope
	detail := strings.TrimSpace(string(b))
	if err := json.Unmarshal(b, &envelope); err == nil && len(envelope.Errors) > 0 {
		if envelope.Errors[0].Detail != "" {
			detail = envelope.Errors[0].Detail
		} else {
			detail = envelope.Errors[0].Code
		}
	}

	kind := statusToError(res.StatusCode, envelope.Errors)

	c.logger.Debug("ledger rejected request",
		"status", res.StatusCode,
		"detail", detail,
	)

	if detail == "" {
		return kind
	}

	return fmt.Errorf("%s: %w", detail, kind)
}

func statusToError(status int, errs []wireError) error {
	// The ledger reports staleness with an explicit code regardless of status.
	for _, e := range errs {
		if e.Code == "VERSION_MISMATCH" || e.Code == "CONFLICT" {
			return domain.ErrVersionConflict
		}
	}

	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusConflict:
		return domain.ErrVersionConflict
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrAuth
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return domain.ErrTransient
	default:
		return domain.ErrValidation
	}
}
