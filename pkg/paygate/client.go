// Package paygate talks to the external payment provider that hosts the
// redirect-based checkout flow for winner and charity settlements.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTimeout is returned when the provider does not answer within the client
// timeout. Callers surface it as a normal failure, never a hang.
var ErrTimeout = errors.New("paygate: request timed out")

// Session is a provider checkout session. The caller redirects the payee to
// URL; completion arrives later on the callback endpoint.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client represents a payment provider API client
type Client struct {
	BaseURL string
	APIKey  string
	Mock    bool
	client  *http.Client
}

// NewClient creates a new payment provider client
func NewClient(baseURL, apiKey string, mock bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Mock:    mock,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sessionRequest struct {
	PayeeAccount string `json:"payeeAccount"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Label        string `json:"label"`
}

// CreateSession asks the provider for a checkout session paying `amount` to
// the given payee account. The label shows up on the payee's statement.
func (c *Client) CreateSession(ctx context.Context, payeeAccount string, amount decimal.Decimal, label string) (*Session, error) {
	if c.Mock {
		return c.mockCreateSession(payeeAccount, amount)
	}

	body, err := json.Marshal(sessionRequest{
		PayeeAccount: payeeAccount,
		Amount:       amount.StringFixed(2),
		Currency:     "USD",
		Label:        label,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("paygate: session request rejected with status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, errors.New("paygate: provider returned no redirect url")
	}
	return &session, nil
}

// mockCreateSession fabricates a session for local development and tests
func (c *Client) mockCreateSession(payeeAccount string, amount decimal.Decimal) (*Session, error) {
	id := fmt.Sprintf("cs_mock_%s_%d", payeeAccount, time.Now().UnixNano())
	return &Session{
		ID:  id,
		URL: fmt.Sprintf("https://pay.example.com/checkout/%s?amount=%s", id, amount.StringFixed(2)),
	}, nil
}
