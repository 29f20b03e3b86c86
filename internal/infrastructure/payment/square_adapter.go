// Package payment integrates the Square payments API for invoice charges.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	squareAPIBaseURL        = "https://connect.squareup.com"
	squareSandboxAPIBaseURL = "https://connect.squareupsandbox.com"
	squarePaymentsPath      = "/v2/payments"
	squareAPIVersion        = "2024-06-04"
)

// ErrPaymentDeclined is returned when Square rejects the charge itself
// rather than the request.
var ErrPaymentDeclined = errors.New("square: payment declined")

// StatusCompleted is the Square payment status for a settled charge,
// both in charge responses and webhook notifications.
const StatusCompleted = "COMPLETED"

// ChargeRequest describes one card charge. SourceID is the tokenized card
// nonce produced by Square's web SDK on the public payment page.
type ChargeRequest struct {
	SourceID       string
	IdempotencyKey string
	AmountCents    int64
	Currency       string
	ReferenceID    string // Invoice payment token, echoed back by Square webhooks
	Note           string
}

// ChargeResult is the settled charge
type ChargeResult struct {
	PaymentID   string
	Status      string
	ReceiptURL  string
	RawResponse string
}

// SquareAdapter charges cards through the Square payments API
type SquareAdapter struct {
	config     *SquareConfig
	httpClient *http.Client
}

// NewSquareAdapter creates a new Square adapter
func NewSquareAdapter(config *SquareConfig) (*SquareAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SquareAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squareCreatePaymentRequest struct {
	SourceID       string      `json:"source_id"`
	IdempotencyKey string      `json:"idempotency_key"`
	AmountMoney    squareMoney `json:"amount_money"`
	LocationID     string      `json:"location_id"`
	ReferenceID    string      `json:"reference_id,omitempty"`
	Note           string      `json:"note,omitempty"`
}

type squareCreatePaymentResponse struct {
	Payment struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		ReceiptURL string `json:"receipt_url"`
	} `json:"payment"`
	Errors []squareError `json:"errors"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// CreatePayment charges a tokenized card. The idempotency key makes a
// retried call return the original charge instead of a duplicate one.
func (a *SquareAdapter) CreatePayment(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	if req.SourceID == "" {
		return nil, fmt.Errorf("square: source ID is required")
	}
	if req.IdempotencyKey == "" {
		return nil, fmt.Errorf("square: idempotency key is required")
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("square: amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	body := squareCreatePaymentRequest{
		SourceID:       req.SourceID,
		IdempotencyKey: req.IdempotencyKey,
		AmountMoney:    squareMoney{Amount: req.AmountCents, Currency: currency},
		LocationID:     a.config.LocationID,
		ReferenceID:    req.ReferenceID,
		Note:           req.Note,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("square: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, squarePaymentsPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var resp squareCreatePaymentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("square: failed to parse response: %w", err)
	}
	if resp.Payment.ID == "" {
		return nil, fmt.Errorf("square: response carried no payment: %s", string(respBody))
	}

	return &ChargeResult{
		PaymentID:   resp.Payment.ID,
		Status:      resp.Payment.Status,
		ReceiptURL:  resp.Payment.ReceiptURL,
		RawResponse: string(respBody),
	}, nil
}

func (a *SquareAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	url := a.config.BaseURL() + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("square: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Square-Version", squareAPIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("square: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("square: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp squareCreatePaymentResponse
		if json.Unmarshal(respBody, &errResp) == nil && len(errResp.Errors) > 0 {
			first := errResp.Errors[0]
			if first.Category == "PAYMENT_METHOD_ERROR" {
				return nil, fmt.Errorf("%w: %s (%s)", ErrPaymentDeclined, first.Detail, first.Code)
			}
			return nil, fmt.Errorf("square: API error %s: %s", first.Code, first.Detail)
		}
		return nil, fmt.Errorf("square: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
