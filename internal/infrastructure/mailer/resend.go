// Package mailer sends transactional and campaign email through Resend.
package mailer

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
	resendAPIBaseURL = "https://api.resend.com"
	resendEmailsPath = "/emails"
)

// ErrRecipientRejected is returned when Resend refuses the recipient address
var ErrRecipientRejected = errors.New("mailer: recipient rejected")

// Email is one outbound message
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// ResendConfig holds Resend API settings
type ResendConfig struct {
	APIKey      string
	DefaultFrom string
}

// Validate checks the config allows sending
func (c *ResendConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("mailer: API key is required")
	}
	if c.DefaultFrom == "" {
		return fmt.Errorf("mailer: default from address is required")
	}
	return nil
}

// ResendMailer implements email delivery via the Resend HTTP API
type ResendMailer struct {
	config     *ResendConfig
	httpClient *http.Client
	baseURL    string
}

// NewResendMailer creates a new ResendMailer
func NewResendMailer(config *ResendConfig) (*ResendMailer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ResendMailer{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: resendAPIBaseURL,
	}, nil
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendSendResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers one email and returns the provider message ID
func (m *ResendMailer) Send(ctx context.Context, email *Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("mailer: at least one recipient is required")
	}
	if email.Subject == "" {
		return "", fmt.Errorf("mailer: subject is required")
	}
	from := email.From
	if from == "" {
		from = m.config.DefaultFrom
	}

	body := resendSendRequest{
		From:    from,
		To:      email.To,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("mailer: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+resendEmailsPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("mailer: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailer: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mailer: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp resendErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			if resp.StatusCode == http.StatusUnprocessableEntity {
				return "", fmt.Errorf("%w: %s", ErrRecipientRejected, errResp.Message)
			}
			return "", fmt.Errorf("mailer: API error %s: %s", errResp.Name, errResp.Message)
		}
		return "", fmt.Errorf("mailer: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var sendResp resendSendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return "", fmt.Errorf("mailer: failed to parse response: %w", err)
	}
	return sendResp.ID, nil
}
