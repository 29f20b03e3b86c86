package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LogMailer records outbound email in the log instead of delivering it.
// Used when no Resend API key is configured, typically in development.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and returns a synthetic message ID
func (m *LogMailer) Send(_ context.Context, email *Email) (string, error) {
	id := fmt.Sprintf("log-%d", time.Now().UnixNano())
	m.logger.Info("email not sent (mailer not configured)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("message_id", id))
	return id, nil
}
