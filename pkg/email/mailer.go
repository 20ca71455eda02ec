// Package email sends account mail. Delivery is an external concern;
// the default implementation only records the send in the log so the
// rest of the system can treat mail as fire-and-forget.
package email

import (
	"context"

	"go.uber.org/zap"
)

// Mailer sends account email.
type Mailer interface {
	// SendWelcome greets a newly registered user.
	SendWelcome(ctx context.Context, to string) error

	// SendPasswordReset delivers a password reset token.
	SendPasswordReset(ctx context.Context, to, token string) error
}

// LogMailer writes mail events to the log instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a log-backed mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger.Named("email")}
}

// SendWelcome implements Mailer.
func (m *LogMailer) SendWelcome(ctx context.Context, to string) error {
	m.logger.Info("welcome mail", zap.String("to", to))
	return nil
}

// SendPasswordReset implements Mailer.
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	// The token itself stays out of the log.
	m.logger.Info("password reset mail", zap.String("to", to))
	return nil
}

var _ Mailer = (*LogMailer)(nil)
