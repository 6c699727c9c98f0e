// Package notify delivers outreach messages to candidates. Delivery is best
// effort: senders report whether an attempt was made and log failures.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher sends outreach notifications.
type Dispatcher interface {
	SendEmail(ctx context.Context, to, subject, body string) bool
	SendSMS(ctx context.Context, to, body string) bool
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) bool
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) bool
}

// Multi routes email and SMS to separate senders. A nil sender falls back to Log.
type Multi struct {
	Email EmailSender
	SMS   SMSSender
}

func NewMulti(email EmailSender, sms SMSSender, logger *zap.Logger) *Multi {
	fallback := NewLog(logger)
	if email == nil {
		email = fallback
	}
	if sms == nil {
		sms = fallback
	}
	return &Multi{Email: email, SMS: sms}
}

func (m *Multi) SendEmail(ctx context.Context, to, subject, body string) bool {
	return m.Email.SendEmail(ctx, to, subject, body)
}

func (m *Multi) SendSMS(ctx context.Context, to, body string) bool {
	return m.SMS.SendSMS(ctx, to, body)
}

// Log only records what would have been sent.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) SendEmail(_ context.Context, to, subject, body string) bool {
	l.logger.Info("would send email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)),
	)
	return true
}

func (l *Log) SendSMS(_ context.Context, to, body string) bool {
	l.logger.Info("would send sms", zap.String("to", to), zap.Int("body_length", len(body)))
	return true
}
