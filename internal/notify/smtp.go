package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const DefaultSMTPPort = 587

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
}

// SMTP sends plain-text mail over STARTTLS with PLAIN auth.
type SMTP struct {
	cfg    SMTPConfig
	logger *zap.Logger
	send   func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTP(cfg SMTPConfig, logger *zap.Logger) (*SMTP, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultSMTPPort
	}
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = cfg.Username
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp sender address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SMTP{cfg: cfg, logger: logger}
	s.send = s.dialAndSend
	return s, nil
}

func (s *SMTP) SendEmail(ctx context.Context, to, subject, body string) bool {
	msg, err := s.message(to, subject, body)
	if err == nil {
		err = s.send(ctx, msg)
	}
	if err != nil {
		s.logger.Warn("error sending email", zap.String("to", to), zap.Error(err))
		return false
	}

	s.logger.Info("email sent", zap.String("to", to))
	return true
}

func (s *SMTP) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (s *SMTP) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("deliver mail: %w", err)
	}
	return nil
}
