package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio sends SMS through the Twilio REST API.
type Twilio struct {
	api    messageCreator
	from   string
	logger *zap.Logger
}

func NewTwilio(cfg TwilioConfig, logger *zap.Logger) (*Twilio, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilio account sid and auth token are required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("twilio sender number is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Twilio{api: client.Api, from: cfg.From, logger: logger}, nil
}

// SendSMS ignores ctx; the Twilio client has no context support.
func (t *Twilio) SendSMS(_ context.Context, to, body string) bool {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		t.logger.Warn("error sending sms", zap.String("to", to), zap.Error(err))
		return false
	}

	fields := []zap.Field{zap.String("to", to)}
	if resp != nil && resp.Sid != nil {
		fields = append(fields, zap.String("sid", *resp.Sid))
	}
	t.logger.Info("sms sent", fields...)
	return true
}
