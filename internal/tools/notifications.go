package tools

import (
	"context"
	"fmt"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/extract"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/notify"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/protocol"
	"go.uber.org/zap"
)

const (
	SendNotificationsName = "send_notifications"
	NotifyThreshold       = 90

	defaultSubject = "Exciting Opportunity"
)

// SendNotifications contacts high scoring candidates by email and SMS.
type SendNotifications struct {
	dispatcher notify.Dispatcher
	subject    string
	logger     *zap.Logger
}

func NewSendNotifications(dispatcher notify.Dispatcher, subject string, logger *zap.Logger) *SendNotifications {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = notify.NewLog(logger)
	}
	if subject == "" {
		subject = defaultSubject
	}
	return &SendNotifications{dispatcher: dispatcher, subject: subject, logger: logger}
}

type notifyParams struct {
	ProfileData    map[string]any `mapstructure:"profile_data"`
	Score          any            `mapstructure:"score"`
	MessageSection string         `mapstructure:"message_section"`
}

func (s *SendNotifications) Name() string { return SendNotificationsName }

func (s *SendNotifications) Description() string { return "Sends notifications" }

func (s *SendNotifications) Signature() string {
	return "send_notifications(profile_data, score, message_section)"
}

func (s *SendNotifications) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"score"},
		"properties": map[string]any{
			"profile_data":    map[string]any{"type": []string{"object", "null"}},
			"score":           map[string]any{"type": []string{"integer", "number", "string"}},
			"message_section": map[string]any{"type": []string{"string", "null"}},
		},
	}
}

// Call returns whether at least one notification was attempted. Delivery
// failures are left to the dispatcher to log.
func (s *SendNotifications) Call(ctx context.Context, params map[string]any) (any, error) {
	var p notifyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}

	score, ok := protocol.Int(p.Score)
	if !ok {
		return nil, fmt.Errorf("score %v is not a number", p.Score)
	}
	if score < NotifyThreshold {
		s.logger.Info("score below notification threshold", zap.Int("score", score), zap.Int("threshold", NotifyThreshold))
		return false, nil
	}

	details := profile.DetailsOf(p.ProfileData)
	if run, ok := RunFrom(ctx); ok {
		fallback := run.Profile.Details()
		if details.Name == "" {
			details.Name = fallback.Name
		}
		if details.Email == "" {
			details.Email = fallback.Email
		}
		if details.Phone == "" {
			details.Phone = fallback.Phone
		}
	}

	body := extract.Markdown(RenderOutreach(details.Name, score, p.MessageSection))
	s.logger.Info("sending notifications", zap.String("name", details.DisplayName()), zap.Int("score", score))

	dispatched := false
	if details.Email != "" {
		s.dispatcher.SendEmail(ctx, details.Email, s.subject, body)
		dispatched = true
	}
	if details.Phone != "" {
		s.dispatcher.SendSMS(ctx, details.Phone, body)
		dispatched = true
	}
	if !dispatched {
		s.logger.Warn("no contact details for notification", zap.String("name", details.DisplayName()))
	}

	return dispatched, nil
}
