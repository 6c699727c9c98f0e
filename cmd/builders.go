package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/agent"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai/gemini"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/ai/langchain"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/analysis"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/logger"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/metrics"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/notify"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/retry"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/secrets"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/tools"

	"go.uber.org/zap"
)

// pipeline holds everything a command needs to analyze profiles.
type pipeline struct {
	service *analysis.Service
	store   *history.SQLiteStore
	metrics *metrics.Metrics
	config  *Config
}

func (r *pipeline) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

func newPipeline(ctx context.Context, config *Config, interactive bool, log *zap.Logger) (*pipeline, error) {
	if config == nil || config.AI == nil {
		return nil, errors.New("ai configuration is required")
	}

	m := metrics.New()

	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building text generator: %w", err)
	}

	dispatcher, err := newDispatcher(config.Notify, interactive, log)
	if err != nil {
		return nil, fmt.Errorf("building notification dispatcher: %w", err)
	}

	subject := ""
	if config.Notify != nil {
		subject = config.Notify.Subject
	}

	registry, err := tools.NewRegistry(log,
		tools.NewScoreProfile(generator),
		tools.GenerateOutreach{},
		tools.NewSendNotifications(dispatcher, subject, log),
	)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	agentCfg, err := newAgentConfig(config.Agent)
	if err != nil {
		return nil, err
	}

	runner, err := agent.New(generator, registry, agentCfg, log, agent.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("building agent: %w", err)
	}

	recorder, store, err := newRecorder(ctx, config.History, log)
	if err != nil {
		return nil, fmt.Errorf("building run history: %w", err)
	}

	return &pipeline{
		service: analysis.NewService(runner, recorder, runner.Config().MaxProfileChars, log),
		store:   store,
		metrics: m,
		config:  config,
	}, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	var (
		generator ai.Generator
		model     string
	)

	switch provider {
	case "", gemini.ProviderName:
		provider = gemini.ProviderName
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: gc.APIKey,
			File:  gc.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		var opts []gemini.Option
		if gc.Temperature > 0 {
			opts = append(opts, gemini.WithTemperature(gc.Temperature))
		}

		g, err := gemini.NewGenerator(ctx, apiKey, gc.Model, opts...)
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()
	case langchain.ProviderName:
		oc := cfg.OpenAI
		if oc == nil {
			oc = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: oc.APIKey,
			File:  oc.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		g, err := langchain.NewOpenAI(langchain.Config{
			APIKey:      apiKey,
			Model:       oc.Model,
			BaseURL:     oc.BaseURL,
			Temperature: oc.Temperature,
		})
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	genLogger := logger.ForProvider(log, provider, model).With(
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	logged := ai.WithLogging(generator, genLogger, cfg.MaxLogLength)
	return retry.NewGenerator(logged, cfg.MaxRetries, cfg.RetryDelay, genLogger), nil
}

func newDispatcher(cfg *NotifyConfig, interactive bool, log *zap.Logger) (notify.Dispatcher, error) {
	if cfg == nil {
		cfg = &NotifyConfig{}
	}

	var email notify.EmailSender
	if ec := cfg.Email; ec != nil && strings.TrimSpace(ec.Username) != "" {
		password, err := secrets.Load(secrets.Source{
			Name:  "smtp password",
			Value: ec.Password,
			File:  ec.PasswordFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set notify.email.password-file or SMTP_PASSWORD)", err)
		}

		smtp, err := notify.NewSMTP(notify.SMTPConfig{
			Host:     ec.Host,
			Port:     ec.Port,
			Username: ec.Username,
			Password: password,
			From:     ec.From,
		}, log)
		if err != nil {
			return nil, err
		}
		email = smtp
	} else {
		log.Info("email delivery is not configured, messages will only be logged")
	}

	var sms notify.SMSSender
	if sc := cfg.SMS; sc != nil && strings.TrimSpace(sc.AccountSID) != "" {
		token, err := secrets.Load(secrets.Source{
			Name:  "twilio auth token",
			Value: sc.AuthToken,
			File:  sc.AuthTokenFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set notify.sms.auth-token-file or TWILIO_AUTH_TOKEN)", err)
		}

		twilio, err := notify.NewTwilio(notify.TwilioConfig{
			AccountSID: sc.AccountSID,
			AuthToken:  token,
			From:       sc.From,
		}, log)
		if err != nil {
			return nil, err
		}
		sms = twilio
	} else {
		log.Info("sms delivery is not configured, messages will only be logged")
	}

	var dispatcher notify.Dispatcher = notify.NewMulti(email, sms, log)
	if interactive {
		dispatcher = notify.NewConfirm(dispatcher)
	}
	return dispatcher, nil
}

func newAgentConfig(cfg *AgentConfig) (agent.Config, error) {
	if cfg == nil {
		return agent.Config{}, nil
	}

	policy, err := agent.ParsePolicyMode(cfg.Policy)
	if err != nil {
		return agent.Config{}, err
	}

	unknownTool, err := agent.ParseUnknownToolMode(cfg.UnknownTool)
	if err != nil {
		return agent.Config{}, err
	}

	return agent.Config{
		MaxIterations:      cfg.MaxIterations,
		MaxProfileChars:    cfg.MaxProfileChars,
		MaxTranscriptChars: cfg.MaxTranscriptChars,
		Policy:             policy,
		UnknownTool:        unknownTool,
		StepTimeout:        cfg.StepTimeout,
	}, nil
}

// newRecorder returns the SQLite store separately so callers can list and close it.
func newRecorder(ctx context.Context, cfg *HistoryConfig, log *zap.Logger) (history.Recorder, *history.SQLiteStore, error) {
	if cfg == nil {
		return history.Nop{}, nil, nil
	}

	var (
		recorders history.Multi
		store     *history.SQLiteStore
	)

	if path := strings.TrimSpace(cfg.SQLitePath); path != "" {
		s, err := history.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		store = s
		recorders = append(recorders, s)
	}

	if sc := cfg.Sheets; sc != nil && strings.TrimSpace(sc.SpreadsheetID) != "" {
		sheets, err := history.NewSheets(ctx, sc.SpreadsheetID, sc.CredentialsFile, sc.Range)
		if err != nil {
			if store != nil {
				store.Close()
			}
			return nil, nil, err
		}
		recorders = append(recorders, sheets)
		log.Info("recording runs to google sheets", zap.String("spreadsheet_id", sc.SpreadsheetID))
	}

	if len(recorders) == 0 {
		return history.Nop{}, nil, nil
	}
	return recorders, store, nil
}
