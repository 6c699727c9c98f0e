package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/prasad8mhatre/smart-recruiter-ai/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app       = "smart-recruiter"
	envPrefix = "SMART_RECRUITER"
)

type Config struct {
	AI      *AIConfig      `mapstructure:"ai"`
	Agent   *AgentConfig   `mapstructure:"agent"`
	Notify  *NotifyConfig  `mapstructure:"notify"`
	History *HistoryConfig `mapstructure:"history"`
	Server  *ServerConfig  `mapstructure:"server"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	MaxRetries   int           `mapstructure:"max-retries"`
	RetryDelay   time.Duration `mapstructure:"retry-delay"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base-url"`
	Temperature float64 `mapstructure:"temperature"`
}

type AgentConfig struct {
	MaxIterations      int           `mapstructure:"max-iterations"`
	MaxProfileChars    int           `mapstructure:"max-profile-chars"`
	MaxTranscriptChars int           `mapstructure:"max-transcript-chars"`
	Policy             string        `mapstructure:"policy"`
	UnknownTool        string        `mapstructure:"unknown-tool"`
	StepTimeout        time.Duration `mapstructure:"step-timeout"`
	Concurrency        int           `mapstructure:"concurrency"`
}

type NotifyConfig struct {
	Subject string       `mapstructure:"subject"`
	Email   *EmailConfig `mapstructure:"email"`
	SMS     *SMSConfig   `mapstructure:"sms"`
}

type EmailConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	From         string `mapstructure:"from"`
}

type SMSConfig struct {
	AccountSID    string `mapstructure:"account-sid"`
	AuthToken     string `mapstructure:"auth-token"`
	AuthTokenFile string `mapstructure:"auth-token-file"`
	From          string `mapstructure:"from"`
}

type HistoryConfig struct {
	SQLitePath string        `mapstructure:"sqlite-path"`
	Sheets     *SheetsConfig `mapstructure:"sheets"`
}

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	CredentialsFile string `mapstructure:"credentials-file"`
	Range           string `mapstructure:"range"`
}

type ServerConfig struct {
	Listen       string   `mapstructure:"listen"`
	AllowOrigins []string `mapstructure:"allow-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "smart-recruiter scores candidate profiles against a job description with an LLM agent",
	}
)

// env bindings kept compatible with the deployment variables of the service.
var envBindings = map[string]string{
	"ai.gemini.api-key":             "GEMINI_API_KEY",
	"ai.openai.api-key":             "OPENAI_API_KEY",
	"notify.email.host":             "SMTP_SERVER",
	"notify.email.port":             "SMTP_PORT",
	"notify.email.username":         "SMTP_USERNAME",
	"notify.email.password":         "SMTP_PASSWORD",
	"notify.sms.account-sid":        "TWILIO_ACCOUNT_SID",
	"notify.sms.auth-token":         "TWILIO_AUTH_TOKEN",
	"notify.sms.from":               "TWILIO_PHONE_NUMBER",
	"history.sheets.spreadsheet-id": "GOOGLE_SPREADSHEET_ID",
	"port":                          "PORT",
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	for key, env := range envBindings {
		if err := viper.BindEnv(key, envPrefix+"_"+envKey(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is smart-recruiter.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func envKey(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.max-retries", 2)
	v.SetDefault("ai.retry-delay", 2*time.Second)
	v.SetDefault("ai.max-log-length", 400)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")

	v.SetDefault("agent.max-iterations", 5)
	v.SetDefault("agent.max-profile-chars", 1000)
	v.SetDefault("agent.max-transcript-chars", 8000)
	v.SetDefault("agent.policy", "feedback")
	v.SetDefault("agent.unknown-tool", "fail")
	v.SetDefault("agent.step-timeout", time.Duration(0))
	v.SetDefault("agent.concurrency", 4)

	v.SetDefault("notify.subject", "Exciting Opportunity")
	v.SetDefault("notify.email.host", "smtp.gmail.com")
	v.SetDefault("notify.email.port", 587)

	v.SetDefault("history.sqlite-path", app+".db")
	v.SetDefault("history.sheets.credentials-file", "credentials.json")
	v.SetDefault("history.sheets.range", "Sheet1!A1")

	v.SetDefault("server.listen", "")
	v.SetDefault("server.allow-origins", []string{"*"})
}

func initConfig() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults and environment are enough to run without a file.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// setup builds the logger and the config every command starts from.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		l.Fatal("config is required")
	}

	l.Debug("starting with config", zap.String("config_file", viper.ConfigFileUsed()))
	return l, config
}
