package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"fidelbot/internal/database"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// Contact is the public handle shown on the contact page, e.g. "@support".
	Contact string `yaml:"contact" envconfig:"TELEGRAM_CONTACT"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// RedisConfig specifies the key/value store connection used for quiz blobs
// and per-session score counters.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// QuizConfig holds behaviour knobs of the quiz flow.
type QuizConfig struct {
	// FreshnessWindowSeconds discards updates older than this many seconds
	// to avoid re-processing Telegram redeliveries; 0 -> 30.
	FreshnessWindowSeconds int `yaml:"freshness_window_seconds" envconfig:"QUIZ_FRESHNESS_WINDOW_SECONDS"`
	// ContentDir optionally points at a directory of question-set JSON
	// files seeded into the store at startup.
	ContentDir string `yaml:"content_dir" envconfig:"QUIZ_CONTENT_DIR"`
}

// BroadcastConfig tunes the admin broadcast fan-out.
type BroadcastConfig struct {
	PageSize  int `yaml:"page_size" envconfig:"BROADCAST_PAGE_SIZE"`
	BatchSize int `yaml:"batch_size" envconfig:"BROADCAST_BATCH_SIZE"`
	PauseMS   int `yaml:"pause_ms" envconfig:"BROADCAST_PAUSE_MS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Database  database.Config `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Quiz      QuizConfig      `yaml:"quiz"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// FreshnessWindow returns the staleness guard window as a duration.
func (c *Config) FreshnessWindow() time.Duration {
	sec := c.Quiz.FreshnessWindowSeconds
	if sec <= 0 {
		sec = 30
	}
	return time.Duration(sec) * time.Second
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		cfg.Redis.Addr = "localhost:6379"
	}

	if cfg.Quiz.FreshnessWindowSeconds < 0 {
		return fmt.Errorf("quiz.freshness_window_seconds must be >= 0")
	}

	if cfg.Broadcast.PageSize <= 0 {
		cfg.Broadcast.PageSize = 500
	}
	if cfg.Broadcast.BatchSize <= 0 {
		cfg.Broadcast.BatchSize = 30
	}
	if cfg.Broadcast.PauseMS <= 0 {
		cfg.Broadcast.PauseMS = 1000
	}
	return nil
}
