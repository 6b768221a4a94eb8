package config

import (
	"time"

	"github.com/mauv0809/training-match/internal/handicap"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBName         string        `env:"DB_NAME" envDefault:"training.db"`
	DBQueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	Turso          TursoConfig   `envPrefix:"TURSO_"`

	Slack     SlackConfig
	ProjectID string `env:"GCP_PROJECT"`
	Topic     string `env:"PUBSUB_TOPIC" envDefault:"training-match-events"`

	NotifyBuffer  int           `env:"NOTIFY_BUFFER" envDefault:"256"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	StaleAfter    time.Duration `env:"STALE_AFTER" envDefault:"24h"`

	Handicap handicap.Config `envPrefix:"HANDICAP_"`
}

type SlackConfig struct {
	Token     string `env:"SLACK_BOT_TOKEN"`
	ChannelID string `env:"SLACK_CHANNEL_ID"`
	DryRun    bool   `env:"SLACK_DRY_RUN" envDefault:"false"`
}

type TursoConfig struct {
	PrimaryURL string `env:"PRIMARY_URL"`
	AuthToken  string `env:"AUTH_TOKEN"`
}

// SlackEnabled reports whether match results should be posted to Slack.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}

// PubSubEnabled reports whether events should be published to Pub/Sub.
func (c Config) PubSubEnabled() bool {
	return c.ProjectID != ""
}
