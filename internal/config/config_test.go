package config

import (
	"testing"
	"time"

	"github.com/mauv0809/training-match/internal/handicap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.DBQueryTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.StaleAfter)
	assert.Equal(t, "training-match-events", cfg.Topic)
	assert.Equal(t, handicap.DefaultConfig(), cfg.Handicap)
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_NAME", "club.db")
	t.Setenv("TURSO_PRIMARY_URL", "libsql://club.turso.io")
	t.Setenv("TURSO_AUTH_TOKEN", "secret")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-1")
	t.Setenv("SLACK_CHANNEL_ID", "C1")
	t.Setenv("GCP_PROJECT", "club-project")
	t.Setenv("STALE_AFTER", "36h")
	t.Setenv("HANDICAP_MAX_PER_SERIES", "8")
	t.Setenv("HANDICAP_REQUIRED_MATCHES", "5")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "club.db", cfg.DBName)
	assert.Equal(t, "libsql://club.turso.io", cfg.Turso.PrimaryURL)
	assert.Equal(t, "secret", cfg.Turso.AuthToken)
	assert.True(t, cfg.SlackEnabled())
	assert.True(t, cfg.PubSubEnabled())
	assert.Equal(t, 36*time.Hour, cfg.StaleAfter)
	assert.Equal(t, 8.0, cfg.Handicap.MaxPerSeries)
	assert.Equal(t, 5, cfg.Handicap.RequiredMatches)
	assert.Equal(t, 50.0, cfg.Handicap.ReferenceSeriesScore)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"NOTIFY_BUFFER":  "0",
		"SWEEP_INTERVAL": "soon",
		"LOG_LEVEL":      "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
