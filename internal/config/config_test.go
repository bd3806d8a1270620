package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "tableside", cfg.Database.Database)
	assert.NotZero(t, cfg.Orders.SubmitTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TABLESIDE_DB_HOST", "db.internal")
	t.Setenv("TABLESIDE_DB_PORT", "6432")
	t.Setenv("TABLESIDE_AMQP_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestURLHelpers(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"},
		RabbitMQ: RabbitMQConfig{Host: "mq", Port: 5672, User: "guest", Password: "guest"},
	}

	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQURL())
}
