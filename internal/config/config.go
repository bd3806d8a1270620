package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime parameters, populated from TABLESIDE_* environment
// variables.
type Config struct {
	HTTP     HTTPConfig     `envconfig:"HTTP"`
	Database DatabaseConfig `envconfig:"DB"`
	RabbitMQ RabbitMQConfig `envconfig:"AMQP"`
	Orders   OrdersConfig   `envconfig:"ORDERS"`
	LogLevel string         `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Host            string        `envconfig:"HOST" default:""`
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"postgres"`
	Password string `envconfig:"PASSWORD" default:""`
	Database string `envconfig:"NAME" default:"tableside"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

type RabbitMQConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"5672"`
	User     string `envconfig:"USER" default:"guest"`
	Password string `envconfig:"PASSWORD" default:"guest"`
	Enabled  bool   `envconfig:"ENABLED" default:"true"`
}

type OrdersConfig struct {
	// SubmitTimeout bounds the whole multi-step order submission; a hung
	// storage call surfaces as a timeout instead of blocking forever.
	SubmitTimeout time.Duration `envconfig:"SUBMIT_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("tableside", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// DatabaseURL returns a PostgreSQL connection URL.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL.
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
