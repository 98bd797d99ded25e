package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DiscordToken   string `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	Webhook Webhook
	Storage Storage
	Redis   Redis `envPrefix:"REDIS_"`
}

type Webhook struct {
	URL                string        `env:"DISCORD_WEBHOOK_URL"`
	RatePerSecond      float64       `env:"WEBHOOK_RATE_PER_SEC" envDefault:"1"`
	QueueSize          int           `env:"WEBHOOK_QUEUE_SIZE" envDefault:"100"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
}

type Storage struct {
	Driver    string   `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLiteDSN string   `env:"SQLITE_DSN" envDefault:"leads.db"`
	Database  Database `envPrefix:"DB_"`
}

type Database struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	QueueKey string `env:"QUEUE_KEY" envDefault:"leads:notifications"`
}

// Load parses the whole bot configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadStorage parses only the store settings.
func LoadStorage() (*Storage, error) {
	var cfg Storage
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse storage config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (s Storage) validate() error {
	switch s.Driver {
	case DriverSQLite:
		if s.SQLiteDSN == "" {
			return fmt.Errorf("SQLITE_DSN is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		db := s.Database
		if db.Host == "" || db.User == "" || db.Name == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", s.Driver)
	}
	return nil
}
