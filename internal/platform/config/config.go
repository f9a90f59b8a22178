package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for consent records and the audit trail.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Server captures process level configuration.
type Server struct {
	Addr            string        `env:"NAIJACARE_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"NAIJACARE_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"NAIJACARE_LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"NAIJACARE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	ConsentBackend string `env:"NAIJACARE_CONSENT_BACKEND" envDefault:"memory"`
	AuditBackend   string `env:"NAIJACARE_AUDIT_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// HashSalt switches audit hashing to HMAC. Empty keeps the unsalted digest.
	HashSalt string `env:"NAIJACARE_HASH_SALT"`

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig configures the redis consent store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig enables the audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers        []string      `env:"NAIJACARE_KAFKA_BROKERS" envSeparator:","`
	AuditTopic     string        `env:"NAIJACARE_KAFKA_AUDIT_TOPIC" envDefault:"naijacare.audit"`
	PublishTimeout time.Duration `env:"NAIJACARE_KAFKA_PUBLISH_TIMEOUT" envDefault:"2s"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	for _, b := range k.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and backends missing their connection URL.
func (c Server) Validate() error {
	var errs []error
	switch c.ConsentBackend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis consent backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres consent backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown consent backend %q", c.ConsentBackend))
	}

	switch c.AuditBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres audit backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown audit backend %q", c.AuditBackend))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// UsesPostgres reports whether any store needs a database pool.
func (c Server) UsesPostgres() bool {
	return c.ConsentBackend == BackendPostgres || c.AuditBackend == BackendPostgres
}
