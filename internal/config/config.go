// Package config loads service configuration from the environment (and an
// optional .env file) into an explicit Config value.
package config

import (
	"time"

	"warehouse/internal/validation"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config is the full service configuration.
type Config struct {
	AppPort  string `validate:"required"`
	Database DatabaseConfig
	Token    TokenConfig
	Hasher   HasherConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
}

// DatabaseConfig selects the GORM dialector and its DSN.
type DatabaseConfig struct {
	Driver string `validate:"oneof=postgres sqlite"`
	DSN    string `validate:"required"`
}

// TokenConfig configures session token signing.
type TokenConfig struct {
	Secret    string        `validate:"required"`
	Algorithm string        `validate:"oneof=HS256 HS384 HS512"`
	TTL       time.Duration `validate:"gt=0"`
}

// HasherConfig configures password hashing.
type HasherConfig struct {
	Cost int `validate:"gte=4,lte=31"`
}

// RabbitMQConfig configures purchase event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn warning error"`
	Dev   bool
	File  string
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper applies defaults to v, reads the environment and validates the
// resulting configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=warehouse port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_EXPIRATION", 3600)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEV", false)
	v.SetDefault("LOG_FILE", "")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver: v.GetString("DATABASE_DRIVER"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Token: TokenConfig{
			Secret:    v.GetString("JWT_SECRET"),
			Algorithm: v.GetString("JWT_ALGORITHM"),
			TTL:       time.Duration(v.GetInt("JWT_EXPIRATION")) * time.Second,
		},
		Hasher: HasherConfig{
			Cost: v.GetInt("BCRYPT_COST"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dev:   v.GetBool("LOG_DEV"),
			File:  v.GetString("LOG_FILE"),
		},
	}

	if err := validation.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
