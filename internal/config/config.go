package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stock    StockConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type StockConfig struct {
	// SnapshotTTL bounds how long a cached stock snapshot may serve reads.
	SnapshotTTL time.Duration
	// ReservationSweepInterval is the cron cadence of the expiry sweep job.
	ReservationSweepInterval string
	// ConflictRetries is how many times a serialization failure is retried
	// before surfacing a conflict to the caller.
	ConflictRetries int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "stockops"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 20),
			MinConns:        getEnvInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-secret-change-me"),
			Issuer: getEnv("JWT_ISSUER", "stockops"),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Stock: StockConfig{
			SnapshotTTL:              getEnvDuration("STOCK_SNAPSHOT_TTL", 5*time.Minute),
			ReservationSweepInterval: getEnv("RESERVATION_SWEEP_CRON", "*/5 * * * *"),
			ConflictRetries:          getEnvInt("STOCK_CONFLICT_RETRIES", 3),
		},
	}
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	if c.JWT.Secret == "" || c.JWT.Secret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Database.Password == "postgres" {
		return fmt.Errorf("DB_PASSWORD must not use the default in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("DB_SSLMODE must not be disabled in production")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
