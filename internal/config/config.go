package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

// StoreConfig selects the persistence backend behind the unit of work.
type StoreConfig struct {
	Driver string
}

// HasMigrations reports whether the driver keeps a schema managed by goose.
func (s StoreConfig) HasMigrations() bool {
	return s.Driver == StoreDriverPostgres
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis host is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	File      string
	MaxSizeMB int
}

func Load() *Config {
	// Values already present in the environment win over .env.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_MIGRATIONS_DIR", "migrations")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("LOG_MAX_SIZE_MB", 100)

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(viper.GetString("STORE_DRIVER")),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests:      viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			File:      viper.GetString("LOG_FILE"),
			MaxSizeMB: viper.GetInt("LOG_MAX_SIZE_MB"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
