package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DevSessionKey is used when SESSION_KEY is not set. Never use it in production.
const DevSessionKey = "SESSION_KEY"

type Config struct {
	Addr string

	// SQLite path, used unless DBHost is set.
	Database string

	// PostgreSQL
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	SessionKey    string
	SessionMaxAge time.Duration
	SecureCookies bool
	BcryptCost    int

	LogLevel             string
	LogstashAddr         string
	SlowRequestThreshold time.Duration
}

// Load reads .env (if present), an optional config.yaml and the environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("DATABASE", "minitweet.db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("SESSION_KEY", DevSessionKey)
	v.SetDefault("SESSION_MAX_AGE", "16h")
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SLOW_REQUEST_THRESHOLD", "2s")

	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // optional

	return &Config{
		Addr:                 v.GetString("ADDR"),
		Database:             v.GetString("DATABASE"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSSLMode:            v.GetString("DB_SSLMODE"),
		DBMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		SessionKey:           v.GetString("SESSION_KEY"),
		SessionMaxAge:        parseDuration(v.GetString("SESSION_MAX_AGE"), 16*time.Hour),
		SecureCookies:        v.GetBool("SECURE_COOKIES"),
		BcryptCost:           clampCost(v.GetInt("BCRYPT_COST")),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogstashAddr:         v.GetString("LOGSTASH_ADDR"),
		SlowRequestThreshold: parseDuration(v.GetString("SLOW_REQUEST_THRESHOLD"), 2*time.Second),
	}
}

// UsesPostgres reports whether a remote PostgreSQL database is configured.
func (c *Config) UsesPostgres() bool {
	return c.DBHost != ""
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
