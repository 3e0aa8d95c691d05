package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	JWT struct {
		Secret string
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
		Enabled  bool
	}

	Kafka struct {
		Brokers []string
		Topic   string
		Enabled bool
	}

	Limits struct {
		SuperLikesPerDay        int
		PremiumSuperLikesPerDay int
		MaxMessageLength        int
		SocketMessagesPerWindow int
		SocketRateWindow        time.Duration
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "douainimi")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// JWT
	cfg.JWT.Secret = getEnvDefault("JWT_SECRET", "dev-secret-change-me")

	// SMTP (notification emails)
	cfg.SMTP.Host = getEnvDefault("SMTP_HOST", "localhost")
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 587)
	cfg.SMTP.Username = getEnvDefault("SMTP_USERNAME", "")
	cfg.SMTP.Password = getEnvDefault("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnvDefault("SMTP_FROM", "no-reply@douainimi.app")
	cfg.SMTP.Enabled = isTruthy(os.Getenv("SMTP_ENABLED"))

	// Kafka (outbound domain events, optional)
	if brokers := getEnvDefault("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
		cfg.Kafka.Enabled = true
	}
	cfg.Kafka.Topic = getEnvDefault("KAFKA_TOPIC", "douainimi.events")

	// Domain limits
	cfg.Limits.SuperLikesPerDay = getEnvInt("SUPER_LIKES_PER_DAY", 3)
	cfg.Limits.PremiumSuperLikesPerDay = getEnvInt("PREMIUM_SUPER_LIKES_PER_DAY", 10)
	cfg.Limits.MaxMessageLength = getEnvInt("MAX_MESSAGE_LENGTH", 5000)
	cfg.Limits.SocketMessagesPerWindow = getEnvInt("SOCKET_MESSAGES_PER_MINUTE", 30)
	cfg.Limits.SocketRateWindow = time.Duration(getEnvInt("SOCKET_RATE_WINDOW_SECONDS", 60)) * time.Second

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
