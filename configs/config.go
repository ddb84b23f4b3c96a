package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload" // for development
	"github.com/sirupsen/logrus"
)

type DatabaseAccount struct {
	Driver             string
	DSN                string
	MaxOpenConnections int
	MaxIdleConnections int
}

type Config struct {
	Application struct {
		Port           string
		Timezone       *time.Location
		AllowedOrigins []string
	}
	Logger struct {
		Formatter logrus.Formatter
	}
	MariadbReadOnly  DatabaseAccount
	MariadbReadWrite DatabaseAccount
	JWT              struct {
		Secret    string
		ExpiresIn time.Duration
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}
	GCPStorage struct {
		AccessID       string
		PrivateKey     []byte
		CredentialFile string
		Bucket         string
	}
	Reminder struct {
		Interval      time.Duration
		Lookahead     time.Duration
		DedupWindow   time.Duration
		FallbackEmail string
	}
}

func Load() *Config {
	cfg := &Config{}

	cfg.Application.Port = getEnv("APP_PORT", "5001")
	cfg.Application.AllowedOrigins = strings.Split(getEnv("APP_ALLOWED_ORIGINS", "*"), ",")

	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		location = time.UTC
	}
	cfg.Application.Timezone = location

	cfg.Logger.Formatter = &logrus.JSONFormatter{}
	if getEnv("LOG_FORMAT", "json") == "text" {
		cfg.Logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	cfg.MariadbReadOnly = DatabaseAccount{
		Driver:             "mysql",
		DSN:                getEnv("DB_READ_DSN", "root:root@tcp(127.0.0.1:3306)/county_portal?parseTime=true"),
		MaxOpenConnections: getEnvInt("DB_READ_MAX_OPEN", 10),
		MaxIdleConnections: getEnvInt("DB_READ_MAX_IDLE", 5),
	}
	cfg.MariadbReadWrite = DatabaseAccount{
		Driver:             "mysql",
		DSN:                getEnv("DB_WRITE_DSN", "root:root@tcp(127.0.0.1:3306)/county_portal?parseTime=true"),
		MaxOpenConnections: getEnvInt("DB_WRITE_MAX_OPEN", 10),
		MaxIdleConnections: getEnvInt("DB_WRITE_MAX_IDLE", 5),
	}

	cfg.JWT.Secret = getEnv("JWT_SECRET", "")
	cfg.JWT.ExpiresIn = getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour)

	cfg.SMTP.Host = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 587)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.Sender = getEnv("SMTP_SENDER", cfg.SMTP.Username)

	cfg.GCPStorage.AccessID = getEnv("GCS_ACCESS_ID", "")
	cfg.GCPStorage.PrivateKey = []byte(getEnv("GCS_PRIVATE_KEY", ""))
	cfg.GCPStorage.CredentialFile = getEnv("GCS_CREDENTIAL_FILE", "./secret/gcp_credential.json")
	cfg.GCPStorage.Bucket = getEnv("GCS_BUCKET", "county-task-forms")

	cfg.Reminder.Interval = getEnvDuration("REMINDER_INTERVAL", time.Hour)
	cfg.Reminder.Lookahead = getEnvDuration("REMINDER_LOOKAHEAD", 72*time.Hour)
	cfg.Reminder.DedupWindow = getEnvDuration("REMINDER_DEDUP_WINDOW", 24*time.Hour)
	cfg.Reminder.FallbackEmail = getEnv("REMINDER_FALLBACK_EMAIL", "")

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
