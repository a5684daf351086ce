package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	// JWT issued by the mobile auth service
	JWTSecret string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	// Moderation
	ReportActionWindow   time.Duration
	BanThreshold         int
	SweepEnabled         bool
	SweepInterval        time.Duration
	SweepConcurrency     int
	ModerationAdminEmail string

	// Reputation
	RecomputeConcurrency int
	EvaluationScanBatch  int

	// Notifications go to Kafka when brokers are set, otherwise to the log.
	KafkaBrokers     []string
	KafkaTopicPrefix string

	// Optional; enables the cross-instance sweep lease.
	RedisURL string

	LogRetentionDays int
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "runmate_db"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		ReportActionWindow:   parseDuration(getEnv("REPORT_ACTION_WINDOW", "24h"), 24*time.Hour),
		BanThreshold:         getEnvInt("BAN_THRESHOLD", 3),
		SweepEnabled:         getEnvBool("SWEEP_ENABLED", true),
		SweepInterval:        parseDuration(getEnv("SWEEP_INTERVAL", "1h"), time.Hour),
		SweepConcurrency:     getEnvInt("SWEEP_CONCURRENCY", 4),
		ModerationAdminEmail: getEnv("MODERATION_ADMIN_EMAIL", ""),

		RecomputeConcurrency: getEnvInt("RECOMPUTE_CONCURRENCY", 4),
		EvaluationScanBatch:  getEnvInt("EVALUATION_SCAN_BATCH", 500),

		KafkaBrokers:     splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "runmate"),

		RedisURL: getEnv("REDIS_URL", ""),

		LogRetentionDays: getEnvInt("LOG_RETENTION_DAYS", 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
