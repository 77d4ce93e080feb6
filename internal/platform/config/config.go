package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	DatabaseURL   string
	JWTSigningKey string
	JWTIssuer     string
	FrontendURL   string
	SeedDemo      bool

	Redis    RedisConfig
	Rabbit   RabbitConfig
	Kafka    KafkaConfig
	Notifier NotifierConfig
}

// RedisConfig configures the notification inbox backend. An empty URL keeps the inbox in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RabbitConfig configures the outbound email queue. An empty URI logs emails instead.
type RabbitConfig struct {
	URI        string
	EmailQueue string
}

// KafkaConfig configures the audit publisher. No brokers keeps audit events in memory.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// NotifierConfig sizes the fire-and-forget notification queue.
type NotifierConfig struct {
	QueueSize int
	Workers   int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          getenv("ESTUDIOS_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     os.Getenv("JWT_ISSUER"),
		FrontendURL:   strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
		SeedDemo:      os.Getenv("SEED_DEMO") == "true",
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Rabbit: RabbitConfig{
			URI:        os.Getenv("RABBIT_URI"),
			EmailQueue: getenv("RABBIT_EMAIL_QUEUE", "estudios.email"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "estudios.audit"),
		},
		Notifier: NotifierConfig{
			QueueSize: getenvInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:   getenvInt("NOTIFY_WORKERS", 2),
		},
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
