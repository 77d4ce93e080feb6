package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ESTUDIOS_ADDR", "DATABASE_URL", "REDIS_URL", "RABBIT_URI", "KAFKA_BROKERS", "NOTIFY_QUEUE_SIZE", "SEED_DEMO", "JWT_SIGNING_KEY"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 256, cfg.Notifier.QueueSize)
	assert.False(t, cfg.SeedDemo)
	assert.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ESTUDIOS_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("NOTIFY_QUEUE_SIZE", "not-a-number")
	t.Setenv("FRONTEND_URL", "https://portal.example.com/")
	t.Setenv("SEED_DEMO", "true")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 256, cfg.Notifier.QueueSize)
	assert.Equal(t, "https://portal.example.com", cfg.FrontendURL)
	assert.True(t, cfg.SeedDemo)
}
