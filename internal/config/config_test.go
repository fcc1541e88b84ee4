package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestParse_MemoryStorageDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  port: 50051
storage:
  type: memory
jwt:
  secret: ` + testSecret + `
`))
	require.NoError(t, err)

	assert.Equal(t, 50052, cfg.Server.HTTPPort)
	assert.Equal(t, EventsModeInline, cfg.Events.Mode)
	assert.Equal(t, "booking-events", cfg.Events.Topic)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.PendingTTL())
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Scheduler.CompleteFinishedBookings)
}

func TestParse_PostgresRequiresDatabase(t *testing.T) {
	_, err := Parse([]byte(`
server:
  port: 50051
jwt:
  secret: ` + testSecret + `
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database host is required")
}

func TestParse_RejectsUnknownDriver(t *testing.T) {
	_, err := Parse([]byte(`
server:
  port: 50051
database:
  driver: mysql
  host: localhost
  user: app
  database: rental
jwt:
  secret: ` + testSecret + `
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestParse_ShortSecret(t *testing.T) {
	_, err := Parse([]byte(`
server:
  port: 50051
storage:
  type: memory
jwt:
  secret: short
`))
	require.Error(t, err)
}

func TestParse_KafkaNeedsBrokers(t *testing.T) {
	_, err := Parse([]byte(`
server:
  port: 50051
storage:
  type: memory
events:
  mode: kafka
jwt:
  secret: ` + testSecret + `
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka brokers")
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EVENTS_MODE", "kafka")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("DB_DRIVER", "pgx")

	cfg, err := Parse([]byte(`
server:
  port: 50051
database:
  host: db
  user: app
  database: rental
jwt:
  secret: ` + testSecret + `
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, DriverPgx, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres://app:@db:5432/rental?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", testSecret)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 6000
storage:
  type: memory
jwt:
  secret: ${TEST_JWT_SECRET}
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/rental.v1.AuthService/Login"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/rental.v1.BookingService/PayBooking"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/rental.v1.Unknown/Method"))
}
