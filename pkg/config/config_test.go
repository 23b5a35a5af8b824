package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "12000", cfg.Store.WeeklyQuota.String())
	assert.Equal(t, time.Wednesday, cfg.Store.BlackoutWeekday)
	assert.Equal(t, time.Thursday, cfg.Store.WeekStartWeekday)
	assert.Equal(t, "America/Costa_Rica", cfg.Store.Location.String())
	assert.Equal(t, 24*time.Hour, cfg.Store.IdempotencyWindow)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
}

func TestLoad_RedisTTLNoSuperaLaVentana(t *testing.T) {
	t.Setenv("STORE_IDEMPOTENCY_WINDOW", "2h")

	t.Setenv("REDIS_TTL", "48h")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Redis.TTL)

	t.Setenv("REDIS_TTL", "0s")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Redis.TTL)

	t.Setenv("REDIS_TTL", "30m")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
}

func TestLoad_StoreDesdeEnv(t *testing.T) {
	t.Setenv("STORE_WEEKLY_QUOTA", "15000.50")
	t.Setenv("STORE_BLACKOUT_WEEKDAY", "Lunes")
	t.Setenv("STORE_WEEK_START_WEEKDAY", "martes")
	t.Setenv("STORE_TIMEZONE", "UTC")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "2s")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "tienda@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "15000.5", cfg.Store.WeeklyQuota.String())
	assert.Equal(t, time.Monday, cfg.Store.BlackoutWeekday)
	assert.Equal(t, time.Tuesday, cfg.Store.WeekStartWeekday)
	assert.Equal(t, time.UTC, cfg.Store.Location)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.HTTP.RequestTimeout)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, "tienda@example.com", cfg.SMTP.From)
}

func TestLoad_ValoresInvalidos(t *testing.T) {
	cases := map[string][2]string{
		"cuota cero":        {"STORE_WEEKLY_QUOTA", "0"},
		"cuota no numérica": {"STORE_WEEKLY_QUOTA", "mucho"},
		"día desconocido":   {"STORE_BLACKOUT_WEEKDAY", "funday"},
		"zona desconocida":  {"STORE_TIMEZONE", "Marte/Olympus"},
		"driver":            {"STORE_DRIVER", "sqlite"},
		"duración":          {"STORE_IDEMPOTENCY_WINDOW", "un día"},
		"lock timeout":      {"DB_LOCK_TIMEOUT", "pronto"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" Miércoles ")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d)

	d, err = ParseWeekday("THURSDAY")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, d)

	_, err = ParseWeekday("")
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "tienda", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/tienda?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
