package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 50*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "ledger")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "wallets")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("IS_PROD", "true")
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
	assert.Equal(t, "host=db port=5432 user=ledger password=pw dbname=wallets sslmode=disable TimeZone=UTC", cfg.DB.PostgresDSN())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "oracle"}},
		{name: "bad currency", env: map[string]string{"JWT_SECRET": "s", "DEFAULT_CURRENCY": "DOLLAR"}},
		{name: "bad duration", env: map[string]string{"JWT_SECRET": "s", "JWT_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestDSNs(t *testing.T) {
	c := DBConfig{User: "root", Password: "pw", Host: "localhost", Name: "wallet", Path: "file:test?mode=memory"}

	assert.Equal(t, "root:pw@tcp(localhost:3306)/wallet?parseTime=true&loc=UTC", c.MySQLDSN())
	assert.Equal(t, "file:test?mode=memory&_foreign_keys=on&_busy_timeout=5000", c.SQLiteDSN())

	c.Path = "wallet.db"
	assert.Equal(t, "wallet.db?_foreign_keys=on&_busy_timeout=5000", c.SQLiteDSN())
}
