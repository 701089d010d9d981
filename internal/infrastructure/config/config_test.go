package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "qr-fulfillment", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "qrcampaign", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "http://localhost:8080/r", cfg.Fulfillment.ShortLinkBaseURL)
		assert.Equal(t, 4, cfg.Fulfillment.BulkWorkers)
		assert.Equal(t, 500, cfg.Fulfillment.MaxBulkOrders)
		assert.Equal(t, 300, cfg.Fulfillment.SymbolDPI)
		assert.Equal(t, "MEDIUM", cfg.Fulfillment.SymbolRecovery)
		assert.Len(t, cfg.Fulfillment.OriginLines, 3)
		assert.False(t, cfg.Storage.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
		assert.Equal(t, 5*time.Minute, cfg.HTTP.WriteTimeout)
	})

	t.Run("loads values from environment variables with QRF prefix", func(t *testing.T) {
		t.Setenv("QRF_APP_NAME", "test-app")
		t.Setenv("QRF_APP_PORT", "9000")
		t.Setenv("QRF_DATABASE_DRIVER", "sqlite")
		t.Setenv("QRF_DATABASE_SQLITE_PATH", ":memory:")
		t.Setenv("QRF_FULFILLMENT_SHORT_LINK_BASE_URL", "https://qr.example.com/s")
		t.Setenv("QRF_FULFILLMENT_BULK_WORKERS", "8")
		t.Setenv("QRF_FULFILLMENT_SYMBOL_DPI", "600")
		t.Setenv("QRF_STORAGE_ENABLED", "true")
		t.Setenv("QRF_STORAGE_BUCKET", "exports")
		t.Setenv("QRF_HTTP_WRITE_TIMEOUT", "90s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.DSN())
		assert.Equal(t, "https://qr.example.com/s", cfg.Fulfillment.ShortLinkBaseURL)
		assert.Equal(t, 8, cfg.Fulfillment.BulkWorkers)
		assert.Equal(t, 600, cfg.Fulfillment.SymbolDPI)
		assert.True(t, cfg.Storage.Enabled)
		assert.Equal(t, "exports", cfg.Storage.Bucket)
		assert.Equal(t, 90*time.Second, cfg.HTTP.WriteTimeout)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("QRF_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("QRF_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		t.Setenv("QRF_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("QRF_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects relative short link base URL", func(t *testing.T) {
		t.Setenv("QRF_FULFILLMENT_SHORT_LINK_BASE_URL", "/r")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "short_link_base_url")
	})

	t.Run("rejects negative bulk workers", func(t *testing.T) {
		t.Setenv("QRF_FULFILLMENT_BULK_WORKERS", "-2")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bulk_workers")
	})

	t.Run("rejects out of range symbol DPI", func(t *testing.T) {
		t.Setenv("QRF_FULFILLMENT_SYMBOL_DPI", "5000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "symbol_dpi")
	})

	t.Run("requires bucket when storage is enabled", func(t *testing.T) {
		t.Setenv("QRF_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires database.password in production", func(t *testing.T) {
		t.Setenv("QRF_APP_ENV", "production")
		t.Setenv("QRF_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		t.Setenv("QRF_APP_ENV", "production")
		t.Setenv("QRF_DATABASE_PASSWORD", "secure-password")
		t.Setenv("QRF_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite skips postgres production checks", func(t *testing.T) {
		t.Setenv("QRF_APP_ENV", "production")
		t.Setenv("QRF_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("rejects full SQL logging in production", func(t *testing.T) {
		t.Setenv("QRF_APP_ENV", "production")
		t.Setenv("QRF_DATABASE_PASSWORD", "secure-password")
		t.Setenv("QRF_DATABASE_SSLMODE", "require")
		t.Setenv("QRF_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		t.Setenv("QRF_APP_ENV", "production")
		t.Setenv("QRF_DATABASE_PASSWORD", "secure-password")
		t.Setenv("QRF_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, SQLitePath: "/var/lib/qr/fulfillment.db"}
		assert.Equal(t, "/var/lib/qr/fulfillment.db", cfg.DSN())
	})
}
