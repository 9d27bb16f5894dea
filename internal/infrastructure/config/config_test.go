package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"FISCAL_APP_NAME",
	"FISCAL_APP_ENV",
	"FISCAL_DATABASE_DRIVER",
	"FISCAL_DATABASE_HOST",
	"FISCAL_DATABASE_PORT",
	"FISCAL_DATABASE_PASSWORD",
	"FISCAL_DATABASE_SSLMODE",
	"FISCAL_DATABASE_MAX_OPEN_CONNS",
	"FISCAL_DATABASE_MAX_IDLE_CONNS",
	"FISCAL_JWT_SECRET",
	"FISCAL_VENDUS_BASE_URL",
	"FISCAL_SYNC_PAGE_SIZE",
	"FISCAL_SYNC_IMPORT_LOCK_TTL",
	"FISCAL_SYNC_LOCK_BACKEND",
	"FISCAL_STORAGE_BACKEND",
	"FISCAL_STORAGE_BUCKET",
	"FISCAL_TELEMETRY_SAMPLING_RATIO",
	"FISCAL_TELEMETRY_PROFILING_ENABLED",
}

// clearConfigEnv unsets every key the tests touch; t.Setenv restores them.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fiscalsync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "https://www.vendus.pt", cfg.Vendus.BaseURL)
		assert.Equal(t, "v1.2", cfg.Vendus.Version)
		assert.Equal(t, 30, cfg.Vendus.TimeoutSeconds)
		assert.Equal(t, 1000, cfg.Sync.PageSize)
		assert.Equal(t, 100, cfg.Sync.MaxPages)
		assert.Equal(t, 10*time.Minute, cfg.Sync.ImportLockTTL)
		assert.Equal(t, "memory", cfg.Sync.LockBackend)
		assert.Equal(t, "memory", cfg.Storage.Backend)
		assert.Equal(t, "fiscal", cfg.Storage.Prefix)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with FISCAL prefix", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FISCAL_APP_NAME", "test-app")
		t.Setenv("FISCAL_DATABASE_DRIVER", "sqlite")
		t.Setenv("FISCAL_VENDUS_BASE_URL", "http://localhost:9000")
		t.Setenv("FISCAL_SYNC_PAGE_SIZE", "50")
		t.Setenv("FISCAL_SYNC_IMPORT_LOCK_TTL", "90s")
		t.Setenv("FISCAL_SYNC_LOCK_BACKEND", "redis")
		t.Setenv("FISCAL_STORAGE_BACKEND", "s3")
		t.Setenv("FISCAL_STORAGE_BUCKET", "pdfs")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "fiscalsync.db", cfg.Database.DSN())
		assert.Equal(t, "http://localhost:9000", cfg.Vendus.BaseURL)
		assert.Equal(t, 50, cfg.Sync.PageSize)
		assert.Equal(t, 90*time.Second, cfg.Sync.ImportLockTTL)
		assert.Equal(t, "redis", cfg.Sync.LockBackend)
		assert.Equal(t, "pdfs", cfg.Storage.Bucket)
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "idle connections above open connections",
			env:     map[string]string{"FISCAL_DATABASE_MAX_OPEN_CONNS": "10", "FISCAL_DATABASE_MAX_IDLE_CONNS": "20"},
			wantErr: "cannot exceed",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"FISCAL_DATABASE_DRIVER": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "unknown lock backend",
			env:     map[string]string{"FISCAL_SYNC_LOCK_BACKEND": "etcd"},
			wantErr: "sync.lock_backend",
		},
		{
			name:    "s3 without bucket",
			env:     map[string]string{"FISCAL_STORAGE_BACKEND": "s3"},
			wantErr: "storage.bucket",
		},
		{
			name:    "sampling ratio out of range",
			env:     map[string]string{"FISCAL_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
		{
			name:    "profiling without server",
			env:     map[string]string{"FISCAL_TELEMETRY_PROFILING_ENABLED": "true"},
			wantErr: "profiling_server",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FISCAL_APP_ENV", "production")
		t.Setenv("FISCAL_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("FISCAL_DATABASE_PASSWORD", "secure-password")
		t.Setenv("FISCAL_DATABASE_SSLMODE", "require")
		t.Setenv("FISCAL_SYNC_LOCK_BACKEND", "redis")
	}

	t.Run("accepts a complete production config", func(t *testing.T) {
		setValidProductionBase(t)
		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("requires jwt.secret", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("FISCAL_JWT_SECRET")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("rejects short jwt.secret", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("FISCAL_JWT_SECRET", "short")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("rejects disabled sslmode", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("FISCAL_DATABASE_SSLMODE", "disable")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("rejects the in-process import lock", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("FISCAL_SYNC_LOCK_BACKEND", "memory")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.lock_backend cannot be memory")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
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
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
