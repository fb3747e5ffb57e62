package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
environment = "development"
host = "localhost"
port = 5000
log_level = "trace"
log_to_stdout = true
model_path = "./testdata/xgb_model.json"
model_meta_path = "./testdata/model_meta.json"
allowed_origins = ["http://localhost:3000"]

[production]
environment = "production"
host = "0.0.0.0"
port = 8080
log_level = "info"
logs_path = "/var/log/calories/service"
storage = "redis"
redis_host = "redis"
prometheus_metrics_host = "0.0.0.0"
prometheus_metrics_port = "9100"
require_registered_user = true
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	cfg, err := Load("dev", path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, "./testdata/xgb_model.json", cfg.ModelPath)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)

	// defaults
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "2112", cfg.PrometheusMetricsPort)
	assert.Equal(t, 30, cfg.LoginRateLimitAllowedPerMin)
	assert.Equal(t, 10, cfg.CredentialsCacheSizeMB)
	assert.False(t, cfg.RequireRegisteredUser)
}

func TestLoad_Production(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, "9100", cfg.PrometheusMetricsPort)
	assert.True(t, cfg.RequireRegisteredUser)
	// model paths fall back to the artifact names written by the training notebook
	assert.Equal(t, "xgb_model.json", cfg.ModelPath)
	assert.Equal(t, "model_meta.json", cfg.ModelMetaPath)
}

func TestLoad_Errors(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	_, err := Load("staging", path)
	assert.EqualError(t, err, "unknown env: staging")

	_, err = Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path = writeTestConfig(t, "[development]\nport = \"not-a-number\"\n")
	_, err = Load("dev", path)
	assert.Error(t, err)

	path = writeTestConfig(t, "[development]\nport = 5000\n")
	_, err = Load("prod", path)
	assert.EqualError(t, err, "env [prod] not present in config")
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "memory",
			cfg:  Config{Storage: StorageMemory, Port: 5000},
		},
		{
			name:    "redis without host",
			cfg:     Config{Storage: StorageRedis},
			wantErr: "redis storage selected, but redis_host not set",
		},
		{
			name:    "postgres without db name",
			cfg:     Config{Storage: StoragePostgres, PostgresHost: "localhost"},
			wantErr: "postgres storage selected, but postgres_host or postgres_db_name not set",
		},
		{
			name: "postgres",
			cfg:  Config{Storage: StoragePostgres, PostgresHost: "localhost", PostgresDBName: "calories"},
		},
		{
			name:    "unknown storage",
			cfg:     Config{Storage: "sqlite"},
			wantErr: "unknown storage: sqlite",
		},
		{
			name:    "invalid port",
			cfg:     Config{Storage: StorageMemory, Port: 70000},
			wantErr: "invalid port: 70000",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}
