package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `service_name = "test-service"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-service", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 50051, cfg.GRPC.Port)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.True(t, cfg.Storage.Fallback)
	assert.Equal(t, "localhost:50051", cfg.Client.Target)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
service_name = "test-service"

[grpc]
port = 6000

[storage]
driver = "memory"
fallback = false

[auth]
api_key = "sekrit"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.GRPC.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.False(t, cfg.Storage.Fallback)
	assert.Equal(t, "sekrit", cfg.Auth.APIKey)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
service_name = "test-service"

[redis]
host = "from-file"
`)

	t.Setenv("APP_REDIS_HOST", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Redis.Host)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"missing service name", `[http]` + "\n" + `port = 8080`},
		{"bad grpc port", "service_name = \"s\"\n[grpc]\nport = 70000"},
		{"unknown driver", "service_name = \"s\"\n[storage]\ndriver = \"etcd\""},
		{"mysql without dsn", "service_name = \"s\"\n[storage]\ndriver = \"mysql\""},
		{"tls cert without key", "service_name = \"s\"\n[grpc]\ntls_cert_file = \"server.crt\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.toml))
			assert.Error(t, err)
		})
	}
}
