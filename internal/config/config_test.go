package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BUCKET", "assets")
	t.Setenv("USERNAME", "foo")
	t.Setenv("PASSWORD", "bar")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("STORAGE_USE_SSL", "false")
	t.Setenv("LINK_EXPIRY", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "assets", cfg.Gateway.Bucket)
	assert.Equal(t, "foo", cfg.Gateway.Username)
	assert.Equal(t, "bar", cfg.Gateway.Password)
	assert.Equal(t, BackendS3, cfg.Storage.Backend)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, 15*time.Minute, cfg.Storage.LinkExpiry)
	assert.Equal(t, DefaultCredentialTimeout, cfg.Storage.CredentialTimeout)
	assert.Equal(t, DefaultEndpoint, cfg.Storage.Endpoint)
	assert.Equal(t, DefaultRegion, cfg.Storage.Region)
	assert.False(t, cfg.Storage.HasStaticCredentials())
}

func TestLoad_MissingGatewayFields(t *testing.T) {
	t.Setenv("BUCKET", "")
	t.Setenv("USERNAME", "foo")
	t.Setenv("PASSWORD", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "BUCKET")
	assert.Contains(t, err.Error(), "PASSWORD")
	assert.NotContains(t, err.Error(), "USERNAME")
}

func TestLoad_UnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "gcs")

	_, err := Load()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidate_NonPositiveDurations(t *testing.T) {
	cfg := AppConfig{
		Gateway: GatewayConfig{Bucket: "b", Username: "u", Password: "p"},
		Storage: StorageConfig{Backend: BackendMinIO, LinkExpiry: 0, CredentialTimeout: time.Second},
	}
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)

	cfg.Storage.LinkExpiry = time.Hour
	cfg.Storage.CredentialTimeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)

	cfg.Storage.CredentialTimeout = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	os.Setenv(key, "750ms")
	assert.Equal(t, 750*time.Millisecond, getEnvDuration(key, time.Second))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))

	os.Unsetenv(key)
	assert.Equal(t, time.Second, getEnvDuration(key, time.Second))
}
