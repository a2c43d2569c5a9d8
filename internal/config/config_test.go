package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("CONVERTER_BINARY", "libreoffice")
	os.Setenv("ARTIFACTS_MAX_AGE", "30m")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("CONVERTER_BINARY")
		os.Unsetenv("ARTIFACTS_MAX_AGE")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "libreoffice", cfg.Converter.Binary)
	assert.Equal(t, 30*time.Minute, cfg.Artifacts.MaxAge)
	assert.Equal(t, 12*time.Hour, cfg.Artifacts.SweepInterval)
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

	os.Setenv(key, "not-a-bool")
	assert.False(t, getEnvBool(key, false))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "42")
	assert.Equal(t, 42, getEnvInt(key, 7))

	os.Setenv(key, "nope")
	assert.Equal(t, 7, getEnvInt(key, 7))

	os.Unsetenv(key)
	assert.Equal(t, 7, getEnvInt(key, 7))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	os.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute))

	os.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))

	os.Unsetenv(key)
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}
