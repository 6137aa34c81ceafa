package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int      `env:"TEST_CFG_PORT" envDefault:"4000"`
	LogLevel string   `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Brokers  []string `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Kafka    bool     `env:"TEST_CFG_KAFKA" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.False(t, cfg.Kafka)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_LOG_LEVEL", "debug")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_CFG_KAFKA", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.True(t, cfg.Kafka)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

type requiredConfig struct {
	Secret string `env:"JWT_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	require.Error(t, Load(&cfg))
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("FOODAPI_JWT_SECRET", "s3cret")

	var cfg requiredConfig
	require.NoError(t, LoadWithPrefix(&cfg, "FOODAPI_"))
	assert.Equal(t, "s3cret", cfg.Secret)
}
