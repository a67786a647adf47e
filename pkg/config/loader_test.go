package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/pkg/config"
)

type serverConfig struct {
	Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
	Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	Debug   bool          `env:"DEBUG" envDefault:"false"`
}

type requiredConfig struct {
	Token string `env:"API_TOKEN,required"`
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	var cfg serverConfig
	err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvironmentMap(t *testing.T) {
	t.Parallel()

	var cfg serverConfig
	err := config.Load(&cfg, config.WithEnvironment(map[string]string{
		"HTTP_ADDR":    ":9090",
		"HTTP_TIMEOUT": "5s",
		"DEBUG":        "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoad_Prefix(t *testing.T) {
	t.Parallel()

	var cfg serverConfig
	err := config.Load(&cfg,
		config.WithPrefix("LD_"),
		config.WithEnvironment(map[string]string{"LD_HTTP_ADDR": ":7070", "HTTP_ADDR": ":1"}),
	)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoad_RequiredMissing(t *testing.T) {
	t.Parallel()

	var cfg requiredConfig
	err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	t.Parallel()

	err := config.Load[serverConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONFIG_TEST_FILE_TOKEN=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CONFIG_TEST_FILE_TOKEN") })

	var cfg struct {
		Token string `env:"CONFIG_TEST_FILE_TOKEN,required"`
	}
	err := config.Load(&cfg, config.WithEnvFiles(filepath.Join(dir, "missing.env"), path))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Token)
}

func TestMustLoad_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
	})
}
