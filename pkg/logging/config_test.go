package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/logging"
)

func TestConfigFunctions(t *testing.T) {
	originalLogger := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(originalLogger)
		zerolog.SetGlobalLevel(originalLevel)
	})

	t.Run("DefaultConfig returns sensible defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
		assert.False(t, cfg.AddCaller)
	})

	t.Run("file output in json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sync.log")
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
			Fields: map[string]any{"component": "reconciler"},
		})
		logger.Info().Msg("pass complete")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "pass complete")
		assert.Contains(t, string(content), `"component":"reconciler"`)
	})

	t.Run("Configure respects level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warn.log")
		logging.Configure(&logging.Config{Level: "warn", Format: "json", Output: path})

		logging.Info().Msg("info message")
		logging.Warn().Msg("warn message")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "info message")
		assert.Contains(t, string(content), "warn message")
	})

	t.Run("auto format on a discard writer does not panic", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Format: "auto", Output: "discard"})
		logger.Info().Msg("dropped")
	})
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{"row": 3, "column": "ship_city"})
	ctx = logging.WithStore(ctx, "memory")

	logging.Ctx(ctx).Info().Msg("patched")

	testLogger.AssertContains(t, `"row":3`)
	testLogger.AssertContains(t, `"column":"ship_city"`)
	testLogger.AssertContains(t, `"store":"memory"`)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DEBUG", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")

	cfg := logging.ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	t.Setenv("LOG_LEVEL", "error")
	assert.Equal(t, "error", logging.ConfigFromEnv().Level)
}
