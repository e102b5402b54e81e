package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordersync/pkg/logging"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the CLI logger. The level comes from, in order: --log-level,
// -q and -v (quiet wins when both are set), the log_level key or LOG_LEVEL,
// then info.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

func determineLogLevel(config *Config) string {
	switch {
	case config.logLevelFlag:
		return checkLogLevel(config.LogLevel)
	case config.Quiet:
		if config.Verbose {
			fmt.Fprintln(os.Stderr, "Warning: --verbose and --quiet both set, using --quiet")
		}
		return "warn"
	case config.Verbose:
		return "debug"
	case config.LogLevel != "":
		return checkLogLevel(config.LogLevel)
	}
	return "info"
}

func checkLogLevel(level string) string {
	if slices.Contains(logLevels, level) {
		return level
	}
	fmt.Fprintf(os.Stderr, "Warning: unknown log level %q, using info\n", level)
	return "info"
}
