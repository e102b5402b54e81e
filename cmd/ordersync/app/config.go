package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/ordersync"
	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/format"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schedule"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Reconciliation
	Lookback        time.Duration
	PatchWindow     time.Duration
	SerialFloor     int
	RowDelay        time.Duration
	BatchDelay      time.Duration
	BatchSize       int
	StatusPreset    string
	PrintStatus     string
	PackStatus      string
	MultiItemMarker string
	DisplayOffset   time.Duration

	// Quiet window
	QuietStart string
	QuietEnd   string
	Timezone   string

	// Store and source
	Layout           string
	Store            string
	Sheet            string
	Source           string
	SPAPIEndpoint    string
	SPAPIAccessToken string
	MarketplaceID    string

	// Daemon
	SyncInterval time.Duration
	MetricsAddr  string

	// Output format for command results: table, tsv, json or yaml
	Output string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// logLevelFlag is set when --log-level was given explicitly
	logLevelFlag bool
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (ORDERSYNC_ prefix, or bare for the logging keys)
// 3. .env files
// 4. Config file (~/.ordersync.yaml or --config)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("ORDERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".ordersync")

		// Missing default config files are fine
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		Lookback:        v.GetDuration("lookback"),
		PatchWindow:     v.GetDuration("patch_window"),
		SerialFloor:     v.GetInt("serial_floor"),
		RowDelay:        v.GetDuration("row_delay"),
		BatchDelay:      v.GetDuration("batch_delay"),
		BatchSize:       v.GetInt("batch_size"),
		StatusPreset:    v.GetString("status_preset"),
		PrintStatus:     v.GetString("print_status"),
		PackStatus:      v.GetString("pack_status"),
		MultiItemMarker: v.GetString("multi_item_marker"),
		DisplayOffset:   v.GetDuration("display_offset"),

		QuietStart: v.GetString("quiet_start"),
		QuietEnd:   v.GetString("quiet_end"),
		Timezone:   v.GetString("timezone"),

		Layout:           v.GetString("layout"),
		Store:            v.GetString("store"),
		Sheet:            v.GetString("sheet"),
		Source:           v.GetString("source"),
		SPAPIEndpoint:    v.GetString("spapi_endpoint"),
		SPAPIAccessToken: v.GetString("spapi_access_token"),
		MarketplaceID:    v.GetString("marketplace_id"),

		SyncInterval: v.GetDuration("sync_interval"),
		MetricsAddr:  v.GetString("metrics_addr"),
		Output:       v.GetString("output"),

		LogLevel:  firstNonEmpty(v.GetString("log_level"), os.Getenv("LOG_LEVEL")),
		LogFormat: firstNonEmpty(v.GetString("log_format"), os.Getenv("LOG_FORMAT"), "auto"),
		LogOutput: firstNonEmpty(v.GetString("log_output"), os.Getenv("LOG_OUTPUT"), "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := reconciler.DefaultConfig()
	v.SetDefault("lookback", defaults.Lookback)
	v.SetDefault("patch_window", defaults.PatchWindow)
	v.SetDefault("serial_floor", defaults.SerialFloor)
	v.SetDefault("row_delay", defaults.RowDelay)
	v.SetDefault("batch_delay", defaults.BatchDelay)
	v.SetDefault("batch_size", defaults.BatchSize)
	v.SetDefault("status_preset", format.PresetNone)
	v.SetDefault("print_status", defaults.PrintStatus)
	v.SetDefault("pack_status", defaults.PackStatus)
	v.SetDefault("multi_item_marker", defaults.MultiItemMarker)
	v.SetDefault("display_offset", defaults.DisplayOffset)

	quiet := schedule.DefaultQuietWindow()
	v.SetDefault("quiet_start", quiet.Start.String())
	v.SetDefault("quiet_end", quiet.End.String())

	v.SetDefault("layout", schema.LayoutDefault)
	v.SetDefault("store", ordersync.MemoryStoreURI)
	v.SetDefault("sheet", "Orders")
	v.SetDefault("source", "spapi")
	v.SetDefault("sync_interval", constants.DefaultSyncInterval)
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
		c.logLevelFlag = true
	}
}

// Reconciler builds the reconciliation configuration.
func (c *Config) Reconciler() (reconciler.Config, error) {
	statuses, err := format.StatusPreset(c.StatusPreset)
	if err != nil {
		return reconciler.Config{}, err
	}

	cfg := reconciler.Config{
		Lookback:        c.Lookback,
		PatchWindow:     c.PatchWindow,
		SerialFloor:     c.SerialFloor,
		RowDelay:        c.RowDelay,
		BatchDelay:      c.BatchDelay,
		BatchSize:       c.BatchSize,
		Statuses:        statuses,
		PrintStatus:     c.PrintStatus,
		PackStatus:      c.PackStatus,
		MultiItemMarker: c.MultiItemMarker,
		DisplayOffset:   c.DisplayOffset,
	}
	if err := cfg.Validate(); err != nil {
		return reconciler.Config{}, err
	}
	return cfg, nil
}

// QuietWindow builds the quiet window.
func (c *Config) QuietWindow() (schedule.QuietWindow, error) {
	return schedule.NewQuietWindow(c.QuietStart, c.QuietEnd, c.Timezone)
}

// SourceConfig builds the order source configuration.
func (c *Config) SourceConfig() ordersync.SourceConfig {
	return ordersync.SourceConfig{
		URI:           c.Source,
		Endpoint:      c.SPAPIEndpoint,
		MarketplaceID: c.MarketplaceID,
		AccessToken:   c.SPAPIAccessToken,
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	// godotenv.Load keeps variables that are already set
	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
