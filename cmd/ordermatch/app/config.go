package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/ordermatch/internal/auth"
	"github.com/agentstation/ordermatch/internal/cmd/output"
	"github.com/agentstation/ordermatch/pkg/constants"
	"github.com/agentstation/ordermatch/pkg/errors"
)

// Ledger backends.
const (
	LedgerSheets = "sheets"
	LedgerXLSX   = "xlsx"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Config file
	ConfigFile string

	// Ledger
	Ledger           string
	SpreadsheetID    string
	SpreadsheetTitle string
	Worksheet        string
	LedgerFile       string

	// Credentials
	CredentialsFile    string
	CredentialsDir     string
	ServiceAccountJSON string

	// Catalog
	CatalogFile string
	ExcludeTabs []string
	StripImages bool

	// Matching
	Threshold     float64
	TopN          int
	CommitTimeout time.Duration
	SoldOutMarker string

	// Images
	ImageCacheTTL time.Duration

	// Logging configuration
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.ordermatch.yaml or ./.ordermatch.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Ledger:           strings.ToLower(v.GetString("ledger")),
		SpreadsheetID:    v.GetString("spreadsheet_id"),
		SpreadsheetTitle: v.GetString("spreadsheet_title"),
		Worksheet:        v.GetString("worksheet"),
		LedgerFile:       v.GetString("ledger_file"),

		CredentialsFile:    v.GetString("credentials_file"),
		CredentialsDir:     v.GetString("credentials_dir"),
		ServiceAccountJSON: v.GetString(auth.EnvServiceAccountJSON),

		CatalogFile: v.GetString("catalog_file"),
		ExcludeTabs: splitList(v.GetStringSlice("exclude_tabs")),
		StripImages: v.GetBool("strip_images"),

		Threshold:     v.GetFloat64("threshold"),
		TopN:          v.GetInt("top_n"),
		CommitTimeout: v.GetDuration("commit_timeout"),
		SoldOutMarker: v.GetString("sold_out_marker"),

		ImageCacheTTL: v.GetDuration("image_cache_ttl"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger", LedgerSheets)
	v.SetDefault("spreadsheet_title", constants.DefaultSpreadsheetTitle)
	v.SetDefault("worksheet", constants.DefaultWorksheet)
	v.SetDefault("credentials_dir", constants.DefaultCredentialsDir)
	v.SetDefault("exclude_tabs", []string{constants.MonthEndStockTab})
	v.SetDefault("strip_images", true)
	v.SetDefault("threshold", constants.DefaultThreshold)
	v.SetDefault("top_n", constants.DefaultTopN)
	v.SetDefault("commit_timeout", constants.DefaultCommitTimeout)
	v.SetDefault("sold_out_marker", constants.SoldOutMarker)
	v.SetDefault("image_cache_ttl", constants.ImageCacheTTL)
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	switch c.Ledger {
	case LedgerSheets, LedgerXLSX:
	default:
		return &errors.ValidationError{
			Field:   "ledger",
			Value:   c.Ledger,
			Message: fmt.Sprintf("must be %q or %q", LedgerSheets, LedgerXLSX),
		}
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return &errors.ValidationError{Field: "threshold", Value: c.Threshold, Message: "must be within [0, 100]"}
	}
	if c.TopN < 0 {
		return &errors.ValidationError{Field: "top_n", Value: c.TopN, Message: "cannot be negative"}
	}
	if c.CommitTimeout <= 0 {
		return &errors.ValidationError{Field: "commit_timeout", Value: c.CommitTimeout, Message: "must be positive"}
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win; godotenv never overrides
// variables that are already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// splitList accepts both YAML lists and comma-separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
