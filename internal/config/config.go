// Package config handles loading and validating the owlskill configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the owlskill daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Skill      SkillConfig      `mapstructure:"skill"`
	KitchenOwl KitchenOwlConfig `mapstructure:"kitchenowl"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP skill endpoint.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"` // route the voice platform posts to
}

// SkillConfig controls request verification and localization.
type SkillConfig struct {
	// ApplicationID, when set, must match the application id of every request.
	ApplicationID string `mapstructure:"application_id"`

	// TimestampTolerance bounds the age of a request's timestamp. Zero disables the check.
	TimestampTolerance time.Duration `mapstructure:"timestamp_tolerance"`

	DefaultLocale string `mapstructure:"default_locale"`
	LocalesDir    string `mapstructure:"locales_dir"` // extra/override locale files
}

// KitchenOwlConfig holds the shopping-list API settings.
type KitchenOwlConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	HouseholdID    string        `mapstructure:"household_id"`
	ShoppingListID string        `mapstructure:"shopping_list_id"` // empty: first list of the household
	Timeout        time.Duration `mapstructure:"timeout"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of the KitchenOwl API.
type BreakerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// legacyEnv maps config keys to the environment variables used by earlier
// deployments of the skill. They are honoured alongside OWLSKILL_*.
var legacyEnv = map[string]string{
	"kitchenowl.api_url":          "KITCHENOWL_API_URL",
	"kitchenowl.api_key":          "KITCHENOWL_API_KEY",
	"kitchenowl.household_id":     "KITCHENOWL_HOUSEHOLD_ID",
	"kitchenowl.shopping_list_id": "KITCHENOWL_SHOPPING_LIST_ID",
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./owlskill.yaml, ./configs/owlskill.yaml, /etc/owlskill/owlskill.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.path", "/skill")
	v.SetDefault("skill.application_id", "")
	v.SetDefault("skill.timestamp_tolerance", 150*time.Second)
	v.SetDefault("skill.default_locale", "en-US")
	v.SetDefault("skill.locales_dir", "")
	v.SetDefault("kitchenowl.api_url", "")
	v.SetDefault("kitchenowl.api_key", "")
	v.SetDefault("kitchenowl.household_id", "")
	v.SetDefault("kitchenowl.shopping_list_id", "")
	v.SetDefault("kitchenowl.timeout", 10*time.Second)
	v.SetDefault("kitchenowl.breaker.enabled", true)
	v.SetDefault("kitchenowl.breaker.failure_threshold", 5)
	v.SetDefault("kitchenowl.breaker.open_timeout", 30*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("owlskill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/owlskill")
	}

	// Environment variables: OWLSKILL_SERVER_HEALTH_PORT, OWLSKILL_KITCHENOWL_API_URL, etc.
	v.SetEnvPrefix("OWLSKILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "OWLSKILL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${KITCHENOWL_TOKEN}")
	cfg.KitchenOwl.APIKey = resolveEnvRef(cfg.KitchenOwl.APIKey)
	cfg.KitchenOwl.APIURL = strings.TrimRight(cfg.KitchenOwl.APIURL, "/")

	return &cfg, nil
}

// Validate reports settings the daemon cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.KitchenOwl.APIURL == "" {
		errs = append(errs, errors.New("kitchenowl.api_url is required (KITCHENOWL_API_URL)"))
	}
	if c.KitchenOwl.APIKey == "" {
		errs = append(errs, errors.New("kitchenowl.api_key is required (KITCHENOWL_API_KEY)"))
	}
	if c.KitchenOwl.HouseholdID == "" {
		errs = append(errs, errors.New("kitchenowl.household_id is required (KITCHENOWL_HOUSEHOLD_ID)"))
	}
	if id := c.KitchenOwl.ShoppingListID; id != "" {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			errs = append(errs, fmt.Errorf("kitchenowl.shopping_list_id %q is not numeric", id))
		}
	}
	if !c.Transports.HTTP.Enabled && !c.Transports.GRPC.Enabled {
		errs = append(errs, errors.New("no transports enabled: enable at least one in config"))
	}
	if c.Transports.HTTP.Enabled && !strings.HasPrefix(c.Transports.HTTP.Path, "/") {
		errs = append(errs, fmt.Errorf("transports.http.path %q must start with /", c.Transports.HTTP.Path))
	}
	return errors.Join(errs...)
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	slog.SetDefault(slog.New(NewLogHandler(cfg, os.Stdout)))
}

// NewLogHandler builds the slog handler SetupLogging installs, writing to w.
func NewLogHandler(cfg LoggingConfig, w io.Writer) slog.Handler {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.ToLower(cfg.Format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
