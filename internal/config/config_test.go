package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "owlskill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.True(t, cfg.Transports.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, "/skill", cfg.Transports.HTTP.Path)
	assert.False(t, cfg.Transports.GRPC.Enabled)
	assert.Equal(t, 150*time.Second, cfg.Skill.TimestampTolerance)
	assert.Equal(t, "en-US", cfg.Skill.DefaultLocale)
	assert.Equal(t, 10*time.Second, cfg.KitchenOwl.Timeout)
	assert.True(t, cfg.KitchenOwl.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.KitchenOwl.Breaker.FailureThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
kitchenowl:
  api_url: https://owl.example.com/api/
  api_key: secret
  household_id: "7"
  timeout: 3s
skill:
  application_id: amzn1.ask.skill.test
transports:
  grpc:
    enabled: true
    port: 6000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://owl.example.com/api", cfg.KitchenOwl.APIURL, "trailing slash trimmed")
	assert.Equal(t, "secret", cfg.KitchenOwl.APIKey)
	assert.Equal(t, "7", cfg.KitchenOwl.HouseholdID)
	assert.Equal(t, 3*time.Second, cfg.KitchenOwl.Timeout)
	assert.Equal(t, "amzn1.ask.skill.test", cfg.Skill.ApplicationID)
	assert.True(t, cfg.Transports.GRPC.Enabled)
	assert.Equal(t, 6000, cfg.Transports.GRPC.Port)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Env(t *testing.T) {
	t.Run("legacy KITCHENOWL variables", func(t *testing.T) {
		t.Setenv("KITCHENOWL_API_URL", "http://owl.local/api")
		t.Setenv("KITCHENOWL_API_KEY", "legacy-key")
		t.Setenv("KITCHENOWL_HOUSEHOLD_ID", "3")
		t.Setenv("KITCHENOWL_SHOPPING_LIST_ID", "12")

		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)

		assert.Equal(t, "http://owl.local/api", cfg.KitchenOwl.APIURL)
		assert.Equal(t, "legacy-key", cfg.KitchenOwl.APIKey)
		assert.Equal(t, "3", cfg.KitchenOwl.HouseholdID)
		assert.Equal(t, "12", cfg.KitchenOwl.ShoppingListID)
	})

	t.Run("prefixed variables", func(t *testing.T) {
		t.Setenv("OWLSKILL_KITCHENOWL_HOUSEHOLD_ID", "9")
		t.Setenv("OWLSKILL_LOGGING_LEVEL", "debug")

		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)

		assert.Equal(t, "9", cfg.KitchenOwl.HouseholdID)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("api key env reference", func(t *testing.T) {
		t.Setenv("OWL_TOKEN", "from-ref")

		cfg, err := Load(writeConfig(t, "kitchenowl:\n  api_key: ${OWL_TOKEN}\n"))
		require.NoError(t, err)

		assert.Equal(t, "from-ref", cfg.KitchenOwl.APIKey)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Transports: TransportsConfig{HTTP: HTTPConfig{Enabled: true, Path: "/skill"}},
			KitchenOwl: KitchenOwlConfig{APIURL: "http://owl", APIKey: "k", HouseholdID: "1"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.KitchenOwl.APIKey = ""
	cfg.KitchenOwl.HouseholdID = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KITCHENOWL_API_KEY")
	assert.Contains(t, err.Error(), "KITCHENOWL_HOUSEHOLD_ID")

	cfg = valid()
	cfg.KitchenOwl.ShoppingListID = "groceries"
	assert.ErrorContains(t, cfg.Validate(), "not numeric")

	cfg = valid()
	cfg.Transports.HTTP.Enabled = false
	assert.ErrorContains(t, cfg.Validate(), "no transports enabled")

	cfg = valid()
	cfg.Transports.HTTP.Path = "skill"
	assert.ErrorContains(t, cfg.Validate(), "must start with /")
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("OWL_REF", "value")

	assert.Equal(t, "value", resolveEnvRef("${OWL_REF}"))
	assert.Equal(t, "${OWL_MISSING}", resolveEnvRef("${OWL_MISSING}"))
	assert.Equal(t, "plain", resolveEnvRef("plain"))
}

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHandler(LoggingConfig{Level: "warn", Format: "text"}, &buf)

	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))

	slog.New(h).Warn("breaker open", "operation", "add_item")
	assert.Contains(t, buf.String(), "operation=add_item")
}
