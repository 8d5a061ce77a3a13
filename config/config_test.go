package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/geodata-ops/firepipe/config"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg := config.Load("")

	assert.Contains(t, cfg.FireURL, "firms.modaps.eosdis.nasa.gov")
	assert.Contains(t, cfg.CountriesURL, "world-countries")
	assert.Equal(t, []string{"Brazil", "Peru", "Bolivia"}, cfg.Countries)
	assert.Equal(t, "Filtered Fire Data - Brazil, Peru, Bolivia", cfg.Portal.ItemTitle)
	assert.Empty(t, cfg.Portal.Username, "credentials are never baked in")
	assert.Empty(t, cfg.Portal.Password)
}

func TestLoadFromEnv(t *testing.T) {
	viper.Reset()

	t.Setenv("FIREPIPE_PORTAL_URL", "https://gis.example.org")
	t.Setenv("FIREPIPE_PORTAL_USERNAME", "publisher")
	t.Setenv("FIREPIPE_PORTAL_PASSWORD", "secret")
	t.Setenv("FIREPIPE_FIRE_URL", "https://feeds.example.org/fires.csv")
	t.Setenv("FIREPIPE_LOG_LEVEL", "info")

	cfg := config.Load("")

	assert.Equal(t, "https://gis.example.org", cfg.Portal.URL)
	assert.Equal(t, "publisher", cfg.Portal.Username)
	assert.Equal(t, "secret", cfg.Portal.Password)
	assert.Equal(t, "https://feeds.example.org/fires.csv", cfg.FireURL)
	assert.Equal(t, "info", cfg.LogLevel)
}
