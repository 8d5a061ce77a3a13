package config

import (
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	logPrefix = "config"

	defaultFireURL      = "https://firms.modaps.eosdis.nasa.gov/data/active_fire/modis-c6.1/csv/MODIS_C6_1_South_America_7d.csv"
	defaultCountriesURL = "https://hub.arcgis.com/datasets/esri::world-countries-generalized.geojson"
	defaultItemTitle    = "Filtered Fire Data - Brazil, Peru, Bolivia"
)

var defaultCountries = []string{"Brazil", "Peru", "Bolivia"}

// PortalConfig - connection parameters for the GIS portal
type PortalConfig struct {
	URL       string
	Username  string
	Password  string
	ItemTitle string
}

// Config - full pipeline configuration
type Config struct {
	FireURL      string
	CountriesURL string
	Countries    []string
	Portal       PortalConfig
	LogLevel     string
	SentryDSN    string
}

// Load - read configuration from an optional yaml file and the environment.
// Environment variables use the FIREPIPE prefix with dots replaced by
// underscores, e.g. FIREPIPE_PORTAL_URL.
func Load(file string) *Config {
	if err := godotenv.Load(); err == nil {
		log.WithField("prefix", logPrefix).Debug("loaded .env file")
	}

	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		log.WithField("prefix", logPrefix).Info("no config file, read config from env")
		viper.AllowEmptyEnv(false)
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("firepipe")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("fire.url", defaultFireURL)
	viper.SetDefault("countries.url", defaultCountriesURL)
	viper.SetDefault("countries.keep", defaultCountries)
	viper.SetDefault("portal.item_title", defaultItemTitle)

	return &Config{
		FireURL:      viper.GetString("fire.url"),
		CountriesURL: viper.GetString("countries.url"),
		Countries:    viper.GetStringSlice("countries.keep"),
		Portal: PortalConfig{
			URL:       viper.GetString("portal.url"),
			Username:  viper.GetString("portal.username"),
			Password:  viper.GetString("portal.password"),
			ItemTitle: viper.GetString("portal.item_title"),
		},
		LogLevel:  viper.GetString("log.level"),
		SentryDSN: viper.GetString("sentry.dsn"),
	}
}
