package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the dashboard-core service settings.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`

	UpstreamURL     string        `mapstructure:"upstream_url"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`

	GeocoderURL       string        `mapstructure:"geocoder_url"`
	GeocoderUserAgent string        `mapstructure:"geocoder_user_agent"`
	GeocoderTimeout   time.Duration `mapstructure:"geocoder_timeout"`
	GeocodeCacheSize  int           `mapstructure:"geocode_cache_size"`

	DefaultMonths int `mapstructure:"default_months"`
}

// LoadConfig loads configuration from the given YAML file, applying
// defaults for everything except the upstream URL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("upstream_timeout", "10s")
	v.SetDefault("geocoder_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder_user_agent", "soochnamitra-dash-core/1.0")
	v.SetDefault("geocoder_timeout", "8s")
	v.SetDefault("geocode_cache_size", 1000)
	v.SetDefault("default_months", 12)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.UpstreamURL == "" {
		return nil, fmt.Errorf("upstream_url is required")
	}
	if !validMonths(config.DefaultMonths) {
		return nil, fmt.Errorf("default_months must be one of 1, 3, 6, 12")
	}
	return &config, nil
}

func validMonths(months int) bool {
	switch months {
	case 1, 3, 6, 12:
		return true
	}
	return false
}
