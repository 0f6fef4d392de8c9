// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridian-maps/worldview/internal/lod"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Viewport  ViewportConfig  `yaml:"viewport" mapstructure:"viewport"`
	LOD       lod.Config      `yaml:"lod" mapstructure:"lod"`
	Selection SelectionConfig `yaml:"selection" mapstructure:"selection"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the Natural Earth shapefiles and the feature cache.
type DataConfig struct {
	CountriesPath string `yaml:"countries_path" mapstructure:"countries_path"`
	ProvincesPath string `yaml:"provinces_path" mapstructure:"provinces_path"`
	CitiesPath    string `yaml:"cities_path" mapstructure:"cities_path"`
	CachePath     string `yaml:"cache_path" mapstructure:"cache_path"`
}

// ViewportConfig bounds and tunes the pan/zoom transform.
type ViewportConfig struct {
	ZoomMin         float64 `yaml:"zoom_min" mapstructure:"zoom_min"`
	ZoomMax         float64 `yaml:"zoom_max" mapstructure:"zoom_max"`
	ZoomStepFactor  float64 `yaml:"zoom_step_factor" mapstructure:"zoom_step_factor"`
	CullingMarginPx float64 `yaml:"culling_margin_px" mapstructure:"culling_margin_px"`
	ClampToWorld    bool    `yaml:"clamp_to_world" mapstructure:"clamp_to_world"`
	ScreenWidth     int     `yaml:"screen_width" mapstructure:"screen_width"`
	ScreenHeight    int     `yaml:"screen_height" mapstructure:"screen_height"`
}

// SelectionConfig tunes click-selection behavior.
type SelectionConfig struct {
	ClearOnEmptyClick bool `yaml:"clear_on_empty_click" mapstructure:"clear_on_empty_click"`
}

// ServerConfig configures the viewer HTTP server.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WORLDVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.countries_path", "data/ne_10m_admin_0_countries.shp")
	v.SetDefault("data.provinces_path", "data/ne_10m_admin_1_states_provinces.shp")
	v.SetDefault("data.cities_path", "data/ne_10m_populated_places.shp")
	v.SetDefault("data.cache_path", "worldview.db")
	v.SetDefault("viewport.zoom_min", 0.3)
	v.SetDefault("viewport.zoom_max", 50.0)
	v.SetDefault("viewport.zoom_step_factor", 1.1)
	v.SetDefault("viewport.culling_margin_px", 64.0)
	v.SetDefault("viewport.clamp_to_world", true)
	v.SetDefault("viewport.screen_width", 1200)
	v.SetDefault("viewport.screen_height", 800)
	v.SetDefault("lod.province_min_zoom", 2.0)
	v.SetDefault("lod.city_min_zoom", 3.0)
	v.SetDefault("selection.clear_on_empty_click", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	// Band lists have no scalar defaults; fall back to the lod package's.
	if len(cfg.LOD.SimplifyBands) == 0 {
		cfg.LOD.SimplifyBands = lod.DefaultConfig().SimplifyBands
	}
	if len(cfg.LOD.CityBands) == 0 {
		cfg.LOD.CityBands = lod.DefaultConfig().CityBands
	}

	return &cfg, nil
}

// Validate checks the fields the given command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	checkViewport := func() {
		if c.Viewport.ZoomMin <= 0 || c.Viewport.ZoomMax <= c.Viewport.ZoomMin {
			errs = append(errs, "viewport.zoom_min must be > 0 and < viewport.zoom_max")
		}
		if c.Viewport.ZoomStepFactor <= 1 {
			errs = append(errs, "viewport.zoom_step_factor must be > 1")
		}
		if c.Viewport.ScreenWidth <= 0 || c.Viewport.ScreenHeight <= 0 {
			errs = append(errs, "viewport.screen_width and screen_height must be > 0")
		}
	}
	checkCache := func() {
		if c.Data.CachePath == "" {
			errs = append(errs, "data.cache_path is required")
		}
	}

	switch mode {
	case "load":
		checkCache()
		if c.Data.CountriesPath == "" {
			errs = append(errs, "data.countries_path is required")
		}
		if c.Data.ProvincesPath == "" {
			errs = append(errs, "data.provinces_path is required")
		}
		if c.Data.CitiesPath == "" {
			errs = append(errs, "data.cities_path is required")
		}
	case "serve":
		checkCache()
		checkViewport()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "query":
		checkCache()
		checkViewport()
	case "status":
		checkCache()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
