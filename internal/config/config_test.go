package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/ne_10m_admin_0_countries.shp", cfg.Data.CountriesPath)
	assert.Equal(t, "worldview.db", cfg.Data.CachePath)
	assert.InDelta(t, 0.3, cfg.Viewport.ZoomMin, 0.001)
	assert.InDelta(t, 50.0, cfg.Viewport.ZoomMax, 0.001)
	assert.InDelta(t, 1.1, cfg.Viewport.ZoomStepFactor, 0.001)
	assert.InDelta(t, 64.0, cfg.Viewport.CullingMarginPx, 0.001)
	assert.True(t, cfg.Viewport.ClampToWorld)
	assert.Equal(t, 1200, cfg.Viewport.ScreenWidth)
	assert.Equal(t, 800, cfg.Viewport.ScreenHeight)
	assert.InDelta(t, 2.0, cfg.LOD.ProvinceMinZoom, 0.001)
	assert.InDelta(t, 3.0, cfg.LOD.CityMinZoom, 0.001)
	assert.NotEmpty(t, cfg.LOD.SimplifyBands)
	assert.NotEmpty(t, cfg.LOD.CityBands)
	assert.False(t, cfg.Selection.ClearOnEmptyClick)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20.0, cfg.Server.RateLimitRPS, 0.001)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
data:
  cache_path: /var/lib/worldview/features.db
viewport:
  zoom_max: 20
  clamp_to_world: false
lod:
  province_min_zoom: 1.5
  simplify_bands:
    - max_zoom: 1.0
      tolerance: 0.8
server:
  port: 9090
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/worldview/features.db", cfg.Data.CachePath)
	assert.InDelta(t, 20.0, cfg.Viewport.ZoomMax, 0.001)
	assert.False(t, cfg.Viewport.ClampToWorld)
	assert.InDelta(t, 1.5, cfg.LOD.ProvinceMinZoom, 0.001)
	require.Len(t, cfg.LOD.SimplifyBands, 1)
	assert.InDelta(t, 0.8, cfg.LOD.SimplifyBands[0].Tolerance, 0.001)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.3, cfg.Viewport.ZoomMin, 0.001)
	assert.NotEmpty(t, cfg.LOD.CityBands)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
server:
  port: 9090
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("WORLDVIEW_SERVER_PORT", "3000")
	t.Setenv("WORLDVIEW_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("WORLDVIEW_DATA_CACHE_PATH", "/tmp/other.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Data.CachePath)
}

func validDefaults(t *testing.T) *Config {
	t.Helper()
	chTempDir(t)
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidateModes(t *testing.T) {
	cfg := validDefaults(t)

	for _, mode := range []string{"load", "serve", "query", "status"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}

	err := cfg.Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateLoadMissingPaths(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Data.CountriesPath = ""
	cfg.Data.CachePath = ""

	err := cfg.Validate("load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.countries_path is required")
	assert.Contains(t, err.Error(), "data.cache_path is required")
}

func TestValidateServeBadPort(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateViewportBounds(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Viewport.ZoomMin = 5
	cfg.Viewport.ZoomMax = 2
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewport.zoom_min")

	cfg = validDefaults(t)
	cfg.Viewport.ZoomStepFactor = 1.0
	err = cfg.Validate("query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zoom_step_factor")

	cfg = validDefaults(t)
	cfg.Viewport.ScreenWidth = 0
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screen_width")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
