package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	t.Setenv("TILECASTER_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
render:
  width: 640
  max_steps: 32
world:
  seed: 42
  legacy_tile_wrap: true
camera:
  yaw: 1.5
telemetry:
  enabled: true
eventbus:
  url: nats://127.0.0.1:4222
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Render.Width)
	assert.Equal(t, 200, cfg.Render.Height, "незаданное поле берется из Default")
	assert.Equal(t, 32, cfg.Render.MaxSteps)
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.True(t, cfg.World.LegacyTileWrap)
	assert.Equal(t, 1.5, cfg.Camera.Yaw)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "tilecaster", cfg.Telemetry.ServiceName)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.EventBus.URL)
	assert.Equal(t, "TILECASTER", cfg.EventBus.Stream)
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "render:\n  height: 100\n")
	t.Setenv("TILECASTER_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Render.Height)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "render: [oops"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "render:\n  fov: 200\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	mutate := []func(*Config){
		func(c *Config) { c.Render.Width = 0 },
		func(c *Config) { c.Render.MaxSteps = -1 },
		func(c *Config) { c.Render.ProjectionRatio = 0 },
		func(c *Config) { c.World.NoiseScale = 0 },
		func(c *Config) { c.World.FillThreshold = 1.5 },
		func(c *Config) { c.World.MaxHeight = 0.5 },
		func(c *Config) { c.Server.RESTPort = 70000 },
		func(c *Config) { c.EventBus.Capacity = 0 },
	}
	for i, m := range mutate {
		cfg := Default()
		m(cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalid, "case %d", i)
	}
}

func TestGetRESTPort(t *testing.T) {
	t.Setenv("TILECASTER_REST_PORT", "")
	s := ServerConfig{}
	assert.Equal(t, 8088, s.GetRESTPort())

	t.Setenv("TILECASTER_REST_PORT", "9090")
	assert.Equal(t, 9090, s.GetRESTPort())

	t.Setenv("TILECASTER_REST_PORT", "bad")
	assert.Equal(t, 8088, s.GetRESTPort())

	s.RESTPort = 7000
	assert.Equal(t, 7000, s.GetRESTPort())
}
