package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalid возвращается Validate для недопустимых значений
var ErrInvalid = errors.New("invalid config")

// Config корневая структура конфигурации приложения.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	World     WorldConfig     `yaml:"world"`
	Camera    CameraConfig    `yaml:"camera"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
}

// RenderConfig — параметры экрана и лучей
type RenderConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FOV             float64 `yaml:"fov"`
	MaxSteps        int     `yaml:"max_steps"`
	ProjectionRatio float64 `yaml:"projection_ratio"`
}

// WorldConfig — параметры генератора мира
type WorldConfig struct {
	Seed           int64   `yaml:"seed"`
	NoiseScale     float64 `yaml:"noise_scale"`
	FillThreshold  float64 `yaml:"fill_threshold"`
	MaxHeight      float64 `yaml:"max_height"`
	LegacyTileWrap bool    `yaml:"legacy_tile_wrap"`
}

// CameraConfig — начальная поза камеры
type CameraConfig struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
	Dir   string `yaml:"dir"`
}

// EventBusConfig — шина событий сессии. Пустой URL — in-memory шина.
type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Capacity  int    `yaml:"capacity"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:           320,
			Height:          200,
			FOV:             66,
			MaxSteps:        64,
			ProjectionRatio: 1,
		},
		World: WorldConfig{
			Seed:          1,
			NoiseScale:    0.15,
			FillThreshold: 0.58,
			MaxHeight:     3,
		},
		Camera: CameraConfig{
			X: 0.5,
			Y: 0.5,
			Z: 0.5,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "tilecaster",
		},
		Logging: LoggingConfig{
			Level: "INFO",
			Dir:   "logs",
		},
		EventBus: EventBusConfig{
			Stream:    "TILECASTER",
			Retention: 24,
			Capacity:  256,
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "TILECASTER_REST_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV TILECASTER_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TILECASTER_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, c.Render.Width, c.Render.Height)
	case c.Render.FOV <= 0 || c.Render.FOV >= 180:
		return fmt.Errorf("%w: render fov %.2f outside (0, 180)", ErrInvalid, c.Render.FOV)
	case c.Render.MaxSteps <= 0:
		return fmt.Errorf("%w: render max_steps %d", ErrInvalid, c.Render.MaxSteps)
	case c.Render.ProjectionRatio <= 0:
		return fmt.Errorf("%w: render projection_ratio %.2f", ErrInvalid, c.Render.ProjectionRatio)
	case c.World.NoiseScale <= 0:
		return fmt.Errorf("%w: world noise_scale %.2f", ErrInvalid, c.World.NoiseScale)
	case c.World.FillThreshold < 0 || c.World.FillThreshold > 1:
		return fmt.Errorf("%w: world fill_threshold %.2f outside [0, 1]", ErrInvalid, c.World.FillThreshold)
	case c.World.MaxHeight < 1:
		return fmt.Errorf("%w: world max_height %.2f", ErrInvalid, c.World.MaxHeight)
	case c.EventBus.Capacity <= 0:
		return fmt.Errorf("%w: eventbus capacity %d", ErrInvalid, c.EventBus.Capacity)
	case c.Server.RESTPort < 0 || c.Server.RESTPort > 65535:
		return fmt.Errorf("%w: server rest_port %d", ErrInvalid, c.Server.RESTPort)
	}
	return nil
}
