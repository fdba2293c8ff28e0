// Package app собирает ядро рендера из конфигурации: мир, камеру и конвейер кадров.
package app

import (
	"time"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/config"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/logging"
	"github.com/annel0/tilecaster/internal/projection"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
	"github.com/annel0/tilecaster/internal/world/entity"
)

// Scene — собранное ядро рендера
type Scene struct {
	World    *world.World
	Camera   *camera.Camera
	Pipeline *frame.Pipeline
	Entities *entity.EntityManager
}

// NewWorld создаёт и заполняет мир по секции world конфигурации
func NewWorld(cfg config.WorldConfig) *world.World {
	var opts []world.Option
	if cfg.LegacyTileWrap {
		opts = append(opts, world.WithLegacyTileWrap())
	}
	w := world.NewWorld(opts...)

	gen := world.NewWorldGenerator(cfg.Seed)
	gen.NoiseScale = cfg.NoiseScale
	gen.FillThreshold = cfg.FillThreshold
	gen.MaxHeight = cfg.MaxHeight

	log := logging.GetWorldLogger()
	start := time.Now()
	gen.Generate(w)
	log.Info("🌍 Мир сгенерирован: seed=%d, %s", cfg.Seed, time.Since(start).Round(time.Millisecond))

	return w
}

// NewScene собирает сцену. Дополнительные opts передаются конвейеру
// после параметров из конфигурации.
func NewScene(cfg *config.Config, opts ...frame.Option) *Scene {
	w := NewWorld(cfg.World)

	cam := camera.New(
		vec.Vec3Float{X: cfg.Camera.X, Y: cfg.Camera.Y, Z: cfg.Camera.Z},
		cfg.Camera.Yaw,
		cfg.Render.FOV,
	)

	vp := projection.Viewport{Width: cfg.Render.Width, Height: cfg.Render.Height}
	pipelineOpts := append([]frame.Option{
		frame.WithMaxSteps(cfg.Render.MaxSteps),
		frame.WithProjector(projection.NewProjector(cfg.Render.ProjectionRatio)),
	}, opts...)

	return &Scene{
		World:    w,
		Camera:   cam,
		Pipeline: frame.NewPipeline(w, vp, pipelineOpts...),
		Entities: entity.NewEntityManager(),
	}
}
