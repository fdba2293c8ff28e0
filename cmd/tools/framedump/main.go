// framedump строит один кадр по конфигурации и печатает его в виде ASCII.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/tilecaster/internal/app"
	"github.com/annel0/tilecaster/internal/config"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world/entity"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path")
		width      = flag.Int("width", 0, "Override render width")
		height     = flag.Int("height", 0, "Override render height")
		yaw        = flag.Float64("yaw", 0, "Extra yaw in radians")
		pitch      = flag.Float64("pitch", 0, "Pitch delta")
		sprite     = flag.Float64("sprite", 0, "Place a test body this far ahead (0 = none)")
		out        = flag.String("out", "", "Output file (default stdout)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if *width > 0 {
		cfg.Render.Width = *width
	}
	if *height > 0 {
		cfg.Render.Height = *height
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	scene := app.NewScene(cfg)

	if *sprite > 0 {
		dir := scene.Camera.Direction.XY().Mul(*sprite)
		pos := scene.Camera.Position.XY().Add(dir)
		scene.Entities.SpawnEntity(entity.EntityTypeNPC, vec.Vec3Float{X: pos.X, Y: pos.Y}, 0.8)
	}

	f := scene.Pipeline.Update(context.Background(), scene.Camera, frame.Input{YawDelta: *yaw, PitchDelta: *pitch}, scene.Entities.Snapshot())

	w := os.Stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			log.Fatalf("❌ Failed to create %s: %v", *out, err)
		}
		defer file.Close()
		w = file
	}

	fmt.Fprintf(w, "frame #%d: rays=%d cells=%d hits=%d floor=%d sprites=%d culled=%d in %s\n",
		f.Number, f.Stats.Rays, f.Stats.CellsVisited, f.Stats.Hits, f.Stats.FloorHits,
		len(f.Sprites), f.Culled, f.Duration)
	fmt.Fprint(w, renderASCII(f, scene.Camera, scene.Pipeline.Projector()))
}
