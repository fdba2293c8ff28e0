package api

import (
	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/projection"
	"github.com/annel0/tilecaster/internal/raycast"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world/entity"
)

// RectView — прямоугольник на экране
type RectView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// HitView — попадание луча в JSON-ответе
type HitView struct {
	Cell    [2]int   `json:"cell"`
	Front   float64  `json:"front"`
	Back    float64  `json:"back"`
	Face    string   `json:"face,omitempty"`
	Floor   bool     `json:"floor,omitempty"`
	Type    string   `json:"type"`
	Offset  float64  `json:"offset"`
	Height  float64  `json:"height"`
	Texture uint16   `json:"texture"`
	Span    RectView `json:"span"` // Вертикальная полоса тайла на экране
}

// ColumnView — столбец экрана
type ColumnView struct {
	X    int       `json:"x"`
	Hits []HitView `json:"hits"`
}

// SpriteView — спроецированное тело
type SpriteView struct {
	ID    uint64   `json:"id"`
	Type  string   `json:"type"`
	Rect  RectView `json:"rect"`
	Depth float64  `json:"depth"`
}

// CameraView — поза камеры
type CameraView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	FOV   float64 `json:"fov"`
}

// StatsView — счетчики кадра
type StatsView struct {
	Rays         int `json:"rays"`
	CellsVisited int `json:"cells_visited"`
	Hits         int `json:"hits"`
	FloorHits    int `json:"floor_hits"`
	Culled       int `json:"culled"`
	Unplaced     int `json:"unplaced"`
}

// FrameView — снимок кадра, не зависящий от буферов конвейера
type FrameView struct {
	Number     uint64       `json:"number"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Horizon    float64      `json:"horizon"`
	Camera     CameraView   `json:"camera"`
	Columns    []ColumnView `json:"columns"`
	Sprites    []SpriteView `json:"sprites"`
	Stats      StatsView    `json:"stats"`
	DurationMS float64      `json:"duration_ms"`
}

func newRectView(r projection.Rect) RectView {
	return RectView{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func newCameraView(cam *camera.Camera) CameraView {
	return CameraView{
		X:     cam.Position.X,
		Y:     cam.Position.Y,
		Z:     cam.Position.Z,
		Yaw:   cam.Yaw(),
		Pitch: cam.Pitch(),
		FOV:   cam.FOV(),
	}
}

func newFrameView(f *frame.Frame, cam *camera.Camera, proj projection.Projector) FrameView {
	view := FrameView{
		Number:  f.Number,
		Width:   f.Viewport.Width,
		Height:  f.Viewport.Height,
		Horizon: projection.Horizon(cam, f.Viewport),
		Camera:  newCameraView(cam),
		Columns: make([]ColumnView, len(f.Columns)),
		Sprites: make([]SpriteView, 0, len(f.Sprites)),
		Stats: StatsView{
			Rays:         f.Stats.Rays,
			CellsVisited: f.Stats.CellsVisited,
			Hits:         f.Stats.Hits,
			FloorHits:    f.Stats.FloorHits,
			Culled:       f.Culled,
			Unplaced:     f.Unplaced,
		},
		DurationMS: float64(f.Duration.Microseconds()) / 1000,
	}

	for x := range f.Columns {
		hits := f.Columns[x].Slice()
		col := ColumnView{X: x, Hits: make([]HitView, 0, len(hits))}
		for _, h := range hits {
			col.Hits = append(col.Hits, newHitView(h, x, cam, proj, f.Viewport))
		}
		view.Columns[x] = col
	}

	for _, s := range f.Sprites {
		view.Sprites = append(view.Sprites, SpriteView{
			ID:    s.ID,
			Type:  s.Type.String(),
			Rect:  newRectView(s.Rect),
			Depth: s.Depth,
		})
	}
	return view
}

func newHitView(h raycast.Hit, x int, cam *camera.Camera, proj projection.Projector, vp projection.Viewport) HitView {
	// Для пола ближняя точка совпадает с камерой, полосу считаем по дальней
	dist := h.Front.Dist
	if h.Floor {
		dist = h.Back.Dist
	}
	span := proj.ProjectTileSpan(cam, h.Tile.Offset, h.Tile.Height, dist, vp)
	span.X = float64(x)

	view := HitView{
		Cell:    [2]int{h.Cell.X, h.Cell.Y},
		Front:   h.Front.Dist,
		Back:    h.Back.Dist,
		Floor:   h.Floor,
		Type:    h.Tile.Type.String(),
		Offset:  h.Tile.Offset,
		Height:  h.Tile.Height,
		Texture: h.Tile.Texture,
		Span:    newRectView(span),
	}
	if !h.Floor {
		view.Face = h.Face.String()
	}
	return view
}

func cellOf(pos vec.Vec2Float) [2]int {
	c := pos.Floor()
	return [2]int{c.X, c.Y}
}

// EntityView — тело в ответах /api/entities
type EntityView struct {
	ID     uint64  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Size   float64 `json:"size"`
	Active bool    `json:"active"`
}

func newEntityViews(list []entity.Entity) []EntityView {
	views := make([]EntityView, len(list))
	for i, e := range list {
		views[i] = EntityView{
			ID:     e.ID,
			Type:   e.Type.String(),
			X:      e.Position.X,
			Y:      e.Position.Y,
			Z:      e.Position.Z,
			Size:   e.Size,
			Active: e.Active,
		}
	}
	return views
}
