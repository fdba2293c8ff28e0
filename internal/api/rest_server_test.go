package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/tilecaster/internal/camera"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/logging"
	"github.com/annel0/tilecaster/internal/projection"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *RestServer {
	t.Helper()

	w := world.NewWorld()
	w.SetTile(vec.Vec2{X: 5, Y: 0}, world.Tile{Type: world.TileSolid, Height: 1, Texture: 3})

	cam := camera.New(vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}, 0, camera.DefaultFOV)
	p := frame.NewPipeline(w, projection.Viewport{Width: 31, Height: 20})

	var buf bytes.Buffer
	return NewRestServer(Config{
		Session:  NewSession(w, cam, p, nil),
		Registry: prometheus.NewRegistry(),
		Logger:   logging.NewConsoleLogger("test", &buf),
	})
}

func do(t *testing.T, rs *RestServer, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealth(t *testing.T) {
	rs := newTestServer(t)
	w, _ := do(t, rs, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestFrame(t *testing.T) {
	rs := newTestServer(t)
	w, env := do(t, rs, http.MethodGet, "/api/frame", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var view FrameView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, uint64(1), view.Number)
	require.Len(t, view.Columns, 31)

	center := view.Columns[15]
	require.NotEmpty(t, center.Hits)
	assert.InDelta(t, 4.5, center.Hits[0].Front, 1e-4)
	assert.Equal(t, "west", center.Hits[0].Face)
	assert.Equal(t, "solid", center.Hits[0].Type)
	assert.Equal(t, [2]int{5, 0}, center.Hits[0].Cell)
	assert.Equal(t, 15.0, center.Hits[0].Span.X)
	assert.Positive(t, center.Hits[0].Span.H)

	// Без refresh возвращается тот же кадр
	_, env = do(t, rs, http.MethodGet, "/api/frame", nil)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, uint64(1), view.Number)

	_, env = do(t, rs, http.MethodGet, "/api/frame?refresh=true", nil)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, uint64(2), view.Number)
}

func TestCameraRotate(t *testing.T) {
	rs := newTestServer(t)

	w, env := do(t, rs, http.MethodPost, "/api/camera/rotate", RotateRequest{Yaw: math.Pi / 2, Pitch: 2})
	require.Equal(t, http.StatusOK, w.Code)

	var cam CameraView
	require.NoError(t, json.Unmarshal(env.Data, &cam))
	assert.InDelta(t, math.Pi/2, cam.Yaw, 1e-9)
	assert.Equal(t, camera.MaxPitch, cam.Pitch)
	assert.InDelta(t, camera.DefaultFOV, cam.FOV, 1e-9)

	w, _ = do(t, rs, http.MethodPost, "/api/camera/rotate", "oops")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCameraMove(t *testing.T) {
	rs := newTestServer(t)

	w, env := do(t, rs, http.MethodPost, "/api/camera/move", MoveRequest{DX: 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var cam CameraView
	require.NoError(t, json.Unmarshal(env.Data, &cam))
	assert.InDelta(t, 3.5, cam.X, 1e-9)
	assert.InDelta(t, 0.5, cam.Z, 1e-9)

	// Стена в клетке (5,0) останавливает движение вплотную
	_, env = do(t, rs, http.MethodPost, "/api/camera/move", MoveRequest{DX: 1.5})
	assert.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, &cam))
	assert.InDelta(t, 4.75, cam.X, 1e-9)

	_, env = do(t, rs, http.MethodPost, "/api/camera/move", MoveRequest{DX: 0.5})
	assert.False(t, env.Success)

	_, env = do(t, rs, http.MethodGet, "/api/camera", nil)
	require.NoError(t, json.Unmarshal(env.Data, &cam))
	assert.InDelta(t, 4.75, cam.X, 1e-9)
}

func TestTile(t *testing.T) {
	rs := newTestServer(t)

	w, env := do(t, rs, http.MethodGet, "/api/tile?x=5.5&y=0.25", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tile struct {
		Cell    [2]int `json:"cell"`
		Type    string `json:"type"`
		Texture uint16 `json:"texture"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tile))
	assert.Equal(t, [2]int{5, 0}, tile.Cell)
	assert.Equal(t, "solid", tile.Type)
	assert.Equal(t, uint16(3), tile.Texture)

	_, env = do(t, rs, http.MethodGet, "/api/tile?x=-0.5&y=-0.5", nil)
	require.NoError(t, json.Unmarshal(env.Data, &tile))
	assert.Equal(t, [2]int{-1, -1}, tile.Cell)
	assert.Equal(t, "none", tile.Type)

	w, _ = do(t, rs, http.MethodGet, "/api/tile?x=abc&y=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, rs, http.MethodGet, "/api/tile?x=100000&y=0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntities(t *testing.T) {
	rs := newTestServer(t)

	w, env := do(t, rs, http.MethodPost, "/api/entities", SpawnRequest{Type: "npc", X: 3.5, Y: 0.5, Size: 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	_, env = do(t, rs, http.MethodGet, "/api/frame?refresh=1", nil)
	var view FrameView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Sprites, 1)
	assert.Equal(t, created.ID, view.Sprites[0].ID)
	assert.Equal(t, "npc", view.Sprites[0].Type)
	assert.InDelta(t, 3.0, view.Sprites[0].Depth, 1e-9)

	var near []EntityView
	_, env = do(t, rs, http.MethodGet, "/api/entities?radius=5", nil)
	require.NoError(t, json.Unmarshal(env.Data, &near))
	require.Len(t, near, 1)
	assert.Equal(t, "npc", near[0].Type)
	assert.Equal(t, 3.5, near[0].X)

	_, env = do(t, rs, http.MethodGet, "/api/entities?radius=1", nil)
	require.NoError(t, json.Unmarshal(env.Data, &near))
	assert.Empty(t, near)

	w, _ = do(t, rs, http.MethodGet, "/api/entities?radius=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, rs, http.MethodPost, "/api/entities", SpawnRequest{Type: "dragon", Size: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, rs, http.MethodPost, "/api/entities", SpawnRequest{Type: "npc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/api/entities/" + jsonNumber(created.ID)
	w, _ = do(t, rs, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, rs, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsAndMetrics(t *testing.T) {
	rs := newTestServer(t)

	w, env := do(t, rs, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		World struct {
			Tiles int `json:"tiles"`
		} `json:"world"`
		Frame struct {
			Number uint64 `json:"number"`
		} `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.World.Tiles)
	assert.Equal(t, uint64(1), stats.Frame.Number)

	w, _ = do(t, rs, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tilecaster_http_request_duration_seconds")
}

func TestFrame_Gzip(t *testing.T) {
	rs := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/frame", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.NewDecoder(zr).Decode(&env))
	assert.True(t, env.Success)
}

func jsonNumber(v uint64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
