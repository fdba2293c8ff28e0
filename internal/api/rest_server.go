package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/logging"
	"github.com/annel0/tilecaster/internal/metrics"
	"github.com/annel0/tilecaster/internal/middleware"
	"github.com/annel0/tilecaster/internal/vec"
	"github.com/annel0/tilecaster/internal/world/entity"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет отладочный REST API рендера
type RestServer struct {
	router     *gin.Engine
	session    *Session
	port       string
	metrics    *ServerMetrics
	logger     *logging.Logger
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // адрес для запуска сервера, например ":8088"
	Session  *Session             // сессия рендера
	Registry *prometheus.Registry // реестр метрик; nil — новый реестр
	Logger   *logging.Logger      // nil — глобальный логгер
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(metrics.Namespace))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware(metrics.Namespace, config.Registry, config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:  router,
		session: config.Session,
		port:    config.Port,
		metrics: NewServerMetrics(),
		logger:  config.Logger,
	}
	if server.logger == nil {
		server.logger = logging.DefaultLogger()
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/stats", rs.handleStats)
		api.GET("/frame", rs.handleFrame)
		api.GET("/tile", rs.handleTile)

		cam := api.Group("/camera")
		cam.GET("", rs.handleGetCamera)
		cam.POST("/rotate", rs.handleRotate)
		cam.POST("/move", rs.handleMove)

		ents := api.Group("/entities")
		ents.GET("", rs.handleListEntities)
		ents.POST("", rs.handleSpawnEntity)
		ents.DELETE("/:id", rs.handleDespawnEntity)
	}
}

// Handler возвращает http.Handler сервера. Ответы сжимаются gzip,
// если клиент прислал Accept-Encoding: gzip.
func (rs *RestServer) Handler() http.Handler {
	return gzhttp.GzipHandler(rs.router)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RotateRequest — поворот камеры в радианах
type RotateRequest struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// MoveRequest — сдвиг камеры по плоскости
type MoveRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// SpawnRequest — создание тела
type SpawnRequest struct {
	Type string  `json:"type" binding:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Size float64 `json:"size" binding:"required,gt=0"`
}

// requestContext связывает события сессии с trace-id запроса
func (rs *RestServer) requestContext(c *gin.Context) context.Context {
	return WithCorrelationID(c.Request.Context(), c.GetString(middleware.TraceIDKey))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, GenericResponse{
		Success: false,
		Message: message,
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleStats возвращает статистику процесса, мира и последнего кадра
func (rs *RestServer) handleStats(c *gin.Context) {
	proc, err := rs.metrics.Snapshot()
	if err != nil {
		rs.logger.Debug("cpu недоступен: %v", err)
	}

	f := rs.session.Frame(c.Request.Context())

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data: gin.H{
			"process":     proc,
			"server_time": time.Now().Unix(),
			"entities":    rs.session.Entities().GetStats(),
			"world": gin.H{
				"tiles": rs.session.TileCount(),
			},
			"frame": gin.H{
				"number":      f.Number,
				"stats":       f.Stats,
				"duration_ms": f.DurationMS,
			},
		},
	})
}

// handleFrame возвращает последний кадр; ?refresh=true строит новый
func (rs *RestServer) handleFrame(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	var view FrameView
	if refresh {
		view = rs.session.Step(c.Request.Context(), frame.Input{})
	} else {
		view = rs.session.Frame(c.Request.Context())
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Кадр построен",
		Data:    view,
	})
}

// handleTile возвращает тайл в мировой точке ?x=&y=
func (rs *RestServer) handleTile(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		badRequest(c, "Параметры x и y должны быть числами")
		return
	}

	pos := vec.Vec2Float{X: x, Y: y}
	tile, ok := rs.session.Tile(pos)
	if !ok {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Точка вне мира",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тайл получен",
		Data: gin.H{
			"cell":    cellOf(pos),
			"type":    tile.Type.String(),
			"offset":  tile.Offset,
			"height":  tile.Height,
			"texture": tile.Texture,
		},
	})
}

// handleGetCamera возвращает позу камеры
func (rs *RestServer) handleGetCamera(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Камера",
		Data:    rs.session.Camera(),
	})
}

// handleRotate поворачивает камеру и строит кадр
func (rs *RestServer) handleRotate(c *gin.Context) {
	var req RotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	view := rs.session.Rotate(rs.requestContext(c), req.Yaw, req.Pitch)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Камера повернута",
		Data:    view.Camera,
	})
}

// handleMove сдвигает камеру с проверкой коллизий
func (rs *RestServer) handleMove(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	cam, moved := rs.session.Move(rs.requestContext(c), vec.Vec2Float{X: req.DX, Y: req.DY})
	message := "Камера перемещена"
	if !moved {
		message = "Путь заблокирован"
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: moved,
		Message: message,
		Data:    cam,
	})
}

// handleListEntities возвращает активные тела; ?radius= оставляет только тела рядом с камерой
func (rs *RestServer) handleListEntities(c *gin.Context) {
	list := rs.session.Entities().Snapshot()
	if raw := c.Query("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			badRequest(c, "radius должен быть неотрицательным числом")
			return
		}
		list = rs.session.EntitiesNear(radius)
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список тел",
		Data:    newEntityViews(list),
	})
}

func (rs *RestServer) handleSpawnEntity(c *gin.Context) {
	var req SpawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	typ, ok := entity.ParseEntityType(req.Type)
	if !ok {
		badRequest(c, "Неизвестный тип тела")
		return
	}

	id := rs.session.Spawn(rs.requestContext(c), typ, vec.Vec3Float{X: req.X, Y: req.Y, Z: req.Z}, req.Size)
	rs.logger.Info("Создано тело %d (%s)", id, typ)

	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: "Тело создано",
		Data:    gin.H{"id": id},
	})
}

// handleDespawnEntity удаляет тело
func (rs *RestServer) handleDespawnEntity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "Неверный ID")
		return
	}

	if !rs.session.Despawn(rs.requestContext(c), id) {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Тело не найдено",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тело удалено",
	})
}

// Start запускает REST сервер в фоне
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	rs.logger.Info("✅ REST API сервер запущен на http://localhost%s", rs.port)
	return nil
}

// Stop останавливает REST сервер с таймаутом
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}

	rs.logger.Info("🛑 Остановка REST API сервера...")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := rs.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown rest server: %w", err)
	}
	return nil
}
