package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/tilecaster/internal/api"
	"github.com/annel0/tilecaster/internal/app"
	"github.com/annel0/tilecaster/internal/config"
	"github.com/annel0/tilecaster/internal/eventbus"
	"github.com/annel0/tilecaster/internal/frame"
	"github.com/annel0/tilecaster/internal/logging"
	"github.com/annel0/tilecaster/internal/metrics"
	"github.com/annel0/tilecaster/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (по умолчанию $TILECASTER_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := setupLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer func() {
		if err := logging.Components().CloseAll(); err != nil {
			log.Printf("⚠️ Ошибка закрытия логов: %v", err)
		}
	}()

	logging.Info("🎥 Запуск tilecaster: экран %dx%d, FOV %.0f°, шагов луча %d",
		cfg.Render.Width, cfg.Render.Height, cfg.Render.FOV, cfg.Render.MaxSteps)

	ctx := context.Background()

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)
	if err != nil {
		logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		shutdownTelemetry = observability.NoopShutdown
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			logging.Error("❌ Ошибка остановки OpenTelemetry: %v", err)
		}
	}()

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus, err := app.NewEventBus(cfg.EventBus)
	if err != nil {
		logging.Warn("⚠️  JetStream недоступен (%v), используется in-memory шина", err)
		bus = eventbus.NewMemoryBus(cfg.EventBus.Capacity)
	}
	defer bus.Close()
	eventbus.RegisterMetrics(registry, metrics.Namespace, bus)
	if _, err := eventbus.StartLoggingListener(bus, logging.GetComponentLogger("events")); err != nil {
		logging.Error("❌ Ошибка подписки LoggingListener: %v", err)
	}

	scene := app.NewScene(cfg, frame.WithMetrics(metrics.NewRenderMetrics(registry)))
	session := api.NewSession(scene.World, scene.Camera, scene.Pipeline, scene.Entities, api.WithEventBus(bus))

	first := session.Frame(ctx)
	logging.Info("🖼  Первый кадр: лучей %d, клеток %d, попаданий %d за %.2f мс",
		first.Stats.Rays, first.Stats.CellsVisited, first.Stats.Hits, first.DurationMS)

	gin.SetMode(gin.ReleaseMode)
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewRestServer(api.Config{
		Port:     restPort,
		Session:  session,
		Registry: registry,
		Logger:   logging.GetServerLogger(),
	})
	if err := server.Start(); err != nil {
		log.Fatalf("❌ Ошибка запуска REST API: %v", err)
	}

	logging.Info("💡 Примеры использования REST API:")
	logging.Info("   curl http://localhost%s/api/frame", restPort)
	logging.Info("   curl -X POST http://localhost%s/api/camera/rotate -d '{\"yaw\":0.1}'", restPort)
	logging.Info("   curl 'http://localhost%s/api/tile?x=3.5&y=0.5'", restPort)

	// Ждем сигнала для завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	if err := server.Stop(ctx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

func setupLogging(cfg config.LoggingConfig) error {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	if cfg.File {
		logging.LogDir = cfg.Dir
		if err := logging.InitDefaultLogger("server"); err != nil {
			return err
		}
	}
	logging.DefaultLogger().SetLevels(level, logging.TRACE)
	logging.Components().Configure(logging.Options{Files: cfg.File, Level: level, File: logging.TRACE})
	return nil
}
