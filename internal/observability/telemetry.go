// Package observability настраивает трассировку OpenTelemetry.
package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/tilecaster/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// ShutdownFunc сбрасывает и закрывает экспортер
type ShutdownFunc func(context.Context) error

// NoopShutdown используется, когда телеметрия выключена
func NoopShutdown(context.Context) error { return nil }

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный TracerProvider.
// Возвращает функцию shutdown, которую нужно вызвать при завершении приложения.
// Эндпоинт по умолчанию localhost:4318, переопределяется opts или OTEL_EXPORTER_OTLP_ENDPOINT.
func InitTelemetry(ctx context.Context, serviceName string, opts ...otlptracehttp.Option) (ShutdownFunc, error) {
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (service=%s)", serviceName)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}

// Setup включает трассировку, если enabled, иначе возвращает NoopShutdown
func Setup(ctx context.Context, enabled bool, serviceName string) (ShutdownFunc, error) {
	if !enabled {
		logging.Debug("OpenTelemetry выключен")
		return NoopShutdown, nil
	}
	return InitTelemetry(ctx, serviceName)
}
