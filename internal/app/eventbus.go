package app

import (
	"time"

	"github.com/annel0/tilecaster/internal/config"
	"github.com/annel0/tilecaster/internal/eventbus"
	"github.com/annel0/tilecaster/internal/logging"
)

// NewEventBus создаёт шину событий: JetStream при заданном URL, иначе in-memory
func NewEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("📨 EventBus: in-memory (capacity=%d)", cfg.Capacity)
		return eventbus.NewMemoryBus(cfg.Capacity), nil
	}

	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	logging.Info("📨 EventBus: JetStream %s, stream=%s", cfg.URL, cfg.Stream)
	return bus, nil
}
