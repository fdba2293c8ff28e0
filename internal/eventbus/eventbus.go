package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("eventbus: closed")

// Priority управляет поведением при переполненном буфере
type Priority uint8

const (
	// PriorityLow события отбрасываются, если буфер полон (поза камеры: следующая её заменит)
	PriorityLow Priority = 0
	// PriorityHigh события ждут места в буфере
	PriorityHigh Priority = 9
)

// Envelope — событие сессии рендера в сериализуемом виде
type Envelope struct {
	ID            string            `json:"id"`
	Time          time.Time         `json:"time"`
	Source        string            `json:"source"`
	Type          string            `json:"type"`
	Version       int               `json:"version"`
	CorrelationID string            `json:"correlation_id,omitempty"` // id HTTP-запроса
	Priority      Priority          `json:"priority"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEnvelope кодирует payload в JSON; приоритет выводится из типа события
func NewEnvelope(source, eventType string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:       uuid.NewString(),
		Time:     time.Now().UTC(),
		Source:   source,
		Type:     eventType,
		Version:  1,
		Priority: PriorityOf(eventType),
		Payload:  data,
	}, nil
}

// Decode разбирает полезную нагрузку в v
func (ev *Envelope) Decode(v interface{}) error {
	return json.Unmarshal(ev.Payload, v)
}

// Filter отбирает события по типу и источнику; пустой список пропускает всё
type Filter struct {
	Types   []string
	Sources []string
}

// Match сообщает, проходит ли событие фильтр
func (f Filter) Match(ev *Envelope) bool {
	return (len(f.Types) == 0 || slices.Contains(f.Types, ev.Type)) &&
		(len(f.Sources) == 0 || slices.Contains(f.Sources, ev.Source))
}

// Subscription отменяет подписку
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события
type Handler func(ctx context.Context, ev *Envelope)

// Stats — счётчики шины на момент вызова
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus доставляет события сессии подписчикам
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Stats() Stats
	Close() error
}

type counters struct {
	published, consumed, dropped atomic.Uint64
}

func (c *counters) snapshot(inFlight int) Stats {
	return Stats{
		Published: c.published.Load(),
		Consumed:  c.consumed.Load(),
		Dropped:   c.dropped.Load(),
		InFlight:  inFlight,
	}
}

// memoryBus доставляет события в одной горутине, в порядке публикации
type memoryBus struct {
	counters
	queue chan *Envelope
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	subs   []*memSub
	nextID int
}

type memSub struct {
	bus    *memoryBus
	id     int
	filter Filter
	h      Handler
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMemoryBus создаёт шину в памяти с очередью на capacity событий
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		queue: make(chan *Envelope, capacity),
		done:  make(chan struct{}),
	}
	go mb.run()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	select {
	case <-mb.done:
		return ErrClosed
	default:
	}

	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	default:
	}

	if ev.Priority < PriorityHigh {
		mb.dropped.Add(1)
		return nil
	}

	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	case <-mb.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	cctx, cancel := context.WithCancel(ctx)
	sub := &memSub{bus: mb, id: mb.nextID, filter: f, h: h, ctx: cctx, cancel: cancel}
	mb.nextID++
	mb.subs = append(mb.subs, sub)
	return sub, nil
}

func (mb *memoryBus) Stats() Stats {
	return mb.snapshot(len(mb.queue))
}

// Close останавливает доставку; события в очереди теряются
func (mb *memoryBus) Close() error {
	mb.once.Do(func() { close(mb.done) })
	return nil
}

func (mb *memoryBus) run() {
	for {
		select {
		case <-mb.done:
			return
		case ev := <-mb.queue:
			mb.mu.Lock()
			subs := slices.Clone(mb.subs)
			mb.mu.Unlock()

			for _, sub := range subs {
				if sub.ctx.Err() != nil || !sub.filter.Match(ev) {
					continue
				}
				sub.h(sub.ctx, ev)
				mb.consumed.Add(1)
			}
		}
	}
}

func (s *memSub) Unsubscribe() {
	s.cancel()
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.bus.subs = slices.DeleteFunc(s.bus.subs, func(o *memSub) bool { return o.id == s.id })
}
