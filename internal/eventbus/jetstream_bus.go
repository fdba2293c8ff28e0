package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
)

const (
	// SubjectPrefix — корень subject'ов: tilecaster.events.<type>
	SubjectPrefix = "tilecaster.events"
	// DefaultStream используется, если имя стрима не задано
	DefaultStream = "TILECASTER"

	ackWait = 30 * time.Second
)

// Subject возвращает NATS subject для типа события
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// subject выбирает самый узкий subject, покрывающий фильтр
func (f Filter) subject() string {
	if len(f.Types) == 1 {
		return Subject(f.Types[0])
	}
	return SubjectPrefix + ".>"
}

// JetStreamBus хранит события сессии в стриме NATS JetStream
type JetStreamBus struct {
	counters
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string
}

// NewJetStreamBus подключается к url и создаёт стрим или приводит его
// MaxAge к retention
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = DefaultStream
	}

	nc, err := nats.Connect(url,
		nats.Name("tilecaster"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	if err := ensureStream(js, stream, retention); err != nil {
		nc.Close()
		return nil, err
	}
	return &JetStreamBus{nc: nc, js: js, stream: stream}, nil
}

func ensureStream(js nats.JetStreamContext, name string, retention time.Duration) error {
	want := &nats.StreamConfig{
		Name:      name,
		Subjects:  []string{SubjectPrefix + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    retention,
		Storage:   nats.FileStorage,
	}

	info, err := js.StreamInfo(name)
	switch {
	case errors.Is(err, nats.ErrStreamNotFound):
		if _, err := js.AddStream(want); err != nil {
			return fmt.Errorf("add stream %s: %w", name, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stream info %s: %w", name, err)
	}

	if info.Config.MaxAge == retention {
		return nil
	}
	cfg := info.Config
	cfg.MaxAge = retention
	if _, err := js.UpdateStream(&cfg); err != nil {
		return fmt.Errorf("update stream %s: %w", name, err)
	}
	return nil
}

// Stream возвращает имя стрима
func (jb *JetStreamBus) Stream() string { return jb.stream }

// Publish ждёт подтверждения записи от сервера; id события служит ключом дедупликации
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	if _, err := jb.js.Publish(Subject(ev.Type), data, nats.Context(ctx), nats.MsgId(ev.ID)); err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	jb.published.Add(1)
	return nil
}

// Subscribe создаёт эфемерного consumer'а с доставкой только новых событий
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	sub, err := jb.js.Subscribe(f.subject(), func(msg *nats.Msg) {
		defer func() { _ = msg.Ack() }()

		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			jb.dropped.Add(1)
			return
		}
		if !f.Match(&ev) || ctx.Err() != nil {
			return
		}
		h(ctx, &ev)
		jb.consumed.Add(1)
	}, nats.ManualAck(), nats.DeliverNew(), nats.AckWait(ackWait))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", f.subject(), err)
	}
	return natsSub{sub}, nil
}

type natsSub struct{ *nats.Subscription }

func (s natsSub) Unsubscribe() { _ = s.Subscription.Unsubscribe() }

// Stats возвращает счётчики; InFlight для JetStream не отслеживается
func (jb *JetStreamBus) Stats() Stats {
	return jb.snapshot(0)
}

// Close отправляет накопленное и закрывает соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
