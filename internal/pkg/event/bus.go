package event

import (
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/metrics"
	"context"
	log "log/slog"
	"sync"
	"time"
)

// Event 进程内领域事件
type Event struct {
	Topic   string    `json:"topic"`
	Key     string    `json:"key"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

type Handler func(ctx context.Context, evt Event)

// Bus 同步分发，订阅者的 panic 不会影响发布方
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscription
}

type subscription struct {
	topic   string
	handler Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscription)}
}

// Subscribe topic 为 "*" 时接收全部事件
func (b *Bus) Subscribe(topic string, h Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[b.nextID] = subscription{topic: topic, handler: h}
	return b.nextID
}

func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (b *Bus) Publish(ctx context.Context, topic, key string, payload any) {
	if b == nil {
		return
	}
	evt := Event{Topic: topic, Key: key, Payload: payload, At: time.Now()}
	metrics.EventsPublished.WithLabelValues(topic).Inc()

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topic == topic || s.topic == consts.TopicAll {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		dispatch(ctx, h, evt)
	}
}

func dispatch(ctx context.Context, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "event handler panic", "topic", evt.Topic, "key", evt.Key, "panic", r)
		}
	}()
	h(ctx, evt)
}
