package events

import (
	"context"
	"log/slog"
	"sync"
)

// MemoryBus is an in-process Bus used by tests and dev mode. Each
// subscription gets its own goroutine and buffered channel, so delivery
// order per topic matches publish order.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Envelope
	wg     sync.WaitGroup
	closed bool
	logger *slog.Logger
}

// NewMemoryBus creates an in-process bus.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBus{
		subs:   make(map[string][]chan Envelope),
		logger: logger,
	}
}

// Publish delivers the envelope to every subscriber of the topic.
// Envelopes published to a topic with no subscribers are dropped.
// Publishers hold only a read lock, so they never serialize each other:
// a publisher blocked on a full subscriber buffer does not stop handlers
// from publishing in turn. Close takes the write lock, so channels are
// never closed while a send is in flight.
func (b *MemoryBus) Publish(_ context.Context, topic, key string, body []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, ch := range b.subs[topic] {
		ch <- Envelope{Topic: topic, Key: key, Body: body}
	}
	return nil
}

// Subscribe registers a handler for a topic. The group parameter exists
// for Bus compatibility; in-process every subscription sees every message.
func (b *MemoryBus) Subscribe(topic, group string, h Handler) {
	ch := make(chan Envelope, 256)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for env := range ch {
			safeHandle(context.Background(), b.logger, group, h, env)
		}
	}()
}

// Close stops delivery and waits for in-flight handlers to finish.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, chans := range b.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

// safeHandle runs a handler, absorbing errors and panics so that one bad
// message never kills a consumer loop.
func safeHandle(ctx context.Context, logger *slog.Logger, group string, h Handler, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("consumer panicked, message dropped",
				"topic", env.Topic, "group", group, "panic", r)
		}
	}()
	if err := h(ctx, env); err != nil {
		logger.Error("consumer failed, message dropped",
			"topic", env.Topic, "group", group, "key", env.Key, "error", err)
	}
}
