package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const readBlock = 5 * time.Second

// RedisBus implements Bus on Redis Streams: one stream per topic, one
// consumer group per subscribing service. XAdd preserves publish order
// within a stream, which covers the per-document ordering requirement
// because publishers key every message by document id.
type RedisBus struct {
	client redis.Cmdable
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisBus creates a Streams-backed bus. The caller owns the Redis
// client lifecycle.
func NewRedisBus(client redis.Cmdable, logger *slog.Logger) *RedisBus {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisBus{client: client, logger: logger, ctx: ctx, cancel: cancel}
}

// Publish appends the envelope to the topic's stream.
func (b *RedisBus) Publish(ctx context.Context, topic, key string, body []byte) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(topic),
		Values: map[string]interface{}{
			"key":  key,
			"body": string(body),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe starts a consumer loop for the topic under the given group.
// Messages are acked after the handler runs, whether it succeeded or not:
// failures are logged and dropped, there is no retry or dead-letter topic.
func (b *RedisBus) Subscribe(topic, group string, h Handler) {
	stream := streamKey(topic)
	consumer := group + "-" + uuid.NewString()[:8]

	err := b.client.XGroupCreateMkStream(b.ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group",
			"topic", topic, "group", group, "error", err)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consumeLoop(stream, topic, group, consumer, h)
	}()
}

func (b *RedisBus) consumeLoop(stream, topic, group, consumer string, h Handler) {
	for {
		select {
		case <-b.ctx.Done():
			return
		default:
		}

		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    16,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if err == redis.Nil || b.ctx.Err() != nil {
				continue
			}
			b.logger.Error("stream read failed", "topic", topic, "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, sr := range res {
			for _, msg := range sr.Messages {
				env := envelopeFromMessage(topic, msg)
				safeHandle(b.ctx, b.logger, group, h, env)
				if ackErr := b.client.XAck(b.ctx, stream, group, msg.ID).Err(); ackErr != nil {
					b.logger.Error("failed to ack message",
						"topic", topic, "id", msg.ID, "error", ackErr)
				}
			}
		}
	}
}

// Close stops all consumer loops and waits for them to drain.
func (b *RedisBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

func envelopeFromMessage(topic string, msg redis.XMessage) Envelope {
	env := Envelope{Topic: topic}
	if k, ok := msg.Values["key"].(string); ok {
		env.Key = k
	}
	if v, ok := msg.Values["body"].(string); ok {
		env.Body = []byte(v)
	}
	return env
}

func streamKey(topic string) string {
	return "dms:events:" + topic
}
