// Package events publishes domain events on Redis pub/sub channels. Publishing
// is best-effort: failures are logged and never fail the operation that
// produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel names. Each event is published on the channel named after its type.
const (
	ApplicationSubmitted = "EVENT_APPLICATION_SUBMITTED"
	StageChanged         = "EVENT_STAGE_CHANGED"
	ScreeningAttached    = "EVENT_SCREENING_ATTACHED"
	JobClosed            = "EVENT_JOB_CLOSED"
)

// Publisher sends one event. Implementations must not block the caller on
// delivery failures.
type Publisher interface {
	Publish(ctx context.Context, channel string, fields map[string]any)
}

// RedisPublisher publishes JSON payloads with a "type" field set to the
// channel name.
type RedisPublisher struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{rdb: rdb, logger: logger}
}

// DialRedis connects to redisURL and returns a publisher on that connection.
// The caller owns the publisher and must Close it.
func DialRedis(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisPublisher(rdb, logger), nil
}

// Close releases the underlying connection pool.
func (p *RedisPublisher) Close() error { return p.rdb.Close() }

func (p *RedisPublisher) Publish(ctx context.Context, channel string, fields map[string]any) {
	payload, err := encode(channel, fields)
	if err != nil {
		p.logger.Warn("encode event failed", "channel", channel, "err", err)
		return
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Warn("publish "+channel+" failed", "err", err)
	}
}

func encode(channel string, fields map[string]any) ([]byte, error) {
	event := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		event[k] = v
	}
	event["type"] = channel
	return json.Marshal(event)
}

// LogPublisher only logs events. It is used when no Redis URL is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, channel string, fields map[string]any) {
	l := p.Logger
	if l == nil {
		l = slog.Default()
	}
	args := make([]any, 0, 2*len(fields)+2)
	args = append(args, "channel", channel)
	for k, v := range fields {
		args = append(args, k, v)
	}
	l.Debug("event", args...)
}

// Event is one published message captured by a Recorder.
type Event struct {
	Channel string
	Fields  map[string]any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, channel string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Channel: channel, Fields: fields})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// On returns the events published on channel.
func (r *Recorder) On(channel string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}
