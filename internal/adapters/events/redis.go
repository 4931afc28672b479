// Package events publishes room activity outside the process.
package events

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/app"
	"github.com/dkeye/watchparty/internal/config"
)

// Publisher is the part of *redis.Client the sink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NewRedisClient connects and pings once so a bad address fails at startup.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisSink queues room events and publishes them as JSON on one channel.
// Publish never blocks; events are dropped when the queue is full.
type RedisSink struct {
	client  Publisher
	channel string
	queue   chan app.RoomEvent
}

func NewRedisSink(client Publisher, channel string, buffer int) *RedisSink {
	return &RedisSink{
		client:  client,
		channel: channel,
		queue:   make(chan app.RoomEvent, buffer),
	}
}

func (s *RedisSink) Publish(ev app.RoomEvent) {
	select {
	case s.queue <- ev:
	default:
		log.Warn().Str("module", "events").Str("type", string(ev.Type)).Str("room", string(ev.Room)).Msg("event queue full, dropped")
	}
}

// Run drains the queue until ctx is cancelled.
func (s *RedisSink) Run(ctx context.Context) error {
	log.Info().Str("module", "events").Str("channel", s.channel).Msg("redis publisher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "events").Int("pending", len(s.queue)).Msg("redis publisher stopped")
			return nil
		case ev := <-s.queue:
			s.send(ctx, ev)
		}
	}
}

func (s *RedisSink) send(ctx context.Context, ev app.RoomEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "events").Msg("marshal event")
		return
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		log.Warn().Err(err).Str("module", "events").Str("type", string(ev.Type)).Msg("publish failed")
	}
}
