package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const defaultChannel = "proflow:changes"

type RedisConfig struct {
	Channel string
}

// RedisNotifier fans change signals out across API instances via Redis
// pub/sub, so every instance refreshes its snapshot no matter which one took
// the write.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *log.Logger
}

func NewRedisNotifier(ctx context.Context, client *redis.Client, cfg RedisConfig, logger *log.Logger) (*RedisNotifier, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Channel == "" {
		cfg.Channel = defaultChannel
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisNotifier{
		client:  client,
		channel: cfg.Channel,
		logger:  logger,
	}, nil
}

func (n *RedisNotifier) Publish(ctx context.Context) error {
	if err := n.client.Publish(ctx, n.channel, "changed").Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan struct{}, func()) {
	pubsub := n.client.Subscribe(ctx, n.channel)
	signals := make(chan struct{}, 1)

	go func() {
		defer close(signals)
		for {
			if _, err := pubsub.ReceiveMessage(ctx); err != nil {
				if ctx.Err() == nil && n.logger != nil {
					n.logger.Printf("redis subscription closed: %v", err)
				}
				return
			}
			select {
			case signals <- struct{}{}:
			default:
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return signals, cancel
}
