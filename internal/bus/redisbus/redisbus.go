// Package redisbus implements the message bus on Redis pub/sub.
package redisbus

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Config configures the Redis connection and channel namespace.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // channel namespace, e.g. "algomatic"
}

// Bus implements model.MessageBus on Redis pub/sub. The client is safe for
// concurrent use by the sweep and listener.
type Bus struct {
	client *goredis.Client
	prefix string
}

// New creates a Bus and pings the server.
func New(cfg Config) (*Bus, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redisbus] connected to %s (prefix=%s)", cfg.Addr, cfg.Prefix)
	return &Bus{client: client, prefix: cfg.Prefix}, nil
}

// ChannelFor returns the namespaced channel name for an event type.
func (b *Bus) ChannelFor(eventType string) string {
	return b.prefix + ":" + eventType
}

// Publish sends a payload on a channel.
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe blocks on the channel, invoking handler once per message, until
// ctx is cancelled. A panic inside the handler is recovered and logged so the
// subscription keeps receiving.
func (b *Bus) Subscribe(ctx context.Context, channel string, handler func(channel string, payload []byte)) error {
	pubsub := b.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", channel, err)
	}
	log.Printf("[redisbus] subscribed to %s", channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			dispatch(handler, msg.Channel, []byte(msg.Payload))
		}
	}
}

func dispatch(handler func(channel string, payload []byte), channel string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[redisbus] handler panic on %s: %v", channel, r)
		}
	}()
	handler(channel, payload)
}

// Close closes the underlying client.
func (b *Bus) Close() error {
	return b.client.Close()
}
