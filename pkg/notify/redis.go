package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
)

const defaultChannel = "modsync"

// Redis publishes each message on a Redis pub/sub channel.
type Redis struct {
	opts    *redis.Options
	channel string
	client  *redis.Client
}

// NewRedis parses redis://[user:pass@]host[:port][/db]?channel=name.
// The channel defaults to "modsync".
func NewRedis(rawURL string) (*Redis, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	channel := q.Get("channel")
	if channel == "" {
		channel = defaultChannel
	}
	q.Del("channel")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{opts: opts, channel: channel}, nil
}

func (r *Redis) Name() string { return "redis:" + r.opts.Addr + "/" + r.channel }

// Channel returns the pub/sub channel messages are published on.
func (r *Redis) Channel() string { return r.channel }

func (r *Redis) Connect(ctx context.Context) error {
	c := redis.NewClient(r.opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return err
	}
	r.client = c
	return nil
}

func (r *Redis) Send(ctx context.Context, text string) error {
	if r.client == nil {
		return fmt.Errorf("redis %s: not connected", r.opts.Addr)
	}
	return r.client.Publish(ctx, r.channel, text).Err()
}

func (r *Redis) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
