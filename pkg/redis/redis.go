package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/vitrine-backend/config"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session"

// ErrNotInitialized is returned when a Client has no backing connection.
var ErrNotInitialized = errors.New("redis client not initialized")

// Nil is returned by Get for missing keys.
const Nil = redis.Nil

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis connection with namespaced key helpers.
type Client struct {
	store     cmdable
	raw       *redis.Client
	namespace string
}

// New connects and pings the server.
func New(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := raw.Ping(pingCtx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = raw.Close()
		return nil, err
	}

	logger.Info("Redis connection established successfully")
	return &Client{store: raw, raw: raw, namespace: cfg.Prefix}, nil
}

// NewWithCmdable builds a client over any command surface, mostly for tests.
func NewWithCmdable(store cmdable, namespace string) *Client {
	return &Client{store: store, namespace: namespace}
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return ErrNotInitialized
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns Nil when the key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", ErrNotInitialized
	}
	return c.store.Get(ctx, key).Result()
}

// Expire refreshes the TTL; it reports false for missing keys.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, ErrNotInitialized
	}
	return c.store.Expire(ctx, key, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return ErrNotInitialized
	}
	return c.store.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return ErrNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	logger.Info("Closing Redis connection")
	return c.raw.Close()
}

// SessionKey returns the namespaced key holding a session snapshot.
func (c *Client) SessionKey(sessionID string) string {
	return c.buildKey(sessionPrefix, sessionID)
}

func (c *Client) buildKey(parts ...string) string {
	clean := []string{}
	if c.namespace != "" {
		clean = append(clean, c.namespace)
	}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}
