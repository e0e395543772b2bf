// Package redisstore implements the storage gateway on top of Redis.
// Records are stored as plain string values holding JSON blobs.
package redisstore

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Elaba987/pry-Inventario/internal/storage"
)

var _ storage.Gateway = (*Gateway)(nil)

// Gateway is a Redis-backed storage gateway.
type Gateway struct {
	client *redis.Client
}

// New returns a Gateway using the given client.
func New(client *redis.Client) *Gateway {
	return &Gateway{client: client}
}

// Open parses a Redis URL, connects, and verifies the connection with a ping.
func Open(ctx context.Context, url string) (*Gateway, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return &Gateway{client: client}, nil
}

// Ping reports whether the Redis server is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Close releases the underlying client connections.
func (g *Gateway) Close() error {
	return g.client.Close()
}

func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := g.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNoRecord
		}
		return nil, err
	}
	return b, nil
}

func (g *Gateway) Set(ctx context.Context, key string, value []byte) error {
	return g.client.Set(ctx, key, value, 0).Err()
}

func (g *Gateway) Remove(ctx context.Context, key string) error {
	return g.client.Del(ctx, key).Err()
}

func (g *Gateway) ClearAll(ctx context.Context) error {
	return g.client.FlushDB(ctx).Err()
}
