// pkg/adapter/config/redis.go
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
)

// RedisClient is the minimal client surface RedisProvider depends on.
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Close() error
}

var _ RedisClient = (*redis.Client)(nil)

var _ domainconfig.RemoteProvider = (*RedisProvider)(nil)

// RedisProvider reads remote configuration from a redis hash. Field names
// are configuration paths ("logging.level", "Logging:Level" or "Logging__Level").
type RedisProvider struct {
	client RedisClient
	key    string
}

// NewRedisProvider connects to the redis server at url, e.g.
// "redis://localhost:6379/0".
func NewRedisProvider(url, key string) (*RedisProvider, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisProviderWithClient(redis.NewClient(opts), key)
}

func NewRedisProviderWithClient(client RedisClient, key string) (*RedisProvider, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if key == "" {
		return nil, errors.New("redis key is required")
	}
	return &RedisProvider{client: client, key: key}, nil
}

func (p *RedisProvider) Name() string {
	return "redis:" + p.key
}

func (p *RedisProvider) Fetch(ctx context.Context) (map[string]string, error) {
	values, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return values, nil
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}
