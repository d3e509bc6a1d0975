package store

import (
	"context"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/errors"
)

// DefaultRedisPrefix namespaces chart keys.
const DefaultRedisPrefix = "hillchart:chart:"

// RedisStore keeps each chart as one JSON value under prefix+chart.
type RedisStore struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisStore wraps an existing client. Close does not close it.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis connects to url (redis://...) and pings the server.
func OpenRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "store.redis_url is required for the redis backend")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis")
	}
	s := NewRedisStore(client, prefix)
	s.owned = true
	return s, nil
}

// Client returns the underlying client, for sharing with the artifact cache.
func (s *RedisStore) Client() *redis.Client { return s.client }

func (s *RedisStore) Name() string { return BackendRedis }

func (s *RedisStore) Load(ctx context.Context, chart string) (Document, error) {
	if err := errors.ValidateChartName(chart); err != nil {
		return Document{}, err
	}
	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.prefix+chart).Bytes()
		if err != nil && !stderrors.Is(err, redis.Nil) {
			return cache.Retryable(err)
		}
		data = b
		return err
	})
	if stderrors.Is(err, redis.Nil) {
		return Document{}, notFound(chart)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeStore, err, "load chart %q", chart)
	}
	return Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, chart string, doc Document) error {
	if err := errors.ValidateChartName(chart); err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(s.client.Set(ctx, s.prefix+chart, data, 0).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save chart %q", chart)
	}
	return nil
}

// Close closes the client if the store opened it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
