package names

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/edgepersist/pkg/errors"
)

// DefaultRedisKey is the hash consulted when a redis:// location names no key.
const DefaultRedisKey = "edgepersist:names"

// Redis resolves ids with HGET against a single hash whose fields are the
// decimal vertex ids.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// DialRedis connects using a redis:// or rediss:// URL. The hash key is
// taken from the "key" query parameter and removed before the URL is
// handed to the client.
func DialRedis(ctx context.Context, rawURL string) (*Redis, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	u, key := splitKey(rawURL)
	opts, err := redis.ParseURL(u)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeNameBackend, err, "connect to redis %s", opts.Addr)
	}
	return NewRedis(client, key), nil
}

// Key returns the hash key being read.
func (r *Redis) Key() string { return r.key }

// Name implements Resolver.
func (r *Redis) Name(ctx context.Context, id uint32) (string, bool, error) {
	s, err := r.client.HGet(ctx, r.key, strconv.FormatUint(uint64(id), 10)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeNameBackend, err, "hget %s %d", r.key, id)
	}
	return s, true, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error { return r.client.Close() }
