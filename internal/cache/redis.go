package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Override query cache keys
const (
	ActiveOverridesKey = "overrides:active"
)

var client *redis.Client

// Init initializes the Redis connection. Returns an error when Redis is
// unreachable; callers may continue without it (cache reads degrade to the
// store, session-action handlers fail with HandlerError).
func Init(addr, password string) error {
	if addr == "" {
		// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
		host := os.Getenv("REDIS_SERVICE_HOST")
		if host == "" {
			host = "redis"
		}
		port := os.Getenv("REDIS_SERVICE_PORT")
		if port == "" {
			port = "6379"
		}
		addr = host + ":" + port
	}

	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client, or nil when Redis is unavailable
func GetClient() *redis.Client {
	return client
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidateOverrideCaches clears the active overrides listing.
// Called on every apply, revert and expiry transition.
func InvalidateOverrideCaches(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, ActiveOverridesKey)
}

// IsHealthy returns true if the Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
