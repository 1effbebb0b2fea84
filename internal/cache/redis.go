package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Cache on a shared Redis instance so multiple API replicas
// see the same invalidations. Namespace invalidation is done with a version
// counter per namespace instead of scanning keys: bumping the counter orphans
// the old generation and the entries expire on their own TTL.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})}
}

func (r *Redis) Get(ctx context.Context, namespace, key string) (string, bool) {
	ver, err := r.version(ctx, namespace)
	if err != nil {
		return "", false
	}
	val, err := r.client.Get(ctx, fullKey(namespace, ver, key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, namespace, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	ver, err := r.version(ctx, namespace)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, fullKey(namespace, ver, key), value, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, namespace string) {
	_ = r.client.Incr(ctx, versionKey(namespace)).Err()
}

func (r *Redis) version(ctx context.Context, namespace string) (int64, error) {
	ver, err := r.client.Get(ctx, versionKey(namespace)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return ver, err
}

func versionKey(namespace string) string {
	return "refcache:ver:" + namespace
}

func fullKey(namespace string, version int64, key string) string {
	return "refcache:" + namespace + ":" + strconv.FormatInt(version, 10) + ":" + key
}
