package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	st "github.com/AustralianCyberSecurityCentre/azul-dupsketch.git/settings"
)

// Redis refuses string values above this size.
const MAX_REDIS_VALUE_BYTES = 512 * 1024 * 1024

// StoreRedis keeps each sketch as a single redis string value.
// Suited to small sketches shared between shards.
type StoreRedis struct {
	Redis *redis.Client
}

func NewRedisStore(endpoint, username, password string, db int, timeoutSeconds int) (*StoreRedis, error) {
	if len(endpoint) == 0 {
		return nil, errors.New("no endpoint for redis, set DS__STORE__REDIS__ENDPOINT")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         endpoint,
		Username:     username,
		Password:     password,
		DialTimeout:  time.Second * time.Duration(timeoutSeconds),
		ReadTimeout:  time.Second * time.Duration(timeoutSeconds),
		WriteTimeout: time.Second * time.Duration(timeoutSeconds),
		DB:           db,
	})
	return &StoreRedis{Redis: rdb}, nil
}

func newRedisFromSettings(ctx context.Context, _ string) (SketchStore, error) {
	r := st.Store.Redis
	return NewRedisStore(r.Endpoint, r.Username, r.Password, r.DB, r.ConnectionTimeoutSeconds)
}

func (s *StoreRedis) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("redis", start, "open", err)
	}(time.Now())
	raw, err := s.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w", &NotFoundError{key: key})
	}
	if err != nil {
		return nil, fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", err)})
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *StoreRedis) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("redis", start, "put", err)
	}(time.Now())
	if size > MAX_REDIS_VALUE_BYTES {
		err = fmt.Errorf("sketch of %d bytes is too large for redis (max %d)", size, MAX_REDIS_VALUE_BYTES)
		return err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	err = s.Redis.Set(ctx, key, raw, 0).Err()
	if err != nil {
		return fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", err)})
	}
	return nil
}
