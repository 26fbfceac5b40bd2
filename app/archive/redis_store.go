package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the archive in a single hash: field = entry id,
// value = JSON-encoded Record.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(ctx context.Context, addr, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Debug("Connected to Redis", "addr", addr, "key", key)

	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (Records, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load archive hash %s: %w", s.key, err)
	}

	records := make(Records, len(fields))
	for id, value := range fields {
		var record Record
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, fmt.Errorf("failed to decode archive record %s: %w", id, err)
		}
		records[id] = record
	}

	return records, nil
}

var _ Appender = (*RedisStore)(nil)

// Save relies on HSETNX so a field written once is never replaced.
func (s *RedisStore) Save(ctx context.Context, records Records) error {
	return s.Add(ctx, records)
}

func (s *RedisStore) Add(ctx context.Context, records Records) error {
	if len(records) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for id, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode archive record %s: %w", id, err)
		}
		pipe.HSetNX(ctx, s.key, id, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store archive records: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
