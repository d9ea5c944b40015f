// Package redis keeps the validation record as a JSON string under one key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hamed0406/timewatch/internal/domain"
)

const keyPrefix = "timewatch:record:"

type Store struct {
	client goredis.UniversalClient
}

func New(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

// Open parses a redis:// URL and pings the server.
func Open(ctx context.Context, url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := goredis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: c}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Put(ctx context.Context, rec domain.ValidationRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	// no expiry: the record lives until the next check replaces it
	if err := s.client.Set(ctx, keyPrefix+rec.RecordID, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.ValidationRecord, error) {
	b, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rec domain.ValidationRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
