package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/domain"
	"github.com/hamed0406/timewatch/internal/repo"
)

var _ repo.RecordStore = (*Store)(nil)

// Schema creates the single-row-per-id table used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS validation_records (
  record_id    TEXT PRIMARY KEY,
  fetched_time TEXT NOT NULL,
  last_checked TEXT NOT NULL,
  status       TEXT NOT NULL
);`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema applies Schema; safe to call on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, rec domain.ValidationRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO validation_records (record_id, fetched_time, last_checked, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (record_id)
		DO UPDATE SET fetched_time=EXCLUDED.fetched_time,
		              last_checked=EXCLUDED.last_checked,
		              status=EXCLUDED.status`,
		rec.RecordID, rec.FetchedTime, rec.LastChecked, rec.Status.String(),
	)
	if err != nil {
		s.log.Warn("record_upsert_failed",
			zap.String("record_id", rec.RecordID),
			zap.Stringer("status", rec.Status),
			zap.Error(err),
		)
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.ValidationRecord, error) {
	const q = `SELECT fetched_time, last_checked, status FROM validation_records WHERE record_id=$1`
	rec := domain.ValidationRecord{RecordID: id}
	var status string
	err := s.pool.QueryRow(ctx, q, id).Scan(&rec.FetchedTime, &rec.LastChecked, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	rec.Status = domain.ParseStatus(status)
	return &rec, nil
}
