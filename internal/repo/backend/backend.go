// Package backend opens the RecordStore selected by STORE_BACKEND.
package backend

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/config"
	"github.com/hamed0406/timewatch/internal/repo"
	"github.com/hamed0406/timewatch/internal/repo/dynamo"
	"github.com/hamed0406/timewatch/internal/repo/memory"
	"github.com/hamed0406/timewatch/internal/repo/postgres"
	"github.com/hamed0406/timewatch/internal/repo/redis"
)

// Open returns the configured store and a func releasing its resources.
// awsCfg and table are used by the dynamodb backend only; callers resolve
// awsCfg once and share it with their other AWS clients.
func Open(ctx context.Context, cfg config.Config, awsCfg aws.Config, table string, log *zap.Logger) (repo.RecordStore, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendDynamo, "":
		log.Info("store_opened", zap.String("backend", config.BackendDynamo), zap.String("table", table))
		return dynamo.New(dynamodb.NewFromConfig(awsCfg), table), noop, nil

	case config.BackendPostgres:
		pg, err := postgres.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		log.Info("store_opened", zap.String("backend", config.BackendPostgres))
		return pg, pg.Close, nil

	case config.BackendRedis:
		rs, err := redis.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open redis: %w", err)
		}
		log.Info("store_opened", zap.String("backend", config.BackendRedis))
		return rs, func() { _ = rs.Close() }, nil

	case config.BackendMemory:
		log.Warn("store_opened", zap.String("backend", config.BackendMemory), zap.String("note", "record is lost on exit"))
		return memory.New(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
