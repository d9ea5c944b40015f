package repo

import (
	"context"

	"github.com/hamed0406/timewatch/internal/domain"
)

// RecordStore keeps validation records by id. Put replaces the whole record;
// there are no partial updates and no history.
type RecordStore interface {
	Put(ctx context.Context, rec domain.ValidationRecord) error
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, id string) (*domain.ValidationRecord, error)
}
