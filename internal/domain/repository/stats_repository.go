package repository

import (
	"context"

	"github.com/coursewire/coursewire/internal/domain/entity"
)

// StatsRepository persists aggregate snapshots.
type StatsRepository interface {
	CreateSnapshot(ctx context.Context, s *entity.Snapshot) error
	// UpdateLatest refreshes the most recent snapshot in place.
	UpdateLatest(ctx context.Context, users, subscriptions, views int64) error
	GetLatest(ctx context.Context) (*entity.Snapshot, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Snapshot, error)
}
