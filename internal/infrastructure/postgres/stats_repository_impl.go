package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) CreateSnapshot(ctx context.Context, s *entity.Snapshot) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO stats_snapshots (users, subscriptions, views)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, s.Users, s.Subscriptions, s.Views)
	return row.Scan(&s.ID, &s.CreatedAt)
}

func (r *StatsRepository) UpdateLatest(ctx context.Context, users, subscriptions, views int64) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE stats_snapshots
		SET users = $1, subscriptions = $2, views = $3, created_at = now()
		WHERE id = (SELECT id FROM stats_snapshots ORDER BY created_at DESC LIMIT 1)
	`, users, subscriptions, views)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		// no snapshot yet; create the first one
		s := &entity.Snapshot{Users: users, Subscriptions: subscriptions, Views: views}
		return r.CreateSnapshot(ctx, s)
	}
	return nil
}

func (r *StatsRepository) GetLatest(ctx context.Context) (*entity.Snapshot, error) {
	s := &entity.Snapshot{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, users, subscriptions, views, created_at
		FROM stats_snapshots ORDER BY created_at DESC LIMIT 1
	`).Scan(&s.ID, &s.Users, &s.Subscriptions, &s.Views, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *StatsRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, users, subscriptions, views, created_at
		FROM stats_snapshots ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snaps := []*entity.Snapshot{}
	for rows.Next() {
		s := &entity.Snapshot{}
		if err := rows.Scan(&s.ID, &s.Users, &s.Subscriptions, &s.Views, &s.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

var _ repository.StatsRepository = (*StatsRepository)(nil)
