package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
	"github.com/coursewire/coursewire/pkg/helpers"
)

const dashboardCacheKey = "stats:dashboard"

// StatsService maintains the aggregate snapshot cache. Everything here is
// best effort; failures are logged, never surfaced to requests.
type StatsService struct {
	Users   repository.UserRepository
	Courses repository.CourseRepository
	Stats   repository.StatsRepository
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func (s *StatsService) counts(ctx context.Context) (users, subs, views int64, err error) {
	if users, err = s.Users.CountUsers(ctx); err != nil {
		return
	}
	if subs, err = s.Users.CountActiveSubscriptions(ctx); err != nil {
		return
	}
	views, err = s.Courses.SumViews(ctx)
	return
}

// Snapshot appends a fresh aggregate row (the periodic task).
func (s *StatsService) Snapshot(ctx context.Context) error {
	users, subs, views, err := s.counts(ctx)
	if err != nil {
		return err
	}
	snap := &entity.Snapshot{Users: users, Subscriptions: subs, Views: views}
	if err := s.Stats.CreateSnapshot(ctx, snap); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Recompute refreshes the latest row in place (the change-feed task).
func (s *StatsService) Recompute(ctx context.Context) error {
	users, subs, views, err := s.counts(ctx)
	if err != nil {
		return err
	}
	if err := s.Stats.UpdateLatest(ctx, users, subs, views); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

type Dashboard struct {
	Latest *entity.Snapshot   `json:"latest"`
	Recent []*entity.Snapshot `json:"recent"`
}

// Dashboard returns the latest snapshot plus recent history, cached in Redis.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.Redis != nil {
		var cached Dashboard
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, dashboardCacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	latest, err := s.Stats.GetLatest(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	recent, err := s.Stats.ListRecent(ctx, 12)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Latest: latest, Recent: recent}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, dashboardCacheKey, d, time.Minute); err != nil {
			s.Logger.WithError(err).Warn("dashboard cache write failed")
		}
	}
	return d, nil
}

func (s *StatsService) invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, dashboardCacheKey); err != nil {
		s.Logger.WithError(err).Warn("dashboard cache invalidation failed")
	}
}
