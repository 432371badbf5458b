package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
	"github.com/coursewire/coursewire/pkg/apperr"
	"github.com/coursewire/coursewire/pkg/helpers"
	"github.com/coursewire/coursewire/pkg/media"
)

const courseListCacheKey = "courses:list"

// CourseService implements the course catalog and lecture management.
type CourseService struct {
	Repo   repository.CourseRepository
	Media  media.Host
	Redis  *redis.Client
	Logger *logrus.Logger
}

type CourseInput struct {
	Title       string
	Description string
	Category    string
	CreatedBy   string
}

type LectureInput struct {
	Title       string
	Description string
}

// List returns the catalog without lectures, cached briefly in Redis.
func (s *CourseService) List(ctx context.Context) ([]*entity.Course, error) {
	if s.Redis != nil {
		var cached []*entity.Course
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, courseListCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}
	courses, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, courseListCacheKey, courses, time.Minute); err != nil {
			s.Logger.WithError(err).Warn("course list cache write failed")
		}
	}
	return courses, nil
}

func (s *CourseService) Create(ctx context.Context, in CourseInput, poster io.Reader, filename, contentType string) (*entity.Course, error) {
	asset, err := s.Media.Upload(ctx, poster, filename, contentType)
	if err != nil {
		return nil, err
	}
	c := &entity.Course{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		CreatedBy:   in.CreatedBy,
		PosterID:    asset.ID,
		PosterURL:   asset.URL,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return c, nil
}

// Lectures returns the course with its lecture list and counts the view.
func (s *CourseService) Lectures(ctx context.Context, courseID string) (*entity.Course, []*entity.Lecture, error) {
	course, err := s.Repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperr.NotFound("course not found")
		}
		return nil, nil, err
	}
	if err := s.Repo.IncrementViews(ctx, courseID); err != nil {
		s.Logger.WithError(err).WithField("course_id", courseID).Warn("view count update failed")
	}
	lectures, err := s.Repo.GetLectures(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, lectures, nil
}

func (s *CourseService) AddLecture(ctx context.Context, courseID string, in LectureInput, video io.Reader, filename, contentType string) (*entity.Lecture, error) {
	if _, err := s.Repo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, err
	}
	asset, err := s.Media.Upload(ctx, video, filename, contentType)
	if err != nil {
		return nil, err
	}
	l := &entity.Lecture{
		CourseID:    courseID,
		Title:       in.Title,
		Description: in.Description,
		VideoID:     asset.ID,
		VideoURL:    asset.URL,
	}
	if err := s.Repo.AddLecture(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes a course and issues compensating deletes for the poster and
// every lecture video. Media failures are logged and do not abort the record
// delete.
func (s *CourseService) Delete(ctx context.Context, courseID string) error {
	course, err := s.Repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("course not found")
		}
		return err
	}
	lectures, err := s.Repo.GetLectures(ctx, courseID)
	if err != nil {
		return err
	}

	s.deleteAsset(ctx, course.PosterID)
	for _, l := range lectures {
		s.deleteAsset(ctx, l.VideoID)
	}

	if err := s.Repo.Delete(ctx, courseID); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *CourseService) DeleteLecture(ctx context.Context, lectureID string) error {
	l, err := s.Repo.GetLecture(ctx, lectureID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lecture not found")
		}
		return err
	}
	s.deleteAsset(ctx, l.VideoID)
	return s.Repo.DeleteLecture(ctx, lectureID)
}

func (s *CourseService) deleteAsset(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.Media.Delete(ctx, id); err != nil {
		s.Logger.WithError(err).WithField("asset", id).Warn("media delete failed")
	}
}

func (s *CourseService) invalidateList(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, courseListCacheKey); err != nil {
		s.Logger.WithError(err).Warn("course list cache invalidation failed")
	}
}
