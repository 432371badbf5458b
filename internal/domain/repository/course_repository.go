package repository

import (
	"context"

	"github.com/coursewire/coursewire/internal/domain/entity"
)

// CourseRepository defines the persistence operations for courses and lectures.
type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	List(ctx context.Context) ([]*entity.Course, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	SumViews(ctx context.Context) (int64, error)

	AddLecture(ctx context.Context, l *entity.Lecture) error
	GetLecture(ctx context.Context, id string) (*entity.Lecture, error)
	GetLectures(ctx context.Context, courseID string) ([]*entity.Lecture, error)
	DeleteLecture(ctx context.Context, id string) error
}
