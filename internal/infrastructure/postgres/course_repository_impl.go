package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
)

const courseColumns = `id, title, description, category, created_by, poster_id, poster_url,
	views, num_videos, created_at, updated_at`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (*entity.Course, error) {
	c := &entity.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.CreatedBy, &c.PosterID,
		&c.PosterURL, &c.Views, &c.NumVideos, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, category, created_by, poster_id, poster_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, views, num_videos, created_at, updated_at
	`, c.Title, c.Description, c.Category, c.CreatedBy, c.PosterID, c.PosterURL)
	return row.Scan(&c.ID, &c.Views, &c.NumVideos, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

func (r *CourseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*entity.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE courses SET views = views + 1 WHERE id = $1`, id)
	return err
}

func (r *CourseRepository) SumViews(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT coalesce(sum(views), 0) FROM courses`).Scan(&n)
	return n, err
}

func (r *CourseRepository) AddLecture(ctx context.Context, l *entity.Lecture) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lectures (course_id, title, description, video_id, video_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, l.CourseID, l.Title, l.Description, l.VideoID, l.VideoURL)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return err
	}
	return r.refreshNumVideos(ctx, l.CourseID)
}

func (r *CourseRepository) GetLecture(ctx context.Context, id string) (*entity.Lecture, error) {
	l := &entity.Lecture{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, course_id, title, description, video_id, video_url, created_at
		FROM lectures WHERE id = $1
	`, id).Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.VideoID, &l.VideoURL, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *CourseRepository) GetLectures(ctx context.Context, courseID string) ([]*entity.Lecture, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, course_id, title, description, video_id, video_url, created_at
		FROM lectures WHERE course_id = $1 ORDER BY created_at
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lectures := []*entity.Lecture{}
	for rows.Next() {
		l := &entity.Lecture{}
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.VideoID, &l.VideoURL, &l.CreatedAt); err != nil {
			return nil, err
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

func (r *CourseRepository) DeleteLecture(ctx context.Context, id string) error {
	var courseID string
	err := r.pool.QueryRow(ctx, `DELETE FROM lectures WHERE id = $1 RETURNING course_id`, id).Scan(&courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return r.refreshNumVideos(ctx, courseID)
}

func (r *CourseRepository) refreshNumVideos(ctx context.Context, courseID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET num_videos = (SELECT count(*) FROM lectures WHERE course_id = $1), updated_at = now()
		WHERE id = $1
	`, courseID)
	return err
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
