package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/pkg/apperr"
)

func newCourseService() (*CourseService, *fakeCourseRepo, *fakeMediaHost) {
	repo := newFakeCourseRepo()
	host := &fakeMediaHost{}
	svc := &CourseService{Repo: repo, Media: host, Logger: testLogger()}
	return svc, repo, host
}

func createCourse(t *testing.T, svc *CourseService) *entity.Course {
	t.Helper()
	c, err := svc.Create(context.Background(),
		CourseInput{Title: "Go Basics", Description: "d", Category: "programming", CreatedBy: "Admin"},
		strings.NewReader("img"), "poster.png", "image/png")
	require.NoError(t, err)
	return c
}

func TestCourseCreateAndList(t *testing.T) {
	svc, _, host := newCourseService()
	c := createCourse(t, svc)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, host.uploads[0], c.PosterID)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
}

func TestLecturesCountsView(t *testing.T) {
	svc, repo, _ := newCourseService()
	c := createCourse(t, svc)

	_, err := svc.AddLecture(context.Background(), c.ID,
		LectureInput{Title: "Intro", Description: "d"},
		strings.NewReader("vid"), "intro.mp4", "video/mp4")
	require.NoError(t, err)

	course, lectures, err := svc.Lectures(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, lectures, 1)
	assert.Equal(t, int64(1), course.NumVideos)

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)

	_, _, err = svc.Lectures(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)
	assert.Equal(t, "course not found", apperr.From(err).Message)
}

func TestAddLectureUnknownCourse(t *testing.T) {
	svc, _, host := newCourseService()
	_, err := svc.AddLecture(context.Background(), "missing",
		LectureInput{Title: "Intro", Description: "d"},
		strings.NewReader("vid"), "intro.mp4", "video/mp4")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)
	assert.Empty(t, host.uploads)
}

func TestCourseDeleteCompensatesMedia(t *testing.T) {
	svc, repo, host := newCourseService()
	c := createCourse(t, svc)

	l, err := svc.AddLecture(context.Background(), c.ID,
		LectureInput{Title: "Intro", Description: "d"},
		strings.NewReader("vid"), "intro.mp4", "video/mp4")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), c.ID))

	assert.Contains(t, host.deleted, c.PosterID)
	assert.Contains(t, host.deleted, l.VideoID)
	_, err = repo.GetByID(context.Background(), c.ID)
	require.Error(t, err)
}

func TestDeleteLecture(t *testing.T) {
	svc, repo, host := newCourseService()
	c := createCourse(t, svc)

	l, err := svc.AddLecture(context.Background(), c.ID,
		LectureInput{Title: "Intro", Description: "d"},
		strings.NewReader("vid"), "intro.mp4", "video/mp4")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLecture(context.Background(), l.ID))
	assert.Contains(t, host.deleted, l.VideoID)

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.NumVideos)

	err = svc.DeleteLecture(context.Background(), l.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)
}
