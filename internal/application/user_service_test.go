package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/pkg/apperr"
	"github.com/coursewire/coursewire/pkg/helpers"
	"github.com/coursewire/coursewire/pkg/mailer/templates"
)

func newUserService() (*UserService, *fakeUserRepo, *fakeCourseRepo, *fakeMediaHost, *fakePublisher) {
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	host := &fakeMediaHost{}
	mail := &fakePublisher{}
	svc := &UserService{
		Repo:          users,
		Courses:       courses,
		Media:         host,
		Mail:          mail,
		Logger:        testLogger(),
		AppName:       "coursewire",
		FrontendURL:   "https://app.test",
		ResetURL:      "https://app.test/resetpassword",
		ResetTokenTTL: 15 * time.Minute,
	}
	return svc, users, courses, host, mail
}

func register(t *testing.T, svc *UserService, name, email, password string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password},
		strings.NewReader("img"), "avatar.png", "image/png")
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, _, _, host, mail := newUserService()

	u := register(t, svc, "Alice", "alice@example.com", "password123")
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "password123"))

	require.Len(t, host.uploads, 1)
	assert.Equal(t, host.uploads[0], u.AvatarID)

	require.Len(t, mail.jobs, 1)
	assert.Equal(t, "alice@example.com", mail.jobs[0].To)
	assert.Equal(t, templates.Welcome, mail.jobs[0].Template)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := newUserService()
	register(t, svc, "Alice", "alice@example.com", "password123")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "alice@example.com", Password: "different1"},
		strings.NewReader("img"), "avatar.png", "image/png")
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)
	assert.Equal(t, "user already exists", apperr.From(err).Message)
}

func TestLogin(t *testing.T) {
	svc, _, _, _, _ := newUserService()
	register(t, svc, "Alice", "alice@example.com", "password123")

	u, err := svc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _, _, _ := newUserService()
	register(t, svc, "Alice", "alice@example.com", "password123")

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, errWrongPw := svc.Login(context.Background(), "alice@example.com", "wrongpass1")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	assert.Equal(t, 401, apperr.From(errUnknown).Status)
	assert.Equal(t, 401, apperr.From(errWrongPw).Status)
}

func TestChangePassword(t *testing.T) {
	svc, repo, _, _, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")

	err := svc.ChangePassword(context.Background(), u, "wrongpass1", "newpassword")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.From(err).Status)
	assert.Equal(t, "incorrect old password", apperr.From(err).Message)

	require.NoError(t, svc.ChangePassword(context.Background(), u, "password123", "newpassword"))

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "newpassword"))
	assert.False(t, helpers.CompareHashAndPassword(stored.Password, "password123"))
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, repo, _, _, mail := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	require.Len(t, mail.jobs, 2) // welcome + reset
	job := mail.jobs[1]
	assert.Equal(t, templates.ResetPassword, job.Template)
	resetURL, _ := job.Data["ResetURL"].(string)
	require.NotEmpty(t, resetURL)
	plaintext := resetURL[strings.LastIndex(resetURL, "/")+1:]
	require.NotEmpty(t, plaintext)

	// The stored value is a digest, never the mailed secret.
	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, plaintext, *stored.ResetTokenHash)
	assert.Equal(t, helpers.HashResetToken(plaintext), *stored.ResetTokenHash)

	require.NoError(t, svc.ResetPassword(context.Background(), plaintext, "brandnewpw"))

	stored, err = repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "brandnewpw"))
	assert.Nil(t, stored.ResetTokenHash)

	// Replay must fail: the token is single use.
	err = svc.ResetPassword(context.Background(), plaintext, "anotherpw1")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.From(err).Status)
	assert.Equal(t, "token is invalid or has been expired", apperr.From(err).Message)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, _, _, _, mail := newUserService()
	svc.ResetTokenTTL = -time.Minute
	register(t, svc, "Alice", "alice@example.com", "password123")

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	resetURL, _ := mail.jobs[1].Data["ResetURL"].(string)
	plaintext := resetURL[strings.LastIndex(resetURL, "/")+1:]

	err := svc.ResetPassword(context.Background(), plaintext, "brandnewpw")
	require.Error(t, err)
	assert.Equal(t, "token is invalid or has been expired", apperr.From(err).Message)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _, _, _ := newUserService()
	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)
}

func TestUpdateProfile(t *testing.T) {
	svc, repo, _, _, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")
	register(t, svc, "Bob", "bob@example.com", "password123")

	updated, err := svc.UpdateProfile(context.Background(), u, "Alicia", "")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", stored.Name)

	// Taking another account's email is a conflict.
	_, err = svc.UpdateProfile(context.Background(), u, "", "bob@example.com")
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)
}

func TestUpdateAvatarReplacesOldAsset(t *testing.T) {
	svc, _, _, host, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")
	oldID := u.AvatarID

	updated, err := svc.UpdateAvatar(context.Background(), u, strings.NewReader("img2"), "new.png", "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, oldID, updated.AvatarID)
	assert.Contains(t, host.deleted, oldID)
}

func TestDeleteAccount(t *testing.T) {
	svc, repo, _, host, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")

	require.NoError(t, svc.DeleteAccount(context.Background(), u))
	_, err := repo.GetByID(context.Background(), u.ID)
	require.Error(t, err)
	assert.Contains(t, host.deleted, u.AvatarID)
}

func TestPlaylist(t *testing.T) {
	svc, _, courses, _, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")

	course := &entity.Course{Title: "Go", Description: "d", Category: "c", CreatedBy: "x", PosterURL: "https://p"}
	require.NoError(t, courses.Create(context.Background(), course))

	require.NoError(t, svc.AddToPlaylist(context.Background(), u, course.ID))

	// Second add of the same course is rejected, not silently duplicated.
	err := svc.AddToPlaylist(context.Background(), u, course.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperr.From(err).Status)
	assert.Equal(t, "item already in playlist", apperr.From(err).Message)

	items, err := svc.Playlist(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, course.ID, items[0].CourseID)
	assert.Equal(t, "https://p", items[0].PosterURL)

	// Removing twice is fine; the second call is a no-op.
	require.NoError(t, svc.RemoveFromPlaylist(context.Background(), u, course.ID))
	require.NoError(t, svc.RemoveFromPlaylist(context.Background(), u, course.ID))

	items, err = svc.Playlist(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddToPlaylistUnknownCourse(t *testing.T) {
	svc, _, _, _, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")

	err := svc.AddToPlaylist(context.Background(), u, "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)
	assert.Equal(t, "invalid course id", apperr.From(err).Message)
}

func TestToggleRole(t *testing.T) {
	svc, repo, _, _, _ := newUserService()
	u := register(t, svc, "Alice", "alice@example.com", "password123")
	require.NoError(t, repo.UpdateRole(context.Background(), u.ID, entity.RoleUser))

	role, err := svc.ToggleRole(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, role)

	// Toggling twice lands back where it started.
	role, err = svc.ToggleRole(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, role)

	_, err = svc.ToggleRole(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status)
}

func TestSearchUsersWithoutIndex(t *testing.T) {
	svc, _, _, _, _ := newUserService()
	out, err := svc.SearchUsers(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, out)
}
