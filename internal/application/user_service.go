package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
	"github.com/coursewire/coursewire/pkg/apperr"
	"github.com/coursewire/coursewire/pkg/helpers"
	"github.com/coursewire/coursewire/pkg/mailer"
	"github.com/coursewire/coursewire/pkg/mailer/templates"
	"github.com/coursewire/coursewire/pkg/media"
)

// ErrInvalidCredentials is deliberately identical for unknown email and wrong
// password so responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = apperr.Unauthorized("incorrect email or password")

var ErrResetTokenInvalid = apperr.Unauthorized("token is invalid or has been expired")

// EmailPublisher enqueues outgoing mail; delivery happens in the worker.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserService implements account lifecycle, authentication, password reset,
// playlist management and the admin user operations.
type UserService struct {
	Repo    repository.UserRepository
	Courses repository.CourseRepository
	Media   media.Host
	Mail    EmailPublisher
	Logger  *logrus.Logger

	ES           *elasticsearch.Client
	ESUsersIndex string

	AppName       string
	FrontendURL   string
	ResetURL      string
	ResetTokenTTL time.Duration
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an account. The avatar upload happens before the insert;
// a failed insert leaves an orphaned object on the media host, which is
// accepted (no rollback anywhere in this system).
func (s *UserService) Register(ctx context.Context, in RegisterInput, avatar io.Reader, filename, contentType string) (*entity.User, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("user already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	asset, err := s.Media.Upload(ctx, avatar, filename, contentType)
	if err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		AvatarID:  asset.ID,
		AvatarURL: asset.URL,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, err
	}

	s.enqueueMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.Welcome,
		Data: map[string]any{
			"Name":        u.Name,
			"AppName":     s.AppName,
			"FrontendURL": s.FrontendURL,
		},
	})
	s.indexUser(ctx, u)
	return u, nil
}

// Login validates credentials. Both failure modes return the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the record and issues a compensating delete for the
// avatar asset. The media delete runs first and is log-and-continue: an
// orphaned asset is possible, a dangling record is not.
func (s *UserService) DeleteAccount(ctx context.Context, u *entity.User) error {
	if u.AvatarID != "" {
		if err := s.Media.Delete(ctx, u.AvatarID); err != nil {
			s.Logger.WithError(err).WithField("asset", u.AvatarID).Warn("avatar delete failed")
		}
	}
	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	s.deleteUserIndex(ctx, u.ID)
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, u *entity.User, oldPassword, newPassword string) error {
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.BadRequest("incorrect old password")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, u.ID, hash)
}

// UpdateProfile mutates name/email. This is a read-then-write path; the
// concurrent-write race is accepted.
func (s *UserService) UpdateProfile(ctx context.Context, u *entity.User, name, email string) (*entity.User, error) {
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Conflict("email already in use")
		}
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

// UpdateAvatar uploads the replacement first, then compensates by deleting
// the previous asset.
func (s *UserService) UpdateAvatar(ctx context.Context, u *entity.User, avatar io.Reader, filename, contentType string) (*entity.User, error) {
	asset, err := s.Media.Upload(ctx, avatar, filename, contentType)
	if err != nil {
		return nil, err
	}
	if u.AvatarID != "" {
		if err := s.Media.Delete(ctx, u.AvatarID); err != nil {
			s.Logger.WithError(err).WithField("asset", u.AvatarID).Warn("old avatar delete failed")
		}
	}
	if err := s.Repo.UpdateAvatar(ctx, u.ID, asset.ID, asset.URL); err != nil {
		return nil, err
	}
	u.AvatarID = asset.ID
	u.AvatarURL = asset.URL
	return u, nil
}

// ForgotPassword issues a reset token: only its hash is stored, the plaintext
// goes out by email and is never persisted.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	plaintext, hash, err := helpers.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, hash, time.Now().Add(s.ResetTokenTTL)); err != nil {
		return err
	}

	s.enqueueMail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.ResetPassword,
		Data: map[string]any{
			"Name":     u.Name,
			"AppName":  s.AppName,
			"ResetURL": s.ResetURL + "/" + plaintext,
		},
	})
	return nil
}

// ResetPassword consumes a reset token. The conditional update in the store
// enforces single use: once consumed the stored hash is nulled and a replay
// cannot match.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	matched, err := s.Repo.ConsumeResetToken(ctx, helpers.HashResetToken(token), hash)
	if err != nil {
		return err
	}
	if !matched {
		return ErrResetTokenInvalid
	}
	return nil
}

// AddToPlaylist rejects unknown courses and duplicates. The insert itself is
// a single atomic conditional statement.
func (s *UserService) AddToPlaylist(ctx context.Context, u *entity.User, courseID string) error {
	course, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("invalid course id")
		}
		return err
	}
	added, err := s.Repo.AddPlaylistItem(ctx, u.ID, course.ID, course.PosterURL)
	if err != nil {
		return err
	}
	if !added {
		return apperr.Conflict("item already in playlist")
	}
	return nil
}

// RemoveFromPlaylist is no-op-safe: removing an absent entry is not an error.
func (s *UserService) RemoveFromPlaylist(ctx context.Context, u *entity.User, courseID string) error {
	return s.Repo.RemovePlaylistItem(ctx, u.ID, courseID)
}

func (s *UserService) Playlist(ctx context.Context, userID string) ([]entity.PlaylistItem, error) {
	return s.Repo.GetPlaylist(ctx, userID)
}

// ListUsers returns all user records (admin view).
func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.List(ctx)
}

// ToggleRole flips a user between the two defined roles and returns the new
// role. There is no direct "set role" operation.
func (s *UserService) ToggleRole(ctx context.Context, id string) (string, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("user not found")
		}
		return "", err
	}
	role := entity.RoleAdmin
	if u.IsAdmin() {
		role = entity.RoleUser
	}
	if err := s.Repo.UpdateRole(ctx, id, role); err != nil {
		return "", err
	}
	return role, nil
}

// DeleteUser is the admin-initiated variant of DeleteAccount.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	return s.DeleteAccount(ctx, u)
}

// SearchUsers performs a multi_match search on email and name (admin view).
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *UserService) enqueueMail(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil {
		return
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email enqueue failed")
	}
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *UserService) deleteUserIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}
