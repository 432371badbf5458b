package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coursewire/coursewire/internal/domain/entity"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when the unique email constraint is violated.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the persistence operations for user records.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatarID, avatarURL string) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdateSubscription(ctx context.Context, id, subscriptionID, status string) error
	Delete(ctx context.Context, id string) error

	// SetResetToken stores the hashed reset secret and its expiry.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	// ConsumeResetToken atomically matches an unexpired stored hash, installs
	// the new password hash and clears both token fields. It reports whether a
	// row matched; false means invalid or expired.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (bool, error)

	// AddPlaylistItem inserts iff the course is not already present and
	// reports whether a row was inserted.
	AddPlaylistItem(ctx context.Context, userID, courseID, posterURL string) (bool, error)
	// RemovePlaylistItem deletes the entry if present; removing an absent
	// entry is not an error.
	RemovePlaylistItem(ctx context.Context, userID, courseID string) error
	GetPlaylist(ctx context.Context, userID string) ([]entity.PlaylistItem, error)

	CountUsers(ctx context.Context) (int64, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
}
