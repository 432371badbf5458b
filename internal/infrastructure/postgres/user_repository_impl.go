package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursewire/coursewire/internal/domain/entity"
	"github.com/coursewire/coursewire/internal/domain/repository"
)

const userColumns = `id, name, email, password_hash, role, avatar_id, avatar_url,
	subscription_id, subscription_status, stripe_customer_id, payment_method_id,
	reset_token_hash, reset_token_expires, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.AvatarID, &u.AvatarURL,
		&u.SubscriptionID, &u.SubscriptionStatus, &u.StripeCustomerID, &u.PaymentMethodID,
		&u.ResetTokenHash, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, avatar_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, role, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.AvatarID, u.AvatarURL)

	if err := row.Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET name = $1, email = $2, updated_at = $3 WHERE id = $4
	`, u.Name, u.Email, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatarID, avatarURL string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET avatar_id = $1, avatar_url = $2, updated_at = now() WHERE id = $3
	`, avatarID, avatarURL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET role = $1, updated_at = now() WHERE id = $2
	`, role, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id, subscriptionID, status string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET subscription_id = $1, subscription_status = $2, updated_at = now() WHERE id = $3
	`, subscriptionID, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token_hash = $1, reset_token_expires = $2, updated_at = now() WHERE id = $3
	`, tokenHash, expires, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeResetToken is a single conditional update: the match requires the
// stored hash to still be present and unexpired, and consumption always
// clears it, so a token can never be replayed.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires = NULL, updated_at = now()
		WHERE reset_token_hash = $2 AND reset_token_expires > now()
	`, newPasswordHash, tokenHash)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// AddPlaylistItem relies on the (user_id, course_id) primary key so the
// duplicate check and the insert are one atomic statement.
func (r *UserRepository) AddPlaylistItem(ctx context.Context, userID, courseID, posterURL string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		INSERT INTO playlist_items (user_id, course_id, poster_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`, userID, courseID, posterURL)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) RemovePlaylistItem(ctx context.Context, userID, courseID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM playlist_items WHERE user_id = $1 AND course_id = $2
	`, userID, courseID)
	return err
}

func (r *UserRepository) GetPlaylist(ctx context.Context, userID string) ([]entity.PlaylistItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT course_id, poster_url, added_at FROM playlist_items WHERE user_id = $1 ORDER BY added_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entity.PlaylistItem{}
	for rows.Next() {
		var it entity.PlaylistItem
		if err := rows.Scan(&it.CourseID, &it.PosterURL, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE subscription_status = 'active'`).Scan(&n)
	return n, err
}

var _ repository.UserRepository = (*UserRepository)(nil)
