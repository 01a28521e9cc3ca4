package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hirelink/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	SetDeviceToken(ctx context.Context, id uuid.UUID, token *string) error
	ClearStaleDeviceToken(ctx context.Context, id uuid.UUID, token string) error
}

const userColumns = `user_id, full_name, email, phone, gender, home_address, profile_photo_url, device_token, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetDeviceToken stores the push token for a user; a nil token clears it.
func (r *userRepository) SetDeviceToken(ctx context.Context, id uuid.UUID, token *string) error {
	query := `UPDATE users SET device_token = $2, updated_at = NOW() WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

// ClearStaleDeviceToken clears the token only if it still equals the rejected
// one, so a token re-registered in the meantime survives.
func (r *userRepository) ClearStaleDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET device_token = NULL, updated_at = NOW() WHERE user_id = $1 AND device_token = $2`
	_, err := r.db.ExecContext(ctx, query, id, token)
	return err
}
