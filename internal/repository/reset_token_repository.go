package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"flipyard/internal/models"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository stores password-reset token hashes. Rows are never
// deleted; a consumed token keeps its used_at for audit.
type ResetTokenRepository struct {
	db DBTX
}

func NewResetTokenRepository(db DBTX) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token models.PasswordResetToken) error {
	const query = `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// FindUsable returns the unused, unexpired token with the given hash.
func (r *ResetTokenRepository) FindUsable(ctx context.Context, hash string, now time.Time) (models.PasswordResetToken, error) {
	const query = `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1 AND expires_at > $2 AND used_at IS NULL
	`

	var token models.PasswordResetToken
	err := r.db.QueryRow(ctx, query, hash, now).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PasswordResetToken{}, ErrResetTokenNotFound
		}
		return models.PasswordResetToken{}, err
	}
	return token, nil
}

// MarkUsed consumes the token. The used_at guard makes a second consumption
// report ErrResetTokenNotFound.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrResetTokenNotFound
	}
	return nil
}
