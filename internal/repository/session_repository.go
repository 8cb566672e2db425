package repository

import (
	"context"
	"errors"
	"fmt"

	"recell-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// sessionRepository implements the SessionRepository interface using PostgreSQL.
type sessionRepository struct {
	db     DBPool
	logger zerolog.Logger
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(db DBPool, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger.With().Str("repository", "session").Logger(),
	}
}

// Create inserts a new session.
func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, session.Token, session.UserID, session.ExpiresAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", session.UserID.String()).Msg("failed to create session")
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetUser resolves a session token to its user, ignoring expired sessions.
func (r *sessionRepository) GetUser(ctx context.Context, token string) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		JOIN sessions s ON s.user_id = u.id
		WHERE s.token = $1 AND s.expires_at > NOW()
	`, prefixedUserColumns("u."))

	var u model.User
	err := scanUser(r.db.QueryRow(ctx, query, token), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to resolve session")
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	return &u, nil
}

// Delete removes a session.
func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all expired sessions and returns how many were dropped.
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete expired sessions")
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateResetToken inserts a password reset token.
func (r *sessionRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, used)
		VALUES ($1, $2, $3, FALSE)
	`, token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", token.UserID.String()).Msg("failed to create reset token")
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetResetToken retrieves a password reset token. Returns nil when absent.
func (r *sessionRepository) GetResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.QueryRow(ctx, `
		SELECT token, user_id, expires_at, used
		FROM password_reset_tokens
		WHERE token = $1
	`, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query reset token")
		return nil, fmt.Errorf("failed to query reset token: %w", err)
	}
	return &t, nil
}

// MarkResetTokenUsed burns a reset token so it cannot be replayed.
func (r *sessionRepository) MarkResetTokenUsed(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `UPDATE password_reset_tokens SET used = TRUE WHERE token = $1`, token); err != nil {
		r.logger.Error().Err(err).Msg("failed to mark reset token used")
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}
