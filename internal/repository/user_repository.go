package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	db     DBPool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db DBPool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const userColumns = `id, email, password_hash, google_id, name, phone, city, address_line1, address_line2, landmark, pincode, avatar_url, profile_completed, role, created_at`

// prefixedUserColumns qualifies every user column with a table alias, for
// queries that join users against another table.
func prefixedUserColumns(prefix string) string {
	cols := strings.Split(userColumns, ", ")
	for i, c := range cols {
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.Name,
		&u.Phone,
		&u.City,
		&u.AddressLine1,
		&u.AddressLine2,
		&u.Landmark,
		&u.Pincode,
		&u.AvatarURL,
		&u.ProfileCompleted,
		&u.Role,
		&u.CreatedAt,
	)
}

// Create inserts a new user account.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, google_id, name, phone, city, address_line1, address_line2, landmark, pincode, avatar_url, profile_completed, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING created_at
	`, user.ID, strings.ToLower(user.Email), user.PasswordHash, user.GoogleID,
		user.Name, user.Phone, user.City, user.AddressLine1, user.AddressLine2,
		user.Landmark, user.Pincode, user.AvatarURL, user.ProfileCompleted,
		user.Role).Scan(&user.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.getOne(ctx, query, strings.ToLower(email))
}

// GetByGoogleID retrieves a user by their federated identity.
func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE google_id = $1 AND google_id <> ''`, userColumns)
	return r.getOne(ctx, query, googleID)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := scanUser(r.db.QueryRow(ctx, query, arg), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// UpdateProfile writes the delivery profile fields and the completed flag.
func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $2, phone = $3, city = $4, address_line1 = $5, address_line2 = $6,
		    landmark = $7, pincode = $8, avatar_url = $9, profile_completed = $10
		WHERE id = $1
	`, user.ID, user.Name, user.Phone, user.City, user.AddressLine1,
		user.AddressLine2, user.Landmark, user.Pincode, user.AvatarURL,
		user.ProfileCompleted)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to update profile")
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update password")
		return fmt.Errorf("failed to update password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// List retrieves users for the admin overview, newest first.
func (r *userRepository) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, userColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan user row")
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating user rows")
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
