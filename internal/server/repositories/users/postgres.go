// Package users provides a PostgreSQL-backed repository for user accounts:
// lookup by email, creation, refresh-token rotation, avatar updates, email
// confirmation and password replacement.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/dbx"
	"github.com/mkravets/contactdesk/internal/server/models"
)

const userColumns = `id, username, email, password, avatar, refresh_token, confirmed, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&user.Avatar, &user.RefreshToken, &user.Confirmed, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FindByEmail looks the user up by email, case-insensitively.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
	`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts a new account with confirmed = false. A duplicate email
// maps to common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, confirmed, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Password, user.Avatar).
		Scan(&user.ID, &user.Confirmed, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// UpdateRefreshToken overwrites the stored refresh token; nil clears it,
// forcing re-authentication on the next refresh attempt.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	query := `
		UPDATE users SET refresh_token = $2, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateAvatar stores a new avatar URL for the account with the given email.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, email string, url string) (*models.User, error) {
	query := `
		UPDATE users SET avatar = $2, updated_at = now()
		WHERE lower(email) = lower($1)
		RETURNING ` + userColumns + `
	`
	return scanUser(r.db.QueryRowContext(ctx, query, email, url))
}

// Confirm flips the confirmed flag to true. Re-running it is a no-op.
func (r *PostgresRepository) Confirm(ctx context.Context, email string) error {
	query := `
		UPDATE users SET confirmed = true, updated_at = now()
		WHERE lower(email) = lower($1)
	`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) (*models.User, error) {
	query := `
		UPDATE users SET password = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns + `
	`
	return scanUser(r.db.QueryRowContext(ctx, query, userID, passwordHash))
}
