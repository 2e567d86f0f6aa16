// Package contacts provides the PostgreSQL-backed repository for contact
// records. All queries are predicated on the owning user's id, so a contact
// is never visible outside operations scoped to its owner.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkravets/contactdesk/internal/common"
	"github.com/mkravets/contactdesk/internal/dbx"
	"github.com/mkravets/contactdesk/internal/server/models"
)

const contactColumns = `id, user_id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at`

// searchableColumns is the fixed order filters are applied in, so generated
// SQL is deterministic for a given filter set.
var searchableColumns = []string{"first_name", "last_name", "email"}

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanContact(row *sql.Row) (*models.Contact, error) {
	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func collectContacts(rows *sql.Rows) ([]*models.Contact, error) {
	defer rows.Close()

	var result []*models.Contact
	for rows.Next() {
		c := &models.Contact{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// List returns up to limit contacts owned by userID, skipping offset,
// ordered by id ascending.
func (r *PostgresRepository) List(ctx context.Context, userID int64, limit, offset int) ([]*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectContacts(rows)
}

// GetByID returns the contact with the given id if it is owned by userID,
// common.ErrorNotFound otherwise.
func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64) (*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND user_id = $2
	`
	return scanContact(r.db.QueryRowContext(ctx, query, id, userID))
}

// Create persists a new contact for contact.UserID. A duplicate email or
// phone maps to common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.DateOfBirth).
		Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}

// Update overwrites the user-supplied attributes of the contact identified
// by contact.ID, only if it is owned by contact.UserID. A row owned by
// another user yields common.ErrorNotFound without revealing its existence.
func (r *PostgresRepository) Update(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query := `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone = $6, date_of_birth = $7, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `
	`
	row := r.db.QueryRowContext(ctx, query,
		contact.ID, contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.DateOfBirth)

	updated, err := scanContact(row)
	if err != nil && isUniqueViolation(err) {
		return nil, common.ErrorConflict
	}
	return updated, err
}

// Delete removes the contact immediately and returns the deleted row, or
// common.ErrorNotFound when no contact with that id is owned by userID.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) (*models.Contact, error) {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `
	`
	return scanContact(r.db.QueryRowContext(ctx, query, id, userID))
}

// Search applies exact-match filters (first_name, last_name, email) ANDed
// with the owner scope. Unknown filter keys are ignored; an empty filter
// set degrades to List.
func (r *PostgresRepository) Search(ctx context.Context, userID int64, filters map[string]string, limit, offset int) ([]*models.Contact, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	for _, col := range searchableColumns {
		if val, ok := filters[col]; ok {
			args = append(args, val)
			where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectContacts(rows)
}

// BirthdayWindow returns the "MM-DD" month-days of the inclusive 7-day
// window starting at today (8 days total). Iterating real dates keeps the
// window correct across a year-end wraparound, e.g. Dec 29 through Jan 5.
func BirthdayWindow(today time.Time) []string {
	days := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		days = append(days, today.AddDate(0, 0, i).Format("01-02"))
	}
	return days
}

// UpcomingBirthdays returns contacts owned by userID whose birth month-day
// falls within the window, compared year-independently.
func (r *PostgresRepository) UpcomingBirthdays(ctx context.Context, userID int64, today time.Time) ([]*models.Contact, error) {
	window := BirthdayWindow(today)

	placeholders := make([]string, len(window))
	args := make([]any, 0, len(window)+1)
	args = append(args, userID)
	for i, day := range window {
		args = append(args, day)
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}

	query := fmt.Sprintf(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1 AND to_char(date_of_birth, 'MM-DD') IN (%s)
		ORDER BY id
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectContacts(rows)
}
