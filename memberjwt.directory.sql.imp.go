// File: memberjwt.directory.sql.imp.go

package memberjwt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const memberTableName = "members"

// Profile attributes backed by a column of the members table.
var memberAttributeColumns = []struct {
	attribute string
	column    string
}{
	{"Email", "email"},
	{"FirstName", "first_name"},
	{"Surname", "surname"},
}

// SQLMemberDirectory is a MemberDirectory over a "members" table reachable
// through database/sql. PostgreSQL ("postgres") and SQLite ("sqlite3") are
// supported.
type SQLMemberDirectory struct {
	db               *sql.DB
	driver           string
	identifierColumn string
}

// NewSQLMemberDirectory creates a new SQL-based member directory.
//
// Parameters:
//   - db: Open database handle
//   - driver: "postgres" or "sqlite3", used to pick the placeholder style
//   - identifierColumn: Unique column members log in with, "email" or "id"
//     (empty means "email")
func NewSQLMemberDirectory(db *sql.DB, driver, identifierColumn string) (*SQLMemberDirectory, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	switch identifierColumn {
	case "":
		identifierColumn = "email"
	case "email", "id":
	default:
		return nil, fmt.Errorf("unsupported identifier column: %s", identifierColumn)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return &SQLMemberDirectory{
		db:               db,
		driver:           driver,
		identifierColumn: identifierColumn,
	}, nil
}

// CreateSchema creates the members table when it does not exist yet
func (r *SQLMemberDirectory) CreateSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+memberTableName+` (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	first_name    TEXT NOT NULL DEFAULT '',
	surname       TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create members table: %w", err)
	}
	return nil
}

// SaveMember inserts record or updates the row with the same ID.
// Attributes other than Email, FirstName and Surname are ignored.
func (r *SQLMemberDirectory) SaveMember(ctx context.Context, record MemberRecord) error {
	if record.ID == "" {
		return fmt.Errorf("member ID cannot be empty")
	}
	if record.PasswordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	values := make([]any, 0, 5)
	values = append(values, record.ID)
	for _, mapping := range memberAttributeColumns {
		value, _ := record.Attributes[mapping.attribute].(string)
		values = append(values, value)
	}
	values = append(values, record.PasswordHash)

	query := fmt.Sprintf(`INSERT INTO %s (id, email, first_name, surname, password_hash)
VALUES (%s, %s, %s, %s, %s)
ON CONFLICT (id) DO UPDATE SET
	email = excluded.email,
	first_name = excluded.first_name,
	surname = excluded.surname,
	password_hash = excluded.password_hash`,
		memberTableName, r.placeholder(1), r.placeholder(2), r.placeholder(3), r.placeholder(4), r.placeholder(5))

	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

// FindMember loads the member whose identifier column matches identifier,
// ignoring case
func (r *SQLMemberDirectory) FindMember(ctx context.Context, identifier string) (*MemberRecord, error) {
	if identifier == "" {
		return nil, ErrMemberNotFound
	}

	query := fmt.Sprintf(`SELECT id, email, first_name, surname, password_hash FROM %s WHERE LOWER(%s) = LOWER(%s)`,
		memberTableName, r.identifierColumn, r.placeholder(1))

	var (
		id, email, firstName, surname, passwordHash string
	)
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(&id, &email, &firstName, &surname, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}

	return &MemberRecord{
		ID:           id,
		PasswordHash: passwordHash,
		Attributes: map[string]any{
			"Email":     email,
			"FirstName": firstName,
			"Surname":   surname,
		},
	}, nil
}

func (r *SQLMemberDirectory) placeholder(n int) string {
	if r.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
