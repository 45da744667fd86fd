package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/house-doorbell/internal/application"
	"github.com/example/house-doorbell/internal/persistence"
)

// UserRepository implements application.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const userColumns = "id, username, email, password_hash, role, muted, multi_door_open, " +
	"push_ids, birthdate, created_at, updated_at"

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user application.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		user.ID,
		user.Username,
		normalizeEmail(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.Muted,
		user.MultiDoorOpen,
		encodePushIDs(user.PushIDs),
		encodeBirthdate(user.Birthdate),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateUser updates an existing user in the database.
func (r *UserRepository) UpdateUser(ctx context.Context, user application.User) error {
	if user.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, role = ?, muted = ?,
			multi_door_open = ?, push_ids = ?, birthdate = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		user.Username,
		normalizeEmail(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.Muted,
		user.MultiDoorOpen,
		encodePushIDs(user.PushIDs),
		encodeBirthdate(user.Birthdate),
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (application.User, error) {
	if id == "" {
		return application.User{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (application.User, error) {
	if username == "" {
		return application.User{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? COLLATE NOCASE", username)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation timestamp then ID.
func (r *UserRepository) ListUsers(ctx context.Context) ([]application.User, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []application.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

func scanUser(row rowScanner) (application.User, error) {
	var user application.User
	var role, pushIDs string
	var birthdate sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Muted,
		&user.MultiDoorOpen,
		&pushIDs,
		&birthdate,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return application.User{}, persistence.ErrNotFound
		}
		return application.User{}, NewErrorMapper().MapError(err)
	}

	user.Role = application.UserRole(role)
	user.PushIDs = decodePushIDs(pushIDs)
	if birthdate.Valid && birthdate.String != "" {
		t, err := parseTime(birthdate.String)
		if err != nil {
			return application.User{}, err
		}
		user.Birthdate = &t
	}
	if user.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.User{}, err
	}
	return user, nil
}

// Push tokens never contain whitespace, so a space-joined list is unambiguous.
func encodePushIDs(ids []string) string {
	return strings.Join(ids, " ")
}

func decodePushIDs(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Fields(encoded)
}

func encodeBirthdate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
