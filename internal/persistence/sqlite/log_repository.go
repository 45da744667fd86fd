package sqlite

import (
	"context"
	"time"

	"github.com/example/house-doorbell/internal/application"
	"github.com/example/house-doorbell/internal/persistence"
)

// LogRepository implements application.LogRepository using SQLite. The table is
// append-only; entries are never updated or deleted.
type LogRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLogRepository creates a new SQLite log repository.
func NewLogRepository(pool *ConnectionPool) *LogRepository {
	return &LogRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// AppendLog inserts one audit entry.
func (r *LogRepository) AppendLog(ctx context.Context, entry application.LogEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		"INSERT INTO logs (id, user_id, message, type, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID,
		entry.UserID,
		entry.Message,
		string(entry.Type),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// CountLogsSince counts entries of the given type for the user at or after since.
func (r *LogRepository) CountLogsSince(ctx context.Context, userID string, logType application.LogType, since time.Time) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM logs WHERE user_id = ? AND type = ? AND created_at >= ?",
		userID, string(logType), formatTime(since)).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// ListLogs returns the newest entries first. limit <= 0 returns everything.
func (r *LogRepository) ListLogs(ctx context.Context, limit int) ([]application.LogEntry, error) {
	query := "SELECT id, user_id, message, type, created_at FROM logs ORDER BY created_at DESC, id DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []application.LogEntry
	for rows.Next() {
		var entry application.LogEntry
		var logType, createdStr string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Message, &logType, &createdStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		entry.Type = application.LogType(logType)
		if entry.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
