package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/house-doorbell/internal/application"
	"github.com/example/house-doorbell/internal/persistence"
)

// NotificationRepository persists fanned-out notifications, one row per recipient,
// and serves them back for the dashboard.
type NotificationRepository struct {
	pool        *ConnectionPool
	helper      *QueryHelper
	mapper      *ErrorMapper
	idGenerator func() string
	now         func() time.Time
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(pool *ConnectionPool, idGenerator func() string, now func() time.Time) *NotificationRepository {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationRepository{
		pool:        pool,
		helper:      NewQueryHelper(pool),
		mapper:      NewErrorMapper(),
		idGenerator: idGenerator,
		now:         now,
	}
}

// SaveNotification writes one row per recipient in a single transaction.
func (r *NotificationRepository) SaveNotification(ctx context.Context, note application.Notification) error {
	if len(note.RecipientIDs) == 0 {
		return nil
	}

	createdAt := formatTime(r.now())
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, recipientID := range note.RecipientIDs {
			_, err := r.helper.ExecTx(tx,
				"INSERT INTO notifications (id, recipient_id, title, message, category, party_id, read, created_at) VALUES (?, ?, ?, ?, ?, ?, 0, ?)",
				r.idGenerator(),
				recipientID,
				note.Title,
				note.Message,
				string(note.Category),
				note.PartyID,
				createdAt,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// ListNotificationsForUser returns the user's notifications, newest first. limit <= 0
// returns everything.
func (r *NotificationRepository) ListNotificationsForUser(ctx context.Context, userID string, limit int) ([]application.StoredNotification, error) {
	query := `
		SELECT id, recipient_id, title, message, category, party_id, read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var notes []application.StoredNotification
	for rows.Next() {
		var note application.StoredNotification
		var category, createdStr string
		if err := rows.Scan(&note.ID, &note.RecipientID, &note.Title, &note.Message,
			&category, &note.PartyID, &note.Read, &createdStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		note.Category = application.NotificationCategory(category)
		if note.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// MarkNotificationRead flags one of the user's notifications as read.
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	result, err := r.helper.Exec(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND recipient_id = ?",
		notificationID, userID)
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
