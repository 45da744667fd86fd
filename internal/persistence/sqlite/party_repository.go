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

// PartyRepository implements application.PartyRepository using SQLite.
type PartyRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPartyRepository creates a new SQLite party repository.
func NewPartyRepository(pool *ConnectionPool) *PartyRepository {
	return &PartyRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const partyColumns = "id, host_id, name, description, category, status, start_at, end_at, " +
	"reminded_three_day, reminded_one_day, reminded_one_hour, reminded_started, reminded_ended, " +
	"created_at, updated_at"

// partyColumnsPrefixed qualifies every column with the parties alias for joins.
var partyColumnsPrefixed = "p." + strings.ReplaceAll(partyColumns, ", ", ", p.")

// CreateParty inserts the party together with its room claims and guest list.
func (r *PartyRepository) CreateParty(ctx context.Context, party application.Party) error {
	if party.ID == "" || party.HostID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO parties (` + partyColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.helper.ExecTx(tx, query,
			party.ID,
			party.HostID,
			party.Name,
			party.Description,
			string(party.Category),
			string(party.Status),
			formatTime(party.Start),
			formatTime(party.End),
			party.Reminders.ThreeDay,
			party.Reminders.OneDay,
			party.Reminders.OneHour,
			party.Reminders.Started,
			party.Reminders.Ended,
			formatTime(party.CreatedAt),
			formatTime(party.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		for _, room := range party.Rooms {
			if _, err := r.helper.ExecTx(tx,
				"INSERT INTO party_rooms (party_id, room) VALUES (?, ?)",
				party.ID, string(room)); err != nil {
				return r.mapper.MapError(err)
			}
		}

		for _, guest := range party.Guests {
			if _, err := r.helper.ExecTx(tx,
				"INSERT INTO party_guests (party_id, user_id, status, updated_at) VALUES (?, ?, ?, ?)",
				party.ID, guest.UserID, string(guest.Status), formatTime(guest.UpdatedAt)); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// UpdateParty rewrites the party row and its room claims. The guest list is managed
// through UpsertGuest and RemoveGuest.
func (r *PartyRepository) UpdateParty(ctx context.Context, party application.Party) error {
	if party.ID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE parties
			SET name = ?, description = ?, category = ?, status = ?, start_at = ?, end_at = ?,
				reminded_three_day = ?, reminded_one_day = ?, reminded_one_hour = ?,
				reminded_started = ?, reminded_ended = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := r.helper.ExecTx(tx, query,
			party.Name,
			party.Description,
			string(party.Category),
			string(party.Status),
			formatTime(party.Start),
			formatTime(party.End),
			party.Reminders.ThreeDay,
			party.Reminders.OneDay,
			party.Reminders.OneHour,
			party.Reminders.Started,
			party.Reminders.Ended,
			formatTime(party.UpdatedAt),
			party.ID,
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

		if _, err := r.helper.ExecTx(tx, "DELETE FROM party_rooms WHERE party_id = ?", party.ID); err != nil {
			return r.mapper.MapError(err)
		}
		for _, room := range party.Rooms {
			if _, err := r.helper.ExecTx(tx,
				"INSERT INTO party_rooms (party_id, room) VALUES (?, ?)",
				party.ID, string(room)); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// GetParty retrieves one party with its rooms and guests.
func (r *PartyRepository) GetParty(ctx context.Context, id string) (application.Party, error) {
	if id == "" {
		return application.Party{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+partyColumns+" FROM parties WHERE id = ?", id)
	party, err := scanParty(row)
	if err != nil {
		return application.Party{}, err
	}
	if err := r.attachDetails(ctx, &party); err != nil {
		return application.Party{}, err
	}
	return party, nil
}

// ListParties returns all parties ordered by start time.
func (r *PartyRepository) ListParties(ctx context.Context) ([]application.Party, error) {
	return r.queryParties(ctx,
		"SELECT "+partyColumns+" FROM parties ORDER BY start_at ASC, id ASC")
}

// ListConflictingParties returns non-cancelled parties overlapping [start, end) in
// any of the given rooms. This is the broad phase; the application layer re-checks
// the matches.
func (r *PartyRepository) ListConflictingParties(ctx context.Context, rooms []application.Room, start, end time.Time, excludeID string) ([]application.Party, error) {
	if len(rooms) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(rooms))
	args := make([]interface{}, 0, len(rooms)+3)
	args = append(args, formatTime(end), formatTime(start))
	for i, room := range rooms {
		placeholders[i] = "?"
		args = append(args, string(room))
	}
	args = append(args, excludeID)

	query := `
		SELECT DISTINCT ` + partyColumnsPrefixed + `
		FROM parties p
		JOIN party_rooms pr ON pr.party_id = p.id
		WHERE p.status != 'CANCELLED'
		  AND p.start_at < ?
		  AND p.end_at > ?
		  AND pr.room IN (` + strings.Join(placeholders, ", ") + `)
		  AND p.id != ?
		ORDER BY p.start_at ASC, p.id ASC
	`
	return r.queryParties(ctx, query, args...)
}

// ListPartiesForUser returns parties the user hosts or is listed on as a guest.
func (r *PartyRepository) ListPartiesForUser(ctx context.Context, userID string) ([]application.Party, error) {
	query := `
		SELECT DISTINCT ` + partyColumnsPrefixed + `
		FROM parties p
		LEFT JOIN party_guests pg ON pg.party_id = p.id
		WHERE p.host_id = ? OR pg.user_id = ?
		ORDER BY p.start_at ASC, p.id ASC
	`
	return r.queryParties(ctx, query, userID, userID)
}

// DeleteParty removes the party; room and guest rows go with it via ON DELETE CASCADE.
func (r *PartyRepository) DeleteParty(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM parties WHERE id = ?", id)
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

// UpsertGuest inserts or replaces one guest row.
func (r *PartyRepository) UpsertGuest(ctx context.Context, partyID string, guest application.GuestEntry) error {
	if partyID == "" || guest.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO party_guests (party_id, user_id, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (party_id, user_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`
	_, err := r.helper.Exec(ctx, query, partyID, guest.UserID, string(guest.Status), formatTime(guest.UpdatedAt))
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// RemoveGuest deletes one guest row.
func (r *PartyRepository) RemoveGuest(ctx context.Context, partyID, userID string) error {
	result, err := r.helper.Exec(ctx,
		"DELETE FROM party_guests WHERE party_id = ? AND user_id = ?", partyID, userID)
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

func (r *PartyRepository) queryParties(ctx context.Context, query string, args ...interface{}) ([]application.Party, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var parties []application.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range parties {
		if err := r.attachDetails(ctx, &parties[i]); err != nil {
			return nil, err
		}
	}
	return parties, nil
}

// attachDetails loads the rooms and guests for one party.
func (r *PartyRepository) attachDetails(ctx context.Context, party *application.Party) error {
	roomRows, err := r.helper.Query(ctx,
		"SELECT room FROM party_rooms WHERE party_id = ? ORDER BY room ASC", party.ID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	defer roomRows.Close()

	party.Rooms = nil
	for roomRows.Next() {
		var room string
		if err := roomRows.Scan(&room); err != nil {
			return r.mapper.MapError(err)
		}
		party.Rooms = append(party.Rooms, application.Room(room))
	}
	if err := roomRows.Err(); err != nil {
		return r.mapper.MapError(err)
	}

	guestRows, err := r.helper.Query(ctx,
		"SELECT user_id, status, updated_at FROM party_guests WHERE party_id = ? ORDER BY user_id ASC", party.ID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	defer guestRows.Close()

	party.Guests = nil
	for guestRows.Next() {
		var guest application.GuestEntry
		var status, updatedAt string
		if err := guestRows.Scan(&guest.UserID, &status, &updatedAt); err != nil {
			return r.mapper.MapError(err)
		}
		guest.Status = application.AttendanceStatus(status)
		if guest.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		party.Guests = append(party.Guests, guest)
	}
	return guestRows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParty(row rowScanner) (application.Party, error) {
	var party application.Party
	var category, status string
	var startStr, endStr, createdStr, updatedStr string

	err := row.Scan(
		&party.ID,
		&party.HostID,
		&party.Name,
		&party.Description,
		&category,
		&status,
		&startStr,
		&endStr,
		&party.Reminders.ThreeDay,
		&party.Reminders.OneDay,
		&party.Reminders.OneHour,
		&party.Reminders.Started,
		&party.Reminders.Ended,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return application.Party{}, persistence.ErrNotFound
		}
		return application.Party{}, NewErrorMapper().MapError(err)
	}

	party.Category = application.PartyCategory(category)
	party.Status = application.PartyStatus(status)
	if party.Start, err = parseTime(startStr); err != nil {
		return application.Party{}, err
	}
	if party.End, err = parseTime(endStr); err != nil {
		return application.Party{}, err
	}
	if party.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.Party{}, err
	}
	if party.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.Party{}, err
	}
	return party, nil
}
