package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/house-doorbell/internal/application"
)

// HouseStateRepository implements application.HouseStateRepository using SQLite. The
// table holds a single row so the switches survive restarts.
type HouseStateRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewHouseStateRepository creates a new SQLite house state repository.
func NewHouseStateRepository(pool *ConnectionPool) *HouseStateRepository {
	return &HouseStateRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetHouseState returns the persisted switches. A missing row means both switches
// are off.
func (r *HouseStateRepository) GetHouseState(ctx context.Context) (application.HouseState, error) {
	var state application.HouseState
	var updatedStr string

	err := r.helper.QueryRow(ctx,
		"SELECT maintenance_active, registration_blocked, updated_at FROM house_state WHERE id = 1").
		Scan(&state.MaintenanceActive, &state.RegistrationBlocked, &updatedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return application.HouseState{}, nil
		}
		return application.HouseState{}, r.mapper.MapError(err)
	}

	if state.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.HouseState{}, err
	}
	return state, nil
}

// SaveHouseState writes the singleton row.
func (r *HouseStateRepository) SaveHouseState(ctx context.Context, state application.HouseState) error {
	query := `
		INSERT INTO house_state (id, maintenance_active, registration_blocked, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			maintenance_active = excluded.maintenance_active,
			registration_blocked = excluded.registration_blocked,
			updated_at = excluded.updated_at
	`
	_, err := r.helper.Exec(ctx, query,
		state.MaintenanceActive,
		state.RegistrationBlocked,
		formatTime(state.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}
