package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// HouseService manages the persisted house-wide switches and the audit log surface.
type HouseService struct {
	houseState    HouseStateRepository
	users         UserRepository
	logs          LogRepository
	notifications *NotificationService
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewHouseService wires dependencies for house administration.
func NewHouseService(houseState HouseStateRepository, users UserRepository, logs LogRepository, notifications *NotificationService, idGenerator func() string, now func() time.Time, logger *slog.Logger) *HouseService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &HouseService{
		houseState:    houseState,
		users:         users,
		logs:          logs,
		notifications: notifications,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// GetHouseState returns the current switches. Any member may read them.
func (s *HouseService) GetHouseState(ctx context.Context) (HouseState, error) {
	if s == nil {
		return HouseState{}, fmt.Errorf("HouseService is nil")
	}
	state, err := s.houseState.GetHouseState(ctx)
	if err != nil {
		return HouseState{}, mapRepoError(err)
	}
	return state, nil
}

// SetMaintenance persists the maintenance switch. The state survives restarts, so a
// crash never silently re-enables door access. Toggling to the current value is a
// no-op that sends no notification.
func (s *HouseService) SetMaintenance(ctx context.Context, principal Principal, active bool) (HouseState, error) {
	if s == nil {
		return HouseState{}, fmt.Errorf("HouseService is nil")
	}
	if !principal.Role.can().manageHouse {
		return HouseState{}, ErrUnauthorized
	}

	state, err := s.houseState.GetHouseState(ctx)
	if err != nil {
		return HouseState{}, mapRepoError(err)
	}
	if state.MaintenanceActive == active {
		return state, nil
	}

	state.MaintenanceActive = active
	state.UpdatedAt = s.now()
	if err := mapRepoError(s.houseState.SaveHouseState(ctx, state)); err != nil {
		return HouseState{}, err
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	s.audit(ctx, principal.UserID, LogTypeMaintenance,
		fmt.Sprintf("maintenance mode %s", verb))
	s.notifications.MaintenanceChanged(ctx, active, s.allUserIDs(ctx))

	return state, nil
}

// SetRegistrationBlocked persists the registration switch. Only the privileged role
// is informed of changes.
func (s *HouseService) SetRegistrationBlocked(ctx context.Context, principal Principal, blocked bool) (HouseState, error) {
	if s == nil {
		return HouseState{}, fmt.Errorf("HouseService is nil")
	}
	if !principal.Role.can().manageHouse {
		return HouseState{}, ErrUnauthorized
	}

	state, err := s.houseState.GetHouseState(ctx)
	if err != nil {
		return HouseState{}, mapRepoError(err)
	}
	if state.RegistrationBlocked == blocked {
		return state, nil
	}

	state.RegistrationBlocked = blocked
	state.UpdatedAt = s.now()
	if err := mapRepoError(s.houseState.SaveHouseState(ctx, state)); err != nil {
		return HouseState{}, err
	}

	verb := "unblocked"
	if blocked {
		verb = "blocked"
	}
	s.audit(ctx, principal.UserID, LogTypeRegistration,
		fmt.Sprintf("user registration %s", verb))
	s.notifications.RegistrationChanged(ctx, blocked, s.knowledgerIDs(ctx))

	return state, nil
}

// ListLogs returns the most recent audit entries, newest first. Privileged role only.
func (s *HouseService) ListLogs(ctx context.Context, principal Principal, limit int) ([]LogEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("HouseService is nil")
	}
	if !principal.Role.can().manageHouse {
		return nil, ErrUnauthorized
	}

	entries, err := s.logs.ListLogs(ctx, limit)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return entries, nil
}

func (s *HouseService) allUserIDs(ctx context.Context) []string {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "house", "notify").
			Warn("failed to list notification audience", "error", err)
		return nil
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids
}

func (s *HouseService) knowledgerIDs(ctx context.Context) []string {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "house", "notify").
			Warn("failed to list notification audience", "error", err)
		return nil
	}
	var ids []string
	for _, user := range users {
		if user.Role == RoleKnowledger {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

func (s *HouseService) audit(ctx context.Context, userID string, logType LogType, message string) {
	entry := LogEntry{
		ID:        s.idGenerator(),
		UserID:    userID,
		Message:   message,
		Type:      logType,
		CreatedAt: s.now(),
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "house", "audit").
			Warn("failed to append audit log", "log_type", logType, "error", err)
	}
}
