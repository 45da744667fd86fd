package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// doorRateWindow is the trailing window consulted by the rate limiter.
	doorRateWindow = 10 * time.Second
	// doorRateLimit is the number of successful opens inside the window that trips
	// the limiter.
	doorRateLimit = 2
	// DefaultInnerTravelThreshold is the walking-time bound under which the inner
	// door opens together with the outer one.
	DefaultInnerTravelThreshold = 90 * time.Second
)

// DoorService guards and drives the two-stage door unlock. The gate checks run in a
// fixed order so the caller always learns the most fundamental denial first: rate
// limit, mute, maintenance, then party membership.
type DoorService struct {
	users         UserRepository
	parties       PartyRepository
	logs          LogRepository
	houseState    HouseStateRepository
	actuator      DoorActuator
	travel        TravelEstimator
	notifications *NotificationService
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger

	innerTravelThreshold time.Duration
}

// NewDoorService wires dependencies for door access. innerTravelThreshold bounds the
// walking time for the inner-door decision; zero selects the default.
func NewDoorService(users UserRepository, parties PartyRepository, logs LogRepository, houseState HouseStateRepository, actuator DoorActuator, travel TravelEstimator, notifications *NotificationService, idGenerator func() string, now func() time.Time, innerTravelThreshold time.Duration, logger *slog.Logger) *DoorService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if innerTravelThreshold <= 0 {
		innerTravelThreshold = DefaultInnerTravelThreshold
	}
	return &DoorService{
		users:                users,
		parties:              parties,
		logs:                 logs,
		houseState:           houseState,
		actuator:             actuator,
		travel:               travel,
		notifications:        notifications,
		idGenerator:          idGenerator,
		now:                  now,
		logger:               defaultLogger(logger),
		innerTravelThreshold: innerTravelThreshold,
	}
}

// OpenDoor runs the access gate and, when it passes, actuates the outer door and
// possibly the inner one. A DoorResult is returned whenever the gate passed, even if
// the hardware reported failure; the gate itself denies with AccessDeniedError.
func (s *DoorService) OpenDoor(ctx context.Context, params OpenDoorParams) (DoorResult, error) {
	if s == nil {
		return DoorResult{}, fmt.Errorf("DoorService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "door", "open", "user_id", params.Principal.UserID)

	user, err := s.users.GetUser(ctx, params.Principal.UserID)
	if err != nil {
		return DoorResult{}, mapRepoError(err)
	}

	state, err := s.houseState.GetHouseState(ctx)
	if err != nil {
		return DoorResult{}, mapRepoError(err)
	}

	if reason, denied := s.gate(ctx, user, state); denied {
		s.appendLog(ctx, user.ID, LogTypeDoorOpenFailed,
			fmt.Sprintf("door open denied for %s: %s", user.Username, reason))
		logger.Info("door access denied", "reason", string(reason))
		return DoorResult{}, &AccessDeniedError{Reason: reason}
	}

	result := DoorResult{}
	outcome, err := s.actuator.Open(ctx, StageOuter)
	if err != nil {
		s.appendLog(ctx, user.ID, LogTypeDoorOpenError,
			fmt.Sprintf("outer door actuation error for %s: %v", user.Username, err))
		return DoorResult{}, fmt.Errorf("actuating outer door: %w", err)
	}
	result.Outer = outcome

	switch outcome {
	case OutcomeSuccess:
		s.appendLog(ctx, user.ID, LogTypeDoorOpen,
			fmt.Sprintf("%s opened the outer door", user.Username))
		s.notifyOpened(ctx, user, state)
	case OutcomeTimeout:
		s.appendLog(ctx, user.ID, LogTypeDoorOpenError,
			fmt.Sprintf("outer door acknowledgement timed out for %s", user.Username))
		return result, nil
	default:
		s.appendLog(ctx, user.ID, LogTypeDoorOpenFailed,
			fmt.Sprintf("outer door reported failure for %s", user.Username))
		return result, nil
	}

	if !s.shouldOpenInner(ctx, user, params, logger) {
		return result, nil
	}

	result.InnerAttempted = true
	inner, err := s.actuator.Open(ctx, StageInner)
	if err != nil {
		s.appendLog(ctx, user.ID, LogTypeDoorOpenError,
			fmt.Sprintf("inner door actuation error for %s: %v", user.Username, err))
		return result, fmt.Errorf("actuating inner door: %w", err)
	}
	result.Inner = inner

	switch inner {
	case OutcomeSuccess:
		s.appendLog(ctx, user.ID, LogTypeDoorOpen,
			fmt.Sprintf("%s opened the inner door", user.Username))
	case OutcomeTimeout:
		s.appendLog(ctx, user.ID, LogTypeDoorOpenError,
			fmt.Sprintf("inner door acknowledgement timed out for %s", user.Username))
	default:
		s.appendLog(ctx, user.ID, LogTypeDoorOpenFailed,
			fmt.Sprintf("inner door reported failure for %s", user.Username))
	}
	return result, nil
}

// gate applies the denial checks in their fixed order.
func (s *DoorService) gate(ctx context.Context, user User, state HouseState) (DenyReason, bool) {
	caps := user.Role.can()

	since := s.now().Add(-doorRateWindow)
	count, err := s.logs.CountLogsSince(ctx, user.ID, LogTypeDoorOpen, since)
	if err != nil {
		// A broken rate limiter must not lock everyone out.
		serviceLogger(ctx, s.logger, "door", "gate").
			Warn("rate limit lookup failed", "user_id", user.ID, "error", err)
	} else if count >= doorRateLimit {
		return DenyRateLimited, true
	}

	if user.Muted && !caps.bypassMute {
		return DenyMuted, true
	}
	if state.MaintenanceActive && !caps.bypassMaintenance {
		return DenyMaintenance, true
	}
	if !caps.bypassMembership && !s.attendsOngoingParty(ctx, user.ID) {
		return DenyNotInvited, true
	}
	return "", false
}

// attendsOngoingParty reports whether the user hosts or is listed on a party whose
// derived status is IN_PROGRESS right now. The guest list alone grants entry; a
// NOT_GOING reply only shapes reminder audiences, never door access.
func (s *DoorService) attendsOngoingParty(ctx context.Context, userID string) bool {
	parties, err := s.parties.ListPartiesForUser(ctx, userID)
	if err != nil {
		serviceLogger(ctx, s.logger, "door", "gate").
			Warn("party membership lookup failed", "user_id", userID, "error", err)
		return false
	}

	now := s.now()
	for i := range parties {
		if err := refreshStatus(ctx, s.parties, &parties[i], now); err != nil {
			continue
		}
		if parties[i].Status != StatusInProgress {
			continue
		}
		if parties[i].HostID == userID || parties[i].IsGuest(userID) {
			return true
		}
	}
	return false
}

// shouldOpenInner decides the second stage: the user must have multi-door opening
// enabled, provide coordinates, and be within walking distance of the house.
func (s *DoorService) shouldOpenInner(ctx context.Context, user User, params OpenDoorParams, logger *slog.Logger) bool {
	if !user.MultiDoorOpen {
		return false
	}
	if params.Latitude == nil || params.Longitude == nil {
		return false
	}
	if s.travel == nil {
		return false
	}

	seconds, err := s.travel.EstimateTravelSeconds(ctx, *params.Latitude, *params.Longitude)
	if err != nil {
		logger.Warn("travel estimate failed, skipping inner door", "error", err)
		return false
	}
	return seconds < s.innerTravelThreshold.Seconds()
}

// notifyOpened fans the door-opened notice out to residents. During maintenance only
// the privileged role is informed.
func (s *DoorService) notifyOpened(ctx context.Context, opener User, state HouseState) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		serviceLogger(ctx, s.logger, "door", "notify").
			Warn("failed to list notification audience", "error", err)
		return
	}

	recipients := make([]string, 0, len(users))
	for _, user := range users {
		if user.ID == opener.ID {
			continue
		}
		switch user.Role {
		case RoleKnowledger:
			recipients = append(recipients, user.ID)
		case RoleHouser:
			if !state.MaintenanceActive {
				recipients = append(recipients, user.ID)
			}
		}
	}
	s.notifications.DoorOpened(ctx, opener.Username, recipients)
}

func (s *DoorService) appendLog(ctx context.Context, userID string, logType LogType, message string) {
	entry := LogEntry{
		ID:        s.idGenerator(),
		UserID:    userID,
		Message:   message,
		Type:      logType,
		CreatedAt: s.now(),
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "door", "audit").
			Warn("failed to append door log", "log_type", logType, "error", err)
	}
}
