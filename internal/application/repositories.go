package application

import (
	"context"
	"time"
)

// PartyRepository captures the persistence interactions needed for parties and their
// guest sub-records.
type PartyRepository interface {
	CreateParty(ctx context.Context, party Party) error
	UpdateParty(ctx context.Context, party Party) error
	GetParty(ctx context.Context, id string) (Party, error)
	ListParties(ctx context.Context) ([]Party, error)
	// ListConflictingParties returns non-cancelled parties that claim any of the given
	// rooms and overlap [start, end) under the half-open rule. excludeID, when
	// non-empty, removes the party being rescheduled from consideration.
	ListConflictingParties(ctx context.Context, rooms []Room, start, end time.Time, excludeID string) ([]Party, error)
	// ListPartiesForUser returns parties the user hosts or is listed on as a guest.
	ListPartiesForUser(ctx context.Context, userID string) ([]Party, error)
	// DeleteParty removes the party and its dependent guest rows.
	DeleteParty(ctx context.Context, id string) error
	UpsertGuest(ctx context.Context, partyID string, guest GuestEntry) error
	RemoveGuest(ctx context.Context, partyID, userID string) error
}

// UserRepository captures the persistence interactions needed for member accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// LogRepository is the append-only audit log store.
type LogRepository interface {
	AppendLog(ctx context.Context, entry LogEntry) error
	// CountLogsSince counts entries of the given type recorded for the user at or
	// after the since instant. Used by the door rate limiter.
	CountLogsSince(ctx context.Context, userID string, logType LogType, since time.Time) (int, error)
	ListLogs(ctx context.Context, limit int) ([]LogEntry, error)
}

// HouseStateRepository stores the process-wide maintenance and registration switches.
type HouseStateRepository interface {
	GetHouseState(ctx context.Context) (HouseState, error)
	SaveHouseState(ctx context.Context, state HouseState) error
}

// NotificationSink delivers a notification to its recipients. Implementations must be
// safe for concurrent use; delivery failures are the implementation's concern and are
// never propagated as request failures by the services.
type NotificationSink interface {
	Send(ctx context.Context, note Notification) error
}

// NotificationStore reads back dashboard notifications persisted by the sink.
type NotificationStore interface {
	ListNotificationsForUser(ctx context.Context, userID string, limit int) ([]StoredNotification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

// TravelEstimator estimates the walking time from a coordinate to the house.
type TravelEstimator interface {
	EstimateTravelSeconds(ctx context.Context, lat, lon float64) (float64, error)
}

// DoorActuator performs a single bounded-wait unlock handshake for one stage.
type DoorActuator interface {
	Open(ctx context.Context, stage DoorStage) (StageOutcome, error)
}
