package application

import "time"

// UserRole identifies the authorization tier of a household member.
type UserRole string

const (
	// RoleKnowledger is the privileged house-admin role with unrestricted overrides.
	RoleKnowledger UserRole = "KNOWLEDGER"
	// RoleHouser is a resident: exempt from party-membership gating but not from
	// mute or maintenance restrictions.
	RoleHouser UserRole = "HOUSER"
	// RoleGuest is an external visitor whose door access depends on an ongoing party.
	RoleGuest UserRole = "GUEST"
)

// capabilities is the per-role permission table consumed uniformly by the services.
type capabilities struct {
	bypassMute        bool
	bypassMaintenance bool
	bypassMembership  bool
	manageHouse       bool
	hostParties       bool
	seeAllParties     bool
}

var roleCapabilities = map[UserRole]capabilities{
	RoleKnowledger: {
		bypassMute:        true,
		bypassMaintenance: true,
		bypassMembership:  true,
		manageHouse:       true,
		hostParties:       true,
		seeAllParties:     true,
	},
	RoleHouser: {
		bypassMembership: true,
		hostParties:      true,
	},
	RoleGuest: {},
}

func (r UserRole) can() capabilities {
	return roleCapabilities[r]
}

// Known reports whether the role is part of the closed enumeration.
func (r UserRole) Known() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// PartyStatus is the lifecycle state of a party.
type PartyStatus string

const (
	StatusScheduled  PartyStatus = "SCHEDULED"
	StatusInProgress PartyStatus = "IN_PROGRESS"
	StatusCompleted  PartyStatus = "COMPLETED"
	StatusCancelled  PartyStatus = "CANCELLED"
)

// Terminal reports whether the status absorbs automatic derivation.
func (s PartyStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// PartyCategory classifies a party. CategoryCleaning switches notifications to the
// mandatory-attendance tone but never changes access logic.
type PartyCategory string

const (
	CategoryHouseParty       PartyCategory = "HOUSE_PARTY"
	CategoryKnowledgeSharing PartyCategory = "KNOWLEDGE_SHARING"
	CategoryGameNight        PartyCategory = "GAME_NIGHT"
	CategoryMovieNight       PartyCategory = "MOVIE_NIGHT"
	CategoryDinner           PartyCategory = "DINNER"
	CategoryCleaning         PartyCategory = "CLEANING"
)

var partyCategories = map[PartyCategory]struct{}{
	CategoryHouseParty:       {},
	CategoryKnowledgeSharing: {},
	CategoryGameNight:        {},
	CategoryMovieNight:       {},
	CategoryDinner:           {},
	CategoryCleaning:         {},
}

// AttendanceStatus records a guest's reply to a party invitation.
type AttendanceStatus string

const (
	AttendanceGoing     AttendanceStatus = "GOING"
	AttendanceNotGoing  AttendanceStatus = "NOT_GOING"
	AttendanceUndecided AttendanceStatus = "UNDECIDED"
	AttendanceLate      AttendanceStatus = "LATE"
)

var attendanceStatuses = map[AttendanceStatus]struct{}{
	AttendanceGoing:     {},
	AttendanceNotGoing:  {},
	AttendanceUndecided: {},
	AttendanceLate:      {},
}

// Room identifies a physically exclusive space in the house.
type Room string

const (
	RoomWC1        Room = "WC1"
	RoomWC2        Room = "WC2"
	RoomKitchen    Room = "KITCHEN"
	RoomLivingRoom Room = "LIVING_ROOM"
	RoomBedroom1   Room = "BEDROOM_1"
	RoomBedroom2   Room = "BEDROOM_2"
	RoomBedroom3   Room = "BEDROOM_3"
	RoomBedroom4   Room = "BEDROOM_4"
	RoomBedroom5   Room = "BEDROOM_5"
	RoomBalcony    Room = "BALCONY"
)

var knownRooms = map[Room]struct{}{
	RoomWC1: {}, RoomWC2: {}, RoomKitchen: {}, RoomLivingRoom: {},
	RoomBedroom1: {}, RoomBedroom2: {}, RoomBedroom3: {}, RoomBedroom4: {},
	RoomBedroom5: {}, RoomBalcony: {},
}

// ReminderFlags tracks the five one-shot reminder milestones for a party. Each flag is
// set once the corresponding notification has been sent (or its window was missed).
type ReminderFlags struct {
	ThreeDay bool
	OneDay   bool
	OneHour  bool
	Started  bool
	Ended    bool
}

// GuestEntry is a party guest together with their attendance reply.
type GuestEntry struct {
	UserID    string
	Status    AttendanceStatus
	UpdatedAt time.Time
}

// Party represents a scheduled, room-bound occupancy window with host and guests.
type Party struct {
	ID          string
	HostID      string
	Name        string
	Description string
	Category    PartyCategory
	Status      PartyStatus
	Rooms       []Room
	Start       time.Time
	End         time.Time
	Guests      []GuestEntry
	Reminders   ReminderFlags
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsGuest reports whether the user appears in the guest list.
func (p Party) IsGuest(userID string) bool {
	for _, guest := range p.Guests {
		if guest.UserID == userID {
			return true
		}
	}
	return false
}

// Participants returns the host plus all guests whose attendance status is not
// NOT_GOING, deduplicated, in host-first order.
func (p Party) Participants() []string {
	ids := make([]string, 0, len(p.Guests)+1)
	seen := map[string]struct{}{p.HostID: {}}
	ids = append(ids, p.HostID)
	for _, guest := range p.Guests {
		if guest.Status == AttendanceNotGoing {
			continue
		}
		if _, ok := seen[guest.UserID]; ok {
			continue
		}
		seen[guest.UserID] = struct{}{}
		ids = append(ids, guest.UserID)
	}
	return ids
}

// User represents a household member account.
type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	Role          UserRole
	Muted         bool
	MultiDoorOpen bool
	PushIDs       []string
	Birthdate     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   UserRole
	Muted  bool
}

// HouseState carries the persisted process-wide switches.
type HouseState struct {
	MaintenanceActive   bool
	RegistrationBlocked bool
	UpdatedAt           time.Time
}

// LogType labels audit log entries.
type LogType string

const (
	LogTypeDoorOpen           LogType = "DOOR_OPEN"
	LogTypeDoorOpenFailed     LogType = "DOOR_OPEN_FAILED"
	LogTypeDoorOpenError      LogType = "DOOR_OPEN_ERROR"
	LogTypePartyCreated       LogType = "PARTY_CREATED"
	LogTypePartyDeleted       LogType = "PARTY_DELETED"
	LogTypePartyStatusChanged LogType = "PARTY_STATUS_CHANGED"
	LogTypePartyRescheduled   LogType = "PARTY_RESCHEDULED"
	LogTypeGuestStatusChanged LogType = "GUEST_STATUS_CHANGED"
	LogTypeGuestAdded         LogType = "GUEST_ADDED"
	LogTypeGuestRemoved       LogType = "GUEST_REMOVED"
	LogTypeMaintenance        LogType = "MAINTENANCE"
	LogTypeRegistration       LogType = "REGISTRATION"
	LogTypeUserRegistered     LogType = "USER_REGISTERED"
	LogTypeUserModeration     LogType = "USER_MODERATION"
)

// LogEntry is an append-only audit record.
type LogEntry struct {
	ID        string
	UserID    string
	Message   string
	Type      LogType
	CreatedAt time.Time
}

// NotificationCategory classifies notifications for clients.
type NotificationCategory string

const (
	NotificationSystem NotificationCategory = "SYSTEM"
	NotificationParty  NotificationCategory = "PARTY"
	NotificationDoor   NotificationCategory = "DOORBELL"
)

// Notification is a message fanned out to one or more recipients.
type Notification struct {
	Title        string
	Message      string
	RecipientIDs []string
	Category     NotificationCategory
	PartyID      string
}

// StoredNotification is a delivered notification as kept for the dashboard, one row
// per recipient.
type StoredNotification struct {
	ID          string
	RecipientID string
	Title       string
	Message     string
	Category    NotificationCategory
	PartyID     string
	Read        bool
	CreatedAt   time.Time
}

// PartyInput captures caller-provided party fields.
type PartyInput struct {
	Name        string
	Description string
	Category    PartyCategory
	Rooms       []Room
	Start       time.Time
	End         time.Time
	GuestIDs    []string
}

// CreatePartyParams wraps the data required to create a party.
type CreatePartyParams struct {
	Principal Principal
	Input     PartyInput
}

// UpdatePartyStatusParams wraps a manual status override request.
type UpdatePartyStatusParams struct {
	Principal Principal
	PartyID   string
	Status    PartyStatus
}

// UpdateGuestStatusParams wraps an attendance update. TargetUserID may be empty, in
// which case the requester updates their own reply.
type UpdateGuestStatusParams struct {
	Principal    Principal
	PartyID      string
	TargetUserID string
	Status       AttendanceStatus
}

// GuestMembershipParams wraps adding or removing a guest.
type GuestMembershipParams struct {
	Principal   Principal
	PartyID     string
	GuestUserID string
}

// ReschedulePartyParams wraps a schedule change request.
type ReschedulePartyParams struct {
	Principal Principal
	PartyID   string
	Start     time.Time
	End       time.Time
}

// RegisterUserParams wraps a registration request.
type RegisterUserParams struct {
	Username  string
	Email     string
	Password  string
	Role      UserRole
	Birthdate *time.Time
}

// DoorStage identifies one of the two physical locks.
type DoorStage string

const (
	StageOuter DoorStage = "outer"
	StageInner DoorStage = "inner"
)

// StageOutcome is the per-stage result of a door actuation.
type StageOutcome string

const (
	OutcomeSuccess StageOutcome = "SUCCESS"
	OutcomeFailure StageOutcome = "FAILURE"
	OutcomeTimeout StageOutcome = "TIMEOUT"
)

// DoorResult reports the outcome of a door-open attempt per stage. Inner is only
// meaningful when InnerAttempted is true.
type DoorResult struct {
	Outer          StageOutcome
	Inner          StageOutcome
	InnerAttempted bool
}

// OpenDoorParams wraps a door-open attempt. Latitude and Longitude are optional and
// only consulted for the inner-door decision.
type OpenDoorParams struct {
	Principal Principal
	Latitude  *float64
	Longitude *float64
}
