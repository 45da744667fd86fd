// Package testfixtures provides deterministic clocks, identifier generators and
// fixture builders shared by application and persistence tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

var (
	userCounter  uint64
	partyCounter uint64
)

var referenceTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic member account that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	Role          application.UserRole
	Muted         bool
	MultiDoorOpen bool
	PushIDs       []string
	Birthdate     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Username:     fmt.Sprintf("member%03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         application.RoleHouser,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role application.UserRole) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserMuted sets the muted flag on the generated fixture.
func WithUserMuted(muted bool) UserOption {
	return func(f *UserFixture) {
		f.Muted = muted
	}
}

// WithMultiDoorOpen sets the two-stage door preference on the fixture.
func WithMultiDoorOpen(enabled bool) UserOption {
	return func(f *UserFixture) {
		f.MultiDoorOpen = enabled
	}
}

// WithPushIDs sets the registered push tokens on the fixture.
func WithPushIDs(ids ...string) UserOption {
	return func(f *UserFixture) {
		f.PushIDs = append([]string(nil), ids...)
	}
}

// WithBirthdate sets the birthdate on the fixture.
func WithBirthdate(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.Birthdate = &t
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:            f.ID,
		Username:      f.Username,
		Email:         f.Email,
		PasswordHash:  f.PasswordHash,
		Role:          f.Role,
		Muted:         f.Muted,
		MultiDoorOpen: f.MultiDoorOpen,
		PushIDs:       append([]string(nil), f.PushIDs...),
		Birthdate:     f.Birthdate,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Principal returns the fixture as the acting principal.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Role: f.Role, Muted: f.Muted}
}

// ----------------------------- Party fixtures -----------------------------

// PartyFixture represents a deterministic party record.
type PartyFixture struct {
	ID          string
	HostID      string
	Name        string
	Description string
	Category    application.PartyCategory
	Status      application.PartyStatus
	Rooms       []application.Room
	Start       time.Time
	End         time.Time
	Guests      []application.GuestEntry
	Reminders   application.ReminderFlags
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PartyOption configures the generated party fixture.
type PartyOption func(*PartyFixture)

// NewPartyFixture returns a deterministic party fixture with optional overrides.
// The default party starts one day after the reference time and lasts two hours.
func NewPartyFixture(opts ...PartyOption) PartyFixture {
	idx := atomic.AddUint64(&partyCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := PartyFixture{
		ID:        fmt.Sprintf("party-%03d", idx),
		HostID:    "user-001",
		Name:      fmt.Sprintf("Party %03d", idx),
		Category:  application.CategoryHouseParty,
		Status:    application.StatusScheduled,
		Rooms:     []application.Room{application.RoomLivingRoom},
		Start:     referenceTime.Add(24 * time.Hour),
		End:       referenceTime.Add(26 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPartyID overrides the generated party ID.
func WithPartyID(id string) PartyOption {
	return func(f *PartyFixture) {
		f.ID = id
	}
}

// WithPartyHost sets the hosting user.
func WithPartyHost(hostID string) PartyOption {
	return func(f *PartyFixture) {
		f.HostID = hostID
	}
}

// WithPartyName overrides the generated name.
func WithPartyName(name string) PartyOption {
	return func(f *PartyFixture) {
		f.Name = name
	}
}

// WithPartyCategory sets the category.
func WithPartyCategory(category application.PartyCategory) PartyOption {
	return func(f *PartyFixture) {
		f.Category = category
	}
}

// WithPartyStatus sets the lifecycle status.
func WithPartyStatus(status application.PartyStatus) PartyOption {
	return func(f *PartyFixture) {
		f.Status = status
	}
}

// WithPartyRooms sets the claimed rooms.
func WithPartyRooms(rooms ...application.Room) PartyOption {
	return func(f *PartyFixture) {
		f.Rooms = append([]application.Room(nil), rooms...)
	}
}

// WithPartyWindow sets the start and end instants.
func WithPartyWindow(start, end time.Time) PartyOption {
	return func(f *PartyFixture) {
		f.Start = start
		f.End = end
	}
}

// WithPartyGuest appends a guest entry with the given attendance reply.
func WithPartyGuest(userID string, status application.AttendanceStatus) PartyOption {
	return func(f *PartyFixture) {
		f.Guests = append(f.Guests, application.GuestEntry{
			UserID:    userID,
			Status:    status,
			UpdatedAt: f.CreatedAt,
		})
	}
}

// WithReminderFlags sets the one-shot reminder milestones.
func WithReminderFlags(flags application.ReminderFlags) PartyOption {
	return func(f *PartyFixture) {
		f.Reminders = flags
	}
}

// Application returns the fixture as an application.Party value.
func (f PartyFixture) Application() application.Party {
	return application.Party{
		ID:          f.ID,
		HostID:      f.HostID,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Status:      f.Status,
		Rooms:       append([]application.Room(nil), f.Rooms...),
		Start:       f.Start,
		End:         f.End,
		Guests:      append([]application.GuestEntry(nil), f.Guests...),
		Reminders:   f.Reminders,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
