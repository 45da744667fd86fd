package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/house-doorbell/internal/occupancy"
)

const (
	minPartyDuration = 20 * time.Minute
	maxPartyDuration = 24 * time.Hour
	maxPartyNameLen  = 100
)

// PartyService orchestrates validation, conflict detection, and persistence for
// parties and their guest lists.
type PartyService struct {
	parties       PartyRepository
	users         UserRepository
	logs          LogRepository
	notifications *NotificationService
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger

	// writeMu serializes the conflict check with the write that depends on it, so
	// two concurrent bookings cannot both pass the check and both land.
	writeMu sync.Mutex
}

// NewPartyService wires dependencies for party operations.
func NewPartyService(parties PartyRepository, users UserRepository, logs LogRepository, notifications *NotificationService, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PartyService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PartyService{
		parties:       parties,
		users:         users,
		logs:          logs,
		notifications: notifications,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// CreateParty validates the request, rejects room conflicts, and persists the party
// with all guests starting as UNDECIDED.
func (s *PartyService) CreateParty(ctx context.Context, params CreatePartyParams) (Party, error) {
	if s == nil {
		return Party{}, fmt.Errorf("PartyService is nil")
	}
	principal := params.Principal
	if !principal.Role.can().hostParties {
		return Party{}, ErrUnauthorized
	}
	if principal.Muted && !principal.Role.can().bypassMute {
		return Party{}, ErrMuted
	}

	now := s.now()
	input := params.Input

	vErr := &ValidationError{}
	validatePartyCore(input, now, vErr)
	rooms := normalizeRooms(input.Rooms, vErr)
	guestIDs := uniqueStrings(input.GuestIDs)
	for _, id := range guestIDs {
		if id == principal.UserID {
			vErr.add("guests", "the host is automatically part of the party")
			break
		}
	}
	if vErr.HasErrors() {
		return Party{}, vErr
	}

	if err := s.ensureGuestsExist(ctx, guestIDs); err != nil {
		return Party{}, err
	}

	party := Party{
		ID:          s.idGenerator(),
		HostID:      principal.UserID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Status:      StatusScheduled,
		Rooms:       rooms,
		Start:       input.Start,
		End:         input.End,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, id := range guestIDs {
		party.Guests = append(party.Guests, GuestEntry{UserID: id, Status: AttendanceUndecided, UpdatedAt: now})
	}

	s.writeMu.Lock()
	err := s.ensureNoConflicts(ctx, rooms, input.Start, input.End, "")
	if err == nil {
		err = mapRepoError(s.parties.CreateParty(ctx, party))
	}
	s.writeMu.Unlock()
	if err != nil {
		return Party{}, err
	}

	s.audit(ctx, principal.UserID, LogTypePartyCreated,
		fmt.Sprintf("created party %q (%s)", party.Name, party.Category))
	s.notifications.PartyInvitation(ctx, party, guestIDs)

	return party, nil
}

// GetParty returns a single party with its status freshly derived, subject to the
// requester's visibility rules.
func (s *PartyService) GetParty(ctx context.Context, principal Principal, partyID string) (Party, error) {
	if s == nil {
		return Party{}, fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, partyID)
	if err != nil {
		return Party{}, mapRepoError(err)
	}

	now := s.now()
	if err := refreshStatus(ctx, s.parties, &party, now); err != nil {
		return Party{}, err
	}

	if !s.canSee(principal, party, now) {
		return Party{}, ErrUnauthorized
	}
	return party, nil
}

// ListParties enumerates the parties visible to the requester, refreshing derived
// statuses along the way.
func (s *PartyService) ListParties(ctx context.Context, principal Principal) ([]Party, error) {
	if s == nil {
		return nil, fmt.Errorf("PartyService is nil")
	}
	parties, err := s.parties.ListParties(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	now := s.now()
	visible := make([]Party, 0, len(parties))
	for i := range parties {
		if err := refreshStatus(ctx, s.parties, &parties[i], now); err != nil {
			return nil, err
		}
		if s.canSee(principal, parties[i], now) {
			visible = append(visible, parties[i])
		}
	}
	if len(visible) == 0 {
		return nil, nil
	}
	return visible, nil
}

func (s *PartyService) canSee(principal Principal, party Party, now time.Time) bool {
	if principal.Role.can().seeAllParties {
		return true
	}
	if !party.End.After(now) {
		return false
	}
	if principal.Role == RoleGuest {
		return party.HostID == principal.UserID || party.IsGuest(principal.UserID)
	}
	return true
}

// DeleteParty removes a party and its guest rows. Only the host or the privileged
// role may delete.
func (s *PartyService) DeleteParty(ctx context.Context, principal Principal, partyID string) error {
	if s == nil {
		return fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, partyID)
	if err != nil {
		return mapRepoError(err)
	}
	if party.HostID != principal.UserID && !principal.Role.can().manageHouse {
		return ErrUnauthorized
	}

	if err := mapRepoError(s.parties.DeleteParty(ctx, partyID)); err != nil {
		return err
	}

	s.audit(ctx, principal.UserID, LogTypePartyDeleted,
		fmt.Sprintf("deleted party %q", party.Name))
	return nil
}

// UpdatePartyStatus applies a manual status override. A cancelled party can never be
// revived; automatic derivation resumes only for non-terminal values.
func (s *PartyService) UpdatePartyStatus(ctx context.Context, params UpdatePartyStatusParams) (Party, error) {
	if s == nil {
		return Party{}, fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, params.PartyID)
	if err != nil {
		return Party{}, mapRepoError(err)
	}

	principal := params.Principal
	isHost := party.HostID == principal.UserID
	if !isHost && !principal.Role.can().manageHouse {
		return Party{}, ErrUnauthorized
	}
	if isHost && principal.Muted && !principal.Role.can().bypassMute {
		return Party{}, ErrMuted
	}

	vErr := &ValidationError{}
	switch params.Status {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
	default:
		vErr.add("status", "unknown party status")
	}
	if party.Status == StatusCancelled {
		vErr.add("status", "a cancelled party cannot be changed")
	}
	if vErr.HasErrors() {
		return Party{}, vErr
	}

	oldStatus := party.Status
	party.Status = params.Status
	party.UpdatedAt = s.now()
	if err := mapRepoError(s.parties.UpdateParty(ctx, party)); err != nil {
		return Party{}, err
	}

	s.audit(ctx, principal.UserID, LogTypePartyStatusChanged,
		fmt.Sprintf("changed party %q status from %s to %s", party.Name, oldStatus, params.Status))
	s.notifications.PartyStatusChanged(ctx, party, params.Status, s.hostAndGuestIDs(party))

	return party, nil
}

// UpdateGuestStatus records an attendance reply. The guest themselves, the host, or
// the privileged role may update it.
func (s *PartyService) UpdateGuestStatus(ctx context.Context, params UpdateGuestStatusParams) error {
	if s == nil {
		return fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, params.PartyID)
	if err != nil {
		return mapRepoError(err)
	}

	principal := params.Principal
	targetID := params.TargetUserID
	if targetID == "" {
		targetID = principal.UserID
	}

	isSelf := targetID == principal.UserID
	isHost := party.HostID == principal.UserID
	if !isSelf && !isHost && !principal.Role.can().manageHouse {
		return ErrUnauthorized
	}

	if _, ok := attendanceStatuses[params.Status]; !ok {
		vErr := &ValidationError{}
		vErr.add("status", "unknown attendance status")
		return vErr
	}
	if !party.IsGuest(targetID) {
		vErr := &ValidationError{}
		vErr.add("guest", "user is not a guest of this party")
		return vErr
	}

	entry := GuestEntry{UserID: targetID, Status: params.Status, UpdatedAt: s.now()}
	if err := mapRepoError(s.parties.UpsertGuest(ctx, party.ID, entry)); err != nil {
		return err
	}

	s.audit(ctx, principal.UserID, LogTypeGuestStatusChanged,
		fmt.Sprintf("set guest %s to %s for party %q", targetID, params.Status, party.Name))
	return nil
}

// AddGuest invites another member to the party.
func (s *PartyService) AddGuest(ctx context.Context, params GuestMembershipParams) error {
	if s == nil {
		return fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, params.PartyID)
	if err != nil {
		return mapRepoError(err)
	}

	principal := params.Principal
	isHost := party.HostID == principal.UserID
	if !isHost && !principal.Role.can().manageHouse {
		return ErrUnauthorized
	}
	if isHost && principal.Muted && !principal.Role.can().bypassMute {
		return ErrMuted
	}

	if params.GuestUserID == party.HostID {
		vErr := &ValidationError{}
		vErr.add("guest", "the host is automatically part of the party")
		return vErr
	}
	if party.IsGuest(params.GuestUserID) {
		return ErrAlreadyExists
	}
	if _, err := s.users.GetUser(ctx, params.GuestUserID); err != nil {
		return mapRepoError(err)
	}

	entry := GuestEntry{UserID: params.GuestUserID, Status: AttendanceUndecided, UpdatedAt: s.now()}
	if err := mapRepoError(s.parties.UpsertGuest(ctx, party.ID, entry)); err != nil {
		return err
	}

	s.audit(ctx, principal.UserID, LogTypeGuestAdded,
		fmt.Sprintf("added guest %s to party %q", params.GuestUserID, party.Name))
	s.notifications.PartyInvitation(ctx, party, []string{params.GuestUserID})
	return nil
}

// RemoveGuest withdraws a member's invitation.
func (s *PartyService) RemoveGuest(ctx context.Context, params GuestMembershipParams) error {
	if s == nil {
		return fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, params.PartyID)
	if err != nil {
		return mapRepoError(err)
	}

	principal := params.Principal
	isHost := party.HostID == principal.UserID
	if !isHost && !principal.Role.can().manageHouse {
		return ErrUnauthorized
	}
	if isHost && principal.Muted && !principal.Role.can().bypassMute {
		return ErrMuted
	}

	if params.GuestUserID == party.HostID {
		vErr := &ValidationError{}
		vErr.add("guest", "cannot remove the host from the party")
		return vErr
	}
	if !party.IsGuest(params.GuestUserID) {
		vErr := &ValidationError{}
		vErr.add("guest", "user is not a guest of this party")
		return vErr
	}

	if err := mapRepoError(s.parties.RemoveGuest(ctx, party.ID, params.GuestUserID)); err != nil {
		return err
	}

	s.audit(ctx, principal.UserID, LogTypeGuestRemoved,
		fmt.Sprintf("removed guest %s from party %q", params.GuestUserID, party.Name))
	return nil
}

// RescheduleParty moves a party to a new window. Reminder flags whose threshold lies
// in the future again are reset so a postponed party still receives its reminders.
func (s *PartyService) RescheduleParty(ctx context.Context, params ReschedulePartyParams) (Party, error) {
	if s == nil {
		return Party{}, fmt.Errorf("PartyService is nil")
	}
	party, err := s.parties.GetParty(ctx, params.PartyID)
	if err != nil {
		return Party{}, mapRepoError(err)
	}

	principal := params.Principal
	isHost := party.HostID == principal.UserID
	if !isHost && !principal.Role.can().manageHouse {
		return Party{}, ErrUnauthorized
	}
	if isHost && principal.Muted && !principal.Role.can().bypassMute {
		return Party{}, ErrMuted
	}

	now := s.now()
	vErr := &ValidationError{}
	validateWindow(params.Start, params.End, now, vErr)
	if vErr.HasErrors() {
		return Party{}, vErr
	}

	party.Start = params.Start
	party.End = params.End
	party.Reminders = resetReminderFlags(party, now)
	party.UpdatedAt = now

	s.writeMu.Lock()
	err = s.ensureNoConflicts(ctx, party.Rooms, params.Start, params.End, party.ID)
	if err == nil {
		err = mapRepoError(s.parties.UpdateParty(ctx, party))
	}
	s.writeMu.Unlock()
	if err != nil {
		return Party{}, err
	}

	s.audit(ctx, principal.UserID, LogTypePartyRescheduled,
		fmt.Sprintf("rescheduled party %q to %s", party.Name, party.Start.Format(inviteTimeLayout)))
	s.notifications.PartyRescheduled(ctx, party, s.hostAndGuestIDs(party))

	return party, nil
}

// resetReminderFlags clears every one-shot flag whose threshold moved back into the
// future; flags whose threshold remains in the past stay set.
func resetReminderFlags(party Party, now time.Time) ReminderFlags {
	flags := party.Reminders
	if party.Start.After(now.Add(3 * 24 * time.Hour)) {
		flags.ThreeDay = false
	}
	if party.Start.After(now.Add(24 * time.Hour)) {
		flags.OneDay = false
	}
	if party.Start.After(now.Add(time.Hour)) {
		flags.OneHour = false
	}
	if party.Start.After(now) {
		flags.Started = false
	}
	if party.End.After(now) {
		flags.Ended = false
	}
	return flags
}

func (s *PartyService) ensureNoConflicts(ctx context.Context, rooms []Room, start, end time.Time, excludeID string) error {
	candidates, err := s.parties.ListConflictingParties(ctx, rooms, start, end, excludeID)
	if err != nil {
		return mapRepoError(err)
	}
	if len(candidates) == 0 {
		return nil
	}

	// The repository query is the broad phase; confirm with the detector so the
	// half-open rule and cancellation handling stay in one place.
	existing := make([]occupancy.Booking, 0, len(candidates))
	for _, p := range candidates {
		existing = append(existing, toBooking(p))
	}
	candidate := occupancy.Booking{ID: excludeID, Rooms: roomStrings(rooms), Start: start, End: end}

	conflicts := occupancy.DetectConflicts(existing, candidate)
	if len(conflicts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.WithBookingID)
	}
	return &ConflictError{PartyIDs: ids}
}

func toBooking(p Party) occupancy.Booking {
	return occupancy.Booking{
		ID:        p.ID,
		Rooms:     roomStrings(p.Rooms),
		Start:     p.Start,
		End:       p.End,
		Cancelled: p.Status == StatusCancelled,
	}
}

func roomStrings(rooms []Room) []string {
	out := make([]string, len(rooms))
	for i, room := range rooms {
		out[i] = string(room)
	}
	return out
}

func (s *PartyService) ensureGuestsExist(ctx context.Context, ids []string) error {
	missing := make([]string, 0)
	for _, id := range ids {
		if _, err := s.users.GetUser(ctx, id); err != nil {
			if errors.Is(mapRepoError(err), ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return err
		}
	}
	if len(missing) == 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("guests", fmt.Sprintf("unknown user ids: %s", strings.Join(missing, ", ")))
	return vErr
}

func (s *PartyService) hostAndGuestIDs(party Party) []string {
	ids := []string{party.HostID}
	for _, guest := range party.Guests {
		if guest.UserID != party.HostID {
			ids = append(ids, guest.UserID)
		}
	}
	return ids
}

func (s *PartyService) audit(ctx context.Context, userID string, logType LogType, message string) {
	entry := LogEntry{
		ID:        s.idGenerator(),
		UserID:    userID,
		Message:   message,
		Type:      logType,
		CreatedAt: s.now(),
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "parties", "audit").
			Warn("failed to append audit log", "log_type", logType, "error", err)
	}
}

func validatePartyCore(input PartyInput, now time.Time, vErr *ValidationError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "party name is required")
	} else if len(name) > maxPartyNameLen {
		vErr.add("name", fmt.Sprintf("party name cannot exceed %d characters", maxPartyNameLen))
	}

	if _, ok := partyCategories[input.Category]; !ok {
		vErr.add("category", "unknown party category")
	}

	validateWindow(input.Start, input.End, now, vErr)
}

func validateWindow(start, end, now time.Time, vErr *ValidationError) {
	if start.IsZero() || end.IsZero() {
		vErr.add("time", "start and end must be provided")
		return
	}
	if start.Before(now) {
		vErr.add("start", "party start must be in the future")
	}
	if !end.After(start) {
		vErr.add("time", "end must be after start")
		return
	}
	duration := end.Sub(start)
	if duration < minPartyDuration {
		vErr.add("time", "party duration must be at least 20 minutes")
	}
	if duration > maxPartyDuration {
		vErr.add("time", "party duration cannot exceed 24 hours")
	}
}

func normalizeRooms(rooms []Room, vErr *ValidationError) []Room {
	if len(rooms) == 0 {
		vErr.add("rooms", "a party must have at least one room")
		return nil
	}
	seen := make(map[Room]struct{}, len(rooms))
	out := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if _, ok := knownRooms[room]; !ok {
			vErr.add("rooms", fmt.Sprintf("unknown room %q", room))
			continue
		}
		if _, dup := seen[room]; dup {
			continue
		}
		seen[room] = struct{}{}
		out = append(out, room)
	}
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
