package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

// UserService orchestrates registration, authentication, and member moderation.
type UserService struct {
	users         UserRepository
	houseState    HouseStateRepository
	logs          LogRepository
	notifications *NotificationService
	hashParams    Argon2idParams
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, houseState HouseStateRepository, logs LogRepository, notifications *NotificationService, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:         users,
		houseState:    houseState,
		logs:          logs,
		notifications: notifications,
		hashParams:    DefaultArgon2idParams,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// Register creates a new member account unless registrations are blocked. New
// accounts default to the GUEST role.
func (s *UserService) Register(ctx context.Context, params RegisterUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}

	state, err := s.houseState.GetHouseState(ctx)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	if state.RegistrationBlocked {
		return User{}, ErrRegistrationBlocked
	}

	normalized := normalizeRegistration(params)
	if vErr := validateRegistration(normalized); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := CreatePasswordHash(normalized.Password, s.hashParams)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user := User{
		ID:           s.idGenerator(),
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: hash,
		Role:         normalized.Role,
		Birthdate:    normalized.Birthdate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := mapRepoError(s.users.CreateUser(ctx, user)); err != nil {
		return User{}, err
	}

	s.audit(ctx, user.ID, LogTypeUserRegistered,
		fmt.Sprintf("user %s registered with role %s", user.Username, user.Role))
	s.notifications.Welcome(ctx, user)

	return user, nil
}

// Authenticate checks the credentials and returns the matching user. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, mapRepoError(err)
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns an account. Members can read themselves; reading others requires
// the privileged role.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if userID != principal.UserID && !principal.Role.can().manageHouse {
		return User{}, ErrUnauthorized
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// ListUsers returns all accounts ordered by username for the privileged role.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.Role.can().manageHouse {
		return nil, ErrUnauthorized
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]User, len(users))
	copy(out, users)
	sort.Slice(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Username, out[j].Username) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Username) < strings.ToLower(out[j].Username)
	})
	return out, nil
}

// SetMuted toggles the mute flag on a member. Privileged role only; a knowledger
// cannot be muted.
func (s *UserService) SetMuted(ctx context.Context, principal Principal, targetID string, muted bool) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.Role.can().manageHouse {
		return User{}, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	if muted && user.Role.can().bypassMute {
		vErr := &ValidationError{}
		vErr.add("role", "this role cannot be muted")
		return User{}, vErr
	}

	user.Muted = muted
	user.UpdatedAt = s.now()
	if err := mapRepoError(s.users.UpdateUser(ctx, user)); err != nil {
		return User{}, err
	}

	verb := "unmuted"
	if muted {
		verb = "muted"
	}
	s.audit(ctx, principal.UserID, LogTypeUserModeration,
		fmt.Sprintf("%s user %s", verb, user.Username))
	return user, nil
}

// SetMultiDoorOpen toggles the two-stage door preference. Members may change their
// own flag; the privileged role may change anyone's.
func (s *UserService) SetMultiDoorOpen(ctx context.Context, principal Principal, targetID string, enabled bool) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if targetID != principal.UserID && !principal.Role.can().manageHouse {
		return User{}, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	user.MultiDoorOpen = enabled
	user.UpdatedAt = s.now()
	if err := mapRepoError(s.users.UpdateUser(ctx, user)); err != nil {
		return User{}, err
	}
	return user, nil
}

// RegisterPushID attaches a push delivery token to the caller's own account.
// Registering an already known token is a no-op.
func (s *UserService) RegisterPushID(ctx context.Context, principal Principal, pushID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	pushID = strings.TrimSpace(pushID)
	if pushID == "" {
		vErr := &ValidationError{}
		vErr.add("push_id", "push id is required")
		return vErr
	}

	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return mapRepoError(err)
	}
	for _, existing := range user.PushIDs {
		if existing == pushID {
			return nil
		}
	}

	user.PushIDs = append(user.PushIDs, pushID)
	user.UpdatedAt = s.now()
	return mapRepoError(s.users.UpdateUser(ctx, user))
}

func (s *UserService) audit(ctx context.Context, userID string, logType LogType, message string) {
	entry := LogEntry{
		ID:        s.idGenerator(),
		UserID:    userID,
		Message:   message,
		Type:      logType,
		CreatedAt: s.now(),
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		serviceLogger(ctx, s.logger, "users", "audit").
			Warn("failed to append audit log", "log_type", logType, "error", err)
	}
}

func normalizeRegistration(params RegisterUserParams) RegisterUserParams {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.Role == "" {
		params.Role = RoleGuest
	}
	return params
}

func validateRegistration(params RegisterUserParams) *ValidationError {
	vErr := &ValidationError{}

	if params.Username == "" {
		vErr.add("username", "username is required")
	} else if len(params.Username) < minUsernameLen || len(params.Username) > maxUsernameLen {
		vErr.add("username", fmt.Sprintf("username must be between %d and %d characters", minUsernameLen, maxUsernameLen))
	}

	if params.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(params.Email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if len(params.Password) < minPasswordLen {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	if !params.Role.Known() {
		vErr.add("role", "unknown role")
	}

	return vErr
}
