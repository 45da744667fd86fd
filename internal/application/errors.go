package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/house-doorbell/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrMuted is returned when a muted user attempts a restricted mutation.
	ErrMuted = errors.New("application: user is muted")
	// ErrRegistrationBlocked is returned while new registrations are switched off.
	ErrRegistrationBlocked = errors.New("application: registration blocked")
	// ErrInvalidCredentials is returned when a username or password does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports bookings that overlap the requested rooms and interval.
type ConflictError struct {
	PartyIDs []string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	return fmt.Sprintf("conflicting parties in the selected rooms: %s", strings.Join(c.PartyIDs, ", "))
}

// DenyReason is the machine-checkable cause of a door-access denial.
type DenyReason string

const (
	DenyRateLimited DenyReason = "rate_limited"
	DenyMuted       DenyReason = "muted"
	DenyMaintenance DenyReason = "maintenance"
	DenyNotInvited  DenyReason = "not_invited"
)

// AccessDeniedError reports a door-access denial with its reason tag.
type AccessDeniedError struct {
	Reason DenyReason
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	switch e.Reason {
	case DenyRateLimited:
		return "too many door opens in the last 10 seconds"
	case DenyMuted:
		return "you are muted and cannot open the door"
	case DenyMaintenance:
		return "door access is disabled during maintenance"
	case DenyNotInvited:
		return "you are not invited to any ongoing party"
	default:
		return "door access denied"
	}
}

// mapRepoError converts persistence sentinels into application sentinels.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return err
	}
}
