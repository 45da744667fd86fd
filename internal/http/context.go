package http

import (
	"context"

	"github.com/example/house-doorbell/internal/application"
)

type contextKey string

const (
	principalContextKey      contextKey = "principal"
	partyIDContextKey        contextKey = "party_id"
	userIDContextKey         contextKey = "user_id"
	notificationIDContextKey contextKey = "notification_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithPartyID injects the party identifier resolved from the request path.
func ContextWithPartyID(ctx context.Context, partyID string) context.Context {
	return context.WithValue(ctx, partyIDContextKey, partyID)
}

// PartyIDFromContext extracts a party identifier previously associated with the context.
func PartyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(partyIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the target user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithNotificationID injects the notification identifier resolved from the request path.
func ContextWithNotificationID(ctx context.Context, notificationID string) context.Context {
	return context.WithValue(ctx, notificationIDContextKey, notificationID)
}

// NotificationIDFromContext extracts a notification identifier previously associated with the context.
func NotificationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(notificationIDContextKey).(string)
	return id, ok
}
