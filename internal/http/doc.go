// Package http provides HTTP handlers and middleware for the doorbell API.
//
// All routes except POST /users require HTTP basic auth; the RequireUser middleware
// resolves the credentials to a principal that handlers read from the request context.
//
// The router exposes the following endpoints:
//   - POST /users: registers an account. GET /users lists accounts (knowledger only).
//   - GET /users/me, GET /users/{id}: account lookups. PUT /users/{id}/mute and
//     PUT /users/{id}/multi-door toggle moderation and the two-stage door preference.
//     POST /users/me/push-ids registers a push token for the caller.
//   - GET /parties, POST /parties, GET /parties/{id}, DELETE /parties/{id}: party
//     management exchanging the `partyDTO` payload defined in party_handler.go.
//     PUT /parties/{id}/status, PUT /parties/{id}/schedule and
//     PUT /parties/{id}/attendance change lifecycle state, time window and guest
//     replies. POST /parties/{id}/guests and DELETE /parties/{id}/guests/{userID}
//     manage the guest list.
//   - POST /door/open: runs the door-access gate and the unlock handshake. Body may
//     carry {"latitude","longitude"} for the inner-door decision. A 503 response
//     means access was granted but the outer lock failed or timed out.
//   - GET /house, PUT /house/maintenance, PUT /house/registration: house-wide
//     switches. GET /logs returns the audit trail (knowledger only).
//   - GET /notifications, POST /notifications/{id}/read: the caller's dashboard feed.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
