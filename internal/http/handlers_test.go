package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

var handlerBase = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func withPrincipal(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(recorder.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return out
}

type stubPartyService struct {
	party       application.Party
	parties     []application.Party
	err         error
	lastCreate  application.CreatePartyParams
	lastGuest   application.GuestMembershipParams
	lastStatus  application.UpdatePartyStatusParams
	lastReplies application.UpdateGuestStatusParams
}

func (s *stubPartyService) CreateParty(_ context.Context, params application.CreatePartyParams) (application.Party, error) {
	s.lastCreate = params
	return s.party, s.err
}

func (s *stubPartyService) GetParty(_ context.Context, _ application.Principal, _ string) (application.Party, error) {
	return s.party, s.err
}

func (s *stubPartyService) ListParties(_ context.Context, _ application.Principal) ([]application.Party, error) {
	return s.parties, s.err
}

func (s *stubPartyService) DeleteParty(_ context.Context, _ application.Principal, _ string) error {
	return s.err
}

func (s *stubPartyService) UpdatePartyStatus(_ context.Context, params application.UpdatePartyStatusParams) (application.Party, error) {
	s.lastStatus = params
	return s.party, s.err
}

func (s *stubPartyService) UpdateGuestStatus(_ context.Context, params application.UpdateGuestStatusParams) error {
	s.lastReplies = params
	return s.err
}

func (s *stubPartyService) AddGuest(_ context.Context, params application.GuestMembershipParams) error {
	s.lastGuest = params
	return s.err
}

func (s *stubPartyService) RemoveGuest(_ context.Context, params application.GuestMembershipParams) error {
	s.lastGuest = params
	return s.err
}

func (s *stubPartyService) RescheduleParty(_ context.Context, _ application.ReschedulePartyParams) (application.Party, error) {
	return s.party, s.err
}

func partyRouter(service *stubPartyService, principal application.Principal) http.Handler {
	return NewRouter(RouterConfig{
		Parties:    NewPartyHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
	})
}

func TestPartyHandlers(t *testing.T) {
	t.Parallel()

	houser := application.Principal{UserID: "u-host", Role: application.RoleHouser}
	sample := application.Party{
		ID:       "p-1",
		HostID:   "u-host",
		Name:     "Dinner",
		Category: application.CategoryDinner,
		Status:   application.StatusScheduled,
		Rooms:    []application.Room{application.RoomKitchen},
		Start:    handlerBase.Add(24 * time.Hour),
		End:      handlerBase.Add(26 * time.Hour),
	}

	t.Run("create returns the created party", func(t *testing.T) {
		t.Parallel()

		service := &stubPartyService{party: sample}
		router := partyRouter(service, houser)

		body := `{"name":"Dinner","category":"dinner","rooms":["kitchen"],` +
			`"start":"2026-03-11T12:00:00Z","end":"2026-03-11T14:00:00Z","guest_ids":["u-g"]}`
		req := httptest.NewRequest(http.MethodPost, "/parties", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusCreated, recorder.Body)
		}
		if service.lastCreate.Principal != houser {
			t.Errorf("principal = %+v, want %+v", service.lastCreate.Principal, houser)
		}
		if got := service.lastCreate.Input.Category; got != application.CategoryDinner {
			t.Errorf("category = %q, want %q", got, application.CategoryDinner)
		}
		if got := service.lastCreate.Input.Rooms; len(got) != 1 || got[0] != application.RoomKitchen {
			t.Errorf("rooms = %v, want [KITCHEN]", got)
		}
		resp := decodeBody[partyResponse](t, recorder)
		if resp.Party.ID != "p-1" {
			t.Errorf("party id = %q, want p-1", resp.Party.ID)
		}
	})

	t.Run("validation failures map to 422 with field errors", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{}
		vErr.FieldErrors = map[string]string{"name": "name is required"}
		service := &stubPartyService{err: vErr}
		router := partyRouter(service, houser)

		req := httptest.NewRequest(http.MethodPost, "/parties", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnprocessableEntity)
		}
		resp := decodeBody[errorResponse](t, recorder)
		if resp.Errors["name"] != "name is required" {
			t.Errorf("errors = %v, want name entry", resp.Errors)
		}
	})

	t.Run("room conflicts map to 409 with the conflicting ids", func(t *testing.T) {
		t.Parallel()

		service := &stubPartyService{err: &application.ConflictError{PartyIDs: []string{"p-2"}}}
		router := partyRouter(service, houser)

		req := httptest.NewRequest(http.MethodPost, "/parties", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusConflict)
		}
		resp := decodeBody[errorResponse](t, recorder)
		if resp.ErrorCode != "ROOM_CONFLICT" {
			t.Errorf("error_code = %q, want ROOM_CONFLICT", resp.ErrorCode)
		}
		if len(resp.ConflictingPartyIDs) != 1 || resp.ConflictingPartyIDs[0] != "p-2" {
			t.Errorf("conflicting ids = %v, want [p-2]", resp.ConflictingPartyIDs)
		}
	})

	t.Run("authorization failures map to 403", func(t *testing.T) {
		t.Parallel()

		service := &stubPartyService{err: application.ErrUnauthorized}
		router := partyRouter(service, houser)

		req := httptest.NewRequest(http.MethodDelete, "/parties/p-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
		}
		resp := decodeBody[errorResponse](t, recorder)
		if resp.ErrorCode != "AUTH_FORBIDDEN" {
			t.Errorf("error_code = %q, want AUTH_FORBIDDEN", resp.ErrorCode)
		}
	})

	t.Run("unknown parties map to 404", func(t *testing.T) {
		t.Parallel()

		service := &stubPartyService{err: application.ErrNotFound}
		router := partyRouter(service, houser)

		req := httptest.NewRequest(http.MethodGet, "/parties/nope", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", recorder.Code, http.StatusNotFound)
		}
	})

	t.Run("guest removal resolves both path segments", func(t *testing.T) {
		t.Parallel()

		service := &stubPartyService{}
		router := partyRouter(service, houser)

		req := httptest.NewRequest(http.MethodDelete, "/parties/p-1/guests/u-g", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
		}
		if service.lastGuest.PartyID != "p-1" || service.lastGuest.GuestUserID != "u-g" {
			t.Errorf("guest params = %+v, want party p-1 and guest u-g", service.lastGuest)
		}
	})

	t.Run("attendance update passes the reply through", func(t *testing.T) {
		t.Parallel()

		service := &stubPartyService{}
		router := partyRouter(service, houser)

		req := httptest.NewRequest(http.MethodPut, "/parties/p-1/attendance", strings.NewReader(`{"status":"going"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
		}
		if service.lastReplies.Status != application.AttendanceGoing {
			t.Errorf("status = %q, want %q", service.lastReplies.Status, application.AttendanceGoing)
		}
		if service.lastReplies.TargetUserID != "" {
			t.Errorf("target = %q, want empty for self-update", service.lastReplies.TargetUserID)
		}
	})

	t.Run("unsupported methods return 405", func(t *testing.T) {
		t.Parallel()

		router := partyRouter(&stubPartyService{}, houser)

		req := httptest.NewRequest(http.MethodPatch, "/parties", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
		}
	})
}

type stubDoorService struct {
	result     application.DoorResult
	err        error
	lastParams application.OpenDoorParams
}

func (s *stubDoorService) OpenDoor(_ context.Context, params application.OpenDoorParams) (application.DoorResult, error) {
	s.lastParams = params
	return s.result, s.err
}

func TestDoorHandler(t *testing.T) {
	t.Parallel()

	houser := application.Principal{UserID: "u-1", Role: application.RoleHouser}

	doorRouter := func(service *stubDoorService) http.Handler {
		return NewRouter(RouterConfig{
			Door:       NewDoorHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(houser)},
		})
	}

	t.Run("successful open returns 200 with the stage results", func(t *testing.T) {
		t.Parallel()

		service := &stubDoorService{result: application.DoorResult{
			Outer:          application.OutcomeSuccess,
			Inner:          application.OutcomeSuccess,
			InnerAttempted: true,
		}}
		router := doorRouter(service)

		body := `{"latitude":52.3712,"longitude":4.8962}`
		req := httptest.NewRequest(http.MethodPost, "/door/open", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusOK, recorder.Body)
		}
		resp := decodeBody[doorResponse](t, recorder)
		if resp.Result.Outer != "SUCCESS" || resp.Result.Inner != "SUCCESS" {
			t.Errorf("result = %+v, want both stages SUCCESS", resp.Result)
		}
		if service.lastParams.Latitude == nil || *service.lastParams.Latitude != 52.3712 {
			t.Errorf("latitude = %v, want 52.3712", service.lastParams.Latitude)
		}
	})

	t.Run("empty body is accepted", func(t *testing.T) {
		t.Parallel()

		service := &stubDoorService{result: application.DoorResult{Outer: application.OutcomeSuccess}}
		router := doorRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/door/open", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		if service.lastParams.Latitude != nil {
			t.Errorf("latitude = %v, want nil", service.lastParams.Latitude)
		}
	})

	t.Run("outer lock timeout returns 503", func(t *testing.T) {
		t.Parallel()

		service := &stubDoorService{result: application.DoorResult{Outer: application.OutcomeTimeout}}
		router := doorRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/door/open", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusServiceUnavailable)
		}
		resp := decodeBody[doorResponse](t, recorder)
		if resp.Result.Outer != "TIMEOUT" {
			t.Errorf("outer = %q, want TIMEOUT", resp.Result.Outer)
		}
	})

	t.Run("access denial returns 403 with the reason", func(t *testing.T) {
		t.Parallel()

		service := &stubDoorService{err: &application.AccessDeniedError{Reason: application.DenyMaintenance}}
		router := doorRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/door/open", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
		}
		resp := decodeBody[errorResponse](t, recorder)
		if resp.Reason != "maintenance" {
			t.Errorf("reason = %q, want maintenance", resp.Reason)
		}
	})
}

type stubUserService struct {
	user     application.User
	users    []application.User
	err      error
	lastPush string
}

func (s *stubUserService) Register(_ context.Context, _ application.RegisterUserParams) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) GetUser(_ context.Context, _ application.Principal, _ string) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) ListUsers(_ context.Context, _ application.Principal) ([]application.User, error) {
	return s.users, s.err
}

func (s *stubUserService) SetMuted(_ context.Context, _ application.Principal, _ string, _ bool) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) SetMultiDoorOpen(_ context.Context, _ application.Principal, _ string, _ bool) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) RegisterPushID(_ context.Context, _ application.Principal, pushID string) error {
	s.lastPush = pushID
	return s.err
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	reject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	t.Run("registration bypasses authentication", func(t *testing.T) {
		t.Parallel()

		service := &stubUserService{user: application.User{ID: "u-1", Username: "alice", Role: application.RoleGuest}}
		router := NewRouter(RouterConfig{
			Users:        NewUserHandler(service, nil),
			Authenticate: reject,
		})

		body := `{"username":"alice","email":"alice@example.com","password":"longenough"}`
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusCreated, recorder.Body)
		}

		listReq := httptest.NewRequest(http.MethodGet, "/users", nil)
		listRecorder := httptest.NewRecorder()
		router.ServeHTTP(listRecorder, listReq)
		if listRecorder.Code != http.StatusUnauthorized {
			t.Errorf("list status = %d, want %d", listRecorder.Code, http.StatusUnauthorized)
		}
	})

	t.Run("registration while blocked maps to 403", func(t *testing.T) {
		t.Parallel()

		service := &stubUserService{err: application.ErrRegistrationBlocked}
		router := NewRouter(RouterConfig{Users: NewUserHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"username":"bob"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
		}
		resp := decodeBody[errorResponse](t, recorder)
		if resp.ErrorCode != "REGISTRATION_BLOCKED" {
			t.Errorf("error_code = %q, want REGISTRATION_BLOCKED", resp.ErrorCode)
		}
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Users: NewUserHandler(&stubUserService{}, nil)})

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
		}
	})

	t.Run("push token registration passes the token through", func(t *testing.T) {
		t.Parallel()

		service := &stubUserService{}
		router := NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(application.Principal{UserID: "u-1"})},
		})

		req := httptest.NewRequest(http.MethodPost, "/users/me/push-ids", strings.NewReader(`{"push_id":"tok-a"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
		}
		if service.lastPush != "tok-a" {
			t.Errorf("push id = %q, want tok-a", service.lastPush)
		}
	})

	t.Run("birthdate is surfaced as a plain date", func(t *testing.T) {
		t.Parallel()

		birthdate := time.Date(1999, time.May, 4, 0, 0, 0, 0, time.UTC)
		service := &stubUserService{user: application.User{
			ID:        "u-1",
			Username:  "alice",
			Role:      application.RoleHouser,
			Birthdate: &birthdate,
		}}
		router := NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(application.Principal{UserID: "u-1"})},
		})

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		resp := decodeBody[userResponse](t, recorder)
		if resp.User.Birthdate != "1999-05-04" {
			t.Errorf("birthdate = %q, want 1999-05-04", resp.User.Birthdate)
		}
	})
}

type stubHouseService struct {
	state application.HouseState
	logs  []application.LogEntry
	err   error
}

func (s *stubHouseService) GetHouseState(_ context.Context) (application.HouseState, error) {
	return s.state, s.err
}

func (s *stubHouseService) SetMaintenance(_ context.Context, _ application.Principal, active bool) (application.HouseState, error) {
	s.state.MaintenanceActive = active
	return s.state, s.err
}

func (s *stubHouseService) SetRegistrationBlocked(_ context.Context, _ application.Principal, blocked bool) (application.HouseState, error) {
	s.state.RegistrationBlocked = blocked
	return s.state, s.err
}

func (s *stubHouseService) ListLogs(_ context.Context, _ application.Principal, _ int) ([]application.LogEntry, error) {
	return s.logs, s.err
}

func TestHouseHandlers(t *testing.T) {
	t.Parallel()

	knowledger := application.Principal{UserID: "u-k", Role: application.RoleKnowledger}

	houseRouter := func(service *stubHouseService) http.Handler {
		return NewRouter(RouterConfig{
			House:      NewHouseHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(knowledger)},
		})
	}

	t.Run("maintenance toggle returns the new state", func(t *testing.T) {
		t.Parallel()

		router := houseRouter(&stubHouseService{})

		req := httptest.NewRequest(http.MethodPut, "/house/maintenance", strings.NewReader(`{"active":true}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		resp := decodeBody[houseStateResponse](t, recorder)
		if !resp.State.MaintenanceActive {
			t.Error("maintenance_active = false, want true")
		}
	})

	t.Run("log listing rejects a malformed limit", func(t *testing.T) {
		t.Parallel()

		router := houseRouter(&stubHouseService{})

		req := httptest.NewRequest(http.MethodGet, "/logs?limit=bogus", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
		}
	})

	t.Run("log listing returns entries", func(t *testing.T) {
		t.Parallel()

		service := &stubHouseService{logs: []application.LogEntry{{
			ID:        "l-1",
			UserID:    "u-1",
			Message:   "opened the door",
			Type:      application.LogTypeDoorOpen,
			CreatedAt: handlerBase,
		}}}
		router := houseRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/logs?limit=10", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		resp := decodeBody[listLogsResponse](t, recorder)
		if len(resp.Logs) != 1 || resp.Logs[0].Type != "DOOR_OPEN" {
			t.Errorf("logs = %+v, want one DOOR_OPEN entry", resp.Logs)
		}
	})
}

type stubFeedService struct {
	notes    []application.StoredNotification
	err      error
	lastRead string
}

func (s *stubFeedService) ListNotifications(_ context.Context, _ application.Principal, _ int) ([]application.StoredNotification, error) {
	return s.notes, s.err
}

func (s *stubFeedService) MarkNotificationRead(_ context.Context, _ application.Principal, notificationID string) error {
	s.lastRead = notificationID
	return s.err
}

func TestNotificationHandlers(t *testing.T) {
	t.Parallel()

	principal := application.Principal{UserID: "u-1", Role: application.RoleHouser}

	feedRouter := func(service *stubFeedService) http.Handler {
		return NewRouter(RouterConfig{
			Notifications: NewNotificationHandler(service, nil),
			Middleware:    []func(http.Handler) http.Handler{withPrincipal(principal)},
		})
	}

	t.Run("list returns the feed", func(t *testing.T) {
		t.Parallel()

		service := &stubFeedService{notes: []application.StoredNotification{{
			ID:        "n-1",
			Title:     "Door opened",
			Category:  application.NotificationDoor,
			CreatedAt: handlerBase,
		}}}
		router := feedRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		resp := decodeBody[listNotificationsResponse](t, recorder)
		if len(resp.Notifications) != 1 || resp.Notifications[0].ID != "n-1" {
			t.Errorf("notifications = %+v, want one entry n-1", resp.Notifications)
		}
	})

	t.Run("mark read resolves the path id", func(t *testing.T) {
		t.Parallel()

		service := &stubFeedService{}
		router := feedRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/notifications/n-1/read", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
		}
		if service.lastRead != "n-1" {
			t.Errorf("marked id = %q, want n-1", service.lastRead)
		}
	})

	t.Run("marking an unknown notification maps to 404", func(t *testing.T) {
		t.Parallel()

		service := &stubFeedService{err: application.ErrNotFound}
		router := feedRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/notifications/nope/read", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", recorder.Code, http.StatusNotFound)
		}
	})
}
