package application

import (
	"context"
	"errors"
	"testing"
)

func newHouseService(state *stubHouseStateRepo, users *stubUserRepo, logs *stubLogRepo, sink *recordingSink) *HouseService {
	return NewHouseService(state, users, logs,
		NewNotificationService(sink, nil),
		sequentialIDs("h"), fixedNow(testBase), nil)
}

func TestSetMaintenance(t *testing.T) {
	ctx := context.Background()

	t.Run("knowledger activates and everyone is told", func(t *testing.T) {
		state := &stubHouseStateRepo{}
		users := newStubUserRepo(
			User{ID: "u-1", Role: RoleKnowledger},
			User{ID: "u-2", Role: RoleHouser},
			User{ID: "u-3", Role: RoleGuest},
		)
		logs := &stubLogRepo{}
		sink := &recordingSink{}
		svc := newHouseService(state, users, logs, sink)

		got, err := svc.SetMaintenance(ctx, knowler("u-1"), true)
		if err != nil {
			t.Fatalf("SetMaintenance returned error: %v", err)
		}
		if !got.MaintenanceActive {
			t.Error("maintenance not active")
		}
		if !state.state.MaintenanceActive {
			t.Error("maintenance state not persisted")
		}
		if logs.lastType() != LogTypeMaintenance {
			t.Errorf("last log type = %s, want %s", logs.lastType(), LogTypeMaintenance)
		}
		if len(sink.sent) != 1 || len(sink.sent[0].RecipientIDs) != 3 {
			t.Errorf("notifications = %+v, want one notice to the whole house", sink.sent)
		}
	})

	t.Run("same value is a silent no-op", func(t *testing.T) {
		state := &stubHouseStateRepo{state: HouseState{MaintenanceActive: true}}
		sink := &recordingSink{}
		logs := &stubLogRepo{}
		svc := newHouseService(state, newStubUserRepo(), logs, sink)

		if _, err := svc.SetMaintenance(ctx, knowler("u-1"), true); err != nil {
			t.Fatalf("SetMaintenance returned error: %v", err)
		}
		if len(sink.sent) != 0 || len(logs.entries) != 0 {
			t.Error("no-op toggle must not notify or log")
		}
	})

	t.Run("houser cannot toggle", func(t *testing.T) {
		svc := newHouseService(&stubHouseStateRepo{}, newStubUserRepo(), &stubLogRepo{}, &recordingSink{})

		if _, err := svc.SetMaintenance(ctx, houser("u-2"), true); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestSetRegistrationBlocked(t *testing.T) {
	ctx := context.Background()

	t.Run("only knowledgers are told", func(t *testing.T) {
		state := &stubHouseStateRepo{}
		users := newStubUserRepo(
			User{ID: "u-1", Role: RoleKnowledger},
			User{ID: "u-2", Role: RoleHouser},
		)
		logs := &stubLogRepo{}
		sink := &recordingSink{}
		svc := newHouseService(state, users, logs, sink)

		got, err := svc.SetRegistrationBlocked(ctx, knowler("u-1"), true)
		if err != nil {
			t.Fatalf("SetRegistrationBlocked returned error: %v", err)
		}
		if !got.RegistrationBlocked || !state.state.RegistrationBlocked {
			t.Error("registration block not persisted")
		}
		if logs.lastType() != LogTypeRegistration {
			t.Errorf("last log type = %s, want %s", logs.lastType(), LogTypeRegistration)
		}
		if len(sink.sent) != 1 {
			t.Fatalf("notifications = %d, want 1", len(sink.sent))
		}
		if got := sink.sent[0].RecipientIDs; len(got) != 1 || got[0] != "u-1" {
			t.Errorf("recipients = %v, want knowledgers only", got)
		}
	})

	t.Run("guest cannot toggle", func(t *testing.T) {
		svc := newHouseService(&stubHouseStateRepo{}, newStubUserRepo(), &stubLogRepo{}, &recordingSink{})

		if _, err := svc.SetRegistrationBlocked(ctx, guest("g-1"), true); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestListLogs(t *testing.T) {
	ctx := context.Background()
	logs := &stubLogRepo{entries: []LogEntry{
		{ID: "l-1", Type: LogTypeDoorOpen},
		{ID: "l-2", Type: LogTypePartyCreated},
		{ID: "l-3", Type: LogTypeMaintenance},
	}}
	svc := newHouseService(&stubHouseStateRepo{}, newStubUserRepo(), logs, &recordingSink{})

	if _, err := svc.ListLogs(ctx, houser("u-1"), 10); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("houser error = %v, want ErrUnauthorized", err)
	}

	entries, err := svc.ListLogs(ctx, knowler("admin-1"), 2)
	if err != nil {
		t.Fatalf("ListLogs returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "l-3" {
		t.Errorf("entries = %+v, want the 2 newest first", entries)
	}
}
