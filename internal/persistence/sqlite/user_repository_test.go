package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/house-doorbell/internal/application"
	"github.com/example/house-doorbell/internal/persistence"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewUserRepository(pool)

	birthday := time.Date(1994, time.June, 2, 0, 0, 0, 0, time.UTC)
	user := application.User{
		ID:            "u-1",
		Username:      "alex",
		Email:         "Alex@Example.com",
		PasswordHash:  "$argon2id$stub",
		Role:          application.RoleHouser,
		MultiDoorOpen: true,
		PushIDs:       []string{"token-1", "token-2"},
		Birthdate:     &birthday,
		CreatedAt:     repoBase,
		UpdatedAt:     repoBase,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	got, err := repo.GetUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if got.Email != "alex@example.com" {
		t.Errorf("email = %q, want normalized lowercase", got.Email)
	}
	if got.Role != application.RoleHouser || !got.MultiDoorOpen {
		t.Errorf("got %+v, want role and flags preserved", got)
	}
	if len(got.PushIDs) != 2 {
		t.Errorf("push ids = %v, want 2 tokens", got.PushIDs)
	}
	if got.Birthdate == nil || !got.Birthdate.Equal(birthday) {
		t.Errorf("birthdate = %v, want %v", got.Birthdate, birthday)
	}
}

func TestUserRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewUserRepository(pool)
	seedUser(t, pool, "u-1", "alex", application.RoleHouser)

	t.Run("username lookup is case-insensitive", func(t *testing.T) {
		got, err := repo.GetUserByUsername(ctx, "ALEX")
		if err != nil {
			t.Fatalf("GetUserByUsername returned error: %v", err)
		}
		if got.ID != "u-1" {
			t.Errorf("id = %s, want u-1", got.ID)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
		if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		dup := application.User{
			ID: "u-2", Username: "Alex", Email: "other@example.com",
			PasswordHash: "$argon2id$stub", Role: application.RoleGuest,
			CreatedAt: repoBase, UpdatedAt: repoBase,
		}
		if err := repo.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("error = %v, want ErrDuplicate", err)
		}
	})
}

func TestUserRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewUserRepository(pool)
	user := seedUser(t, pool, "u-1", "alex", application.RoleHouser)

	user.Muted = true
	user.PushIDs = []string{"token-9"}
	user.UpdatedAt = repoBase.Add(time.Hour)
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	got, err := repo.GetUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if !got.Muted || len(got.PushIDs) != 1 || got.PushIDs[0] != "token-9" {
		t.Errorf("got %+v, want muted with replaced tokens", got)
	}

	user.ID = "missing"
	if err := repo.UpdateUser(ctx, user); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
