package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

var repoBase = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(":memory:")
	if err != nil {
		t.Fatalf("NewConnectionPool returned error: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	return pool
}

func seedUser(t *testing.T, pool *ConnectionPool, id, username string, role application.UserRole) application.User {
	t.Helper()

	user := application.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$stub",
		Role:         role,
		CreatedAt:    repoBase,
		UpdatedAt:    repoBase,
	}
	if err := NewUserRepository(pool).CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
	return user
}

func testIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
