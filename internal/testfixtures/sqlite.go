package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/house-doorbell/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite database
// for integration-style persistence tests.
type SQLiteHarness struct {
	Pool          *sqlite.ConnectionPool
	Users         *sqlite.UserRepository
	Parties       *sqlite.PartyRepository
	Logs          *sqlite.LogRepository
	HouseState    *sqlite.HouseStateRepository
	Notifications *sqlite.NotificationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary database file that
// is migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB. The notification
// repository uses the supplied factory's identifier generator and clock.
func NewSQLiteHarness(tb testing.TB, factory *ServiceFactory) *SQLiteHarness {
	tb.Helper()

	if factory == nil {
		factory = NewServiceFactory()
	}

	path := filepath.Join(tb.TempDir(), "doorbell.db")
	pool, err := sqlite.NewConnectionPool(path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:          pool,
		Users:         sqlite.NewUserRepository(pool),
		Parties:       sqlite.NewPartyRepository(pool),
		Logs:          sqlite.NewLogRepository(pool),
		HouseState:    sqlite.NewHouseStateRepository(pool),
		Notifications: sqlite.NewNotificationRepository(pool, factory.IDGenerator.NextFunc(), factory.Clock.NowFunc()),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
