package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fastygo/taskboard/domain"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
)

func TestNewDB_CreatesDirAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "taskboard.db")

	db, err := NewDB(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	for _, table := range []string{"tasks", "users"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("table %s not created", table)
		}
	}

	users := sqliteRepo.NewUserRepository(db)
	if err := users.Create(context.Background(), &domain.User{Email: "a@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func TestEnsureDir_SkipsMemory(t *testing.T) {
	for _, dsn := range []string{":memory:", "file::memory:?cache=shared", "file:test.db?mode=memory"} {
		if err := ensureDir(dsn); err != nil {
			t.Fatalf("%s: %v", dsn, err)
		}
	}
}
