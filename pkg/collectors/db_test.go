package collectors

import (
	"database/sql"
	"os"
	"testing"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	tempFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	db, err := NewSQLiteDB(tempFile.Name())
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(tempFile.Name())
	}

	return db, cleanup
}

func TestNewSQLiteDB(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		tempFile, err := os.CreateTemp("", "test-*.db")
		if err != nil {
			t.Fatalf("failed to create temp file: %v", err)
		}
		defer os.Remove(tempFile.Name())

		db, err := NewSQLiteDB(tempFile.Name())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			t.Errorf("expected successful ping, got %v", err)
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := NewSQLiteDB("/invalid/path/to/database.db")
		if err == nil {
			t.Error("expected error for invalid path")
		}
	})
}

func TestNewSQLiteStore(t *testing.T) {
	t.Run("creates the table", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		if _, err := NewSQLiteStore(db); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='kv_entries'`).Scan(&name)
		if err != nil {
			t.Fatalf("expected kv_entries table, got %v", err)
		}
	})

	t.Run("nil database", func(t *testing.T) {
		if _, err := NewSQLiteStore(nil); err == nil {
			t.Fatal("expected error for nil database")
		}
	})
}
