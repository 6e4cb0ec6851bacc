package cleanup

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"hookstash/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	query := `
	CREATE TABLE webhooks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func TestSweeper_EvictsOnlyExpired(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now().Unix()
	insert := `INSERT INTO webhooks (id, user_id, data, created_at) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(insert, "wh_old", "usr_1", "{}", now-int64((5*time.Hour).Seconds())); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if _, err := db.Exec(insert, "wh_new", "usr_1", "{}", now); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	sweeper := NewSweeper(repositories.NewWebhookRepository(db), 4*time.Hour)
	if err := sweeper.Sweep(); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM webhooks`).Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 surviving row, got %d", count)
	}

	var id string
	if err := db.QueryRow(`SELECT id FROM webhooks`).Scan(&id); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if id != "wh_new" {
		t.Errorf("Expected wh_new to survive, got %s", id)
	}
}

func TestSweeper_IdempotentOnEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	sweeper := NewSweeper(repositories.NewWebhookRepository(db), 4*time.Hour)

	for i := 0; i < 2; i++ {
		if err := sweeper.Sweep(); err != nil {
			t.Fatalf("Sweep %d failed: %v", i, err)
		}
	}
}
