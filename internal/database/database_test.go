package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpenMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	for _, table := range []string{"guild_config", "teams", "team_assignments", "league_meta", "records", "results", "news_feed", "job_offers"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestOpenTwiceIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 2; i++ {
		db, err := Open(path, zerolog.Nop())
		if err != nil {
			t.Fatalf("Open() #%d error = %v", i+1, err)
		}
		db.Close()
	}
}
