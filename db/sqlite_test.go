package db

import (
	"path/filepath"
	"testing"

	"smartfraud/features"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "reference.db")); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestSeedAndLoadStates(t *testing.T) {
	openTestDB(t)

	seeded, err := SeedStates(features.DefaultStates())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !seeded {
		t.Fatal("expected empty table to be seeded")
	}
	again, err := SeedStates(features.DefaultStates())
	if err != nil || again {
		t.Fatalf("second seed should be a no-op, got %v %v", again, err)
	}

	states, err := LoadStates()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := features.DefaultStates()
	for _, name := range []string{"Texas", "Arizona", "Atlantis"} {
		if got, exp := states.Resolve(name), want.Resolve(name); got != exp {
			t.Errorf("%s: got %+v, want %+v", name, got, exp)
		}
	}
}

func TestLoadStatesReflectsEditedRows(t *testing.T) {
	openTestDB(t)
	if _, err := SeedStates(features.DefaultStates()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE states SET abbreviation = 'AZ', population = 1650000, in_model = 1 WHERE name = 'Arizona'`); err != nil {
		t.Fatalf("update: %v", err)
	}
	states, err := LoadStates()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	info := states.Resolve("Arizona")
	if info.Abbreviation != "AZ" || info.Population != 1650000 {
		t.Fatalf("unexpected %+v", info)
	}
}

func TestLoadStatesEmptyTable(t *testing.T) {
	openTestDB(t)
	if _, err := LoadStates(); err == nil {
		t.Fatal("expected error for empty table")
	}
}
