package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"MediaCurator/internal/domain"
)

func TestLoadMissingFileYieldsEmptySet(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "rules.json"))
	set, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if set.Version != 0 || len(set.Rules) != 0 {
		t.Fatalf("expected an empty set, got %+v", set)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.json")
	store := NewFileStore(path)

	saved := domain.RuleSet{
		Version:     3,
		GeneratedAt: time.Date(2026, time.February, 1, 6, 0, 0, 0, time.UTC),
		Rules: []domain.Rule{
			{Kind: domain.KeywordBonus, Match: "netflix", Adjustment: 1, Confidence: 0.8, SampleSize: 5},
		},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Version != 3 || len(loaded.Rules) != 1 || loaded.Rules[0].Match != "netflix" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("expected a parse error")
	}
}
