package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jobscout/jobscout/internal/jobs"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "seen_jobs.json"), nil)
}

func posting(title, company, url string) *jobs.Posting {
	return &jobs.Posting{
		Title:     title,
		Company:   company,
		Location:  "Remote",
		URL:       url,
		Source:    "linkedin",
		ScrapedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	seen := tempStore(t).Load()
	if seen.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", seen.Len())
	}
}

func TestLoadCorruptFileYieldsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_jobs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	seen := New(path, nil).Load()
	if seen.Len() != 0 {
		t.Fatalf("expected empty store from corrupt file, got %d records", seen.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)

	seen := s.Load()
	seen.UpsertMany([]*jobs.Posting{posting("VP Data Science", "Acme", "https://x/jobs/view/1")})
	if err := s.Save(seen); err != nil {
		t.Fatal(err)
	}

	loaded := s.Load()
	if loaded.Len() != 1 {
		t.Fatalf("expected 1 record after reload, got %d", loaded.Len())
	}
	if loaded.LastUpdated.IsZero() {
		t.Fatalf("last_updated was not stamped")
	}

	key := loaded.Keys()[0]
	record := loaded.Jobs[key]
	if record.Applied || record.Ignored {
		t.Fatalf("new record must have decision flags cleared: %+v", record)
	}
	if record.Title != "VP Data Science" || record.Company != "Acme" {
		t.Fatalf("unexpected record contents: %+v", record)
	}
}

func TestUpsertManyIsIdempotent(t *testing.T) {
	seen := &SeenJobs{Jobs: make(map[string]*Record)}
	batch := []*jobs.Posting{
		posting("VP Data Science", "Acme", "https://x/jobs/view/1"),
		posting("Head of ML", "Globex", "https://x/jobs/view/2"),
	}

	seen.UpsertMany(batch)
	once := make(map[string]Record, len(seen.Jobs))
	for k, v := range seen.Jobs {
		once[k] = *v
	}

	seen.UpsertMany(batch)
	if len(seen.Jobs) != len(once) {
		t.Fatalf("second upsert changed record count: %d != %d", len(seen.Jobs), len(once))
	}
	for k, v := range seen.Jobs {
		if !reflect.DeepEqual(once[k], *v) {
			t.Fatalf("second upsert changed record %s: %+v != %+v", k, once[k], *v)
		}
	}
}

func TestUpsertManyPreservesDecisionFlags(t *testing.T) {
	seen := &SeenJobs{Jobs: make(map[string]*Record)}
	p := posting("VP Data Science", "Acme", "https://x/jobs/view/1")
	seen.UpsertMany([]*jobs.Posting{p})

	key := jobs.Key(p)
	if !seen.SetApplied(key, true) {
		t.Fatalf("record not found for key %s", key)
	}

	refreshed := *p
	refreshed.Description = "refreshed snippet"
	refreshed.ScrapedAt = p.ScrapedAt.Add(24 * time.Hour)
	seen.UpsertMany([]*jobs.Posting{&refreshed})

	record := seen.Jobs[key]
	if !record.Applied {
		t.Fatalf("upsert cleared the applied flag")
	}
	if record.Description != "refreshed snippet" {
		t.Fatalf("upsert did not refresh metadata")
	}
}

func TestDecisionFlagsAreMutuallyExclusive(t *testing.T) {
	seen := &SeenJobs{Jobs: make(map[string]*Record)}
	p := posting("VP Data Science", "Acme", "https://x/jobs/view/1")
	seen.UpsertMany([]*jobs.Posting{p})
	key := jobs.Key(p)

	seen.SetApplied(key, true)
	seen.SetIgnored(key, true)
	record := seen.Jobs[key]
	if record.Applied || !record.Ignored {
		t.Fatalf("setting ignored must clear applied: %+v", record)
	}

	seen.SetApplied(key, true)
	if record.Ignored || !record.Applied {
		t.Fatalf("setting applied must clear ignored: %+v", record)
	}
}

func TestPendingSkipsDecidedRecords(t *testing.T) {
	seen := &SeenJobs{Jobs: make(map[string]*Record)}
	a := posting("VP Data Science", "Acme", "https://x/jobs/view/1")
	b := posting("Head of ML", "Globex", "https://x/jobs/view/2")
	c := posting("AI Director", "Initech", "https://x/jobs/view/3")
	seen.UpsertMany([]*jobs.Posting{a, b, c})

	seen.SetApplied(jobs.Key(a), true)
	seen.SetIgnored(jobs.Key(b), true)

	pending := seen.Pending()
	if len(pending) != 1 || pending[0] != jobs.Key(c) {
		t.Fatalf("unexpected pending keys: %v", pending)
	}
}
