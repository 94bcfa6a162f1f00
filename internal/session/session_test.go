package session

import (
	"testing"
	"time"
)

func testClock() func() time.Time {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
}

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(testClock()))
	saved, err := store.Save(Record{Kind: KindCompose, Task: "review"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated id")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatalf("expected timestamp")
	}
	loaded, err := store.Load(saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Task != "review" || loaded.Kind != KindCompose {
		t.Fatalf("round trip lost data: %+v", loaded)
	}
}

func TestSaveRequiresKind(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Save(Record{}); err == nil {
		t.Fatalf("expected kind validation error")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(testClock()))
	for i := 0; i < 3; i++ {
		if _, err := store.Save(Record{Kind: KindCompose}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	records, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Fatalf("records not newest first: %+v", records)
		}
	}
}

func TestListMissingDir(t *testing.T) {
	store := NewStore(t.TempDir() + "/missing")
	records, err := store.List()
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if records != nil {
		t.Fatalf("expected nil records, got %v", records)
	}
}

func TestPrune(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(testClock()))
	var newest string
	for i := 0; i < 5; i++ {
		saved, err := store.Save(Record{Kind: KindReview})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		newest = saved.ID
	}
	removed, err := store.Prune(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	records, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(records))
	}
	if records[0].ID != newest {
		t.Fatalf("newest session pruned")
	}
}

func TestPruneRejectsZeroKeep(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Prune(0); err == nil {
		t.Fatalf("expected keep validation error")
	}
}
