package runlog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := store.Record(ctx, Entry{
			SessionID:  "sess-1",
			Workflow:   "contacts",
			OperatorID: "op-1",
			TotalRows:  10 + i,
			ReadyCount: 8,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	// Newest first.
	if entries[0].TotalRows != 12 || entries[1].TotalRows != 11 {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].Workflow != "contacts" || entries[0].OperatorID != "op-1" {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	ctx := context.Background()
	if err := store.Record(ctx, Entry{SessionID: "x"}); err != nil {
		t.Errorf("nil store Record = %v", err)
	}
	entries, err := store.Recent(ctx, 5)
	if err != nil || entries != nil {
		t.Errorf("nil store Recent = %v, %v", entries, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("nil store Close = %v", err)
	}
}
