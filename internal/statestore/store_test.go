package statestore

import (
	"context"
	"testing"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnsureLibrary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ref, err := store.EnsureLibrary(ctx, "Music", "uuid-1")
	if err != nil {
		t.Fatalf("EnsureLibrary failed: %v", err)
	}
	if ref.Stamp != "uuid-1" {
		t.Errorf("Stamp = %q, want uuid-1", ref.Stamp)
	}

	// Second sight returns the stored stamp, not the live one.
	again, err := store.EnsureLibrary(ctx, "Music", "uuid-2")
	if err != nil {
		t.Fatalf("EnsureLibrary second call failed: %v", err)
	}
	if again.ID != ref.ID || again.Stamp != "uuid-1" {
		t.Errorf("got %+v, want same row with original stamp", again)
	}

	if err := store.UpdateLibraryStamp(ctx, ref.ID, "uuid-2"); err != nil {
		t.Fatalf("UpdateLibraryStamp failed: %v", err)
	}
	rebound, err := store.EnsureLibrary(ctx, "Music", "uuid-2")
	if err != nil {
		t.Fatalf("EnsureLibrary after rebind failed: %v", err)
	}
	if rebound.Stamp != "uuid-2" {
		t.Errorf("Stamp after rebind = %q, want uuid-2", rebound.Stamp)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ref, err := store.EnsureLibrary(ctx, "Music", "uuid-1")
	if err != nil {
		t.Fatalf("EnsureLibrary failed: %v", err)
	}

	rec := &ownership.Record{
		ItemID:    "track-1",
		Kind:      catalog.KindTrack,
		Inferred:  3.92,
		Class:     ownership.ClassInferred,
		TwinGroup: "the band\x1fhit song\x1ft1",
	}
	if err := store.PutRecord(ctx, ref.ID, rec); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	records, err := store.LoadRecords(ctx, ref.ID)
	if err != nil {
		t.Fatalf("LoadRecords failed: %v", err)
	}
	got, ok := records["track-1"]
	if !ok {
		t.Fatal("record not found after put")
	}
	if got.Inferred != 3.92 || got.Class != ownership.ClassInferred || got.Kind != catalog.KindTrack {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.TwinGroup != rec.TwinGroup {
		t.Errorf("TwinGroup = %q, want %q", got.TwinGroup, rec.TwinGroup)
	}

	// Upsert flips classification to manual and it stays that way.
	rec.Class = ownership.ClassManual
	if err := store.PutRecord(ctx, ref.ID, rec); err != nil {
		t.Fatalf("PutRecord update failed: %v", err)
	}
	records, _ = store.LoadRecords(ctx, ref.ID)
	if records["track-1"].Class != ownership.ClassManual {
		t.Error("classification update not persisted")
	}

	if err := store.DeleteRecord(ctx, ref.ID, "track-1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	records, _ = store.LoadRecords(ctx, ref.ID)
	if len(records) != 0 {
		t.Errorf("expected empty store after delete, got %d rows", len(records))
	}
}

func TestCheckpointLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ref, err := store.EnsureLibrary(ctx, "Music", "uuid-1")
	if err != nil {
		t.Fatalf("EnsureLibrary failed: %v", err)
	}

	cp, err := store.LoadCheckpoint(ctx, ref.ID, "album-up")
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if cp != nil {
		t.Fatalf("expected no checkpoint before start, got %+v", cp)
	}

	if err := store.SaveCheckpoint(ctx, ref.ID, "album-up", "the band\x1falbum\x1fal1", "uuid-1"); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	if err := store.SaveCheckpoint(ctx, ref.ID, "album-up", "zz top\x1falbum\x1fal9", "uuid-1"); err != nil {
		t.Fatalf("SaveCheckpoint advance failed: %v", err)
	}

	cp, err = store.LoadCheckpoint(ctx, ref.ID, "album-up")
	if err != nil {
		t.Fatalf("LoadCheckpoint after save failed: %v", err)
	}
	if cp == nil || cp.LastKey != "zz top\x1falbum\x1fal9" {
		t.Fatalf("checkpoint did not advance: %+v", cp)
	}

	if err := store.ClearCheckpoint(ctx, ref.ID, "album-up"); err != nil {
		t.Fatalf("ClearCheckpoint failed: %v", err)
	}
	cp, _ = store.LoadCheckpoint(ctx, ref.ID, "album-up")
	if cp != nil {
		t.Error("checkpoint should be gone after completion")
	}
}

func TestCountByClass(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ref, _ := store.EnsureLibrary(ctx, "Music", "uuid-1")

	puts := []*ownership.Record{
		{ItemID: "t1", Kind: catalog.KindTrack, Inferred: 3.0, Class: ownership.ClassInferred, TwinGroup: "g1"},
		{ItemID: "t2", Kind: catalog.KindTrack, Inferred: 3.1, Class: ownership.ClassInferred},
		{ItemID: "t3", Kind: catalog.KindTrack, Class: ownership.ClassManual},
	}
	for _, rec := range puts {
		if err := store.PutRecord(ctx, ref.ID, rec); err != nil {
			t.Fatalf("PutRecord failed: %v", err)
		}
	}

	counts, err := store.CountByClass(ctx, ref.ID)
	if err != nil {
		t.Fatalf("CountByClass failed: %v", err)
	}
	if counts[ownership.ClassInferred] != 2 || counts[ownership.ClassManual] != 1 {
		t.Errorf("counts = %v", counts)
	}

	twins, err := store.CountTwinLinked(ctx, ref.ID)
	if err != nil {
		t.Fatalf("CountTwinLinked failed: %v", err)
	}
	if twins != 1 {
		t.Errorf("twin-linked = %d, want 1", twins)
	}
}
