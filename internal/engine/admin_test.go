package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CWuestefeld/plex-rating-utils/internal/bulk"
	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/engine"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

func TestVerifyReportsOverridesAndOrphans(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, store := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// A rating edited behind the engine's back, plus a record whose
	// item no longer exists.
	plex.ratings["t4"] = 1.5
	ref, err := store.EnsureLibrary(ctx, "Music", "uuid-1")
	if err != nil {
		t.Fatalf("ensure library: %v", err)
	}
	ghost := &ownership.Record{ItemID: "gone", Kind: catalog.KindTrack, Inferred: 3.0, Class: ownership.ClassInferred}
	if err := store.PutRecord(ctx, ref.ID, ghost); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	report, err := runner.Verify(ctx)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Checked == 0 {
		t.Fatal("verify checked nothing")
	}

	var sawOverride bool
	for _, e := range report.Overrides {
		if e.ItemID == "t4" && e.Found == 1.5 {
			sawOverride = true
		}
	}
	if !sawOverride {
		t.Errorf("override on t4 not reported: %+v", report.Overrides)
	}
	if len(report.Orphans) != 1 || report.Orphans[0] != "gone" {
		t.Errorf("orphans = %v, want [gone]", report.Orphans)
	}

	// Verify is read-only.
	if got := plex.ratings["t4"]; got != 1.5 {
		t.Errorf("verify changed a rating to %v", got)
	}
}

func TestCleanupRetractsEngineWrites(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, store := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, rated := plex.ratings["t4"]; !rated {
		t.Fatal("fixture: t4 was not engine-rated")
	}

	summary, err := runner.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if summary.Removed == 0 {
		t.Fatal("cleanup removed nothing")
	}

	for _, id := range []string{"al1", "ar1", "t4"} {
		if _, rated := plex.ratings[id]; rated {
			t.Errorf("engine rating on %s survived cleanup", id)
		}
		if hasMood(plex, id, markerTag) {
			t.Errorf("marker on %s survived cleanup", id)
		}
	}
	// Human ratings stay.
	if plex.ratings["t1"] != 5.0 {
		t.Errorf("manual rating t1 = %v after cleanup", plex.ratings["t1"])
	}

	ref, _ := store.EnsureLibrary(ctx, "Music", "uuid-1")
	records, err := store.LoadRecords(ctx, ref.ID)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("%d shadow records survived cleanup", len(records))
	}
}

func TestCleanupPreservesOverriddenRatings(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, _ := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("run: %v", err)
	}
	plex.ratings["t4"] = 2.5

	summary, err := runner.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if summary.Preserved == 0 {
		t.Fatal("override was not preserved")
	}
	if plex.ratings["t4"] != 2.5 {
		t.Errorf("overridden rating = %v after cleanup, want 2.5", plex.ratings["t4"])
	}
}

func TestReconstructRebuildsRecordsFromMarkers(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, store := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// Simulate a lost shadow state: markers remain on the server.
	ref, err := store.EnsureLibrary(ctx, "Music", "uuid-1")
	if err != nil {
		t.Fatalf("ensure library: %v", err)
	}
	records, err := store.LoadRecords(ctx, ref.ID)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("fixture: no records to lose")
	}
	for id := range records {
		if err := store.DeleteRecord(ctx, ref.ID, id); err != nil {
			t.Fatalf("delete record: %v", err)
		}
	}

	restored, err := runner.Reconstruct(ctx)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if restored != len(records) {
		t.Errorf("restored %d records, want %d", restored, len(records))
	}

	rebuilt, err := store.LoadRecords(ctx, ref.ID)
	if err != nil {
		t.Fatalf("reload records: %v", err)
	}
	rec := rebuilt["t4"]
	if rec == nil || rec.Class != ownership.ClassInferred {
		t.Fatalf("rebuilt record = %+v, want inferred", rec)
	}
	if rec.Inferred != plex.ratings["t4"] {
		t.Errorf("rebuilt inferred = %v, want live %v", rec.Inferred, plex.ratings["t4"])
	}
}

func TestReconstructRequiresMarkerTag(t *testing.T) {
	params := testParams()
	params.MarkerTag = ""
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, _ := newTestRunner(t, plex, params)

	if _, err := runner.Reconstruct(context.Background()); !errors.Is(err, engine.ErrMarkerDisabled) {
		t.Fatalf("err = %v, want ErrMarkerDisabled", err)
	}
}

func TestRemapPromotesHalfStars(t *testing.T) {
	artist := artistSeed("ar1", "Townes Van Zandt")
	album := albumSeed("al1", "Live at the Old Quarter", artist.ID, artist.Title, 0)
	seeds := []catalog.Item{
		artist, album,
		trackSeed("t1", "Pancho and Lefty", album, artist, 3.5),
		trackSeed("t2", "If I Needed You", album, artist, 4.5),
		trackSeed("t3", "White Freight Liner Blues", album, artist, 2.0),
	}
	plex := newFakePlex("uuid-1", seeds)
	runner, _ := newTestRunner(t, plex, testParams())

	summary, err := runner.Remap(context.Background(), nil)
	if err != nil {
		t.Fatalf("remap: %v", err)
	}
	if summary.Updated != 2 {
		t.Errorf("updated = %d, want 2", summary.Updated)
	}
	if plex.ratings["t1"] != 4.0 {
		t.Errorf("t1 = %v, want 3.5 promoted to 4.0", plex.ratings["t1"])
	}
	if plex.ratings["t2"] != 5.0 {
		t.Errorf("t2 = %v, want 4.5 promoted to 5.0", plex.ratings["t2"])
	}
	if plex.ratings["t3"] != 2.0 {
		t.Errorf("t3 = %v, want 2.0 untouched", plex.ratings["t3"])
	}
}

func TestImportAppliesManualAndResetsInferred(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, store := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("run: %v", err)
	}

	rows := []bulk.Row{
		{ItemID: "t4", Rating: 4.5, Class: ownership.ClassManual},
		{ItemID: "t3", Rating: 3.0, Class: ownership.ClassInferred},
		{ItemID: "nope", Rating: 2.0, Class: ownership.ClassManual},
		{ItemID: "al1", Rating: 2.0, Class: ownership.ClassManual},
	}
	summary, err := runner.ImportRatings(ctx, catalog.KindTrack, rows, nil)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Applied != 1 || summary.Reset != 1 {
		t.Errorf("applied/reset = %d/%d, want 1/1", summary.Applied, summary.Reset)
	}
	if len(summary.Rejected) != 2 {
		t.Errorf("rejected = %v, want unknown item and kind mismatch", summary.Rejected)
	}
	if plex.ratings["t4"] != 4.5 {
		t.Errorf("t4 = %v, want imported 4.5", plex.ratings["t4"])
	}

	ref, _ := store.EnsureLibrary(ctx, "Music", "uuid-1")
	records, err := store.LoadRecords(ctx, ref.ID)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if rec := records["t4"]; rec == nil || rec.Class != ownership.ClassManual {
		t.Fatalf("t4 record = %+v, want manual", rec)
	}
	if _, exists := records["t3"]; exists {
		t.Error("t3 record survived an inferred reset")
	}

	// Later runs must honor the imported manual rating.
	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("follow-up run: %v", err)
	}
	if plex.ratings["t4"] != 4.5 {
		t.Errorf("follow-up run changed imported rating to %v", plex.ratings["t4"])
	}
}

func TestImportRejectionsKeepSourceLines(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, _ := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	// The header and the malformed row shift later rows off their
	// slice index; rejections must still point at file lines.
	input := strings.Join([]string{
		"item_id,rating,classification",
		"t4,4.5,manual",
		"t1,nonsense,manual",
		"ghost,2,manual",
	}, "\n")
	rows, rowErrs, err := bulk.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	summary, err := runner.ImportRatings(ctx, catalog.KindTrack, rows, rowErrs)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Applied != 1 {
		t.Errorf("applied = %d, want the t4 row", summary.Applied)
	}
	byLine := make(map[int]string, len(summary.Rejected))
	for _, re := range summary.Rejected {
		byLine[re.Line] = re.Message
	}
	if msg := byLine[3]; !strings.Contains(msg, "nonsense") {
		t.Errorf("line 3 rejection = %q, want the bad rating", msg)
	}
	if msg := byLine[4]; !strings.Contains(msg, "ghost") {
		t.Errorf("line 4 rejection = %q, want the unknown item", msg)
	}
}

func TestExportClassifiesRatings(t *testing.T) {
	plex := newFakePlex("uuid-1", basicSeeds())
	runner, _ := newTestRunner(t, plex, testParams())
	ctx := context.Background()

	if _, err := runner.Run(ctx, engine.AllPhases()); err != nil {
		t.Fatalf("run: %v", err)
	}

	rows, err := runner.ExportRatings(ctx, catalog.KindTrack)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	classes := make(map[string]ownership.Class, len(rows))
	for _, row := range rows {
		classes[row.ItemID] = row.Class
	}
	if classes["t1"] != ownership.ClassManual {
		t.Errorf("t1 class = %v, want manual", classes["t1"])
	}
	if classes["t4"] != ownership.ClassInferred {
		t.Errorf("t4 class = %v, want inferred", classes["t4"])
	}
	if len(rows) != 4 {
		t.Errorf("exported %d rows, want every rated track", len(rows))
	}
}
