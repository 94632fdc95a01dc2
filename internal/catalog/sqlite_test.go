package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreRunsAndLevels(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.CreateRun("video_data/restore_042")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	if runID == "" {
		t.Fatal("CreateRun() returned an empty ID")
	}

	levels := []LevelEntry{
		{RunID: runID, LevelNum: 0, LevelSeed: 11, NumFrames: 300, Interesting: true},
		{RunID: runID, LevelNum: 1, LevelSeed: 22, NumFrames: 40},
		{RunID: runID, LevelNum: 2, LevelSeed: 33, NumFrames: 180, Interesting: true},
	}
	for _, e := range levels {
		if err := store.RecordLevel(e); err != nil {
			t.Fatalf("RecordLevel() failed: %v", err)
		}
	}

	got, err := store.Levels(runID)
	if err != nil {
		t.Fatalf("Levels() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 levels, got %d", len(got))
	}
	if got[0].LevelNum != 0 || got[2].LevelNum != 2 {
		t.Errorf("Levels not ordered by level number: %v", got)
	}
	if !got[0].Interesting || got[1].Interesting {
		t.Error("Interesting flags not round-tripped")
	}

	run, err := store.RunByDataDir("video_data/restore_042")
	if err != nil {
		t.Fatalf("RunByDataDir() failed: %v", err)
	}
	if run == nil || run.ID != runID {
		t.Fatalf("RunByDataDir() = %v, want run %s", run, runID)
	}
	if run.NumLevels != 3 {
		t.Errorf("Expected run counter of 3, got %d", run.NumLevels)
	}
}

func TestStoreRecordLevelUpsert(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.CreateRun("video_data/restore_001")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	if err := store.RecordLevel(LevelEntry{RunID: runID, LevelNum: 5, LevelSeed: 1, NumFrames: 10}); err != nil {
		t.Fatalf("RecordLevel() failed: %v", err)
	}
	// Reconverting the same level replaces the record
	if err := store.RecordLevel(LevelEntry{RunID: runID, LevelNum: 5, LevelSeed: 1, NumFrames: 250, Interesting: true}); err != nil {
		t.Fatalf("RecordLevel() upsert failed: %v", err)
	}

	got, err := store.Levels(runID)
	if err != nil {
		t.Fatalf("Levels() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 level after upsert, got %d", len(got))
	}
	if got[0].NumFrames != 250 || !got[0].Interesting {
		t.Errorf("Upsert did not replace the record: %+v", got[0])
	}
}

func TestStoreClipsAndStats(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.CreateRun("video_data/restore_007")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	store.RecordLevel(LevelEntry{RunID: runID, LevelNum: 0, LevelSeed: 1, NumFrames: 200, Interesting: true})
	store.RecordLevel(LevelEntry{RunID: runID, LevelNum: 1, LevelSeed: 2, NumFrames: 100})

	clips := []ClipEntry{
		{RunID: runID, LevelNum: 0, Name: "restore_007_level_0000_video_frames_0096_to_0191", StartFrame: 96, EndFrame: 192},
		{RunID: runID, LevelNum: 0, Name: "restore_007_level_0000_video_frames_0000_to_0095", StartFrame: 0, EndFrame: 96},
	}
	for _, c := range clips {
		if _, err := store.RecordClip(c); err != nil {
			t.Fatalf("RecordClip() failed: %v", err)
		}
	}

	got, err := store.Clips(runID)
	if err != nil {
		t.Fatalf("Clips() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 clips, got %d", len(got))
	}
	// Ordered by start frame within the level
	if got[0].StartFrame != 0 || got[1].StartFrame != 96 {
		t.Errorf("Clips not ordered by start frame: %v", got)
	}

	stats, err := store.Stats(runID)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.LevelCount != 2 {
		t.Errorf("Expected 2 levels in stats, got %d", stats.LevelCount)
	}
	if stats.InterestingCount != 1 {
		t.Errorf("Expected 1 interesting level, got %d", stats.InterestingCount)
	}
	if stats.TotalFrames != 300 {
		t.Errorf("Expected 300 total frames, got %d", stats.TotalFrames)
	}
	if stats.ClipCount != 2 {
		t.Errorf("Expected 2 clips in stats, got %d", stats.ClipCount)
	}
}

func TestStoreStatsEmptyRun(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.CreateRun("video_data/restore_000")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	stats, err := store.Stats(runID)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.LevelCount != 0 || stats.ClipCount != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	// Nested directories are created on demand
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
