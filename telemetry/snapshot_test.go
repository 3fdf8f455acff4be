package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/island"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	isl := newPopulatedIsland(t, 42)
	for i := 0; i < 3; i++ {
		isl.RunCycle()
	}

	snapshot, err := CaptureSnapshot(isl, nil)
	if err != nil {
		t.Fatalf("CaptureSnapshot: %v", err)
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_3.json"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("snapshot file not created: %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Version != SnapshotVersion || loaded.Seed != 42 || loaded.Year != 3 {
		t.Errorf("header = (%d, %d, %d)", loaded.Version, loaded.Seed, loaded.Year)
	}

	restored, err := loaded.Restore(island.WithRegistry(fauna.NewRegistry()))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Year() != isl.Year() {
		t.Errorf("year = %d, want %d", restored.Year(), isl.Year())
	}
	if restored.Counts() != isl.Counts() {
		t.Errorf("counts = %v, want %v", restored.Counts(), isl.Counts())
	}
	if restored.TotalFodder() != isl.TotalFodder() {
		t.Errorf("fodder = %v, want %v", restored.TotalFodder(), isl.TotalFodder())
	}

	// Both islands continue from the same random state.
	for i := 0; i < 3; i++ {
		a := isl.RunCycle()
		b := restored.RunCycle()
		if a.Births != b.Births || a.Deaths != b.Deaths || a.Kills != b.Kills {
			t.Fatalf("trajectories diverged in cycle %d", i+1)
		}
	}
}

func TestSnapshotWithBookmark(t *testing.T) {
	tmpDir := t.TempDir()
	isl := newPopulatedIsland(t, 1)

	snapshot, err := CaptureSnapshot(isl, &Bookmark{
		Type:        BookmarkHerbivoreCrash,
		Year:        0,
		Description: "test bookmark",
	})
	if err != nil {
		t.Fatalf("CaptureSnapshot: %v", err)
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_0_herbivore_crash.json" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkHerbivoreCrash {
		t.Errorf("bookmark not preserved: %+v", loaded.Bookmark)
	}
}

func TestSnapshotRestoreErrors(t *testing.T) {
	if _, err := (&Snapshot{Version: SnapshotVersion + 1}).Restore(); err == nil {
		t.Error("expected error for unsupported version")
	}
	if _, err := (&Snapshot{Version: SnapshotVersion}).Restore(); err == nil {
		t.Error("expected error for missing island state")
	}
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
