package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestArchive opens an archive under a unique app name, or skips when
// the environment has no writable data directory.
func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	appName := fmt.Sprintf("island_test_%d", time.Now().UnixNano())
	a, err := OpenArchive(appName)
	if err != nil {
		t.Skipf("cannot open archive: %v", err)
	}
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})
	return a
}

func TestArchiveSaveLoad(t *testing.T) {
	a := openTestArchive(t)
	isl := newPopulatedIsland(t, 9)
	isl.RunCycle()

	snap, err := CaptureSnapshot(isl, nil)
	if err != nil {
		t.Fatalf("CaptureSnapshot: %v", err)
	}

	if a.Exists("latest") {
		t.Fatal("fresh archive reports a saved slot")
	}
	if err := a.Save("latest", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !a.Exists("latest") {
		t.Fatal("slot missing after Save")
	}

	loaded, err := a.Load("latest")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Year != 1 || loaded.Seed != 9 {
		t.Errorf("loaded (year %d, seed %d), want (1, 9)", loaded.Year, loaded.Seed)
	}
	if len(loaded.Island.Cells) != len(snap.Island.Cells) {
		t.Errorf("cells = %d, want %d", len(loaded.Island.Cells), len(snap.Island.Cells))
	}
}

func TestArchiveLoadEmptySlot(t *testing.T) {
	a := openTestArchive(t)
	_, err := a.Load("nothing")
	if !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("err = %v, want ErrSlotEmpty", err)
	}
}
