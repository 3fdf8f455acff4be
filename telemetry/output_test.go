package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/island/config"
	"github.com/pthm-cable/island/island"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// A nil manager accepts every write.
	if err := om.WriteYear(YearStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for year := 1; year <= 3; year++ {
		if err := om.WriteYear(YearStats{Year: year, Herbivores: 100 + year}); err != nil {
			t.Fatalf("WriteYear: %v", err)
		}
	}
	cells := []island.CellCount{{Row: 1, Col: 2, Herbivores: 5}, {Row: 3, Col: 4, Carnivores: 2}}
	if err := om.WriteDistribution(10, cells); err != nil {
		t.Fatalf("WriteDistribution: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkHerbivoreCrash, Year: 2, Description: "crash"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 3); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	years := readLines(t, filepath.Join(dir, "years.csv"))
	if len(years) != 4 {
		t.Fatalf("years.csv has %d lines, want header + 3", len(years))
	}
	if !strings.HasPrefix(years[0], "year,herbivores,carnivores") {
		t.Errorf("unexpected header: %s", years[0])
	}
	if !strings.HasPrefix(years[3], "3,103,") {
		t.Errorf("unexpected last row: %s", years[3])
	}

	dist := readLines(t, filepath.Join(dir, "distribution.csv"))
	if len(dist) != 3 || dist[0] != "year,row,col,herbivores,carnivores" || dist[2] != "10,3,4,0,2" {
		t.Errorf("distribution.csv = %q", dist)
	}

	bm := readLines(t, filepath.Join(dir, "bookmarks.csv"))
	if len(bm) != 2 || bm[1] != "herbivore_crash,2,crash" {
		t.Errorf("bookmarks.csv = %q", bm)
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 2 || !strings.HasPrefix(perf[1], "3,") {
		t.Errorf("perf.csv = %q", perf)
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
