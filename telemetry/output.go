package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/island/config"
	"github.com/pthm-cable/island/island"
)

// DistributionRow is one cell's head counts in a given year.
type DistributionRow struct {
	Year       int `csv:"year"`
	Row        int `csv:"row"`
	Col        int `csv:"col"`
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`
}

// csvFile is an output file that writes its header with the first record.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

// write marshals records, including headers only on the first call.
func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir          string
	yearsFile    *csvFile
	distFile     *csvFile
	bookmarkFile *csvFile
	perfFile     *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"years.csv", &om.yearsFile},
		{"distribution.csv", &om.distFile},
		{"bookmarks.csv", &om.bookmarkFile},
		{"perf.csv", &om.perfFile},
	}
	for _, spec := range files {
		f, err := createCSV(dir, spec.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*spec.dst = f
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteYear writes a year stats record to years.csv.
func (om *OutputManager) WriteYear(stats YearStats) error {
	if om == nil {
		return nil
	}
	if err := om.yearsFile.write([]YearStats{stats}); err != nil {
		return fmt.Errorf("writing year stats: %w", err)
	}
	return nil
}

// WriteDistribution writes per-cell counts to distribution.csv.
func (om *OutputManager) WriteDistribution(year int, cells []island.CellCount) error {
	if om == nil || len(cells) == 0 {
		return nil
	}
	rows := make([]DistributionRow, len(cells))
	for i, c := range cells {
		rows[i] = DistributionRow{Year: year, Row: c.Row, Col: c.Col, Herbivores: c.Herbivores, Carnivores: c.Carnivores}
	}
	if err := om.distFile.write(rows); err != nil {
		return fmt.Errorf("writing distribution: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarkFile.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, year int) error {
	if om == nil {
		return nil
	}
	if err := om.perfFile.write([]PerfStatsCSV{stats.ToCSV(year)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, c := range []*csvFile{om.yearsFile, om.distFile, om.bookmarkFile, om.perfFile} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
