package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/island/island"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Year    int   `json:"year"`

	Island *island.State `json:"island"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CaptureSnapshot records the island's current state, optionally tagged
// with the bookmark that triggered it.
func CaptureSnapshot(isl *island.Island, b *Bookmark) (*Snapshot, error) {
	st, err := isl.Snapshot()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:  SnapshotVersion,
		Seed:     st.Seed,
		Year:     st.Year,
		Island:   st,
		Bookmark: b,
	}, nil
}

// Restore rebuilds the island held by the snapshot.
func (s *Snapshot) Restore(opts ...island.Option) (*island.Island, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d not supported (want %d)", s.Version, SnapshotVersion)
	}
	if s.Island == nil {
		return nil, fmt.Errorf("snapshot has no island state")
	}
	return island.Restore(s.Island, opts...)
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Year)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Year, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
