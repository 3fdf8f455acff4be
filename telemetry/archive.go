package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

const archiveObject = "snapshots"

// ErrSlotEmpty is returned when loading a slot that was never saved.
var ErrSlotEmpty = errors.New("archive slot is empty")

// Archive keeps named snapshots in the per-user application data directory,
// so a run can be resumed without tracking file paths.
type Archive struct {
	m *gdata.Manager
}

// OpenArchive opens the data store for appName.
func OpenArchive(appName string) (*Archive, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", appName, err)
	}
	return &Archive{m: m}, nil
}

// Save stores the snapshot under slot, replacing any previous one.
func (a *Archive) Save(slot string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := a.m.SaveObjectProp(archiveObject, slot, data); err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	return nil
}

// Exists reports whether slot holds a snapshot.
func (a *Archive) Exists(slot string) bool {
	return a.m.ObjectPropExists(archiveObject, slot)
}

// Load returns the snapshot stored under slot.
func (a *Archive) Load(slot string) (*Snapshot, error) {
	if !a.Exists(slot) {
		return nil, fmt.Errorf("load slot %q: %w", slot, ErrSlotEmpty)
	}
	data, err := a.m.LoadObjectProp(archiveObject, slot)
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", slot, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal slot %q: %w", slot, err)
	}
	return &snap, nil
}
