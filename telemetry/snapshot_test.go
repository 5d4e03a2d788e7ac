package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveSnapshotWritesState(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     42,
		Tick:     1500,
		SimTime:  1.5,
		Capacity: 8,
		Emitter:  [3]float64{0, 1.5, 0},
		Particles: []ParticleState{
			{Slot: 0, Position: [3]float64{0.1, 0, 1.2}, Velocity: [3]float64{0, 0, -3}, Born: 1.1, Bounces: 2},
			{Slot: 3, Position: [3]float64{0, 0, -2}, Born: 0.2, Resting: true},
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1500.json" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	loaded := readSnapshot(t, path)

	if loaded.Version != SnapshotVersion || loaded.Seed != 42 || loaded.Tick != 1500 || loaded.Capacity != 8 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Particles) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(loaded.Particles))
	}
	if loaded.Particles[0] != snapshot.Particles[0] || loaded.Particles[1] != snapshot.Particles[1] {
		t.Errorf("particle mismatch: %+v", loaded.Particles)
	}
}

func TestSnapshotBookmarkFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Tick:     42,
		Bookmark: &Bookmark{Type: BookmarkSaturated, Tick: 42},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_42_saturated.json") {
		t.Errorf("unexpected path %s", path)
	}
}

// readSnapshot decodes a snapshot file written by SaveSnapshot.
func readSnapshot(t *testing.T, path string) Snapshot {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	return s
}
