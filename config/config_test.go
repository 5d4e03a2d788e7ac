package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Pool.Capacity != 1000 {
		t.Errorf("pool.capacity = %d, want 1000", cfg.Pool.Capacity)
	}
	if len(cfg.Obstacles) != 3 {
		t.Errorf("expected 3 default obstacles, got %d", len(cfg.Obstacles))
	}
	if cfg.Derived.Gravity.Z >= 0 {
		t.Errorf("expected gravity along -Z, got %v", cfg.Derived.Gravity)
	}
	if cfg.Derived.DisplayPeriod <= cfg.Sim.DT {
		t.Errorf("display period %v should be longer than dt %v", cfg.Derived.DisplayPeriod, cfg.Sim.DT)
	}
	if cfg.Derived.Park.X != 10 || cfg.Derived.Park.Y != 10 || cfg.Derived.Park.Z != 10 {
		t.Errorf("park = %v, want (10,10,10)", cfg.Derived.Park)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("pool:\n  capacity: 4\nphysics:\n  restitution: 0.5\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Pool.Capacity != 4 {
		t.Errorf("pool.capacity = %d, want 4", cfg.Pool.Capacity)
	}
	if cfg.Physics.Restitution != 0.5 {
		t.Errorf("restitution = %v, want 0.5", cfg.Physics.Restitution)
	}
	// Untouched sections keep their defaults
	if cfg.Retire.Lifetime != 4.0 {
		t.Errorf("retire.lifetime = %v, want default 4.0", cfg.Retire.Lifetime)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"zero dt", "sim:\n  dt: 0\n"},
		{"restitution above one", "physics:\n  restitution: 1.5\n"},
		{"empty pool", "pool:\n  capacity: 0\n"},
		{"zero display rate", "sim:\n  display_hz: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Pool.Capacity = 77

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot: %v", err)
	}
	if loaded.Pool.Capacity != 77 {
		t.Errorf("capacity after roundtrip = %d, want 77", loaded.Pool.Capacity)
	}
	if len(loaded.Obstacles) != len(cfg.Obstacles) {
		t.Errorf("obstacles after roundtrip = %d, want %d", len(loaded.Obstacles), len(cfg.Obstacles))
	}
}
