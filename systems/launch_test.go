package systems

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spout/config"
)

func TestFixedLauncher(t *testing.T) {
	l := FixedLauncher{Velocity: r3.Vec{X: 1, Z: 2}}
	origin := r3.Vec{X: 3, Y: 4, Z: 5}

	for i := 0; i < 3; i++ {
		pos, vel := l.Launch(origin)
		if pos != origin || vel != l.Velocity {
			t.Errorf("launch %d: pos=%v vel=%v", i, pos, vel)
		}
	}
}

func TestConeLauncherWithinSpread(t *testing.T) {
	axis := r3.Vec{Z: 1}
	l := NewConeLauncher(axis, 2, 0.1, 0.3, 0, 42)

	for i := 0; i < 500; i++ {
		pos, vel := l.Launch(r3.Vec{})
		if pos != (r3.Vec{}) {
			t.Fatalf("launch %d: position jittered with zero jitter: %v", i, pos)
		}
		speed := r3.Norm(vel)
		if speed < 2*0.9-tol || speed > 2*1.1+tol {
			t.Fatalf("launch %d: speed %v outside [1.8, 2.2]", i, speed)
		}
		angle := math.Acos(r3.Dot(r3.Unit(vel), axis))
		if angle > 0.3+1e-9 {
			t.Fatalf("launch %d: angle %v exceeds spread", i, angle)
		}
	}
}

func TestConeLauncherSeeded(t *testing.T) {
	a := NewConeLauncher(r3.Vec{X: 1}, 1, 0.2, 0.5, 0.05, 7)
	b := NewConeLauncher(r3.Vec{X: 1}, 1, 0.2, 0.5, 0.05, 7)

	for i := 0; i < 20; i++ {
		pa, va := a.Launch(r3.Vec{})
		pb, vb := b.Launch(r3.Vec{})
		if pa != pb || va != vb {
			t.Fatalf("launch %d differs for the same seed", i)
		}
	}
}

func TestSwirlLauncherSpeed(t *testing.T) {
	l := NewSwirlLauncher(r3.Vec{}, 3, 0.05, 0.4, 1)

	for i := 0; i < 100; i++ {
		pos, vel := l.Launch(r3.Vec{Y: 1})
		if pos != (r3.Vec{Y: 1}) {
			t.Fatalf("launch %d: swirl moved the spawn point to %v", i, pos)
		}
		if s := r3.Norm(vel); !scalar.EqualWithinAbs(s, 3, 1e-9) {
			t.Fatalf("launch %d: speed %v, want 3", i, s)
		}
		if vel.Z <= 0 {
			t.Fatalf("launch %d: tilted past the default +Z axis: %v", i, vel)
		}
	}
}

func TestNewLauncher(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"", false},
		{LaunchFixed, false},
		{LaunchCone, false},
		{LaunchSwirl, false},
		{"fountain", true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			l, err := NewLauncher(config.LaunchConfig{Mode: tt.mode, Speed: 1})
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLaunchMode) {
					t.Errorf("expected ErrUnknownLaunchMode, got %v", err)
				}
				return
			}
			if err != nil || l == nil {
				t.Errorf("NewLauncher(%q) = %v, %v", tt.mode, l, err)
			}
		})
	}
}
