// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig     `yaml:"screen"`
	Sim       SimConfig        `yaml:"sim"`
	Physics   PhysicsConfig    `yaml:"physics"`
	Pool      PoolConfig       `yaml:"pool"`
	Retire    RetireConfig     `yaml:"retire"`
	Emitter   EmitterConfig    `yaml:"emitter"`
	Display   DisplayConfig    `yaml:"display"`
	Camera    CameraConfig     `yaml:"camera"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Audio     AudioConfig      `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML-friendly [x, y, z] triple.
type Vec3 [3]float64

// R3 converts the triple to a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimConfig holds the simulation and display cadence.
type SimConfig struct {
	DT             float64 `yaml:"dt"`               // Seconds per simulation tick
	DisplayHz      float64 `yaml:"display_hz"`       // Display readbacks per simulated second
	MaxTime        float64 `yaml:"max_time"`         // Simulated seconds before the run ends (0 = unbounded)
	MaxFrames      int     `yaml:"max_frames"`       // Display frames before the run ends (0 = unbounded)
	StepsPerUpdate int     `yaml:"steps_per_update"` // Ticks per headless update call
	MaxCatchUp     int     `yaml:"max_catch_up"`     // Cap on ticks run per paced update
}

// PhysicsConfig holds integration and collision parameters.
type PhysicsConfig struct {
	Gravity     Vec3    `yaml:"gravity"`
	Restitution float64 `yaml:"restitution"` // Normal velocity kept after a bounce (<= 1)
	RestSpeed   float64 `yaml:"rest_speed"`  // Normal speed below which a contact counts as resting
	Skin        float64 `yaml:"skin"`        // Distance kept from a surface after a contact
}

// PoolConfig holds particle pool parameters.
type PoolConfig struct {
	Capacity int `yaml:"capacity"`
}

// RetireConfig holds the retirement policy.
type RetireConfig struct {
	Lifetime   float64 `yaml:"lifetime"`    // Seconds a particle lives (0 = no limit)
	MaxBounces int     `yaml:"max_bounces"` // Bounces before retirement (0 = no limit)
	BoundsMin  Vec3    `yaml:"bounds_min"`
	BoundsMax  Vec3    `yaml:"bounds_max"`
}

// EmitterConfig holds the emitter start position and launch distribution.
type EmitterConfig struct {
	Origin    Vec3         `yaml:"origin"`     // Display coordinates
	MoveSpeed float64      `yaml:"move_speed"` // Display units per input frame
	Launch    LaunchConfig `yaml:"launch"`
}

// LaunchConfig selects and parameterizes the launch strategy.
type LaunchConfig struct {
	Mode           string  `yaml:"mode"`            // fixed, cone or swirl
	Velocity       Vec3    `yaml:"velocity"`        // fixed mode launch velocity
	Direction      Vec3    `yaml:"direction"`       // cone/swirl axis
	Speed          float64 `yaml:"speed"`           // cone/swirl mean speed
	SpeedJitter    float64 `yaml:"speed_jitter"`    // Fractional speed spread
	Spread         float64 `yaml:"spread"`          // Cone half-angle in radians
	PositionJitter float64 `yaml:"position_jitter"` // Spawn offset radius
	SwirlRate      float64 `yaml:"swirl_rate"`      // Noise phase advance per launch
	SwirlAmount    float64 `yaml:"swirl_amount"`    // Max swirl deflection in radians
	Seed           int64   `yaml:"seed"`
}

// DisplayConfig holds the engine-to-display coordinate mapping.
type DisplayConfig struct {
	Offset         Vec3    `yaml:"offset"`
	Park           Vec3    `yaml:"park"`            // Where inactive slots are drawn
	ParticleRadius float64 `yaml:"particle_radius"` // Drawn radius of each particle
}

// CameraConfig holds orbit camera defaults (degrees).
type CameraConfig struct {
	Theta  float64 `yaml:"theta"`
	Phi    float64 `yaml:"phi"`
	Radius float64 `yaml:"radius"`
	Speed  float64 `yaml:"speed"`
}

// ObstacleConfig is one triangular collision obstacle in engine coordinates.
type ObstacleConfig struct {
	Name     string   `yaml:"name"`
	Vertices [3]Vec3  `yaml:"vertices"`
	Color    [3]uint8 `yaml:"color"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// AudioConfig holds the terminal viewer bounce cue.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	ToneHz  float64 `yaml:"tone_hz"`
	ClickMS int     `yaml:"click_ms"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DisplayPeriod float64 // 1 / Sim.DisplayHz
	Gravity       r3.Vec
	BoundsMin     r3.Vec
	BoundsMax     r3.Vec
	Offset        r3.Vec
	Park          r3.Vec
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects settings the simulation cannot run with.
func (c *Config) validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT)
	}
	if c.Sim.DisplayHz <= 0 {
		return fmt.Errorf("sim.display_hz must be positive, got %v", c.Sim.DisplayHz)
	}
	if c.Physics.Restitution < 0 || c.Physics.Restitution > 1 {
		return fmt.Errorf("physics.restitution must be in [0, 1], got %v", c.Physics.Restitution)
	}
	if c.Physics.Skin <= 0 {
		return fmt.Errorf("physics.skin must be positive, got %v", c.Physics.Skin)
	}
	if c.Pool.Capacity < 1 {
		return fmt.Errorf("pool.capacity must be at least 1, got %d", c.Pool.Capacity)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DisplayPeriod = 1 / c.Sim.DisplayHz
	c.Derived.Gravity = c.Physics.Gravity.R3()
	c.Derived.BoundsMin = c.Retire.BoundsMin.R3()
	c.Derived.BoundsMax = c.Retire.BoundsMax.R3()
	c.Derived.Offset = c.Display.Offset.R3()
	c.Derived.Park = c.Display.Park.R3()

	if c.Sim.StepsPerUpdate < 1 {
		c.Sim.StepsPerUpdate = 1
	}
	if c.Sim.MaxCatchUp < 1 {
		c.Sim.MaxCatchUp = 1000
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
