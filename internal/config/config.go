package config

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPeriod     = 0.02
	DefaultMaxVoltage = 12.0
	DefaultTicks      = 500
	DefaultSetpoint   = 90.0
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the immutable parameter set of one pivot instance. Angles in
// Plant are radians; Run.Setpoint is degrees.
type Config struct {
	Name        string           `yaml:"name"`
	Period      float64          `yaml:"period"`
	MaxVoltage  float64          `yaml:"max_voltage"`
	Feedback    FeedbackGains    `yaml:"feedback"`
	Feedforward FeedforwardGains `yaml:"feedforward"`
	Plant       PlantConfig      `yaml:"plant"`
	Driver      DriverConfig     `yaml:"driver"`
	Viz         VizConfig        `yaml:"viz"`
	Elevator    ElevatorConfig   `yaml:"elevator"`
	Run         RunConfig        `yaml:"run"`
}

type FeedbackGains struct {
	KP            float64 `yaml:"kp"`
	KI            float64 `yaml:"ki"`
	KD            float64 `yaml:"kd"`
	IZone         float64 `yaml:"izone,omitempty"`
	IntegratorMin float64 `yaml:"integrator_min"`
	IntegratorMax float64 `yaml:"integrator_max"`
}

type FeedforwardGains struct {
	KS float64 `yaml:"ks"`
	KG float64 `yaml:"kg"`
	KV float64 `yaml:"kv"`
	KA float64 `yaml:"ka"`
}

type PlantConfig struct {
	Motor           string  `yaml:"motor"`
	NumMotors       int     `yaml:"num_motors"`
	Gearing         float64 `yaml:"gearing"`
	LengthMeters    float64 `yaml:"length_meters"`
	MassKg          float64 `yaml:"mass_kg"`
	ArmLengthMeters float64 `yaml:"arm_length_meters"`
	MinAngle        float64 `yaml:"min_angle"`
	MaxAngle        float64 `yaml:"max_angle"`
	StartingAngle   float64 `yaml:"starting_angle"`
	SimulateGravity bool    `yaml:"simulate_gravity"`
	Integrator      string  `yaml:"integrator"`
}

// SlotGains are the on-device closed loop gains, in rotor rotations.
type SlotGains struct {
	KS float64 `yaml:"ks"`
	KV float64 `yaml:"kv"`
	KA float64 `yaml:"ka"`
	KP float64 `yaml:"kp"`
	KI float64 `yaml:"ki"`
	KD float64 `yaml:"kd"`
}

type MotionMagic struct {
	CruiseVelocity float64 `yaml:"cruise_velocity"`
	Acceleration   float64 `yaml:"acceleration"`
	Jerk           float64 `yaml:"jerk"`
}

type DriverConfig struct {
	Slot0       SlotGains   `yaml:"slot0"`
	MotionMagic MotionMagic `yaml:"motion_magic"`
	PeakVoltage float64     `yaml:"peak_voltage"`
	Gearing     float64     `yaml:"gearing"`
}

type VizConfig struct {
	RootX          float64 `yaml:"root_x"`
	RootY          float64 `yaml:"root_y"`
	LigamentLength float64 `yaml:"ligament_length"`
	LigamentAngle  float64 `yaml:"ligament_angle"`
	LineWidth      float64 `yaml:"line_width"`
	Color          string  `yaml:"color"`
}

type ElevatorConfig struct {
	Enabled         bool             `yaml:"enabled"`
	Motor           string           `yaml:"motor"`
	NumMotors       int              `yaml:"num_motors"`
	Gearing         float64          `yaml:"gearing"`
	CarriageMassKg  float64          `yaml:"carriage_mass_kg"`
	DrumRadius      float64          `yaml:"drum_radius"`
	MaxHeight       float64          `yaml:"max_height"`
	VizBaseLength   float64          `yaml:"viz_base_length"`
	Feedback        FeedbackGains    `yaml:"feedback"`
	Feedforward     FeedforwardGains `yaml:"feedforward"`
	StartingHeight  float64          `yaml:"starting_height"`
	SimulateGravity bool             `yaml:"simulate_gravity"`
}

type RunConfig struct {
	Ticks    int     `yaml:"ticks"`
	Setpoint float64 `yaml:"setpoint"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "sim",
		Period:     DefaultPeriod,
		MaxVoltage: DefaultMaxVoltage,
		Feedback: FeedbackGains{
			KP: 0.3, KI: 0, KD: 0.001,
			IntegratorMin: -1, IntegratorMax: 1,
		},
		Feedforward: FeedforwardGains{KS: 4, KG: 1.315, KV: 0.4, KA: 0.1},
		Plant: PlantConfig{
			Motor:           "falcon500",
			NumMotors:       1,
			Gearing:         36,
			LengthMeters:    0.5,
			MassKg:          3,
			ArmLengthMeters: 0.2,
			MinAngle:        -10000,
			MaxAngle:        100000,
			StartingAngle:   0,
			SimulateGravity: true,
			Integrator:      "rk4",
		},
		Driver: DriverConfig{
			Slot0:       SlotGains{KS: 0.25, KV: 0.12, KA: 0.01, KP: 4.8, KI: 0, KD: 0.1},
			MotionMagic: MotionMagic{CruiseVelocity: 80, Acceleration: 160, Jerk: 1600},
			PeakVoltage: DefaultMaxVoltage,
			Gearing:     36,
		},
		Viz: VizConfig{
			RootX:          0.75,
			RootY:          0.1,
			LigamentLength: 0.4,
			LigamentAngle:  90,
			LineWidth:      10,
			Color:          "#FFFF00",
		},
		Elevator: ElevatorConfig{
			Enabled:         true,
			Motor:           "falcon500",
			NumMotors:       1,
			Gearing:         10,
			CarriageMassKg:  8,
			DrumRadius:      0.05,
			MaxHeight:       1.5,
			VizBaseLength:   0.5,
			Feedback:        FeedbackGains{KP: 12, IntegratorMin: -1, IntegratorMax: 1},
			Feedforward:     FeedforwardGains{KG: 1.003},
			SimulateGravity: true,
		},
		Run: RunConfig{Ticks: DefaultTicks, Setpoint: DefaultSetpoint},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing config %s", path)
}

// Validate reports every problem at once. Each error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, format, args...))
	}
	finite := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			add("%s must be finite, got %v", name, v)
		}
	}
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			add("%s must be positive and finite, got %v", name, v)
		}
	}

	positive("period", c.Period)
	positive("max_voltage", c.MaxVoltage)

	feedback := func(prefix string, g FeedbackGains) {
		finite(prefix+".kp", g.KP)
		finite(prefix+".ki", g.KI)
		finite(prefix+".kd", g.KD)
		finite(prefix+".izone", g.IZone)
		finite(prefix+".integrator_min", g.IntegratorMin)
		finite(prefix+".integrator_max", g.IntegratorMax)
		if g.IZone < 0 {
			add("%s.izone must not be negative, got %v", prefix, g.IZone)
		}
		if g.IntegratorMin > g.IntegratorMax {
			add("%s.integrator_min %v exceeds integrator_max %v", prefix, g.IntegratorMin, g.IntegratorMax)
		}
	}
	feedforward := func(prefix string, g FeedforwardGains) {
		finite(prefix+".ks", g.KS)
		finite(prefix+".kg", g.KG)
		finite(prefix+".kv", g.KV)
		finite(prefix+".ka", g.KA)
	}

	feedback("feedback", c.Feedback)
	feedforward("feedforward", c.Feedforward)

	p := c.Plant
	if p.NumMotors < 1 {
		add("plant.num_motors must be at least 1, got %d", p.NumMotors)
	}
	positive("plant.gearing", p.Gearing)
	positive("plant.length_meters", p.LengthMeters)
	positive("plant.mass_kg", p.MassKg)
	positive("plant.arm_length_meters", p.ArmLengthMeters)
	finite("plant.min_angle", p.MinAngle)
	finite("plant.max_angle", p.MaxAngle)
	finite("plant.starting_angle", p.StartingAngle)
	if p.MinAngle >= p.MaxAngle {
		add("plant.min_angle %v must be below max_angle %v", p.MinAngle, p.MaxAngle)
	} else if p.StartingAngle < p.MinAngle || p.StartingAngle > p.MaxAngle {
		add("plant.starting_angle %v outside [%v, %v]", p.StartingAngle, p.MinAngle, p.MaxAngle)
	}

	positive("driver.peak_voltage", c.Driver.PeakVoltage)
	positive("driver.gearing", c.Driver.Gearing)
	positive("driver.motion_magic.cruise_velocity", c.Driver.MotionMagic.CruiseVelocity)
	positive("driver.motion_magic.acceleration", c.Driver.MotionMagic.Acceleration)
	if c.Driver.MotionMagic.Jerk < 0 {
		add("driver.motion_magic.jerk must not be negative, got %v", c.Driver.MotionMagic.Jerk)
	}
	finite("driver.motion_magic.jerk", c.Driver.MotionMagic.Jerk)
	s0 := c.Driver.Slot0
	finite("driver.slot0.ks", s0.KS)
	finite("driver.slot0.kv", s0.KV)
	finite("driver.slot0.ka", s0.KA)
	finite("driver.slot0.kp", s0.KP)
	finite("driver.slot0.ki", s0.KI)
	finite("driver.slot0.kd", s0.KD)

	finite("viz.root_x", c.Viz.RootX)
	finite("viz.root_y", c.Viz.RootY)
	positive("viz.ligament_length", c.Viz.LigamentLength)

	if c.Elevator.Enabled {
		e := c.Elevator
		positive("elevator.gearing", e.Gearing)
		positive("elevator.carriage_mass_kg", e.CarriageMassKg)
		positive("elevator.drum_radius", e.DrumRadius)
		positive("elevator.max_height", e.MaxHeight)
		if e.NumMotors < 1 {
			add("elevator.num_motors must be at least 1, got %d", e.NumMotors)
		}
		feedback("elevator.feedback", e.Feedback)
		feedforward("elevator.feedforward", e.Feedforward)
	}

	if c.Run.Ticks < 0 {
		add("run.ticks must not be negative, got %d", c.Run.Ticks)
	}
	finite("run.setpoint", c.Run.Setpoint)
	return errs
}

// Clone returns a deep copy; Config has no reference fields.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// MOI is the plant's moment of inertia estimated from the rod length and mass.
func (p PlantConfig) MOI() float64 {
	return p.MassKg * p.LengthMeters * p.LengthMeters / 3
}
