package config

import "sort"

// Presets are named starting points. GetPreset hands out copies, so callers
// may edit the result freely.
var Presets = map[string]func() *Config{
	"sim": DefaultConfig,
	"robot": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "robot"
		cfg.Feedback = FeedbackGains{KP: 1, KI: 0, KD: 0, IntegratorMin: -1, IntegratorMax: 1}
		cfg.Feedforward = FeedforwardGains{KS: 5, KG: 2, KV: 0.9, KA: 0.1}
		return cfg
	},
	"soft": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "soft"
		cfg.Feedback.KP = 0.1
		cfg.Feedback.KD = 0.002
		cfg.Driver.MotionMagic = MotionMagic{CruiseVelocity: 20, Acceleration: 40, Jerk: 400}
		return cfg
	},
	"heavy": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "heavy"
		cfg.Plant.MassKg = 6
		cfg.Plant.NumMotors = 2
		cfg.Feedforward.KG = 1.315
		cfg.Feedback.KI = 0.02
		cfg.Feedback.IZone = 10
		return cfg
	},
	"no_gravity": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "no_gravity"
		cfg.Plant.SimulateGravity = false
		cfg.Feedforward.KG = 0
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
