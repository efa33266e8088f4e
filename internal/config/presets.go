package config

import "sort"

var Presets = map[string]*Config{
	"reference": {
		Steps: 20000, Duration: 10, Gravity: 9.80513, Length: 5.0,
		Terms: []TermConfig{{Tau: 1.0, Frequency: 0.5, Phi: 0, Amplitude: 1}},
	},
	"beat": {
		Steps: 50000, Duration: 30, Gravity: 9.80513, Length: 5.0,
		Terms: []TermConfig{
			{Tau: 20, Frequency: 1.0, Phi: 0, Amplitude: 0.05},
			{Tau: 20, Frequency: 1.1, Phi: 0, Amplitude: 0.05},
		},
	},
	"impulse": {
		Steps: 100000, Duration: 10, Gravity: 9.80513, Length: 5.0,
		Terms: []TermConfig{{Tau: 0.05, Frequency: 25, Phi: 1.5708, Amplitude: 0.01}},
	},
	"broadband": {
		Steps: 100000, Duration: 20, Gravity: 9.80513, Length: 5.0,
		Terms: []TermConfig{
			{Tau: 2, Frequency: 0.3, Phi: 0.1, Amplitude: 0.2},
			{Tau: 1, Frequency: 1.7, Phi: 2.3, Amplitude: 0.05},
			{Tau: 0.5, Frequency: 4.2, Phi: -1.0, Amplitude: 0.02},
			{Tau: 0.25, Frequency: 9.5, Phi: 0.7, Amplitude: 0.005},
		},
	},
	"resonant": {
		Steps: 50000, Duration: 60, Gravity: 9.80513, Length: 5.0,
		Terms: []TermConfig{{Tau: 30, Frequency: 0.163, Phi: 0, Amplitude: 0.1}},
	},
}

// GetPreset returns a copy of the named preset with default output and
// logging settings, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Steps = p.Steps
	cfg.Duration = p.Duration
	cfg.Gravity = p.Gravity
	cfg.Length = p.Length
	cfg.Terms = append([]TermConfig(nil), p.Terms...)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
