package config

import "sort"

var Presets = map[string]*Config{
	"undamped": {
		Mass: 1, Stiffness: 1, Damping: 0, Steps: 1000, Dt: 0.01,
		InitState: InitStateConfig{Displacement: 1},
	},
	"light": {
		Mass: 1, Stiffness: 1, Damping: 0.5, Steps: 1000, Dt: 0.01,
		InitState: InitStateConfig{Displacement: 1},
	},
	"critical": {
		Mass: 1, Stiffness: 4, Damping: 4, Steps: 1000, Dt: 0.01,
		InitState: InitStateConfig{Displacement: 1},
	},
	"overdamped": {
		Mass: 1, Stiffness: 1, Damping: 5, Steps: 2000, Dt: 0.01,
		InitState: InitStateConfig{Displacement: 1},
	},
	"kick": {
		Mass: 2, Stiffness: 8, Damping: 0.2, Steps: 1500, Dt: 0.01,
		InitState: InitStateConfig{Displacement: 0, Velocity: 3},
	},
	"rest": {
		Mass: 1, Stiffness: 1, Damping: 0.5, Steps: 1000, Dt: 0.01,
		InitState: InitStateConfig{},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
