package config

// Presets covers the five classic swarmalator regimes plus the chiral and
// target demos. Coupling values follow the usual (J, K) phase diagram.
var Presets = map[string]*Config{
	"static-sync": {
		Agents: 200, Dt: 0.05, Duration: 80, K: 1.0, J: 0.1,
		Layout: "disk", Extent: 1.0,
	},
	"static-async": {
		Agents: 200, Dt: 0.05, Duration: 80, K: -1.0, J: 0.1,
		Layout: "disk", Extent: 1.0,
	},
	"static-phase-wave": {
		Agents: 300, Dt: 0.05, Duration: 120, K: 0.0, J: 1.0,
		Layout: "disk", Extent: 1.0,
	},
	"splintered-phase-wave": {
		Agents: 300, Dt: 0.05, Duration: 150, K: -0.1, J: 1.0,
		Layout: "disk", Extent: 1.0,
	},
	"active-phase-wave": {
		Agents: 300, Dt: 0.05, Duration: 150, K: -0.75, J: 1.0,
		Layout: "disk", Extent: 1.0,
	},
	"chiral-mill": {
		Agents: 200, Dt: 0.02, Duration: 100, K: 0.5, J: 0.8,
		Layout: "disk", Extent: 1.5,
		ChiralityMode: "split", ChiralitySpin: 1.0,
		OmegaMode: "split", OmegaMean: 1.0,
	},
	"target-halo": {
		Agents: 250, Dt: 0.05, Duration: 100, K: 0.4, J: 1.0,
		Layout: "uniform", Extent: 2.0,
		Target: []float64{0, 0},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
