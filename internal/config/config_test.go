package config

import (
	"path/filepath"
	"sort"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Agents <= 0 {
		t.Error("agents should be positive")
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.Layout != "disk" {
		t.Errorf("expected disk layout, got %s", cfg.Layout)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := Default()
	cfg.Agents = 42
	cfg.K = -0.75
	cfg.ChiralityMode = "split"
	cfg.Target = []float64{1.5, -2}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Agents != 42 || loaded.K != -0.75 || loaded.ChiralityMode != "split" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.Target) != 2 || loaded.Target[0] != 1.5 {
		t.Errorf("target round trip mismatch: %v", loaded.Target)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("active-phase-wave")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.K != -0.75 || cfg.J != 1.0 {
		t.Errorf("active-phase-wave couplings = (J=%v, K=%v)", cfg.J, cfg.K)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets returned %d names, want %d", len(names), len(Presets))
	}

	sort.Strings(names)
	for _, want := range []string{"chiral-mill", "static-sync", "target-halo"} {
		i := sort.SearchStrings(names, want)
		if i >= len(names) || names[i] != want {
			t.Errorf("preset %q missing", want)
		}
	}
}

func TestSeedSpecTranslation(t *testing.T) {
	cfg := GetPreset("chiral-mill")
	spec := cfg.SeedSpec()

	if spec.Agents != cfg.Agents || spec.K != cfg.K || spec.J != cfg.J {
		t.Errorf("spec mismatch: %+v", spec)
	}
	if spec.ChiralityMode != "split" || spec.OmegaMode != "split" {
		t.Errorf("chirality translation mismatch: %+v", spec)
	}
}

func TestRunConfigValidates(t *testing.T) {
	rc := Default().RunConfig()
	if !rc.ValidateState {
		t.Error("runs should validate state")
	}
	if rc.Dt != DefaultDt {
		t.Errorf("dt = %v, want %v", rc.Dt, DefaultDt)
	}
}
