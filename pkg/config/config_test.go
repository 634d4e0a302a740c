package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	f := cfg.Fitting
	if f.MinDataPoints != 100 {
		t.Fatalf("MinDataPoints = %d, want 100", f.MinDataPoints)
	}
	if f.TheoreticalBeta != 0.33 || f.TheoreticalOmega != 6.36 {
		t.Fatalf("theoretical values = %v, %v", f.TheoreticalBeta, f.TheoreticalOmega)
	}
	if f.BoundaryTolerance != 0.001 {
		t.Fatalf("BoundaryTolerance = %v", f.BoundaryTolerance)
	}
	if f.Quality.MinUsableRSquared != 0.95 {
		t.Fatalf("MinUsableRSquared = %v, want 0.95", f.Quality.MinUsableRSquared)
	}
	sum := f.Quality.StatisticalWeight + f.Quality.TheoreticalWeight +
		f.Quality.PracticalWeight + f.Quality.StabilityWeight
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("quality weights sum to %v, want 1", sum)
	}
	if f.Conservative.Trials != 100 || f.Extensive.Trials != 500 || f.Emergency.Trials != 1000 {
		t.Fatalf("strategy trial counts: %d/%d/%d",
			f.Conservative.Trials, f.Extensive.Trials, f.Emergency.Trials)
	}
	if f.Conservative.Method != "grid" || f.Extensive.Method != "hybrid" || f.Emergency.Method != "random" {
		t.Fatalf("strategy methods: %s/%s/%s",
			f.Conservative.Method, f.Extensive.Method, f.Emergency.Method)
	}
	if f.Emergency.TcMax != 2.0 {
		t.Fatalf("emergency TcMax = %v", f.Emergency.TcMax)
	}
}

func TestLoadFromYAML(t *testing.T) {
	raw := `
environment: test
logging:
  level: warn
  format: json
fitting:
  min_data_points: 50
  workers: 4
  conservative:
    trials: 20
    trial_timeout: 5s
    method: grid
    tc_min: 1.01
    tc_max: 1.3
    beta_min: 0.25
    beta_max: 0.5
    omega_min: 5
    omega_max: 9
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Fitting.MinDataPoints != 50 || cfg.Fitting.Workers != 4 {
		t.Fatalf("overrides not applied: %+v", cfg.Fitting)
	}
	if cfg.Fitting.Conservative.Trials != 20 {
		t.Fatalf("conservative trials = %d", cfg.Fitting.Conservative.Trials)
	}
	if got := cfg.Fitting.Conservative.TrialTimeout.Std(); got != 5*time.Second {
		t.Fatalf("trial timeout = %v, want 5s", got)
	}
	// Untouched sections keep their defaults.
	if cfg.Fitting.Extensive.Trials != 500 {
		t.Fatalf("extensive trials = %d, want default 500", cfg.Fitting.Extensive.Trials)
	}
}

func TestLoadRejectsInvalidMethod(t *testing.T) {
	raw := `
fitting:
  conservative:
    trials: 20
    trial_timeout: 5s
    method: simplex
    tc_min: 1.01
    tc_max: 1.3
    beta_min: 0.25
    beta_max: 0.5
    omega_min: 5
    omega_max: 9
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown method")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	raw := `
logging:
  level: info
fitting:
  workers: 8
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FITTING_WORKERS", "2")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("log level = %q, want env override", cfg.Logging.Level)
	}
	if cfg.Fitting.Workers != 2 {
		t.Fatalf("workers = %d, want env override 2", cfg.Fitting.Workers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	for _, tc := range []struct {
		in   string
		want time.Duration
	}{
		{`"30s"`, 30 * time.Second},
		{`"2m"`, 2 * time.Minute},
	} {
		if err := yaml.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("unmarshal %q: %v", tc.in, err)
		}
		if d.Std() != tc.want {
			t.Fatalf("unmarshal %q = %v, want %v", tc.in, d.Std(), tc.want)
		}
	}
	if err := yaml.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}
