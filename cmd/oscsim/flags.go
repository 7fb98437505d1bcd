package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/oscsim/internal/config"
)

// runFlags are shared by every command that simulates. Precedence is
// defaults < preset < config file < environment < flags set on the
// command line.
type runFlags struct {
	mass            float64
	stiffness       float64
	damping         float64
	x0              float64
	v0              float64
	steps           int
	dt              float64
	preset          string
	configFile      string
	strict          bool
	rejectNonFinite bool
	maxSteps        int
}

func (f *runFlags) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	pf := cmd.PersistentFlags()
	pf.Float64Var(&f.mass, "mass", d.Mass, "mass (kg)")
	pf.Float64Var(&f.stiffness, "stiffness", d.Stiffness, "spring stiffness (N/m)")
	pf.Float64Var(&f.damping, "damping", d.Damping, "damping coefficient (kg/s)")
	pf.Float64Var(&f.x0, "x0", d.InitState.Displacement, "initial displacement (m)")
	pf.Float64Var(&f.v0, "v0", d.InitState.Velocity, "initial velocity (m/s)")
	pf.IntVar(&f.steps, "steps", d.Steps, "number of integration steps")
	pf.Float64Var(&f.dt, "dt", d.Dt, "time step (s)")
	pf.StringVar(&f.preset, "preset", "", fmt.Sprintf("preset (%s)", strings.Join(config.ListPresets(), ", ")))
	pf.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	pf.BoolVar(&f.strict, "strict", false, "reject mass <= 0 and non-finite coefficients")
	pf.BoolVar(&f.rejectNonFinite, "reject-nonfinite", false, "stop at the first non-finite energy")
	pf.IntVar(&f.maxSteps, "max-steps", 0, "upper bound on steps (0 = unbounded)")
}

func (f *runFlags) resolve(cmd *cobra.Command, env config.Env) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.preset != "" {
		p := config.GetPreset(f.preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
		cfg = p
	}

	if f.configFile != "" {
		loaded, err := config.LoadOver(cfg, f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	env.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("mass") {
		cfg.Mass = f.mass
	}
	if flags.Changed("stiffness") {
		cfg.Stiffness = f.stiffness
	}
	if flags.Changed("damping") {
		cfg.Damping = f.damping
	}
	if flags.Changed("x0") {
		cfg.InitState.Displacement = f.x0
	}
	if flags.Changed("v0") {
		cfg.InitState.Velocity = f.v0
	}
	if flags.Changed("steps") {
		cfg.Steps = f.steps
	}
	if flags.Changed("dt") {
		cfg.Dt = f.dt
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("reject-nonfinite") {
		cfg.RejectNonFinite = f.rejectNonFinite
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = f.maxSteps
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Debug("resolved configuration",
		"mass", cfg.Mass, "stiffness", cfg.Stiffness, "damping", cfg.Damping,
		"x0", cfg.InitState.Displacement, "v0", cfg.InitState.Velocity,
		"steps", cfg.Steps, "dt", cfg.Dt, "preset", f.preset, "config", f.configFile)
	return cfg, nil
}
