package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 1.0
	DefaultDamping   = 0.0
	DefaultX0        = 1.0
	DefaultSteps     = dynamo.DefaultSteps
	DefaultDt        = dynamo.DefaultDt
)

type Config struct {
	Mass            float64         `yaml:"mass"`
	Stiffness       float64         `yaml:"stiffness"`
	Damping         float64         `yaml:"damping"`
	InitState       InitStateConfig `yaml:"init_state"`
	Steps           int             `yaml:"steps"`
	Dt              float64         `yaml:"dt"`
	Strict          bool            `yaml:"strict"`
	RejectNonFinite bool            `yaml:"reject_non_finite"`
	MaxSteps        int             `yaml:"max_steps"`
}

type InitStateConfig struct {
	Displacement float64 `yaml:"displacement"`
	Velocity     float64 `yaml:"velocity"`
}

func DefaultConfig() *Config {
	return &Config{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		InitState: InitStateConfig{
			Displacement: DefaultX0,
		},
		Steps: DefaultSteps,
		Dt:    DefaultDt,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads path on top of a copy of base, so keys missing from the
// file keep the values from base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		Mass:         c.Mass,
		Stiffness:    c.Stiffness,
		Damping:      c.Damping,
		Displacement: c.InitState.Displacement,
		Velocity:     c.InitState.Velocity,
		Steps:        c.Steps,
		Dt:           c.Dt,
	}
}

func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Params:          c.Params(),
		Strict:          c.Strict,
		RejectNonFinite: c.RejectNonFinite,
		MaxSteps:        c.MaxSteps,
	}
}

// Validate checks the run controls and that every value is a finite number.
// Physical plausibility (mass > 0) is left to strict runs.
func (c *Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	if c.MaxSteps > 0 && c.Steps > c.MaxSteps {
		return fmt.Errorf("steps %d exceeds max_steps %d", c.Steps, c.MaxSteps)
	}
	values := []struct {
		name string
		v    float64
	}{
		{"mass", c.Mass},
		{"stiffness", c.Stiffness},
		{"damping", c.Damping},
		{"init_state.displacement", c.InitState.Displacement},
		{"init_state.velocity", c.InitState.Velocity},
		{"dt", c.Dt},
	}
	for _, f := range values {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite, got %g", f.name, f.v)
		}
	}
	return nil
}

// Env holds process-level settings read from the environment.
type Env struct {
	MaxSteps     int
	LogLevel     string
	LogFormat    string
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string
}

// FromEnv reads OSCSIM_* variables. Unset variables keep their defaults.
func FromEnv() (Env, error) {
	env := Env{
		LogLevel:     envStr("OSCSIM_LOG_LEVEL", "info"),
		LogFormat:    envStr("OSCSIM_LOG_FORMAT", "text"),
		OTELEndpoint: envStr("OSCSIM_OTEL_ENDPOINT", ""),
		ServiceName:  envStr("OSCSIM_SERVICE_NAME", "oscsim"),
	}

	var err error
	if env.MaxSteps, err = envInt("OSCSIM_MAX_STEPS", 0); err != nil {
		return Env{}, err
	}
	if env.OTELInsecure, err = envBool("OSCSIM_OTEL_INSECURE", false); err != nil {
		return Env{}, err
	}
	return env, nil
}

// Apply overlays environment settings onto c.
func (e Env) Apply(c *Config) {
	if e.MaxSteps > 0 {
		c.MaxSteps = e.MaxSteps
	}
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
