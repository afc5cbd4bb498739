// Package config loads the scenario file: one YAML document declaring metric
// family aliases, key resolution rules, energy coefficients, and the list of
// result directories to compare. Topology variants differ only in this data,
// not in code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fmelo/scasweep/pkg/energy"
	"github.com/fmelo/scasweep/pkg/sweep"
)

// Scenario is one result tree to analyze, typically one topology variant.
type Scenario struct {
	Name string `yaml:"name"`
	Root string `yaml:"root"`
}

// Energy mirrors energy.Params in file form. Gamma is a pointer so the file
// can distinguish "omitted, use the default" from an explicit 0 that disables
// the transmit-power coupling term.
type Energy struct {
	IdlePowerW float64  `yaml:"idle_power_w"`
	Alpha      float64  `yaml:"alpha"`
	Beta       float64  `yaml:"beta"`
	Gamma      *float64 `yaml:"gamma"`
	SimTimeS   float64  `yaml:"sim_time_s"`
	DelayRefMs float64  `yaml:"delay_ref_ms"`
	MinPowerW  float64  `yaml:"min_power_w"`
	MaxPowerW  float64  `yaml:"max_power_w"`

	Extended *Extended `yaml:"extended"`
}

// Extended is the power-dependent coefficient variant; supplying the block
// switches all three coefficients at once.
type Extended struct {
	PIdleBase float64 `yaml:"p_idle_base"`
	KIdle     float64 `yaml:"k_idle"`
	AlphaBase float64 `yaml:"alpha_base"`
	KAlpha    float64 `yaml:"k_alpha"`
	BetaBase  float64 `yaml:"beta_base"`
	KBeta     float64 `yaml:"k_beta"`
}

// Config is the root scenario file document.
type Config struct {
	Families  map[string][]string `yaml:"families"`
	AttrKeys  []string            `yaml:"attr_keys"`
	Marker    string              `yaml:"marker"`
	Energy    Energy              `yaml:"energy"`
	Scenarios []Scenario          `yaml:"scenarios"`
}

// Load reads and decodes a scenario file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &c, nil
}

// FamilyTable returns the configured families merged over the defaults:
// a configured family replaces the default alias list of the same label.
func (c *Config) FamilyTable() sweep.Families {
	fams := sweep.DefaultFamilies()
	for label, aliases := range c.Families {
		fams[label] = aliases
	}
	return fams
}

// Resolver builds the key resolver from the configured attribute names and
// marker pattern.
func (c *Config) Resolver() (*sweep.Resolver, error) {
	return sweep.NewResolver(c.AttrKeys, c.Marker)
}

// ModelParams translates the file form into energy.Params. An omitted gamma
// maps to -1, which energy.New treats as "use the default".
func (c *Config) ModelParams() *energy.Params {
	p := &energy.Params{
		PIdle:    c.Energy.IdlePowerW,
		Alpha:    c.Energy.Alpha,
		Beta:     c.Energy.Beta,
		Gamma:    -1,
		TSim:     c.Energy.SimTimeS,
		DelayRef: c.Energy.DelayRefMs,
		MinPower: c.Energy.MinPowerW,
		MaxPower: c.Energy.MaxPowerW,
	}
	if c.Energy.Gamma != nil {
		p.Gamma = *c.Energy.Gamma
	}
	if ext := c.Energy.Extended; ext != nil {
		p.Extended = &energy.Affine{
			PIdleBase: ext.PIdleBase,
			KIdle:     ext.KIdle,
			AlphaBase: ext.AlphaBase,
			KAlpha:    ext.KAlpha,
			BetaBase:  ext.BetaBase,
			KBeta:     ext.KBeta,
		}
	}
	return p
}
