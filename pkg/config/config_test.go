package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmelo/scasweep/pkg/sweep"
)

func writeCfg(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	c, err := Load(writeCfg(t, `
families:
  throughput: ["customthroughput"]
attr_keys: ["power"]
marker: 'TX(\d+)'
energy:
  idle_power_w: 90
  alpha: 0.04
  beta: 0.3
  gamma: 0
  sim_time_s: 25
  delay_ref_ms: 12
  max_power_w: 500
scenarios:
  - name: Toy1
    root: /results/Toy1
  - name: Toy2
    root: /results/Toy2
`))
	require.NoError(t, err)

	require.Len(t, c.Scenarios, 2)
	assert.Equal(t, "Toy1", c.Scenarios[0].Name)

	p := c.ModelParams()
	assert.Equal(t, 90.0, p.PIdle)
	assert.Equal(t, 0.0, p.Gamma) // explicit zero survives
	assert.Equal(t, 25.0, p.TSim)
	assert.Equal(t, 500.0, p.MaxPower)
	assert.Nil(t, p.Extended)

	fams := c.FamilyTable()
	assert.Equal(t, []string{"customthroughput"}, fams[sweep.FamilyThroughput])
	// untouched families keep their defaults
	assert.NotEmpty(t, fams[sweep.FamilyDelay])

	r, err := c.Resolver()
	require.NoError(t, err)
	_, ok := r.Resolve("/x/TX26/0.sca", nil)
	assert.True(t, ok)
}

func TestLoad_GammaOmittedMeansDefault(t *testing.T) {
	c, err := Load(writeCfg(t, "energy:\n  idle_power_w: 80\n"))
	require.NoError(t, err)
	p := c.ModelParams()
	assert.Equal(t, -1.0, p.Gamma) // sentinel: energy.New falls back to 1.0
}

func TestLoad_ExtendedBlock(t *testing.T) {
	c, err := Load(writeCfg(t, `
energy:
  extended:
    p_idle_base: 80
    k_idle: 0.5
    alpha_base: 0.04
    k_alpha: 0.0001
    beta_base: 0.3
    k_beta: 0.005
`))
	require.NoError(t, err)
	p := c.ModelParams()
	require.NotNil(t, p.Extended)
	assert.Equal(t, 80.0, p.Extended.PIdleBase)
	assert.Equal(t, 0.005, p.Extended.KBeta)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeCfg(t, "scenarios: [unbalanced"))
	require.Error(t, err)
}
