package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/cellular-simulator/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.Equal(t, 0, cfg.Simulation.OverheadPercent)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.False(t, cfg.Tracing.Enabled)
	require.NoError(t, cfg.Validate())

	profiles, err := cfg.TowerProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 4)
	require.Equal(t, 16, profiles[model.Gen2G].UsersPerChannel)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Logging, cfg.Logging)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
simulation:
  overhead_percent: 10
  antennas_4g: 2
  antennas_5g: 8
profiles:
  3g:
    users_per_channel: 64
  5G:
    users_per_mhz: 40
logging:
  level: debug
  backend: zap
metrics:
  textfile: /tmp/cellsim.prom
`))
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Simulation.OverheadPercent)
	require.Equal(t, 2, cfg.Antennas(model.Gen4G))
	require.Equal(t, 8, cfg.Antennas(model.Gen5G))
	require.Equal(t, 0, cfg.Antennas(model.Gen2G))
	require.Equal(t, "zap", cfg.Logging.Backend)
	require.Equal(t, "/tmp/cellsim.prom", cfg.Metrics.Textfile)

	profiles, err := cfg.TowerProfiles()
	require.NoError(t, err)
	require.Equal(t, 64, profiles[model.Gen3G].UsersPerChannel)
	require.Equal(t, 320, profiles[model.Gen3G].Capacity(1))
	require.Equal(t, 40, profiles[model.Gen5G].UsersPerMHz)
	require.Equal(t, 16, profiles[model.Gen2G].UsersPerChannel, "untouched profiles keep defaults")
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative overhead": "simulation:\n  overhead_percent: -1\n",
		"negative antennas": "simulation:\n  antennas_4g: -2\n",
		"unknown profile":   "profiles:\n  6G:\n    users_per_channel: 3\n",
		"zero width":        "profiles:\n  4G:\n    channel_bandwidth_khz: 0\n",
		"bad sample ratio":  "tracing:\n  sample_ratio: 3\n",
		"huge overhead":     "simulation:\n  overhead_percent: 9223372036854775807\n",
		"huge users":        "profiles:\n  2G:\n    users_per_channel: 4000000000000000000\n",
		"huge capacity":     "profiles:\n  5G:\n    users_per_mhz: 1000000\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		require.Error(t, err, name)
		require.True(t, errors.Is(err, model.ErrNetwork), "%s: %v should be a network error", name, err)
	}

	_, err := Parse([]byte("simulation: [not, a, map]"))
	require.Error(t, err)
}

func TestLoadFromFileAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  overhead_percent: 25\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Simulation.OverheadPercent)

	out, err := cfg.Marshal()
	require.NoError(t, err)
	back, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, cfg.Simulation, back.Simulation)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
