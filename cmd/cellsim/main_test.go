package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunAllGenerations(t *testing.T) {
	code, out, errOut := runCLI(t, "", "run")
	require.Equal(t, 0, code, "stderr: %s", errOut)

	require.True(t, strings.HasPrefix(out, "=================================================\n CELLULAR NETWORK SIMULATOR\n OOPD Project - Monsoon 2025\n=================================================\n"))
	for _, want := range []string{
		"========== 2G COMMUNICATION SIMULATION ==========",
		"Total capacity: 80 users",
		"Total capacity: 160 users",
		"Total capacity: 12000 users",
		"Total capacity: 52800 users",
		"Cellular cores needed: 528",
		" SIMULATION COMPLETE",
	} {
		require.Contains(t, out, want)
	}
	require.NotContains(t, errOut, "Simulation Error")
}

func TestRunWithOverheadAndAntennaFlags(t *testing.T) {
	code, out, _ := runCLI(t, "", "--overhead", "10", "run", "--antennas-4g", "2")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Number of antennas: 2")
	require.Contains(t, out, "Total capacity: 6000 users")
	require.Contains(t, out, "Cellular cores needed: 581")
}

func TestRunReportsBadAntennasAndContinues(t *testing.T) {
	code, out, errOut := runCLI(t, "", "run", "--antennas-4g", "9")
	require.Equal(t, 0, code)
	require.Contains(t, errOut, "4G Simulation Error:")
	require.Contains(t, out, "Total capacity: 52800 users")
	require.NotContains(t, out, "Total capacity: 12000 users")
}

func TestRunPromptsForAntennas(t *testing.T) {
	code, out, _ := runCLI(t, "1\n42\n", "run", "--prompt")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Enter number of antennas for 4G (1-4) [default 4]: ")
	require.Contains(t, out, "Total capacity: 3000 users")
	// 42 is out of range for 5G, so the default of 16 applies.
	require.Contains(t, out, "Total capacity: 52800 users")
}

func TestTowerCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "tower", "3g")
	require.Equal(t, 0, code)
	require.Contains(t, out, "========== 3G COMMUNICATION SIMULATION ==========")
	require.Contains(t, out, "Technology: CDMA (Code Division Multiple Access)")
	require.NotContains(t, out, "SIMULATION COMPLETE")

	code, out, _ = runCLI(t, "", "tower", "5G", "--antennas", "1")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Number of antennas: 1")
}

func TestFatalErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown generation", []string{"tower", "6G"}, "unknown generation"},
		{"antennas out of range", []string{"tower", "4G", "--antennas", "5"}, "invalid configuration"},
		{"negative overhead", []string{"--overhead", "-1", "run"}, "overhead_percent"},
		{"overhead too large", []string{"--overhead", "9223372036854775807", "tower", "2G"}, "overhead_percent"},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "run"}, "failed to read config"},
		{"unknown command", []string{"launch"}, "unknown command"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, "", tc.args...)
			require.Equal(t, 1, code)
			require.Contains(t, errOut, "Fatal Error: ")
			require.Contains(t, errOut, tc.want)
		})
	}
}

func TestConfigFileOverridesProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellsim.yaml")
	cfg := `
simulation:
  overhead_percent: 0
  antennas_5g: 8
profiles:
  2G:
    users_per_channel: 8
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	code, out, errOut := runCLI(t, "", "--config", path, "run")
	require.Equal(t, 0, code, "stderr: %s", errOut)
	require.Contains(t, out, "Users per channel: 8")
	require.Contains(t, out, "Total capacity: 40 users")
	require.Contains(t, out, "Number of antennas: 8")
}

func TestOversizedProfileFailsCleanly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellsim.yaml")
	cfg := "profiles:\n  2G:\n    users_per_channel: 4000000000000000000\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	code, out, errOut := runCLI(t, "", "--config", path, "tower", "2G")
	require.Equal(t, 1, code)
	require.Empty(t, out)
	require.Contains(t, errOut, "Fatal Error: ")
	require.Contains(t, errOut, "capacity at 1 antennas exceeds")
}

func TestCompareCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "compare")
	require.Equal(t, 0, code)
	require.Contains(t, out, "Gen  | Channels")
	require.Contains(t, out, "Total cores: 652")
}

func TestProfilesCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "profiles")
	require.Equal(t, 0, code)

	var got map[string]map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 4)
	require.Equal(t, 16, got["5G"]["max_antennas"])
	require.Equal(t, 1800, got["5G"]["secondary_band_mhz"])
	require.NotContains(t, got["2G"], "secondary_band_mhz")
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellsim.prom")
	code, _, _ := runCLI(t, "", "--metrics-file", path, "tower", "2G")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `cellsim_simulations_total{generation="2G",outcome="ok"} 1`)
	require.Contains(t, string(data), `cellsim_tower_capacity_users{generation="2G"} 80`)
}
