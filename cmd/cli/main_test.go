package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marketshare/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleScenario = "../../examples/scenarios/electricity.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTransformCommand(t *testing.T) {
	out, err := execute(t, "transform", "--share", "0.3", "--cap-limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "share=0.300000 cap_limit=1.000000 limited=0.300000\n", out)

	_, err = execute(t, "transform", "--share", "0.3", "--cap-limit", "0")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--scenario", exampleScenario)
	require.NoError(t, err)
	assert.Contains(t, out, "4 groups, 7 periods from 2005")

	_, err = execute(t, "validate", "--scenario", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunCommand_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ledger.csv")
	out, err := execute(t, "run", "--scenario", exampleScenario, "--out", path, "--json=false")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Wrote "), out)
	assert.NotContains(t, out, "warnings or errors recorded", "example calibration converges")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "period,year,group,option,good,"))
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := execute(t, "run", "--scenario", exampleScenario, "--json")
	require.NoError(t, err)

	var res simulation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "electricity", res.Sector)
	require.Len(t, res.Periods, 7)
	for _, p := range res.Periods {
		assert.InDelta(t, p.Demand, p.Output, 1e-6, "year %d", p.Year)
	}
}
