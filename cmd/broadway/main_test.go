package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `[
	{"Year": 2020, "Show_Theatre": "A", "Attendance": 80, "Total_Capacity": 100},
	{"Year": 2020, "Show_Theatre": "B", "Attendance": 40, "Total_Capacity": 100},
	{"Year": 2021, "Show_Theatre": "B", "Attendance": 50, "Total_Capacity": 100}
]`

// setupConfig writes a dataset and a config pointing at it.
func setupConfig(t *testing.T, dataset string) string {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "d3data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(dataset), 0o600))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "dataset:\n  url: \"" + dataPath + "\"\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAggregateCommand(t *testing.T) {
	cfg := setupConfig(t, sampleDataset)

	out, err := run(t, "aggregate", "--config", cfg, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"year":2020,"records":2,"mean_attendance":60,"mean_total_capacity":100,"attendance_proportion":0.6,"remaining_capacity":0.4},
		{"year":2021,"records":1,"mean_attendance":50,"mean_total_capacity":100,"attendance_proportion":0.5,"remaining_capacity":0.5}
	]`, out)

	out, err = run(t, "aggregate", "--config", cfg, "--theatre", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "20.0%")
	assert.NotContains(t, out, "2021")
}

func TestTheatresCommand(t *testing.T) {
	cfg := setupConfig(t, sampleDataset)

	out, err := run(t, "theatres", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "A", "B"}, strings.Fields(out))
}

func TestRenderCommand(t *testing.T) {
	cfg := setupConfig(t, sampleDataset)

	tests := []struct {
		format string
		prefix string
	}{
		{"svg", ""},
		{"animated", "<svg"},
		{"png", "\x89PNG"},
		{"html", ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), "chart."+tt.format)
			_, err := run(t, "render", "--config", cfg, "--format", tt.format, "--theatre", "B", "--out", outPath)
			require.NoError(t, err)

			data, err := os.ReadFile(outPath)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			assert.True(t, strings.HasPrefix(string(data), tt.prefix))
		})
	}
}

func TestRenderAnimatedToStdout(t *testing.T) {
	cfg := setupConfig(t, sampleDataset)

	out, err := run(t, "render", "--config", cfg, "--format", "animated", "--theatre", "A")
	require.NoError(t, err)
	assert.Contains(t, out, `data-selection="A"`)
	assert.Contains(t, out, "<animate")
}

func TestRenderUnknownFormat(t *testing.T) {
	cfg := setupConfig(t, sampleDataset)

	_, err := run(t, "render", "--config", cfg, "--format", "gif")
	assert.Error(t, err)
}

func TestLoadFailureStopsCommand(t *testing.T) {
	cfg := setupConfig(t, `[]`)

	outPath := filepath.Join(t.TempDir(), "chart.svg")
	_, err := run(t, "render", "--config", cfg, "--out", outPath)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no partial chart is written")
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := run(t, "theatres", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "broadway dev\n", out)
}
