package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/internal/infrastructure"
	fixtures "shiprisk/internal/shared/testutil"
)

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), err
}

func setup(t *testing.T) (dir string, common []string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("SHIPRISK_CONFIG_FILE", "")
	t.Setenv("SHIPRISK_LOGGING_LEVEL", "error")
	t.Setenv("SHIPRISK_LOGGING_FILE_PATH", filepath.Join(dir, "logs", "shiprisk.log"))

	input := fixtures.WriteShipments(t, 100)
	common = []string{
		"--input", input,
		"--artifacts", filepath.Join(dir, "artifacts"),
		"--reports", filepath.Join(dir, "reports"),
		"--label-rule", "natural",
	}
	return dir, common
}

func TestRunCommand(t *testing.T) {
	dir, common := setup(t)

	out, err := execute(t, append([]string{"run"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logistic regression")
	assert.Contains(t, out, "Financial impact")

	for _, name := range []string{coefficientsFile, workbookFile} {
		info, err := os.Stat(filepath.Join(dir, "reports", name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}

	out, err = execute(t, append([]string{"report"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logistic regression")
}

func TestPhaseCommands(t *testing.T) {
	dir, common := setup(t)
	common = append(common, "--store", "badger")

	out, err := execute(t, append([]string{"prepare"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Prepared 100 rows")

	out, err = execute(t, append([]string{"fit"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Fitted")

	out, err = execute(t, append([]string{"evaluate", "--quiet"}, common...)...)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = os.Stat(filepath.Join(dir, "reports", workbookFile))
	assert.NoError(t, err)
}

func TestCommandErrors(t *testing.T) {
	_, common := setup(t)

	_, err := execute(t, append([]string{"evaluate"}, common...)...)
	assert.Error(t, err, "evaluate before prepare")

	_, err = execute(t, "run", "--input", filepath.Join(t.TempDir(), "missing.csv"),
		"--artifacts", filepath.Join(t.TempDir(), "a"), "--reports", filepath.Join(t.TempDir(), "r"))
	assert.Error(t, err)

	// The last occurrence of a flag wins, so the bad rule goes after common.
	_, err = execute(t, append(append([]string{"run"}, common...), "--label-rule", "sideways")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LabelRule")
}

func TestNewApp_ReleasesLogFileOnError(t *testing.T) {
	dir, _ := setup(t)
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	t.Setenv("SHIPRISK_LOGGING_OUTPUT", "file")
	t.Setenv("SHIPRISK_TELEMETRY_TRACE_EXPORTER", "stdout")
	t.Setenv("SHIPRISK_TELEMETRY_TRACE_FILE", filepath.Join(blocker, "trace.json"))

	_, err := newApp(overrides{
		artifacts: filepath.Join(dir, "artifacts"),
		reports:   filepath.Join(dir, "reports"),
	}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Empty(t, infrastructure.LogFileName())

	_, err = os.Stat(filepath.Join(dir, "logs", "shiprisk.log"))
	assert.NoError(t, err, "log file was opened before tracing failed")
}
