package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/cmd/bstset/commands"
	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

// run executes the root command with an empty config file so that no
// .bstset.yaml from the working directory leaks into the test.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o600))

	var stdout, stderr bytes.Buffer

	root := commands.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath, "--quiet"}, args...))

	err := root.Execute()

	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bstset ")
	assert.Contains(t, out, "commit:")
}

func TestCrossCheck_Pass(t *testing.T) {
	t.Parallel()

	out, err := run(t, "crosscheck", "--ops", "3000", "--seed", "4", "-b", "btree,owned,arena,tidwall")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS [btree owned arena tidwall]")
	assert.Contains(t, out, "ops: 3,000")
	assert.NotContains(t, out, "hibernations")
}

func TestCrossCheck_HibernateArena(t *testing.T) {
	t.Parallel()

	out, err := run(t, "crosscheck", "--ops", "800", "--hibernate-arena")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "hibernations:")
}

func TestCrossCheck_Errors(t *testing.T) {
	t.Parallel()

	_, err := run(t, "crosscheck", "-b", "owned,skiplist")
	require.ErrorIs(t, err, engines.ErrUnknownBackend)

	_, err = run(t, "crosscheck", "-b", "owned")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid flags")
}

func TestBench_WritesTableChartAndMetrics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	chart := filepath.Join(dir, "bench.html")
	metrics := filepath.Join(dir, "bench.prom")

	out, err := run(t, "bench", "--ops", "1500", "--rounds", "2",
		"--chart", chart, "--metrics-file", metrics)
	require.NoError(t, err)

	for _, name := range engines.Names() {
		assert.Contains(t, out, name)
	}

	assert.Contains(t, out, "2 rounds")
	assert.FileExists(t, chart)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bstset_ops")
}

func TestWorkloadGenerate_ThenReplay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ops.yaml")

	out, err := run(t, "workload", "generate", "--out", path, "--ops", "600", "--crosscheck")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 600 ops")

	file, err := workload.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, file.Ops, 600)
	assert.Equal(t, workload.CrossCheckMix(), file.Mix)

	out, err = run(t, "crosscheck", "--ops-file", path, "-b", "owned,arena")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS [owned arena]")

	out, err = run(t, "bench", "--ops-file", path, "--rounds", "1", "-b", "arena")
	require.NoError(t, err)
	assert.Contains(t, out, "600 ops")
}

func TestWorkloadGenerate_RequiresOut(t *testing.T) {
	t.Parallel()

	_, err := run(t, "workload", "generate")
	require.ErrorIs(t, err, commands.ErrNoOutput)
}
