package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/internal/harness"
	"github.com/Sumatoshi-tech/bstset/internal/report"
)

func sampleResults() []harness.Result {
	return []harness.Result{
		{Backend: "owned", Ops: 100000, Rounds: 3, Min: 20 * time.Millisecond, Mean: 25 * time.Millisecond, Len: 41000},
		{
			Backend: "arena", Ops: 100000, Rounds: 3, Min: 30 * time.Millisecond, Mean: 31 * time.Millisecond,
			Len: 41000, ArenaSlots: 52345,
		},
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "owned")
	assert.Contains(t, out, "100,000")
	assert.Contains(t, out, "52,345")
	assert.Contains(t, out, "20ms")
	assert.Contains(t, out, "5 Mop/s")
	assert.Contains(t, out, "Total: 2 backends")
	assert.Contains(t, out, "ARENA SLOTS")
	assert.NotContains(t, out, "TOTAL")
}

func TestWriteTable_KeepsGivenOrder(t *testing.T) {
	t.Parallel()

	results := sampleResults()
	results[0], results[1] = results[1], results[0]

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, results))

	out := buf.String()
	assert.Less(t, strings.Index(out, "arena"), strings.Index(out, "owned"))
}

func TestWriteChartFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bench.html")
	require.NoError(t, report.WriteChartFile(path, sampleResults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "bstset bench")
	assert.Contains(t, html, "arena")
	assert.Contains(t, html, "100000 ops, 3 rounds")
}

func TestBuildChart_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteChart(&buf, nil))
	assert.Contains(t, buf.String(), "no results")
}
