package workload_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/internal/workload"
)

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := workload.Generate(2000, 7, workload.BenchMix())
	require.NoError(t, err)

	second, err := workload.Generate(2000, 7, workload.BenchMix())
	require.NoError(t, err)

	other, err := workload.Generate(2000, 8, workload.BenchMix())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestGenerate_CrossCheckMix(t *testing.T) {
	t.Parallel()

	ops, err := workload.Generate(4000, 1, workload.CrossCheckMix())
	require.NoError(t, err)

	// No "existing" categories, so every draw emits exactly one op.
	require.Len(t, ops, 4000)

	counts := workload.Counts(ops)
	assert.Zero(t, counts[workload.KindContains])
	assert.Positive(t, counts[workload.KindCheckpoint])
	assert.Greater(t, counts[workload.KindInsert], counts[workload.KindRemove])
}

func TestGenerate_ExistingTargetsTrackedElements(t *testing.T) {
	t.Parallel()

	mix := workload.Mix{InsertRandom: 1, RemoveExisting: 1, ContainsExisting: 1}

	ops, err := workload.Generate(3000, 3, mix)
	require.NoError(t, err)

	live := map[int32]bool{}

	for idx, op := range ops {
		switch op.Kind {
		case workload.KindInsert:
			live[op.Elem] = true
		case workload.KindRemove:
			require.True(t, live[op.Elem], "op %d removes untracked %d", idx, op.Elem)
			delete(live, op.Elem)
		case workload.KindContains:
			require.True(t, live[op.Elem], "op %d looks up untracked %d", idx, op.Elem)
		case workload.KindCheckpoint:
			t.Fatalf("unexpected checkpoint at %d", idx)
		}
	}
}

func TestGenerate_EmptyShadowSkipsExisting(t *testing.T) {
	t.Parallel()

	ops, err := workload.Generate(100, 1, workload.Mix{RemoveExisting: 1})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestGenerate_NegativeOps(t *testing.T) {
	t.Parallel()

	_, err := workload.Generate(-1, 1, workload.BenchMix())
	require.ErrorIs(t, err, workload.ErrNegativeOps)
}

func TestMix_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mix  workload.Mix
		want error
	}{
		{name: "bench", mix: workload.BenchMix()},
		{name: "crosscheck", mix: workload.CrossCheckMix()},
		{name: "empty", mix: workload.Mix{}, want: workload.ErrEmptyMix},
		{name: "negative", mix: workload.Mix{InsertRandom: 2, Checkpoint: -1}, want: workload.ErrNegativeWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.mix.Validate()
			if tt.want == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.want)

			_, genErr := workload.Generate(10, 1, tt.mix)
			assert.ErrorIs(t, genErr, tt.want)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	file := workload.File{
		Seed: 9,
		Mix:  workload.CrossCheckMix(),
		Ops: []workload.Op{
			workload.Insert(5),
			workload.Insert(-3),
			workload.Contains(5),
			workload.Checkpoint(),
			workload.Remove(5),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, workload.Save(&buf, file))
	assert.Contains(t, buf.String(), "kind: checkpoint")

	loaded, err := workload.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, file, loaded)
}

func TestSaveLoadFile(t *testing.T) {
	t.Parallel()

	ops, err := workload.Generate(50, 2, workload.BenchMix())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ops.yaml")
	file := workload.File{Seed: 2, Mix: workload.BenchMix(), Ops: ops}

	require.NoError(t, workload.SaveFile(path, file))

	loaded, err := workload.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, file, loaded)
}

func TestLoad_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := workload.Load(strings.NewReader("seed: 1\nops:\n  - kind: upsert\n    elem: 3\n"))
	require.ErrorIs(t, err, workload.ErrUnknownKind)
}

func TestOpString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "insert(4)", workload.Insert(4).String())
	assert.Equal(t, "checkpoint", workload.Checkpoint().String())
}
