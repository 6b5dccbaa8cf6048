package engines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bstset/internal/engines"
	"github.com/Sumatoshi-tech/bstset/pkg/orderedset"
)

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"arena", "btree", "owned", "tidwall"}, engines.Names())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	backends, err := engines.Resolve([]string{engines.Owned, engines.BTree})
	require.NoError(t, err)
	require.Len(t, backends, 2)
	assert.Equal(t, engines.Owned, backends[0].Name)
	assert.Equal(t, engines.BTree, backends[1].Name)

	for _, backend := range backends {
		set := backend.New()
		assert.True(t, set.Insert(3))
		assert.True(t, set.Insert(1))
		assert.Equal(t, []int32{1, 3}, orderedset.Collect(set))
	}
}

func TestResolve_Unknown(t *testing.T) {
	t.Parallel()

	_, err := engines.Resolve([]string{engines.Arena, "skiplist"})
	require.ErrorIs(t, err, engines.ErrUnknownBackend)
	assert.Contains(t, err.Error(), "skiplist")
	assert.False(t, engines.Known("skiplist"))
	assert.True(t, engines.Known(engines.Tidwall))
}
