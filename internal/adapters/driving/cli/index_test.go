package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexesCmd_Empty(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "indexes")

	require.NoError(t, err)
	assert.Contains(t, out, "No indexes built yet.")
}

func TestIndexesCmd_ListsNames(t *testing.T) {
	a := setupTestApp(t)
	a.Indexes.(*fakeIndexes).names = []string{"idx_a", "idx_b"}

	out, err := run(t, "indexes")

	require.NoError(t, err)
	assert.Contains(t, out, "idx_a")
	assert.Contains(t, out, "idx_b")
}
