package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(t *testing.T, shape string) Counts {
	t.Helper()
	snap, err := Snapshot()
	require.NoError(t, err)
	for _, c := range snap {
		if c.Shape == shape {
			return c
		}
	}
	return Counts{Shape: shape}
}

func TestShapeCounters(t *testing.T) {
	before := find(t, "test-shape")

	c := ForShape("test-shape")
	c.Record(true)
	c.Record(false)
	c.Record(true)

	after := find(t, "test-shape")
	assert.Equal(t, before.Tests+3, after.Tests)
	assert.Equal(t, before.Hits+2, after.Hits)
}

func TestSnapshotSorted(t *testing.T) {
	ForShape("b-shape").Record(false)
	ForShape("a-shape").Record(false)

	snap, err := Snapshot()
	require.NoError(t, err)
	for i := 1; i < len(snap); i++ {
		assert.Less(t, snap[i-1].Shape, snap[i].Shape)
	}
}
