package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkHunk(lstart, rstart int, kinds []Kind, contents []string) Hunk {
	h := Hunk{LStart: lstart, RStart: rstart}
	for i, k := range kinds {
		h.Lines = append(h.Lines, Line{Kind: k, Content: contents[i] + "\n"})
	}
	h.Normalize()
	return h
}

func TestHunkNormalizeComputesStops(t *testing.T) {
	h := mkHunk(1, 1, []Kind{KindContext, KindRemove, KindAdd, KindContext},
		[]string{"a", "b", "B", "c"})
	assert.Equal(t, 4, h.LStop)
	assert.Equal(t, 4, h.RStop)
}

func TestHunkInverseRoundTrip(t *testing.T) {
	h := mkHunk(1, 1, []Kind{KindContext, KindRemove, KindAdd, KindContext},
		[]string{"a", "b", "B", "c"})
	inv := h.Inverse().Inverse()
	require.Len(t, inv.Lines, len(h.Lines))
	assert.Equal(t, h.Lines, inv.Lines)
}

func TestHunkIsIdentity(t *testing.T) {
	h := mkHunk(1, 1, []Kind{KindContext, KindContext}, []string{"a", "b"})
	assert.True(t, h.IsIdentity())

	h2 := mkHunk(1, 1, []Kind{KindContext, KindRemove}, []string{"a", "b"})
	assert.False(t, h2.IsIdentity())
}

func TestHunkLcmpLine(t *testing.T) {
	h := mkHunk(5, 5, []Kind{KindContext, KindContext, KindContext}, []string{"a", "b", "c"})
	assert.Equal(t, 1, h.LcmpLine(4), "before range")
	assert.Equal(t, 0, h.LcmpLine(5), "inside range")
	assert.Equal(t, -1, h.LcmpLine(8), "at/after stop")
}

func TestHunkShrinkwrapDropsPureContext(t *testing.T) {
	h := mkHunk(1, 1, []Kind{KindContext, KindContext}, []string{"a", "b"})
	sw := h.Shrinkwrap()
	assert.True(t, sw.IsIdentity())
}
