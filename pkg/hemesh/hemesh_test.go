package hemesh

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadFixture is a square with one bounded inner face and one outer face:
// four counter-clockwise inner half-edges, four clockwise outer half-edges,
// pairwise twinned.
type quadFixture struct {
	m            *Mesh[string, struct{}, struct{}]
	v            [4]VertexID
	in, out      [4]EdgeID
	inner, outer FaceID
}

func makeQuad(t *testing.T) *quadFixture {
	t.Helper()
	q := &quadFixture{m: New[string, struct{}, struct{}]()}
	names := [4]string{"a", "b", "c", "d"}
	for i, n := range names {
		q.v[i] = q.m.AddVertex(n)
	}
	q.inner = q.m.AddFace(NoEdge, struct{}{})
	q.outer = q.m.AddFace(NoEdge, struct{}{})
	for i := 0; i < 4; i++ {
		var err error
		q.in[i], err = q.m.AddEdge(q.v[i], q.v[(i+1)%4], struct{}{})
		require.NoError(t, err)
		q.out[i], err = q.m.AddEdge(q.v[(i+1)%4], q.v[i], struct{}{})
		require.NoError(t, err)
		require.NoError(t, q.m.SetTwin(q.in[i], q.out[i]))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, q.m.SetFace(q.in[i], q.inner))
		require.NoError(t, q.m.SetFace(q.out[i], q.outer))
		require.NoError(t, q.m.SetNext(q.in[i], q.in[(i+1)%4]))
		require.NoError(t, q.m.SetNext(q.out[(i+1)%4], q.out[i]))
	}
	require.NoError(t, q.m.SetFaceEdge(q.inner, q.in[0]))
	require.NoError(t, q.m.SetFaceEdge(q.outer, q.out[0]))
	return q
}

func TestVertexIDsArePerMesh(t *testing.T) {
	m1 := New[string, struct{}, struct{}]()
	m2 := New[string, struct{}, struct{}]()

	// two independent meshes hand out the same sequence
	assert.Equal(t, VertexID(0), m1.AddVertex("a"))
	assert.Equal(t, VertexID(1), m1.AddVertex("b"))
	assert.Equal(t, VertexID(0), m2.AddVertex("x"))

	got, err := m1.Vertex(0)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	got, err = m2.Vertex(0)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestAddEdgeUnknownVertex(t *testing.T) {
	m := New[string, struct{}, struct{}]()
	v := m.AddVertex("a")

	_, err := m.AddEdge(v, VertexID(42), struct{}{})
	assert.ErrorIs(t, err, ErrUnknownEntity)
	_, err = m.AddEdge(NoVertex, v, struct{}{})
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.Equal(t, 0, m.NumEdges())
}

func TestSetTwin(t *testing.T) {
	newPair := func(t *testing.T) (*Mesh[string, struct{}, struct{}], EdgeID, EdgeID) {
		m := New[string, struct{}, struct{}]()
		a := m.AddVertex("a")
		b := m.AddVertex("b")
		e1, err := m.AddEdge(a, b, struct{}{})
		require.NoError(t, err)
		e2, err := m.AddEdge(b, a, struct{}{})
		require.NoError(t, err)
		return m, e1, e2
	}

	t.Run("sets both directions", func(t *testing.T) {
		m, e1, e2 := newPair(t)
		require.NoError(t, m.SetTwin(e1, e2))
		topo, err := m.Edge(e1)
		require.NoError(t, err)
		assert.Equal(t, e2, topo.Twin)
		topo, err = m.Edge(e2)
		require.NoError(t, err)
		assert.Equal(t, e1, topo.Twin)
	})

	t.Run("idempotent for the same pair", func(t *testing.T) {
		m, e1, e2 := newPair(t)
		require.NoError(t, m.SetTwin(e1, e2))
		require.NoError(t, m.SetTwin(e1, e2))
		require.NoError(t, m.SetTwin(e2, e1))
	})

	t.Run("rejects conflicting reassignment", func(t *testing.T) {
		m, e1, e2 := newPair(t)
		require.NoError(t, m.SetTwin(e1, e2))
		a, _ := m.Edge(e1)
		e3, err := m.AddEdge(a.Dst, a.Src, struct{}{})
		require.NoError(t, err)
		assert.ErrorIs(t, m.SetTwin(e1, e3), ErrCorrupt)
	})

	t.Run("rejects self twin", func(t *testing.T) {
		m, e1, _ := newPair(t)
		assert.ErrorIs(t, m.SetTwin(e1, e1), ErrCorrupt)
	})

	t.Run("rejects non-mirrored endpoints", func(t *testing.T) {
		m, e1, _ := newPair(t)
		a, _ := m.Edge(e1)
		e3, err := m.AddEdge(a.Src, a.Dst, struct{}{})
		require.NoError(t, err)
		assert.ErrorIs(t, m.SetTwin(e1, e3), ErrCorrupt)
	})
}

func TestFaceBoundary(t *testing.T) {
	q := makeQuad(t)

	loop, err := q.m.FaceBoundary(q.inner)
	require.NoError(t, err)
	want := []EdgeID{q.in[0], q.in[1], q.in[2], q.in[3]}
	if diff := cmp.Diff(want, loop); diff != "" {
		t.Errorf("inner boundary mismatch (-want +got):\n%s", diff)
	}

	loop, err = q.m.FaceBoundary(q.outer)
	require.NoError(t, err)
	assert.Len(t, loop, 4)
}

func TestFaceBoundaryDetectsCorruption(t *testing.T) {
	t.Run("cycle does not close", func(t *testing.T) {
		q := makeQuad(t)
		// in[1] now loops on itself and the walk can never return to in[0]
		require.NoError(t, q.m.SetNext(q.in[1], q.in[1]))
		_, err := q.m.FaceBoundary(q.inner)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("boundary leaves the face", func(t *testing.T) {
		q := makeQuad(t)
		require.NoError(t, q.m.SetNext(q.in[1], q.out[3]))
		_, err := q.m.FaceBoundary(q.inner)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("unknown face", func(t *testing.T) {
		q := makeQuad(t)
		_, err := q.m.FaceBoundary(FaceID(99))
		assert.ErrorIs(t, err, ErrUnknownEntity)
	})
}

func TestInsertVertexInEdge(t *testing.T) {
	q := makeQuad(t)

	mid, err := q.m.InsertVertexInEdge(q.in[0], "ab-mid")
	require.NoError(t, err)

	assert.Equal(t, 5, q.m.NumVertices())
	assert.Equal(t, 10, q.m.NumEdges(), "split replaces 2 half-edges with 4")
	assert.Equal(t, 2, q.m.NumFaces())

	// both boundaries gained exactly one edge
	inner, err := q.m.FaceBoundary(q.inner)
	require.NoError(t, err)
	require.Len(t, inner, 5)
	outer, err := q.m.FaceBoundary(q.outer)
	require.NoError(t, err)
	require.Len(t, outer, 5)

	// the inner boundary passes v0 -> mid -> v1
	first, err := q.m.Edge(inner[0])
	require.NoError(t, err)
	second, err := q.m.Edge(inner[1])
	require.NoError(t, err)
	assert.Equal(t, q.v[0], first.Src)
	assert.Equal(t, mid, first.Dst)
	assert.Equal(t, mid, second.Src)
	assert.Equal(t, q.v[1], second.Dst)

	// predecessor was rewired into the first new half
	pred, err := q.m.Edge(q.in[3])
	require.NoError(t, err)
	assert.Equal(t, inner[0], pred.Next)

	// new halves are twinned crosswise and inherit faces
	for _, e := range inner {
		topo, err := q.m.Edge(e)
		require.NoError(t, err)
		assert.Equal(t, q.inner, topo.Face)
		twin, err := q.m.Edge(topo.Twin)
		require.NoError(t, err)
		assert.Equal(t, e, twin.Twin)
		assert.Equal(t, q.outer, twin.Face)
	}

	require.NoError(t, q.m.Check())
}

func TestInsertVertexInEdgeNoTwin(t *testing.T) {
	m := New[string, struct{}, struct{}]()
	a := m.AddVertex("a")
	b := m.AddVertex("b")
	e, err := m.AddEdge(a, b, struct{}{})
	require.NoError(t, err)

	_, err = m.InsertVertexInEdge(e, "mid")
	assert.ErrorIs(t, err, ErrCorrupt)

	var topoErr *TopologyError
	require.ErrorAs(t, err, &topoErr)
	assert.Equal(t, "edge", topoErr.Kind)
	assert.Equal(t, int(e), topoErr.ID)
}

func TestInsertVertexInEdgeUnknown(t *testing.T) {
	q := makeQuad(t)
	_, err := q.m.InsertVertexInEdge(EdgeID(99), "x")
	assert.ErrorIs(t, err, ErrUnknownEntity)

	// a retired edge is unknown too
	_, err = q.m.InsertVertexInEdge(q.in[0], "mid")
	require.NoError(t, err)
	_, err = q.m.InsertVertexInEdge(q.in[0], "again")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestSnapshotsExcludeRetired(t *testing.T) {
	q := makeQuad(t)
	_, err := q.m.InsertVertexInEdge(q.in[0], "mid")
	require.NoError(t, err)

	edges := q.m.Edges()
	assert.Len(t, edges, 10)
	assert.NotContains(t, edges, q.in[0])
	assert.NotContains(t, edges, q.out[0])

	assert.Len(t, q.m.Vertices(), 5)
	assert.Len(t, q.m.Faces(), 2)
}

func TestRemoveFace(t *testing.T) {
	q := makeQuad(t)
	require.NoError(t, q.m.RemoveFace(q.inner))

	assert.Equal(t, 1, q.m.NumFaces())
	assert.ErrorIs(t, q.m.RemoveFace(q.inner), ErrUnknownEntity)
	_, err := q.m.FaceBoundary(q.inner)
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.NotContains(t, q.m.Faces(), q.inner)
}

func TestCheck(t *testing.T) {
	t.Run("valid quad passes", func(t *testing.T) {
		q := makeQuad(t)
		require.NoError(t, q.m.Check())
	})

	t.Run("missing twin", func(t *testing.T) {
		m := New[string, struct{}, struct{}]()
		a := m.AddVertex("a")
		b := m.AddVertex("b")
		_, err := m.AddEdge(a, b, struct{}{})
		require.NoError(t, err)
		assert.ErrorIs(t, m.Check(), ErrCorrupt)
	})

	t.Run("edge points at retired face", func(t *testing.T) {
		q := makeQuad(t)
		// retire the inner face without repartitioning its boundary;
		// the inner half-edges now reference a dead face
		require.NoError(t, q.m.RemoveFace(q.inner))
		assert.ErrorIs(t, q.m.Check(), ErrCorrupt)
	})

	t.Run("broken next chain", func(t *testing.T) {
		q := makeQuad(t)
		require.NoError(t, q.m.SetNext(q.in[1], q.in[0]))
		err := q.m.Check()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCorrupt))
	})
}
