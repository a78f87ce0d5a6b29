package clsurface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestGrid(t *testing.T) {
	s, err := Build(1.0, 1.0)
	require.NoError(t, err)

	g, err := s.Grid()
	require.NoError(t, err)

	assert.False(t, g.IsEmpty())
	assert.Equal(t, 9, g.VertexCount())
	assert.Equal(t, 4, g.QuadCount())
	require.Len(t, g.Vertices, 27)
	require.Len(t, g.Quads, 16)

	for q := 0; q < g.QuadCount(); q++ {
		corners := g.Quads[4*q : 4*q+4]
		seen := make(map[uint32]bool)
		for _, c := range corners {
			assert.Less(t, int(c), g.VertexCount())
			assert.False(t, seen[c], "quad %d repeats vertex %d", q, c)
			seen[c] = true
		}
		// corners in boundary order: unit sides
		for i := 0; i < 4; i++ {
			a, b := corners[i], corners[(i+1)%4]
			side := dist(
				Point{X: g.Vertices[3*a], Y: g.Vertices[3*a+1], Z: g.Vertices[3*a+2]},
				Point{X: g.Vertices[3*b], Y: g.Vertices[3*b+1], Z: g.Vertices[3*b+2]},
			)
			assert.True(t, scalar.EqualWithinAbs(side, 1.0, tol),
				"quad %d side %d has length %v", q, i, side)
		}
	}
}

func TestGridMatchesPositions(t *testing.T) {
	s, err := Build(1.0, 0.25)
	require.NoError(t, err)

	g, err := s.Grid()
	require.NoError(t, err)

	positions, err := s.Positions()
	require.NoError(t, err)
	require.Equal(t, len(positions), g.VertexCount())
	for i, p := range positions {
		assert.Equal(t, p.X, g.Vertices[3*i])
		assert.Equal(t, p.Y, g.Vertices[3*i+1])
		assert.Equal(t, p.Z, g.Vertices[3*i+2])
	}
}
