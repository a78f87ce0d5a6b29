package clsurface

// Grid is a flat-array view of the sampling surface, suitable for handing
// to downstream toolpath code without exposing mesh internals. All arrays
// are flat: Vertices has 3 floats per vertex (x,y,z), Quads has 4 vertex
// indices per bounded face in boundary order.
type Grid struct {
	Vertices []float64
	Quads    []uint32
}

// VertexCount returns the number of sample vertices.
func (g *Grid) VertexCount() int {
	return len(g.Vertices) / 3
}

// QuadCount returns the number of bounded faces.
func (g *Grid) QuadCount() int {
	return len(g.Quads) / 4
}

// IsEmpty returns true if the grid has no geometry.
func (g *Grid) IsEmpty() bool {
	return len(g.Vertices) == 0
}

// Grid flattens the surface into a Grid. Vertex indices in Quads refer to
// positions in Vertices in creation order, matching Positions.
func (s *Surface) Grid() (*Grid, error) {
	g := &Grid{
		Vertices: make([]float64, 0, 3*s.mesh.NumVertices()),
		Quads:    make([]uint32, 0, 4*(s.mesh.NumFaces()-1)),
	}
	for _, id := range s.mesh.Vertices() {
		vd, err := s.mesh.Vertex(id)
		if err != nil {
			return nil, err
		}
		g.Vertices = append(g.Vertices, vd.pos.X, vd.pos.Y, vd.pos.Z)
	}
	for _, f := range s.mesh.Faces() {
		if f == s.outer {
			continue
		}
		fd, err := s.mesh.FaceData(f)
		if err != nil {
			return nil, err
		}
		for _, c := range fd.corners {
			g.Quads = append(g.Quads, uint32(c))
		}
	}
	return g, nil
}
