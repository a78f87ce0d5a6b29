package clsurface

import "fmt"

// Projector computes the tool contact height for a planar sample position.
// Implementations (drop-cutter against a triangle soup, an SDF, a point
// cloud) live outside this package; the surface only needs the height.
type Projector interface {
	ContactHeight(p Point) (float64, error)
}

// ProjectorFunc adapts a plain function to the Projector interface.
type ProjectorFunc func(p Point) (float64, error)

func (f ProjectorFunc) ContactHeight(p Point) (float64, error) {
	return f(p)
}

// Project replaces the z coordinate of every vertex with the projector's
// contact height for that vertex. The x/y sample positions are untouched,
// so the mesh topology and edge planform stay valid. The first projector
// error aborts the pass.
func (s *Surface) Project(pr Projector) error {
	for _, id := range s.mesh.Vertices() {
		vd, err := s.mesh.Vertex(id)
		if err != nil {
			return err
		}
		z, err := pr.ContactHeight(vd.pos)
		if err != nil {
			return fmt.Errorf("clsurface: project vertex %d at (%v, %v): %w", id, vd.pos.X, vd.pos.Y, err)
		}
		vd.pos.Z = z
		if err := s.mesh.SetVertex(id, vd); err != nil {
			return err
		}
	}
	return nil
}
