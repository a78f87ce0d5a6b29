// Package clsurface builds the adaptive cutter-location sampling surface
// used for drop-cutter toolpath generation: a square half-edge mesh that is
// recursively quad-subdivided until every edge is at or below the sampling
// resolution. The finished vertex positions are the sample set handed to a
// drop-cutter projector; the projection itself stays outside this package.
package clsurface

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/sliptonic/opencamlib/pkg/hemesh"
)

// Point is a 3D sample position.
type Point = v3.Vec

// DefaultMaxDepth bounds subdivision recursion when Options.MaxDepth is
// left zero. Each level halves the edge length, so 32 levels shrink the
// initial edge by a factor of 2^32; hitting the cap means the sampling
// resolution was unreasonably small for the far extent.
const DefaultMaxDepth = 32

var (
	// ErrInvalidConfig is returned for non-positive far or min-sampling
	// parameters. Recoverable: retry with corrected values.
	ErrInvalidConfig = errors.New("clsurface: invalid configuration")

	// ErrDepthExceeded is returned when subdivision hits the depth cap
	// before reaching the sampling resolution.
	ErrDepthExceeded = errors.New("clsurface: subdivision depth limit exceeded")
)

// Options configures a surface build.
type Options struct {
	Far         float64 // half-extent of the bounding square
	MinSampling float64 // subdivide until every edge is at or below this length
	MaxDepth    int     // subdivision depth cap; 0 means DefaultMaxDepth
}

type vertex struct {
	pos Point
}

type edge struct{}

// face payload: the four corner vertices in boundary order. Subdivision
// needs the corners as they were created, independent of how many times a
// neighbor has already split the sides in between.
type face struct {
	corners [4]hemesh.VertexID
}

// Surface is the finished cutter-location sampling surface. It is built
// once by Build and then read; mutating accessors are limited to Project.
// Not safe for concurrent mutation.
type Surface struct {
	mesh  *hemesh.Mesh[vertex, edge, face]
	outer hemesh.FaceID
	opts  Options
}

// Build constructs the bounding square of half-extent far and subdivides
// every bounded face until all edges are at or below minSampling. This is
// the single entry point needed by projector callers.
func Build(far, minSampling float64) (*Surface, error) {
	return BuildWithOptions(Options{Far: far, MinSampling: minSampling})
}

// BuildWithOptions is Build with an explicit recursion depth cap.
// Any structural-consistency failure during subdivision aborts the build;
// a partially refined mesh is never returned.
func BuildWithOptions(opts Options) (*Surface, error) {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Far <= 0 || opts.MinSampling <= 0 || opts.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: far=%v min_sampling=%v max_depth=%d",
			ErrInvalidConfig, opts.Far, opts.MinSampling, opts.MaxDepth)
	}
	s := &Surface{
		mesh: hemesh.New[vertex, edge, face](),
		opts: opts,
	}
	if err := s.initBoundingQuad(); err != nil {
		return nil, fmt.Errorf("clsurface: build bounding quad: %w", err)
	}
	if err := s.subdivide(); err != nil {
		return nil, fmt.Errorf("clsurface: subdivide: %w", err)
	}
	return s, nil
}

// initBoundingQuad creates the four corner vertices at (±far, ±far, 0),
// the bounded inner face, the unbounded outer face, and the eight pairwise
// twinned half-edges:
//
//	b   e1   a
//	e2       e4
//	c   e3   d
//
// The inner cycle e1..e4 runs counter-clockwise, the outer cycle clockwise.
func (s *Surface) initBoundingQuad() error {
	far := s.opts.Far
	m := s.mesh
	a := m.AddVertex(vertex{pos: Point{X: far, Y: far}})
	b := m.AddVertex(vertex{pos: Point{X: -far, Y: far}})
	c := m.AddVertex(vertex{pos: Point{X: -far, Y: -far}})
	d := m.AddVertex(vertex{pos: Point{X: far, Y: -far}})

	inner := m.AddFace(hemesh.NoEdge, face{corners: [4]hemesh.VertexID{a, b, c, d}})
	outer := m.AddFace(hemesh.NoEdge, face{})
	s.outer = outer

	ends := [4][2]hemesh.VertexID{{a, b}, {b, c}, {c, d}, {d, a}}
	var in, out [4]hemesh.EdgeID
	for i, e := range ends {
		var err error
		if in[i], err = m.AddEdge(e[0], e[1], edge{}); err != nil {
			return err
		}
		if out[i], err = m.AddEdge(e[1], e[0], edge{}); err != nil {
			return err
		}
		if err = m.SetTwin(in[i], out[i]); err != nil {
			return err
		}
	}
	for i := 0; i < 4; i++ {
		if err := m.SetFace(in[i], inner); err != nil {
			return err
		}
		if err := m.SetFace(out[i], outer); err != nil {
			return err
		}
		// inner cycle counter-clockwise, outer cycle the reverse
		if err := m.SetNext(in[i], in[(i+1)%4]); err != nil {
			return err
		}
		if err := m.SetNext(out[(i+1)%4], out[i]); err != nil {
			return err
		}
	}
	if err := m.SetFaceEdge(inner, in[0]); err != nil {
		return err
	}
	return m.SetFaceEdge(outer, out[0])
}

// Outer reports whether f is the unbounded outer face.
func (s *Surface) Outer(f hemesh.FaceID) bool {
	return f == s.outer
}

// NumVertices returns the number of sample vertices.
func (s *Surface) NumVertices() int {
	return s.mesh.NumVertices()
}

// NumEdges returns the number of live half-edges.
func (s *Surface) NumEdges() int {
	return s.mesh.NumEdges()
}

// NumFaces returns the number of live faces, the outer face included.
func (s *Surface) NumFaces() int {
	return s.mesh.NumFaces()
}

// Options returns the configuration the surface was built with, with
// defaults applied.
func (s *Surface) Options() Options {
	return s.opts
}

// Positions returns the position of every vertex in creation order.
func (s *Surface) Positions() ([]Point, error) {
	out := make([]Point, 0, s.mesh.NumVertices())
	for _, id := range s.mesh.Vertices() {
		vd, err := s.mesh.Vertex(id)
		if err != nil {
			return nil, err
		}
		out = append(out, vd.pos)
	}
	return out, nil
}

// Edges returns every live half-edge as a (source, target) position pair.
func (s *Surface) Edges() ([][2]Point, error) {
	out := make([][2]Point, 0, s.mesh.NumEdges())
	for _, id := range s.mesh.Edges() {
		e, err := s.mesh.Edge(id)
		if err != nil {
			return nil, err
		}
		src, err := s.mesh.Vertex(e.Src)
		if err != nil {
			return nil, err
		}
		dst, err := s.mesh.Vertex(e.Dst)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]Point{src.pos, dst.pos})
	}
	return out, nil
}

// BoundedFaces returns the boundary vertex loop of every bounded face.
func (s *Surface) BoundedFaces() ([][]Point, error) {
	var out [][]Point
	for _, f := range s.mesh.Faces() {
		if f == s.outer {
			continue
		}
		loop, err := s.mesh.FaceBoundary(f)
		if err != nil {
			return nil, err
		}
		ring := make([]Point, 0, len(loop))
		for _, e := range loop {
			topo, err := s.mesh.Edge(e)
			if err != nil {
				return nil, err
			}
			vd, err := s.mesh.Vertex(topo.Src)
			if err != nil {
				return nil, err
			}
			ring = append(ring, vd.pos)
		}
		out = append(out, ring)
	}
	return out, nil
}

// Validate runs the mesh self-consistency walk plus the quad policy:
// every bounded face's boundary length must be a multiple of 4.
func (s *Surface) Validate() error {
	if err := s.mesh.Check(); err != nil {
		return err
	}
	for _, f := range s.mesh.Faces() {
		if f == s.outer {
			continue
		}
		loop, err := s.mesh.FaceBoundary(f)
		if err != nil {
			return err
		}
		if len(loop)%4 != 0 {
			return fmt.Errorf("%w: face %d boundary length %d is not a multiple of 4",
				hemesh.ErrCorrupt, f, len(loop))
		}
	}
	return nil
}

// String returns a diagnostic summary.
func (s *Surface) String() string {
	return fmt.Sprintf("CutterLocationSurface (nVerts=%d, nEdges=%d)",
		s.mesh.NumVertices(), s.mesh.NumEdges())
}

func mid(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

func dist(a, b Point) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
