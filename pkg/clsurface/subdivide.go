package clsurface

import (
	"fmt"

	"github.com/sliptonic/opencamlib/pkg/hemesh"
)

// subdivide refines every bounded face level by level until all edges are
// at or below the sampling resolution. Faces are processed in FIFO order
// so that siblings at one level finish before their children start; a side
// shared with an already-processed neighbor is then split at most once,
// and its midpoint vertex is reused instead of duplicated.
func (s *Surface) subdivide() error {
	type item struct {
		f     hemesh.FaceID
		depth int
	}
	var queue []item
	for _, f := range s.mesh.Faces() {
		if f != s.outer {
			queue = append(queue, item{f: f, depth: 0})
		}
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		fd, err := s.mesh.FaceData(it.f)
		if err != nil {
			return err
		}
		side, err := s.sideLength(fd)
		if err != nil {
			return err
		}
		if side <= s.opts.MinSampling {
			continue
		}
		if it.depth >= s.opts.MaxDepth {
			return fmt.Errorf("%w: depth %d, edge length %v still above min_sampling %v",
				ErrDepthExceeded, it.depth, side, s.opts.MinSampling)
		}
		children, err := s.subdivideFace(it.f, fd)
		if err != nil {
			return err
		}
		for _, c := range children {
			queue = append(queue, item{f: c, depth: it.depth + 1})
		}
	}
	return nil
}

// sideLength returns the longest corner-to-corner side of a quad face.
func (s *Surface) sideLength(fd face) (float64, error) {
	longest := 0.0
	for i := 0; i < 4; i++ {
		a, err := s.mesh.Vertex(fd.corners[i])
		if err != nil {
			return 0, err
		}
		b, err := s.mesh.Vertex(fd.corners[(i+1)%4])
		if err != nil {
			return 0, err
		}
		if d := dist(a.pos, b.pos); d > longest {
			longest = d
		}
	}
	return longest, nil
}

// subdivideFace splits the quad f into four child quads: midpoints on all
// four sides, one center vertex, and four spoke edge pairs from the
// midpoints to the center. The parent face is retired. Returns the four
// child faces in boundary order.
func (s *Surface) subdivideFace(f hemesh.FaceID, fd face) ([4]hemesh.FaceID, error) {
	var children [4]hemesh.FaceID
	m := s.mesh

	// Capture all four corner positions before any edge is mutated; the
	// center must average the original corners, never a midpoint created
	// while the boundary is being split.
	var corner [4]Point
	for i, vid := range fd.corners {
		vd, err := m.Vertex(vid)
		if err != nil {
			return children, err
		}
		corner[i] = vd.pos
	}
	center := Point{
		X: (corner[0].X + corner[1].X + corner[2].X + corner[3].X) / 4,
		Y: (corner[0].Y + corner[1].Y + corner[2].Y + corner[3].Y) / 4,
		Z: (corner[0].Z + corner[1].Z + corner[2].Z + corner[3].Z) / 4,
	}

	var mids [4]hemesh.VertexID
	for i := 0; i < 4; i++ {
		v, err := s.ensureMidpoint(f, fd.corners[i], fd.corners[(i+1)%4], mid(corner[i], corner[(i+1)%4]))
		if err != nil {
			return children, err
		}
		mids[i] = v
	}

	// Group the (now fully split) boundary into the four runs between
	// consecutive midpoints: segment i ends at mids[i].
	loop, err := m.FaceBoundary(f)
	if err != nil {
		return children, err
	}
	start := -1
	for k, e := range loop {
		topo, err := m.Edge(e)
		if err != nil {
			return children, err
		}
		if topo.Src == mids[3] {
			start = k
			break
		}
	}
	if start < 0 {
		return children, fmt.Errorf("%w: face %d boundary misses midpoint vertex %d",
			hemesh.ErrCorrupt, f, mids[3])
	}
	var segs [4][]hemesh.EdgeID
	seg := 0
	for k := 0; k < len(loop); k++ {
		e := loop[(start+k)%len(loop)]
		topo, err := m.Edge(e)
		if err != nil {
			return children, err
		}
		if seg >= 4 {
			return children, fmt.Errorf("%w: face %d boundary continues past last midpoint",
				hemesh.ErrCorrupt, f)
		}
		segs[seg] = append(segs[seg], e)
		if topo.Dst == mids[seg] {
			seg++
		}
	}
	if seg != 4 {
		return children, fmt.Errorf("%w: face %d boundary closes after %d of 4 midpoint runs",
			hemesh.ErrCorrupt, f, seg)
	}

	z := m.AddVertex(vertex{pos: center})
	var spokeIn, spokeOut [4]hemesh.EdgeID
	for i := 0; i < 4; i++ {
		if spokeIn[i], err = m.AddEdge(mids[i], z, edge{}); err != nil {
			return children, err
		}
		if spokeOut[i], err = m.AddEdge(z, mids[i], edge{}); err != nil {
			return children, err
		}
		if err = m.SetTwin(spokeIn[i], spokeOut[i]); err != nil {
			return children, err
		}
	}

	// Child i covers the run from mids[i-1] through corner i to mids[i],
	// closed by the spoke into the center and the spoke back out.
	for i := 0; i < 4; i++ {
		prev := (i + 3) % 4
		child := m.AddFace(spokeIn[i], face{
			corners: [4]hemesh.VertexID{mids[prev], fd.corners[i], mids[i], z},
		})
		run := segs[i]
		if err = m.SetNext(run[len(run)-1], spokeIn[i]); err != nil {
			return children, err
		}
		if err = m.SetNext(spokeIn[i], spokeOut[prev]); err != nil {
			return children, err
		}
		if err = m.SetNext(spokeOut[prev], run[0]); err != nil {
			return children, err
		}
		for _, e := range run {
			if err = m.SetFace(e, child); err != nil {
				return children, err
			}
		}
		if err = m.SetFace(spokeIn[i], child); err != nil {
			return children, err
		}
		if err = m.SetFace(spokeOut[prev], child); err != nil {
			return children, err
		}
		children[i] = child
	}
	if err := m.RemoveFace(f); err != nil {
		return children, err
	}
	return children, nil
}

// ensureMidpoint returns the vertex halfway between corners c0 and c1 on
// the boundary of f, inserting it if the side is still a single edge. A
// side already split by the neighboring face contributes its existing
// midpoint vertex; splitting it again would duplicate the sample point.
func (s *Surface) ensureMidpoint(f hemesh.FaceID, c0, c1 hemesh.VertexID, pos Point) (hemesh.VertexID, error) {
	m := s.mesh
	loop, err := m.FaceBoundary(f)
	if err != nil {
		return hemesh.NoVertex, err
	}
	start := -1
	for k, e := range loop {
		topo, err := m.Edge(e)
		if err != nil {
			return hemesh.NoVertex, err
		}
		if topo.Src == c0 {
			start = k
			break
		}
	}
	if start < 0 {
		return hemesh.NoVertex, fmt.Errorf("%w: corner %d not on boundary of face %d",
			hemesh.ErrCorrupt, c0, f)
	}
	// count the edges from c0 to c1 along the boundary
	n := 0
	for {
		if n >= len(loop) {
			return hemesh.NoVertex, fmt.Errorf("%w: corner %d unreachable from %d on face %d",
				hemesh.ErrCorrupt, c1, c0, f)
		}
		topo, err := m.Edge(loop[(start+n)%len(loop)])
		if err != nil {
			return hemesh.NoVertex, err
		}
		n++
		if topo.Dst == c1 {
			break
		}
	}
	if n == 1 {
		return m.InsertVertexInEdge(loop[start], vertex{pos: pos})
	}
	if n%2 != 0 {
		return hemesh.NoVertex, fmt.Errorf("%w: side %d-%d of face %d split into %d edges",
			hemesh.ErrCorrupt, c0, c1, f, n)
	}
	topo, err := m.Edge(loop[(start+n/2-1)%len(loop)])
	if err != nil {
		return hemesh.NoVertex, err
	}
	return topo.Dst, nil
}
