package hemesh

import "fmt"

// VertexID identifies a vertex in its owning mesh. IDs are handed out by a
// per-mesh counter in creation order and stay valid for the mesh lifetime;
// vertices are never deleted.
type VertexID int

// EdgeID identifies a directed half-edge in its owning mesh.
type EdgeID int

// FaceID identifies a face in its owning mesh.
type FaceID int

// Sentinel values for unset relations.
const (
	NoVertex VertexID = -1
	NoEdge   EdgeID   = -1
	NoFace   FaceID   = -1
)

// Edge is the topological record of a half-edge: its endpoints and its
// next, twin, and face relations. Unset relations hold the No* sentinels.
type Edge struct {
	Src, Dst VertexID
	Next     EdgeID
	Twin     EdgeID
	Face     FaceID
}

type vertexRec[V any] struct {
	data V
}

type edgeRec[E any] struct {
	topo    Edge
	data    E
	retired bool
}

type faceRec[F any] struct {
	edge    EdgeID
	data    F
	retired bool
}

// Mesh is a half-edge mesh with per-vertex payload V, per-edge payload E,
// and per-face payload F. The zero value is not usable; call New.
//
// All operations are synchronous and mutate only the receiver. The mesh is
// not safe for concurrent use.
type Mesh[V, E, F any] struct {
	verts []vertexRec[V]
	edges []edgeRec[E]
	faces []faceRec[F]

	liveEdges int
	liveFaces int
}

// New returns an empty mesh.
func New[V, E, F any]() *Mesh[V, E, F] {
	return &Mesh[V, E, F]{}
}

func (m *Mesh[V, E, F]) validVertex(v VertexID) error {
	if v < 0 || int(v) >= len(m.verts) {
		return fmt.Errorf("%w: vertex %d", ErrUnknownEntity, v)
	}
	return nil
}

func (m *Mesh[V, E, F]) validEdge(e EdgeID) error {
	if e < 0 || int(e) >= len(m.edges) || m.edges[e].retired {
		return fmt.Errorf("%w: edge %d", ErrUnknownEntity, e)
	}
	return nil
}

func (m *Mesh[V, E, F]) validFace(f FaceID) error {
	if f < 0 || int(f) >= len(m.faces) || m.faces[f].retired {
		return fmt.Errorf("%w: face %d", ErrUnknownEntity, f)
	}
	return nil
}

// AddVertex creates a vertex carrying the given payload and returns its ID.
func (m *Mesh[V, E, F]) AddVertex(data V) VertexID {
	m.verts = append(m.verts, vertexRec[V]{data: data})
	return VertexID(len(m.verts) - 1)
}

// AddEdge creates one directed half-edge from src to dst. The next, twin,
// and face relations start unset; the caller must wire them before the
// surrounding edit is complete.
func (m *Mesh[V, E, F]) AddEdge(src, dst VertexID, data E) (EdgeID, error) {
	if err := m.validVertex(src); err != nil {
		return NoEdge, err
	}
	if err := m.validVertex(dst); err != nil {
		return NoEdge, err
	}
	m.edges = append(m.edges, edgeRec[E]{
		topo: Edge{Src: src, Dst: dst, Next: NoEdge, Twin: NoEdge, Face: NoFace},
		data: data,
	})
	m.liveEdges++
	return EdgeID(len(m.edges) - 1), nil
}

// SetTwin declares e1 and e2 mutual twins, setting both directions.
// Re-declaring the same pair is a no-op; declaring a twin for an edge that
// already has a different one, or twinning edges whose endpoints do not
// mirror each other, is an error.
func (m *Mesh[V, E, F]) SetTwin(e1, e2 EdgeID) error {
	if err := m.validEdge(e1); err != nil {
		return err
	}
	if err := m.validEdge(e2); err != nil {
		return err
	}
	if e1 == e2 {
		return corruptEdge(e1, "edge cannot be its own twin")
	}
	a := &m.edges[e1].topo
	b := &m.edges[e2].topo
	if a.Twin == e2 && b.Twin == e1 {
		return nil
	}
	if a.Twin != NoEdge {
		return corruptEdge(e1, fmt.Sprintf("already twinned to edge %d", a.Twin))
	}
	if b.Twin != NoEdge {
		return corruptEdge(e2, fmt.Sprintf("already twinned to edge %d", b.Twin))
	}
	if a.Src != b.Dst || a.Dst != b.Src {
		return corruptEdge(e1, fmt.Sprintf("endpoints do not mirror edge %d", e2))
	}
	a.Twin = e2
	b.Twin = e1
	return nil
}

// SetNext sets the boundary successor of e.
func (m *Mesh[V, E, F]) SetNext(e, next EdgeID) error {
	if err := m.validEdge(e); err != nil {
		return err
	}
	if err := m.validEdge(next); err != nil {
		return err
	}
	m.edges[e].topo.Next = next
	return nil
}

// SetFace assigns e to face f.
func (m *Mesh[V, E, F]) SetFace(e EdgeID, f FaceID) error {
	if err := m.validEdge(e); err != nil {
		return err
	}
	if err := m.validFace(f); err != nil {
		return err
	}
	m.edges[e].topo.Face = f
	return nil
}

// AddFace creates a face bound to the given representative edge, which may
// be NoEdge if the boundary is wired later.
func (m *Mesh[V, E, F]) AddFace(rep EdgeID, data F) FaceID {
	m.faces = append(m.faces, faceRec[F]{edge: rep, data: data})
	m.liveFaces++
	return FaceID(len(m.faces) - 1)
}

// SetFaceEdge rebinds the representative boundary edge of f.
func (m *Mesh[V, E, F]) SetFaceEdge(f FaceID, e EdgeID) error {
	if err := m.validFace(f); err != nil {
		return err
	}
	if err := m.validEdge(e); err != nil {
		return err
	}
	m.faces[f].edge = e
	return nil
}

// RemoveFace retires a face. Its boundary edges are untouched; retiring
// them is the caller's responsibility (usually via InsertVertexInEdge or
// by repartitioning the boundary into new faces first).
func (m *Mesh[V, E, F]) RemoveFace(f FaceID) error {
	if err := m.validFace(f); err != nil {
		return err
	}
	m.faces[f].retired = true
	m.liveFaces--
	return nil
}

// Vertex returns the payload of v.
func (m *Mesh[V, E, F]) Vertex(v VertexID) (V, error) {
	var zero V
	if err := m.validVertex(v); err != nil {
		return zero, err
	}
	return m.verts[v].data, nil
}

// SetVertex replaces the payload of v.
func (m *Mesh[V, E, F]) SetVertex(v VertexID, data V) error {
	if err := m.validVertex(v); err != nil {
		return err
	}
	m.verts[v].data = data
	return nil
}

// Edge returns the topological record of e.
func (m *Mesh[V, E, F]) Edge(e EdgeID) (Edge, error) {
	if err := m.validEdge(e); err != nil {
		return Edge{}, err
	}
	return m.edges[e].topo, nil
}

// EdgeData returns the payload of e.
func (m *Mesh[V, E, F]) EdgeData(e EdgeID) (E, error) {
	var zero E
	if err := m.validEdge(e); err != nil {
		return zero, err
	}
	return m.edges[e].data, nil
}

// FaceEdge returns the representative boundary edge of f.
func (m *Mesh[V, E, F]) FaceEdge(f FaceID) (EdgeID, error) {
	if err := m.validFace(f); err != nil {
		return NoEdge, err
	}
	return m.faces[f].edge, nil
}

// FaceData returns the payload of f.
func (m *Mesh[V, E, F]) FaceData(f FaceID) (F, error) {
	var zero F
	if err := m.validFace(f); err != nil {
		return zero, err
	}
	return m.faces[f].data, nil
}

// SetFaceData replaces the payload of f.
func (m *Mesh[V, E, F]) SetFaceData(f FaceID, data F) error {
	if err := m.validFace(f); err != nil {
		return err
	}
	m.faces[f].data = data
	return nil
}

// NumVertices returns the number of vertices.
func (m *Mesh[V, E, F]) NumVertices() int {
	return len(m.verts)
}

// NumEdges returns the number of live half-edges.
func (m *Mesh[V, E, F]) NumEdges() int {
	return m.liveEdges
}

// NumFaces returns the number of live faces.
func (m *Mesh[V, E, F]) NumFaces() int {
	return m.liveFaces
}

// Vertices returns a snapshot of all vertex IDs in creation order.
// Mutating the mesh while ranging over a snapshot is undefined.
func (m *Mesh[V, E, F]) Vertices() []VertexID {
	ids := make([]VertexID, len(m.verts))
	for i := range ids {
		ids[i] = VertexID(i)
	}
	return ids
}

// Edges returns a snapshot of all live half-edge IDs.
// Mutating the mesh while ranging over a snapshot is undefined.
func (m *Mesh[V, E, F]) Edges() []EdgeID {
	ids := make([]EdgeID, 0, m.liveEdges)
	for i := range m.edges {
		if !m.edges[i].retired {
			ids = append(ids, EdgeID(i))
		}
	}
	return ids
}

// Faces returns a snapshot of all live face IDs.
// Mutating the mesh while ranging over a snapshot is undefined.
func (m *Mesh[V, E, F]) Faces() []FaceID {
	ids := make([]FaceID, 0, m.liveFaces)
	for i := range m.faces {
		if !m.faces[i].retired {
			ids = append(ids, FaceID(i))
		}
	}
	return ids
}

// FaceBoundary follows next pointers from the representative edge of f
// until the cycle closes, returning the boundary edges in order. The walk
// is capped at the live edge count; a cycle that leaves the face or fails
// to close within the cap reports the mesh as corrupt.
func (m *Mesh[V, E, F]) FaceBoundary(f FaceID) ([]EdgeID, error) {
	if err := m.validFace(f); err != nil {
		return nil, err
	}
	start := m.faces[f].edge
	if start == NoEdge {
		return nil, corruptFace(f, "no representative edge")
	}
	var loop []EdgeID
	e := start
	for steps := 0; ; steps++ {
		if steps > m.liveEdges {
			return nil, corruptFace(f, "next cycle does not close")
		}
		if err := m.validEdge(e); err != nil {
			return nil, corruptFace(f, fmt.Sprintf("boundary reaches retired or unknown edge %d", e))
		}
		if m.edges[e].topo.Face != f {
			return nil, corruptEdge(e, fmt.Sprintf("boundary of face %d leaves the face", f))
		}
		loop = append(loop, e)
		e = m.edges[e].topo.Next
		if e == NoEdge {
			return nil, corruptEdge(loop[len(loop)-1], "next not set")
		}
		if e == start {
			return loop, nil
		}
	}
}

// pred walks the next cycle of e and returns the edge whose next is e.
func (m *Mesh[V, E, F]) pred(e EdgeID) (EdgeID, error) {
	p := e
	for steps := 0; ; steps++ {
		if steps > m.liveEdges {
			return NoEdge, corruptEdge(e, "next cycle does not close")
		}
		n := m.edges[p].topo.Next
		if n == NoEdge {
			return NoEdge, corruptEdge(p, "next not set")
		}
		if n == e {
			return p, nil
		}
		if err := m.validEdge(n); err != nil {
			return NoEdge, corruptEdge(p, fmt.Sprintf("next points at retired or unknown edge %d", n))
		}
		p = n
	}
}

// InsertVertexInEdge splits the half-edge e (src->dst) at a new vertex n
// carrying the given payload, and splits its twin symmetrically, so both
// sides of the boundary stay consistent:
//
//	e:        src -> dst   becomes   src -> n, n -> dst
//	twin(e):  dst -> src   becomes   dst -> n, n -> src
//
// The four new half-edges inherit the face and payload of their parent,
// the predecessors on both boundaries are rewired to enter the first new
// half, the new halves are twinned crosswise, and representative edges of
// the adjacent faces are rebound if they pointed at a replaced edge. The
// original edge and its twin are retired. All rewiring completes before
// the method returns; there is no observable intermediate state.
//
// It is an error if e is unknown or has no twin assigned.
func (m *Mesh[V, E, F]) InsertVertexInEdge(e EdgeID, data V) (VertexID, error) {
	if err := m.validEdge(e); err != nil {
		return NoVertex, err
	}
	ed := m.edges[e].topo
	if ed.Twin == NoEdge {
		return NoVertex, corruptEdge(e, "twin not set")
	}
	t := ed.Twin
	if err := m.validEdge(t); err != nil {
		return NoVertex, corruptEdge(e, fmt.Sprintf("twin %d is retired or unknown", t))
	}
	td := m.edges[t].topo

	pe, err := m.pred(e)
	if err != nil {
		return NoVertex, err
	}
	pt, err := m.pred(t)
	if err != nil {
		return NoVertex, err
	}

	n := m.AddVertex(data)
	e1 := m.addEdgeRaw(ed.Src, n, m.edges[e].data, ed.Face)
	e2 := m.addEdgeRaw(n, ed.Dst, m.edges[e].data, ed.Face)
	t1 := m.addEdgeRaw(td.Src, n, m.edges[t].data, td.Face)
	t2 := m.addEdgeRaw(n, td.Dst, m.edges[t].data, td.Face)

	// next chains on both boundaries
	m.edges[e1].topo.Next = e2
	m.edges[e2].topo.Next = ed.Next
	if pe == e {
		m.edges[e2].topo.Next = e1
	} else {
		m.edges[pe].topo.Next = e1
	}
	m.edges[t1].topo.Next = t2
	m.edges[t2].topo.Next = td.Next
	if pt == t {
		m.edges[t2].topo.Next = t1
	} else {
		m.edges[pt].topo.Next = t1
	}
	if ed.Next == t {
		// e's boundary entered the twin directly (e and t on the same
		// face loop); the replacement must enter t's first half instead.
		m.edges[e2].topo.Next = t1
	}
	if td.Next == e {
		m.edges[t2].topo.Next = e1
	}

	// crosswise twins: src->n pairs with n->src, n->dst with dst->n
	m.edges[e1].topo.Twin = t2
	m.edges[t2].topo.Twin = e1
	m.edges[e2].topo.Twin = t1
	m.edges[t1].topo.Twin = e2

	// rebind representative edges that pointed at a replaced half-edge
	if ed.Face != NoFace && m.faces[ed.Face].edge == e {
		m.faces[ed.Face].edge = e1
	}
	if td.Face != NoFace && m.faces[td.Face].edge == t {
		m.faces[td.Face].edge = t1
	}

	m.retireEdge(e)
	m.retireEdge(t)
	return n, nil
}

func (m *Mesh[V, E, F]) addEdgeRaw(src, dst VertexID, data E, f FaceID) EdgeID {
	m.edges = append(m.edges, edgeRec[E]{
		topo: Edge{Src: src, Dst: dst, Next: NoEdge, Twin: NoEdge, Face: f},
		data: data,
	})
	m.liveEdges++
	return EdgeID(len(m.edges) - 1)
}

func (m *Mesh[V, E, F]) retireEdge(e EdgeID) {
	m.edges[e].retired = true
	m.liveEdges--
}

// Check walks the whole mesh and returns the first structural-consistency
// violation found, or nil. It verifies twin involution, mirrored twin
// endpoints, twin face separation, and that every live face's next cycle
// closes on edges belonging to that face. Check never mutates the mesh.
func (m *Mesh[V, E, F]) Check() error {
	for i := range m.edges {
		if m.edges[i].retired {
			continue
		}
		e := EdgeID(i)
		topo := m.edges[i].topo
		if topo.Twin == NoEdge {
			return corruptEdge(e, "twin not set")
		}
		if err := m.validEdge(topo.Twin); err != nil {
			return corruptEdge(e, fmt.Sprintf("twin %d is retired or unknown", topo.Twin))
		}
		twin := m.edges[topo.Twin].topo
		if twin.Twin != e {
			return corruptEdge(e, fmt.Sprintf("twin involution broken: twin(twin) = %d", twin.Twin))
		}
		if topo.Src != twin.Dst || topo.Dst != twin.Src {
			return corruptEdge(e, "twin endpoints do not mirror")
		}
		if topo.Face != NoFace {
			if err := m.validFace(topo.Face); err != nil {
				return corruptEdge(e, fmt.Sprintf("face %d is retired or unknown", topo.Face))
			}
			if topo.Face == twin.Face {
				return corruptEdge(e, fmt.Sprintf("edge and twin share face %d", topo.Face))
			}
		}
	}
	for i := range m.faces {
		if m.faces[i].retired {
			continue
		}
		loop, err := m.FaceBoundary(FaceID(i))
		if err != nil {
			return err
		}
		for k, e := range loop {
			next := m.edges[e].topo.Next
			want := loop[(k+1)%len(loop)]
			if next != want {
				return corruptEdge(e, fmt.Sprintf("next %d breaks boundary of face %d", next, i))
			}
			if m.edges[e].topo.Dst != m.edges[want].topo.Src {
				return corruptEdge(e, "boundary endpoints do not chain")
			}
		}
	}
	return nil
}
