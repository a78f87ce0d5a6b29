// Package hemesh implements a generic half-edge mesh (doubly-connected
// edge list). Vertices, half-edges, and faces live in flat arena slices
// and reference each other by typed integer IDs, so the structure has no
// pointer cycles and consistency checks are pure functions over index
// ranges. The mesh is parameterized by per-vertex, per-edge, and per-face
// payload types and knows nothing about geometry; callers wire next, twin,
// and face relations through explicit operations.
package hemesh
