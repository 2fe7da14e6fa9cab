package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FaceNormal returns the unnormalized normal of triangle (a, b, c). Its
// length is twice the triangle area.
func FaceNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}

// SmoothNormals computes one normal per vertex by summing the face normals
// of every incident triangle and normalizing the sum. Larger triangles weigh
// more. Vertices with no incident area get a zero normal.
// Indices must already be validated.
func SmoothNormals(vertices []r3.Vec, indices []uint32) []r3.Vec {
	return smoothNormalsInto(nil, vertices, indices)
}

func smoothNormalsInto(dst, vertices []r3.Vec, indices []uint32) []r3.Vec {
	if cap(dst) >= len(vertices) {
		dst = dst[:len(vertices)]
		clear(dst)
	} else {
		dst = make([]r3.Vec, len(vertices))
	}

	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		n := FaceNormal(vertices[i0], vertices[i1], vertices[i2])
		dst[i0] = r3.Add(dst[i0], n)
		dst[i1] = r3.Add(dst[i1], n)
		dst[i2] = r3.Add(dst[i2], n)
	}

	for i, n := range dst {
		l := r3.Norm(n)
		if l == 0 {
			continue
		}
		dst[i] = r3.Scale(1/l, n)
	}
	return dst
}

// TrianglesToLines derives a line index list from a triangle index list.
// Every triangle (v0, v1, v2) contributes edges (v0,v1), (v1,v2), (v2,v0).
// Edges shared by neighbouring triangles are emitted once per triangle
// unless dedupe is set, in which case the first occurrence of each
// undirected edge is kept.
func TrianglesToLines(indices []uint32, dedupe bool) ([]uint32, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d triangle indices is not a multiple of 3", ErrMalformedTopology, len(indices))
	}

	lines := make([]uint32, 0, len(indices)*2)
	var seen map[[2]uint32]struct{}
	if dedupe {
		seen = make(map[[2]uint32]struct{}, len(indices))
	}

	emit := func(a, b uint32) {
		if dedupe {
			key := [2]uint32{min(a, b), max(a, b)}
			if _, ok := seen[key]; ok {
				return
			}
			seen[key] = struct{}{}
		}
		lines = append(lines, a, b)
	}

	for t := 0; t < len(indices); t += 3 {
		v0, v1, v2 := indices[t], indices[t+1], indices[t+2]
		emit(v0, v1)
		emit(v1, v2)
		emit(v2, v0)
	}
	return lines, nil
}

// SequentialIndices returns 0..n-1, the implicit topology of an unindexed
// triangle soup.
func SequentialIndices(n int) []uint32 {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

// Weld merges vertices closer than tolerance on every axis into the first
// vertex seen, remaps the triangle indices and drops triangles that collapse
// to an edge or a point. An unindexed soup is welded as if its indices were
// sequential. Normals of merged vertices are taken from the survivor.
// The result always carries indices unless the input had no triangles.
func Weld(m Mesh, tolerance float64) Mesh {
	if tolerance <= 0 || len(m.Vertices) == 0 {
		return m.Clone()
	}

	tris := m.Indices
	if len(tris) == 0 && len(m.Vertices)%3 == 0 {
		tris = SequentialIndices(len(m.Vertices))
	}
	keepNormals := len(m.Normals) == len(m.Vertices)

	type cell [3]int64
	quantize := func(v r3.Vec) cell {
		return cell{
			int64(math.Round(v.X / tolerance)),
			int64(math.Round(v.Y / tolerance)),
			int64(math.Round(v.Z / tolerance)),
		}
	}

	out := Mesh{Mode: m.Mode}
	remap := make([]uint32, len(m.Vertices))
	seen := make(map[cell]uint32, len(m.Vertices))
	for i, v := range m.Vertices {
		key := quantize(v)
		if j, ok := seen[key]; ok {
			remap[i] = j
			continue
		}
		j := uint32(len(out.Vertices))
		seen[key] = j
		remap[i] = j
		out.Vertices = append(out.Vertices, v)
		if keepNormals {
			out.Normals = append(out.Normals, m.Normals[i])
		}
	}

	for t := 0; t+2 < len(tris); t += 3 {
		a, b, c := remap[tris[t]], remap[tris[t+1]], remap[tris[t+2]]
		if a == b || b == c || a == c {
			continue
		}
		out.Indices = append(out.Indices, a, b, c)
	}
	return out
}
