package threemf

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/threemf/pkg/geom"
)

// Mesh extraction errors.
var (
	ErrCannotOpenArchive  = errors.New("cannot open archive")
	ErrModelEntryNotFound = errors.New("no .model entry in archive")
	ErrParsingFailed      = errors.New("parsing failed")
)

// Vertex is one mesh vertex position.
type Vertex struct {
	X, Y, Z float32
}

// Triangle references three vertices by index. After assembly the indices
// are global across all merged model documents.
type Triangle struct {
	V1, V2, V3 uint32
}

// TriangleColors holds the resolved color of each of a triangle's vertices,
// in v1/v2/v3 order.
type TriangleColors [3]Color

// MeshData is the extracted mesh: vertices, triangles indexing into them,
// and optionally one color triple per triangle. Colors is nil unless at
// least one triangle in the container resolved a color.
type MeshData struct {
	Vertices  []Vertex
	Triangles []Triangle
	Colors    []TriangleColors
}

// HasColors reports whether per-triangle vertex colors are present.
func (m *MeshData) HasColors() bool {
	return m.Colors != nil
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *MeshData) Bounds() geom.Box3 {
	box := geom.EmptyBox3()
	for _, v := range m.Vertices {
		box = box.Expand(geom.Vec3{X: v.X, Y: v.Y, Z: v.Z})
	}
	return box
}

// LoadFile reads a .3mf file fully into memory and extracts its mesh.
func LoadFile(path string) (*MeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse extracts a mesh from raw container bytes: patch, open, assemble.
func Parse(data []byte) (*MeshData, error) {
	archive, err := OpenArchive(data)
	if err != nil {
		return nil, err
	}
	return Assemble(archive)
}

// Assemble extracts and merges every model document in the archive into one
// mesh. Unparsable and empty documents are skipped; the whole call fails
// only when no document contributed any geometry.
func Assemble(a *Archive) (*MeshData, error) {
	entries := a.ModelEntries()
	if len(entries) == 0 {
		return nil, ErrModelEntryNotFound
	}

	mesh := &MeshData{}
	var colors []*TriangleColors
	for _, entry := range entries {
		data, err := a.Extract(entry)
		if err != nil {
			continue
		}
		doc, err := parseModel(data)
		if err != nil {
			continue
		}
		if len(doc.vertices) == 0 {
			continue
		}

		offset := uint32(len(mesh.Vertices))
		limit := uint32(len(doc.vertices))
		mesh.Vertices = append(mesh.Vertices, doc.vertices...)
		for i, t := range doc.triangles {
			// Indices must stay within the document that produced them.
			if t.V1 >= limit || t.V2 >= limit || t.V3 >= limit {
				continue
			}
			mesh.Triangles = append(mesh.Triangles, Triangle{
				V1: t.V1 + offset,
				V2: t.V2 + offset,
				V3: t.V3 + offset,
			})
			colors = append(colors, doc.colors[i])
		}
	}

	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("%w: no mesh data found in any model file", ErrParsingFailed)
	}

	mesh.Colors = flattenColors(colors)
	return mesh, nil
}

// flattenColors turns per-triangle optional colors into the final parallel
// list. No color anywhere means no color output; triangles left unresolved
// in an otherwise colored mesh render neutral white.
func flattenColors(colors []*TriangleColors) []TriangleColors {
	resolved := false
	for _, c := range colors {
		if c != nil {
			resolved = true
			break
		}
	}
	if !resolved {
		return nil
	}

	out := make([]TriangleColors, len(colors))
	for i, c := range colors {
		if c != nil {
			out[i] = *c
		} else {
			out[i] = TriangleColors{colorWhite, colorWhite, colorWhite}
		}
	}
	return out
}
