package threemf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// modelDocument holds everything extracted from one XML model document.
// Triangle indices are document-local until the assembler offsets them.
type modelDocument struct {
	vertices  []Vertex
	triangles []Triangle
	// palettes keeps one slot per <base> element in document order; an
	// undecodable displaycolor occupies its slot as nil so later pindex
	// values still line up.
	palettes map[string][]*Color
	defaults map[string]paletteRef

	// colors has one slot per triangle; nil means the triangle resolved no
	// color anywhere along the inheritance chain.
	colors []*TriangleColors
}

// parseModel runs a single forward pass over one model document. Elements
// with malformed numeric attributes are skipped; only structurally broken
// XML fails the document. The consumed vocabulary is attributes-only:
// basematerials/base/object/vertex/triangle. Everything else (build,
// metadata, extensions) is ignored.
func parseModel(data []byte) (*modelDocument, error) {
	doc := &modelDocument{
		palettes: make(map[string][]*Color),
		defaults: make(map[string]paletteRef),
	}

	var curPalette string
	var curDefault *paletteRef

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed model document: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		attrs := attrMap(start)
		switch start.Name.Local {
		case "basematerials":
			curPalette = attrs["id"]

		case "base":
			if curPalette == "" {
				break
			}
			var entry *Color
			if c, ok := ParseColor(attrs["displaycolor"]); ok {
				entry = &c
			}
			doc.palettes[curPalette] = append(doc.palettes[curPalette], entry)

		case "object":
			curDefault = doc.objectDefault(attrs)

		case "vertex":
			if v, ok := parseVertex(attrs); ok {
				doc.vertices = append(doc.vertices, v)
			}

		case "triangle":
			t, ok := parseTriangle(attrs)
			if !ok {
				break
			}
			doc.triangles = append(doc.triangles, t)
			doc.colors = append(doc.colors, doc.resolveColors(attrs, curDefault))
		}
	}
	return doc, nil
}

// objectDefault records and returns the object's default color reference,
// present only when both pid and pindex decode.
func (d *modelDocument) objectDefault(attrs map[string]string) *paletteRef {
	pid, okPid := attrs["pid"]
	pindex, okIdx := attrs["pindex"]
	if !okPid || !okIdx {
		return nil
	}
	idx, err := strconv.Atoi(pindex)
	if err != nil {
		return nil
	}
	ref := paletteRef{pid: pid, index: idx}
	if id, ok := attrs["id"]; ok {
		d.defaults[id] = ref
	}
	return &ref
}

// resolveColors resolves one triangle's vertex colors. Explicit per-vertex
// overrides (pid + p1/p2/p3) win over the enclosing object's default; when
// neither resolves anything the triangle stays uncolored. Out-of-range
// palette lookups fall back the same way as absent ones.
func (d *modelDocument) resolveColors(attrs map[string]string, def *paletteRef) *TriangleColors {
	defColor, hasDef := d.paletteColor(def)

	pid, hasPid := attrs["pid"]
	_, p1 := attrs["p1"]
	_, p2 := attrs["p2"]
	_, p3 := attrs["p3"]
	if !hasPid || !(p1 || p2 || p3) {
		if !hasDef {
			return nil
		}
		return &TriangleColors{defColor, defColor, defColor}
	}

	var out TriangleColors
	resolved := false
	for i, key := range [3]string{"p1", "p2", "p3"} {
		if raw, ok := attrs[key]; ok {
			if idx, err := strconv.Atoi(raw); err == nil {
				if c, ok := d.paletteColor(&paletteRef{pid: pid, index: idx}); ok {
					out[i] = c
					resolved = true
					continue
				}
			}
		}
		if hasDef {
			out[i] = defColor
			resolved = true
			continue
		}
		// No override and no default for this vertex; neutral white keeps
		// the triple well-formed when a sibling vertex did resolve.
		out[i] = colorWhite
	}
	if !resolved {
		return nil
	}
	return &out
}

// paletteColor looks up a palette reference, reporting false for nil refs,
// unknown palettes, out-of-range indices, and slots whose color never
// decoded.
func (d *modelDocument) paletteColor(ref *paletteRef) (Color, bool) {
	if ref == nil {
		return Color{}, false
	}
	palette, ok := d.palettes[ref.pid]
	if !ok || ref.index < 0 || ref.index >= len(palette) || palette[ref.index] == nil {
		return Color{}, false
	}
	return *palette[ref.index], true
}

func parseVertex(attrs map[string]string) (Vertex, bool) {
	x, err1 := parseFloat32(attrs, "x")
	y, err2 := parseFloat32(attrs, "y")
	z, err3 := parseFloat32(attrs, "z")
	if err1 != nil || err2 != nil || err3 != nil {
		return Vertex{}, false
	}
	return Vertex{X: x, Y: y, Z: z}, true
}

func parseTriangle(attrs map[string]string) (Triangle, bool) {
	v1, err1 := parseUint32(attrs, "v1")
	v2, err2 := parseUint32(attrs, "v2")
	v3, err3 := parseUint32(attrs, "v3")
	if err1 != nil || err2 != nil || err3 != nil {
		return Triangle{}, false
	}
	return Triangle{V1: v1, V2: v2, V3: v3}, true
}

func parseFloat32(attrs map[string]string, key string) (float32, error) {
	raw, ok := attrs[key]
	if !ok {
		return 0, fmt.Errorf("missing attribute %q", key)
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func parseUint32(attrs map[string]string, key string) (uint32, error) {
	raw, ok := attrs[key]
	if !ok {
		return 0, fmt.Errorf("missing attribute %q", key)
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func attrMap(start xml.StartElement) map[string]string {
	attrs := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}
