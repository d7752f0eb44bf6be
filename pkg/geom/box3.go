package geom

import "github.com/chewxy/math32"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns a box that contains no points. Expanding it by the
// first point collapses it onto that point.
func EmptyBox3() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Empty reports whether the box contains no points.
func (b Box3) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand returns the box grown to contain p.
func (b Box3) Expand(p Vec3) Box3 {
	return Box3{
		Min: Vec3{
			math32.Min(b.Min.X, p.X),
			math32.Min(b.Min.Y, p.Y),
			math32.Min(b.Min.Z, p.Z),
		},
		Max: Vec3{
			math32.Max(b.Max.X, p.X),
			math32.Max(b.Max.Y, p.Y),
			math32.Max(b.Max.Z, p.Z),
		},
	}
}

// Center returns the box midpoint.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents along each axis.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}
