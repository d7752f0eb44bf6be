package geom

import "testing"

func TestVec3Basics(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	sum := a.Add(b)
	if sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add: got %v", sum)
	}

	diff := b.Sub(a)
	if diff != (Vec3{3, 3, 3}) {
		t.Errorf("Sub: got %v", diff)
	}

	if dot := a.Dot(b); dot != 32 {
		t.Errorf("Dot: got %f, want 32", dot)
	}

	cross := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if cross != (Vec3{0, 0, 1}) {
		t.Errorf("Cross: got %v", cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}
	n := v.Normalize()
	if n.X != 0.6 || n.Y != 0 || n.Z != 0.8 {
		t.Errorf("Normalize: got %v", n)
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Errorf("Normalize zero: got %v", zero)
	}
}

func TestBox3Expand(t *testing.T) {
	box := EmptyBox3()
	if !box.Empty() {
		t.Fatal("EmptyBox3 is not empty")
	}

	box = box.Expand(Vec3{1, 2, 3})
	if box.Empty() {
		t.Fatal("box still empty after expand")
	}
	if box.Min != (Vec3{1, 2, 3}) || box.Max != (Vec3{1, 2, 3}) {
		t.Errorf("single-point box: min %v max %v", box.Min, box.Max)
	}

	box = box.Expand(Vec3{-1, 0, 5})
	if box.Min != (Vec3{-1, 0, 3}) {
		t.Errorf("Min: got %v", box.Min)
	}
	if box.Max != (Vec3{1, 2, 5}) {
		t.Errorf("Max: got %v", box.Max)
	}

	center := box.Center()
	if center != (Vec3{0, 1, 4}) {
		t.Errorf("Center: got %v", center)
	}

	size := box.Size()
	if size != (Vec3{2, 2, 2}) {
		t.Errorf("Size: got %v", size)
	}
}
