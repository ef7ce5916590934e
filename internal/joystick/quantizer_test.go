package joystick

import (
	"errors"
	"testing"
)

// TestQuantize_FourWedgesPartitionRing verifies masks cover the ring exactly once.
func TestQuantize_FourWedgesPartitionRing(t *testing.T) {
	w, err := Quantize(40, 10, 4)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if len(w.Masks) != 4 || len(w.Edges) != 4 {
		t.Fatalf("expected 4 masks and edges, got %d/%d", len(w.Masks), len(w.Edges))
	}

	ring := Ring(40, 10)
	for i, v := range ring.Pix {
		owners := 0
		for _, m := range w.Masks {
			if m.Pix[i] == On {
				owners++
			}
		}
		want := 0
		if v == On {
			want = 1
		}
		if owners != want {
			t.Fatalf("pixel %d owned by %d masks, want %d", i, owners, want)
		}
	}

	total := 0
	for _, m := range w.Masks {
		total += m.Count()
	}
	if total != ring.Count() {
		t.Fatalf("expected masks to cover %d pixels, got %d", ring.Count(), total)
	}
}

// TestQuantize_WedgeZeroIsUp verifies sector order starts at up and runs clockwise.
func TestQuantize_WedgeZeroIsUp(t *testing.T) {
	w, err := Quantize(40, 10, 4)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	checks := []struct {
		x, y, wedge int
	}{
		{40, 10, 0}, // up
		{70, 40, 1}, // right
		{40, 70, 2}, // down
		{10, 40, 3}, // left
	}
	for _, c := range checks {
		if v, ok := w.Masks[c.wedge].At(c.x, c.y); !ok || v != On {
			t.Fatalf("expected (%d,%d) in wedge %d", c.x, c.y, c.wedge)
		}
	}
}

// TestQuantize_InvalidArguments verifies bad configs are rejected.
func TestQuantize_InvalidArguments(t *testing.T) {
	if _, err := Quantize(40, 10, 0); !errors.Is(err, ErrBadQuantization) {
		t.Fatalf("expected ErrBadQuantization, got %v", err)
	}
	if _, err := Quantize(10, 40, 4); !errors.Is(err, ErrBadRadius) {
		t.Fatalf("expected ErrBadRadius, got %v", err)
	}
	if _, err := Quantize(0, 0, 4); !errors.Is(err, ErrBadRadius) {
		t.Fatalf("expected ErrBadRadius for zero radius, got %v", err)
	}
}

// TestRing_ExcludesInnerDisc verifies the hole and the outside stay clear.
func TestRing_ExcludesInnerDisc(t *testing.T) {
	r := Ring(20, 5)
	if v, _ := r.At(20, 20); v == On {
		t.Fatalf("expected centre cleared")
	}
	if v, _ := r.At(20, 3); v != On {
		t.Fatalf("expected ring pixel set")
	}
	if v, _ := r.At(0, 0); v == On {
		t.Fatalf("expected corner outside the ring")
	}
}

// TestAngle_ClockwiseFromUp verifies the polar convention.
func TestAngle_ClockwiseFromUp(t *testing.T) {
	cases := []struct {
		dx, dy, want float64
	}{
		{0, -1, 0},
		{1, 0, 90},
		{0, 1, 180},
		{-1, 0, 270},
	}
	for _, c := range cases {
		if got := Angle(c.dx, c.dy); got != c.want {
			t.Fatalf("Angle(%v,%v) = %v, want %v", c.dx, c.dy, got, c.want)
		}
	}
}

// TestBucket_HalfWedgeOffset verifies angles just left of up fold into wedge 0.
func TestBucket_HalfWedgeOffset(t *testing.T) {
	if got := Bucket(350, 4); got != 0 {
		t.Fatalf("expected 350 deg in wedge 0, got %d", got)
	}
	if got := Bucket(44.9, 4); got != 0 {
		t.Fatalf("expected 44.9 deg in wedge 0, got %d", got)
	}
	if got := Bucket(45, 4); got != 1 {
		t.Fatalf("expected 45 deg in wedge 1, got %d", got)
	}
}

// TestOutline_SubsetOfMask verifies outlines only keep mask pixels.
func TestOutline_SubsetOfMask(t *testing.T) {
	w, err := Quantize(30, 10, 3)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	m := w.Masks[0]
	o := Outline(m)
	if o.Count() == 0 || o.Count() >= m.Count() {
		t.Fatalf("expected a non-empty proper outline, got %d of %d", o.Count(), m.Count())
	}
	for i, v := range o.Pix {
		if v == On && m.Pix[i] != On {
			t.Fatalf("outline pixel %d not in mask", i)
		}
	}
	if w.Edges[0].Count() < o.Count() {
		t.Fatalf("expected dilated edge to grow the outline")
	}
}

// TestCentroid_EmptyMask verifies an empty mask has no centroid.
func TestCentroid_EmptyMask(t *testing.T) {
	if _, _, ok := Centroid(NewBitmap(4, 4)); ok {
		t.Fatalf("expected no centroid for empty mask")
	}
	m := NewBitmap(4, 4)
	m.Set(1, 1, On)
	m.Set(3, 1, On)
	x, y, ok := Centroid(m)
	if !ok || x != 2 || y != 1 {
		t.Fatalf("expected (2,1), got (%v,%v,%v)", x, y, ok)
	}
}

// TestBitmapAt_OutOfBounds verifies lookups outside the mask report false.
func TestBitmapAt_OutOfBounds(t *testing.T) {
	b := NewBitmap(2, 2)
	if _, ok := b.At(-1, 0); ok {
		t.Fatalf("expected out of bounds")
	}
	if _, ok := b.At(2, 1); ok {
		t.Fatalf("expected out of bounds")
	}
}
