// Package joystick builds angle-quantized wedge masks for joystick regions.
package joystick

import (
	"errors"
	"fmt"
	"math"
)

// On is the mask value of a set pixel.
const On uint8 = 255

var (
	// ErrBadQuantization reports a non-positive wedge count.
	ErrBadQuantization = errors.New("joystick: quantized number must be positive")
	// ErrBadRadius reports an outer radius that is not positive or is below the inner one.
	ErrBadRadius = errors.New("joystick: outer radius must be positive and >= inner radius")
)

// Bitmap is a row-major 8-bit mask.
type Bitmap struct {
	W   int
	H   int
	Pix []uint8
}

// NewBitmap returns a cleared w x h mask.
func NewBitmap(w, h int) Bitmap {
	return Bitmap{W: w, H: h, Pix: make([]uint8, w*h)}
}

// At returns the pixel value and false when (x, y) is outside the mask.
func (b Bitmap) At(x, y int) (uint8, bool) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0, false
	}
	return b.Pix[y*b.W+x], true
}

// Set writes a pixel; out-of-bounds writes are ignored.
func (b Bitmap) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = v
}

// Count returns the number of set pixels.
func (b Bitmap) Count() int {
	n := 0
	for _, v := range b.Pix {
		if v == On {
			n++
		}
	}
	return n
}

// Wedges holds one mask per angular sector of a ring.
type Wedges struct {
	Outer int
	Inner int
	Masks []Bitmap
	// Edges are outline masks for the debug overlay.
	Edges []Bitmap
}

// Quantize splits the ring between inner and outer into n wedges of 360/n
// degrees. Wedge 0 is centred on up and indices grow clockwise. The canvas
// is a 2*outer square centred on (outer, outer).
func Quantize(outer, inner, n int) (*Wedges, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadQuantization, n)
	}
	if outer <= 0 || outer < inner {
		return nil, fmt.Errorf("%w: outer=%d inner=%d", ErrBadRadius, outer, inner)
	}

	ring := Ring(outer, inner)
	w := &Wedges{
		Outer: outer,
		Inner: inner,
		Masks: make([]Bitmap, n),
		Edges: make([]Bitmap, n),
	}
	for i := range w.Masks {
		w.Masks[i] = NewBitmap(ring.W, ring.H)
	}
	for y := 0; y < ring.H; y++ {
		for x := 0; x < ring.W; x++ {
			if v, _ := ring.At(x, y); v != On {
				continue
			}
			a := Angle(float64(x-outer), float64(y-outer))
			w.Masks[Bucket(a, n)].Set(x, y, On)
		}
	}
	for i, m := range w.Masks {
		w.Edges[i] = Dilate3(Outline(m))
	}
	return w, nil
}

// Ring returns the filled annulus inner < d <= outer on a 2*outer canvas.
func Ring(outer, inner int) Bitmap {
	side := 2 * outer
	b := NewBitmap(side, side)
	ro := outer * outer
	ri := inner * inner
	for y := 0; y < side; y++ {
		dy := y - outer
		for x := 0; x < side; x++ {
			dx := x - outer
			d := dx*dx + dy*dy
			if d > ri && d <= ro {
				b.Set(x, y, On)
			}
		}
	}
	return b
}

// Angle returns the direction of (dx, dy) in image coordinates, in degrees
// clockwise from up, in [0, 360).
func Angle(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// Bucket maps an angle to its wedge index, offset by half a wedge so that
// wedge 0 is centred on 0 degrees.
func Bucket(angle float64, n int) int {
	step := 360 / float64(n)
	b := int(math.Floor(math.Mod(angle+step/2, 360) / step))
	if b >= n {
		b = n - 1
	}
	return b
}
