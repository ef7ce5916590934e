package joystick

// Outline keeps the set pixels that touch an unset 4-neighbour or the
// canvas border.
func Outline(m Bitmap) Bitmap {
	out := NewBitmap(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if v, _ := m.At(x, y); v != On {
				continue
			}
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				if n, ok := m.At(x+d[0], y+d[1]); !ok || n != On {
					out.Set(x, y, On)
					break
				}
			}
		}
	}
	return out
}

// Dilate3 grows every set pixel into its 3x3 neighbourhood.
func Dilate3(m Bitmap) Bitmap {
	out := NewBitmap(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if v, _ := m.At(x, y); v != On {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					out.Set(x+dx, y+dy, On)
				}
			}
		}
	}
	return out
}

// Centroid returns the mean position of the set pixels. ok is false for an
// empty mask.
func Centroid(m Bitmap) (x, y float64, ok bool) {
	var sx, sy, n int
	for py := 0; py < m.H; py++ {
		for px := 0; px < m.W; px++ {
			if m.Pix[py*m.W+px] == On {
				sx += px
				sy += py
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return float64(sx) / float64(n), float64(sy) / float64(n), true
}
