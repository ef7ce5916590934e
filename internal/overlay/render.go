// Package overlay draws the calibrated catalog and live touches for debugging.
package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/frudas24/touchsampler/internal/action"
	"github.com/frudas24/touchsampler/internal/calib"
	"github.com/frudas24/touchsampler/internal/joystick"
	"github.com/frudas24/touchsampler/internal/touch"
)

var (
	background = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	idleColor  = color.RGBA{R: 110, G: 110, B: 120, A: 255}
	hitColor   = color.RGBA{R: 60, G: 220, B: 90, A: 255}
	dotColor   = color.RGBA{R: 240, G: 200, B: 40, A: 255}
	touchColor = color.RGBA{R: 230, G: 60, B: 60, A: 255}
)

const touchRadius = 4

// Render draws every cataloged region on a w x h canvas, highlights the
// matched ids, marks each joystick wedge centroid, and draws the contacts.
func Render(f touch.Frame, cat *action.Catalog, matched []int, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), background)

	hit := make(map[int]bool, len(matched))
	for _, id := range matched {
		hit[id] = true
	}

	if cat != nil {
		for _, id := range cat.IDs() {
			ctx, _ := cat.Get(id)
			c := idleColor
			if hit[id] {
				c = hitColor
			}
			if j, ok := ctx.(*action.JoyStick); ok {
				drawMask(img, j.Edge, j.Square.X1, j.Square.Y1, c)
				if cx, cy, ok := joystick.Centroid(j.Mask); ok {
					drawCross(img, j.Square.X1+int(cx), j.Square.Y1+int(cy), dotColor)
				}
				continue
			}
			if r, ok := action.Bounds(ctx); ok {
				drawRect(img, r, c)
			}
		}
	}

	for _, p := range f.Points() {
		if !p.HasPos() {
			continue
		}
		x, y := int(p.X), int(p.Y)
		fill(img, image.Rect(x-touchRadius, y-touchRadius, x+touchRadius+1, y+touchRadius+1), touchColor)
	}
	return img
}

// EncodeJPEG encodes img with the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 70
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fill paints r clipped to the canvas.
func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawRect outlines the half-open rectangle r.
func drawRect(img *image.RGBA, r calib.Rect, c color.RGBA) {
	if r.Empty() {
		return
	}
	fill(img, image.Rect(r.X1, r.Y1, r.X2, r.Y1+1), c)
	fill(img, image.Rect(r.X1, r.Y2-1, r.X2, r.Y2), c)
	fill(img, image.Rect(r.X1, r.Y1, r.X1+1, r.Y2), c)
	fill(img, image.Rect(r.X2-1, r.Y1, r.X2, r.Y2), c)
}

// drawMask paints the set pixels of m with its origin at (ox, oy).
func drawMask(img *image.RGBA, m joystick.Bitmap, ox, oy int, c color.RGBA) {
	b := img.Bounds()
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Pix[y*m.W+x] != joystick.On {
				continue
			}
			if p := image.Pt(ox+x, oy+y); p.In(b) {
				img.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}

// drawCross marks a 5px cross centred on (x, y).
func drawCross(img *image.RGBA, x, y int, c color.RGBA) {
	fill(img, image.Rect(x-2, y, x+3, y+1), c)
	fill(img, image.Rect(x, y-2, x+1, y+3), c)
}
