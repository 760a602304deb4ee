package bitmap

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TestPatternText is drawn on the test pattern.
const TestPatternText = "It works :) !!"

var (
	black = color.NRGBA{A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// TestPattern renders the built-in test image: a border, a circle with a
// cross, a filled disc, a filled square split by a white diagonal and a
// line of text. Shapes are laid out for 800x480 and clipped to the size.
func TestPattern(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	rect(img, 1, 1, width-2, height-2, black)
	ellipse(img, 500, 300, 100, black, false)
	line(img, 500, 200, 500, 400, 1, black)
	line(img, 400, 300, 600, 300, 1, black)
	ellipse(img, 225, 425, 25, black, true)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(400, 50+basicfont.Face7x13.Ascent),
	}
	d.DrawString(TestPatternText)

	draw.Draw(img, image.Rect(50, 50, 250, 250), image.NewUniform(black), image.Point{}, draw.Src)
	line(img, 50, 50, 250, 250, 3, white)
	return img
}

func rect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	line(img, x0, y0, x1, y0, 1, c)
	line(img, x0, y1, x1, y1, 1, c)
	line(img, x0, y0, x0, y1, 1, c)
	line(img, x1, y0, x1, y1, 1, c)
}

// line draws with Bresenham, widening each point to a square pen.
func line(img *image.NRGBA, x0, y0, x1, y1, pen int, c color.NRGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		dot(img, x0, y0, pen, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func ellipse(img *image.NRGBA, cx, cy, r int, c color.NRGBA, fill bool) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d := x*x + y*y
			if d > r*r {
				continue
			}
			if fill || d > (r-1)*(r-1) {
				img.SetNRGBA(cx+x, cy+y, c)
			}
		}
	}
}

func dot(img *image.NRGBA, x, y, pen int, c color.NRGBA) {
	off := pen / 2
	for dy := 0; dy < pen; dy++ {
		for dx := 0; dx < pen; dx++ {
			img.SetNRGBA(x+dx-off, y+dy-off, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
