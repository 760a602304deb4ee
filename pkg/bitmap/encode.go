// Package bitmap converts raster images into the packed 1bpp format of the
// PicoPaper display.
package bitmap

import (
	"image"
	"image/color"
)

// RowBytes is the number of payload bytes per image row.
func RowBytes(width int) int {
	return (width + 7) / 8
}

// Encode packs img into 1 bit per pixel, MSB first, rows top to bottom.
// A set bit is white. A pixel is white when its straight R, G and B are all
// 255, whatever its alpha; every other color is black. Padding bits at the
// end of a row are 0.
func Encode(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := RowBytes(w)
	out := make([]byte, stride*h)
	if w <= 0 || h <= 0 {
		return out
	}

	var white func(x, y int) bool
	switch m := img.(type) {
	case *image.NRGBA:
		white = func(x, y int) bool {
			p := m.Pix[m.PixOffset(x, y):]
			return p[0] == 0xff && p[1] == 0xff && p[2] == 0xff
		}
	case *image.RGBA:
		white = func(x, y int) bool {
			p := m.Pix[m.PixOffset(x, y):]
			if p[3] == 0xff {
				return p[0] == 0xff && p[1] == 0xff && p[2] == 0xff
			}
			// premultiplied, compare the straight color
			return isWhite(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]})
		}
	case *image.Gray:
		white = func(x, y int) bool {
			return m.Pix[m.PixOffset(x, y)] == 0xff
		}
	case *image.Paletted:
		lut := make([]bool, len(m.Palette))
		for n, c := range m.Palette {
			lut[n] = isWhite(c)
		}
		white = func(x, y int) bool {
			idx := int(m.Pix[m.PixOffset(x, y)])
			return idx < len(lut) && lut[idx]
		}
	default:
		white = func(x, y int) bool {
			return isWhite(img.At(x, y))
		}
	}

	for y := 0; y < h; y++ {
		row := out[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			if white(b.Min.X+x, b.Min.Y+y) {
				row[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return out
}

func isWhite(c color.Color) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R == 0xff && n.G == 0xff && n.B == 0xff
}
