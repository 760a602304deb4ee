package bitmap

import (
	"fmt"
	"image"
	// image formats accepted by Load and Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
)

// Load decodes a BMP, PNG, JPEG or GIF file.
func Load(fs afero.Fs, path string) (image.Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode decodes an encoded BMP, PNG, JPEG or GIF image.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s image is empty", format)
	}
	return img, nil
}
