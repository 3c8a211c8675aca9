// Package objimage adapts between the standard library's image types
// and the segmentation engine's raster types. The engine itself never
// touches image.Image; hosts use this package at the boundary to feed
// decoded files in and to render label maps back out.
package objimage

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	// Decoders for the formats microscopy hosts commonly hand over.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"cellseg"
	"cellseg/pkg/grid"
)

// FromImage converts a decoded image into a segmentation input with
// intensities scaled to [0,1]. Grayscale inputs convert directly;
// color inputs pass through a luminance conversion first.
func FromImage(src image.Image) cellseg.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := grid.NewDense(w, h)

	switch im := src.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix.Set(x, y, float64(im.GrayAt(b.Min.X+x, b.Min.Y+y).Y)/255)
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix.Set(x, y, float64(im.Gray16At(b.Min.X+x, b.Min.Y+y).Y)/65535)
			}
		}
	default:
		gray := imaging.Grayscale(src)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// Grayscale output has equal channels; red carries the
				// luminance.
				pix.Set(x, y, float64(gray.NRGBAAt(x, y).R)/255)
			}
		}
	}
	return cellseg.NewImage(pix)
}

// Decode reads and converts an encoded image (PNG, JPEG or TIFF).
func Decode(r io.Reader) (cellseg.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return cellseg.Image{}, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(src), nil
}

// LabelsToGray16 renders a label map as a 16-bit grayscale image with
// the raw label values as pixel values, the lossless interchange form
// for up to 65535 objects.
func LabelsToGray16(labels *grid.Labels) *image.Gray16 {
	out := image.NewGray16(image.Rect(0, 0, labels.W, labels.H))
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			out.SetGray16(x, y, color.Gray16{Y: uint16(labels.At(x, y))})
		}
	}
	return out
}

// BitmapToGray renders a binary map (an outline or foreground mask) as
// an 8-bit grayscale image, white on black.
func BitmapToGray(b *grid.Bitmap) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.At(x, y) {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
