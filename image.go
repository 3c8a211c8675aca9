package cellseg

import (
	"cellseg/pkg/grid"
)

// Image is one segmentation input: a grayscale intensity plane with
// values in [0,1], an optional validity mask, and an optional parent
// label map for per-object thresholding.
type Image struct {
	// Pixels holds the intensities, row-major.
	Pixels *grid.Dense

	// Mask marks valid pixels. Invalid pixels never contribute to
	// threshold statistics and never become foreground. A nil Mask
	// means every pixel is valid.
	Mask *grid.Bitmap

	// Parents is the label map of enclosing objects, consulted only
	// when Config.Modifier is ThresholdPerObject.
	Parents *grid.Labels
}

// NewImage wraps an intensity plane with an all-valid mask.
func NewImage(pixels *grid.Dense) Image {
	return Image{Pixels: pixels}
}

// mask returns the validity mask, materializing an all-true one when
// the caller supplied none.
func (img Image) mask() *grid.Bitmap {
	if img.Mask != nil {
		return img.Mask
	}
	return grid.NewBitmapFilled(img.Pixels.W, img.Pixels.H, true)
}

// validate rejects structurally broken inputs before any pixel work.
func (img Image) validate() error {
	if img.Pixels == nil || img.Pixels.W < 1 || img.Pixels.H < 1 {
		return &InvalidConfigurationError{Field: "Image.Pixels", Reason: "must be a non-empty intensity plane"}
	}
	if img.Mask != nil && (img.Mask.W != img.Pixels.W || img.Mask.H != img.Pixels.H) {
		return &InvalidConfigurationError{Field: "Image.Mask", Reason: "dimensions differ from the intensity plane"}
	}
	if img.Parents != nil && (img.Parents.W != img.Pixels.W || img.Parents.H != img.Pixels.H) {
		return &InvalidConfigurationError{Field: "Image.Parents", Reason: "dimensions differ from the intensity plane"}
	}
	return nil
}
