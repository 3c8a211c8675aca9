package cellseg

import (
	"errors"
	"fmt"
	"math"

	"cellseg/internal/morph"
	"cellseg/internal/regions"
	"cellseg/internal/seed"
	"cellseg/internal/threshold"
	"cellseg/internal/watershed"
	"cellseg/pkg/grid"
)

// Segment identifies primary objects in the image: automatic
// thresholding, seed detection, watershed separation of clumped
// objects, and size/border filtering. The returned Result carries the
// final label map, the unedited and small-removed intermediates, and
// the standard measurements.
func (e *Engine) Segment(img Image, cfg Config) (*Result, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Modifier == ThresholdPerObject && img.Parents == nil {
		return nil, &InvalidConfigurationError{Field: "Modifier", Reason: "PerObject thresholding needs Image.Parents"}
	}

	mask := img.mask()

	surface, err := threshold.Estimate(threshold.Request{
		Image:            img.Pixels,
		Mask:             mask,
		Algorithm:        thresholdAlgorithm(cfg.Algorithm),
		Modifier:         thresholdModifier(cfg.Modifier),
		CorrectionFactor: cfg.CorrectionFactor,
		LowerBound:       cfg.LowerBound,
		UpperBound:       cfg.UpperBound,
		ObjectFraction:   cfg.ObjectFraction,
		Parents:          img.Parents,
		Log:              e.log,
	})
	if err != nil {
		if errors.Is(err, threshold.ErrDegenerate) {
			return nil, &DegenerateImageError{Reason: err.Error()}
		}
		return nil, fmt.Errorf("threshold estimation: %w", err)
	}

	fg := binarize(img.Pixels, mask, surface.Values)
	if cfg.FillHoles {
		regions.FillBinaryHoles(fg, mask)
	}

	var unedited *grid.Labels
	var rawCount int
	if cfg.Declump == DeclumpNone || cfg.Watershed == WatershedNone {
		unedited, rawCount = morph.LabelComponents(fg)
	} else {
		seeds := seed.Find(img.Pixels, mask, fg, seed.Params{
			Method:      seedMethod(cfg.Declump),
			Smoothing:   sizeSetting(cfg.SmoothingSize),
			Suppression: sizeSetting(cfg.SuppressionDistance),
			MinDiameter: cfg.MinDiameter,
			LowRes:      cfg.LowResMaxima,
			Markers:     cfg.Markers,
			Log:         e.log,
		})
		if cfg.Watershed == WatershedDistance {
			unedited, rawCount = watershed.Flood(morph.DistanceTransform(fg), fg, seeds)
		} else {
			unedited, rawCount = watershed.Flood(img.Pixels, fg, seeds)
		}
	}

	outcome := regions.Filter(unedited, rawCount, mask, regions.Params{
		MinDiameter:   cfg.MinDiameter,
		MaxDiameter:   cfg.MaxDiameter,
		ExcludeSize:   cfg.ExcludeSize,
		ExcludeBorder: cfg.ExcludeBorder,
		MergeSmall:    cfg.MergeSmall,
		FillHoles:     cfg.FillHoles,
		Log:           e.log,
	})

	res := &Result{
		ObjectName:          cfg.ObjectName,
		Objects:             outcome.Final,
		Count:               outcome.FinalCount,
		UneditedObjects:     unedited,
		SmallRemovedObjects: outcome.SmallRemoved,
		Threshold:           surface.Scalar,
	}
	res.Measurements = measure(res)

	e.log.Debug().
		Str("component", "engine").
		Str("object", cfg.ObjectName).
		Int("count", res.Count).
		Float64("threshold", res.Threshold).
		Msg("segmentation complete")

	return res, nil
}

// binarize marks pixels at or above their local threshold as
// foreground. Invalid pixels and pixels with an infinite threshold
// (outside every parent region) stay background.
func binarize(img *grid.Dense, mask *grid.Bitmap, surface *grid.Dense) *grid.Bitmap {
	fg := grid.NewBitmap(img.W, img.H)
	for i, v := range img.Pix {
		t := surface.Pix[i]
		if mask.Bits[i] && !math.IsInf(t, 1) && v >= t {
			fg.Bits[i] = true
		}
	}
	return fg
}

// sizeSetting converts the public setting to the seed package's type.
func sizeSetting(s SizeSetting) seed.Size {
	if s.IsAuto() {
		return seed.Auto()
	}
	return seed.Explicit(s.Value())
}

func thresholdAlgorithm(a ThresholdAlgorithm) threshold.Algorithm {
	switch a {
	case ThresholdMoG:
		return threshold.MixtureOfGaussians
	case ThresholdBackground:
		return threshold.Background
	case ThresholdRobustBackground:
		return threshold.RobustBackground
	case ThresholdRidlerCalvard:
		return threshold.RidlerCalvard
	case ThresholdKapur:
		return threshold.Kapur
	default:
		return threshold.Otsu
	}
}

func thresholdModifier(m ThresholdModifier) threshold.Modifier {
	switch m {
	case ThresholdAdaptive:
		return threshold.Adaptive
	case ThresholdPerObject:
		return threshold.PerObject
	default:
		return threshold.Global
	}
}

func seedMethod(d DeclumpMethod) seed.Method {
	switch d {
	case DeclumpIntensity:
		return seed.Intensity
	case DeclumpShape:
		return seed.Shape
	case DeclumpManual:
		return seed.Manual
	default:
		return seed.None
	}
}
