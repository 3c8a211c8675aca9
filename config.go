package cellseg

import (
	"cellseg/pkg/geometry"
)

// ThresholdAlgorithm selects the automatic thresholding algorithm.
type ThresholdAlgorithm int

const (
	ThresholdOtsu ThresholdAlgorithm = iota
	ThresholdMoG
	ThresholdBackground
	ThresholdRobustBackground
	ThresholdRidlerCalvard
	ThresholdKapur
)

func (a ThresholdAlgorithm) String() string {
	switch a {
	case ThresholdOtsu:
		return "Otsu"
	case ThresholdMoG:
		return "MoG"
	case ThresholdBackground:
		return "Background"
	case ThresholdRobustBackground:
		return "RobustBackground"
	case ThresholdRidlerCalvard:
		return "RidlerCalvard"
	case ThresholdKapur:
		return "Kapur"
	default:
		return "Unknown"
	}
}

// ThresholdModifier selects the scope of threshold computation.
type ThresholdModifier int

const (
	// ThresholdGlobal computes one threshold for the whole image.
	ThresholdGlobal ThresholdModifier = iota
	// ThresholdAdaptive varies the threshold smoothly across the image.
	ThresholdAdaptive
	// ThresholdPerObject computes a distinct threshold inside each
	// region of a caller-supplied parent label map.
	ThresholdPerObject
)

func (m ThresholdModifier) String() string {
	switch m {
	case ThresholdGlobal:
		return "Global"
	case ThresholdAdaptive:
		return "Adaptive"
	case ThresholdPerObject:
		return "PerObject"
	default:
		return "Unknown"
	}
}

// DeclumpMethod selects how seed points inside clumped foreground blobs
// are found.
type DeclumpMethod int

const (
	// DeclumpNone makes no attempt to separate touching objects.
	DeclumpNone DeclumpMethod = iota
	// DeclumpIntensity seeds at local maxima of the smoothed image.
	DeclumpIntensity
	// DeclumpShape seeds at peaks of the foreground distance transform.
	DeclumpShape
	// DeclumpManual seeds at the caller-supplied marker points.
	DeclumpManual
)

func (d DeclumpMethod) String() string {
	switch d {
	case DeclumpNone:
		return "None"
	case DeclumpIntensity:
		return "Intensity"
	case DeclumpShape:
		return "Shape"
	case DeclumpManual:
		return "Manual"
	default:
		return "Unknown"
	}
}

// WatershedMethod selects the surface along which dividing lines
// between clumped objects are drawn.
type WatershedMethod int

const (
	// WatershedNone labels connected foreground components directly.
	WatershedNone WatershedMethod = iota
	// WatershedIntensity floods the original intensity image.
	WatershedIntensity
	// WatershedDistance floods the distance-transformed foreground.
	WatershedDistance
)

func (w WatershedMethod) String() string {
	switch w {
	case WatershedNone:
		return "None"
	case WatershedIntensity:
		return "Intensity"
	case WatershedDistance:
		return "Distance"
	default:
		return "Unknown"
	}
}

// SizeSetting is a pixel dimension that is either an explicit value or
// derived automatically from the minimum object diameter.
type SizeSetting struct {
	auto  bool
	value float64
}

// AutoSize returns a setting resolved from the minimum object diameter.
func AutoSize() SizeSetting { return SizeSetting{auto: true} }

// PixelSize returns an explicit setting in pixels.
func PixelSize(v float64) SizeSetting { return SizeSetting{value: v} }

// IsAuto reports whether the setting is diameter-derived.
func (s SizeSetting) IsAuto() bool { return s.auto }

// Value returns the explicit pixel value; 0 for automatic settings.
func (s SizeSetting) Value() float64 { return s.value }

// Config holds every tunable segmentation parameter. It is a value
// object: Segment never modifies it, and the With* helpers return
// modified copies.
type Config struct {
	// ObjectName keys the measurements and derived label maps.
	ObjectName string

	// Equivalent-diameter range of expected objects, in pixels.
	MinDiameter float64
	MaxDiameter float64

	ExcludeSize   bool // discard objects outside the diameter range
	ExcludeBorder bool // discard objects touching the image border
	MergeSmall    bool // absorb too-small objects into neighbors

	Algorithm        ThresholdAlgorithm
	Modifier         ThresholdModifier
	CorrectionFactor float64 // multiplies the raw threshold
	LowerBound       float64 // threshold clamp, in [0,1]
	UpperBound       float64
	ObjectFraction   float64 // expected object-area fraction (MoG prior)

	Declump   DeclumpMethod
	Watershed WatershedMethod

	SmoothingSize       SizeSetting // Gaussian filter size for seeding
	SuppressionDistance SizeSetting // minimum distance between seeds
	LowResMaxima        bool        // search seeds on a downsampled image
	FillHoles           bool        // fill enclosed background pockets

	// Markers supplies the seed points for DeclumpManual.
	Markers []geometry.PointInt
}

// DefaultConfig returns the conventional nuclei-identification setup:
// Otsu Global thresholding, intensity declumping and watershed, and a
// 10-40 pixel diameter range.
func DefaultConfig() Config {
	return Config{
		ObjectName:          "Nuclei",
		MinDiameter:         10,
		MaxDiameter:         40,
		ExcludeSize:         true,
		ExcludeBorder:       true,
		MergeSmall:          false,
		Algorithm:           ThresholdOtsu,
		Modifier:            ThresholdGlobal,
		CorrectionFactor:    1.0,
		LowerBound:          0,
		UpperBound:          1,
		ObjectFraction:      0.01,
		Declump:             DeclumpIntensity,
		Watershed:           WatershedIntensity,
		SmoothingSize:       AutoSize(),
		SuppressionDistance: AutoSize(),
		LowResMaxima:        true,
		FillHoles:           true,
	}
}

// WithSizeRange returns a copy with a new expected diameter range.
func (c Config) WithSizeRange(minDiameter, maxDiameter float64) Config {
	c.MinDiameter = minDiameter
	c.MaxDiameter = maxDiameter
	return c
}

// WithThreshold returns a copy with a new algorithm and modifier.
func (c Config) WithThreshold(alg ThresholdAlgorithm, mod ThresholdModifier) Config {
	c.Algorithm = alg
	c.Modifier = mod
	return c
}

// WithDeclump returns a copy with new declump and watershed methods.
func (c Config) WithDeclump(d DeclumpMethod, w WatershedMethod) Config {
	c.Declump = d
	c.Watershed = w
	return c
}

// validate rejects out-of-range parameters before any pixel work.
func (c Config) validate() error {
	if c.ObjectName == "" {
		return &InvalidConfigurationError{Field: "ObjectName", Reason: "must not be empty"}
	}
	if c.MinDiameter < 1 {
		return &InvalidConfigurationError{Field: "MinDiameter", Reason: "must be at least 1 pixel"}
	}
	if c.MaxDiameter < c.MinDiameter {
		return &InvalidConfigurationError{Field: "MaxDiameter", Reason: "size range is inverted"}
	}
	if c.CorrectionFactor < 0 {
		return &InvalidConfigurationError{Field: "CorrectionFactor", Reason: "must not be negative"}
	}
	if c.LowerBound < 0 || c.LowerBound > 1 {
		return &InvalidConfigurationError{Field: "LowerBound", Reason: "must be in [0,1]"}
	}
	if c.UpperBound < 0 || c.UpperBound > 1 {
		return &InvalidConfigurationError{Field: "UpperBound", Reason: "must be in [0,1]"}
	}
	if c.LowerBound > c.UpperBound {
		return &InvalidConfigurationError{Field: "LowerBound", Reason: "threshold bounds are inverted"}
	}
	if c.ObjectFraction < 0 || c.ObjectFraction > 1 {
		return &InvalidConfigurationError{Field: "ObjectFraction", Reason: "must be in [0,1]"}
	}
	if !c.SmoothingSize.IsAuto() && c.SmoothingSize.Value() < 0 {
		return &InvalidConfigurationError{Field: "SmoothingSize", Reason: "must not be negative"}
	}
	if !c.SuppressionDistance.IsAuto() && c.SuppressionDistance.Value() < 0 {
		return &InvalidConfigurationError{Field: "SuppressionDistance", Reason: "must not be negative"}
	}
	if c.Algorithm < ThresholdOtsu || c.Algorithm > ThresholdKapur {
		return &InvalidConfigurationError{Field: "Algorithm", Reason: "unknown threshold algorithm"}
	}
	if c.Modifier < ThresholdGlobal || c.Modifier > ThresholdPerObject {
		return &InvalidConfigurationError{Field: "Modifier", Reason: "unknown threshold modifier"}
	}
	if c.Declump < DeclumpNone || c.Declump > DeclumpManual {
		return &InvalidConfigurationError{Field: "Declump", Reason: "unknown declump method"}
	}
	if c.Watershed < WatershedNone || c.Watershed > WatershedDistance {
		return &InvalidConfigurationError{Field: "Watershed", Reason: "unknown watershed method"}
	}
	return nil
}
