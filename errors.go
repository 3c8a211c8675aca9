package cellseg

import "fmt"

// DegenerateImageError reports that no threshold statistic could be
// computed: the mask selects zero valid pixels, or the masked image is
// flat with no usable histogram. Segmentation never proceeds with a
// fabricated threshold.
type DegenerateImageError struct {
	Reason string
}

func (e *DegenerateImageError) Error() string {
	return fmt.Sprintf("degenerate image: %s", e.Reason)
}

// InvalidConfigurationError reports an out-of-range parameter, detected
// before any pixel processing begins.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
