package cellseg

import (
	"fmt"

	"cellseg/internal/regions"
)

// Measurements holds the per-image and per-object features reported
// for a segmentation, keyed the conventional way: image-level
// Count_<name> and Threshold_FinalThreshold_<name>, object-level
// Location_Center_X and Location_Center_Y indexed by label-1.
type Measurements struct {
	ObjectName string
	Image      map[string]float64
	PerObject  map[string][]float64
}

const (
	// Per-object feature names.
	FeatureCenterX = "Location_Center_X"
	FeatureCenterY = "Location_Center_Y"
)

// CountKey returns the image-level object count key for a name.
func CountKey(objectName string) string {
	return fmt.Sprintf("Count_%s", objectName)
}

// ThresholdKey returns the image-level final threshold key for a name.
func ThresholdKey(objectName string) string {
	return fmt.Sprintf("Threshold_FinalThreshold_%s", objectName)
}

func measure(r *Result) Measurements {
	xs, ys := regions.Centroids(r.Objects, r.Count)
	return Measurements{
		ObjectName: r.ObjectName,
		Image: map[string]float64{
			CountKey(r.ObjectName):     float64(r.Count),
			ThresholdKey(r.ObjectName): r.Threshold,
		},
		PerObject: map[string][]float64{
			FeatureCenterX: xs,
			FeatureCenterY: ys,
		},
	}
}
