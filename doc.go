// Package cellseg identifies discrete primary objects (typically cell
// nuclei) in grayscale intensity images. It separates foreground from
// background with an automatic threshold, resolves touching objects by
// seeded watershed, filters the resulting regions by size and border
// contact, and reports a labeled segmentation with per-image and
// per-object measurements.
//
// The engine is a pure function of (image, mask, configuration): it
// holds no state between invocations, so a single Engine may serve
// concurrent Segment calls on distinct images.
package cellseg
