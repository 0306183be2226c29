// Package collage arranges album art into a single color-sorted image.
//
// Images are sorted into buckets by [Classify] (colored, white, desaturated, black). Colored images
// are ordered by [DominantHue] after a user hue shift. [GridSize] picks the grid whose shape is
// closest to the target aspect ratio, and [DiagonalOrder] fills it along anti-diagonals so neighbouring
// hues land next to each other. [Compose] runs the whole pipeline and does no I/O.
package collage
