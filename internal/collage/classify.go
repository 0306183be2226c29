package collage

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Bucket is a color classification. Buckets are laid out in declaration order.
type Bucket int

const (
	Colored Bucket = iota
	White
	Desaturated
	Black
)

func (b Bucket) String() string {
	switch b {
	case Colored:
		return "colored"
	case White:
		return "white"
	case Desaturated:
		return "desaturated"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

const (
	blackMax        = 30
	whiteMin        = 225
	desaturationMax = 0.2
	// majority is the percentage of visible pixels needed to leave the colored bucket.
	majority = 60.0
)

// Stats summarizes the visible (non-zero alpha) pixels of an image. Percentages are 0-100.
type Stats struct {
	Visible     int
	Black       float64
	White       float64
	Desaturated float64
	Hue         float64
}

// Analyze computes pixel statistics and the weighted dominant hue of img.
func Analyze(img image.Image) Stats {
	var (
		visible, black, white, desat int
		hueSum, weightSum            float64
	)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			visible++

			if c.R < blackMax && c.G < blackMax && c.B < blackMax {
				black++
			}
			if c.R > whiteMin && c.G > whiteMin && c.B > whiteMin {
				white++
			}
			if saturation(c) < desaturationMax {
				desat++
			}

			h, s, v := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hsv()
			w := s * v
			hueSum += h * w
			weightSum += w
		}
	}

	st := Stats{Visible: visible}
	if visible > 0 {
		st.Black = percent(black, visible)
		st.White = percent(white, visible)
		st.Desaturated = percent(desat, visible)
	}
	if weightSum > 0 {
		st.Hue = hueSum / weightSum
	}
	return st
}

func saturation(c color.NRGBA) float64 {
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	if hi == 0 {
		return 0
	}
	return float64(hi-lo) / float64(hi)
}

func percent(n, of int) float64 {
	return float64(n) / float64(of) * 100
}

// Bucket classifies the stats. Black wins over white, and white over desaturated.
func (s Stats) Bucket() Bucket {
	switch {
	case s.Black > majority:
		return Black
	case s.White > majority:
		return White
	case s.Desaturated > majority:
		return Desaturated
	default:
		return Colored
	}
}

// Classify returns the bucket of img.
func Classify(img image.Image) Bucket {
	return Analyze(img).Bucket()
}

// DominantHue returns the saturation*value weighted mean hue of img in degrees, or 0 for a colorless image.
func DominantHue(img image.Image) float64 {
	return Analyze(img).Hue
}

// ShiftHue rotates hue by shift degrees into [0, 360).
func ShiftHue(hue, shift float64) float64 {
	h := math.Mod(hue+shift, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// Tile is one input image in layout order.
type Tile struct {
	// Index is the position of the image in the input slice.
	Index  int
	Bucket Bucket
	// Hue is the display hue after shifting. It is only meaningful for colored tiles.
	Hue float64
}

// Order returns the layout order of images: colored by ascending shifted hue, then white,
// desaturated and black, each in input order.
func Order(images []image.Image, shift float64) []Tile {
	tiles := make([]Tile, len(images))
	for i, img := range images {
		st := Analyze(img)
		tiles[i] = Tile{Index: i, Bucket: st.Bucket(), Hue: ShiftHue(st.Hue, shift)}
	}

	slices.SortStableFunc(tiles, func(a, b Tile) int {
		if a.Bucket != b.Bucket {
			return int(a.Bucket) - int(b.Bucket)
		}
		if a.Bucket != Colored {
			return 0
		}
		switch {
		case a.Hue < b.Hue:
			return -1
		case a.Hue > b.Hue:
			return 1
		}
		return 0
	})
	return tiles
}
