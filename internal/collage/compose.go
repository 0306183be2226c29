package collage

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // GIF decoder for album art
	_ "image/jpeg" // JPEG decoder for album art
	"image/png"
	"io"

	"github.com/desertthunder/tessera/internal/shared"
	"github.com/nfnt/resize"
)

// Placement is where one input image was drawn.
type Placement struct {
	Tile
	Cell
}

// Layout describes a composed collage.
type Layout struct {
	Rows     int
	Columns  int
	TileSize int
	Width    int
	Height   int
	// Placements are in draw order. Images without a cell are omitted.
	Placements []Placement
}

// Plan computes the layout for images on a width×height target without drawing anything.
func Plan(images []image.Image, width, height int, hueShift float64) (Layout, error) {
	if len(images) == 0 {
		return Layout{}, shared.ErrNoImages
	}
	if width <= 0 || height <= 0 {
		return Layout{}, fmt.Errorf("%w: collage size %dx%d", shared.ErrInvalidArgument, width, height)
	}

	rows, cols := GridSize(len(images), width, height)
	tile := min(width/cols, height/rows)
	if tile < 1 {
		return Layout{}, fmt.Errorf("%w: %d images on %dx%d", shared.ErrTileTooSmall, len(images), width, height)
	}

	tiles := Order(images, hueShift)
	cells := DiagonalOrder(rows, cols, len(tiles))

	layout := Layout{
		Rows:       rows,
		Columns:    cols,
		TileSize:   tile,
		Width:      tile * cols,
		Height:     tile * rows,
		Placements: make([]Placement, 0, len(tiles)),
	}
	for i, t := range tiles {
		if i >= len(cells) {
			break
		}
		layout.Placements = append(layout.Placements, Placement{Tile: t, Cell: cells[i]})
	}
	return layout, nil
}

// Compose draws images into a single RGBA collage.
func Compose(images []image.Image, width, height int, hueShift float64) (*image.RGBA, Layout, error) {
	layout, err := Plan(images, width, height, hueShift)
	if err != nil {
		return nil, Layout{}, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	size := uint(layout.TileSize)
	for _, p := range layout.Placements {
		scaled := resize.Resize(size, size, images[p.Index], resize.NearestNeighbor)
		origin := image.Pt(p.Col*layout.TileSize, p.Row*layout.TileSize)
		dst := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(layout.TileSize, layout.TileSize))}
		draw.Draw(canvas, dst, scaled, scaled.Bounds().Min, draw.Over)
	}
	return canvas, layout, nil
}

// Decode decodes JPEG, PNG or GIF bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode collage: %w", err)
	}
	return nil
}
