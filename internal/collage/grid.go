package collage

import "math"

// Cell is a grid position.
type Cell struct {
	Row int
	Col int
}

// GridSize returns the rows and columns whose shape is closest to width:height while holding n tiles.
// Rows are scanned upward from 1 and the first best match wins.
func GridSize(n, width, height int) (rows, cols int) {
	if n <= 0 || width <= 0 || height <= 0 {
		return 0, 0
	}

	target := float64(width) / float64(height)
	best := math.Inf(1)
	rows, cols = 1, n

	for r := 1; r <= n; r++ {
		c := (n + r - 1) / r
		diff := math.Abs(float64(c)/float64(r) - target)
		if diff < best {
			best, rows, cols = diff, r, c
		}
	}
	return rows, cols
}

// DiagonalOrder lists cells along anti-diagonals: for each s, rows ascending with col = s - row.
//
// If the grid has fewer than n cells, columns are appended one at a time, each contributing one
// cell per row, until there are at least n positions. Compose never grows the grid since
// [GridSize] always returns rows*cols >= n.
func DiagonalOrder(rows, cols, n int) []Cell {
	if rows <= 0 || cols <= 0 {
		return nil
	}

	cells := make([]Cell, 0, max(rows*cols, n))
	for s := 0; s <= rows+cols-2; s++ {
		for row := 0; row < rows; row++ {
			col := s - row
			if col >= 0 && col < cols {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}

	for extra := cols; len(cells) < n; extra++ {
		for row := 0; row < rows; row++ {
			cells = append(cells, Cell{Row: row, Col: extra})
		}
	}
	return cells
}
