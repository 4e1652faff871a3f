package visualizer

import "math"

// drawLineMask draws a Bresenham line into mask, keeping the highest
// layer value per cell.
func drawLineMask(mask [][]uint8, x0, y0, x1, y1 int, layer uint8) {
	maxY := len(mask)
	if maxY == 0 {
		return
	}
	maxX := len(mask[0])

	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		if y0 >= 0 && y0 < maxY && x0 >= 0 && x0 < maxX && mask[y0][x0] < layer {
			mask[y0][x0] = layer
		}

		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// ampToRow maps an amplitude in [-1, 1] to a row index, top row first.
func ampToRow(amp float64, height int) int {
	if height <= 1 {
		return 0
	}
	amp = clamp01((amp + 1) / 2)
	span := height - 1
	row := int(math.Round((1 - amp) * float64(span)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
