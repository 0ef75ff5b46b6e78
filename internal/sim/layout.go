package sim

// Grid layout for chambers. Pure functions of the chamber count and canvas
// size; restore re-derives identical viewports from the saved cols/rows.

// GridFor picks the grid shape for a chamber count: a single row up to 3,
// 3x2 up to 6, otherwise 4 columns and as many rows as needed.
func GridFor(count int) (cols, rows int) {
	switch {
	case count <= 0:
		return 0, 0
	case count <= 3:
		return count, 1
	case count <= 6:
		return 3, 2
	default:
		return 4, (count + 3) / 4
	}
}

// Viewports tiles the canvas into cols x rows cells and returns the first
// count of them in row-major order.
func Viewports(canvasW, canvasH float64, cols, rows, count int) []Rect {
	if cols <= 0 || rows <= 0 || count <= 0 {
		return nil
	}
	cellW := canvasW / float64(cols)
	cellH := canvasH / float64(rows)
	out := make([]Rect, 0, count)
	for i := 0; i < count; i++ {
		col := i % cols
		row := i / cols
		out = append(out, Rect{
			X: float64(col) * cellW,
			Y: float64(row) * cellH,
			W: cellW,
			H: cellH,
		})
	}
	return out
}
