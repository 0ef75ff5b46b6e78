package sim

import (
	"math"
	"testing"
)

func TestGridForShapes(t *testing.T) {
	cases := []struct {
		count, cols, rows int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{3, 3, 1},
		{4, 3, 2},
		{6, 3, 2},
		{7, 4, 2},
		{12, 4, 3},
		{16, 4, 4},
	}
	for _, tc := range cases {
		cols, rows := GridFor(tc.count)
		if cols != tc.cols || rows != tc.rows {
			t.Errorf("GridFor(%d) = %dx%d, want %dx%d", tc.count, cols, rows, tc.cols, tc.rows)
		}
	}
}

func TestViewportsTileCanvasExactly(t *testing.T) {
	const w, h = 1920.0, 1080.0
	for _, count := range []int{1, 2, 3, 16} {
		cols, rows := GridFor(count)
		vps := Viewports(w, h, cols, rows, count)
		if len(vps) != count {
			t.Fatalf("count=%d: got %d viewports", count, len(vps))
		}

		// Full grids must tile without gaps or overlap: total area matches
		// and every cell edge lands on the grid lines.
		var area float64
		for i, vp := range vps {
			area += vp.W * vp.H
			wantX := float64(i%cols) * w / float64(cols)
			wantY := float64(i/cols) * h / float64(rows)
			if math.Abs(vp.X-wantX) > 1e-9 || math.Abs(vp.Y-wantY) > 1e-9 {
				t.Errorf("count=%d viewport %d at (%f,%f), want (%f,%f)",
					count, i, vp.X, vp.Y, wantX, wantY)
			}
		}
		if math.Abs(area-w*h) > 1e-6 {
			t.Errorf("count=%d: tiled area %f != canvas area %f", count, area, w*h)
		}
	}
}

func TestViewportsRederivableFromSavedGrid(t *testing.T) {
	first := Viewports(1280, 720, 4, 4, 16)
	second := Viewports(1280, 720, 4, 4, 16)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("layout is not deterministic at index %d", i)
		}
	}
}
