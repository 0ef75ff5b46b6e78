package sim

// Canvas is the drawing capability the host exposes to chambers. Only Draw
// methods touch it; physics never depends on it. Coordinates are global
// canvas pixels, colors are "#rrggbb" strings, alpha is 0..1.
type Canvas interface {
	FillCircle(x, y, r float64, color string, alpha float64)
	StrokeCircle(x, y, r, width float64, color string, alpha float64)
	FillRect(x, y, w, h float64, color string, alpha float64)
	Line(x1, y1, x2, y2, width float64, color string, alpha float64)
	PushClip(x, y, w, h float64)
	PopClip()
}

// NopCanvas discards all drawing. Headless servers pass it to Draw.
type NopCanvas struct{}

func (NopCanvas) FillCircle(x, y, r float64, color string, alpha float64)          {}
func (NopCanvas) StrokeCircle(x, y, r, width float64, color string, alpha float64) {}
func (NopCanvas) FillRect(x, y, w, h float64, color string, alpha float64)         {}
func (NopCanvas) Line(x1, y1, x2, y2, width float64, color string, alpha float64)  {}
func (NopCanvas) PushClip(x, y, w, h float64)                                      {}
func (NopCanvas) PopClip()                                                         {}
