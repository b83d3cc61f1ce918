package film

import "math"

// Filter is a spatial reconstruction filter used when splatting samples onto
// the pixel grid
type Filter interface {
	// Radius returns the filter support radius in pixels
	Radius() float64

	// Eval evaluates the filter weight at offset (dx, dy) from the filter center
	Eval(dx, dy float64) float64
}

// BoxFilter weights every sample within half a pixel equally
type BoxFilter struct{}

// NewBoxFilter creates a box filter with a half pixel radius
func NewBoxFilter() BoxFilter { return BoxFilter{} }

func (BoxFilter) Radius() float64 { return 0.5 }

func (BoxFilter) Eval(dx, dy float64) float64 {
	if math.Abs(dx) <= 0.5 && math.Abs(dy) <= 0.5 {
		return 1.0
	}
	return 0.0
}

// TentFilter weights samples linearly by distance from the pixel center
type TentFilter struct {
	radius float64
}

// NewTentFilter creates a tent filter with the given radius in pixels
func NewTentFilter(radius float64) TentFilter {
	return TentFilter{radius: radius}
}

func (t TentFilter) Radius() float64 { return t.radius }

func (t TentFilter) Eval(dx, dy float64) float64 {
	wx := t.radius - math.Abs(dx)
	wy := t.radius - math.Abs(dy)
	if wx <= 0 || wy <= 0 {
		return 0.0
	}
	return wx * wy
}
