// Package film implements a three dimensional sample accumulator: a 2D pixel
// grid where every pixel carries a histogram over optical path length. Samples
// are splatted concurrently through a spatial reconstruction filter, and the
// same filter geometry drives adjoint lookups during backward rendering.
package film

import (
	"fmt"
	"math"

	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Config describes the film's spatial and temporal resolution
type Config struct {
	Width        int     // Horizontal pixel count
	Height       int     // Vertical pixel count
	TemporalBins int     // Number of path length histogram bins per pixel
	BinWidth     float64 // Optical path length covered by one bin
	StartOffset  float64 // Optical path length at the start of the first bin
	Filter       Filter  // Spatial reconstruction filter (box when nil)
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("film resolution must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.TemporalBins <= 0 {
		return fmt.Errorf("film needs at least one temporal bin, got %d", c.TemporalBins)
	}
	if c.BinWidth <= 0 {
		return fmt.Errorf("temporal bin width must be positive, got %g", c.BinWidth)
	}
	return nil
}

// MaxDistance returns the optical path length at the end of the last bin
func (c Config) MaxDistance() float64 {
	return c.StartOffset + float64(c.TemporalBins)*c.BinWidth
}

// Result holds a developed film: the steady state image and the full
// per-pixel histograms, both normalized by the accumulated sample weight
type Result struct {
	Width, Height, Bins int
	Steady              []core.Vec3 // Width*Height, histogram sum per pixel
	Transient           []core.Vec3 // Width*Height*Bins, bin b of pixel (x,y) at (y*Width+x)*Bins+b
}

// TransientFilm accumulates radiance samples into per-pixel path length
// histograms. All accumulators are lock-free so render workers splat directly.
type TransientFilm struct {
	config Config
	filter Filter

	data   []core.AtomicFloat64 // Width*Height*Bins*3 radiance channels
	weight []core.AtomicFloat64 // Width*Height filter weight accumulators

	// Adjoint buffers for backward rendering, set via SetAdjoint
	adjointSteady    []core.Vec3
	adjointTransient []core.Vec3
}

// NewTransientFilm creates a film for the given configuration
func NewTransientFilm(config Config) (*TransientFilm, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	filter := config.Filter
	if filter == nil {
		filter = NewBoxFilter()
	}
	pixels := config.Width * config.Height
	return &TransientFilm{
		config: config,
		filter: filter,
		data:   make([]core.AtomicFloat64, pixels*config.TemporalBins*3),
		weight: make([]core.AtomicFloat64, pixels),
	}, nil
}

// Config returns the film configuration
func (f *TransientFilm) Config() Config {
	return f.config
}

// Bin returns the histogram bin for an optical path length, and whether the
// length falls inside the recorded range
func (f *TransientFilm) Bin(distance float64) (int, bool) {
	bin := int(math.Floor((distance - f.config.StartOffset) / f.config.BinWidth))
	if bin < 0 || bin >= f.config.TemporalBins {
		return 0, false
	}
	return bin, true
}

// footprint visits every pixel covered by the filter at pos
func (f *TransientFilm) footprint(pos core.Vec2, visit func(px, py int, filterWeight float64)) {
	r := f.filter.Radius()
	x0 := int(math.Ceil(pos.X - 0.5 - r))
	x1 := int(math.Floor(pos.X - 0.5 + r))
	y0 := int(math.Ceil(pos.Y - 0.5 - r))
	y1 := int(math.Floor(pos.Y - 0.5 + r))
	for py := max(y0, 0); py <= min(y1, f.config.Height-1); py++ {
		for px := max(x0, 0); px <= min(x1, f.config.Width-1); px++ {
			w := f.filter.Eval(float64(px)+0.5-pos.X, float64(py)+0.5-pos.Y)
			if w > 0 {
				visit(px, py, w)
			}
		}
	}
}

// AddSample splats a radiance contribution at the given image position and
// optical path length. Contributions outside the recorded path length range
// are dropped.
func (f *TransientFilm) AddSample(pos core.Vec2, distance float64, value core.Vec3) {
	bin, ok := f.Bin(distance)
	if !ok {
		return
	}
	f.footprint(pos, func(px, py int, filterWeight float64) {
		base := ((py*f.config.Width+px)*f.config.TemporalBins + bin) * 3
		f.data[base+0].Add(filterWeight * value.X)
		f.data[base+1].Add(filterWeight * value.Y)
		f.data[base+2].Add(filterWeight * value.Z)
	})
}

// RegisterSample accumulates the filter weight of one camera sample at the
// given image position. sampleWeight is 1 for a plain sample; reuse strategies
// that account for several virtual samples at once pass the larger count so
// normalization stays unbiased.
func (f *TransientFilm) RegisterSample(pos core.Vec2, sampleWeight float64) {
	f.footprint(pos, func(px, py int, filterWeight float64) {
		f.weight[py*f.config.Width+px].Add(filterWeight * sampleWeight)
	})
}

// Develop normalizes the accumulated histograms by the per-pixel sample
// weight and returns both the steady state image and the full histograms
func (f *TransientFilm) Develop() *Result {
	result := &Result{
		Width:     f.config.Width,
		Height:    f.config.Height,
		Bins:      f.config.TemporalBins,
		Steady:    make([]core.Vec3, f.config.Width*f.config.Height),
		Transient: make([]core.Vec3, f.config.Width*f.config.Height*f.config.TemporalBins),
	}
	for p := 0; p < f.config.Width*f.config.Height; p++ {
		w := f.weight[p].Load()
		if w <= 0 {
			continue
		}
		inv := 1.0 / w
		for b := 0; b < f.config.TemporalBins; b++ {
			base := (p*f.config.TemporalBins + b) * 3
			v := core.Vec3{
				X: f.data[base+0].Load() * inv,
				Y: f.data[base+1].Load() * inv,
				Z: f.data[base+2].Load() * inv,
			}
			result.Transient[p*f.config.TemporalBins+b] = v
			result.Steady[p] = result.Steady[p].Add(v)
		}
	}
	return result
}

// Clear resets all accumulators
func (f *TransientFilm) Clear() {
	for i := range f.data {
		f.data[i].Store(0)
	}
	for i := range f.weight {
		f.weight[i].Store(0)
	}
}

// SetAdjoint installs the adjoint images driving a backward render: steady is
// the gradient of the objective with respect to the steady state image
// (length Width*Height), transient the gradient with respect to the
// histograms (length Width*Height*Bins, may be nil). Call after the primal
// snapshot pass so the per-pixel weights used for normalization are in place.
func (f *TransientFilm) SetAdjoint(steady, transient []core.Vec3) error {
	if steady != nil && len(steady) != f.config.Width*f.config.Height {
		return fmt.Errorf("steady adjoint has %d entries, film has %d pixels",
			len(steady), f.config.Width*f.config.Height)
	}
	if transient != nil && len(transient) != f.config.Width*f.config.Height*f.config.TemporalBins {
		return fmt.Errorf("transient adjoint has %d entries, film has %d cells",
			len(transient), f.config.Width*f.config.Height*f.config.TemporalBins)
	}
	f.adjointSteady = steady
	f.adjointTransient = transient
	return nil
}

// AdjointSteady pulls the adjoint of a sample splatted at pos, summed over
// every bin the sample could land in. This is the mechanical derivative of
// the splat plus weight normalization with respect to the sample value.
func (f *TransientFilm) AdjointSteady(pos core.Vec2) core.Vec3 {
	var adj core.Vec3
	f.footprint(pos, func(px, py int, filterWeight float64) {
		p := py*f.config.Width + px
		w := f.weight[p].Load()
		if w <= 0 {
			return
		}
		if f.adjointSteady != nil {
			adj = adj.Add(f.adjointSteady[p].Multiply(filterWeight / w))
		}
	})
	return adj
}

// AdjointAt pulls the adjoint of a sample splatted at pos into the bin for
// the given optical path length, including the steady state adjoint which
// every bin contributes to.
func (f *TransientFilm) AdjointAt(pos core.Vec2, distance float64) core.Vec3 {
	bin, ok := f.Bin(distance)
	if !ok {
		return core.Vec3{}
	}
	var adj core.Vec3
	f.footprint(pos, func(px, py int, filterWeight float64) {
		p := py*f.config.Width + px
		w := f.weight[p].Load()
		if w <= 0 {
			return
		}
		scale := filterWeight / w
		if f.adjointSteady != nil {
			adj = adj.Add(f.adjointSteady[p].Multiply(scale))
		}
		if f.adjointTransient != nil {
			adj = adj.Add(f.adjointTransient[p*f.config.TemporalBins+bin].Multiply(scale))
		}
	})
	return adj
}
