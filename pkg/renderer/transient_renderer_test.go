package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/film"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/integrator"
	"github.com/df07/go-transient-raytracer/pkg/material"
	"github.com/df07/go-transient-raytracer/pkg/scene"
	"github.com/df07/go-transient-raytracer/pkg/sensor"
)

// A camera staring at an emissive quad filling its whole field of view
func emissiveWallSetup(t *testing.T, scale *ad.Param) (*scene.Scene, sensor.Sensor, *film.TransientFilm) {
	t.Helper()

	s := scene.NewScene()
	emission := core.NewVec3(15, 12, 9)
	var mat material.Material
	if scale != nil {
		mat = material.NewGradEmissive(emission, scale)
		s.AddParam(scale)
	} else {
		mat = material.NewEmissive(emission)
	}
	s.AddShape(geometry.NewQuad(
		core.NewVec3(-2, -2, -1),
		core.NewVec3(4, 0, 0),
		core.NewVec3(0, 4, 0),
		mat,
	))

	cam := sensor.NewPinhole(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 1, 0),
		90, 2, 2,
	)

	f, err := film.NewTransientFilm(film.Config{
		Width:        2,
		Height:       2,
		TemporalBins: 8,
		BinWidth:     0.5,
		StartOffset:  0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return s, cam, f
}

func TestNewTransientRendererValidation(t *testing.T) {
	s, cam, f := emissiveWallSetup(t, nil)
	cfg := DefaultConfig()
	cfg.SamplesPerPixel = 0
	if _, err := NewTransientRenderer(cfg, integrator.DefaultConfig(), s, cam, f); err == nil {
		t.Error("Expected error for zero samples per pixel")
	}

	// Integrator configuration errors surface at construction
	badIntegrator := integrator.DefaultConfig()
	badIntegrator.MaxDepth = 0
	if _, err := NewTransientRenderer(DefaultConfig(), badIntegrator, s, cam, f); err == nil {
		t.Error("Expected integrator config error to surface")
	}

	// The film must be shaped like the sensor's pixel grid
	big, err := film.NewTransientFilm(film.Config{
		Width:        8,
		Height:       8,
		TemporalBins: 8,
		BinWidth:     0.5,
		StartOffset:  0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := NewTransientRenderer(DefaultConfig(), integrator.DefaultConfig(), s, cam, big); err == nil {
		t.Error("Expected error for a film not matching the sensor's grid")
	}
}

func TestPlanPasses(t *testing.T) {
	s, _, _ := emissiveWallSetup(t, nil)

	f, err := film.NewTransientFilm(film.Config{
		Width:        256,
		Height:       256,
		TemporalBins: 4,
		BinWidth:     0.5,
		StartOffset:  0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cam := sensor.NewPinhole(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 1, 0),
		90, 256, 256,
	)

	cfg := DefaultConfig()
	cfg.SamplesPerPixel = 2048 // 256*256*2048 lanes exceed one pass
	r, err := NewTransientRenderer(cfg, integrator.DefaultConfig(), s, cam, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	passes, err := r.planPasses()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(passes) < 2 {
		t.Fatalf("Expected the budget to split into several passes, got %v", passes)
	}

	total := 0
	pixels := 256 * 256
	for _, spp := range passes {
		if spp < 1 || pixels*spp > maxLanesPerPass {
			t.Errorf("Expected every pass within the lane budget, got %d spp", spp)
		}
		total += spp
	}
	if total != 2048 {
		t.Errorf("Expected passes to cover 2048 spp, got %d", total)
	}

	// Small renders fit in a single pass
	small, err := NewTransientRenderer(DefaultConfig(), integrator.DefaultConfig(), s, cam, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	passes, err = small.planPasses()
	if err != nil || len(passes) != 1 || passes[0] != DefaultConfig().SamplesPerPixel {
		t.Errorf("Expected a single full pass, got %v (%v)", passes, err)
	}
}

func TestRenderEmissiveWall(t *testing.T) {
	s, cam, f := emissiveWallSetup(t, nil)

	cfg := DefaultConfig()
	cfg.SamplesPerPixel = 4
	cfg.NumWorkers = 2
	cfg.Seed = 42
	r, err := NewTransientRenderer(cfg, integrator.DefaultConfig(), s, cam, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := r.Render()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Every pixel sees the quad's radiance exactly
	emission := core.NewVec3(15, 12, 9)
	for p, steady := range result.Steady {
		if steady.Subtract(emission).Length() > 1e-9 {
			t.Errorf("Pixel %d: expected steady %v, got %v", p, emission, steady)
		}
	}

	// All energy sits in the bins covering the quad's distance range
	for p := 0; p < 4; p++ {
		var sum core.Vec3
		for b := 2; b <= 3; b++ { // Optical path lengths in [1, sqrt(3)]
			sum = sum.Add(result.Transient[p*8+b])
		}
		if sum.Subtract(result.Steady[p]).Length() > 1e-9 {
			t.Errorf("Pixel %d: expected all energy within the quad's distance range", p)
		}
	}
}

func TestRenderDeterminism(t *testing.T) {
	render := func() *film.Result {
		s, cam, f := emissiveWallSetup(t, nil)
		cfg := DefaultConfig()
		cfg.SamplesPerPixel = 4
		cfg.NumWorkers = 3
		cfg.Seed = 7
		r, err := NewTransientRenderer(cfg, integrator.DefaultConfig(), s, cam, f)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		result, err := r.Render()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return result
	}

	a, b := render(), render()
	for i := range a.Transient {
		if a.Transient[i] != b.Transient[i] {
			t.Fatalf("Expected identical renders for the same seed, diverged at %d", i)
		}
	}
}

func TestRenderBackwardGradient(t *testing.T) {
	scale := ad.NewParam("light-scale", 1.0)
	s, cam, f := emissiveWallSetup(t, scale)

	cfg := DefaultConfig()
	cfg.SamplesPerPixel = 4
	cfg.NumWorkers = 2
	cfg.Seed = 11
	r, err := NewTransientRenderer(cfg, integrator.DefaultConfig(), s, cam, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pixels := 4
	steadyAdjoint := make([]core.Vec3, pixels)
	for i := range steadyAdjoint {
		steadyAdjoint[i] = core.NewVec3(1, 1, 1)
	}

	if err := r.RenderBackward(steadyAdjoint, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The steady image is emission * scale per pixel, so the gradient against
	// a unit adjoint is pixels * (15 + 12 + 9)
	want := float64(pixels) * 36.0
	if got := scale.Grad(); math.Abs(got-want) > 1e-6 {
		t.Errorf("Expected grad %g, got %g", want, got)
	}
}

func TestRenderBackwardDetachedError(t *testing.T) {
	// A parameter is registered but no differentiable material is reachable,
	// so the backward pass must fail loudly instead of returning zeros
	s, cam, f := emissiveWallSetup(t, nil)
	s.AddParam(ad.NewParam("orphan", 1.0))

	cfg := DefaultConfig()
	cfg.SamplesPerPixel = 2
	cfg.Seed = 3
	r, err := NewTransientRenderer(cfg, integrator.DefaultConfig(), s, cam, f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	steadyAdjoint := make([]core.Vec3, 4)
	for i := range steadyAdjoint {
		steadyAdjoint[i] = core.NewVec3(1, 1, 1)
	}
	if err := r.RenderBackward(steadyAdjoint, nil); err == nil {
		t.Error("Expected an error when no parameter is attached")
	}
}
