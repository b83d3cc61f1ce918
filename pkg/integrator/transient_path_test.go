package integrator

import (
	"math"
	"strings"
	"testing"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/film"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/lights"
	"github.com/df07/go-transient-raytracer/pkg/log"
	"github.com/df07/go-transient-raytracer/pkg/material"
	"github.com/df07/go-transient-raytracer/pkg/scene"
)

var testLogger = log.New("integrator-test")

func testFilm(t *testing.T) *film.TransientFilm {
	t.Helper()
	f, err := film.NewTransientFilm(film.Config{
		Width:        4,
		Height:       4,
		TemporalBins: 8,
		BinWidth:     0.5,
		StartOffset:  0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return f
}

// A diffuse floor in the z=0 plane lit by a laser from above. The laser is a
// delta light, so all direct illumination comes from next event estimation.
func floorLaserScene() *scene.Scene {
	s := scene.NewScene()
	s.AddShape(geometry.NewQuad(
		core.NewVec3(-1, -1, 0),
		core.NewVec3(2, 0, 0),
		core.NewVec3(0, 2, 0),
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
	))
	s.AddLight(lights.NewLaser(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 0), core.NewVec3(100, 100, 100), 0.5))
	return s
}

// An emissive quad at z=2 facing the origin
func emissiveQuadScene(emission core.Vec3, scale *ad.Param) *scene.Scene {
	s := scene.NewScene()
	var mat material.Material
	if scale != nil {
		mat = material.NewGradEmissive(emission, scale)
		s.AddParam(scale)
	} else {
		mat = material.NewEmissive(emission)
	}
	s.AddShape(geometry.NewQuad(
		core.NewVec3(-1, -1, 2),
		core.NewVec3(0, 2, 0),
		core.NewVec3(2, 0, 0),
		mat,
	))
	return s
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CameraUnwarp = true
	if err := cfg.Validate(testLogger); err == nil {
		t.Error("Expected error for camera unwarp")
	} else if !strings.Contains(err.Error(), "account-first-and-last-bounces") {
		t.Errorf("Expected the error to point at the sensor setting, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.MaxDepth = 0
	if err := cfg.Validate(testLogger); err == nil {
		t.Error("Expected error for zero max depth")
	}

	cfg = DefaultConfig()
	cfg.RRDepth = 0
	if err := cfg.Validate(testLogger); err == nil {
		t.Error("Expected error for zero russian roulette depth")
	}

	cfg = DefaultConfig()
	if err := cfg.Validate(testLogger); err != nil {
		t.Errorf("Unexpected error for default config: %v", err)
	}
}

func TestLaserSamplingPreparation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LaserSampling = true

	// No laser in the scene
	s := floorLaserScene()
	if _, err := NewTransientPath(cfg, s, testFilm(t), testLogger); err == nil {
		t.Error("Expected error for laser sampling without a laser")
	}

	// Beam missing everything
	s.Laser = lights.NewLaser(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, 4), core.NewVec3(100, 100, 100), 0.01)
	_, err := NewTransientPath(cfg, s, testFilm(t), testLogger)
	if err == nil || !strings.Contains(err.Error(), "not pointing at the scene") {
		t.Errorf("Expected misaimed laser error, got %v", err)
	}

	// Beam landing on the floor
	s.Laser = lights.NewLaser(core.NewVec3(0, 0, 2), core.NewVec3(0.2, 0.1, 0), core.NewVec3(100, 100, 100), 0.01)
	if _, err := NewTransientPath(cfg, s, testFilm(t), testLogger); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestHiddenGeometryPreparation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HiddenGeometrySampling = true

	// Only a relay wall: nothing to sample
	s := floorLaserScene()
	s.RelayWallIndex = 0
	if _, err := NewTransientPath(cfg, s, testFilm(t), testLogger); err == nil {
		t.Error("Expected error with no hidden geometry")
	}

	// Including the wall makes it eligible again
	cfg.HGSamplingIncludesRelayWall = true
	if _, err := NewTransientPath(cfg, s, testFilm(t), testLogger); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	// A hidden shape besides the wall
	cfg.HGSamplingIncludesRelayWall = false
	s.AddShape(geometry.NewQuad(
		core.NewVec3(-0.4, -0.4, 1),
		core.NewVec3(0, 0.8, 0),
		core.NewVec3(0.8, 0, 0),
		material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7)),
	))
	if _, err := NewTransientPath(cfg, s, testFilm(t), testLogger); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDirectEmissionSplat(t *testing.T) {
	emission := core.NewVec3(15, 12, 9)
	s := emissiveQuadScene(emission, nil)
	f := testFilm(t)

	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	tp, err := NewTransientPath(cfg, s, f, testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := core.NewVec2(0.5, 0.5)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	sampler := core.NewSeededSampler(1, 0)

	radiance, extraWeight, valid := tp.Sample(ModePrimal, sampler, ray, pos,
		core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
	if !valid {
		t.Fatal("Expected a valid path")
	}
	if radiance.Subtract(emission).Length() > 1e-9 {
		t.Errorf("Expected radiance %v, got %v", emission, radiance)
	}
	f.RegisterSample(pos, extraWeight)

	// The contribution lands in the bin of optical path length 2
	result := f.Develop()
	bin := result.Transient[0*8+4]
	if bin.Subtract(emission).Length() > 1e-9 {
		t.Errorf("Expected emission in bin 4, got %v", bin)
	}
}

func TestPathsBeyondMaxDistanceAreDropped(t *testing.T) {
	s := emissiveQuadScene(core.NewVec3(15, 12, 9), nil)
	f := testFilm(t)

	cfg := DefaultConfig()
	cfg.MaxDistance = 1.5 // Shorter than the distance to the quad
	tp, err := NewTransientPath(cfg, s, f, testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := core.NewVec2(0.5, 0.5)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	radiance, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(1, 0), ray, pos,
		core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
	if !radiance.IsZero() {
		t.Errorf("Expected zero radiance past the distance limit, got %v", radiance)
	}

	result := f.Develop()
	for _, v := range result.Transient {
		if !v.IsZero() {
			t.Fatal("Expected an empty film")
		}
	}
}

func TestNEEDepthGating(t *testing.T) {
	// Direct lighting at the first vertex comes only from next event
	// estimation: the laser is a delta light the scattered ray cannot hit
	want := 12.5 / math.Pi // brdf 0.5/π times irradiance 100/d²

	sample := func(cfg Config) core.Vec3 {
		s := floorLaserScene()
		tp, err := NewTransientPath(cfg, s, testFilm(t), testLogger)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
		radiance, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(2, 0), ray,
			core.NewVec2(0.5, 0.5), core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
		return radiance
	}

	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	if got := sample(cfg); math.Abs(got.X-want) > 1e-9 {
		t.Errorf("Expected direct lighting %g, got %g", want, got.X)
	}

	// Discarding direct paths silences estimation below depth 2
	cfg.DiscardDirectPaths = true
	if got := sample(cfg); !got.IsZero() {
		t.Errorf("Expected zero radiance with direct paths discarded, got %v", got)
	}

	// An exact filter depth overrides the discard
	cfg.FilterDepth = 0
	if got := sample(cfg); math.Abs(got.X-want) > 1e-9 {
		t.Errorf("Expected filter depth to restore the contribution, got %g", got.X)
	}
}

func TestPrimalReplayMatchesPrimal(t *testing.T) {
	s := floorLaserScene()
	f := testFilm(t)
	cfg := DefaultConfig()
	tp, err := NewTransientPath(cfg, s, f, testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := core.NewVec2(1.5, 2.5)
	ray := core.NewRay(core.NewVec3(0.3, -0.2, 1), core.NewVec3(0, 0, -1))
	weight := core.NewVec3(1, 1, 1)

	for lane := int64(0); lane < 8; lane++ {
		primal, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(7, lane), ray, pos,
			weight, core.Vec3{}, core.Vec3{}, nil)
		replay, _, _ := tp.Sample(ModePrimalReplay, core.NewSeededSampler(7, lane), ray, pos,
			weight, core.Vec3{}, core.Vec3{}, nil)
		if primal.Subtract(replay).Length() > 1e-12 {
			t.Fatalf("Lane %d: expected replay %v to match primal %v", lane, replay, primal)
		}
	}
}

func TestBackwardGradientDirectEmission(t *testing.T) {
	emission := core.NewVec3(15, 12, 9)
	scale := ad.NewParam("light-scale", 1.0)
	s := emissiveQuadScene(emission, scale)
	f := testFilm(t)

	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	tp, err := NewTransientPath(cfg, s, f, testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := core.NewVec2(0.5, 0.5)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	weight := core.NewVec3(1, 1, 1)

	// Primal pass establishes the per-pixel weight the adjoints divide by
	radiance, extraWeight, _ := tp.Sample(ModePrimal, core.NewSeededSampler(1, 0), ray, pos,
		weight, core.Vec3{}, core.Vec3{}, nil)
	f.RegisterSample(pos, extraWeight)

	// A unit steady adjoint
	steady := make([]core.Vec3, 16)
	for i := range steady {
		steady[i] = core.NewVec3(1, 1, 1)
	}
	if err := f.SetAdjoint(steady, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tape := ad.NewTape()
	deltaL := f.AdjointSteady(pos).MultiplyVec(weight)
	tp.Sample(ModeBackward, core.NewSeededSampler(1, 0), ray, pos,
		weight, deltaL, radiance, tape)
	tape.Backward()

	// The image is linear in the scale, so the gradient against a unit
	// adjoint is the summed emission
	want := emission.X + emission.Y + emission.Z
	if got := scale.Grad(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected grad %g, got %g", want, got)
	}
}

func TestHiddenGeometrySamplingFindsTarget(t *testing.T) {
	// Hidden-scene capture: relay wall plus one hidden target. With hidden
	// geometry sampling and laser connections every lane that scatters toward
	// the target carries radiance.
	s, _, err := scene.NewNLOSBoxScene(scene.NLOSBoxOptions{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f, err := film.NewTransientFilm(film.Config{
		Width:        4,
		Height:       4,
		TemporalBins: 32,
		BinWidth:     0.25,
		StartOffset:  0,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cfg := DefaultConfig()
	cfg.LaserSampling = true
	cfg.HiddenGeometrySampling = true
	tp, err := NewTransientPath(cfg, s, f, testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// A ray from the sensor to the middle of the wall
	origin := core.NewVec3(0, 0, 0.25)
	direction := core.NewVec3(0.1, 0.1, 0).Subtract(origin).Normalize()
	rayTime := -origin.Subtract(core.NewVec3(0.1, 0.1, 0)).Length()

	total := core.Vec3{}
	for lane := int64(0); lane < 16; lane++ {
		ray := core.NewRayWithTime(origin, direction, rayTime)
		radiance, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(3, lane), ray,
			core.NewVec2(2.5, 2.5), core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
		total = total.Add(radiance)
	}
	if total.MaxComponent() <= 0 {
		t.Error("Expected hidden geometry sampling to pick up radiance from the target")
	}
}

func TestUnboundedMaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = -2
	if err := cfg.Validate(testLogger); err == nil {
		t.Error("Expected error for negative max depth")
	}

	cfg.MaxDepth = -1
	if err := cfg.Validate(testLogger); err != nil {
		t.Fatalf("Unexpected error for unbounded max depth: %v", err)
	}

	s := floorLaserScene()
	tp, err := NewTransientPath(cfg, s, testFilm(t), testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Next event estimation still runs at the first vertex, so the path does
	// not terminate before scattering even once
	want := 12.5 / math.Pi
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	radiance, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(2, 0), ray,
		core.NewVec2(0.5, 0.5), core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
	if math.Abs(radiance.X-want) > 1e-9 {
		t.Errorf("Expected direct lighting %g, got %g", want, radiance.X)
	}
}

// A 2x2x2 diffuse box with an emissive ceiling. Light interreflects several
// times, so contributions past the roulette depth matter.
func diffuseBoxScene() *scene.Scene {
	s := scene.NewScene()
	white := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	s.AddShape(geometry.NewQuad( // Floor, facing up
		core.NewVec3(-1, 0, -1), core.NewVec3(0, 0, 2), core.NewVec3(2, 0, 0), white))
	s.AddShape(geometry.NewQuad( // Back wall, facing +z
		core.NewVec3(-1, 0, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), white))
	s.AddShape(geometry.NewQuad( // Front wall, facing -z
		core.NewVec3(-1, 0, 1), core.NewVec3(0, 2, 0), core.NewVec3(2, 0, 0), white))
	s.AddShape(geometry.NewQuad( // Left wall, facing +x
		core.NewVec3(-1, 0, -1), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 2), white))
	s.AddShape(geometry.NewQuad( // Right wall, facing -x
		core.NewVec3(1, 0, -1), core.NewVec3(0, 0, 2), core.NewVec3(0, 2, 0), white))

	light := lights.NewQuadLight( // Ceiling, facing down
		core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2),
		material.NewEmissive(core.NewVec3(5, 5, 5)))
	s.AddShape(light.Quad)
	s.AddLight(light)
	return s
}

func TestRouletteTerminationIsUnbiased(t *testing.T) {
	mean := func(rrDepth int) float64 {
		f, err := film.NewTransientFilm(film.Config{
			Width:        4,
			Height:       4,
			TemporalBins: 64,
			BinWidth:     1.0,
			StartOffset:  0,
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		cfg := DefaultConfig()
		cfg.MaxDepth = 6
		cfg.RRDepth = rrDepth
		tp, err := NewTransientPath(cfg, diffuseBoxScene(), f, testLogger)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
		total := 0.0
		const lanes = 20000
		for lane := int64(0); lane < lanes; lane++ {
			radiance, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(13, lane), ray,
				core.NewVec2(0.5, 0.5), core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
			total += radiance.X
		}
		return total / lanes
	}

	// With the roulette depth at max depth the roulette never cuts a path, so
	// that estimate is the reference the weighted survivors must agree with
	reference := mean(6)
	roulette := mean(1)
	if reference <= 0 {
		t.Fatal("Expected the reference estimate to pick up radiance")
	}
	if relErr := math.Abs(roulette-reference) / reference; relErr > 0.05 {
		t.Errorf("Expected roulette estimate %g within 5%% of reference %g (relative error %g)",
			roulette, reference, relErr)
	}
}

func TestHiddenGeometrySampleDensity(t *testing.T) {
	// A single unit-area target above the relay wall: the sampled direction
	// crosses the geometry exactly once, so the density is the raw area
	// density without any multiplicity correction
	wallMat := material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))
	s := scene.NewScene()
	s.RelayWallIndex = s.AddShape(geometry.NewQuad(
		core.NewVec3(-2, -2, 0), core.NewVec3(4, 0, 0), core.NewVec3(0, 4, 0), wallMat))
	s.AddShape(geometry.NewQuad(
		core.NewVec3(-0.5, -0.5, 1), core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0), wallMat))

	cfg := DefaultConfig()
	cfg.HiddenGeometrySampling = true
	tp, err := NewTransientPath(cfg, s, testFilm(t), testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	si := &material.SurfaceInteraction{
		Point:     core.NewVec3(0.1, -0.2, 0),
		Normal:    core.NewVec3(0, 0, 1),
		FrontFace: true,
		Material:  wallMat,
	}
	rayIn := core.NewRay(core.NewVec3(0, 0, 0.25), si.Point.Subtract(core.NewVec3(0, 0, 0.25)).Normalize())

	for lane := int64(0); lane < 32; lane++ {
		ds, _, ok := tp.hiddenGeometrySample(si, rayIn, core.NewSeededSampler(5, lane))
		if !ok {
			t.Fatalf("Lane %d: expected a usable direction sample", lane)
		}
		if math.Abs(ds.pdf-1.0) > 1e-12 {
			t.Errorf("Lane %d: expected area density 1 for a single crossing, got %g", lane, ds.pdf)
		}
		if ds.weight.MaxComponent() <= 0 {
			t.Errorf("Lane %d: expected a positive throughput weight", lane)
		}
	}
}

func TestOccludedLaserSpotStaysDark(t *testing.T) {
	// The laser lights a spot on the wall, but a black panel hangs between the
	// hidden target and the spot. Every connection is blocked or absorbed, so
	// the render stays silent without erroring.
	s := scene.NewScene()
	s.RelayWallIndex = s.AddShape(geometry.NewQuad(
		core.NewVec3(-2, -2, 0), core.NewVec3(4, 0, 0), core.NewVec3(0, 4, 0),
		material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))))
	s.AddShape(geometry.NewQuad( // Hidden target, facing the wall
		core.NewVec3(-0.4, -0.4, 1), core.NewVec3(0, 0.8, 0), core.NewVec3(0.8, 0, 0),
		material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))))
	s.AddShape(geometry.NewQuad( // Black panel covering the connection cone
		core.NewVec3(-0.3, -0.3, 0.5), core.NewVec3(0, 0.6, 0), core.NewVec3(0.6, 0, 0),
		material.NewLambertian(core.Vec3{})))

	laser := lights.NewLaser(core.NewVec3(0, 0, 0.25), core.NewVec3(0, 0, 0), core.NewVec3(100, 100, 100), 0.01)
	s.Laser = laser
	s.AddLight(laser)

	cfg := DefaultConfig()
	cfg.LaserSampling = true
	tp, err := NewTransientPath(cfg, s, testFilm(t), testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	origin := core.NewVec3(0, 0, 0.25)
	direction := core.NewVec3(0.3, 0.3, 0).Subtract(origin).Normalize()
	for lane := int64(0); lane < 32; lane++ {
		radiance, _, _ := tp.Sample(ModePrimal, core.NewSeededSampler(17, lane),
			core.NewRay(origin, direction), core.NewVec2(0.5, 0.5),
			core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
		if !radiance.IsZero() {
			t.Fatalf("Lane %d: expected zero radiance with the laser spot occluded, got %v", lane, radiance)
		}
	}
}

// A flat interface that lets rays pass straight through while reporting a
// relative index of refraction, as a refractive material would
type passThroughInterface struct {
	eta float64
}

func (p passThroughInterface) Scatter(rayIn core.Ray, hit material.SurfaceInteraction, sampler core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(hit.Point, rayIn.Direction),
		Attenuation: core.NewVec3(1, 1, 1),
		PDF:         0,
		Eta:         p.eta,
	}, true
}

func (passThroughInterface) EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3 {
	return core.Vec3{}
}

func (passThroughInterface) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	return 0, true
}

func (passThroughInterface) Smooth() bool { return false }

func TestRefractionStretchesOpticalPathLength(t *testing.T) {
	emission := core.NewVec3(15, 12, 9)
	s := emissiveQuadScene(emission, nil)
	s.AddShape(geometry.NewQuad( // Interface halfway to the emitter
		core.NewVec3(-1, -1, 1), core.NewVec3(0, 2, 0), core.NewVec3(2, 0, 0),
		passThroughInterface{eta: 1.5}))

	f := testFilm(t)
	cfg := DefaultConfig()
	cfg.MaxDepth = 3
	tp, err := NewTransientPath(cfg, s, f, testLogger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pos := core.NewVec2(0.5, 0.5)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	radiance, extraWeight, _ := tp.Sample(ModePrimal, core.NewSeededSampler(1, 0), ray, pos,
		core.NewVec3(1, 1, 1), core.Vec3{}, core.Vec3{}, nil)
	if radiance.Subtract(emission).Length() > 1e-9 {
		t.Errorf("Expected radiance %v, got %v", emission, radiance)
	}
	f.RegisterSample(pos, extraWeight)

	// One unit of vacuum plus one unit behind the interface at ior ratio 1.5
	// lands at optical path length 2.5 instead of 2
	result := f.Develop()
	if bin := result.Transient[0*8+4]; !bin.IsZero() {
		t.Errorf("Expected bin 4 empty, got %v", bin)
	}
	if bin := result.Transient[0*8+5]; bin.Subtract(emission).Length() > 1e-9 {
		t.Errorf("Expected emission in bin 5, got %v", bin)
	}
}
