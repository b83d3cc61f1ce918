// Package renderer drives the transient path tracer: it splits the sample
// budget into passes, fans rows out to a worker pool, and exposes the primal
// render and the gradient backpropagation entry points.
package renderer

import (
	"fmt"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/film"
	"github.com/df07/go-transient-raytracer/pkg/integrator"
	"github.com/df07/go-transient-raytracer/pkg/log"
	"github.com/df07/go-transient-raytracer/pkg/scene"
	"github.com/df07/go-transient-raytracer/pkg/sensor"
)

// A single pass traces at most this many lanes; larger budgets are split
// into several passes so progress stays observable and per-pass state small
const maxLanesPerPass = 1 << 26

// Config contains the renderer settings
type Config struct {
	SamplesPerPixel int   // Total sample budget per pixel
	NumWorkers      int   // Parallel workers (0 = use CPU count)
	Seed            int64 // Base seed; every pass and lane derives its own stream
}

// DefaultConfig returns sensible renderer defaults
func DefaultConfig() Config {
	return Config{
		SamplesPerPixel: 64,
		NumWorkers:      0,
	}
}

// TransientRenderer renders a scene into a transient film and, given film
// adjoints, backpropagates them into the scene's differentiable parameters
type TransientRenderer struct {
	config Config
	scene  *scene.Scene
	sensor sensor.Sensor
	film   *film.TransientFilm
	integ  *integrator.TransientPath
	logger log.Logger
}

// NewTransientRenderer creates a renderer for the given scene, sensor and
// film, preparing the integrator's sampling strategies
func NewTransientRenderer(config Config, integratorConfig integrator.Config,
	sc *scene.Scene, sens sensor.Sensor, f *film.TransientFilm) (*TransientRenderer, error) {
	if config.SamplesPerPixel < 1 {
		return nil, fmt.Errorf("samples per pixel must be at least 1, got %d", config.SamplesPerPixel)
	}
	if fc := f.Config(); sens.Width() != fc.Width || sens.Height() != fc.Height {
		return nil, fmt.Errorf("the film's %dx%d resolution does not match the sensor's %dx%d grid",
			fc.Width, fc.Height, sens.Width(), sens.Height())
	}

	logger := log.New("renderer")
	integ, err := integrator.NewTransientPath(integratorConfig, sc, f, logger)
	if err != nil {
		return nil, err
	}

	return &TransientRenderer{
		config: config,
		scene:  sc,
		sensor: sens,
		film:   f,
		integ:  integ,
		logger: logger,
	}, nil
}

// planPasses splits the sample budget into per-pass sample counts so a pass
// never exceeds the lane budget
func (r *TransientRenderer) planPasses() ([]int, error) {
	cfg := r.film.Config()
	pixels := cfg.Width * cfg.Height
	spp := r.config.SamplesPerPixel

	if pixels*spp <= maxLanesPerPass {
		return []int{spp}, nil
	}

	sppPerPass := (maxLanesPerPass - 1) / pixels
	if sppPerPass == 0 {
		return nil, fmt.Errorf("the film is too big to trace even one sample per pixel per pass, make it smaller")
	}

	var passes []int
	for remaining := spp; remaining > 0; remaining -= sppPerPass {
		passes = append(passes, min(sppPerPass, remaining))
	}
	return passes, nil
}

// passSeed derives the seed for one pass from the base seed
func (r *TransientRenderer) passSeed(pass int) int64 {
	return r.config.Seed + int64(pass)*0x9E3779B9
}

// runRows fans one pass's rows out to the worker pool and collects results
func (r *TransientRenderer) runRows(phase renderPhase, passSeed int64, spp int) (bool, error) {
	rows := r.film.Config().Height
	pool := newWorkerPool(r, rows, r.config.NumWorkers)
	pool.start()

	go func() {
		for y := 0; y < rows; y++ {
			pool.submitTask(rowTask{taskID: y, y: y, passSeed: passSeed, spp: spp, phase: phase})
		}
		pool.stop()
	}()

	touched := false
	var firstErr error
	for i := 0; i < rows; i++ {
		result, ok := pool.getResult()
		if !ok {
			break
		}
		if result.err != nil && firstErr == nil {
			firstErr = result.err
		}
		touched = touched || result.touched
	}
	return touched, firstErr
}

// laneSampler creates the deterministic sampler for one camera sample
func (r *TransientRenderer) laneSampler(passSeed int64, x, y, s, spp int) core.Sampler {
	lane := int64((y*r.film.Config().Width+x)*spp + s)
	return core.NewSeededSampler(passSeed, lane)
}

// renderRowPrimal traces every lane of one row in primal mode
func (r *TransientRenderer) renderRowPrimal(y int, passSeed int64, spp int) error {
	width := r.film.Config().Width
	for x := 0; x < width; x++ {
		for s := 0; s < spp; s++ {
			sampler := r.laneSampler(passSeed, x, y, s, spp)
			ray, weight, pos := r.sensor.SampleRay(x, y, sampler)
			_, extraWeight, _ := r.integ.Sample(integrator.ModePrimal, sampler, ray, pos,
				weight, core.Vec3{}, core.Vec3{}, nil)
			r.film.RegisterSample(pos, extraWeight)
		}
	}
	return nil
}

// renderRowBackward replays every lane of one row: first a primal replay to
// recover the lane's radiance from its random stream, then the backward pass
// that peels it off vertex by vertex and backpropagates the film adjoints
func (r *TransientRenderer) renderRowBackward(y int, passSeed int64, spp int) (bool, error) {
	width := r.film.Config().Width
	touched := false
	for x := 0; x < width; x++ {
		for s := 0; s < spp; s++ {
			replaySampler := r.laneSampler(passSeed, x, y, s, spp)
			ray, weight, pos := r.sensor.SampleRay(x, y, replaySampler)
			radiance, _, _ := r.integ.Sample(integrator.ModePrimalReplay, replaySampler, ray, pos,
				weight, core.Vec3{}, core.Vec3{}, nil)

			// The same stream again, this time recording on a tape
			backwardSampler := r.laneSampler(passSeed, x, y, s, spp)
			ray, weight, pos = r.sensor.SampleRay(x, y, backwardSampler)
			deltaL := r.film.AdjointSteady(pos).MultiplyVec(weight)

			tape := ad.NewTape()
			r.integ.Sample(integrator.ModeBackward, backwardSampler, ray, pos,
				weight, deltaL, radiance, tape)
			tape.Backward()
			touched = touched || tape.GradEnabled()
		}
	}
	return touched, nil
}

// Render traces the full sample budget and develops the film
func (r *TransientRenderer) Render() (*film.Result, error) {
	passes, err := r.planPasses()
	if err != nil {
		return nil, err
	}

	cfg := r.film.Config()
	r.logger.Noticef("rendering %dx%d film, %d bins, %d spp in %d pass(es)",
		cfg.Width, cfg.Height, cfg.TemporalBins, r.config.SamplesPerPixel, len(passes))

	for i, spp := range passes {
		if _, err := r.runRows(phasePrimal, r.passSeed(i), spp); err != nil {
			return nil, err
		}
		r.logger.Infof("pass %d/%d done (%d spp)", i+1, len(passes), spp)
	}

	return r.film.Develop(), nil
}

// RenderBackward backpropagates film adjoints into the scene's
// differentiable parameters: adjointSteady is the objective's gradient with
// respect to the steady state image, adjointTransient with respect to the
// histograms (either may be nil). Gradients accumulate into the parameters;
// call ClearGrad on them between optimization steps.
func (r *TransientRenderer) RenderBackward(adjointSteady, adjointTransient []core.Vec3) error {
	passes, err := r.planPasses()
	if err != nil {
		return err
	}

	// Fresh primal snapshot so the per-pixel weights the adjoint lookups
	// normalize by match the replayed paths exactly
	r.film.Clear()
	for i, spp := range passes {
		if _, err := r.runRows(phasePrimal, r.passSeed(i), spp); err != nil {
			return err
		}
	}

	if err := r.film.SetAdjoint(adjointSteady, adjointTransient); err != nil {
		return err
	}

	touched := false
	for i, spp := range passes {
		passTouched, err := r.runRows(phaseBackward, r.passSeed(i), spp)
		if err != nil {
			return err
		}
		touched = touched || passTouched
		r.logger.Infof("backward pass %d/%d done", i+1, len(passes))
	}

	if len(r.scene.Params) > 0 && !touched {
		return fmt.Errorf("the differential phase is not attached to any differentiable " +
			"parameter; this usually indicates a bug (for example, none of the scene " +
			"parameters the paths reach carries derivatives)")
	}
	return nil
}
