// Package integrator implements a time resolved path tracer with radiative
// backpropagation: the primal mode splats radiance into a transient film,
// the backward mode replays the same paths and turns film adjoints into
// gradients of differentiable scene parameters.
package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/film"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/log"
	"github.com/df07/go-transient-raytracer/pkg/scene"
)

const (
	// Offset applied to secondary ray origins to escape the spawning surface
	rayEpsilon = 1e-4

	// Shadow rays stop just short of the target to avoid self intersection
	shadowEpsilon = 1e-4

	// Contributions below this threshold are treated as zero
	valueEpsilon = 1e-9
)

// TransientPath is the transient path tracer. Create one per render via
// NewTransientPath; the same instance serves primal and backward passes.
type TransientPath struct {
	config Config
	scene  *scene.Scene
	film   *film.TransientFilm
	logger log.Logger

	maxDistance float64

	// Laser sampling state, prepared when the strategy is enabled
	laserTarget core.Vec3

	// Hidden geometry sampling state: an area weighted distribution over the
	// scene's shapes, with a fast path when only one shape is eligible
	hgDist   *core.DiscreteDistribution
	hgSingle geometry.Shape
}

// NewTransientPath creates a transient path tracer for the given scene and
// film, preparing the enabled sampling strategies
func NewTransientPath(config Config, sc *scene.Scene, f *film.TransientFilm, logger log.Logger) (*TransientPath, error) {
	if err := config.Validate(logger); err != nil {
		return nil, err
	}

	t := &TransientPath{
		config: config,
		scene:  sc,
		film:   f,
		logger: logger,
	}

	// Unbounded depth still needs a loop bound; the path length limit and
	// russian roulette terminate paths long before this
	if t.config.MaxDepth == -1 {
		t.config.MaxDepth = math.MaxInt
	}

	t.maxDistance = config.MaxDistance
	if t.maxDistance <= 0 {
		t.maxDistance = f.Config().MaxDistance()
	}

	if config.LaserSampling {
		if err := t.prepareLaserSampling(); err != nil {
			return nil, err
		}
	}
	if config.HiddenGeometrySampling {
		if err := t.prepareHiddenGeometrySampling(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// prepareLaserSampling locates the wall spot the laser illuminates by tracing
// the beam's central ray into the scene
func (t *TransientPath) prepareLaserSampling() error {
	if t.scene.Laser == nil {
		return fmt.Errorf("laser sampling requires a laser in the scene")
	}
	si, hit := t.scene.Intersect(t.scene.Laser.Ray(), rayEpsilon, math.Inf(1))
	if !hit {
		return fmt.Errorf("the laser is not pointing at the scene")
	}
	t.laserTarget = si.Point
	t.logger.Debugf("laser target at (%g, %g, %g)",
		t.laserTarget.X, t.laserTarget.Y, t.laserTarget.Z)
	return nil
}

// prepareHiddenGeometrySampling builds an area weighted distribution over the
// scene's shapes. The relay wall gets zero weight unless explicitly included.
func (t *TransientPath) prepareHiddenGeometrySampling() error {
	weights := make([]float64, len(t.scene.Shapes))
	eligible := 0
	lastEligible := -1
	for i, shape := range t.scene.Shapes {
		if i == t.scene.RelayWallIndex && !t.config.HGSamplingIncludesRelayWall {
			continue
		}
		weights[i] = shape.Area()
		if weights[i] > 0 {
			eligible++
			lastEligible = i
		}
	}

	switch eligible {
	case 0:
		return fmt.Errorf("hidden geometry sampling requires at least one shape besides the relay wall")
	case 1:
		t.hgSingle = t.scene.Shapes[lastEligible]
		return nil
	}

	dist, err := core.NewDiscreteDistribution(weights)
	if err != nil {
		return fmt.Errorf("building hidden geometry distribution: %w", err)
	}
	t.hgDist = dist
	return nil
}

// sampleHiddenGeometryPosition samples a point on the hidden geometry's
// surface, proportional to surface area across shapes
func (t *TransientPath) sampleHiddenGeometryPosition(sample core.Vec2) (geometry.PositionSample, bool) {
	if t.hgSingle != nil {
		return t.hgSingle.SamplePosition(sample), true
	}

	index, remapped, shapePdf := t.hgDist.SampleReuse(sample.X)
	if index < 0 {
		return geometry.PositionSample{}, false
	}
	ps := t.scene.Shapes[index].SamplePosition(core.NewVec2(remapped, sample.Y))
	ps.PDF *= shapePdf
	return ps, ps.PDF > 0
}
