package integrator

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// Cap on rejection sampling retries for occluded hidden geometry samples
const maxRejectionIterations = 10

// Cap on the intersection count used to correct the sampling density. Lanes
// reaching the cap are dropped rather than recorded with a wrong density.
const maxPdfIntersections = 100

// directionSample is a scattering decision, produced either by BSDF sampling
// or by hidden geometry sampling
type directionSample struct {
	direction core.Vec3
	weight    core.Vec3 // Throughput contribution, BSDF * cos / pdf
	pdf       float64   // Density of the decision (1 for delta samples)
	eta       float64   // Relative ior across the event (1 for reflection)
	isDelta   bool
}

// hiddenGeometrySample draws a scattering direction by sampling a point on
// the hidden geometry's surface and converting the area density to a
// direction density. Directions that cross the geometry several times have
// their density corrected by the intersection count.
//
// Returns the sample, the number of rejection retries spent on it, and
// whether a usable direction was found. Callers fall back to BSDF sampling
// on failure.
func (t *TransientPath) hiddenGeometrySample(si *material.SurfaceInteraction, rayIn core.Ray, sampler core.Sampler) (directionSample, float64, bool) {
	ps, ok := t.sampleHiddenGeometryPosition(sampler.Get2D())

	var d core.Vec3
	var siHG *material.SurfaceInteraction
	visible := false
	if ok {
		d = ps.Point.Subtract(si.Point).Normalize()
		hitHG, hit := t.scene.Intersect(core.NewRay(si.Point, d), rayEpsilon, math.Inf(1))
		if hit && si.Normal.Dot(d) > 0 {
			siHG = hitHG
			visible = true
		}
	}

	// Retry occluded samples, compensating through the sample weight. Lanes
	// that exhaust the retry budget keep zero compensation.
	extraWeight := 0.0
	if t.config.HGSamplingRejection && !visible {
		iters := 0
		for iters < maxRejectionIterations && !visible {
			iters++
			ps, ok = t.sampleHiddenGeometryPosition(sampler.Get2D())
			if !ok {
				continue
			}
			d = ps.Point.Subtract(si.Point).Normalize()
			hitHG, hit := t.scene.Intersect(core.NewRay(si.Point, d), rayEpsilon, math.Inf(1))
			if hit && si.Normal.Dot(d) > 0 {
				siHG = hitHG
				visible = true
			}
		}
		if iters < maxRejectionIterations {
			extraWeight = float64(iters)
		}
	}

	if !visible {
		return directionSample{}, extraWeight, false
	}

	// The sampled direction may cross the geometry several times; each
	// crossing is an equally likely way of generating it, so the density
	// scales with the intersection count along the direction.
	count := 1 + t.scene.IntersectionCount(core.NewRay(siHG.Point, d), math.Inf(1), maxPdfIntersections-1)
	if count >= maxPdfIntersections {
		return directionSample{}, extraWeight, false
	}

	// BSDF at the current vertex toward the sampled point, with the solid
	// angle projection of the fixed target point: 1/d² and the cosine at the
	// hidden geometry's side
	cosTheta := d.Dot(si.Normal)
	bsdfSpec := si.Material.EvaluateBRDF(rayIn.Direction.Negate(), d, si.Normal).Multiply(cosTheta)

	travelDist := siHG.Point.Subtract(si.Point).Length()
	cosGeom := d.Negate().Dot(siHG.Normal)
	bsdfSpec = bsdfSpec.Multiply(cosGeom / (travelDist * travelDist))

	// Short connections produce high variance, leave them to BSDF sampling
	if travelDist <= 0.5 {
		return directionSample{}, extraWeight, false
	}
	if bsdfSpec.MaxComponent() <= valueEpsilon {
		return directionSample{}, extraWeight, false
	}

	pdf := ps.PDF * float64(count)
	if pdf <= valueEpsilon {
		return directionSample{}, extraWeight, false
	}

	return directionSample{
		direction: d,
		weight:    bsdfSpec.Multiply(1.0 / pdf),
		pdf:       pdf,
		eta:       1,
	}, extraWeight, true
}
