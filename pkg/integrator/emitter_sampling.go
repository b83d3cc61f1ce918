package integrator

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/lights"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// emitterSample performs next event estimation at a path vertex, dispatching
// to the laser connection strategy when enabled. Returns the direct radiance
// contribution; in backward mode it also records the contribution on the
// tape, seeded with the film adjoint at the contribution's histogram bin.
func (t *TransientPath) emitterSample(mode Mode, tape *ad.Tape, sampler core.Sampler,
	si *material.SurfaceInteraction, rayIn core.Ray, beta core.Vec3,
	distance, eta float64, depth int, pos core.Vec2) core.Vec3 {
	if t.config.LaserSampling {
		return t.emitterLaserSample(mode, tape, sampler, si, rayIn, beta, distance, eta, depth, pos)
	}
	return t.emitterNEESample(mode, tape, sampler, si, rayIn, beta, distance, eta, depth, pos)
}

// emitterNEESample is plain next event estimation: sample a light, test
// visibility, and weigh against BSDF sampling with multiple importance
// sampling. Delta lights skip MIS since BSDF sampling can never hit them.
func (t *TransientPath) emitterNEESample(mode Mode, tape *ad.Tape, sampler core.Sampler,
	si *material.SurfaceInteraction, rayIn core.Ray, beta core.Vec3,
	distance, eta float64, depth int, pos core.Vec2) core.Vec3 {

	sample, light, ok := lights.SampleLight(t.scene.Lights, si.Point, si.Normal, sampler)
	if !ok || sample.PDF <= 0 || sample.Emission.IsZero() {
		return core.Vec3{}
	}

	// Shadow ray stops just short of the light to avoid self intersection
	shadowRay := core.NewRay(si.Point, sample.Direction)
	if t.scene.RayTest(shadowRay, rayEpsilon, sample.Distance*(1-shadowEpsilon)) {
		return core.Vec3{}
	}

	// BSDF toward the sampled direction, with its sampling density for MIS
	cosTheta := sample.Direction.Dot(si.Normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	incomingDir := rayIn.Direction.Negate()
	bsdfValue := si.Material.EvaluateBRDF(incomingDir, sample.Direction, si.Normal)
	bsdfPdf, _ := si.Material.PDF(incomingDir, sample.Direction, si.Normal)

	mis := 1.0
	if !sample.IsDelta {
		mis = core.PowerHeuristic(1, sample.PDF, 1, bsdfPdf)
	}

	// Depth gating: an exact filter depth overrides direct path discarding
	if !(depth == t.config.FilterDepth || !(t.config.DiscardDirectPaths && depth < 2)) {
		return core.Vec3{}
	}

	scale := beta.Multiply(mis * cosTheta / sample.PDF)
	lrDir := bsdfValue.MultiplyVec(sample.Emission).MultiplyVec(scale)
	splatDistance := distance + sample.Distance*eta

	switch mode {
	case ModePrimal:
		if !lrDir.IsZero() {
			t.film.AddSample(pos, splatDistance, lrDir)
		}
	case ModePrimalReplay:
		// Arithmetic only, the film already holds this contribution
	case ModeBackward:
		// Re-record emission and BSDF with derivative tracking, keeping the
		// sampled geometry fixed, and seed with the adjoint at this bin
		emitterSpec := lights.SampleGradOrConst(tape, light, sample)
		bsdfSpec := material.BRDFGradOrConst(tape, si.Material, incomingDir, sample.Direction, si.Normal)
		lrDirSpec := tape.MulVec(tape.Mul(emitterSpec, bsdfSpec), scale)
		tape.Seed(lrDirSpec, t.film.AdjointAt(pos, splatDistance))
	}

	return lrDir
}

// emitterLaserSample connects the current vertex to the spot the laser
// illuminates instead of sampling the laser directly: in a hidden-scene
// capture almost no direction carries radiance, so plain emitter sampling
// essentially never finds the one illuminated point. The vertex is first
// connected to the illuminated spot, then next event estimation runs from
// the surface the connection lands on.
func (t *TransientPath) emitterLaserSample(mode Mode, tape *ad.Tape, sampler core.Sampler,
	si *material.SurfaceInteraction, rayIn core.Ray, beta core.Vec3,
	distance, eta float64, depth int, pos core.Vec2) core.Vec3 {

	toTarget := t.laserTarget.Subtract(si.Point)
	laserDist := toTarget.Length()
	if laserDist <= 0 {
		return core.Vec3{}
	}
	d := toTarget.Multiply(1.0 / laserDist)

	// Visibility of the illuminated spot
	connectRay := core.NewRay(si.Point, d)
	if t.scene.RayTest(connectRay, rayEpsilon, laserDist*(1-shadowEpsilon)) {
		return core.Vec3{}
	}

	// BSDF toward the illuminated spot
	cosTheta := d.Dot(si.Normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	bsdfSpec := si.Material.EvaluateBRDF(rayIn.Direction.Negate(), d, si.Normal).Multiply(cosTheta)
	if bsdfSpec.MaxComponent() <= valueEpsilon {
		return core.Vec3{}
	}

	// Land on the surface at the illuminated spot
	siNext, hit := t.scene.Intersect(connectRay, rayEpsilon, math.Inf(1))
	if !hit || !siNext.FrontFace {
		return core.Vec3{}
	}
	cosLanding := d.Negate().Dot(siNext.Normal)
	if cosLanding <= 0 {
		return core.Vec3{}
	}

	// The spot is a fixed point, not a sampled one: account for the solid
	// angle projection of the current vertex onto it. The incident cosine at
	// the spot is part of the follow-up estimation's BSDF.
	bsdfSpec = bsdfSpec.Multiply(cosLanding / (laserDist * laserDist))

	return t.emitterNEESample(mode, tape, sampler, siNext, connectRay,
		beta.MultiplyVec(bsdfSpec), distance+laserDist*eta, eta, depth+1, pos)
}
