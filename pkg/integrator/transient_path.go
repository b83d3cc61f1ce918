package integrator

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/lights"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// Mode selects what a path sample computes
type Mode int

const (
	// ModePrimal splats radiance contributions into the film
	ModePrimal Mode = iota

	// ModePrimalReplay re-runs primal arithmetic without touching the film,
	// recovering a path's radiance from its random stream
	ModePrimalReplay

	// ModeBackward replays a primal path and records its contributions on a
	// tape, seeded with film adjoints, to accumulate parameter gradients
	ModeBackward
)

// Sample traces one transport path for the film position pos.
//
// In primal mode, contributions are splatted into the film as they arise and
// the returned radiance is their sum. In backward mode nothing is splatted:
// the sampler must replay the primal pass's random stream, stateIn must be
// the radiance the matching primal pass returned, and deltaL the adjoint of
// the lane's steady contribution. The path's radiance is peeled off vertex
// by vertex, and each vertex's contribution is recorded on the tape.
//
// Returns the accumulated radiance, the lane's accumulated sample weight,
// and whether the path hit anything at all.
func (t *TransientPath) Sample(mode Mode, sampler core.Sampler, ray core.Ray, pos core.Vec2,
	weight core.Vec3, deltaL core.Vec3, stateIn core.Vec3, tape *ad.Tape) (core.Vec3, float64, bool) {

	primal := mode != ModeBackward

	var L core.Vec3
	if !primal {
		L = stateIn
	}
	beta := weight
	eta := 1.0
	depth := 0
	extraWeight := 1.0
	distance := ray.Time // Sensors pre-load the calibrated path length offset

	// Information from the previous bounce, for MIS against emitter hits
	var prevSi *material.SurfaceInteraction
	prevBsdfPdf := 1.0
	prevBsdfDelta := true

	active := true
	for active {
		si, hit := t.scene.Intersect(ray, rayEpsilon, math.Inf(1))
		if !hit {
			break
		}
		distance += si.T * eta
		if distance >= t.maxDistance {
			break
		}

		// ---------------------- Direct emission ----------------------

		// MIS weight for an emitter reached by the previous bounce's BSDF
		// sample. Delta bounces cannot be emitter-sampled, so they get full
		// weight.
		mis := 1.0
		if !prevBsdfDelta && prevSi != nil {
			lightPdf := lights.CalculateLightPDF(t.scene.Lights, prevSi.Point, prevSi.Normal, ray.Direction)
			mis = core.PowerHeuristic(1, prevBsdfPdf, 1, lightPdf)
		}

		var le core.Vec3
		emitter, isEmitter := si.Material.(material.Emitter)
		if isEmitter && si.FrontFace {
			le = beta.MultiplyVec(emitter.Emit(ray)).Multiply(mis)
		}

		if primal {
			if mode == ModePrimal && !le.IsZero() {
				t.film.AddSample(pos, distance, le)
			}
		} else if isEmitter && si.FrontFace {
			leSpec := tape.MulVec(material.EmitGradOrConst(tape, si.Material, ray), beta.Multiply(mis))
			tape.Seed(leSpec, t.film.AdjointAt(pos, distance))
		}

		// ---------------------- Emitter sampling ----------------------

		activeNext := depth+1 < t.config.MaxDepth

		var lrDir core.Vec3
		if activeNext && si.Material.Smooth() {
			lrDir = t.emitterSample(mode, tape, sampler, si, ray, beta, distance, eta, depth, pos)
		}

		if primal {
			L = L.Add(le).Add(lrDir)
		} else {
			L = L.Subtract(le).Subtract(lrDir)
		}

		if !activeNext {
			break
		}

		// ------------------- Detached scattering decision -------------------

		// Optionally mix hidden geometry and BSDF sampling with a coin flip
		doHG := false
		pdfBsdfMethod := 1.0
		if t.config.HiddenGeometrySampling {
			if t.config.HGSamplingDoRoulette {
				hgProb := 0.5
				doHG = sampler.Get1D() < hgProb
				if doHG {
					pdfBsdfMethod = hgProb
				} else {
					pdfBsdfMethod = 1.0 - hgProb
				}
			} else {
				doHG = true
			}
		}

		var ds directionSample
		sampled := false
		if doHG {
			hgSample, extraIters, ok := t.hiddenGeometrySample(si, ray, sampler)
			if ok {
				ds = hgSample
				sampled = true
				extraWeight *= extraIters + 1
			} else {
				// Fall back to BSDF sampling, counting the spent sample
				extraWeight += 1.0
			}
		}
		if !sampled {
			scatter, ok := si.Material.Scatter(ray, *si, sampler)
			switch {
			case !ok:
				// Absorbed; the zero throughput terminates the lane below
				ds = directionSample{eta: 1}
			case scatter.IsSpecular():
				ds = directionSample{
					direction: scatter.Scattered.Direction,
					weight:    scatter.Attenuation,
					pdf:       1.0,
					eta:       scatter.Eta,
					isDelta:   true,
				}
			default:
				cosTheta := scatter.Scattered.Direction.Normalize().Dot(si.Normal)
				if cosTheta < 0 {
					cosTheta = 0
				}
				ds = directionSample{
					direction: scatter.Scattered.Direction,
					weight:    scatter.Attenuation.Multiply(cosTheta / scatter.PDF),
					pdf:       scatter.PDF,
					eta:       scatter.Eta,
				}
			}
		}

		// ---- Update lane state based on the current interaction -----

		incomingDir := ray.Direction.Negate()
		ray = core.NewRay(si.Point, ds.direction)
		beta = beta.MultiplyVec(ds.weight).Multiply(1.0 / pdfBsdfMethod)
		eta *= ds.eta
		prevSi = si
		prevBsdfPdf = ds.pdf
		prevBsdfDelta = ds.isDelta

		// -------------------- Stopping criterion ---------------------

		betaMax := beta.MaxComponent()
		activeNext = betaMax > 0

		// Russian roulette survival probability. The ior² factor cancels
		// refraction's radiance scaling to keep the throughput unitless.
		rrProb := math.Min(betaMax*eta*eta, 0.95)
		activeNext = activeNext && rrProb > 0

		// Only applied further along the path, termination near the sensor
		// adds too much variance
		rrActive := depth >= t.config.RRDepth
		if rrActive && rrProb > 0 {
			beta = beta.Multiply(1.0 / rrProb)
		}
		// Drawn unconditionally to keep primal and backward streams aligned
		rrContinue := sampler.Get1D() < rrProb
		if rrActive && !rrContinue {
			activeNext = false
		}

		// ------------------ Differential phase only ------------------

		if !primal && activeNext {
			// 'L' now holds the radiance arriving from the rest of the path
			// without derivative tracking. Cancel the detached scattering
			// weight against a re-evaluation with derivatives enabled; the
			// primal ratio is exactly one, so only the derivative survives.
			cosTheta := ds.direction.Dot(si.Normal)
			if cosTheta < 0 {
				cosTheta = 0
			}
			bsdfValSpec := tape.Scale(
				material.BRDFGradOrConst(tape, si.Material, incomingDir, ds.direction, si.Normal),
				cosTheta)
			detached := ds.weight.Multiply(ds.pdf)
			ratio := tape.MulVec(bsdfValSpec, detached.Reciprocal())
			lrIndSpec := tape.MulVec(tape.ReplaceGrad(core.NewVec3(1, 1, 1), ratio), L)
			tape.Seed(lrIndSpec, deltaL)
		}

		depth++
		active = activeNext
	}

	return L, extraWeight, depth > 0
}
