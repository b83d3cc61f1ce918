package material

import (
	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Material interface for objects that can scatter rays
type Material interface {
	// Scatter generates a random scattered direction for the incoming ray
	Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool)

	// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions.
	// The cosine foreshortening term is not included.
	EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3

	// PDF calculates the sampling density for specific incoming/outgoing directions
	// Returns (pdf, isDelta) where isDelta indicates a delta function (specular)
	PDF(incomingDir, outgoingDir, normal core.Vec3) (pdf float64, isDelta bool)

	// Smooth reports whether the material has a non-delta component,
	// making it eligible for next-event estimation
	Smooth() bool
}

// Emitter interface for materials that emit light
type Emitter interface {
	Emit(rayIn core.Ray) core.Vec3
}

// GradEmitter is implemented by emissive materials whose emission depends on
// a differentiable parameter. EmitGrad records the emission on the tape so
// the backward pass can re-evaluate it with derivative tracking.
type GradEmitter interface {
	Emitter
	EmitGrad(tape *ad.Tape, rayIn core.Ray) *ad.Spec
}

// GradMaterial is implemented by materials whose BRDF depends on a
// differentiable parameter
type GradMaterial interface {
	Material
	EvaluateBRDFGrad(tape *ad.Tape, incomingDir, outgoingDir, normal core.Vec3) *ad.Spec
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Incoming    core.Ray  // The incoming ray
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // BRDF value (specular: full reflectance)
	PDF         float64   // Probability density (0 for specular materials)

	// Eta is the relative index of refraction across the scattering event.
	// Reflection keeps it at 1; a refractive material reports the ratio so
	// path length and roulette weighting can account for the medium change.
	Eta float64
}

// IsSpecular returns true if this is specular scattering (no PDF)
func (s ScatterResult) IsSpecular() bool {
	return s.PDF <= 0
}

// SurfaceInteraction contains information about a ray-object intersection
type SurfaceInteraction struct {
	Point      core.Vec3 // Point of intersection
	Normal     core.Vec3 // Surface normal at intersection
	T          float64   // Parameter t along the ray
	FrontFace  bool      // Whether ray hit the front face
	Material   Material  // Material of the hit object
	ShapeIndex int       // Index of the hit shape within the scene
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *SurfaceInteraction) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}

// EmitGradOrConst records the emission of the hit material on the tape,
// attaching the derivative when the material supports it
func EmitGradOrConst(tape *ad.Tape, m Material, rayIn core.Ray) *ad.Spec {
	if ge, ok := m.(GradEmitter); ok {
		return ge.EmitGrad(tape, rayIn)
	}
	if e, ok := m.(Emitter); ok {
		return tape.Const(e.Emit(rayIn))
	}
	return tape.Const(core.Vec3{})
}

// BRDFGradOrConst records the BRDF value on the tape, attaching the
// derivative when the material supports it
func BRDFGradOrConst(tape *ad.Tape, m Material, incomingDir, outgoingDir, normal core.Vec3) *ad.Spec {
	if gm, ok := m.(GradMaterial); ok {
		return gm.EvaluateBRDFGrad(tape, incomingDir, outgoingDir, normal)
	}
	return tape.Const(m.EvaluateBRDF(incomingDir, outgoingDir, normal))
}
