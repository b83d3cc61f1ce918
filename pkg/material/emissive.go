package material

import (
	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Emissive represents a light-emitting material
type Emissive struct {
	Emission core.Vec3 // Emitted light color/intensity

	// EmissionScale optionally makes the emission differentiable: when set,
	// the effective emission is Emission * EmissionScale.Value()
	EmissionScale *ad.Param
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: emission}
}

// NewGradEmissive creates an emissive material whose radiance is scaled by a
// differentiable parameter
func NewGradEmissive(emission core.Vec3, scale *ad.Param) *Emissive {
	return &Emissive{Emission: emission, EmissionScale: scale}
}

// Scatter implements the Material interface for emissive materials
// Emissive materials don't scatter rays - they only emit light
func (e *Emissive) Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool) {
	// Emissive materials don't scatter - they absorb all incoming rays
	return ScatterResult{}, false
}

// Emit returns the emitted light for this material
func (e *Emissive) Emit(rayIn core.Ray) core.Vec3 {
	if e.EmissionScale != nil {
		return e.Emission.Multiply(e.EmissionScale.Value())
	}
	return e.Emission
}

// EmitGrad records the emitted light on the tape. The derivative flows into
// the emission scale parameter when one is attached.
func (e *Emissive) EmitGrad(tape *ad.Tape, rayIn core.Ray) *ad.Spec {
	if e.EmissionScale != nil {
		return tape.Scaled(e.EmissionScale, e.Emission)
	}
	return tape.Const(e.Emission)
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (e *Emissive) EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3 {
	// Lights don't reflect - they only emit
	return core.Vec3{}
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (e *Emissive) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	// Emissive materials don't scatter, so PDF is always 0
	return 0.0, false // Not a delta function, just no scattering
}

// Smooth reports that emissive surfaces have no reflective component
func (e *Emissive) Smooth() bool {
	return false
}
