package material

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance

	// AlbedoScale optionally makes the reflectance differentiable: when set,
	// the effective albedo is Albedo * AlbedoScale.Value()
	AlbedoScale *ad.Param
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// NewGradLambertian creates a lambertian material whose reflectance is scaled
// by a differentiable parameter
func NewGradLambertian(albedo core.Vec3, scale *ad.Param) *Lambertian {
	return &Lambertian{Albedo: albedo, AlbedoScale: scale}
}

func (l *Lambertian) albedo() core.Vec3 {
	if l.AlbedoScale != nil {
		return l.Albedo.Multiply(l.AlbedoScale.Value())
	}
	return l.Albedo
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool) {
	// Generate cosine-weighted random direction in hemisphere around normal
	scatterDirection := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	scattered := core.Ray{Origin: hit.Point, Direction: scatterDirection}

	// Calculate PDF: cos(θ) / π where θ is angle from normal
	cosTheta := scatterDirection.Normalize().Dot(hit.Normal)
	if cosTheta < 0 {
		cosTheta = 0 // Clamp to avoid negative values
	}
	pdf := cosTheta / math.Pi

	// BRDF: albedo / π (proper energy conservation)
	attenuation := l.albedo().Multiply(1.0 / math.Pi)

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: attenuation,
		PDF:         pdf,
		Eta:         1,
	}, true
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (l *Lambertian) EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3 {
	// Lambertian BRDF is constant: albedo / π
	cosTheta := outgoingDir.Dot(normal)
	if cosTheta <= 0 {
		return core.Vec3{} // Below surface
	}
	return l.albedo().Multiply(1.0 / math.Pi)
}

// EvaluateBRDFGrad records the BRDF value on the tape. The derivative flows
// into the albedo scale parameter when one is attached.
func (l *Lambertian) EvaluateBRDFGrad(tape *ad.Tape, incomingDir, outgoingDir, normal core.Vec3) *ad.Spec {
	cosTheta := outgoingDir.Dot(normal)
	if cosTheta <= 0 {
		return tape.Const(core.Vec3{})
	}
	if l.AlbedoScale != nil {
		return tape.Scaled(l.AlbedoScale, l.Albedo.Multiply(1.0/math.Pi))
	}
	return tape.Const(l.Albedo.Multiply(1.0 / math.Pi))
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (l *Lambertian) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	// Cosine-weighted hemisphere sampling: cos(θ) / π
	cosTheta := outgoingDir.Dot(normal)
	if cosTheta <= 0 {
		return 0.0, false
	}
	return cosTheta / math.Pi, false // Not a delta function
}

// Smooth reports that lambertian scattering has a non-delta component
func (l *Lambertian) Smooth() bool {
	return true
}
