package lights

import (
	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
)

type LightType string

const (
	LightTypeArea  LightType = "area"
	LightTypePoint LightType = "point"
)

// Light interface for objects that can be sampled for direct lighting
type Light interface {
	Type() LightType

	// Sample samples light toward a specific point for direct lighting
	// Returns LightSample with direction FROM shading point TO light
	Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample

	// PDF calculates the probability density for sampling a given direction toward the light
	PDF(point core.Vec3, normal core.Vec3, direction core.Vec3) float64
}

// GradLight is implemented by lights whose emission depends on a
// differentiable parameter. SampleGrad re-records the emission of a
// previously drawn sample on the tape, keeping the sampled geometry fixed so
// only the radiance carries derivatives.
type GradLight interface {
	Light
	SampleGrad(tape *ad.Tape, sample LightSample) *ad.Spec
}

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Normal    core.Vec3 // Normal at the light sample point
	Direction core.Vec3 // Direction from shading point to light
	Distance  float64   // Distance to light
	Emission  core.Vec3 // Emitted light
	PDF       float64   // Probability density of this sample
	IsDelta   bool      // Whether the sample comes from a delta position/direction
}

// SampleGradOrConst re-records a light sample's emission on the tape,
// attaching the derivative when the light supports it
func SampleGradOrConst(tape *ad.Tape, light Light, sample LightSample) *ad.Spec {
	if gl, ok := light.(GradLight); ok {
		return gl.SampleGrad(tape, sample)
	}
	return tape.Const(sample.Emission)
}
