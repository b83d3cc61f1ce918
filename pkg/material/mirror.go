package material

import (
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Mirror represents a perfectly specular reflector
type Mirror struct {
	Albedo core.Vec3 // Reflectance
}

// NewMirror creates a new mirror material
func NewMirror(albedo core.Vec3) *Mirror {
	return &Mirror{Albedo: albedo}
}

// Scatter implements the Material interface for specular reflection
func (m *Mirror) Scatter(rayIn core.Ray, hit SurfaceInteraction, sampler core.Sampler) (ScatterResult, bool) {
	// Calculate perfect reflection direction
	reflected := reflect(rayIn.Direction.Normalize(), hit.Normal)

	scattered := core.Ray{Origin: hit.Point, Direction: reflected}

	// Only scatter if the ray is above the surface (not absorbed)
	scatters := scattered.Direction.Dot(hit.Normal) > 0

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   scattered,
		Attenuation: m.Albedo, // No π factor for specular
		PDF:         0,        // Specular materials have no PDF
		Eta:         1,
	}, scatters
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (m *Mirror) EvaluateBRDF(incomingDir, outgoingDir, normal core.Vec3) core.Vec3 {
	// Delta function - zero for any directions chosen by another strategy
	return core.Vec3{}
}

// PDF calculates the probability density function for specific incoming/outgoing directions
func (m *Mirror) PDF(incomingDir, outgoingDir, normal core.Vec3) (float64, bool) {
	// Delta function - PDF is 0 for evaluation (handled specially in integrator)
	return 0.0, true
}

// Smooth reports that mirror scattering is purely a delta function
func (m *Mirror) Smooth() bool {
	return false
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
