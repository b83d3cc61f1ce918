package lights

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// QuadLight represents a rectangular area light
type QuadLight struct {
	*geometry.Quad // Embed quad for hit testing
}

// NewQuadLight creates a new quad light
func NewQuadLight(corner, u, v core.Vec3, mat material.Material) *QuadLight {
	return &QuadLight{Quad: geometry.NewQuad(corner, u, v, mat)}
}

func (ql *QuadLight) Type() LightType {
	return LightTypeArea
}

// Sample implements the Light interface - samples a point on the quad for direct lighting
func (ql *QuadLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	// Sample uniformly on the quad surface
	samplePoint := ql.Corner.Add(ql.U.Multiply(sample.X)).Add(ql.V.Multiply(sample.Y))

	// Calculate direction from shading point to light sample
	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	direction := toLight.Multiply(1.0 / distance) // Normalize

	// Calculate PDF: 1/Area for uniform sampling
	pdf := 1.0 / ql.Area()

	// Convert to solid angle PDF
	// PDF_solid_angle = PDF_area * distance² / |cos(θ)|
	// where θ is the angle between light normal and direction to shading point
	cosTheta := math.Abs(ql.Normal.Dot(direction.Multiply(-1)))
	if cosTheta < 1e-8 {
		// Light is edge-on, no contribution
		return LightSample{
			Point:     samplePoint,
			Normal:    ql.Normal,
			Direction: direction,
			Distance:  distance,
			Emission:  core.Vec3{},
			PDF:       0,
		}
	}

	solidAnglePDF := pdf * distance * distance / cosTheta

	// Only emit from the front face. Direction is FROM shading point TO light,
	// which is the ray direction hitting the light
	var emission core.Vec3
	if direction.Dot(ql.Normal) < 0 {
		emission = ql.emit(core.NewRay(point, direction))
	}

	return LightSample{
		Point:     samplePoint,
		Normal:    ql.Normal,
		Direction: direction,
		Distance:  distance,
		Emission:  emission,
		PDF:       solidAnglePDF,
	}
}

// SampleGrad re-records a sample's emission on the tape with the sampled
// geometry held fixed, so derivatives flow only through the radiance
func (ql *QuadLight) SampleGrad(tape *ad.Tape, sample LightSample) *ad.Spec {
	if sample.Emission.IsZero() {
		return tape.Const(core.Vec3{})
	}
	ray := core.NewRay(sample.Point.Subtract(sample.Direction), sample.Direction)
	return material.EmitGradOrConst(tape, ql.GetMaterial(), ray)
}

// PDF implements the Light interface - returns the probability density for sampling a given direction
func (ql *QuadLight) PDF(point, normal, direction core.Vec3) float64 {
	// Check if ray from point in direction hits the quad
	ray := core.NewRay(point, direction)
	si, hit := ql.Quad.Hit(ray, 0.001, math.Inf(1))
	if !hit {
		return 0.0
	}

	// Calculate solid angle PDF
	distance := si.T
	cosTheta := math.Abs(ql.Normal.Dot(direction.Multiply(-1)))

	if cosTheta < 1e-8 {
		return 0.0
	}

	// PDF_solid_angle = PDF_area * distance² / |cos(θ)|
	areaPDF := 1.0 / ql.Area()
	return areaPDF * distance * distance / cosTheta
}

func (ql *QuadLight) emit(ray core.Ray) core.Vec3 {
	if emitter, ok := ql.GetMaterial().(material.Emitter); ok {
		return emitter.Emit(ray)
	}
	return core.Vec3{}
}
