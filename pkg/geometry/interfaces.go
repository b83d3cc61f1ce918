package geometry

import (
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// PositionSample is a uniformly sampled point on a shape's surface
type PositionSample struct {
	Point  core.Vec3 // Sampled surface point
	Normal core.Vec3 // Surface normal at the point
	PDF    float64   // Area density of the sample (1 / surface area)
}

// Shape interface for objects that can be intersected by rays and sampled
// by surface area
type Shape interface {
	// Hit tests if a ray intersects the shape within [tMin, tMax]
	Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool)

	// Area returns the total surface area of the shape
	Area() float64

	// SamplePosition samples a point uniformly on the shape's surface
	SamplePosition(sample core.Vec2) PositionSample

	// GetMaterial returns the shape's material
	GetMaterial() material.Material
}
