package geometry

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Discriminant
	discriminant := halfB*halfB - a*c

	// No intersection if discriminant is negative
	if discriminant < 0 {
		return nil, false
	}

	// Find the nearest intersection point within the valid range
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		// Try the farther intersection point
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			// Both intersections are outside valid range
			return nil, false
		}
	}

	si := &material.SurfaceInteraction{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}

	// Calculate outward normal (from center to hit point)
	outwardNormal := si.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	si.SetFaceNormal(ray, outwardNormal)

	return si, true
}

// Area returns the surface area of the sphere
func (s *Sphere) Area() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// SamplePosition samples a point uniformly on the sphere's surface
func (s *Sphere) SamplePosition(sample core.Vec2) PositionSample {
	normal := core.SampleOnUnitSphere(sample)
	return PositionSample{
		Point:  s.Center.Add(normal.Multiply(s.Radius)),
		Normal: normal,
		PDF:    1.0 / s.Area(),
	}
}

// GetMaterial returns the sphere's material
func (s *Sphere) GetMaterial() material.Material {
	return s.Material
}
