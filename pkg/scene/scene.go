// Package scene holds the renderable world: shapes, lights, the optional
// laser illumination of a hidden-scene capture, and the differentiable
// parameters a backward render accumulates gradients into.
package scene

import (
	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/lights"
	"github.com/df07/go-transient-raytracer/pkg/material"
)

// Scene contains all geometry and lighting
type Scene struct {
	Shapes []geometry.Shape
	Lights []lights.Light

	// Laser is the collimated illumination of a hidden-scene capture,
	// nil for line of sight scenes
	Laser *lights.Laser

	// RelayWallIndex is the shape index of the relay wall, -1 when the scene
	// has none. Hidden geometry sampling excludes it by default.
	RelayWallIndex int

	// Params lists the differentiable parameters registered in the scene's
	// materials and lights
	Params []*ad.Param
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{RelayWallIndex: -1}
}

// AddShape appends a shape and returns its index
func (s *Scene) AddShape(shape geometry.Shape) int {
	s.Shapes = append(s.Shapes, shape)
	return len(s.Shapes) - 1
}

// AddLight appends a light
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
}

// AddParam registers a differentiable parameter
func (s *Scene) AddParam(p *ad.Param) {
	s.Params = append(s.Params, p)
}

// Intersect finds the closest intersection along the ray within [tMin, tMax].
// The returned interaction carries the index of the hit shape.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (*material.SurfaceInteraction, bool) {
	var closest *material.SurfaceInteraction
	closestT := tMax

	for i, shape := range s.Shapes {
		if si, hit := shape.Hit(ray, tMin, closestT); hit {
			si.ShapeIndex = i
			closest = si
			closestT = si.T
		}
	}

	return closest, closest != nil
}

// RayTest reports whether anything blocks the ray within [tMin, tMax]
func (s *Scene) RayTest(ray core.Ray, tMin, tMax float64) bool {
	for _, shape := range s.Shapes {
		if _, hit := shape.Hit(ray, tMin, tMax); hit {
			return true
		}
	}
	return false
}

// IntersectionCount counts intersections along the ray up to tMax, stopping
// at the cap. Used to correct the density of position-sampled directions that
// cross a surface several times.
func (s *Scene) IntersectionCount(ray core.Ray, tMax float64, cap int) int {
	const epsilon = 1e-4

	count := 0
	tMin := epsilon
	for count < cap {
		si, hit := s.Intersect(ray, tMin, tMax)
		if !hit {
			break
		}
		count++
		tMin = si.T + epsilon
	}
	return count
}
