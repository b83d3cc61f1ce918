package scene

import (
	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/lights"
	"github.com/df07/go-transient-raytracer/pkg/material"
	"github.com/df07/go-transient-raytracer/pkg/sensor"
)

// CornellOptions configures the built-in line of sight test box
type CornellOptions struct {
	Width, Height  int  // Camera resolution
	Differentiable bool // Attach a differentiable scale to the ceiling light
}

// NewCornellScene builds a classic closed box observed directly by a pinhole
// camera: white floor, ceiling and back wall, red and green side walls, a
// quad light at the ceiling and a mirror sphere. Useful for watching light
// echo through a simple closed space.
func NewCornellScene(opts CornellOptions) (*Scene, *sensor.Pinhole) {
	s := NewScene()

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	// Box interior, 555 units per side, normals facing inward
	s.AddShape(geometry.NewQuad( // floor
		core.NewVec3(0, 0, 0), core.NewVec3(555, 0, 0), core.NewVec3(0, 0, 555), white))
	s.AddShape(geometry.NewQuad( // ceiling
		core.NewVec3(0, 555, 0), core.NewVec3(0, 0, 555), core.NewVec3(555, 0, 0), white))
	s.AddShape(geometry.NewQuad( // back wall
		core.NewVec3(0, 0, 555), core.NewVec3(0, 555, 0), core.NewVec3(555, 0, 0), white))
	s.AddShape(geometry.NewQuad( // left wall
		core.NewVec3(555, 0, 0), core.NewVec3(0, 0, 555), core.NewVec3(0, 555, 0), green))
	s.AddShape(geometry.NewQuad( // right wall
		core.NewVec3(0, 0, 0), core.NewVec3(0, 555, 0), core.NewVec3(0, 0, 555), red))

	// Ceiling light
	var lightMat material.Material
	if opts.Differentiable {
		emissionScale := ad.NewParam("light-scale", 1.0)
		lightMat = material.NewGradEmissive(core.NewVec3(15, 15, 15), emissionScale)
		s.AddParam(emissionScale)
	} else {
		lightMat = material.NewEmissive(core.NewVec3(15, 15, 15))
	}
	light := lights.NewQuadLight(
		core.NewVec3(213, 554, 227),
		core.NewVec3(130, 0, 0),
		core.NewVec3(0, 0, 105),
		lightMat,
	)
	s.AddShape(light.Quad)
	s.AddLight(light)

	// Mirror sphere in the middle of the box
	s.AddShape(geometry.NewSphere(
		core.NewVec3(277, 120, 277), 120,
		material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))))

	camera := sensor.NewPinhole(
		core.NewVec3(278, 278, -800),
		core.NewVec3(278, 278, 0),
		core.NewVec3(0, 1, 0),
		40,
		opts.Width, opts.Height,
	)

	return s, camera
}
