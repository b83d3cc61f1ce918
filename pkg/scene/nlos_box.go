package scene

import (
	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
	"github.com/df07/go-transient-raytracer/pkg/lights"
	"github.com/df07/go-transient-raytracer/pkg/material"
	"github.com/df07/go-transient-raytracer/pkg/sensor"
)

// NLOSBoxOptions configures the built-in hidden-scene capture setup
type NLOSBoxOptions struct {
	Width, Height              int  // Capture grid resolution
	AccountFirstAndLastBounces bool // Whether calibrated segments count toward path length
	Differentiable             bool // Attach a differentiable albedo to the hidden target
}

// NewNLOSBoxScene builds the default hidden-scene capture: a diffuse relay
// wall scanned by the capture meter, a hidden diffuse target facing the wall,
// and a laser illuminating a fixed wall spot.
func NewNLOSBoxScene(opts NLOSBoxOptions) (*Scene, *sensor.NLOSCaptureMeter, error) {
	s := NewScene()

	// Relay wall in the z=0 plane, facing +z toward sensor and hidden target
	wallMat := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	wall := geometry.NewQuad(
		core.NewVec3(-1, -1, 0),
		core.NewVec3(2, 0, 0),
		core.NewVec3(0, 2, 0),
		wallMat,
	)
	s.RelayWallIndex = s.AddShape(wall)

	// Hidden target one unit away from the wall, facing it
	var targetMat material.Material
	if opts.Differentiable {
		albedoScale := ad.NewParam("hidden-albedo", 1.0)
		targetMat = material.NewGradLambertian(core.NewVec3(0.7, 0.7, 0.7), albedoScale)
		s.AddParam(albedoScale)
	} else {
		targetMat = material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))
	}
	target := geometry.NewQuad(
		core.NewVec3(-0.4, -0.4, 1.0),
		core.NewVec3(0, 0.8, 0),
		core.NewVec3(0.8, 0, 0),
		targetMat,
	)
	s.AddShape(target)

	// Laser slightly off the sensor axis, aimed at a fixed wall spot
	laser := lights.NewLaser(
		core.NewVec3(-0.2, 0.3, 0.25),
		core.NewVec3(-0.3, 0.4, 0),
		core.NewVec3(100, 100, 100),
		0.0035,
	)
	s.Laser = laser
	s.AddLight(laser)

	meter, err := sensor.NewNLOSCaptureMeter(
		core.NewVec3(0, 0, 0.25),
		wall,
		opts.Width, opts.Height,
		opts.AccountFirstAndLastBounces,
	)
	if err != nil {
		return nil, nil, err
	}

	return s, meter, nil
}
