package integrator

import (
	"fmt"

	"github.com/df07/go-transient-raytracer/pkg/log"
)

// Config controls the transient path tracer
type Config struct {
	// MaxDepth is the longest path depth in the generated output. A value of
	// 1 only records directly visible light sources, 2 adds single bounce
	// illumination, and so on. -1 means unbounded; paths then terminate
	// through russian roulette and the path length limit alone.
	MaxDepth int

	// RRDepth is the path depth at which russian roulette termination starts
	RRDepth int

	// FilterDepth, when non-negative, restricts next event estimation to
	// paths of exactly this depth
	FilterDepth int

	// DiscardDirectPaths drops next event estimation at depths below 2
	DiscardDirectPaths bool

	// LaserSampling connects path vertices to the laser's illuminated spot
	// instead of sampling the laser directly. In a hidden-scene capture most
	// directions carry no radiance, so plain emitter sampling almost never
	// finds the one illuminated point.
	LaserSampling bool

	// HiddenGeometrySampling draws scattering directions toward points on
	// the hidden geometry instead of from the BSDF
	HiddenGeometrySampling bool

	// HGSamplingDoRoulette mixes hidden geometry and BSDF sampling with a
	// coin flip instead of always using hidden geometry sampling
	HGSamplingDoRoulette bool

	// HGSamplingIncludesRelayWall includes the relay wall in the hidden
	// geometry sampling distribution
	HGSamplingIncludesRelayWall bool

	// HGSamplingRejection retries occluded hidden geometry samples up to a
	// fixed iteration cap, compensating through the sample weight
	HGSamplingRejection bool

	// CameraUnwarp is unsupported for capture meters; the sensor's
	// account-first-and-last-bounces setting covers the same need
	CameraUnwarp bool

	// MaxDistance stops paths beyond this optical path length. Zero means
	// use the end of the film's recorded range.
	MaxDistance float64
}

// DefaultConfig returns the standard transient path tracer settings
func DefaultConfig() Config {
	return Config{
		MaxDepth:    6,
		RRDepth:     5,
		FilterDepth: -1,
	}
}

// Validate checks the configuration and logs warnings for settings that
// produce empty output
func (c *Config) Validate(logger log.Logger) error {
	if c.CameraUnwarp {
		return fmt.Errorf("camera unwarp is not supported for capture meters; " +
			"use the sensor's account-first-and-last-bounces setting instead")
	}
	if c.MaxDepth < 1 && c.MaxDepth != -1 {
		return fmt.Errorf("max depth must be at least 1 or -1 for unbounded, got %d", c.MaxDepth)
	}
	if c.RRDepth < 1 {
		return fmt.Errorf("russian roulette depth must be at least 1, got %d", c.RRDepth)
	}
	if c.FilterDepth != -1 && c.MaxDepth != -1 && c.FilterDepth >= c.MaxDepth {
		logger.Warning("filter depth >= max depth, the output will be all zero")
	}
	return nil
}
