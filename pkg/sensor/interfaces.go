package sensor

import (
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Sensor interface for camera models that generate primary rays. The ray's
// Time field carries the optical path length already attributed to the sensor
// side of the path, so histogram binning can include or exclude it.
type Sensor interface {
	// SampleRay generates a primary ray for film pixel (px, py).
	// Returns the ray, the importance weight, and the continuous film position.
	SampleRay(px, py int, sampler core.Sampler) (core.Ray, core.Vec3, core.Vec2)

	// Width and Height report the sensor's pixel grid, which must match the
	// film the sensor renders into
	Width() int
	Height() int
}
