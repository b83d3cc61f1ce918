package sensor

import (
	"fmt"

	"github.com/df07/go-transient-raytracer/pkg/core"
	"github.com/df07/go-transient-raytracer/pkg/geometry"
)

// NLOSCaptureMeter models a time resolved capture device focused on a relay
// wall: every film pixel corresponds to one patch of the wall, scanned by
// shooting rays from the sensor position through jittered points inside the
// patch. The hidden scene is observed indirectly through light bouncing off
// the wall.
type NLOSCaptureMeter struct {
	Origin core.Vec3      // Sensor position
	Wall   *geometry.Quad // Relay wall the sensor is focused on

	// AccountFirstAndLastBounces controls whether the sensor-to-wall and
	// laser-to-wall path segments count toward the recorded path length.
	// Captures usually calibrate these out.
	AccountFirstAndLastBounces bool

	width, height int
}

// NewNLOSCaptureMeter creates a capture meter scanning the given wall with a
// width x height pixel grid
func NewNLOSCaptureMeter(origin core.Vec3, wall *geometry.Quad, width, height int, accountFirstAndLastBounces bool) (*NLOSCaptureMeter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("capture meter grid must be positive, got %dx%d", width, height)
	}
	return &NLOSCaptureMeter{
		Origin:                     origin,
		Wall:                       wall,
		AccountFirstAndLastBounces: accountFirstAndLastBounces,
		width:                      width,
		height:                     height,
	}, nil
}

// Width returns the horizontal patch count of the scanned grid
func (m *NLOSCaptureMeter) Width() int { return m.width }

// Height returns the vertical patch count of the scanned grid
func (m *NLOSCaptureMeter) Height() int { return m.height }

// SampleRay generates a ray from the sensor through a jittered point inside
// the wall patch of pixel (px, py). When the first bounce is calibrated out,
// the ray carries a negative time offset canceling the sensor-to-wall
// segment the transport loop will accumulate.
func (m *NLOSCaptureMeter) SampleRay(px, py int, sampler core.Sampler) (core.Ray, core.Vec3, core.Vec2) {
	jitter := sampler.Get2D()
	filmPos := core.NewVec2(float64(px)+jitter.X, float64(py)+jitter.Y)

	u := filmPos.X / float64(m.width)
	v := filmPos.Y / float64(m.height)
	wallPoint := m.Wall.Corner.Add(m.Wall.U.Multiply(u)).Add(m.Wall.V.Multiply(v))

	toWall := wallPoint.Subtract(m.Origin)
	distance := toWall.Length()
	direction := toWall.Multiply(1.0 / distance)

	time := 0.0
	if !m.AccountFirstAndLastBounces {
		time = -distance
	}

	return core.NewRayWithTime(m.Origin, direction, time), core.NewVec3(1, 1, 1), filmPos
}
