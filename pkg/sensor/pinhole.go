package sensor

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Pinhole is a perspective camera, used for line of sight transient captures
// where the scene is observed directly rather than through a relay wall
type Pinhole struct {
	origin     core.Vec3
	lowerLeft  core.Vec3
	horizontal core.Vec3
	vertical   core.Vec3

	width, height int
}

// NewPinhole creates a perspective camera at lookFrom aimed at lookAt with
// the given vertical field of view in degrees
func NewPinhole(lookFrom, lookAt, vup core.Vec3, vfov float64, width, height int) *Pinhole {
	theta := vfov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	aspect := float64(width) / float64(height)
	halfWidth := aspect * halfHeight

	w := lookFrom.Subtract(lookAt).Normalize()
	u := vup.Cross(w).Normalize()
	v := w.Cross(u)

	lowerLeft := lookFrom.
		Subtract(u.Multiply(halfWidth)).
		Subtract(v.Multiply(halfHeight)).
		Subtract(w)

	return &Pinhole{
		origin:     lookFrom,
		lowerLeft:  lowerLeft,
		horizontal: u.Multiply(2 * halfWidth),
		vertical:   v.Multiply(2 * halfHeight),
		width:      width,
		height:     height,
	}
}

// Width returns the horizontal pixel count
func (p *Pinhole) Width() int { return p.width }

// Height returns the vertical pixel count
func (p *Pinhole) Height() int { return p.height }

// SampleRay generates a ray through a jittered point inside pixel (px, py)
func (p *Pinhole) SampleRay(px, py int, sampler core.Sampler) (core.Ray, core.Vec3, core.Vec2) {
	jitter := sampler.Get2D()
	filmPos := core.NewVec2(float64(px)+jitter.X, float64(py)+jitter.Y)

	s := filmPos.X / float64(p.width)
	t := 1.0 - filmPos.Y/float64(p.height)

	target := p.lowerLeft.
		Add(p.horizontal.Multiply(s)).
		Add(p.vertical.Multiply(t))
	direction := target.Subtract(p.origin).Normalize()

	return core.NewRay(p.origin, direction), core.NewVec3(1, 1, 1), filmPos
}
