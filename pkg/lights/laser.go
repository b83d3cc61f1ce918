package lights

import (
	"math"

	"github.com/df07/go-transient-raytracer/pkg/ad"
	"github.com/df07/go-transient-raytracer/pkg/core"
)

// Laser represents a collimated illumination source: a point emitter with a
// very narrow cone aimed at a single spot (the relay wall in a hidden-scene
// capture). The cone is narrow enough that only the aimed spot is lit.
type Laser struct {
	Position  core.Vec3 // Laser origin
	Direction core.Vec3 // Normalized aim direction
	Intensity core.Vec3 // Radiant intensity along the beam

	// IntensityScale optionally makes the intensity differentiable: when set,
	// the effective intensity is Intensity * IntensityScale.Value()
	IntensityScale *ad.Param

	cosTotalWidth float64 // Cosine of the cone half-angle
}

// NewLaser creates a laser at position aimed at target with the given beam
// half-angle in radians
func NewLaser(position, target core.Vec3, intensity core.Vec3, halfAngle float64) *Laser {
	return &Laser{
		Position:      position,
		Direction:     target.Subtract(position).Normalize(),
		Intensity:     intensity,
		cosTotalWidth: math.Cos(halfAngle),
	}
}

func (l *Laser) Type() LightType {
	return LightTypePoint
}

// Ray returns the beam's central ray, used to locate the illuminated spot
func (l *Laser) Ray() core.Ray {
	return core.NewRay(l.Position, l.Direction)
}

func (l *Laser) intensity() core.Vec3 {
	if l.IntensityScale != nil {
		return l.Intensity.Multiply(l.IntensityScale.Value())
	}
	return l.Intensity
}

// falloff returns the beam profile for a direction from the laser origin:
// 1 inside the cone, 0 outside
func (l *Laser) falloff(fromLaser core.Vec3) float64 {
	if fromLaser.Dot(l.Direction) < l.cosTotalWidth {
		return 0
	}
	return 1
}

// Sample implements the Light interface - a delta position, so the sample is
// the laser origin itself with the inverse square law applied
func (l *Laser) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	toLight := l.Position.Subtract(point)
	distance := toLight.Length()
	direction := toLight.Multiply(1.0 / distance)

	emission := l.intensity().Multiply(l.falloff(direction.Negate()) / (distance * distance))

	return LightSample{
		Point:     l.Position,
		Direction: direction,
		Distance:  distance,
		Emission:  emission,
		PDF:       1.0,
		IsDelta:   true,
	}
}

// SampleGrad re-records a sample's emission on the tape with the sampled
// geometry held fixed
func (l *Laser) SampleGrad(tape *ad.Tape, sample LightSample) *ad.Spec {
	if sample.Emission.IsZero() {
		return tape.Const(core.Vec3{})
	}
	base := l.Intensity.Multiply(l.falloff(sample.Direction.Negate()) / (sample.Distance * sample.Distance))
	if l.IntensityScale != nil {
		return tape.Scaled(l.IntensityScale, base)
	}
	return tape.Const(base)
}

// PDF implements the Light interface - a delta position can never be hit by
// a direction chosen by another strategy
func (l *Laser) PDF(point, normal, direction core.Vec3) float64 {
	return 0.0
}
