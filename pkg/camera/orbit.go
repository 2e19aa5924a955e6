package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit limits. Altitude stays off the poles so the world up vector is never
// parallel to the view direction.
const (
	MinAltitude = 0.01
	MaxAltitude = math.Pi - 0.01
	MinDistance = 0.5
	MaxDistance = 100.0
)

// OrbitState is the camera-control state written by input handlers and read
// once per frame by the render step. Angles are in radians; Altitude is
// measured from the +Y axis.
type OrbitState struct {
	Azimuth  float64
	Altitude float64
	Distance float64
	// Target is the point the camera orbits around.
	Target mgl32.Vec3
}

// NewOrbitState returns a clamped orbit state around the origin.
func NewOrbitState(azimuth, altitude, distance float64) OrbitState {
	o := OrbitState{Azimuth: azimuth, Altitude: altitude, Distance: distance}
	o.clamp()
	return o
}

// Rotate adds to azimuth and altitude.
func (o *OrbitState) Rotate(dAzimuth, dAltitude float64) {
	o.Azimuth = math.Mod(o.Azimuth+dAzimuth, 2*math.Pi)
	o.Altitude += dAltitude
	o.clamp()
}

// Zoom adds to the orbit distance.
func (o *OrbitState) Zoom(dDistance float64) {
	o.Distance += dDistance
	o.clamp()
}

// Eye returns the camera position for the current angles.
func (o OrbitState) Eye() mgl32.Vec3 {
	sinAlt, cosAlt := math.Sincos(o.Altitude)
	sinAz, cosAz := math.Sincos(o.Azimuth)
	offset := mgl32.Vec3{
		float32(o.Distance * cosAz * sinAlt),
		float32(o.Distance * cosAlt),
		float32(o.Distance * sinAz * sinAlt),
	}
	return o.Target.Add(offset)
}

// Apply points cam at the orbit target from the current eye position.
func (o OrbitState) Apply(cam *Camera) {
	cam.LookAt(o.Eye(), o.Target, mgl32.Vec3{0, 1, 0})
}

func (o *OrbitState) clamp() {
	o.Altitude = math.Max(MinAltitude, math.Min(MaxAltitude, o.Altitude))
	o.Distance = math.Max(MinDistance, math.Min(MaxDistance, o.Distance))
}
