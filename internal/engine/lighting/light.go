// Package lighting provides the directional light used by the renderer.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/trimesh/pkg/math"
)

// Directional is a light at infinity given by its position on the sky.
// Azimuth is rotation around Y (degrees, 0 points along +Z), elevation is
// the angle above the horizon (degrees).
type Directional struct {
	Azimuth   float32
	Elevation float32
}

// DefaultLight is up and to the front right of the default camera.
var DefaultLight = Directional{Azimuth: 35, Elevation: 55}

// ToLight returns the unit vector pointing from the scene towards the light.
func (d Directional) ToLight() math.Vec3 {
	az := float64(d.Azimuth) * gomath.Pi / 180
	el := float64(d.Elevation) * gomath.Pi / 180
	return math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Sin(el)),
		Z: float32(gomath.Cos(el) * gomath.Cos(az)),
	}
}

// Direction returns the direction the light travels, as shaders expect.
func (d Directional) Direction() math.Vec3 {
	return d.ToLight().Scale(-1)
}

// Rotate returns d turned around Y by degrees, wrapped to [0, 360).
func (d Directional) Rotate(degrees float32) Directional {
	az := gomath.Mod(float64(d.Azimuth+degrees), 360)
	if az < 0 {
		az += 360
	}
	d.Azimuth = float32(az)
	return d
}
