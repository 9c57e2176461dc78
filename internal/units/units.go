// Package units holds the angle conversions and clamping shared by the
// control and simulation packages. Internally everything is radians; degrees
// exist only where a caller asks for them.
package units

import "math"

func RadiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func RotationsToRadians(rot float64) float64 {
	return rot * 2 * math.Pi
}

func RadiansToRotations(rad float64) float64 {
	return rad / (2 * math.Pi)
}

// Clamp limits v to [lo, hi]. NaN is returned unchanged.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Signum returns -1, 0 or 1. Unlike math.Copysign it maps zero to zero.
func Signum(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
