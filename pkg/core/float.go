package core

import "math"

// DebugChecks turns on NaN assertions in vector constructors
var DebugChecks = false

const (
	// MachineEpsilon is half the distance between 1 and the next float64
	MachineEpsilon = 0x1p-53

	// ShadowEpsilon is the fraction of a segment left unoccluded at its far end
	ShadowEpsilon = 0.0001

	Pi      = math.Pi
	InvPi   = 1 / math.Pi
	Inv2Pi  = 1 / (2 * math.Pi)
	PiOver2 = math.Pi / 2
	PiOver4 = math.Pi / 4
)

// Infinity is positive infinity
var Infinity = math.Inf(1)

// Gamma returns the bound n*eps/(1-n*eps) on the relative error of n
// successive floating point operations
func Gamma(n int) float64 {
	ne := float64(n) * MachineEpsilon
	return ne / (1 - ne)
}

// NextFloatUp returns the smallest float64 greater than v
func NextFloatUp(v float64) float64 {
	if math.IsInf(v, 1) {
		return v
	}
	return math.Nextafter(v, math.Inf(1))
}

// NextFloatDown returns the largest float64 less than v
func NextFloatDown(v float64) float64 {
	if math.IsInf(v, -1) {
		return v
	}
	return math.Nextafter(v, math.Inf(-1))
}

// Clamp restricts val to [low, high]
func Clamp(val, low, high float64) float64 {
	if val < low {
		return low
	}
	if val > high {
		return high
	}
	return val
}

// Lerp linearly interpolates between a and b
func Lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return (Pi / 180) * deg
}

// Degrees converts radians to degrees
func Degrees(rad float64) float64 {
	return (180 / Pi) * rad
}
