package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidUnits is returned when an angle unit is neither Degrees nor
// Radians.
var ErrInvalidUnits = errors.New("invalid angle units")

// AngleUnit selects the unit of rotation angles.
type AngleUnit string

const (
	Degrees AngleUnit = "degrees"
	Radians AngleUnit = "radians"
)

// ToRadians converts an angle in this unit to radians. Unknown units fail
// with ErrInvalidUnits.
func (u AngleUnit) ToRadians(angle float64) (float64, error) {
	switch u {
	case Degrees:
		return mgl64.DegToRad(angle), nil
	case Radians:
		return angle, nil
	}
	return 0, fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidUnits, string(u), Degrees, Radians)
}

// EulerMatrix builds the rotation matrix R = Rz(yaw) * Ry(pitch) * Rx(roll).
// Applied to a column vector, roll acts first, then pitch, then yaw.
// Angles are in radians. A zero angle contributes an exact identity; the
// corresponding axis matrix is skipped, which is an optimization only and
// never changes the result.
func EulerMatrix(yaw, pitch, roll float64) mgl64.Mat3 {
	m := mgl64.Ident3()
	if yaw != 0 {
		m = m.Mul3(mgl64.Rotate3DZ(yaw))
	}
	if pitch != 0 {
		m = m.Mul3(mgl64.Rotate3DY(pitch))
	}
	if roll != 0 {
		m = m.Mul3(mgl64.Rotate3DX(roll))
	}
	return m
}
