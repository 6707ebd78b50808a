package lattice

import (
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/pkg/errors"
)

var directionNames = [...]string{
	Back:      "B",
	Right:     "R",
	DownRight: "DR",
	DownLeft:  "DL",
	Left:      "L",
	UpLeft:    "UL",
	UpRight:   "UR",
}

// DirectionFromCode maps a stable numeric code (Back=0, Right=1 .. UpRight=6) to a Direction.
func DirectionFromCode(code int) (Direction, error) {
	if code < int(Back) || code > int(UpRight) {
		return Back, errors.Wrapf(hexpack.ErrBadDirection, "direction code %d", code)
	}
	return Direction(code), nil
}

// DirectionFromName maps a short name ("R", "DR", .. "B") to a Direction.
func DirectionFromName(name string) (Direction, error) {
	for d, str := range directionNames {
		if str == name {
			return Direction(d), nil
		}
	}
	return Back, errors.Wrapf(hexpack.ErrBadDirection, "direction name %q", name)
}

// Code returns the stable numeric code of d.
func (d Direction) Code() int {
	return int(d)
}

func (d Direction) String() string {
	if d < Back || d > UpRight {
		return "?"
	}
	return directionNames[d]
}

// IsValid returns true if d is one of the six geometric directions.
func (d Direction) IsValid() bool {
	return d >= Right && d <= UpRight
}

// Slot returns the zero-based neighbor slot index for d.
// Back has no slot and panics, since asking for it is a programming error.
func (d Direction) Slot() int {
	if !d.IsValid() {
		panic(errors.Wrapf(hexpack.ErrBadDirection, "%v is not a storage direction", d))
	}
	return int(d) - 1
}

// Rotate turns d one sixth clockwise: Right -> DownRight -> .. -> UpRight -> Right.  Back is a fixed point.
func (d Direction) Rotate() Direction {
	if !d.IsValid() {
		return d
	}
	return d%NumDirections + 1
}

// RotateN applies Rotate n times (n may be negative).
func (d Direction) RotateN(n int) Direction {
	if !d.IsValid() {
		return d
	}
	n %= NumDirections
	if n < 0 {
		n += NumDirections
	}
	return Direction((int(d)-1+n)%NumDirections + 1)
}

// Opposite is d rotated three times.
func (d Direction) Opposite() Direction {
	return d.Rotate().Rotate().Rotate()
}

// OnAxis returns true if d lies along axis (equal to it or its opposite).
func (d Direction) OnAxis(axis Direction) bool {
	return d == axis || d == axis.Opposite()
}

// Mirror reflects d across the line through axis.
// Directions on the axis are unchanged and Back stays Back.
func (d Direction) Mirror(axis Direction) Direction {
	if !d.IsValid() || d.OnAxis(axis) {
		return d
	}
	return axis.RotateN(int(axis) - int(d))
}
