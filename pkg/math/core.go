// pkg/math/core.go

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats/scalar"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Sign(v float64) float64 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Sq(v float64) float64 {
	return v * v
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// DefaultULP is the tolerance for the almost-equal comparisons used
// throughout the bands code.
const DefaultULP uint = 2 << 20

// AlmostEquals reports whether a and b are within DefaultULP units in the
// last place of each other. Zero is special-cased since ULP distance is
// meaningless across zero.
func AlmostEquals(a, b float64) bool {
	if a == b {
		return true
	}
	if a == 0 || b == 0 {
		return scalar.EqualWithinAbs(a, b, 1e-8)
	}
	return scalar.EqualWithinULP(a, b, DefaultULP)
}

func AlmostLess(a, b float64) bool {
	return a < b && !AlmostEquals(a, b)
}

func AlmostLeq(a, b float64) bool {
	return a <= b || AlmostEquals(a, b)
}

func AlmostGeq(a, b float64) bool {
	return a >= b || AlmostEquals(a, b)
}

// To2Pi reduces an angle in radians to [0, 2pi).
func To2Pi(rad float64) float64 {
	r := gomath.Mod(rad, 2*gomath.Pi)
	if r < 0 {
		r += 2 * gomath.Pi
	}
	return r
}

// ToPi reduces an angle in radians to [-pi, pi).
func ToPi(rad float64) float64 {
	r := To2Pi(rad)
	if r >= gomath.Pi {
		r -= 2 * gomath.Pi
	}
	return r
}

// Discr returns the discriminant of the quadratic a*x^2+b*x+c.
func Discr(a, b, c float64) float64 {
	return Sq(b) - 4*a*c
}

// Root returns the eps root (eps = -1 for the smaller, +1 for the larger
// when a > 0) of the quadratic a*x^2+b*x+c. The discriminant must be
// non-negative.
func Root(a, b, c float64, eps int) float64 {
	return (-b + float64(eps)*gomath.Sqrt(Discr(a, b, c))) / (2 * a)
}
