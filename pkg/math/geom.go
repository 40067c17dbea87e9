// pkg/math/geom.go

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// 2D and 3D vectors

type Vect2 struct {
	X, Y float64
}

func (v Vect2) Add(w Vect2) Vect2 {
	return Vect2{v.X + w.X, v.Y + w.Y}
}

func (v Vect2) Sub(w Vect2) Vect2 {
	return Vect2{v.X - w.X, v.Y - w.Y}
}

func (v Vect2) Scal(k float64) Vect2 {
	return Vect2{k * v.X, k * v.Y}
}

// ScalAdd returns k*v + w.
func (v Vect2) ScalAdd(k float64, w Vect2) Vect2 {
	return Vect2{k*v.X + w.X, k*v.Y + w.Y}
}

func (v Vect2) Dot(w Vect2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Det is the 2D cross product v.X*w.Y - v.Y*w.X.
func (v Vect2) Det(w Vect2) float64 {
	return v.X*w.Y - v.Y*w.X
}

func (v Vect2) Sqv() float64 {
	return v.Dot(v)
}

func (v Vect2) Norm() float64 {
	return gomath.Hypot(v.X, v.Y)
}

func (v Vect2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Trk is the clockwise angle from north, in radians.
func (v Vect2) Trk() float64 {
	return gomath.Atan2(v.X, v.Y)
}

type Vect3 struct {
	X, Y, Z float64
}

func (v Vect3) Vect2() Vect2 {
	return Vect2{v.X, v.Y}
}

func (v Vect3) Add(w Vect3) Vect3 {
	return Vect3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

func (v Vect3) Sub(w Vect3) Vect3 {
	return Vect3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

func (v Vect3) Scal(k float64) Vect3 {
	return Vect3{k * v.X, k * v.Y, k * v.Z}
}

// ScalAdd returns k*v + w.
func (v Vect3) ScalAdd(k float64, w Vect3) Vect3 {
	return Vect3{k*v.X + w.X, k*v.Y + w.Y, k*v.Z + w.Z}
}

// Linear returns the position after flying velocity vel for t seconds from v.
func (v Vect3) Linear(vel Vect3, t float64) Vect3 {
	return vel.ScalAdd(t, v)
}

func (v Vect3) Dot(w Vect3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v Vect3) Norm() float64 {
	return gomath.Sqrt(v.Dot(v))
}

func (v Vect3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// CylNorm is the cylindrical norm of v with respect to a cylinder of
// radius d and half-height h: the max of the scaled horizontal and
// vertical distances. 1 is the boundary of the cylinder.
func (v Vect3) CylNorm(d, h float64) float64 {
	return Max(v.Vect2().Norm()/d, gomath.Abs(v.Z)/h)
}

var (
	// InvalidVect3 is a sentinel for undefined positions/velocities.
	InvalidVect3 = Vect3{gomath.NaN(), gomath.NaN(), gomath.NaN()}
)

func (v Vect3) IsInvalid() bool {
	return gomath.IsNaN(v.X) || gomath.IsNaN(v.Y) || gomath.IsNaN(v.Z)
}

///////////////////////////////////////////////////////////////////////////
// Velocity

// Velocity is a 3D Cartesian velocity vector; X is east, Y north, Z up.
// Track, ground speed, and vertical speed are derived views.
type Velocity = Vect3

// VelocityFromTrkGsVs builds a velocity from track (radians clockwise from
// north), ground speed, and vertical speed, all in internal units.
func VelocityFromTrkGsVs(trk, gs, vs float64) Velocity {
	return Velocity{gs * gomath.Sin(trk), gs * gomath.Cos(trk), vs}
}

// Gs returns the ground speed of v.
func Gs(v Velocity) float64 {
	return v.Vect2().Norm()
}

// Trk returns the track angle of v in radians clockwise from north.
func Trk(v Velocity) float64 {
	return v.Vect2().Trk()
}

// Vs returns the vertical speed of v.
func Vs(v Velocity) float64 {
	return v.Z
}
