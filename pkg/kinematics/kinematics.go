// pkg/kinematics/kinematics.go

// Package kinematics rolls an aircraft state forward under the nominal
// maneuver dynamics: constant-rate turns, constant horizontal or vertical
// acceleration, and three-phase altitude level-offs. Everything here is a
// pure function of the inputs.
package kinematics

import (
	gomath "math"

	"wellclear/pkg/math"
)

// TurnRate returns the turn rate for a coordinated turn at the given
// ground speed and bank angle.
func TurnRate(gs, bank float64) float64 {
	if gs <= 0 {
		return 0
	}
	return math.GravityMps2 * gomath.Tan(bank) / gs
}

// BankAngle returns the bank angle of a coordinated turn at the given
// ground speed and turn rate.
func BankAngle(gs, omega float64) float64 {
	return gomath.Atan(omega * gs / math.GravityMps2)
}

// TurnRadius returns the radius of a coordinated turn.
func TurnRadius(gs, bank float64) float64 {
	if bank == 0 {
		return gomath.Inf(1)
	}
	return math.Sq(gs) / (math.GravityMps2 * gomath.Tan(bank))
}

// TurnOmega flies a constant-rate turn (omega > 0 turns right) for t
// seconds from state (s, v).
func TurnOmega(s math.Vect3, v math.Velocity, t, omega float64) (math.Vect3, math.Velocity) {
	if omega == 0 || t == 0 {
		return s.Linear(v, t), v
	}
	gs := math.Gs(v)
	trk0 := math.Trk(v)
	trk := trk0 + omega*t
	// Closed-form integral of (gs sin trk, gs cos trk) over the turn.
	ns := math.Vect3{
		X: s.X + gs/omega*(gomath.Cos(trk0)-gomath.Cos(trk)),
		Y: s.Y - gs/omega*(gomath.Sin(trk0)-gomath.Sin(trk)),
		Z: s.Z + v.Z*t,
	}
	return ns, math.VelocityFromTrkGsVs(trk, gs, v.Z)
}

// GsAccel changes ground speed at constant acceleration a (signed),
// heading and vertical speed fixed. Ground speed does not go below zero.
func GsAccel(s math.Vect3, v math.Velocity, t, a float64) (math.Vect3, math.Velocity) {
	gs0 := math.Gs(v)
	trk := math.Trk(v)
	gs := gs0 + a*t
	dist := gs0*t + a*math.Sq(t)/2
	if gs < 0 {
		// Came to a stop partway through.
		tstop := -gs0 / a
		gs = 0
		dist = gs0 * tstop / 2
	}
	dir := math.Vect2{X: gomath.Sin(trk), Y: gomath.Cos(trk)}
	ns := math.Vect3{X: s.X + dist*dir.X, Y: s.Y + dist*dir.Y, Z: s.Z + v.Z*t}
	return ns, math.VelocityFromTrkGsVs(trk, gs, v.Z)
}

// VsAccel changes vertical speed at constant acceleration a (signed),
// track and ground speed fixed.
func VsAccel(s math.Vect3, v math.Velocity, t, a float64) (math.Vect3, math.Velocity) {
	ns := math.Vect3{
		X: s.X + v.X*t,
		Y: s.Y + v.Y*t,
		Z: s.Z + v.Z*t + a*math.Sq(t)/2,
	}
	return ns, math.Vect3{X: v.X, Y: v.Y, Z: v.Z + a*t}
}

///////////////////////////////////////////////////////////////////////////
// Altitude level-off

// vsPhase is one constant-acceleration segment of a level-off profile.
type vsPhase struct {
	dur   float64 // [s]
	vs0   float64 // vertical speed at phase start
	accel float64
}

// levelOutProfile builds the vertical profile from altitude z0 and
// vertical speed vz0 to level flight at target altitude za, climbing or
// descending at rate cr (> 0) with vertical acceleration a (> 0). The
// second return is false when no monotone three-phase profile reaches the
// target (overshoot would be required).
func levelOutProfile(z0, vz0, za, cr, a float64) ([]vsPhase, bool) {
	dz := za - z0
	if dz == 0 && vz0 == 0 {
		return nil, true
	}
	dir := math.Sign(dz)
	if dir == 0 {
		dir = -math.Sign(vz0)
	}
	// Mirror so the profile is always a climb.
	mdz, mvz0 := dir*dz, dir*vz0
	if mvz0 < 0 {
		// Moving away from the target; first arrest the opposite rate.
		t0 := -mvz0 / a
		mdz -= mvz0 * t0 / 2
		rest, ok := levelOutProfile(0, 0, mdz, cr, a)
		if !ok {
			return nil, false
		}
		ph := []vsPhase{{dur: t0, vs0: vz0, accel: dir * a}}
		for _, p := range rest {
			ph = append(ph, vsPhase{dur: p.dur, vs0: dir * p.vs0, accel: dir * p.accel})
		}
		return ph, true
	}
	// Climb from mvz0 >= 0: accelerate to peak vp, cruise, decelerate to 0.
	vp := cr
	t1 := (vp - mvz0) / a
	dz1 := mvz0*t1 + a*math.Sq(t1)/2
	dz3 := math.Sq(vp) / (2 * a)
	dz2 := mdz - dz1 - dz3
	var t2 float64
	if dz2 >= 0 {
		t2 = dz2 / vp
	} else {
		// Short climb; reduced peak rate.
		sq := (2*a*mdz + math.Sq(mvz0)) / 2
		if sq < math.Sq(mvz0) {
			return nil, false // would overshoot
		}
		vp = gomath.Sqrt(sq)
		t1 = (vp - mvz0) / a
		t2 = 0
	}
	t3 := vp / a
	ph := []vsPhase{
		{dur: t1, vs0: dir * mvz0, accel: dir * a},
		{dur: t2, vs0: dir * vp, accel: 0},
		{dur: t3, vs0: dir * vp, accel: -dir * a},
	}
	return ph, true
}

// VsLevelOutTime returns the duration of the level-off maneuver from
// (z0, vz0) to level flight at za, or a negative value when the target is
// unreachable under the profile. A zero climb rate means an instantaneous
// level-off.
func VsLevelOutTime(z0, vz0, za, cr, a float64) float64 {
	if cr == 0 {
		return 0
	}
	ph, ok := levelOutProfile(z0, vz0, za, cr, a)
	if !ok {
		return -1
	}
	var t float64
	for _, p := range ph {
		t += p.dur
	}
	return t
}

// VsLevelOut flies the level-off profile for t seconds from state (s, v).
// Past the end of the profile the aircraft holds the target altitude.
func VsLevelOut(s math.Vect3, v math.Velocity, t, cr, za, a float64) (math.Vect3, math.Velocity) {
	ns := math.Vect3{X: s.X + v.X*t, Y: s.Y + v.Y*t, Z: s.Z}
	nv := math.Vect3{X: v.X, Y: v.Y, Z: 0}
	if cr == 0 {
		// Instantaneous level-off.
		ns.Z = za
		return ns, nv
	}
	ph, ok := levelOutProfile(s.Z, v.Z, za, cr, a)
	if !ok {
		return s.Linear(v, t), v
	}
	z, vz, rem := s.Z, v.Z, t
	for _, p := range ph {
		dt := math.Min(rem, p.dur)
		z += p.vs0*dt + p.accel*math.Sq(dt)/2
		vz = p.vs0 + p.accel*dt
		rem -= dt
		if rem <= 0 {
			ns.Z = z
			nv.Z = vz
			return ns, nv
		}
	}
	ns.Z = za
	return ns, nv
}
