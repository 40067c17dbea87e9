// pkg/bands/criteria.go

package bands

import (
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// The coordination signs encode which side of the criterion intruder the
// ownship commits to, so that two aircraft independently computing bands
// converge on compatible maneuvers instead of mirror images. The signs
// are computed once from the current relative geometry; the repulsive
// predicates then test whether a candidate relative velocity keeps the
// commitment.

// horizontalCoordination returns the horizontal coordination sign for
// relative position s and relative velocity v.
func horizontalCoordination(s, v math.Vect2) int {
	return int(math.Sign(v.Det(s)))
}

// verticalCoordination returns the vertical coordination sign: separate
// in the direction that already separates, with an identifier comparison
// breaking exact co-altitude ties deterministically on both aircraft.
func verticalCoordination(s math.Vect3, vo, vi math.Velocity, ownID, acID string) int {
	if s.Z != 0 {
		return int(math.Sign(s.Z))
	}
	vz := vo.Z - vi.Z
	if vz != 0 {
		return int(math.Sign(vz))
	}
	if ownID < acID {
		return 1
	}
	return -1
}

// horizontalRepulsive tests whether replacing the ownship velocity vo by
// nvo keeps the relative velocity on the eps side of the relative
// position, at least as repulsive as before.
func horizontalRepulsive(s math.Vect2, vo, vi, nvo math.Vect2, eps int) bool {
	v := vo.Sub(vi)
	nv := nvo.Sub(vi)
	if s.IsZero() || nv.IsZero() {
		return false
	}
	e := float64(eps)
	return e*s.Det(nv) <= 0 && e*s.Det(nv) <= e*s.Det(v)
}

// verticalRepulsive accepts the new relative vertical speed when it
// separates at least as fast in the eps direction as the current one, or
// when it does not close in the eps direction at all.
func verticalRepulsive(s math.Vect3, vo, vi, nvo math.Vect3, eps int) bool {
	vz := vo.Z - vi.Z
	nvz := nvo.Z - vi.Z
	e := float64(eps)
	return e*nvz >= e*vz || e*nvz >= 0
}

// EpsilonH computes the horizontal coordination sign of ownship own
// against criterion aircraft ac, 0 if ac is invalid.
func EpsilonH(own traffic.Ownship, ac traffic.State) int {
	if !ac.IsValid() {
		return 0
	}
	s := own.S().Sub(own.TrafficS(ac)).Vect2()
	v := own.V().Sub(own.TrafficV(ac)).Vect2()
	return horizontalCoordination(s, v)
}

// EpsilonV computes the vertical coordination sign of ownship own against
// criterion aircraft ac, 0 if ac is invalid.
func EpsilonV(own traffic.Ownship, ac traffic.State) int {
	if !ac.IsValid() {
		return 0
	}
	si := own.TrafficS(ac)
	s := own.S().Sub(si)
	return verticalCoordination(s, own.V(), own.TrafficV(ac), own.ID, ac.ID)
}
