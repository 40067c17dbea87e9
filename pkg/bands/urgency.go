// pkg/bands/urgency.go

package bands

import (
	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// UrgencyStrategy selects the single most-urgent intruder, whose geometry
// drives the coordination criteria.
type UrgencyStrategy interface {
	MostUrgentAircraft(det detection.Detector, own traffic.Ownship, acs []traffic.State, t float64) traffic.State
	Copy() UrgencyStrategy
}

// NoneUrgencyStrategy never selects an aircraft.
type NoneUrgencyStrategy struct{}

func (NoneUrgencyStrategy) MostUrgentAircraft(det detection.Detector, own traffic.Ownship,
	acs []traffic.State, t float64) traffic.State {
	return traffic.Invalid
}

func (NoneUrgencyStrategy) Copy() UrgencyStrategy {
	return NoneUrgencyStrategy{}
}

// FixedAircraftUrgencyStrategy always selects the aircraft with the given
// identifier; if it is not in the traffic list the criterion degrades to
// none.
type FixedAircraftUrgencyStrategy struct {
	ID string
}

func (s FixedAircraftUrgencyStrategy) MostUrgentAircraft(det detection.Detector, own traffic.Ownship,
	acs []traffic.State, t float64) traffic.State {
	return traffic.Find(acs, s.ID)
}

func (s FixedAircraftUrgencyStrategy) Copy() UrgencyStrategy {
	return FixedAircraftUrgencyStrategy{ID: s.ID}
}

// DCPAUrgencyStrategy selects, among the aircraft in conflict, the one
// with the smallest cylindrical distance at closest approach; aircraft
// with (almost) equal distances are ordered by time to closest approach.
type DCPAUrgencyStrategy struct{}

func (DCPAUrgencyStrategy) MostUrgentAircraft(det detection.Detector, own traffic.Ownship,
	acs []traffic.State, t float64) traffic.State {
	repac := traffic.Invalid
	if !own.IsValid() || len(acs) == 0 {
		return repac
	}
	mindcpa, mintcpa := 0.0, 0.0
	so := own.S()
	vo := own.V()
	for _, ac := range acs {
		si := own.TrafficS(ac)
		vi := own.TrafficV(ac)
		s := so.Sub(si)
		v := vo.Sub(vi)
		if !det.Conflict(so, vo, si, vi, 0, t) {
			continue
		}
		tcpa := detection.Tccpa(s, vo, vi)
		dcpa := v.ScalAdd(tcpa, s).CylNorm(detection.NMACD, detection.NMACH)
		tcpaStrategy := dcpa < mindcpa
		if !math.AlmostEquals(tcpa, mintcpa) {
			tcpaStrategy = tcpa < mintcpa
		}
		dcpaStrategy := tcpa < mintcpa
		if !math.AlmostEquals(dcpa, mindcpa) {
			dcpaStrategy = dcpa < mindcpa
		}
		// Inside the recovery volume the time to closest approach decides;
		// otherwise the distance does.
		take := !repac.IsValid()
		if !take {
			if dcpa <= 1 {
				take = mindcpa > 1 || tcpaStrategy
			} else {
				take = dcpaStrategy
			}
		}
		if take {
			repac = ac
			mindcpa = dcpa
			mintcpa = tcpa
		}
	}
	return repac
}

func (DCPAUrgencyStrategy) Copy() UrgencyStrategy {
	return DCPAUrgencyStrategy{}
}
