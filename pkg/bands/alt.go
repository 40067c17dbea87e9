// pkg/bands/alt.go

package bands

import (
	"wellclear/pkg/detection"
	"wellclear/pkg/kinematics"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// AltBands computes conflict bands over the altitude axis. Unlike the
// rate axes, altitude cells are level-off targets: each candidate target
// altitude is flown as a three-phase climb/descend profile, the conflict
// test happens at the level-off state with the detector window shifted by
// the maneuver duration, and a separate sweep detects losses of
// separation during the climb/descend itself.
type AltBands struct {
	RealBands
	verticalRate  float64 // 0 means instantaneous level-off
	verticalAccel float64
}

func NewAltBands(min, max, step, verticalRate, verticalAccel float64) *AltBands {
	a := &AltBands{verticalRate: verticalRate, verticalAccel: verticalAccel}
	a.RealBands = newRealBands(min, max, step, false, a)
	return a
}

func (ab *AltBands) SetVerticalRate(val float64) {
	if val >= 0 && val != ab.verticalRate {
		ab.verticalRate = val
		ab.Reset()
	}
}

func (ab *AltBands) SetVerticalAcceleration(val float64) {
	if val >= 0 && val != ab.verticalAccel {
		ab.verticalAccel = val
		ab.Reset()
	}
}

func (ab *AltBands) VerticalRate() float64         { return ab.verticalRate }
func (ab *AltBands) VerticalAcceleration() float64 { return ab.verticalAccel }

// levelOutTime is the maneuver duration to target altitude a, negative
// when unreachable.
func (ab *AltBands) levelOutTime(own traffic.Ownship, a float64) float64 {
	return kinematics.VsLevelOutTime(own.S().Z, own.V().Z, a, ab.verticalRate, ab.verticalAccel)
}

// levelOutState is the ownship state after the full level-off to a.
func (ab *AltBands) levelOutState(own traffic.Ownship, t, a float64) (math.Vect3, math.Velocity) {
	return kinematics.VsLevelOut(own.S(), own.V(), t, ab.verticalRate, a, ab.verticalAccel)
}

// redBands sweeps the target altitudes and unions the red cells under det
// over the window [b, t].
func (ab *AltBands) redBands(set *math.IntervalSet, det detection.Detector, b, t float64,
	own traffic.Ownship, acs []traffic.State) {
	const tstep = 1.0
	set.Clear()
	for a := ab.min; a < ab.max; a += ab.step {
		in := math.EmptyInterval
		tl := ab.levelOutTime(own, a)
		if tl < 0 {
			// Can't make this level.
			in = math.Interval{Low: a - ab.step, Up: a + ab.step}
		} else if tl < t {
			so, vo := ab.levelOutState(own, tl, a)
			for _, ac := range acs {
				si := own.TrafficS(ac)
				vi := own.TrafficV(ac)
				sit := si.Linear(vi, tl)
				if det.Conflict(so, vo, sit, vi, math.Max(0, b-tl), math.Max(1, t-tl)) {
					in = math.Interval{Low: a - ab.step, Up: a + ab.step}
					break
				}
			}
		}
		set.Union(in)
	}
	if ab.verticalRate != 0 {
		los := ab.losSetDuringLevelOff(det, tstep, own, acs, b, t, set)
		set.UnionSet(&los)
	}
}

// losSetDuringLevelOff detects losses of separation during the level-off
// maneuver itself. The sweep is monotone: once a target above the ownship
// is in LoS during the constant-climb phase, all higher targets through
// the same sweep are too (and symmetrically below), which short-circuits
// the scan.
func (ab *AltBands) losSetDuringLevelOff(det detection.Detector, tstep float64, own traffic.Ownship,
	acs []traffic.State, b, t float64, conflictSet *math.IntervalSet) math.IntervalSet {
	var losSet math.IntervalSet
	goUp, goDown := true, true
	constUp, constDown := 0.0, 0.0
	z0 := own.S().Z
	for fl := ab.min; fl <= ab.max; fl += ab.step {
		if fl < z0 {
			continue
		}
		dt := math.Min(ab.levelOutTime(own, fl), t)
		for _, ac := range acs {
			vi := own.TrafficV(ac)
			si := own.TrafficS(ac)
			if !goUp || fl > ab.max || conflictSet.In(fl) {
				losSet.Union(math.Interval{Low: fl - ab.step, Up: fl + ab.step})
				continue
			}
			for tt := constUp; goUp && tt <= dt; tt += tstep {
				constVS := false
				sit := si.Linear(vi, tt)
				so, vo := ab.levelOutState(own, tt, fl)
				if math.AlmostEquals(vo.Z, ab.verticalRate) {
					constUp = tt
					constVS = true
				}
				if tt >= b && det.Violation(so, vo, sit, vi) {
					losSet.Union(math.Interval{Low: fl - ab.step, Up: fl + ab.step})
					if constVS {
						goUp = false
					}
				}
			}
		}
	}
	for fl := ab.max; fl >= ab.min; fl -= ab.step {
		if fl >= z0 {
			continue
		}
		dt := math.Min(ab.levelOutTime(own, fl), t)
		for _, ac := range acs {
			vi := own.TrafficV(ac)
			si := own.TrafficS(ac)
			if !goDown || fl < ab.min || conflictSet.In(fl) {
				losSet.Union(math.Interval{Low: fl - ab.step, Up: fl + ab.step})
				continue
			}
			for tt := constDown; goDown && tt <= dt; tt += tstep {
				constVS := false
				sit := si.Linear(vi, tt)
				so, vo := ab.levelOutState(own, tt, fl)
				if math.AlmostEquals(vo.Z, -ab.verticalRate) {
					constDown = tt
					constVS = true
				}
				if tt >= b && det.Violation(so, vo, sit, vi) {
					losSet.Union(math.Interval{Low: fl - ab.step, Up: fl + ab.step})
					if constVS {
						goDown = false
					}
				}
			}
		}
	}
	return losSet
}

// redSet combines the conflict detector's red cells over [b, t] with the
// recovery detector's over [0, b].
func (ab *AltBands) redSet(conflictDet, recoveryDet detection.Detector, b, t float64,
	own traffic.Ownship, acs []traffic.State) math.IntervalSet {
	var red math.IntervalSet
	ab.redBands(&red, conflictDet, b, t, own, acs)
	if recoveryDet != nil && b > 0 {
		var red2 math.IntervalSet
		ab.redBands(&red2, recoveryDet, 0, b, own, acs)
		red.UnionSet(&red2)
	}
	return red
}

func (ab *AltBands) noneBands(set *math.IntervalSet, conflictDet, recoveryDet detection.Detector,
	repac traffic.State, b, t float64, own traffic.Ownship, acs []traffic.State) {
	red := ab.redSet(conflictDet, recoveryDet, b, t, own, acs)
	*set = red.Complement(ab.min, ab.max)
}

func (ab *AltBands) anyRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, t float64, own traffic.Ownship, acs []traffic.State) bool {
	red := ab.redSet(conflictDet, recoveryDet, b, t, own, acs)
	return !red.IsEmpty()
}

func (ab *AltBands) allRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, t float64, own traffic.Ownship, acs []traffic.State) bool {
	var set math.IntervalSet
	ab.noneBands(&set, conflictDet, recoveryDet, repac, b, t, own, acs)
	return set.IsEmpty()
}

// compute colors the altitude axis directly from the red set against the
// full traffic list.
func (ab *AltBands) compute(b *RealBands, core *Core) {
	var redset math.IntervalSet
	if core.HasTraffic() {
		ab.redBands(&redset, core.Detector, 0, core.ActualAlertingTime(), core.Ownship, core.Traffic)
	}
	b.colorBands(&redset, false, core.ImplicitBands, false)
}
