// pkg/bands/real.go

package bands

import (
	"fmt"
	"strings"

	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// axisImpl is the per-axis half of a band computation: the trajectory
// generator composed with the integer engine, parameterized by the axis's
// rate/acceleration configuration.
type axisImpl interface {
	// noneBands computes the conflict-free intervals of the axis under
	// conflictDet over [b, t] (and recoveryDet over [0, b] when present).
	noneBands(set *math.IntervalSet, conflictDet, recoveryDet detection.Detector,
		repac traffic.State, b, t float64, own traffic.Ownship, acs []traffic.State)
	// anyRed reports whether any cell of the axis is red.
	anyRed(conflictDet, recoveryDet detection.Detector,
		repac traffic.State, b, t float64, own traffic.Ownship, acs []traffic.State) bool
	// allRed reports whether every cell of the axis is red.
	allRed(conflictDet, recoveryDet detection.Detector,
		repac traffic.State, b, t float64, own traffic.Ownship, acs []traffic.State) bool
	// compute fills the band outputs for the axis.
	compute(b *RealBands, core *Core)
}

// RealBands holds one axis's configuration and cached outputs. Bands are
// recomputed lazily: any configuration change marks the cache outdated
// and the next query recomputes.
type RealBands struct {
	outdated bool

	intervals []math.Interval
	regions   []Region
	// recoveryTime = -1 means solid red; 0 means recovery bands were not
	// needed; positive is the time at which the escape becomes available.
	recoveryTime float64

	min, max, step float64
	doRecovery     bool

	impl axisImpl
}

func newRealBands(min, max, step float64, recovery bool, impl axisImpl) RealBands {
	return RealBands{
		outdated:   true,
		min:        min,
		max:        max,
		step:       step,
		doRecovery: recovery,
		impl:       impl,
	}
}

func (b *RealBands) Min() float64  { return b.min }
func (b *RealBands) Max() float64  { return b.max }
func (b *RealBands) Step() float64 { return b.step }

func (b *RealBands) IsEnabledRecovery() bool { return b.doRecovery }

func (b *RealBands) SetMin(val float64) {
	if val != b.min {
		b.min = val
		b.Reset()
	}
}

func (b *RealBands) SetMax(val float64) {
	if val != b.max {
		b.max = val
		b.Reset()
	}
}

func (b *RealBands) SetStep(val float64) {
	if val > 0 && val != b.step {
		b.step = val
		b.Reset()
	}
}

func (b *RealBands) SetRecovery(flag bool) {
	if flag != b.doRecovery {
		b.doRecovery = flag
		b.Reset()
	}
}

// Reset invalidates the cached outputs.
func (b *RealBands) Reset() {
	b.outdated = true
	b.intervals = nil
	b.regions = nil
	b.recoveryTime = 0
}

func (b *RealBands) recompute(core *Core) {
	if core.HasOwnship() && b.outdated {
		b.impl.compute(b, core)
		b.outdated = false
	}
}

// ForceCompute discards the cache and recomputes.
func (b *RealBands) ForceCompute(core *Core) {
	b.Reset()
	b.recompute(core)
}

func (b *RealBands) RecoveryTime(core *Core) float64 {
	b.recompute(core)
	return b.recoveryTime
}

// Length returns the number of bands, or -1 with no ownship.
func (b *RealBands) Length(core *Core) int {
	if !core.HasOwnship() {
		return -1
	}
	b.recompute(core)
	return len(b.intervals)
}

func (b *RealBands) Interval(core *Core, i int) math.Interval {
	if !core.HasOwnship() || i < 0 || i >= b.Length(core) {
		return math.EmptyInterval
	}
	return b.intervals[i]
}

func (b *RealBands) Region(core *Core, i int) Region {
	if !core.HasOwnship() || i < 0 || i >= b.Length(core) {
		return Unknown
	}
	return b.regions[i]
}

// RegionOf returns the region containing the value val.
func (b *RealBands) RegionOf(core *Core, val float64) Region {
	if !core.HasOwnship() || val < b.min || val > b.max {
		return Unknown
	}
	for i := 0; i < b.Length(core); i++ {
		if b.intervals[i].InCC(val) {
			return b.regions[i]
		}
	}
	if core.ImplicitBands {
		if b.recoveryTime > 0 {
			return Recovery
		}
		return None
	}
	return Unknown
}

// AlmostNear reports whether val is within thr of a NEAR band without
// being inside one.
func (b *RealBands) AlmostNear(core *Core, val, thr float64) bool {
	if !core.HasOwnship() || val < b.min || val > b.max {
		return false
	}
	for i := 0; i < b.Length(core); i++ {
		if b.regions[i] == Near {
			ii := b.intervals[i]
			if (ii.Low-thr < val && val <= ii.Low) ||
				(ii.Up <= val && val < ii.Up+thr) {
				return true
			}
		}
	}
	return false
}

// kinematicConflict reports whether the axis has any red cell against the
// single aircraft ac within time t.
func (b *RealBands) kinematicConflict(core *Core, repac traffic.State, t float64,
	own traffic.Ownship, ac traffic.State) bool {
	return b.impl.anyRed(core.Detector, nil, repac, 0, t, own, []traffic.State{ac})
}

// AlertingAircraft partitions the traffic into the preventive and
// corrective sets: corrective aircraft yield a conflict on the current
// trajectory within the alerting time; preventive aircraft don't, but
// some maneuver within the alerting time does conflict with them.
func (b *RealBands) AlertingAircraft(core *Core) (preventive, corrective []traffic.State) {
	a := core.ActualAlertingTime()
	for _, ac := range core.Traffic {
		det := core.CheckConflict(ac, 0, a)
		if det.Conflict() {
			corrective = append(corrective, ac)
		} else if b.kinematicConflict(core, traffic.Invalid, a, core.Ownship, ac) {
			preventive = append(preventive, ac)
		}
	}
	return
}

// AlertingAircraftNames is AlertingAircraft projected to identifiers, in
// traffic insertion order.
func (b *RealBands) AlertingAircraftNames(core *Core) (preventive, corrective []string) {
	pre, cor := b.AlertingAircraft(core)
	for _, ac := range pre {
		preventive = append(preventive, ac.ID)
	}
	for _, ac := range cor {
		corrective = append(corrective, ac.ID)
	}
	return
}

// colorBands converts the interval set into the complete, sorted band
// list over [min, max]. greenbands means the given set is the green set;
// nearonly limits output to conflict bands; recovery labels the
// complement bands RECOVERY instead of NONE.
func (b *RealBands) colorBands(bands *math.IntervalSet, greenbands, nearonly, recovery bool) {
	b.intervals = nil
	b.regions = nil
	complementRegion := None
	if recovery {
		complementRegion = Recovery
	}
	gapRegion, setRegion := Near, complementRegion
	if !greenbands {
		gapRegion, setRegion = complementRegion, Near
	}
	addBand := greenbands || !nearonly
	if bands.IsEmpty() {
		if addBand {
			b.intervals = append(b.intervals, math.Interval{Low: b.min, Up: b.max})
			b.regions = append(b.regions, gapRegion)
		}
		return
	}
	l := b.min
	for i := 0; i < bands.Size(); i++ {
		ii := bands.Interval(i)
		if math.AlmostLess(l, ii.Low) && addBand {
			b.intervals = append(b.intervals, math.Interval{Low: l, Up: ii.Low})
			b.regions = append(b.regions, gapRegion)
		}
		u := b.max
		if math.AlmostLess(ii.Up, b.max) {
			u = ii.Up
		}
		if !greenbands || !nearonly {
			b.intervals = append(b.intervals, math.Interval{Low: ii.Low, Up: u})
			b.regions = append(b.regions, setRegion)
		}
		l = u
	}
	if math.AlmostLess(l, b.max) && addBand {
		b.intervals = append(b.intervals, math.Interval{Low: l, Up: b.max})
		b.regions = append(b.regions, gapRegion)
	}
}

// computeNoneBands computes the nominal green set: the intersection of
// the green intervals against the preventive set over [0, alerting_time]
// with those against the corrective set over [0, lookahead_time]. The
// asymmetry of the two windows is intentional.
func (b *RealBands) computeNoneBands(set *math.IntervalSet, core *Core, repac traffic.State,
	preventive, corrective []traffic.State) {
	b.impl.noneBands(set, core.Detector, nil, repac, 0, core.ActualAlertingTime(), core.Ownship, preventive)
	var set2 math.IntervalSet
	b.impl.noneBands(&set2, core.Detector, nil, repac, 0, core.Lookahead, core.Ownship, corrective)
	set.AlmostIntersect(&set2)
}

// computeRecoveryBands runs when the nominal band is solid red: find the
// earliest onset time at which a green cell exists inside a protected
// recovery volume, shrinking the volume toward the NMAC floor if the
// collision-avoidance variant is enabled.
func (b *RealBands) computeRecoveryBands(set *math.IntervalSet, core *Core, alerting []traffic.State) {
	t := core.ActualMaxRecoveryTime()
	repac := traffic.Invalid
	if core.RecoveryCrit {
		repac = core.CriteriaAircraft()
	}
	nmac := detection.NewNMACCylinder()
	b.impl.noneBands(set, nmac, nil, repac, 0, t, core.Ownship, alerting)
	if set.IsEmpty() {
		// No way to escape without crossing the NMAC cylinder.
		return
	}
	cd3d := detection.NewCDCylinder(core.ActualMinHorizontalRecovery(), core.ActualMinVerticalRecovery())
	for cd3d.D > detection.NMACD || cd3d.H > detection.NMACH {
		b.impl.noneBands(set, cd3d, nil, repac, 0, t, core.Ownship, alerting)
		solidred := set.IsEmpty()
		if solidred && !core.CABands {
			return
		} else if !solidred {
			// Binary-search the first onset time with a green cell.
			pivotRed := 0.0
			pivotGreen := t + 1
			pivot := pivotGreen - 1
			for pivotGreen-pivotRed > 1 {
				b.impl.noneBands(set, core.Detector, cd3d, repac, pivot, t, core.Ownship, alerting)
				if set.IsEmpty() {
					pivotRed = pivot
				} else {
					pivotGreen = pivot
				}
				pivot = (pivotRed + pivotGreen) / 2
			}
			if pivotGreen <= t {
				b.recoveryTime = math.Min(t, pivotGreen+core.RecoveryStabilityTime)
			} else {
				b.recoveryTime = pivotRed
			}
			b.impl.noneBands(set, core.Detector, cd3d, repac, b.recoveryTime, t, core.Ownship, alerting)
			solidred = set.IsEmpty()
			if solidred {
				b.recoveryTime = -1
			}
			if !solidred || !core.CABands {
				return
			}
		}
		cd3d = detection.NewCDCylinder(cd3d.D*0.8, cd3d.H*0.8)
	}
}

// computeGeneric is the shared compute for the rate-based axes.
func (b *RealBands) computeGeneric(core *Core) {
	preventive, corrective := b.AlertingAircraft(core)
	alerting := append(append([]traffic.State(nil), preventive...), corrective...)
	var noneset math.IntervalSet
	if len(alerting) == 0 {
		noneset.AlmostAdd(b.min, b.max)
	} else {
		repac := traffic.Invalid
		if core.ConflictCrit {
			repac = core.CriteriaAircraft()
		}
		b.computeNoneBands(&noneset, core, repac, preventive, corrective)
		if noneset.IsEmpty() {
			b.recoveryTime = -1
			if b.doRecovery {
				b.computeRecoveryBands(&noneset, core, alerting)
			}
		}
	}
	b.colorBands(&noneset, true, core.ImplicitBands, b.recoveryTime > 0)
}

// SolidRed reports that the axis has no green cell at all under the given
// detectors and window.
func (b *RealBands) SolidRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	bt, t float64, own traffic.Ownship, acs []traffic.State) bool {
	var set math.IntervalSet
	b.impl.noneBands(&set, conflictDet, recoveryDet, repac, bt, t, own, acs)
	return set.IsEmpty()
}

// AllRed exposes the axis all-red test.
func (b *RealBands) AllRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	bt, t float64, own traffic.Ownship, acs []traffic.State) bool {
	return b.impl.allRed(conflictDet, recoveryDet, repac, bt, t, own, acs)
}

// AnyRed exposes the axis any-red test.
func (b *RealBands) AnyRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	bt, t float64, own traffic.Ownship, acs []traffic.State) bool {
	return b.impl.anyRed(conflictDet, recoveryDet, repac, bt, t, own, acs)
}

func (b *RealBands) String() string {
	var sb strings.Builder
	for i := range b.intervals {
		fmt.Fprintf(&sb, "%s %s\n", b.intervals[i], b.regions[i])
	}
	fmt.Fprintf(&sb, "Recovery time: %.4f [s]", b.recoveryTime)
	return sb.String()
}

// ToPVS renders the band intervals, regions, and recovery time as a PVS
// tuple.
func (b *RealBands) ToPVS(prec int) string {
	var sb strings.Builder
	sb.WriteString("((:")
	for i, iv := range b.intervals {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" " + iv.ToPVS(prec))
	}
	sb.WriteString(" :), (:")
	for i, r := range b.regions {
		if i > 0 {
			sb.WriteString(",")
		}
		switch r {
		case None, Near, Recovery:
			sb.WriteString(" " + r.String())
		default:
			sb.WriteString(" UNKNOWN")
		}
	}
	fmt.Fprintf(&sb, " :), %.*f)", prec, b.recoveryTime)
	return sb.String()
}
