// pkg/bands/integer.go

package bands

import (
	gomath "math"

	"wellclear/pkg/detection"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

const gomathPi = gomath.Pi

func mathCeil(x float64) int {
	return int(gomath.Ceil(x))
}

func mathFloor(x float64) int {
	return int(gomath.Floor(x))
}

// Trajectory produces the ownship's projected state after flying the
// maneuver for the given time; dir selects the right/up (true) or
// left/down (false) direction of the axis.
type Trajectory func(own traffic.Ownship, time float64, dir bool) (math.Vect3, math.Velocity)

// The integer band engine discretizes a maneuver axis into cells of
// duration tstep and colors them by running the conflict detector (and,
// during recovery, a second detector over its own window) against every
// intruder along the maneuver trajectory. Cells are produced in strictly
// increasing index order per direction; the left list is then negated and
// the right list appended to it, giving one ordered list over [-maxl, maxr].

// cdFutureTraj detects a conflict with ac when the ownship flies the
// maneuver up to time tsk and goes straight afterwards; the maneuver must
// complete before conflict is counted.
func cdFutureTraj(traj Trajectory, det detection.Detector, b, t float64, trajdir bool, tsk float64,
	own traffic.Ownship, ac traffic.State) bool {
	if tsk > t || b > t {
		return false
	}
	sot, vot := traj(own, tsk, trajdir)
	si := own.TrafficS(ac)
	vi := own.TrafficV(ac)
	sit := vi.ScalAdd(tsk, si)
	if b > tsk {
		return det.Conflict(sot, vot, sit, vi, b-tsk, t-tsk)
	}
	return det.Conflict(sot, vot, sit, vi, 0, t-tsk)
}

func anyConflictAircraft(traj Trajectory, det detection.Detector, b, t float64, trajdir bool, tsk float64,
	own traffic.Ownship, acs []traffic.State) bool {
	for _, ac := range acs {
		if cdFutureTraj(traj, det, b, t, trajdir, tsk, own, ac) {
			return true
		}
	}
	return false
}

// anyLosAircraft reports an already-in-progress loss of separation at
// maneuver time tsk.
func anyLosAircraft(traj Trajectory, det detection.Detector, trajdir bool, tsk float64,
	own traffic.Ownship, acs []traffic.State) bool {
	for _, ac := range acs {
		sot, vot := traj(own, tsk, trajdir)
		si := own.TrafficS(ac)
		vi := own.TrafficV(ac)
		sit := vi.ScalAdd(tsk, si)
		if det.Violation(sot, vot, sit, vi) {
			return true
		}
	}
	return false
}

func anyConflict(traj Trajectory, conflictDet, recoveryDet detection.Detector, b, t, b2, t2 float64,
	trajdir bool, tsk float64, own traffic.Ownship, acs []traffic.State) bool {
	return anyConflictAircraft(traj, conflictDet, b, t, trajdir, tsk, own, acs) ||
		(recoveryDet != nil &&
			anyConflictAircraft(traj, recoveryDet, b2, t2, trajdir, tsk, own, acs))
}

func firstLosStep(traj Trajectory, det detection.Detector, tstep float64, trajdir bool,
	min, max int, own traffic.Ownship, acs []traffic.State) int {
	for k := min; k <= max; k++ {
		if anyLosAircraft(traj, det, trajdir, float64(k)*tstep, own, acs) {
			return k
		}
	}
	return -1
}

// firstLosSearchIndex bounds how far the outward search can usefully go:
// the first step at which the current trajectory is already in loss of
// separation under either detector.
func firstLosSearchIndex(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, trajdir bool, max int, own traffic.Ownship, acs []traffic.State) int {
	firstLosK := mathCeil(b / tstep)               // first k such that k*tstep >= b
	firstLosN := math.Min(mathFloor(t/tstep), max) // last k <= max such that k*tstep <= t
	firstLosK2 := mathCeil(b2 / tstep)
	firstLosN2 := math.Min(mathFloor(t2/tstep), max)
	firstLosInit := -1
	if recoveryDet != nil {
		firstLosInit = firstLosStep(traj, recoveryDet, tstep, trajdir, firstLosK2, firstLosN2, own, acs)
	}
	firstLos := firstLosStep(traj, conflictDet, tstep, trajdir, firstLosK, firstLosN, own, acs)
	losInitIndex := max + 1
	if firstLosInit >= 0 {
		losInitIndex = firstLosInit
	}
	losIndex := max + 1
	if firstLos >= 0 {
		losIndex = firstLos
	}
	return math.Min(losInitIndex, losIndex)
}

// linvel is the average velocity over cell k, used by the repulsive
// checks to approximate the instantaneous maneuver velocity.
func linvel(traj Trajectory, own traffic.Ownship, tstep float64, trajdir bool, k int) math.Vect3 {
	s1, _ := traj(own, float64(k+1)*tstep, trajdir)
	s0, _ := traj(own, float64(k)*tstep, trajdir)
	return s1.Sub(s0).Scal(1 / tstep)
}

// repulsiveAt checks the horizontal repulsive criterion at the velocity
// transitions at step k of the maneuver (and, for k == 1, at its start).
func repulsiveAt(traj Trajectory, tstep float64, trajdir bool, k int, own traffic.Ownship,
	repac traffic.State, epsh int) bool {
	// repac is valid and k >= 0
	if k == 0 {
		return true
	}
	so3, vo3 := traj(own, 0, trajdir)
	so := so3.Vect2()
	vo := vo3.Vect2()
	si := own.TrafficS(repac).Vect2()
	vi := own.TrafficV(repac).Vect2()
	rep := true
	if k == 1 {
		rep = horizontalRepulsive(so.Sub(si), vo, vi, linvel(traj, own, tstep, trajdir, 0).Vect2(), epsh)
	}
	if rep {
		sot3, vot3 := traj(own, float64(k)*tstep, trajdir)
		sot := sot3.Vect2()
		vot := vot3.Vect2()
		sit := vi.ScalAdd(float64(k)*tstep, si)
		st := sot.Sub(sit)
		vop := linvel(traj, own, tstep, trajdir, k-1).Vect2()
		vok := linvel(traj, own, tstep, trajdir, k).Vect2()
		return horizontalRepulsive(st, vop, vi, vot, epsh) &&
			horizontalRepulsive(st, vot, vi, vok, epsh) &&
			horizontalRepulsive(st, vop, vi, vok, epsh)
	}
	return false
}

func firstNonrepulsiveStep(traj Trajectory, tstep float64, trajdir bool, max int, own traffic.Ownship,
	repac traffic.State, epsh int) int {
	for k := 0; k <= max; k++ {
		if !repulsiveAt(traj, tstep, trajdir, k, own, repac, epsh) {
			return k
		}
	}
	return -1
}

func vertRepulAt(traj Trajectory, tstep float64, trajdir bool, k int, own traffic.Ownship,
	repac traffic.State, epsv int) bool {
	// repac is valid and k >= 0
	if k == 0 {
		return true
	}
	so, vo := traj(own, 0, trajdir)
	si := own.TrafficS(repac)
	vi := own.TrafficV(repac)
	rep := true
	if k == 1 {
		rep = verticalRepulsive(so.Sub(si), vo, vi, linvel(traj, own, tstep, trajdir, 0), epsv)
	}
	if rep {
		sot, vot := traj(own, float64(k)*tstep, trajdir)
		sit := vi.ScalAdd(float64(k)*tstep, si)
		st := sot.Sub(sit)
		vop := linvel(traj, own, tstep, trajdir, k-1)
		vok := linvel(traj, own, tstep, trajdir, k)
		return verticalRepulsive(st, vop, vi, vot, epsv) &&
			verticalRepulsive(st, vot, vi, vok, epsv) &&
			verticalRepulsive(st, vop, vi, vok, epsv)
	}
	return false
}

func firstNonvertRepulStep(traj Trajectory, tstep float64, trajdir bool, max int, own traffic.Ownship,
	repac traffic.State, epsv int) int {
	for k := 0; k <= max; k++ {
		if !vertRepulAt(traj, tstep, trajdir, k, own, repac, epsv) {
			return k
		}
	}
	return -1
}

// bandsSearchIndex is the number of cells in the chosen direction that
// can be colored at all: the search stops at the first loss of separation
// or the first violation of an active repulsive criterion.
func bandsSearchIndex(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, trajdir bool, max int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv int) int {
	usehcrit := repac.IsValid() && epsh != 0
	usevcrit := repac.IsValid() && epsv != 0
	firstLos := firstLosSearchIndex(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, trajdir, max, own, acs)
	firstNonHRep := firstLos
	if usehcrit && firstLos != 0 {
		firstNonHRep = firstNonrepulsiveStep(traj, tstep, trajdir, firstLos-1, own, repac, epsh)
	}
	firstProbHcrit := max + 1
	if firstNonHRep >= 0 {
		firstProbHcrit = firstNonHRep
	}
	firstProbHL := math.Min(firstLos, firstProbHcrit)
	firstNonVRep := firstProbHL
	if usevcrit && firstProbHL != 0 {
		firstNonVRep = firstNonvertRepulStep(traj, tstep, trajdir, firstProbHL-1, own, repac, epsv)
	}
	firstProbVcrit := max + 1
	if firstNonVRep >= 0 {
		firstProbVcrit = firstNonVRep
	}
	return math.Min(firstProbHL, firstProbVcrit)
}

// trajConflictOnlyBands colors cells 0..max green/red by the per-cell
// conflict test, emitting the green runs as integer intervals.
func trajConflictOnlyBands(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, trajdir bool, max int, own traffic.Ownship, acs []traffic.State) []math.Integerval {
	var l []math.Integerval
	first := -1
	for k := 0; k <= max; k++ {
		tsk := tstep * float64(k)
		conflict := anyConflict(traj, conflictDet, recoveryDet, b, t, b2, t2, trajdir, tsk, own, acs)
		if first >= 0 && !conflict {
			continue
		} else if first >= 0 {
			l = append(l, math.Integerval{Lb: first, Ub: k - 1})
			first = -1
		} else if !conflict {
			first = k
		}
	}
	if first >= 0 {
		l = append(l, math.Integerval{Lb: first, Ub: max})
	}
	return l
}

func kinematicBands(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, trajdir bool, max int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv int) []math.Integerval {
	bsi := bandsSearchIndex(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, trajdir, max, own, acs, repac, epsh, epsv)
	if bsi == 0 {
		return nil
	}
	return trajConflictOnlyBands(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, trajdir, bsi-1, own, acs)
}

// negIntervals negates, flips, and reverses a list of integer intervals.
func negIntervals(l []math.Integerval) []math.Integerval {
	out := make([]math.Integerval, len(l))
	for i, iv := range l {
		out[len(l)-1-i] = math.Integerval{Lb: -iv.Ub, Ub: -iv.Lb}
	}
	return out
}

// appendIntband appends r to l, merging intervals that abut across zero.
func appendIntband(l, r []math.Integerval) []math.Integerval {
	if len(l) > 0 && len(r) > 0 && r[0].Lb-l[len(l)-1].Ub <= 1 {
		l[len(l)-1].Ub = r[0].Ub
		r = r[1:]
	}
	return append(l, r...)
}

// kinematicBandsCombine computes the ordered list of green integer
// intervals over [-maxl, maxr].
func kinematicBandsCombine(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, maxl, maxr int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv int) []math.Integerval {
	l := kinematicBands(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, false, maxl, own, acs, repac, epsh, epsv)
	r := kinematicBands(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, true, maxr, own, acs, repac, epsh, epsv)
	return appendIntband(negIntervals(l), r)
}

// firstGreen returns the first conflict-free cell in the chosen
// direction, or -1 if a loss of separation or criterion violation is hit
// first.
func firstGreen(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, trajdir bool, max int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv int) int {
	usehcrit := repac.IsValid() && epsh != 0
	usevcrit := repac.IsValid() && epsv != 0
	for k := 0; k <= max; k++ {
		tsk := tstep * float64(k)
		if (tsk >= b && tsk <= t && anyLosAircraft(traj, conflictDet, trajdir, tsk, own, acs)) ||
			(recoveryDet != nil && tsk >= b2 && tsk <= t2 &&
				anyLosAircraft(traj, recoveryDet, trajdir, tsk, own, acs)) ||
			(usehcrit && !repulsiveAt(traj, tstep, trajdir, k, own, repac, epsh)) ||
			(usevcrit && !vertRepulAt(traj, tstep, trajdir, k, own, repac, epsv)) {
			return -1
		} else if !anyConflictAircraft(traj, conflictDet, b, t, trajdir, tsk, own, acs) &&
			!(recoveryDet != nil &&
				anyConflictAircraft(traj, recoveryDet, b2, t2, trajdir, tsk, own, acs)) {
			return k
		}
	}
	return -1
}

// allIntRed reports that no green cell exists in the directions selected
// by dir (<0 left only, >0 right only, 0 both).
func allIntRed(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, maxl, maxr int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv, dir int) bool {
	leftans := dir > 0 || firstGreen(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, false, maxl, own, acs, repac, epsh, epsv) < 0
	rightans := dir < 0 || firstGreen(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, true, maxr, own, acs, repac, epsh, epsv) < 0
	return leftans && rightans
}

func anyConflictStep(traj Trajectory, det detection.Detector, tstep, b, t float64, trajdir bool, max int,
	own traffic.Ownship, acs []traffic.State) bool {
	for k := 0; k <= max; k++ {
		if anyConflictAircraft(traj, det, b, t, trajdir, tstep*float64(k), own, acs) {
			return true
		}
	}
	return false
}

// redBandExist reports any red cell in the chosen direction.
func redBandExist(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, trajdir bool, max int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv int) bool {
	usehcrit := repac.IsValid() && epsh != 0
	usevcrit := repac.IsValid() && epsv != 0
	return (usehcrit && firstNonrepulsiveStep(traj, tstep, trajdir, max, own, repac, epsh) >= 0) ||
		(usevcrit && firstNonvertRepulStep(traj, tstep, trajdir, max, own, repac, epsv) >= 0) ||
		anyConflictStep(traj, conflictDet, tstep, b, t, trajdir, max, own, acs) ||
		(recoveryDet != nil && anyConflictStep(traj, recoveryDet, tstep, b2, t2, trajdir, max, own, acs))
}

// anyIntRed reports any red cell in the directions selected by dir.
func anyIntRed(traj Trajectory, conflictDet, recoveryDet detection.Detector, tstep float64,
	b, t, b2, t2 float64, maxl, maxr int, own traffic.Ownship, acs []traffic.State,
	repac traffic.State, epsh, epsv, dir int) bool {
	leftred := dir <= 0 && redBandExist(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, false, maxl, own, acs, repac, epsh, epsv)
	rightred := dir >= 0 && redBandExist(traj, conflictDet, recoveryDet, tstep, b, t, b2, t2, true, maxr, own, acs, repac, epsh, epsv)
	return leftred || rightred
}

// toIntervalSet scales the integer intervals by scal, offsets them by
// add, and clips them to [min, max].
func toIntervalSet(set *math.IntervalSet, l []math.Integerval, scal, add, min, max float64) {
	set.Clear()
	for _, iv := range l {
		lb := scal*float64(iv.Lb) + add
		ub := scal*float64(iv.Ub) + add
		if min <= ub && lb <= max {
			set.AlmostAdd(math.Max(min, lb), math.Min(max, ub))
		}
	}
}

// toIntervalSet02Pi is toIntervalSet for the track axis, wrapping the
// scaled intervals modulo 2pi.
func toIntervalSet02Pi(set *math.IntervalSet, l []math.Integerval, scal, add float64) {
	set.Clear()
	twopi := 2 * gomathPi
	for _, iv := range l {
		lb := scal*float64(iv.Lb) + add
		ub := scal*float64(iv.Ub) + add
		if 0 <= lb && ub <= twopi {
			set.AlmostAdd(lb, ub)
		} else if ub < 0 || lb > twopi {
			set.AlmostAdd(math.To2Pi(lb), math.To2Pi(ub))
		} else {
			if lb < 0 {
				set.AlmostAdd(math.To2Pi(lb), twopi)
				lb = 0
			}
			if ub > twopi {
				set.AlmostAdd(0, math.To2Pi(ub))
				ub = twopi
			}
			set.AlmostAdd(lb, ub)
		}
	}
}
