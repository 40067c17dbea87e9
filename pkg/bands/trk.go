// pkg/bands/trk.go

package bands

import (
	gomath "math"

	"wellclear/pkg/detection"
	"wellclear/pkg/kinematics"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// TrkBands computes conflict bands over the track axis. The axis spans
// [0, 2pi) and wraps; cells are turn increments at the configured turn
// rate (or the rate implied by the bank angle when the turn rate is 0 or
// the ownship's ground speed is at most 1 knot).
type TrkBands struct {
	RealBands
	turnRate  float64
	bankAngle float64 // used when turnRate is 0 or ground speed is at most 1 knot
}

func NewTrkBands(step float64, recovery bool, turnRate, bankAngle float64) *TrkBands {
	t := &TrkBands{turnRate: turnRate, bankAngle: bankAngle}
	t.RealBands = newRealBands(0, 2*gomath.Pi, step, recovery, t)
	return t
}

func (t *TrkBands) SetTurnRate(val float64) {
	if val >= 0 && val != t.turnRate {
		t.turnRate = val
		t.Reset()
	}
}

func (t *TrkBands) SetBankAngle(val float64) {
	if val >= 0 && val != t.bankAngle {
		t.bankAngle = val
		t.Reset()
	}
}

func (t *TrkBands) TurnRate() float64  { return t.turnRate }
func (t *TrkBands) BankAngle() float64 { return t.bankAngle }

const minTurnGs = 1 * math.KnotsToMps

// omega returns the turn rate used for the ownship's current speed.
func (t *TrkBands) omega(own traffic.Ownship) float64 {
	gso := math.Gs(own.Vel)
	if t.turnRate == 0 || gso <= minTurnGs {
		return kinematics.TurnRate(gso, t.bankAngle)
	}
	return t.turnRate
}

func (t *TrkBands) trajectory(own traffic.Ownship, time float64, dir bool) (math.Vect3, math.Velocity) {
	omega := t.omega(own)
	if !dir {
		omega = -omega
	}
	return kinematics.TurnOmega(own.S(), own.V(), time, omega)
}

// AlmostNear overrides the generic proximity test to wrap track values.
func (t *TrkBands) AlmostNear(core *Core, val, thr float64) bool {
	val = math.To2Pi(val)
	if !core.HasOwnship() || val < t.min || val > t.max {
		return false
	}
	for i := 0; i < t.Length(core); i++ {
		if t.Region(core, i) == Near {
			ii := t.Interval(core, i)
			if !ii.InOO(val) &&
				(gomath.Abs(math.ToPi(ii.Low-val)) < thr ||
					gomath.Abs(math.ToPi(ii.Up-val)) < thr) {
				return true
			}
		}
	}
	return false
}

// extent returns the cell count and duration of one track step; ok is
// false for a degenerate geometry (no turn possible).
func (t *TrkBands) extent(own traffic.Ownship) (maxn int, tstep float64, ok bool) {
	omega := t.omega(own)
	if omega == 0 || gomath.IsInf(omega, 0) || gomath.IsNaN(omega) {
		return 0, 0, false
	}
	maxn = int(gomath.Round(gomath.Pi / t.step))
	return maxn, t.step / omega, true
}

func (t *TrkBands) anyRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, tt float64, own traffic.Ownship, acs []traffic.State) bool {
	maxn, tstep, ok := t.extent(own)
	if !ok {
		return false
	}
	epsh := 0
	if repac.IsValid() {
		epsh = EpsilonH(own, repac)
	}
	return anyIntRed(t.trajectory, conflictDet, recoveryDet, tstep, b, tt, 0, b,
		maxn, maxn, own, acs, repac, epsh, 0, 0)
}

func (t *TrkBands) allRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, tt float64, own traffic.Ownship, acs []traffic.State) bool {
	maxn, tstep, ok := t.extent(own)
	if !ok {
		return false
	}
	epsh := 0
	if repac.IsValid() {
		epsh = EpsilonH(own, repac)
	}
	return allIntRed(t.trajectory, conflictDet, recoveryDet, tstep, b, tt, 0, b,
		maxn, maxn, own, acs, repac, epsh, 0, 0)
}

func (t *TrkBands) noneBands(set *math.IntervalSet, conflictDet, recoveryDet detection.Detector,
	repac traffic.State, b, tt float64, own traffic.Ownship, acs []traffic.State) {
	maxn, tstep, ok := t.extent(own)
	if !ok {
		set.Clear()
		set.AlmostAdd(t.min, t.max)
		return
	}
	epsh := 0
	if repac.IsValid() {
		epsh = EpsilonH(own, repac)
	}
	trkint := kinematicBandsCombine(t.trajectory, conflictDet, recoveryDet, tstep, b, tt, 0, b,
		maxn, maxn, own, acs, repac, epsh, 0)
	toIntervalSet02Pi(set, trkint, gomath.Pi/float64(maxn), math.Trk(own.V()))
}

func (t *TrkBands) compute(b *RealBands, core *Core) {
	b.computeGeneric(core)
}
