// pkg/bands/vs.go

package bands

import (
	"wellclear/pkg/detection"
	"wellclear/pkg/kinematics"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// VsBands computes conflict bands over the vertical-speed axis: vertical
// speed changes at constant vertical acceleration, track and ground speed
// fixed.
type VsBands struct {
	RealBands
	verticalAccel float64
}

func NewVsBands(min, max, step float64, recovery bool, verticalAccel float64) *VsBands {
	v := &VsBands{verticalAccel: verticalAccel}
	v.RealBands = newRealBands(min, max, step, recovery, v)
	return v
}

func (v *VsBands) SetVerticalAcceleration(val float64) {
	if val >= 0 && val != v.verticalAccel {
		v.verticalAccel = val
		v.Reset()
	}
}

func (v *VsBands) VerticalAcceleration() float64 { return v.verticalAccel }

func (v *VsBands) trajectory(own traffic.Ownship, time float64, dir bool) (math.Vect3, math.Velocity) {
	a := v.verticalAccel
	if !dir {
		a = -a
	}
	return kinematics.VsAccel(own.S(), own.V(), time, a)
}

func (v *VsBands) extent(own traffic.Ownship) (maxdown, maxup int, tstep float64, ok bool) {
	if v.verticalAccel <= 0 || v.step <= 0 {
		return 0, 0, 0, false
	}
	vso := math.Vs(own.Vel)
	maxdown = math.Max(mathCeil((vso-v.min)/v.step), 0) + 1
	maxup = math.Max(mathCeil((v.max-vso)/v.step), 0) + 1
	return maxdown, maxup, v.step / v.verticalAccel, true
}

func (v *VsBands) anyRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, t float64, own traffic.Ownship, acs []traffic.State) bool {
	maxdown, maxup, tstep, ok := v.extent(own)
	if !ok {
		return false
	}
	epsv := 0
	if repac.IsValid() {
		epsv = EpsilonV(own, repac)
	}
	return anyIntRed(v.trajectory, conflictDet, recoveryDet, tstep, b, t, 0, b,
		maxdown, maxup, own, acs, repac, 0, epsv, 0)
}

func (v *VsBands) allRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, t float64, own traffic.Ownship, acs []traffic.State) bool {
	maxdown, maxup, tstep, ok := v.extent(own)
	if !ok {
		return false
	}
	epsv := 0
	if repac.IsValid() {
		epsv = EpsilonV(own, repac)
	}
	return allIntRed(v.trajectory, conflictDet, recoveryDet, tstep, b, t, 0, b,
		maxdown, maxup, own, acs, repac, 0, epsv, 0)
}

func (v *VsBands) noneBands(set *math.IntervalSet, conflictDet, recoveryDet detection.Detector,
	repac traffic.State, b, t float64, own traffic.Ownship, acs []traffic.State) {
	maxdown, maxup, tstep, ok := v.extent(own)
	if !ok {
		set.Clear()
		set.AlmostAdd(v.min, v.max)
		return
	}
	epsv := 0
	if repac.IsValid() {
		epsv = EpsilonV(own, repac)
	}
	vsint := kinematicBandsCombine(v.trajectory, conflictDet, recoveryDet, tstep, b, t, 0, b,
		maxdown, maxup, own, acs, repac, 0, epsv)
	toIntervalSet(set, vsint, v.step, math.Vs(own.V()), v.min, v.max)
}

func (v *VsBands) compute(b *RealBands, core *Core) {
	b.computeGeneric(core)
}
