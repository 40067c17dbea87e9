// pkg/bands/gs.go

package bands

import (
	"wellclear/pkg/detection"
	"wellclear/pkg/kinematics"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

// GsBands computes conflict bands over the ground-speed axis: speed
// changes at constant horizontal acceleration, heading fixed.
type GsBands struct {
	RealBands
	horizontalAccel float64
}

func NewGsBands(min, max, step float64, recovery bool, horizontalAccel float64) *GsBands {
	g := &GsBands{horizontalAccel: horizontalAccel}
	g.RealBands = newRealBands(min, max, step, recovery, g)
	return g
}

func (g *GsBands) SetHorizontalAcceleration(val float64) {
	if val >= 0 && val != g.horizontalAccel {
		g.horizontalAccel = val
		g.Reset()
	}
}

func (g *GsBands) HorizontalAcceleration() float64 { return g.horizontalAccel }

func (g *GsBands) trajectory(own traffic.Ownship, time float64, dir bool) (math.Vect3, math.Velocity) {
	a := g.horizontalAccel
	if !dir {
		a = -a
	}
	return kinematics.GsAccel(own.S(), own.V(), time, a)
}

// extent returns the cell counts below/above the current ground speed.
func (g *GsBands) extent(own traffic.Ownship) (maxdown, maxup int, tstep float64, ok bool) {
	if g.horizontalAccel <= 0 || g.step <= 0 {
		return 0, 0, 0, false
	}
	gso := math.Gs(own.Vel)
	maxdown = math.Max(mathCeil((gso-g.min)/g.step), 0) + 1
	maxup = math.Max(mathCeil((g.max-gso)/g.step), 0) + 1
	return maxdown, maxup, g.step / g.horizontalAccel, true
}

func (g *GsBands) anyRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, t float64, own traffic.Ownship, acs []traffic.State) bool {
	maxdown, maxup, tstep, ok := g.extent(own)
	if !ok {
		return false
	}
	epsh := 0
	if repac.IsValid() {
		epsh = EpsilonH(own, repac)
	}
	return anyIntRed(g.trajectory, conflictDet, recoveryDet, tstep, b, t, 0, b,
		maxdown, maxup, own, acs, repac, epsh, 0, 0)
}

func (g *GsBands) allRed(conflictDet, recoveryDet detection.Detector, repac traffic.State,
	b, t float64, own traffic.Ownship, acs []traffic.State) bool {
	maxdown, maxup, tstep, ok := g.extent(own)
	if !ok {
		return false
	}
	epsh := 0
	if repac.IsValid() {
		epsh = EpsilonH(own, repac)
	}
	return allIntRed(g.trajectory, conflictDet, recoveryDet, tstep, b, t, 0, b,
		maxdown, maxup, own, acs, repac, epsh, 0, 0)
}

func (g *GsBands) noneBands(set *math.IntervalSet, conflictDet, recoveryDet detection.Detector,
	repac traffic.State, b, t float64, own traffic.Ownship, acs []traffic.State) {
	maxdown, maxup, tstep, ok := g.extent(own)
	if !ok {
		set.Clear()
		set.AlmostAdd(g.min, g.max)
		return
	}
	epsh := 0
	if repac.IsValid() {
		epsh = EpsilonH(own, repac)
	}
	gsint := kinematicBandsCombine(g.trajectory, conflictDet, recoveryDet, tstep, b, t, 0, b,
		maxdown, maxup, own, acs, repac, epsh, 0)
	toIntervalSet(set, gsint, g.step, math.Gs(own.V()), g.min, g.max)
}

func (g *GsBands) compute(b *RealBands, core *Core) {
	b.computeGeneric(core)
}
