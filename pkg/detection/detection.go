// pkg/detection/detection.go

package detection

import (
	"fmt"
	gomath "math"

	"wellclear/pkg/math"
	"wellclear/pkg/util"
)

// A Detector decides, for a straight-line ownship/intruder pair, whether
// the pair is in violation now and whether it comes into conflict over a
// time window. Positions and velocities are in the ownship's projected
// frame. A malformed query (invalid input vector) reports no conflict
// rather than an error.
type Detector interface {
	// Violation is the instantaneous predicate.
	Violation(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) bool
	// ConflictDetection returns the conflict window clipped to [b, t],
	// with the critical time and distance of the encounter.
	ConflictDetection(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) ConflictData
	// Conflict reports whether a conflict exists within [b, t].
	Conflict(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) bool

	// Copy returns a deep copy; detectors are never shared across owners.
	Copy() Detector
	// TypeName identifies the variant ("CDCylinder", "WCVTaumod", "TCAS3D").
	TypeName() string
	Identifier() string
	SetIdentifier(id string)
	Equals(d Detector) bool

	// Params/SetParams round-trip the construction parameters.
	Params() *util.Params
	SetParams(p *util.Params)
}

func invalidInputs(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) bool {
	return so.IsInvalid() || vo.IsInvalid() || si.IsInvalid() || vi.IsInvalid()
}

///////////////////////////////////////////////////////////////////////////
// LossData / ConflictData

// LossData is the time interval of loss of separation relative to the
// query time. TimeIn > TimeOut means no conflict; both times are clipped
// to the queried window [B, T].
type LossData struct {
	TimeIn, TimeOut float64
}

// NoLoss is the empty loss interval.
func NoLoss() LossData {
	return LossData{TimeIn: gomath.Inf(1), TimeOut: gomath.Inf(-1)}
}

// MakeLossData snaps almost-equal entry/exit times together to suppress
// zero-length conflicts born of numerical coincidence.
func MakeLossData(tin, tout float64) LossData {
	if math.AlmostEquals(tin, tout) {
		tin = tout
	}
	return LossData{TimeIn: tin, TimeOut: tout}
}

func (ld LossData) Conflict() bool {
	return ld.TimeIn < ld.TimeOut
}

// ConflictWithDuration reports a conflict lasting longer than thr seconds.
func (ld LossData) ConflictWithDuration(thr float64) bool {
	return ld.Conflict() && ld.TimeOut-ld.TimeIn > thr
}

func (ld LossData) String() string {
	return fmt.Sprintf("[time_in: %.2f, time_out: %.2f]", ld.TimeIn, ld.TimeOut)
}

// ConflictData extends LossData with the critical point of the encounter:
// the time of maximum severity and the cylindrical distance there (0 is
// most critical).
type ConflictData struct {
	LossData
	TimeCrit, DistCrit float64
}

func NoConflict() ConflictData {
	return ConflictData{LossData: NoLoss(), TimeCrit: gomath.Inf(1), DistCrit: gomath.Inf(1)}
}

func MakeConflictData(ld LossData, tcrit, dcrit float64) ConflictData {
	return ConflictData{LossData: ld, TimeCrit: tcrit, DistCrit: dcrit}
}

func (cd ConflictData) String() string {
	return fmt.Sprintf("LossData[%.2f, %.2f] time_crit=%.2f dist_crit=%.2f",
		cd.TimeIn, cd.TimeOut, cd.TimeCrit, cd.DistCrit)
}

///////////////////////////////////////////////////////////////////////////
// Horizontal geometry

// Delta is non-negative iff the relative horizontal motion penetrates a
// disk of radius d at some time.
func Delta(s, v math.Vect2, d float64) float64 {
	return math.Sq(d)*v.Sqv() - math.Sq(s.Det(v))
}

// ThetaD returns the entry (eps = -1) or exit (eps = +1) time of the
// relative motion through the disk of radius d. Requires Delta >= 0 and a
// nonzero relative speed.
func ThetaD(s, v math.Vect2, eps int, d float64) float64 {
	return math.Root(v.Sqv(), 2*s.Dot(v), s.Sqv()-math.Sq(d), eps)
}

// Tcpa is the time of horizontal closest approach, 0 for parallel tracks
// with equal speed.
func Tcpa(s, v math.Vect2) float64 {
	if math.AlmostEquals(v.Sqv(), 0) {
		return 0
	}
	return -s.Dot(v) / v.Sqv()
}

// Dcpa is the horizontal distance at closest approach.
func Dcpa(s, v math.Vect2) float64 {
	return v.ScalAdd(Tcpa(s, v), s).Norm()
}

// Tccpa is the (non-negative) time of closest approach used to attribute
// a critical point to an encounter.
func Tccpa(s math.Vect3, vo, vi math.Velocity) float64 {
	return math.Max(0, Tcpa(s.Vect2(), vo.Sub(vi).Vect2()))
}

///////////////////////////////////////////////////////////////////////////
// Vertical geometry

// ThetaH returns the entry (eps = -1) or exit (eps = +1) time of the
// relative vertical motion through the slab |z| <= h. Requires vz != 0.
func ThetaH(sz, vz float64, eps int, h float64) float64 {
	return (float64(eps)*math.Sign(vz)*h - sz) / vz
}

// Tcoa is the time to co-altitude, or -1 if the aircraft are not
// converging vertically.
func Tcoa(sz, vz float64) float64 {
	if sz*vz < 0 {
		return -sz / vz
	}
	return -1
}
