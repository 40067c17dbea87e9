// pkg/detection/tcas.go

package detection

import (
	gomath "math"

	"wellclear/pkg/math"
	"wellclear/pkg/util"
)

// TCASTable holds the TCAS II resolution-advisory thresholds per
// sensitivity level. Levels 2 through 8 are keyed off ownship altitude;
// level 2 issues no RAs.
type TCASTable struct {
	TAU  [9]float64 // [s]
	DMOD [9]float64 // [m]
	ZTHR [9]float64 // [m]
	HMD  [9]float64 // [m]
}

func DefaultTCASTable() TCASTable {
	var t TCASTable
	ft := func(v float64) float64 { return math.FromUnitOr("ft", v) }
	nmi := func(v float64) float64 { return math.FromUnitOr("nmi", v) }
	t.TAU = [9]float64{0, 0, 0, 15, 20, 25, 30, 35, 35}
	t.DMOD = [9]float64{0, 0, 0, nmi(0.2), nmi(0.35), nmi(0.55), nmi(0.8), nmi(1.1), nmi(1.1)}
	t.ZTHR = [9]float64{0, 0, 0, ft(600), ft(600), ft(600), ft(600), ft(700), ft(800)}
	t.HMD = t.DMOD
	return t
}

// SensitivityLevel maps ownship altitude (internal units) to the TCAS
// sensitivity level.
func SensitivityLevel(alt float64) int {
	altFt := math.ToUnitOr("ft", alt)
	switch {
	case altFt < 1000:
		return 2
	case altFt < 2350:
		return 3
	case altFt < 5000:
		return 4
	case altFt < 10000:
		return 5
	case altFt < 20000:
		return 6
	case altFt < 42000:
		return 7
	default:
		return 8
	}
}

// SetTAU sets the tau threshold uniformly across all RA levels; the
// uniform setters are how the alerting presets configure per-tier tables.
func (t *TCASTable) SetTAU(val float64) {
	for i := 3; i < len(t.TAU); i++ {
		t.TAU[i] = val
	}
}

func (t *TCASTable) SetDMOD(val float64) {
	for i := 3; i < len(t.DMOD); i++ {
		t.DMOD[i] = val
	}
}

func (t *TCASTable) SetZTHR(val float64) {
	for i := 3; i < len(t.ZTHR); i++ {
		t.ZTHR[i] = val
	}
}

func (t *TCASTable) SetHMD(val float64) {
	for i := 3; i < len(t.HMD); i++ {
		t.HMD[i] = val
	}
}

// TCAS3D is the TCAS II RA detector: thresholds are selected by ownship
// altitude through the sensitivity-level table, then applied to the same
// tau-modulated geometry as the well-clear volume with the RA HMD bound.
type TCAS3D struct {
	Table TCASTable
	id    string
}

func NewTCAS3D() *TCAS3D {
	return &TCAS3D{Table: DefaultTCASTable()}
}

func NewTCAS3DWithTable(table TCASTable) *TCAS3D {
	return &TCAS3D{Table: table}
}

func (tc *TCAS3D) thresholds(ownAlt float64) (tau, dmod, zthr, hmd float64) {
	sl := SensitivityLevel(ownAlt)
	return tc.Table.TAU[sl], tc.Table.DMOD[sl], tc.Table.ZTHR[sl], tc.Table.HMD[sl]
}

func (tc *TCAS3D) Violation(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) bool {
	if invalidInputs(so, vo, si, vi) {
		return false
	}
	tau, dmod, zthr, hmd := tc.thresholds(so.Z)
	if dmod == 0 {
		return false
	}
	s := so.Sub(si)
	v := vo.Sub(vi)
	s2, v2 := s.Vect2(), v.Vect2()
	horiz := s2.Norm() <= dmod
	if !horiz && Dcpa(s2, v2) <= hmd {
		tvar := taumod(dmod, s2, v2)
		horiz = 0 <= tvar && tvar <= tau
	}
	if !horiz {
		return false
	}
	if gomath.Abs(s.Z) <= zthr {
		return true
	}
	t := Tcoa(s.Z, v.Z)
	return t >= 0 && t <= tau
}

func (tc *TCAS3D) ConflictDetection(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) ConflictData {
	if invalidInputs(so, vo, si, vi) || b >= t {
		return NoConflict()
	}
	tau, dmod, zthr, hmd := tc.thresholds(so.Z)
	if dmod == 0 {
		return NoConflict()
	}
	s := so.Sub(si)
	v := vo.Sub(vi)
	vld := verticalWCVInterval(zthr, tau, b, t, s.Z, v.Z)
	if vld.TimeIn > vld.TimeOut {
		return NoConflict()
	}
	step := v.Vect2().ScalAdd(vld.TimeIn, s.Vect2())
	var ld LossData
	if math.AlmostEquals(vld.TimeIn, vld.TimeOut) {
		horiz := step.Norm() <= dmod
		if !horiz && Dcpa(step, v.Vect2()) <= hmd {
			tvar := taumod(dmod, step, v.Vect2())
			horiz = 0 <= tvar && tvar <= tau
		}
		if !horiz {
			return NoConflict()
		}
		ld = MakeLossData(vld.TimeIn, vld.TimeOut)
	} else {
		hld := horizontalTauInterval(vld.TimeOut-vld.TimeIn, step, v.Vect2(), dmod, tau, hmd)
		if hld.TimeIn > hld.TimeOut {
			return NoConflict()
		}
		ld = MakeLossData(hld.TimeIn+vld.TimeIn, hld.TimeOut+vld.TimeIn)
	}
	if !ld.Conflict() {
		return MakeConflictData(ld, gomath.Inf(1), gomath.Inf(1))
	}
	tcrit := (ld.TimeIn + ld.TimeOut) / 2
	dcrit := s.Linear(v, tcrit).CylNorm(dmod, zthr)
	return MakeConflictData(ld, tcrit, dcrit)
}

func (tc *TCAS3D) Conflict(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) bool {
	return tc.ConflictDetection(so, vo, si, vi, b, t).Conflict()
}

func (tc *TCAS3D) Copy() Detector {
	c := *tc
	return &c
}

func (tc *TCAS3D) TypeName() string {
	return "TCAS3D"
}

func (tc *TCAS3D) Identifier() string {
	return tc.id
}

func (tc *TCAS3D) SetIdentifier(id string) {
	tc.id = id
}

func (tc *TCAS3D) Equals(d Detector) bool {
	o, ok := d.(*TCAS3D)
	return ok && *o == *tc
}

func (tc *TCAS3D) Params() *util.Params {
	p := util.NewParams()
	// RA levels 3..8; level is part of the key.
	for sl := 3; sl <= 8; sl++ {
		p.SetInternal(fmtKey("TAU", sl), tc.Table.TAU[sl], "s")
		p.SetInternal(fmtKey("DMOD", sl), tc.Table.DMOD[sl], "nmi")
		p.SetInternal(fmtKey("ZTHR", sl), tc.Table.ZTHR[sl], "ft")
		p.SetInternal(fmtKey("HMD", sl), tc.Table.HMD[sl], "nmi")
	}
	p.SetString("id", tc.id)
	return p
}

func (tc *TCAS3D) SetParams(p *util.Params) {
	for sl := 3; sl <= 8; sl++ {
		if k := fmtKey("TAU", sl); p.Contains(k) {
			tc.Table.TAU[sl] = p.Value(k)
		}
		if k := fmtKey("DMOD", sl); p.Contains(k) {
			tc.Table.DMOD[sl] = p.Value(k)
		}
		if k := fmtKey("ZTHR", sl); p.Contains(k) {
			tc.Table.ZTHR[sl] = p.Value(k)
		}
		if k := fmtKey("HMD", sl); p.Contains(k) {
			tc.Table.HMD[sl] = p.Value(k)
		}
	}
	if p.Contains("id") {
		tc.id = p.String("id")
	}
}

func fmtKey(name string, sl int) string {
	return name + "_" + string(rune('0'+sl))
}
