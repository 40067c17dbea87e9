// pkg/detection/wcv.go

package detection

import (
	gomath "math"

	"wellclear/pkg/math"
	"wellclear/pkg/util"
)

// WCVTable holds the thresholds of the time-varying well-clear volume:
// horizontal distance DTHR, vertical distance ZTHR, modified-tau TTHR,
// and time-to-co-altitude TCOA.
type WCVTable struct {
	DTHR, ZTHR, TTHR, TCOA float64
}

// DefaultWCVTable returns the unbuffered SC-228 well-clear thresholds.
func DefaultWCVTable() WCVTable {
	return WCVTable{
		DTHR: math.FromUnitOr("ft", 4000),
		ZTHR: math.FromUnitOr("ft", 450),
		TTHR: 35,
		TCOA: 0,
	}
}

// BufferedWCVTable returns the buffered variant of the thresholds.
func BufferedWCVTable() WCVTable {
	return WCVTable{
		DTHR: math.FromUnitOr("nmi", 1.0),
		ZTHR: math.FromUnitOr("ft", 750),
		TTHR: 35,
		TCOA: 20,
	}
}

// WCVTaumod is the well-clear violation detector whose time variable is
// modified tau: (DTHR^2 - range^2) / range-rate scaled by range.
type WCVTaumod struct {
	Table WCVTable
	id    string
}

func NewWCVTaumod() *WCVTaumod {
	return &WCVTaumod{Table: DefaultWCVTable()}
}

func NewWCVTaumodWithTable(table WCVTable) *WCVTaumod {
	return &WCVTaumod{Table: table}
}

// taumod is the modified tau of the horizontal geometry, or -1 when the
// pair is not converging.
func taumod(dthr float64, s, v math.Vect2) float64 {
	sdotv := s.Dot(v)
	if sdotv < 0 {
		return (math.Sq(dthr) - s.Sqv()) / sdotv
	}
	return -1
}

// horizontalWCV is the instantaneous horizontal well-clear predicate.
func horizontalWCV(dthr, tthr float64, s, v math.Vect2) bool {
	if s.Norm() <= dthr {
		return true
	}
	if Dcpa(s, v) <= dthr {
		tvar := taumod(dthr, s, v)
		return 0 <= tvar && tvar <= tthr
	}
	return false
}

// verticalWCV is the instantaneous vertical well-clear predicate.
func verticalWCV(zthr, tcoa, sz, vz float64) bool {
	if gomath.Abs(sz) <= zthr {
		return true
	}
	t := Tcoa(sz, vz)
	return t >= 0 && t <= tcoa
}

// verticalWCVInterval returns the vertical violation window clipped to
// [b, t]; TimeIn > TimeOut when the window is empty.
func verticalWCVInterval(zthr, tcoa float64, b, t, sz, vz float64) LossData {
	if math.AlmostEquals(vz, 0) {
		if gomath.Abs(sz) <= zthr {
			return LossData{TimeIn: b, TimeOut: t}
		}
		return LossData{TimeIn: t, TimeOut: b}
	}
	// The effective entry slab accounts for the co-altitude condition.
	actH := math.Max(zthr, gomath.Abs(vz)*tcoa)
	tentry := ThetaH(sz, vz, -1, actH)
	texit := ThetaH(sz, vz, 1, zthr)
	if t < tentry || texit < b {
		return LossData{TimeIn: t, TimeOut: b}
	}
	return LossData{TimeIn: math.Clamp(tentry, b, t), TimeOut: math.Clamp(texit, b, t)}
}

// horizontalTauInterval returns the horizontal violation window of the
// tau-modulated volume over [0, t], for thresholds dthr/tthr and a
// closest-approach bound hmd (equal to dthr for the plain well-clear
// volume; TCAS uses its own HMD). TimeIn > TimeOut when empty.
func horizontalTauInterval(t float64, s, v math.Vect2, dthr, tthr, hmd float64) LossData {
	empty := LossData{TimeIn: t, TimeOut: 0}
	sqs := s.Sqv()
	sdotv := s.Dot(v)
	sqD := math.Sq(dthr)
	a := v.Sqv()
	if math.AlmostEquals(a, 0) {
		if sqs <= sqD {
			return LossData{TimeIn: 0, TimeOut: t}
		}
		return empty
	}
	if sqs <= sqD {
		return LossData{TimeIn: 0, TimeOut: math.Min(t, ThetaD(s, v, 1, dthr))}
	}
	if sdotv >= 0 || Dcpa(s, v) > hmd || Delta(s, v, dthr) < 0 {
		return empty
	}
	bq := 2*sdotv + tthr*a
	cq := sqs + tthr*sdotv - sqD
	if math.Discr(a, bq, cq) < 0 {
		return empty
	}
	// Entry is the earlier of the tau-region entry and the cylinder entry;
	// exit is the cylinder exit (past closest approach tau is negative).
	entry := math.Min(math.Root(a, bq, cq, -1), ThetaD(s, v, -1, dthr))
	entry = math.Max(0, entry)
	exit := math.Min(t, ThetaD(s, v, 1, dthr))
	if entry > exit {
		return empty
	}
	return LossData{TimeIn: entry, TimeOut: exit}
}

func (w *WCVTaumod) Violation(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) bool {
	if invalidInputs(so, vo, si, vi) {
		return false
	}
	s := so.Sub(si)
	v := vo.Sub(vi)
	return horizontalWCV(w.Table.DTHR, w.Table.TTHR, s.Vect2(), v.Vect2()) &&
		verticalWCV(w.Table.ZTHR, w.Table.TCOA, s.Z, v.Z)
}

// wcvInterval composes the vertical and horizontal windows over [b, t].
func (w *WCVTaumod) wcvInterval(s math.Vect3, v math.Vect3, b, t float64) LossData {
	vld := verticalWCVInterval(w.Table.ZTHR, w.Table.TCOA, b, t, s.Z, v.Z)
	if vld.TimeIn > vld.TimeOut {
		return NoLoss()
	}
	step := v.Vect2().ScalAdd(vld.TimeIn, s.Vect2())
	if math.AlmostEquals(vld.TimeIn, vld.TimeOut) {
		if horizontalWCV(w.Table.DTHR, w.Table.TTHR, step, v.Vect2()) {
			return MakeLossData(vld.TimeIn, vld.TimeOut)
		}
		return NoLoss()
	}
	hld := horizontalTauInterval(vld.TimeOut-vld.TimeIn, step, v.Vect2(), w.Table.DTHR, w.Table.TTHR, w.Table.DTHR)
	if hld.TimeIn > hld.TimeOut {
		return NoLoss()
	}
	return MakeLossData(hld.TimeIn+vld.TimeIn, hld.TimeOut+vld.TimeIn)
}

func (w *WCVTaumod) ConflictDetection(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) ConflictData {
	if invalidInputs(so, vo, si, vi) || b >= t {
		return NoConflict()
	}
	s := so.Sub(si)
	v := vo.Sub(vi)
	ld := w.wcvInterval(s, v, b, t)
	if !ld.Conflict() {
		return MakeConflictData(ld, gomath.Inf(1), gomath.Inf(1))
	}
	tcrit := (ld.TimeIn + ld.TimeOut) / 2
	dcrit := s.Linear(v, tcrit).CylNorm(w.Table.DTHR, w.Table.ZTHR)
	return MakeConflictData(ld, tcrit, dcrit)
}

func (w *WCVTaumod) Conflict(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) bool {
	return w.ConflictDetection(so, vo, si, vi, b, t).Conflict()
}

func (w *WCVTaumod) Copy() Detector {
	ww := *w
	return &ww
}

func (w *WCVTaumod) TypeName() string {
	return "WCVTaumod"
}

func (w *WCVTaumod) Identifier() string {
	return w.id
}

func (w *WCVTaumod) SetIdentifier(id string) {
	w.id = id
}

func (w *WCVTaumod) Equals(d Detector) bool {
	o, ok := d.(*WCVTaumod)
	return ok && *o == *w
}

func (w *WCVTaumod) Params() *util.Params {
	p := util.NewParams()
	p.SetInternal("DTHR", w.Table.DTHR, "ft")
	p.SetInternal("ZTHR", w.Table.ZTHR, "ft")
	p.SetInternal("TTHR", w.Table.TTHR, "s")
	p.SetInternal("TCOA", w.Table.TCOA, "s")
	p.SetString("id", w.id)
	return p
}

func (w *WCVTaumod) SetParams(p *util.Params) {
	for _, k := range []string{"DTHR", "dthr"} {
		if p.Contains(k) {
			w.Table.DTHR = p.Value(k)
		}
	}
	for _, k := range []string{"ZTHR", "zthr"} {
		if p.Contains(k) {
			w.Table.ZTHR = p.Value(k)
		}
	}
	for _, k := range []string{"TTHR", "tthr"} {
		if p.Contains(k) {
			w.Table.TTHR = p.Value(k)
		}
	}
	for _, k := range []string{"TCOA", "tcoa"} {
		if p.Contains(k) {
			w.Table.TCOA = p.Value(k)
		}
	}
	if p.Contains("id") {
		w.id = p.String("id")
	}
}
