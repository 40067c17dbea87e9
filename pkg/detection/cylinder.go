// pkg/detection/cylinder.go

package detection

import (
	gomath "math"

	"wellclear/pkg/math"
	"wellclear/pkg/util"
)

// CDCylinder detects conflicts against a fixed cylinder of radius D and
// half-height H centered on the intruder.
type CDCylinder struct {
	D, H float64
	id   string
}

// NMAC is the near mid-air collision cylinder, the hard floor used by the
// collision-avoidance variant of the recovery search.
const (
	NMACD = 500 * math.MetersPerFoot
	NMACH = 100 * math.MetersPerFoot
)

func NewCDCylinder(d, h float64) *CDCylinder {
	return &CDCylinder{D: d, H: h}
}

// NewNMACCylinder returns a detector for the NMAC volume.
func NewNMACCylinder() *CDCylinder {
	return NewCDCylinder(NMACD, NMACH)
}

func (c *CDCylinder) Violation(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) bool {
	if invalidInputs(so, vo, si, vi) {
		return false
	}
	s := so.Sub(si)
	return s.Vect2().Norm() < c.D && gomath.Abs(s.Z) < c.H
}

// detection returns the entry/exit times through the cylinder, clipped to
// [b, t].
func (c *CDCylinder) detection(s math.Vect3, v math.Vect3, b, t float64) LossData {
	if b >= t {
		return NoLoss()
	}
	s2, v2 := s.Vect2(), v.Vect2()
	hin, hout := gomath.Inf(-1), gomath.Inf(1)
	if math.AlmostEquals(v2.Sqv(), 0) {
		if s2.Norm() >= c.D {
			return NoLoss()
		}
	} else {
		if Delta(s2, v2, c.D) <= 0 {
			return NoLoss()
		}
		hin, hout = ThetaD(s2, v2, -1, c.D), ThetaD(s2, v2, 1, c.D)
	}
	vin, vout := gomath.Inf(-1), gomath.Inf(1)
	if math.AlmostEquals(v.Z, 0) {
		if gomath.Abs(s.Z) >= c.H {
			return NoLoss()
		}
	} else {
		vin, vout = ThetaH(s.Z, v.Z, -1, c.H), ThetaH(s.Z, v.Z, 1, c.H)
	}
	tin := math.Max(b, math.Max(hin, vin))
	tout := math.Min(t, math.Min(hout, vout))
	if tin > tout {
		return NoLoss()
	}
	return MakeLossData(tin, tout)
}

func (c *CDCylinder) ConflictDetection(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) ConflictData {
	if invalidInputs(so, vo, si, vi) {
		return NoConflict()
	}
	s := so.Sub(si)
	v := vo.Sub(vi)
	ld := c.detection(s, v, b, t)
	tcrit := math.Clamp(Tcpa(s.Vect2(), v.Vect2()), b, t)
	dcrit := s.Linear(v, tcrit).CylNorm(c.D, c.H)
	return MakeConflictData(ld, tcrit, dcrit)
}

func (c *CDCylinder) Conflict(so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity, b, t float64) bool {
	return c.ConflictDetection(so, vo, si, vi, b, t).Conflict()
}

func (c *CDCylinder) Copy() Detector {
	cc := *c
	return &cc
}

func (c *CDCylinder) TypeName() string {
	return "CDCylinder"
}

func (c *CDCylinder) Identifier() string {
	return c.id
}

func (c *CDCylinder) SetIdentifier(id string) {
	c.id = id
}

func (c *CDCylinder) Equals(d Detector) bool {
	o, ok := d.(*CDCylinder)
	return ok && *o == *c
}

func (c *CDCylinder) Params() *util.Params {
	p := util.NewParams()
	p.SetInternal("D", c.D, "nmi")
	p.SetInternal("H", c.H, "ft")
	p.SetString("id", c.id)
	return p
}

func (c *CDCylinder) SetParams(p *util.Params) {
	if p.Contains("D") {
		c.D = p.Value("D")
	}
	if p.Contains("H") {
		c.H = p.Value("H")
	}
	if p.Contains("id") {
		c.id = p.String("id")
	}
}
