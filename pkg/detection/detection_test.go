// detection_test.go

package detection

import (
	gomath "math"
	"testing"

	"wellclear/pkg/math"
	"wellclear/pkg/rand"
)

func kn(v float64) float64  { return math.FromUnitOr("knot", v) }
func ft(v float64) float64  { return math.FromUnitOr("ft", v) }
func nmi(v float64) float64 { return math.FromUnitOr("nmi", v) }

// Head-on pair closing along the y axis at co-altitude.
func headOn(sep, closing float64) (so math.Vect3, vo, vi math.Velocity, si math.Vect3) {
	so = math.Vect3{}
	vo = math.VelocityFromTrkGsVs(0, closing/2, 0)
	si = math.Vect3{Y: sep}
	vi = math.VelocityFromTrkGsVs(math.Radians(180), closing/2, 0)
	return
}

func allDetectors() []Detector {
	return []Detector{
		NewCDCylinder(nmi(5), ft(1000)),
		NewWCVTaumod(),
		NewTCAS3D(),
	}
}

func TestCylinderHeadOnWindow(t *testing.T) {
	d := NewCDCylinder(nmi(5), ft(1000))
	closing := kn(400)
	so, vo, vi, si := headOn(nmi(20), closing)
	cd := d.ConflictDetection(so, vo, si, vi, 0, 300)
	if !cd.Conflict() {
		t.Fatal("head-on pair did not conflict")
	}
	// Entry when range drops to D: (20-5) nmi at 400 kn = 135 s.
	wantIn := (nmi(20) - nmi(5)) / closing
	wantOut := (nmi(20) + nmi(5)) / closing
	if gomath.Abs(cd.TimeIn-wantIn) > 1e-6 {
		t.Errorf("time_in: got %f, expected %f", cd.TimeIn, wantIn)
	}
	if gomath.Abs(cd.TimeOut-wantOut) > 1e-6 {
		t.Errorf("time_out: got %f, expected %f", cd.TimeOut, wantOut)
	}
}

func TestCylinderWindowClipping(t *testing.T) {
	d := NewCDCylinder(nmi(5), ft(1000))
	so, vo, vi, si := headOn(nmi(20), kn(400))
	cd := d.ConflictDetection(so, vo, si, vi, 0, 60)
	// Entry at 135 s is outside [0, 60].
	if cd.Conflict() {
		t.Errorf("conflict outside the window was reported: %v", cd.LossData)
	}
	cd = d.ConflictDetection(so, vo, si, vi, 140, 150)
	if !cd.Conflict() || cd.TimeIn < 140 || cd.TimeOut > 150 {
		t.Errorf("window was not clipped: %v", cd.LossData)
	}
}

func TestParallelTracksNoNaN(t *testing.T) {
	// Zero relative horizontal speed must not produce NaN.
	for _, d := range allDetectors() {
		so := math.Vect3{}
		vo := math.VelocityFromTrkGsVs(0, kn(150), 0)
		si := math.Vect3{X: nmi(2)}
		cd := d.ConflictDetection(so, vo, si, vo, 0, 180)
		if gomath.IsNaN(cd.TimeIn) || gomath.IsNaN(cd.TimeOut) {
			t.Errorf("%s: NaN in conflict window", d.TypeName())
		}
		if cd.Conflict() {
			t.Errorf("%s: parallel tracks two nmi apart reported a conflict", d.TypeName())
		}
	}
}

func TestMalformedQueryNoConflict(t *testing.T) {
	for _, d := range allDetectors() {
		cd := d.ConflictDetection(math.InvalidVect3, math.Vect3{}, math.Vect3{}, math.Vect3{}, 0, 100)
		if cd.Conflict() {
			t.Errorf("%s: malformed query reported a conflict", d.TypeName())
		}
		if !gomath.IsInf(cd.TimeIn, 1) || !gomath.IsInf(cd.TimeOut, -1) {
			t.Errorf("%s: malformed query: got (%f, %f)", d.TypeName(), cd.TimeIn, cd.TimeOut)
		}
		if d.Violation(math.InvalidVect3, math.Vect3{}, math.Vect3{}, math.Vect3{}) {
			t.Errorf("%s: malformed query reported a violation", d.TypeName())
		}
	}
}

func TestLossDataSnapsCoincidentTimes(t *testing.T) {
	ld := MakeLossData(10, 10+1e-12)
	if ld.Conflict() {
		t.Error("zero-length interval counted as a conflict")
	}
	if ld.TimeIn != ld.TimeOut {
		t.Errorf("times not snapped: %f != %f", ld.TimeIn, ld.TimeOut)
	}
}

func TestWCVTaumodInsideDTHR(t *testing.T) {
	w := NewWCVTaumod()
	so := math.Vect3{}
	vo := math.VelocityFromTrkGsVs(0, kn(150), 0)
	si := math.Vect3{X: ft(2000)} // inside DTHR = 4000 ft
	vi := vo
	if !w.Violation(so, vo, si, vi) {
		t.Error("pair inside DTHR at co-altitude is not in violation")
	}
	cd := w.ConflictDetection(so, vo, si, vi, 0, 60)
	if !cd.Conflict() || cd.TimeIn != 0 {
		t.Errorf("violating pair: got window (%f, %f)", cd.TimeIn, cd.TimeOut)
	}
}

func TestWCVTaumodVerticalSeparation(t *testing.T) {
	w := NewWCVTaumod()
	so, vo, vi, si := headOn(nmi(1), kn(300))
	si.Z = ft(2000) // well above ZTHR, no vertical convergence
	if w.Violation(so, vo, si, vi) {
		t.Error("vertically separated pair in violation")
	}
	if w.Conflict(so, vo, si, vi, 0, 180) {
		t.Error("vertically separated pair in conflict")
	}
}

func TestTCAS3DSensitivityLevels(t *testing.T) {
	type testCase struct {
		altFt float64
		want  int
	}
	for _, tc := range []testCase{
		{500, 2}, {1500, 3}, {3000, 4}, {7000, 5}, {15000, 6}, {30000, 7}, {45000, 8},
	} {
		if got := SensitivityLevel(ft(tc.altFt)); got != tc.want {
			t.Errorf("alt %g ft: got SL %d, expected %d", tc.altFt, got, tc.want)
		}
	}
}

func TestTCAS3DNoRABelowSL3(t *testing.T) {
	d := NewTCAS3D()
	so, vo, vi, si := headOn(ft(1000), kn(300))
	so.Z = ft(500) // SL 2, no RA
	si.Z = ft(500)
	if d.Violation(so, vo, si, vi) {
		t.Error("RA issued at sensitivity level 2")
	}
}

///////////////////////////////////////////////////////////////////////////
// properties

func randomState(r *rand.Rand) (so math.Vect3, vo math.Velocity, si math.Vect3, vi math.Velocity) {
	so = math.Vect3{X: r.InRange(-nmi(20), nmi(20)), Y: r.InRange(-nmi(20), nmi(20)), Z: r.InRange(ft(3000), ft(20000))}
	si = math.Vect3{X: r.InRange(-nmi(20), nmi(20)), Y: r.InRange(-nmi(20), nmi(20)), Z: r.InRange(ft(3000), ft(20000))}
	vo = math.VelocityFromTrkGsVs(r.InRange(0, 2*gomath.Pi), r.InRange(kn(50), kn(600)), r.InRange(ft(-3000)/60, ft(3000)/60))
	vi = math.VelocityFromTrkGsVs(r.InRange(0, 2*gomath.Pi), r.InRange(kn(50), kn(600)), r.InRange(ft(-3000)/60, ft(3000)/60))
	return
}

// Every returned window is either empty or contained in [B, T].
func TestConflictWindowContainment(t *testing.T) {
	r := rand.New()
	r.Seed(42)
	for _, d := range allDetectors() {
		for i := 0; i < 2000; i++ {
			so, vo, si, vi := randomState(&r)
			b := r.InRange(0, 60)
			tt := b + r.InRange(1, 240)
			cd := d.ConflictDetection(so, vo, si, vi, b, tt)
			if !cd.Conflict() {
				continue
			}
			if cd.TimeIn < b || cd.TimeIn > cd.TimeOut || cd.TimeOut > tt {
				t.Fatalf("%s: window (%f, %f) outside [%f, %f] for so=%v vo=%v si=%v vi=%v",
					d.TypeName(), cd.TimeIn, cd.TimeOut, b, tt, so, vo, si, vi)
			}
		}
	}
}

// A current violation is a conflict whose window opens at zero, and
// conversely.
func TestViolationMatchesImmediateConflict(t *testing.T) {
	r := rand.New()
	r.Seed(7)
	const eps = 1e-3
	for _, d := range allDetectors() {
		for i := 0; i < 2000; i++ {
			so, vo, si, vi := randomState(&r)
			viol := d.Violation(so, vo, si, vi)
			cd := d.ConflictDetection(so, vo, si, vi, 0, eps)
			immediate := cd.Conflict() && cd.TimeIn == 0
			if viol != immediate {
				// Boundary geometries may legitimately disagree within
				// floating tolerance; re-check a hair inside the volume.
				cd2 := d.ConflictDetection(so, vo, si, vi, 0, 1)
				if viol != (cd2.Conflict() && cd2.TimeIn < eps) {
					t.Fatalf("%s: violation=%v but window=(%f, %f) for so=%v vo=%v si=%v vi=%v",
						d.TypeName(), viol, cd.TimeIn, cd.TimeOut, so, vo, si, vi)
				}
			}
		}
	}
}
