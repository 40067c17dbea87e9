// kinematics_test.go

package kinematics

import (
	gomath "math"
	"testing"

	"wellclear/pkg/math"
)

func TestTurnOmegaFullCircle(t *testing.T) {
	s := math.Vect3{X: 100, Y: 200, Z: 3000}
	v := math.VelocityFromTrkGsVs(math.Radians(30), 150, 0)
	omega := math.Radians(3)
	period := 2 * gomath.Pi / omega
	ns, nv := TurnOmega(s, v, period, omega)
	if ns.Sub(s).Norm() > 1e-6 {
		t.Errorf("full circle did not return to start: %+v", ns)
	}
	if !math.AlmostEquals(math.To2Pi(math.Trk(nv)), math.Radians(30)) {
		t.Errorf("full circle track: got %g deg", math.Degrees(math.Trk(nv)))
	}
}

func TestTurnOmegaQuarterTurn(t *testing.T) {
	v := math.VelocityFromTrkGsVs(0, 100, 0)
	omega := math.Radians(3)
	quarter := math.Radians(90) / omega
	_, nv := TurnOmega(math.Vect3{}, v, quarter, omega)
	if !math.AlmostEquals(math.To2Pi(math.Trk(nv)), math.Radians(90)) {
		t.Errorf("quarter turn track: got %g deg", math.Degrees(math.Trk(nv)))
	}
	if !math.AlmostEquals(math.Gs(nv), 100) {
		t.Errorf("turn changed ground speed: %g", math.Gs(nv))
	}
}

func TestTurnRateBankAngleInverse(t *testing.T) {
	gs, bank := 120.0, math.Radians(25)
	omega := TurnRate(gs, bank)
	if got := BankAngle(gs, omega); !math.AlmostEquals(got, bank) {
		t.Errorf("bank angle round trip: got %g, expected %g", got, bank)
	}
}

func TestGsAccel(t *testing.T) {
	v := math.VelocityFromTrkGsVs(0, 100, -5)
	s, nv := GsAccel(math.Vect3{}, v, 10, 2)
	if !math.AlmostEquals(math.Gs(nv), 120) {
		t.Errorf("gs after accel: got %g", math.Gs(nv))
	}
	// Distance is gs0*t + a*t^2/2 along +y.
	if !math.AlmostEquals(s.Y, 100*10+2*100/2) {
		t.Errorf("distance: got %g", s.Y)
	}
	if !math.AlmostEquals(s.Z, -50) {
		t.Errorf("altitude: got %g", s.Z)
	}
	// Deceleration stops at zero instead of going negative.
	_, nv = GsAccel(math.Vect3{}, v, 100, -2)
	if math.Gs(nv) != 0 {
		t.Errorf("gs after hard decel: got %g", math.Gs(nv))
	}
}

func TestVsAccel(t *testing.T) {
	v := math.VelocityFromTrkGsVs(math.Radians(90), 100, 0)
	s, nv := VsAccel(math.Vect3{}, v, 10, 1)
	if !math.AlmostEquals(nv.Z, 10) {
		t.Errorf("vs after accel: got %g", nv.Z)
	}
	if !math.AlmostEquals(s.Z, 50) {
		t.Errorf("altitude gain: got %g", s.Z)
	}
	if !math.AlmostEquals(math.Gs(nv), 100) {
		t.Errorf("vertical accel changed ground speed: %g", math.Gs(nv))
	}
}

func TestVsLevelOutReachesTarget(t *testing.T) {
	type testCase struct {
		name   string
		z0, vz float64
		za     float64
	}
	cr, a := 5.0, 1.0
	testCases := []testCase{
		{name: "ClimbFromLevel", z0: 1000, vz: 0, za: 1500},
		{name: "DescendFromLevel", z0: 1500, vz: 0, za: 800},
		{name: "ClimbAlreadyClimbing", z0: 1000, vz: 2, za: 1600},
		{name: "ClimbWhileDescending", z0: 1000, vz: -3, za: 1400},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tl := VsLevelOutTime(tc.z0, tc.vz, tc.za, cr, a)
			if tl < 0 {
				t.Fatalf("unreachable: %g", tl)
			}
			s := math.Vect3{Z: tc.z0}
			v := math.VelocityFromTrkGsVs(0, 100, tc.vz)
			ns, nv := VsLevelOut(s, v, tl, cr, tc.za, a)
			if gomath.Abs(ns.Z-tc.za) > 1e-6 {
				t.Errorf("altitude at end of profile: got %g, expected %g", ns.Z, tc.za)
			}
			if gomath.Abs(nv.Z) > 1e-6 {
				t.Errorf("vertical speed at end of profile: got %g", nv.Z)
			}
		})
	}
}

func TestVsLevelOutMidProfileBounds(t *testing.T) {
	cr, a := 5.0, 1.0
	z0, za := 1000.0, 1500.0
	tl := VsLevelOutTime(z0, 0, za, cr, a)
	s := math.Vect3{Z: z0}
	v := math.VelocityFromTrkGsVs(0, 100, 0)
	for tt := 0.0; tt <= tl+10; tt += 1 {
		ns, nv := VsLevelOut(s, v, tt, cr, za, a)
		if ns.Z < z0-1e-9 || ns.Z > za+1e-9 {
			t.Fatalf("t=%g: altitude %g outside [%g, %g]", tt, ns.Z, z0, za)
		}
		if nv.Z < -1e-9 || nv.Z > cr+1e-9 {
			t.Fatalf("t=%g: vertical speed %g outside [0, %g]", tt, nv.Z, cr)
		}
	}
}

func TestVsLevelOutInstantaneous(t *testing.T) {
	ns, nv := VsLevelOut(math.Vect3{Z: 1000}, math.VelocityFromTrkGsVs(0, 100, 0), 5, 0, 2000, 1)
	if ns.Z != 2000 || nv.Z != 0 {
		t.Errorf("instantaneous level-off: got z=%g vz=%g", ns.Z, nv.Z)
	}
	if VsLevelOutTime(1000, 0, 2000, 0, 1) != 0 {
		t.Error("instantaneous level-off has nonzero duration")
	}
}

func TestVsLevelOutUnreachable(t *testing.T) {
	// Climbing fast at a target barely above: the monotone profile
	// overshoots, so the maneuver is unreachable.
	if tl := VsLevelOutTime(1000, 10, 1001, 10, 0.5); tl >= 0 {
		t.Errorf("overshooting profile reported reachable: %g", tl)
	}
}
