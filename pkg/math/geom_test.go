// geom_test.go

package math

import (
	gomath "math"
	"testing"
)

func TestVelocityViews(t *testing.T) {
	type testCase struct {
		trk, gs, vs float64
	}
	testCases := []testCase{
		{trk: 0, gs: 100, vs: 0},
		{trk: Radians(90), gs: 250, vs: 10},
		{trk: Radians(206), gs: 77, vs: -5},
		{trk: Radians(359), gs: 1, vs: 2.5},
	}
	for _, tc := range testCases {
		v := VelocityFromTrkGsVs(tc.trk, tc.gs, tc.vs)
		if got := To2Pi(Trk(v)); !AlmostEquals(got, tc.trk) {
			t.Errorf("trk %g: got %g", tc.trk, got)
		}
		if got := Gs(v); !AlmostEquals(got, tc.gs) {
			t.Errorf("gs %g: got %g", tc.gs, got)
		}
		if got := Vs(v); got != tc.vs {
			t.Errorf("vs %g: got %g", tc.vs, got)
		}
	}
}

func TestVect2Det(t *testing.T) {
	a := Vect2{1, 0}
	b := Vect2{0, 1}
	if a.Det(b) != 1 || b.Det(a) != -1 {
		t.Errorf("det: got %g and %g", a.Det(b), b.Det(a))
	}
}

func TestCylNorm(t *testing.T) {
	v := Vect3{X: 3, Y: 4, Z: 2}
	if got := v.CylNorm(5, 4); got != 1 {
		t.Errorf("on-boundary point: got %g, expected 1", got)
	}
	if got := v.CylNorm(10, 1); got != 2 {
		t.Errorf("vertically dominated: got %g, expected 2", got)
	}
}

func TestGreatCircleDistance(t *testing.T) {
	// One degree of latitude is 60 nautical miles.
	a := LatLonAltFromDegrees(33, -96, 0)
	b := LatLonAltFromDegrees(34, -96, 0)
	got := GreatCircleDistance(a, b)
	want := 60 * MetersPerNauticalMile
	if gomath.Abs(got-want)/want > 0.005 {
		t.Errorf("1 deg latitude: got %f m, expected about %f m", got, want)
	}
}

func TestLinearInitialRoundTrip(t *testing.T) {
	p := LatLonAltFromDegrees(33.95, -96.7, 8700)
	for _, trkDeg := range []float64{0, 45, 206, 300} {
		q := LinearInitial(p, Radians(trkDeg), 5000)
		if d := GreatCircleDistance(p, q); gomath.Abs(d-5000) > 5 {
			t.Errorf("trk %g: distance %f, expected 5000", trkDeg, d)
		}
		if crs := InitialCourse(p, q); gomath.Abs(ToPi(crs-Radians(trkDeg))) > 0.01 {
			t.Errorf("trk %g: initial course %g deg", trkDeg, Degrees(crs))
		}
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	anchor := LatLonAltFromDegrees(33.95, -96.7, 0)
	proj := NewProjection(anchor)
	p := LatLonAltFromDegrees(33.862, -96.733, 9000)
	s := proj.Project(p)
	back := proj.Inverse(s)
	if gomath.Abs(back.Lat-p.Lat) > 1e-9 || gomath.Abs(back.Lon-p.Lon) > 1e-9 || gomath.Abs(back.Alt-p.Alt) > 1e-6 {
		t.Errorf("round trip: got %+v, expected %+v", back, p)
	}
	// The anchor projects to the origin at its altitude.
	o := proj.Project(anchor)
	if o.X != 0 || o.Y != 0 {
		t.Errorf("anchor does not project to origin: %+v", o)
	}
}

func TestPositionLinear(t *testing.T) {
	// Euclidean positions project linearly.
	p := PositionFromXYZ(Vect3{X: 0, Y: 0, Z: 1000})
	v := VelocityFromTrkGsVs(0, 100, -10)
	q := p.Linear(v, 10)
	if !AlmostEquals(q.Point().Y, 1000) || !AlmostEquals(q.Point().Z, 900) {
		t.Errorf("linear: got %+v", q.Point())
	}
	// Lat/lon positions follow the great circle for the horizontal part
	// and are linear in altitude.
	ll := PositionFromLatLonAlt(LatLonAltFromDegrees(33, -96, 5000))
	q = ll.Linear(v, 60)
	d := GreatCircleDistance(ll.LLA(), q.LLA())
	if gomath.Abs(d-6000) > 10 {
		t.Errorf("latlon linear distance: got %f, expected 6000", d)
	}
	if gomath.Abs(q.Alt()-(FromUnitOr("ft", 5000)-600)) > 1e-6 {
		t.Errorf("latlon linear altitude: got %f", q.Alt())
	}
}
