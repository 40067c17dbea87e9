// daa_test.go

package daa

import (
	gomath "math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"wellclear/pkg/bands"
	"wellclear/pkg/math"
	"wellclear/pkg/traffic"
)

func kn(v float64) float64  { return math.FromUnitOr("knot", v) }
func ft(v float64) float64  { return math.FromUnitOr("ft", v) }
func nmi(v float64) float64 { return math.FromUnitOr("nmi", v) }
func fpm(v float64) float64 { return math.FromUnitOr("fpm", v) }

func euclPos(x, y, altFt float64) math.Position {
	return math.PositionFromXYZ(math.Vect3{X: x, Y: y, Z: ft(altFt)})
}

func vel(trkDeg, gsKn, vsFpm float64) math.Velocity {
	return math.VelocityFromTrkGsVs(math.Radians(trkDeg), kn(gsKn), fpm(vsFpm))
}

///////////////////////////////////////////////////////////////////////////
// parameters

func TestParameterFileRoundTrip(t *testing.T) {
	p := DefaultParameters()
	p.DTHR = ft(6000)
	p.AlertingTime = 55
	p.BandsAlerting = false
	p.RecoveryGs = false
	p.TurnRate = math.Radians(1.5)

	s1 := p.String()
	q := DefaultParameters()
	if warnings := q.LoadFromString(s1); len(warnings) > 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	s2 := q.String()
	if s1 != s2 {
		t.Errorf("write -> parse -> write not identical:\n--- first\n%s\n--- second\n%s", s1, s2)
	}
	if q.DTHR != p.DTHR || q.BandsAlerting || q.AlertingTime != 55 {
		t.Errorf("values not preserved: %+v", q)
	}
}

func TestParameterUnknownKeysWarn(t *testing.T) {
	p := DefaultParameters()
	warnings := p.LoadFromString("DTHR = 5000 [ft]\nbogus_key = 17\n# comment\n")
	if len(warnings) != 1 {
		t.Fatalf("got warnings %v, expected one for bogus_key", warnings)
	}
	if !math.AlmostEquals(p.DTHR, ft(5000)) {
		t.Errorf("DTHR: got %f", p.DTHR)
	}
}

func TestParameterUntaggedValueIsInternal(t *testing.T) {
	p := DefaultParameters()
	p.LoadFromString("TTHR = 40\n")
	if p.TTHR != 40 {
		t.Errorf("TTHR: got %f, expected 40 (internal units)", p.TTHR)
	}
}

func TestSetParametersRejectsInconsistentBlock(t *testing.T) {
	d := New()
	p := DefaultParameters()
	p.MinGs = p.MaxGs + 1
	if d.SetParameters(p) {
		t.Error("inconsistent block (min_gs >= max_gs) was accepted")
	}
	if !d.HasError() {
		t.Error("no error was logged")
	}
	if d.Parameters().MinGs >= d.Parameters().MaxGs {
		t.Error("façade state was modified by the rejected setter")
	}
}

///////////////////////////////////////////////////////////////////////////
// thresholds-based alerting ladder

// ladderRange returns the initial separation that enters the tau-modulated
// volume of diameter d at entry seconds, for closing speed c.
func ladderRange(d, c, entry float64) float64 {
	rstar := (35*c + gomath.Sqrt(math.Sq(35*c)+4*d*d)) / 2
	return rstar + c*entry
}

func TestThresholdsLadderOrdering(t *testing.T) {
	closing := kn(200)
	type testCase struct {
		entry float64 // seconds until well-clear violation
		want  int
	}
	// MOPS tier alerting times are 60/55/40/20 seconds, least severe
	// first; the outermost tier's larger volume is entered about 19
	// seconds earlier than the unbuffered one at this closing speed.
	testCases := []testCase{
		{entry: 10, want: 4},
		{entry: 30, want: 3},
		{entry: 50, want: 2},
		{entry: 65, want: 1},
		{entry: 100, want: 0},
	}
	for _, tc := range testCases {
		d := New()
		p := d.Parameters().Copy()
		p.BandsAlerting = false
		if !d.SetParameters(p) {
			t.Fatal("SetParameters failed")
		}
		r0 := ladderRange(nmi(0.66), closing, tc.entry)
		d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 100, 0), 0)
		d.AddTrafficStateNow("traf", euclPos(0, r0, 8000), vel(180, 100, 0))
		if got := d.Alerting(1); got != tc.want {
			t.Errorf("entry %g s: alert level %d, expected %d", tc.entry, got, tc.want)
		}
		if tc.want > 0 {
			info := d.LastAlertInfo()
			if info.AlertType() != tc.want {
				t.Errorf("entry %g s: AlertInfo type %d", tc.entry, info.AlertType())
			}
			if info.TimeToViolation() < 0 {
				t.Errorf("entry %g s: negative time to violation", tc.entry)
			}
		}
	}
}

// The emitted level never rises as the encounter moves farther away.
func TestThresholdsLadderMonotonicity(t *testing.T) {
	closing := kn(200)
	r0 := ladderRange(nmi(0.66), closing, 10)
	level := func(scale float64) int {
		d := New()
		p := d.Parameters().Copy()
		p.BandsAlerting = false
		d.SetParameters(p)
		d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 100, 0), 0)
		d.AddTrafficStateNow("traf", euclPos(0, r0*scale, 8000), vel(180, 100, 0))
		return d.Alerting(1)
	}
	prev := level(1.0)
	for _, scale := range []float64{1.2, 1.5, 2.0, 3.0, 5.0} {
		l := level(scale)
		if l > prev {
			t.Fatalf("alert level rose from %d to %d as range grew", prev, l)
		}
		prev = l
	}
}

///////////////////////////////////////////////////////////////////////////
// wind

func bandSummary(kb *bands.KinematicBands) [][]math.Interval {
	var out [][]math.Interval
	for _, axis := range []struct {
		n  int
		iv func(int) math.Interval
	}{
		{kb.TrackLength(), kb.TrackInterval},
		{kb.GroundSpeedLength(), kb.GroundSpeedInterval},
		{kb.VerticalSpeedLength(), kb.VerticalSpeedInterval},
	} {
		var ivs []math.Interval
		for i := 0; i < axis.n; i++ {
			ivs = append(ivs, axis.iv(i))
		}
		out = append(out, ivs)
	}
	return out
}

func TestWindInvariance(t *testing.T) {
	wind := math.VelocityFromTrkGsVs(math.Radians(270), kn(30), 0)
	airOwn := vel(0, 150, 0)
	airTraf := vel(180, 150, 0)

	// Façade A: wind w, aircraft loaded with ground velocities air+w.
	a := New()
	a.SetWindField(wind)
	a.SetOwnshipState("own", euclPos(0, 0, 8000), airOwn.Add(wind), 0)
	a.AddTrafficStateNow("traf", euclPos(0, nmi(4), 8000), airTraf.Add(wind))

	// Façade B: no wind, aircraft loaded with the air velocities.
	b := New()
	b.SetOwnshipState("own", euclPos(0, 0, 8000), airOwn, 0)
	b.AddTrafficStateNow("traf", euclPos(0, nmi(4), 8000), airTraf)

	// Façade C: loaded like B with ground velocities, wind set after;
	// ground velocities must be preserved (air velocities recomputed).
	c := New()
	c.SetOwnshipState("own", euclPos(0, 0, 8000), airOwn.Add(wind), 0)
	c.AddTrafficStateNow("traf", euclPos(0, nmi(4), 8000), airTraf.Add(wind))
	c.SetWindField(wind)

	sa := bandSummary(a.KinematicBands())
	sb := bandSummary(b.KinematicBands())
	sc := bandSummary(c.KinematicBands())
	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(sa, sb, opt); diff != "" {
		t.Errorf("wind-loaded and air-loaded bands differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(sa, sc, opt); diff != "" {
		t.Errorf("set-wind-after bands differ (-a +c):\n%s", diff)
	}
}

///////////////////////////////////////////////////////////////////////////
// projection

func TestKinematicBandsAtMatchesProjectedFacade(t *testing.T) {
	const dt = 15.0
	mk := func(project bool) *Daidalus {
		d := New()
		shift := 0.0
		if project {
			shift = dt
		}
		own := traffic.New("own", euclPos(0, 0, 8000), vel(0, 150, 0))
		traf := traffic.New("traf", euclPos(nmi(1), nmi(5), 8200), vel(190, 180, -500))
		own = own.LinearProjection(shift)
		traf = traf.LinearProjection(shift)
		d.SetOwnshipState(own.ID, own.Pos, own.Vel, shift)
		d.AddTrafficStateNow(traf.ID, traf.Pos, traf.Vel)
		return d
	}
	base := mk(false)
	projected := mk(true)
	sa := bandSummary(base.KinematicBandsAt(dt))
	sb := bandSummary(projected.KinematicBands())
	if diff := cmp.Diff(sa, sb, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("bands at t+dt differ from projected façade (-at +projected):\n%s", diff)
	}
}

func TestKinematicBandsAtOutsideHorizon(t *testing.T) {
	d := New()
	d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 150, 0), 100)
	if kb := d.KinematicBandsAt(99); kb.HasOwnship() {
		t.Error("bands before current time returned an ownship")
	}
	if !d.HasError() {
		t.Error("no error was logged for an out-of-horizon query")
	}
	d.Message()
	if kb := d.KinematicBandsAt(100 + d.Parameters().LookaheadTime + 1); kb.HasOwnship() {
		t.Error("bands past the lookahead returned an ownship")
	}
	if !d.HasError() {
		t.Error("no error was logged for a too-late query")
	}
}

///////////////////////////////////////////////////////////////////////////
// scenario: head-on at altitude over lat/lon positions

func TestHeadOnLatLonScenario(t *testing.T) {
	d := New()
	p := d.Parameters().Copy()
	p.LookaheadTime = 90
	p.AlertingTime = 60
	if !d.SetParameters(p) {
		t.Fatal("SetParameters failed")
	}
	ownPos := math.PositionFromLatLonAlt(math.LatLonAltFromDegrees(33.95, -96.7, 8700))
	trafPos := math.PositionFromLatLonAlt(math.LatLonAltFromDegrees(33.862, -96.733, 9000))
	d.SetOwnshipState("own", ownPos, vel(206, 151, 0), 0)
	d.AddTrafficStateNow("traf", trafPos, vel(0, 210, 0))

	t2v := d.TimeToViolation(1)
	if t2v <= 0 || gomath.IsInf(t2v, 0) {
		t.Fatalf("time to violation: got %f, expected finite and positive", t2v)
	}
	cd := d.TimeIntervalOfViolation(1)
	if !cd.Conflict() || cd.TimeIn != t2v {
		t.Errorf("violation interval (%f, %f) inconsistent with time to violation %f",
			cd.TimeIn, cd.TimeOut, t2v)
	}

	kb := d.KinematicBands()
	if r := kb.TrackRegionOf(math.Radians(206)); r != bands.Near {
		t.Errorf("current track region: got %s, expected NEAR", r)
	}
	if r := kb.GroundSpeedRegionOf(kn(151)); r != bands.Near {
		t.Errorf("current ground speed region: got %s, expected NEAR", r)
	}
	hasNearTrack := false
	for i := 0; i < kb.TrackLength(); i++ {
		if kb.TrackRegion(i) == bands.Near {
			hasNearTrack = true
		}
	}
	if !hasNearTrack {
		t.Error("no NEAR track interval")
	}
}

///////////////////////////////////////////////////////////////////////////
// validation and error paths

func TestAlertingValidation(t *testing.T) {
	d := New()
	if got := d.Alerting(1); got != -1 {
		t.Errorf("alerting with no aircraft: got %d, expected -1", got)
	}
	if !d.HasError() {
		t.Error("no error was logged")
	}
	d.Message()
	d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 150, 0), 0)
	if got := d.Alerting(0); got != -1 {
		t.Errorf("alerting against the ownship index: got %d, expected -1", got)
	}
}

func TestMixedCoordinateSystemsRejected(t *testing.T) {
	d := New()
	d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 150, 0), 0)
	ll := math.PositionFromLatLonAlt(math.LatLonAltFromDegrees(33, -96, 8000))
	if idx := d.AddTrafficStateNow("traf", ll, vel(0, 150, 0)); idx != -1 {
		t.Errorf("mixed coordinate systems accepted at index %d", idx)
	}
	if !d.HasError() {
		t.Error("no error was logged")
	}
	if d.NumberOfAircraft() != 1 {
		t.Errorf("traffic list was modified: %d aircraft", d.NumberOfAircraft())
	}
}

func TestCapabilityMismatchWarns(t *testing.T) {
	d := New() // WCV detector
	_ = d.D()  // cylinder-only threshold
	if !d.HasMessage() {
		t.Error("no warning for a capability mismatch")
	}
	if d.HasError() {
		t.Error("capability mismatch logged as a hard error")
	}
	// The stored parameter value is still returned.
	if d.D() != d.Parameters().D {
		t.Error("mismatched getter did not return the stored value")
	}
}

func TestAircraftListOwnshipFirst(t *testing.T) {
	d := New()
	list := []traffic.State{
		traffic.New("alpha", euclPos(0, 0, 8000), vel(0, 150, 0)),
		traffic.New("bravo", euclPos(nmi(2), 0, 8000), vel(0, 150, 0)),
	}
	d.SetAircraftList(list, 42)
	if d.AircraftName(0) != "alpha" {
		t.Errorf("ownship is %q, expected alpha", d.AircraftName(0))
	}
	if d.CurrentTime() != 42 {
		t.Errorf("current time: got %f", d.CurrentTime())
	}
}

func TestResetOwnshipSwaps(t *testing.T) {
	d := New()
	d.SetOwnshipState("alpha", euclPos(0, 0, 8000), vel(0, 150, 0), 0)
	d.AddTrafficStateNow("bravo", euclPos(nmi(2), 0, 8000), vel(0, 150, 0))
	d.ResetOwnshipByName("bravo")
	if d.AircraftName(0) != "bravo" || d.AircraftName(1) != "alpha" {
		t.Errorf("swap failed: %q, %q", d.AircraftName(0), d.AircraftName(1))
	}
}

func TestConflictDataString(t *testing.T) {
	d := New()
	d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 150, 0), 0)
	d.AddTrafficStateNow("traf", euclPos(0, nmi(4), 8000), vel(180, 150, 0))
	cd := d.TimeIntervalOfViolation(1)
	if s := cd.String(); !strings.HasPrefix(s, "LossData[") {
		t.Errorf("conflict data renders as %q", s)
	}
}

func TestPVSExportDeterministic(t *testing.T) {
	d := New()
	d.SetOwnshipState("own", euclPos(0, 0, 8000), vel(0, 150, 0), 0)
	d.AddTrafficStateNow("traf", euclPos(0, nmi(4), 8000), vel(180, 150, 0))
	s1 := d.AircraftListToPVS(4)
	s2 := d.AircraftListToPVS(4)
	if s1 != s2 || len(s1) == 0 {
		t.Errorf("PVS export unstable or empty: %q", s1)
	}
	if d.ParametersToPVS(2) == "" {
		t.Error("empty parameters PVS export")
	}
}
