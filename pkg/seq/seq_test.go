// seq_test.go

package seq

import (
	gomath "math"
	"os"
	"path/filepath"
	"testing"

	"wellclear/pkg/daa"
	"wellclear/pkg/math"
)

const latlonSequence = `NAME    lat     lon      alt   trk  gs   vs    time
[none]  [deg]   [deg]    [ft]  [deg] [knot] [fpm] [s]
own     33.950  -96.700  8700  206  151  0     0.0
traf    33.862  -96.733  9000  0    210  0     0.0
own     33.949  -96.701  8700  206  151  0     1.0
traf    33.863  -96.733  9000  0    210  0     1.0
`

func writeSequence(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.daa")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadLatLonSequence(t *testing.T) {
	r, err := ReadFile(writeSequence(t, latlonSequence))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Steps) != 2 {
		t.Fatalf("got %d timesteps, expected 2", len(r.Steps))
	}
	step := r.Steps[0]
	if step.Time != 0 || len(step.Aircraft) != 2 {
		t.Fatalf("first step: time %f, %d aircraft", step.Time, len(step.Aircraft))
	}
	own := step.Aircraft[0]
	if own.ID != "own" || !own.Pos.IsLatLon() {
		t.Errorf("ownship record: %+v", own)
	}
	if got := math.Degrees(own.Pos.LLA().Lat); gomath.Abs(got-33.95) > 1e-9 {
		t.Errorf("latitude: got %f", got)
	}
	if got := math.ToUnitOr("knot", math.Gs(own.Vel)); gomath.Abs(got-151) > 1e-9 {
		t.Errorf("ground speed: got %f kn", got)
	}
	if got := math.Degrees(math.To2Pi(math.Trk(own.Vel))); gomath.Abs(got-206) > 1e-9 {
		t.Errorf("track: got %f deg", got)
	}
}

func TestReadEuclideanSequence(t *testing.T) {
	content := `NAME  sx    sy    sz    trk   gs     vs    time
[none] [nmi] [nmi] [ft]  [deg] [knot] [fpm] [s]
own    0.0   0.0   8000  0     150    0     0.0
traf   0.0   4.0   8000  180   150    0     0.0
`
	r, err := ReadFile(writeSequence(t, content))
	if err != nil {
		t.Fatal(err)
	}
	traf := r.Steps[0].Aircraft[1]
	if traf.Pos.IsLatLon() {
		t.Error("euclidean record read as lat/lon")
	}
	if got := traf.Pos.Point().Y; gomath.Abs(got-math.FromUnitOr("nmi", 4)) > 1e-9 {
		t.Errorf("y position: got %f", got)
	}
}

func TestWalkerNavigation(t *testing.T) {
	w, err := NewWalker(writeSequence(t, latlonSequence))
	if err != nil {
		t.Fatal(err)
	}
	if w.FirstTime() != 0 || w.LastTime() != 1 {
		t.Errorf("times: %f, %f", w.FirstTime(), w.LastTime())
	}
	if !w.AtBeginning() || w.AtEnd() {
		t.Error("fresh walker position")
	}
	d := daa.New()
	w.ReadState(d)
	if d.NumberOfAircraft() != 2 || d.AircraftName(0) != "own" || d.CurrentTime() != 0 {
		t.Errorf("first step: %d aircraft, ownship %q, time %f",
			d.NumberOfAircraft(), d.AircraftName(0), d.CurrentTime())
	}
	w.ReadState(d)
	if d.CurrentTime() != 1 {
		t.Errorf("second step time: %f", d.CurrentTime())
	}
	if !w.AtEnd() {
		t.Error("walker not at end after reading both steps")
	}
	w.GoPrev()
	if w.Time() != 1 {
		t.Errorf("after GoPrev: time %f", w.Time())
	}
	if !w.GoToTime(0.5) || w.Time() != 0 {
		t.Errorf("GoToTime(0.5): index %d time %f", w.Index(), w.Time())
	}
}
