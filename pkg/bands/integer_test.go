// integer_test.go

package bands

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"wellclear/pkg/math"
)

func TestNegIntervals(t *testing.T) {
	in := []math.Integerval{{Lb: 0, Ub: 2}, {Lb: 5, Ub: 7}}
	want := []math.Integerval{{Lb: -7, Ub: -5}, {Lb: -2, Ub: 0}}
	if diff := cmp.Diff(want, negIntervals(in)); diff != "" {
		t.Errorf("negIntervals mismatch (-want +got):\n%s", diff)
	}
	if got := negIntervals(nil); len(got) != 0 {
		t.Errorf("negIntervals(nil): got %v", got)
	}
}

func TestAppendIntband(t *testing.T) {
	type testCase struct {
		name string
		l, r []math.Integerval
		want []math.Integerval
	}
	testCases := []testCase{
		{
			name: "MergeAcrossZero",
			l:    []math.Integerval{{Lb: -3, Ub: 0}},
			r:    []math.Integerval{{Lb: 0, Ub: 4}},
			want: []math.Integerval{{Lb: -3, Ub: 4}},
		},
		{
			name: "MergeAbutting",
			l:    []math.Integerval{{Lb: -3, Ub: -1}},
			r:    []math.Integerval{{Lb: 0, Ub: 4}},
			want: []math.Integerval{{Lb: -3, Ub: 4}},
		},
		{
			name: "DisjointKept",
			l:    []math.Integerval{{Lb: -5, Ub: -3}},
			r:    []math.Integerval{{Lb: 1, Ub: 2}},
			want: []math.Integerval{{Lb: -5, Ub: -3}, {Lb: 1, Ub: 2}},
		},
		{
			name: "EmptyLeft",
			r:    []math.Integerval{{Lb: 0, Ub: 2}},
			want: []math.Integerval{{Lb: 0, Ub: 2}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := appendIntband(tc.l, tc.r)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("appendIntband mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToIntervalSetScalesAndClips(t *testing.T) {
	var set math.IntervalSet
	l := []math.Integerval{{Lb: -2, Ub: 1}, {Lb: 3, Ub: 5}}
	// scale 10, offset 100, clipped to [85, 125]
	toIntervalSet(&set, l, 10, 100, 85, 125)
	if set.Size() != 1 {
		t.Fatalf("expected the second interval to be clipped away entirely, got %s", set.String())
	}
	iv := set.Interval(0)
	if iv.Low != 85 || iv.Up != 110 {
		t.Errorf("got %v, expected [85, 110]", iv)
	}
}

func TestToIntervalSet02PiWraps(t *testing.T) {
	var set math.IntervalSet
	// A band that crosses 2pi: offset near 2pi, cells on both sides.
	add := math.Radians(350)
	scal := math.Radians(5)
	l := []math.Integerval{{Lb: -1, Ub: 3}} // 345 deg .. 365 deg
	toIntervalSet02Pi(&set, l, scal, add)
	if set.Size() != 2 {
		t.Fatalf("wrapped band should split in two, got %s", set.String())
	}
	if !set.In(math.Radians(350)) || !set.In(math.Radians(2)) {
		t.Errorf("wrapped band misses expected angles: %s", set.String())
	}
	if set.In(math.Radians(180)) {
		t.Errorf("wrapped band covers unrelated angles: %s", set.String())
	}
}
