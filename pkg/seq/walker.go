// pkg/seq/walker.go

package seq

import (
	gomath "math"

	"wellclear/pkg/daa"
)

// Walker steps a façade through the timesteps of a sequence file:
// finite, single-pass by default, with explicit forward/backward
// navigation.
type Walker struct {
	r     *Reader
	index int
}

func NewWalker(filename string) (*Walker, error) {
	r, err := ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return &Walker{r: r}, nil
}

func (w *Walker) FirstTime() float64 {
	if len(w.r.Steps) > 0 {
		return w.r.Steps[0].Time
	}
	return gomath.Inf(1)
}

func (w *Walker) LastTime() float64 {
	if n := len(w.r.Steps); n > 0 {
		return w.r.Steps[n-1].Time
	}
	return gomath.Inf(-1)
}

func (w *Walker) Index() int {
	return w.index
}

func (w *Walker) Time() float64 {
	if w.index >= 0 && w.index < len(w.r.Steps) {
		return w.r.Steps[w.index].Time
	}
	return gomath.NaN()
}

func (w *Walker) AtBeginning() bool {
	return w.index == 0
}

func (w *Walker) AtEnd() bool {
	return w.index == len(w.r.Steps)
}

func (w *Walker) GoToTimeStep(i int) bool {
	if i >= 0 && i < len(w.r.Steps) {
		w.index = i
		return true
	}
	return false
}

func (w *Walker) GoToTime(t float64) bool {
	return w.GoToTimeStep(w.IndexOfTime(t))
}

func (w *Walker) GoToBeginning() {
	w.GoToTimeStep(0)
}

func (w *Walker) GoToEnd() {
	w.index = len(w.r.Steps)
}

func (w *Walker) GoNext() {
	if !w.GoToTimeStep(w.index + 1) {
		w.index = len(w.r.Steps)
	}
}

func (w *Walker) GoPrev() {
	if !w.AtBeginning() {
		w.GoToTimeStep(w.index - 1)
	}
}

// IndexOfTime returns the timestep containing t, or -1 if t is outside
// the sequence.
func (w *Walker) IndexOfTime(t float64) int {
	if t < w.FirstTime() || t > w.LastTime() {
		return -1
	}
	i := 0
	for ; i < len(w.r.Steps)-1; i++ {
		if t >= w.r.Steps[i].Time && t < w.r.Steps[i+1].Time {
			break
		}
	}
	return i
}

// ReadState loads the current timestep into the façade (first aircraft as
// ownship) and advances to the next timestep.
func (w *Walker) ReadState(d *daa.Daidalus) {
	if w.AtEnd() {
		return
	}
	d.Reset()
	step := w.r.Steps[w.index]
	for i, ac := range step.Aircraft {
		if i == 0 {
			d.SetOwnshipState(ac.ID, ac.Pos, ac.Vel, step.Time)
		} else {
			d.AddTrafficStateNow(ac.ID, ac.Pos, ac.Vel)
		}
	}
	w.GoNext()
}
