// pkg/rand/rand.go

package rand

import "github.com/MichaelTJones/pcg"

// Rand is a small deterministic PRNG used by the randomized property
// tests; a fixed seed gives reproducible failures.
type Rand struct {
	r *pcg.PCG32
}

func New() Rand {
	return Rand{r: pcg.NewPCG32()}
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float64() float64 {
	return float64(r.r.Random()) / (1<<32 - 1)
}

// InRange returns a uniform value in [low, high].
func (r *Rand) InRange(low, high float64) float64 {
	return low + (high-low)*r.Float64()
}
