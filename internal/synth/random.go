package synth

import "math"

// RNG is a seedable PCG-XSH-RR generator. Identical seeds produce identical
// feeds. Not safe for concurrent use.
type RNG struct {
	state uint64
	inc   uint64
	// spare gaussian value (Box-Muller)
	hasSpare bool
	spare    float64
}

// NewRNG creates a generator for seed.
func NewRNG(seed int64) *RNG {
	r := &RNG{inc: uint64(seed)<<1 | 1} // PCG requires odd increment
	r.step()
	r.state += uint64(seed)
	r.step()
	return r
}

func (r *RNG) step() {
	r.state = r.state*6364136223846793005 + r.inc
}

// Uint32 returns a uniformly distributed uint32.
func (r *RNG) Uint32() uint32 {
	old := r.state
	r.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a uniformly distributed float64 in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// Intn returns a uniformly distributed int in [0, n).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint32() % uint32(n))
}

// IntRange returns a uniformly distributed int in [lo, hi].
func (r *RNG) IntRange(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float64) bool {
	return p > 0 && r.Float64() < p
}

// Gaussian returns a standard normal variate (Box-Muller).
func (r *RNG) Gaussian() float64 {
	if r.hasSpare {
		r.hasSpare = false
		return r.spare
	}
	var u, v, s float64
	for {
		u = r.Float64()*2 - 1
		v = r.Float64()*2 - 1
		s = u*u + v*v
		if s > 0 && s < 1 {
			break
		}
	}
	s = math.Sqrt(-2 * math.Log(s) / s)
	r.spare = v * s
	r.hasSpare = true
	return u * s
}

// WeightedPick selects an index with probability proportional to its weight.
func (r *RNG) WeightedPick(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	target := r.Intn(total)
	for i, w := range weights {
		if target < w {
			return i
		}
		target -= w
	}
	return len(weights) - 1
}
