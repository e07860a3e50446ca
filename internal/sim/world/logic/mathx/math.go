package mathx

import "math"

// SanitizeDT maps negative, NaN and infinite frame deltas to 0.
func SanitizeDT(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	return dt
}

// Lerp maps t in [0,1) onto [lo,hi).
func Lerp(lo, hi, t float64) float64 {
	return lo + (hi-lo)*t
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Rand is a SplitMix64 stream. It is tiny, allocation free and its whole state is one
// counter, which keeps it inside the state digest.
type Rand struct {
	seed  uint64
	calls uint64
}

func NewRand(seed int64) *Rand {
	return &Rand{seed: uint64(seed)}
}

func (r *Rand) Uint64() uint64 {
	r.calls++
	return mix64(r.seed + r.calls*0x9e3779b97f4a7c15)
}

// Float64 returns a uniform value in [0,1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Calls reports how many values have been drawn.
func (r *Rand) Calls() uint64 { return r.calls }
