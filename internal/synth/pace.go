package synth

import "math"

// Phase is the generator's current trading intensity regime.
type Phase int

const (
	PhaseCalm Phase = iota
	PhaseActive
	PhaseBurst
)

func (p Phase) String() string {
	switch p {
	case PhaseCalm:
		return "calm"
	case PhaseActive:
		return "active"
	case PhaseBurst:
		return "burst"
	default:
		return "unknown"
	}
}

// PaceConfig bounds the gap between consecutive trades, in nanoseconds of
// feed time, for each phase.
type PaceConfig struct {
	CalmMin, CalmMax     int64
	ActiveMin, ActiveMax int64
	BurstMin, BurstMax   int64
}

func DefaultPaceConfig() PaceConfig {
	return PaceConfig{
		CalmMin: 20e6, CalmMax: 250e6,
		ActiveMin: 2e6, ActiveMax: 20e6,
		BurstMin: 50e3, BurstMax: 1e6,
	}
}

// pace spaces trades in feed time. Intensity follows a sine wave plus a
// mean-reverting random walk; phases last a random number of trades.
type pace struct {
	rng       *RNG
	cfg       PaceConfig
	phase     Phase
	remaining int // trades left in this phase
	t         float64
	walk      float64
	intensity float64
}

func newPace(rng *RNG, cfg PaceConfig) *pace {
	p := &pace{rng: rng, cfg: cfg, phase: PhaseCalm}
	p.remaining = rng.IntRange(200, 2000)
	return p
}

// next returns the gap in nanoseconds before the next trade.
func (p *pace) next() int64 {
	p.t += 0.01
	p.walk += p.rng.Gaussian() * 0.02
	p.walk *= 0.98
	p.intensity = min(max((math.Sin(p.t)+1)/2+p.walk, 0), 1)

	if p.remaining--; p.remaining <= 0 {
		p.advance()
	}

	var lo, hi int64
	switch p.phase {
	case PhaseActive:
		lo, hi = p.cfg.ActiveMin, p.cfg.ActiveMax
	case PhaseBurst:
		lo, hi = p.cfg.BurstMin, p.cfg.BurstMax
	default:
		lo, hi = p.cfg.CalmMin, p.cfg.CalmMax
	}
	// Higher intensity pulls the gap toward the phase minimum.
	gap := hi - int64(float64(hi-lo)*p.intensity)
	return max(gap, 1)
}

func (p *pace) advance() {
	switch p.phase {
	case PhaseCalm:
		if p.intensity > 0.6 {
			p.phase = PhaseActive
		}
	case PhaseActive:
		switch {
		case p.intensity > 0.85:
			p.phase = PhaseBurst
		case p.intensity < 0.3:
			p.phase = PhaseCalm
		}
	case PhaseBurst:
		p.phase = PhaseActive
	}
	if p.phase == PhaseBurst {
		p.remaining = p.rng.IntRange(50, 300)
	} else {
		p.remaining = p.rng.IntRange(200, 2000)
	}
}
