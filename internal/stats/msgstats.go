// Package stats keeps the cross-symbol counters of a run: message counts,
// trade volume and rate, and the per-symbol activity rankings.
package stats

import "github.com/ndrandal/taqfeed/internal/taq"

// MsgStats counts lines per message kind. Unknown lines are counted too.
type MsgStats struct {
	counts map[taq.MsgKind]int64
	total  int64
}

func NewMsgStats() *MsgStats {
	return &MsgStats{counts: make(map[taq.MsgKind]int64)}
}

func (s *MsgStats) Add(kind taq.MsgKind) {
	s.counts[kind]++
	s.total++
}

func (s *MsgStats) Count(kind taq.MsgKind) int64 { return s.counts[kind] }

func (s *MsgStats) Total() int64 { return s.total }

// Counts returns the tallies keyed by kind name. Recognised kinds are always
// present; "unknown" appears only when such lines were seen.
func (s *MsgStats) Counts() map[string]int64 {
	out := make(map[string]int64, len(s.counts)+3)
	for _, k := range taq.Kinds() {
		out[k.String()] = s.counts[k]
	}
	if n := s.counts[taq.MsgUnknown]; n > 0 {
		out[taq.MsgUnknown.String()] = n
	}
	return out
}
