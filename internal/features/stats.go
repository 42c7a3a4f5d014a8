package features

// Stats is the full feature vector of a placement.
type Stats struct {
	Placement Placement

	// Counts is indexed [color][piece type].
	Counts [2][6]int

	WhiteTotal int
	BlackTotal int

	// Captured is indexed by the capturing color.
	Captured [2]int

	Ranks RankTable
}

// Count returns the number of pieces of type t and color c.
func (s *Stats) Count(t PieceType, c Color) int {
	if !t.Valid() || !c.Valid() {
		return 0
	}
	return s.Counts[c][t]
}

// Stats computes the feature vector of p. When cache is non-nil the rank
// table is taken from it.
func (e *Engine) Stats(p Placement, cache *PositionCache) Stats {
	s := Stats{
		Placement: p,
		Counts:    p.counts(),
	}
	for _, t := range PieceTypes {
		s.WhiteTotal += s.Counts[White][t]
		s.BlackTotal += s.Counts[Black][t]
	}
	for _, c := range Colors {
		s.Captured[c] = capturedScore(s.Counts, c)
	}
	if cache != nil {
		s.Ranks = cache.GetOrCompute(p)
	} else {
		s.Ranks = e.RankTable(p)
	}
	return s
}
