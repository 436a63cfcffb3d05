package fontcache

// Stats counts FontCache lookups since construction.
type Stats struct {
	Hits      uint64
	Misses    uint64 // includes Evictions and Bypassed
	Evictions uint64 // misses that overwrote a live entry
	Bypassed  uint64 // misses on a zero-capacity cache
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
