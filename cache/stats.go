package cache

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`   // removed by the capacity bound
	Expirations uint64 `json:"expirations"` // removed lazily or by the sweep
	Entries     int    `json:"entries"`     // current memory-tier size
	MaxEntries  int    `json:"max_entries"`
}

// HitRate returns hits as a fraction of all lookups, 0 when no lookups
// have happened yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
