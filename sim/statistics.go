package sim

import "math"

// Statistics holds the running counters of a simulation. All counters are
// monotonically non-decreasing; derived ratios are computed at read time
// and never stored.
type Statistics struct {
	// Accesses is the total number of memory accesses replayed.
	Accesses uint64 `json:"accesses"`
	// Writes is the number of store accesses.
	Writes uint64 `json:"writes"`
	// Misses is the number of accesses that were not resident.
	Misses uint64 `json:"misses"`
	// DirtyWritebacks is the number of evictions that flushed a dirty line.
	DirtyWritebacks uint64 `json:"dirty_writebacks"`
	// Instructions is the total instruction count reported by the trace.
	Instructions uint64 `json:"instructions"`
	// Cycles is the total simulated cycle count.
	Cycles uint64 `json:"cycles"`
}

// Reads returns the number of load accesses.
func (s Statistics) Reads() uint64 {
	return s.Accesses - s.Writes
}

// Hits returns the number of accesses that were resident.
func (s Statistics) Hits() uint64 {
	return s.Accesses - s.Misses
}

// MissRate returns the miss percentage. It is NaN when no accesses have
// been replayed; reporters render that as undefined rather than a number.
func (s Statistics) MissRate() float64 {
	if s.Accesses == 0 {
		return math.NaN()
	}
	return float64(s.Misses) / float64(s.Accesses) * 100.0
}

// IPC returns instructions per cycle. It is NaN when no cycles have been
// simulated; reporters render that as undefined rather than a number.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return math.NaN()
	}
	return float64(s.Instructions) / float64(s.Cycles)
}
