// Package sim replays a memory-access trace against a cache model and
// accumulates timing statistics.
package sim

import (
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// Source is a lazy, in-order sequence of trace records. *trace.Reader
// satisfies it; tests feed slices through the same interface.
type Source interface {
	// Scan advances to the next record, returning false at end of input
	// or on error.
	Scan() bool
	// Access returns the current record.
	Access() trace.Access
	// Err returns the error that stopped scanning, if any.
	Err() error
}

// StepResult describes one simulated access.
type StepResult struct {
	// Hit indicates whether the access was resident in the cache.
	Hit bool
	// DirtyWriteback is true if the access evicted a dirty line.
	DirtyWriteback bool
	// Cycles is the full cycle cost of the access: one cycle for the
	// access itself plus any miss and writeback penalties.
	Cycles uint64
}

// Observer watches each simulated access as it completes. Observers see
// accesses in replay order and must not retain the Access beyond the call.
type Observer func(acc trace.Access, res StepResult)

// Option is a functional option for configuring the Simulator.
type Option func(*Simulator)

// WithObserver registers an observer for every simulated access. Multiple
// observers run in registration order.
func WithObserver(fn Observer) Option {
	return func(s *Simulator) {
		s.observers = append(s.observers, fn)
	}
}

// Simulator drives the cache model with a stream of accesses, in strict
// trace order, and folds each outcome into its statistics. The replacement
// state is history-dependent, so records must never be reordered.
type Simulator struct {
	cache     *cache.Cache
	stats     Statistics
	observers []Observer
}

// New creates a Simulator for the given cache.
func New(c *cache.Cache, opts ...Option) *Simulator {
	s := &Simulator{cache: c}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Cache returns the cache under simulation.
func (s *Simulator) Cache() *cache.Cache {
	return s.cache
}

// Stats returns a snapshot of the accumulated statistics.
func (s *Simulator) Stats() Statistics {
	return s.stats
}

// Step simulates a single access: probe the cache, charge one cycle plus
// any penalties, and update the counters.
func (s *Simulator) Step(acc trace.Access) StepResult {
	var probed cache.AccessResult
	if acc.Kind == trace.Write {
		probed = s.cache.Write(acc.Address)
	} else {
		probed = s.cache.Read(acc.Address)
	}

	res := StepResult{
		Hit:            probed.Hit,
		DirtyWriteback: probed.DirtyWriteback,
		Cycles:         1 + probed.ExtraLatency,
	}

	s.stats.Accesses++
	if acc.Kind == trace.Write {
		s.stats.Writes++
	}
	if !res.Hit {
		s.stats.Misses++
	}
	if res.DirtyWriteback {
		s.stats.DirtyWritebacks++
	}
	s.stats.Instructions += acc.Instructions
	s.stats.Cycles += res.Cycles

	for _, fn := range s.observers {
		fn(acc, res)
	}

	return res
}

// Run replays the source to exhaustion, one record at a time. It returns
// the source's error if the trace could not be fully read. Reporting is a
// separate, explicit step: read Stats after Run returns.
func (s *Simulator) Run(src Source) error {
	for src.Scan() {
		s.Step(src.Access())
	}
	return src.Err()
}
