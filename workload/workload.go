// Package workload generates deterministic synthetic access traces for
// architectural exploration and testing.
package workload

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/sarchlab/cachesim/trace"
)

// Workload is a named, fully materialized access sequence.
type Workload struct {
	// Name identifies the workload.
	Name string

	// Description explains what access pattern the workload produces.
	Description string

	// Accesses is the access sequence, in replay order.
	Accesses []trace.Access
}

// Reader returns a replayable source over the workload, satisfying the
// simulator's Source interface.
func (w Workload) Reader() *trace.SliceReader {
	return trace.NewSliceReader(w.Accesses)
}

// WriteTrace renders the workload in the textual trace format, one record
// per line, so generated workloads can be saved and replayed as files.
func (w Workload) WriteTrace(out io.Writer) error {
	for _, acc := range w.Accesses {
		kind := 0
		if acc.Kind == trace.Write {
			kind = 1
		}
		_, err := fmt.Fprintf(out, "# %d %x %d\n", kind, acc.Address, acc.Instructions)
		if err != nil {
			return fmt.Errorf("failed to write trace record: %w", err)
		}
	}
	return nil
}

// Sequential produces n read accesses to consecutive words, one word per
// access. Spatial locality is maximal: a cache with b-byte blocks misses
// once per b/4 accesses.
func Sequential(n int) Workload {
	accesses := make([]trace.Access, n)
	for i := range accesses {
		accesses[i] = trace.Access{
			Kind:         trace.Read,
			Address:      uint64(i) * 4,
			Instructions: 1,
		}
	}

	return Workload{
		Name:        "sequential",
		Description: fmt.Sprintf("%d sequential word reads", n),
		Accesses:    accesses,
	}
}

// Strided produces n read accesses separated by a fixed byte stride. A
// stride at or above the block size defeats spatial locality entirely.
func Strided(n int, stride uint64) Workload {
	accesses := make([]trace.Access, n)
	for i := range accesses {
		accesses[i] = trace.Access{
			Kind:         trace.Read,
			Address:      uint64(i) * stride,
			Instructions: 1,
		}
	}

	return Workload{
		Name:        "strided",
		Description: fmt.Sprintf("%d reads with a %d-byte stride", n, stride),
		Accesses:    accesses,
	}
}

// Repeated produces n accesses cycling over a fixed footprint of
// consecutive words, alternating writes and reads. A footprint that fits
// in the cache hits after the first pass; one that does not thrashes, and
// the writes make every eviction a dirty writeback.
func Repeated(n int, footprint uint64) Workload {
	words := footprint / 4
	if words == 0 {
		words = 1
	}

	accesses := make([]trace.Access, n)
	for i := range accesses {
		kind := trace.Read
		if i%2 == 1 {
			kind = trace.Write
		}
		accesses[i] = trace.Access{
			Kind:         kind,
			Address:      (uint64(i) % words) * 4,
			Instructions: 1,
		}
	}

	return Workload{
		Name:        "repeated",
		Description: fmt.Sprintf("%d accesses cycling over a %d-byte footprint", n, footprint),
		Accesses:    accesses,
	}
}

// UniformRandom produces n accesses at uniformly random word addresses
// within the given byte span, with roughly one write per four accesses.
// The same seed always reproduces the same sequence.
func UniformRandom(n int, span uint64, seed int64) Workload {
	rng := rand.New(rand.NewSource(seed))
	words := span / 4
	if words == 0 {
		words = 1
	}

	accesses := make([]trace.Access, n)
	for i := range accesses {
		kind := trace.Read
		if rng.Intn(4) == 0 {
			kind = trace.Write
		}
		accesses[i] = trace.Access{
			Kind:         kind,
			Address:      uint64(rng.Int63n(int64(words))) * 4,
			Instructions: uint64(1 + rng.Intn(4)),
		}
	}

	return Workload{
		Name:        "random",
		Description: fmt.Sprintf("%d uniform random accesses over a %d-byte span (seed %d)", n, span, seed),
		Accesses:    accesses,
	}
}

// Standard returns the default set of exploration workloads.
func Standard() []Workload {
	return []Workload{
		Sequential(4096),
		Strided(4096, 64),
		Repeated(4096, 8*1024),
		UniformRandom(4096, 64*1024, 1),
	}
}
