// Package cache models a single-level set-associative cache with an
// LRU-style replacement policy and dirty-writeback accounting. The model
// tracks tags and line state only; it holds no data and performs no memory
// traffic, which is all a trace-driven timing simulation needs.
package cache

import (
	"math/bits"
)

// AccessResult describes the outcome of probing the cache with one access.
type AccessResult struct {
	// Hit indicates whether the accessed block was resident.
	Hit bool

	// DirtyWriteback is true if the access evicted a dirty line that had
	// to be written back before its slot was reused.
	DirtyWriteback bool

	// ExtraLatency is the cycle cost beyond the fixed per-access cycle:
	// the miss penalty and, when applicable, the dirty-writeback penalty.
	ExtraLatency uint64
}

// LineState is a read-only snapshot of one cache line, exposed for
// inspection and testing.
type LineState struct {
	// Tag is the address tag the line holds. Meaningful only when Valid.
	Tag uint64
	// Valid indicates whether the line holds a block.
	Valid bool
	// Dirty indicates whether the line holds data not yet written back.
	Dirty bool
	// Priority is the line's recency rank within its set: 0 is most
	// recently used, larger values are staler.
	Priority int
}

// line is the mutable per-slot state of the cache array.
type line struct {
	tag      uint64
	valid    bool
	dirty    bool
	priority int
}

// Cache is the simulated cache array. It is not safe for concurrent use;
// the simulation replays a trace from a single goroutine.
type Cache struct {
	config Config
	lines  []line

	// Address decomposition, fixed by the geometry:
	// |****** TAG ******|**** SET ****|** OFFSET **|
	offsetBits uint
	tagShift   uint
	setMask    uint64
}

// New builds a cache for the given geometry. It fails if the geometry
// violates the configuration invariants, before any access is processed.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	offsetBits := uint(bits.TrailingZeros64(uint64(config.BlockSize)))
	setBits := uint(bits.TrailingZeros64(uint64(config.NumSets())))

	return &Cache{
		config:     config,
		lines:      make([]line, config.NumBlocks()),
		offsetBits: offsetBits,
		tagShift:   offsetBits + setBits,
		setMask:    uint64(config.NumSets() - 1),
	}, nil
}

// Config returns the cache geometry.
func (c *Cache) Config() Config {
	return c.config
}

// Decode splits an address into its tag and set index. The remaining low
// bits are the block offset, which the model never needs. Decode is total
// over all 64-bit addresses.
func (c *Cache) Decode(addr uint64) (tag uint64, set int) {
	set = int((addr >> c.offsetBits) & c.setMask)
	tag = addr >> c.tagShift
	return tag, set
}

// Read probes the cache with a load access.
func (c *Cache) Read(addr uint64) AccessResult {
	return c.probe(addr, false)
}

// Write probes the cache with a store access. The resident line is marked
// dirty whether the access hit or filled a fresh line.
func (c *Cache) Write(addr uint64) AccessResult {
	return c.probe(addr, true)
}

// probe performs one lookup-and-replace step. The set is the contiguous
// range [set*associativity, (set+1)*associativity) of the line array.
func (c *Cache) probe(addr uint64, write bool) AccessResult {
	tag, set := c.Decode(addr)

	assoc := c.config.Associativity
	base := set * assoc
	local := c.lines[base : base+assoc]

	// Scan the set. The first valid line with a matching tag is the hit;
	// valid tags are unique per set, so there is at most one. Remember
	// the first invalid line as a potential free slot.
	hit := false
	index := 0
	invalid := -1
	for i := range local {
		if !local[i].valid {
			if invalid < 0 {
				invalid = i
			}
			continue
		}
		if local[i].tag == tag {
			hit = true
			index = i
			break
		}
	}

	// On a miss, claim a free slot if one exists, else evict the stalest
	// line. A dirty victim costs a writeback before its slot is reused.
	writeback := false
	if !hit {
		if invalid >= 0 {
			index = invalid
		} else {
			index = stalestLine(local)
		}
		writeback = local[index].dirty
		local[index].tag = tag
		local[index].valid = true
	}

	local[index].dirty = write

	// Age the set: every line at least as recent as the accessed line
	// was moves one step staler, then the accessed line becomes the most
	// recent. The upper bound keeps priorities within [0, associativity].
	threshold := local[index].priority
	for i := range local {
		if local[i].priority <= threshold && local[i].priority < assoc {
			local[i].priority++
		}
	}
	local[index].priority = 0

	var extra uint64
	if !hit {
		extra += c.config.MissPenalty
	}
	if writeback {
		extra += c.config.DirtyWritebackPenalty
	}

	return AccessResult{Hit: hit, DirtyWriteback: writeback, ExtraLatency: extra}
}

// stalestLine returns the index of the line holding the highest priority
// value. Ties go to the lowest index, keeping eviction deterministic.
func stalestLine(local []line) int {
	victim := 0
	for i := 1; i < len(local); i++ {
		if local[i].priority > local[victim].priority {
			victim = i
		}
	}
	return victim
}

// SetState returns a snapshot of the lines in one set, in physical order.
func (c *Cache) SetState(set int) []LineState {
	assoc := c.config.Associativity
	local := c.lines[set*assoc : (set+1)*assoc]

	state := make([]LineState, assoc)
	for i, l := range local {
		state[i] = LineState{Tag: l.tag, Valid: l.valid, Dirty: l.dirty, Priority: l.priority}
	}
	return state
}

// Reset invalidates every line, returning the cache to its initial state.
func (c *Cache) Reset() {
	for i := range c.lines {
		c.lines[i] = line{}
	}
}
