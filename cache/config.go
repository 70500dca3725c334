package cache

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the cache geometry and timing parameters. A Config is
// immutable once handed to New; changing a simulated geometry means
// building a new cache.
type Config struct {
	// BlockSize is the cache line size in bytes. Must be a power of two.
	BlockSize int `json:"block_size"`

	// Associativity is the number of ways per set. Must be a power of
	// two; 1 models a direct-mapped cache.
	Associativity int `json:"associativity"`

	// Capacity is the total cache size in bytes. Must divide evenly into
	// sets of Associativity lines of BlockSize bytes each.
	Capacity int `json:"capacity"`

	// MissPenalty is the extra cycle cost charged on a miss.
	MissPenalty uint64 `json:"miss_penalty"`

	// DirtyWritebackPenalty is the extra cycle cost charged when a miss
	// evicts a dirty line that must be written back.
	DirtyWritebackPenalty uint64 `json:"dirty_writeback_penalty"`
}

// DefaultConfig returns the default simulation geometry: a 16KB
// direct-mapped cache with 16-byte lines, a 30-cycle miss penalty, and a
// 2-cycle dirty-writeback penalty.
func DefaultConfig() Config {
	return Config{
		BlockSize:             16,
		Associativity:         1,
		Capacity:              16 * 1024,
		MissPenalty:           30,
		DirtyWritebackPenalty: 2,
	}
}

// NumBlocks returns the total number of cache lines the geometry holds.
func (c Config) NumBlocks() int {
	if c.BlockSize <= 0 {
		return 0
	}
	return c.Capacity / c.BlockSize
}

// NumSets returns the number of sets the geometry partitions into.
func (c Config) NumSets() int {
	setBytes := c.BlockSize * c.Associativity
	if setBytes <= 0 {
		return 0
	}
	return c.Capacity / setBytes
}

// Validate checks the geometry invariants. Address decomposition relies on
// BlockSize, Associativity, and the derived set count all being powers of
// two, and on Capacity splitting evenly into whole sets.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be positive, got %d", c.Associativity)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.MissPenalty == 0 {
		return fmt.Errorf("miss_penalty must be positive")
	}
	if c.DirtyWritebackPenalty == 0 {
		return fmt.Errorf("dirty_writeback_penalty must be positive")
	}

	if !isPowerOfTwo(c.BlockSize) {
		return fmt.Errorf("block_size must be a power of two, got %d", c.BlockSize)
	}
	if !isPowerOfTwo(c.Associativity) {
		return fmt.Errorf("associativity must be a power of two, got %d", c.Associativity)
	}

	setBytes := c.BlockSize * c.Associativity
	if c.Capacity%setBytes != 0 {
		return fmt.Errorf("capacity %d does not divide evenly into sets of %d bytes",
			c.Capacity, setBytes)
	}
	if !isPowerOfTwo(c.NumSets()) {
		return fmt.Errorf("derived set count must be a power of two, got %d", c.NumSets())
	}

	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// LoadConfig loads a Config from a JSON file. Missing fields keep their
// default values; the result is not validated until it is used to build a
// cache.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse cache config: %w", err)
	}

	return config, nil
}

// Save writes the Config to a JSON file.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}
