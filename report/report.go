// Package report renders finished simulation results for humans and for
// downstream tooling. The core simulation produces a statistics snapshot;
// everything about presentation lives here.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/fatih/color"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
)

// Version is the simulator version stamped into machine-readable output.
const Version = "0.2.0"

var (
	headingColor   = color.New(color.FgCyan, color.Bold)
	undefinedColor = color.New(color.FgYellow)
)

// Print writes the human-readable report: the cache settings followed by
// the access, miss, and timing breakdowns. Ratios with a zero denominator
// print as undefined.
func Print(w io.Writer, cfg cache.Config, stats sim.Statistics) {
	_, _ = headingColor.Fprintln(w, "CACHE SETTINGS")
	_, _ = fmt.Fprintf(w, "%26s: %d\n", "Cache Size (Bytes)", cfg.Capacity)
	_, _ = fmt.Fprintf(w, "%26s: %d\n", "Associativity", cfg.Associativity)
	_, _ = fmt.Fprintf(w, "%26s: %d\n", "Block Size (Bytes)", cfg.BlockSize)
	_, _ = fmt.Fprintf(w, "%26s: %d\n", "Miss Penalty (Cycles)", cfg.MissPenalty)
	_, _ = fmt.Fprintf(w, "%26s: %d\n", "Dirty WB Penalty (Cycles)", cfg.DirtyWritebackPenalty)
	_, _ = fmt.Fprintln(w)

	_, _ = headingColor.Fprintln(w, "CACHE STATS")
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "TOTAL ACCESSES", stats.Accesses)
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "READS", stats.Reads())
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "WRITES", stats.Writes)
	_, _ = fmt.Fprintf(w, "%14s: %s\n", "MISS-RATE", formatRatio(stats.MissRate()))
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "MISSES", stats.Misses)
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "HITS", stats.Hits())
	_, _ = fmt.Fprintf(w, "%14s: %s\n", "IPC", formatRatio(stats.IPC()))
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "INSTRUCTIONS", stats.Instructions)
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "CYCLES", stats.Cycles)
	_, _ = fmt.Fprintf(w, "%14s: %d\n", "DIRTY WB", stats.DirtyWritebacks)
}

// formatRatio renders a derived ratio, or "undefined" when the ratio's
// denominator was zero.
func formatRatio(v float64) string {
	if math.IsNaN(v) {
		return undefinedColor.Sprint("undefined")
	}
	return fmt.Sprintf("%.4f", v)
}

// PrintCSV writes a one-row CSV report for spreadsheet-style comparison
// across runs. Undefined ratios render as empty fields.
func PrintCSV(w io.Writer, cfg cache.Config, stats sim.Statistics) {
	_, _ = fmt.Fprintln(w, "block_size,associativity,capacity,miss_penalty,dirty_wb_penalty,"+
		"accesses,reads,writes,misses,hits,miss_rate_percent,dirty_writebacks,instructions,cycles,ipc")
	_, _ = fmt.Fprintf(w, "%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%s,%d,%d,%d,%s\n",
		cfg.BlockSize,
		cfg.Associativity,
		cfg.Capacity,
		cfg.MissPenalty,
		cfg.DirtyWritebackPenalty,
		stats.Accesses,
		stats.Reads(),
		stats.Writes,
		stats.Misses,
		stats.Hits(),
		csvRatio(stats.MissRate()),
		stats.DirtyWritebacks,
		stats.Instructions,
		stats.Cycles,
		csvRatio(stats.IPC()),
	)
}

func csvRatio(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}

// Summary is the machine-readable shape of one finished run.
type Summary struct {
	// Metadata describes the run itself.
	Metadata Metadata `json:"metadata"`

	// Config is the simulated geometry.
	Config cache.Config `json:"config"`

	// Counters are the raw accumulated counts.
	Counters Counters `json:"counters"`

	// Derived holds the ratio statistics. Ratios whose denominator was
	// zero are null rather than a made-up number.
	Derived Derived `json:"derived"`
}

// Metadata describes a simulation run.
type Metadata struct {
	// Timestamp is the UTC time the report was produced, in RFC 3339.
	Timestamp string `json:"timestamp"`
	// Version is the simulator version.
	Version string `json:"version"`
}

// Counters mirrors the statistics counters, with the derived counts
// included so consumers need no arithmetic.
type Counters struct {
	Accesses        uint64 `json:"accesses"`
	Reads           uint64 `json:"reads"`
	Writes          uint64 `json:"writes"`
	Misses          uint64 `json:"misses"`
	Hits            uint64 `json:"hits"`
	DirtyWritebacks uint64 `json:"dirty_writebacks"`
	Instructions    uint64 `json:"instructions"`
	Cycles          uint64 `json:"cycles"`
}

// Derived holds the ratio statistics of a run.
type Derived struct {
	MissRatePercent *float64 `json:"miss_rate_percent"`
	IPC             *float64 `json:"ipc"`
}

// NewSummary assembles the machine-readable summary of a run.
func NewSummary(cfg cache.Config, stats sim.Statistics) Summary {
	return Summary{
		Metadata: Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
		},
		Config: cfg,
		Counters: Counters{
			Accesses:        stats.Accesses,
			Reads:           stats.Reads(),
			Writes:          stats.Writes,
			Misses:          stats.Misses,
			Hits:            stats.Hits(),
			DirtyWritebacks: stats.DirtyWritebacks,
			Instructions:    stats.Instructions,
			Cycles:          stats.Cycles,
		},
		Derived: Derived{
			MissRatePercent: optionalRatio(stats.MissRate()),
			IPC:             optionalRatio(stats.IPC()),
		},
	}
}

func optionalRatio(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// PrintJSON writes the machine-readable summary of a run.
func PrintJSON(w io.Writer, cfg cache.Config, stats sim.Statistics) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewSummary(cfg, stats))
}

// PrintSets dumps the live cache contents, one line per way. Intended for
// debugging small geometries; a large cache produces one row per line.
func PrintSets(w io.Writer, c *cache.Cache) {
	_, _ = headingColor.Fprintln(w, "CACHE CONTENTS")
	for set := 0; set < c.Config().NumSets(); set++ {
		for way, l := range c.SetState(set) {
			if !l.Valid {
				_, _ = fmt.Fprintf(w, "set %4d way %2d: invalid\n", set, way)
				continue
			}
			state := "clean"
			if l.Dirty {
				state = "dirty"
			}
			_, _ = fmt.Fprintf(w, "set %4d way %2d: tag 0x%012x %s priority %d\n",
				set, way, l.Tag, state, l.Priority)
		}
	}
}
