// Package sweep explores cache geometries by replaying one trace through
// every point of a parameter grid and collecting the resulting statistics.
package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

// Grid describes the geometry space to explore: the cross product of the
// listed block sizes, associativities, and capacities, with the penalties
// shared by every point.
type Grid struct {
	// BlockSizes lists the line sizes to simulate, in bytes.
	BlockSizes []int `json:"block_sizes"`

	// Associativities lists the way counts to simulate.
	Associativities []int `json:"associativities"`

	// Capacities lists the total cache sizes to simulate, in bytes.
	Capacities []int `json:"capacities"`

	// MissPenalty is the miss cost applied at every point.
	MissPenalty uint64 `json:"miss_penalty"`

	// DirtyWritebackPenalty is the writeback cost applied at every point.
	DirtyWritebackPenalty uint64 `json:"dirty_writeback_penalty"`
}

// Points expands the grid into concrete configurations, capacities
// outermost, block sizes innermost. The expansion is not validated;
// invalid points fail when the harness builds their cache.
func (g Grid) Points() []cache.Config {
	points := make([]cache.Config, 0,
		len(g.Capacities)*len(g.Associativities)*len(g.BlockSizes))

	for _, capacity := range g.Capacities {
		for _, assoc := range g.Associativities {
			for _, blockSize := range g.BlockSizes {
				points = append(points, cache.Config{
					BlockSize:             blockSize,
					Associativity:         assoc,
					Capacity:              capacity,
					MissPenalty:           g.MissPenalty,
					DirtyWritebackPenalty: g.DirtyWritebackPenalty,
				})
			}
		}
	}

	return points
}

// Result holds the outcome of replaying the trace through one geometry.
type Result struct {
	// Label identifies the geometry point.
	Label string `json:"label"`

	// Config is the simulated geometry.
	Config cache.Config `json:"config"`

	// Stats are the accumulated counters for the replay.
	Stats sim.Statistics `json:"stats"`

	// WallTime is the actual time taken to replay the trace.
	WallTime time.Duration `json:"wall_time_ns"`
}

// Label renders the canonical name of a geometry point.
func Label(cfg cache.Config) string {
	return fmt.Sprintf("%dB blocks, %d-way, %dB", cfg.BlockSize, cfg.Associativity, cfg.Capacity)
}

// TraceProvider opens a fresh replay of the trace under exploration.
// Trace sources are single-pass, so the harness calls the provider once
// per geometry point; the returned closer releases the source.
type TraceProvider func() (src sim.Source, closer io.Closer, err error)

// FileTrace returns a provider that reopens a trace file per point.
func FileTrace(path string) TraceProvider {
	return func() (sim.Source, io.Closer, error) {
		r, err := trace.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	}
}

// SliceTrace returns a provider that replays an in-memory sequence.
func SliceTrace(accesses []trace.Access) TraceProvider {
	return func() (sim.Source, io.Closer, error) {
		return trace.NewSliceReader(accesses), nil, nil
	}
}

// HarnessConfig configures the sweep harness.
type HarnessConfig struct {
	// Output is where to write results (default: os.Stdout).
	Output io.Writer

	// Verbose enables per-point progress output.
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness replays a trace across a geometry grid and reports results.
type Harness struct {
	config HarnessConfig
}

// NewHarness creates a new sweep harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// RunAll replays the trace through every point of the grid. An invalid
// geometry or a trace failure aborts the sweep with an error naming the
// point; partial results are not returned.
func (h *Harness) RunAll(grid Grid, provider TraceProvider) ([]Result, error) {
	points := grid.Points()
	results := make([]Result, 0, len(points))

	for _, cfg := range points {
		result, err := h.runPoint(cfg, provider)
		if err != nil {
			return nil, fmt.Errorf("sweep point %q: %w", Label(cfg), err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runPoint replays the trace through a single geometry.
func (h *Harness) runPoint(cfg cache.Config, provider TraceProvider) (Result, error) {
	c, err := cache.New(cfg)
	if err != nil {
		return Result{}, err
	}

	src, closer, err := provider()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open trace: %w", err)
	}

	s := sim.New(c)

	start := time.Now()
	runErr := s.Run(src)
	wallTime := time.Since(start)

	if closer != nil {
		if closeErr := closer.Close(); runErr == nil {
			runErr = closeErr
		}
	}
	if runErr != nil {
		return Result{}, runErr
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "%s: %d accesses, %.4f%% miss rate\n",
			Label(cfg), s.Stats().Accesses, s.Stats().MissRate())
	}

	return Result{
		Label:    Label(cfg),
		Config:   cfg,
		Stats:    s.Stats(),
		WallTime: wallTime,
	}, nil
}

// PrintResults outputs sweep results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Cache Geometry Sweep Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Geometry: %s\n", r.Label)
		_, _ = fmt.Fprintf(h.config.Output, "  Accesses:         %d\n", r.Stats.Accesses)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:           %d\n", r.Stats.Misses)
		_, _ = fmt.Fprintf(h.config.Output, "  Miss Rate:        %s\n", formatRatio(r.Stats.MissRate(), "%.4f%%"))
		_, _ = fmt.Fprintf(h.config.Output, "  Dirty Writebacks: %d\n", r.Stats.DirtyWritebacks)
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles:           %d\n", r.Stats.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  IPC:              %s\n", formatRatio(r.Stats.IPC(), "%.4f"))
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time:        %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

func formatRatio(v float64, format string) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	return fmt.Sprintf(format, v)
}

// PrintCSV outputs sweep results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"block_size,associativity,capacity,accesses,misses,miss_rate_percent,dirty_writebacks,instructions,cycles,ipc")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%d,%d,%d,%d,%d,%s,%d,%d,%d,%s\n",
			r.Config.BlockSize,
			r.Config.Associativity,
			r.Config.Capacity,
			r.Stats.Accesses,
			r.Stats.Misses,
			csvRatio(r.Stats.MissRate()),
			r.Stats.DirtyWritebacks,
			r.Stats.Instructions,
			r.Stats.Cycles,
			csvRatio(r.Stats.IPC()),
		)
	}
}

func csvRatio(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}

// Report is the complete machine-readable output of one sweep.
type Report struct {
	// Metadata describes the sweep run.
	Metadata Metadata `json:"metadata"`

	// Results is the list of per-point results.
	Results []Result `json:"results"`

	// Summary contains aggregate statistics across the sweep.
	Summary Summary `json:"summary"`
}

// Metadata describes a sweep run.
type Metadata struct {
	// Timestamp is when the sweep was run.
	Timestamp string `json:"timestamp"`

	// Version is the simulator version.
	Version string `json:"version"`
}

// Summary aggregates a sweep, naming the point with the best throughput.
type Summary struct {
	// TotalPoints is the number of geometries simulated.
	TotalPoints int `json:"total_points"`

	// BestLabel names the point with the highest IPC. Empty when no
	// point produced a defined IPC.
	BestLabel string `json:"best_label,omitempty"`

	// BestIPC is the highest IPC observed, omitted when undefined.
	BestIPC *float64 `json:"best_ipc,omitempty"`
}

// PrintJSON outputs sweep results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []Result) error {
	summary := Summary{TotalPoints: len(results)}
	for _, r := range results {
		ipc := r.Stats.IPC()
		if math.IsNaN(ipc) {
			continue
		}
		if summary.BestIPC == nil || ipc > *summary.BestIPC {
			v := ipc
			summary.BestIPC = &v
			summary.BestLabel = r.Label
		}
	}

	rep := Report{
		Metadata: Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   report.Version,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rep)
}
