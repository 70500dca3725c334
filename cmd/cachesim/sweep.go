package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/sweep"
)

var sweepFlags struct {
	blockSizes      []int
	associativities []int
	capacities      []int
	missPenalty     uint64
	writebackCost   uint64
	format          string
	verbose         bool
}

var sweepCmd = &cobra.Command{
	Use:   "sweep <trace-file>",
	Short: "Replay a trace across a grid of cache geometries.",
	Long: `Sweep replays the same trace through the cross product of the given ` +
		`block sizes, associativities, and capacities, reporting the statistics ` +
		`of every point for side-by-side comparison.`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntSliceVar(&sweepFlags.blockSizes, "block-sizes",
		[]int{16, 32, 64}, "cache line sizes to sweep, in bytes")
	sweepCmd.Flags().IntSliceVar(&sweepFlags.associativities, "associativities",
		[]int{1, 2, 4}, "way counts to sweep")
	sweepCmd.Flags().IntSliceVar(&sweepFlags.capacities, "capacities",
		[]int{16 * 1024}, "total cache sizes to sweep, in bytes")
	sweepCmd.Flags().Uint64Var(&sweepFlags.missPenalty, "miss-penalty", 30,
		"miss cost in cycles")
	sweepCmd.Flags().Uint64Var(&sweepFlags.writebackCost, "writeback-penalty", 2,
		"dirty-writeback cost in cycles")
	sweepCmd.Flags().StringVar(&sweepFlags.format, "format", "text",
		"report format: text, csv, or json")
	sweepCmd.Flags().BoolVarP(&sweepFlags.verbose, "verbose", "v", false,
		"per-point progress output")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	grid := sweep.Grid{
		BlockSizes:            sweepFlags.blockSizes,
		Associativities:       sweepFlags.associativities,
		Capacities:            sweepFlags.capacities,
		MissPenalty:           sweepFlags.missPenalty,
		DirtyWritebackPenalty: sweepFlags.writebackCost,
	}

	config := sweep.DefaultConfig()
	config.Output = os.Stdout
	config.Verbose = sweepFlags.verbose

	harness := sweep.NewHarness(config)
	results, err := harness.RunAll(grid, sweep.FileTrace(args[0]))
	if err != nil {
		return err
	}

	switch sweepFlags.format {
	case "text":
		harness.PrintResults(results)
	case "csv":
		harness.PrintCSV(results)
	case "json":
		return harness.PrintJSON(results)
	default:
		return fmt.Errorf("unknown report format %q: must be text, csv, or json", sweepFlags.format)
	}

	return nil
}
