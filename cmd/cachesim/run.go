package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/record"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

var runFlags struct {
	configPath     string
	blockSize      int
	associativity  int
	capacity       int
	missPenalty    uint64
	writebackCost  uint64
	format         string
	recordAccesses bool
	recordPath     string
	dumpSets       bool
	verbose        bool
}

var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Replay a trace through one cache geometry and report statistics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.configPath, "config", "",
		"path to cache configuration JSON file")
	runCmd.Flags().IntVar(&runFlags.blockSize, "block-size", 0,
		"cache line size in bytes (overrides config file)")
	runCmd.Flags().IntVar(&runFlags.associativity, "associativity", 0,
		"ways per set (overrides config file)")
	runCmd.Flags().IntVar(&runFlags.capacity, "capacity", 0,
		"total cache size in bytes (overrides config file)")
	runCmd.Flags().Uint64Var(&runFlags.missPenalty, "miss-penalty", 0,
		"miss cost in cycles (overrides config file)")
	runCmd.Flags().Uint64Var(&runFlags.writebackCost, "writeback-penalty", 0,
		"dirty-writeback cost in cycles (overrides config file)")
	runCmd.Flags().StringVar(&runFlags.format, "format", "text",
		"report format: text, csv, or json")
	runCmd.Flags().BoolVar(&runFlags.recordAccesses, "record", false,
		"record per-access outcomes to a SQLite database")
	runCmd.Flags().StringVar(&runFlags.recordPath, "record-db", "",
		"database name for --record (default cachesim_<id>)")
	runCmd.Flags().BoolVar(&runFlags.dumpSets, "dump-sets", false,
		"dump final cache contents after the report")
	runCmd.Flags().BoolVarP(&runFlags.verbose, "verbose", "v", false,
		"verbose progress output")

	rootCmd.AddCommand(runCmd)
}

// loadRunConfig resolves the geometry: defaults, then the config file,
// then individual flag overrides, validated last.
func loadRunConfig(cmd *cobra.Command) (cache.Config, error) {
	cfg := cache.DefaultConfig()

	if runFlags.configPath != "" {
		loaded, err := cache.LoadConfig(runFlags.configPath)
		if err != nil {
			return cache.Config{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("block-size") {
		cfg.BlockSize = runFlags.blockSize
	}
	if cmd.Flags().Changed("associativity") {
		cfg.Associativity = runFlags.associativity
	}
	if cmd.Flags().Changed("capacity") {
		cfg.Capacity = runFlags.capacity
	}
	if cmd.Flags().Changed("miss-penalty") {
		cfg.MissPenalty = runFlags.missPenalty
	}
	if cmd.Flags().Changed("writeback-penalty") {
		cfg.DirtyWritebackPenalty = runFlags.writebackCost
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	tracePath := args[0]

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	c, err := cache.New(cfg)
	if err != nil {
		return err
	}

	src, err := trace.Open(tracePath)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := []sim.Option{}
	var recorder *record.Recorder
	if runFlags.recordAccesses {
		recorder = record.New(runFlags.recordPath, c)
		opts = append(opts, sim.WithObserver(recorder.Observer()))
	}

	if runFlags.verbose {
		log.Printf("replaying %s through %dB blocks, %d-way, %dB",
			tracePath, cfg.BlockSize, cfg.Associativity, cfg.Capacity)
	}

	s := sim.New(c, opts...)
	if err := s.Run(src); err != nil {
		return err
	}

	stats := s.Stats()
	if recorder != nil {
		recorder.Finalize(cfg, stats)
	}

	switch runFlags.format {
	case "text":
		report.Print(os.Stdout, cfg, stats)
	case "csv":
		report.PrintCSV(os.Stdout, cfg, stats)
	case "json":
		if err := report.PrintJSON(os.Stdout, cfg, stats); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report format %q: must be text, csv, or json", runFlags.format)
	}

	if runFlags.dumpSets {
		fmt.Println()
		report.PrintSets(os.Stdout, c)
	}

	return nil
}
