package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/workload"
)

var genFlags struct {
	count   int
	stride  uint64
	span    uint64
	seed    int64
	outPath string
}

var genCmd = &cobra.Command{
	Use:   "gen <pattern>",
	Short: "Generate a synthetic trace file.",
	Long: `Gen writes a deterministic synthetic access trace in the textual ` +
		`trace format. Patterns: sequential, strided, repeated, random.`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().IntVarP(&genFlags.count, "count", "n", 4096,
		"number of accesses to generate")
	genCmd.Flags().Uint64Var(&genFlags.stride, "stride", 64,
		"byte stride (strided pattern)")
	genCmd.Flags().Uint64Var(&genFlags.span, "span", 64*1024,
		"footprint or address span in bytes (repeated and random patterns)")
	genCmd.Flags().Int64Var(&genFlags.seed, "seed", 1,
		"random seed (random pattern)")
	genCmd.Flags().StringVarP(&genFlags.outPath, "output", "o", "",
		"output file (default stdout)")

	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	var w workload.Workload
	switch args[0] {
	case "sequential":
		w = workload.Sequential(genFlags.count)
	case "strided":
		w = workload.Strided(genFlags.count, genFlags.stride)
	case "repeated":
		w = workload.Repeated(genFlags.count, genFlags.span)
	case "random":
		w = workload.UniformRandom(genFlags.count, genFlags.span, genFlags.seed)
	default:
		return fmt.Errorf("unknown pattern %q: must be sequential, strided, repeated, or random", args[0])
	}

	out := os.Stdout
	if genFlags.outPath != "" {
		f, err := os.Create(genFlags.outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return w.WriteTrace(out)
}
