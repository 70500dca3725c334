// Package main provides the cachesim command-line interface.
// Cachesim is a trace-driven simulator of a single-level set-associative
// cache, used offline for architectural exploration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Trace-driven set-associative cache simulator.",
	Long: `Cachesim replays a recorded memory-access trace against a modeled ` +
		`set-associative cache, classifying each access as a hit or miss and ` +
		`accumulating timing and IPC statistics. It supports single runs, ` +
		`geometry sweeps, and synthetic trace generation.`,
}

// main exits through atexit so recorder flushes registered during the run
// still execute on the error path.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
