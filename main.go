// Package main provides the entry point for cachesim.
// Cachesim is a trace-driven set-associative cache simulator.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Cachesim - Trace-Driven Cache Simulator")
	fmt.Println("")
	fmt.Println("Usage: cachesim <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run      Replay a trace through one cache geometry")
	fmt.Println("  sweep    Replay a trace across a grid of geometries")
	fmt.Println("  gen      Generate a synthetic trace file")
	fmt.Println("  config   Create and check configuration files")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cachesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cachesim' instead.")
	}
}
