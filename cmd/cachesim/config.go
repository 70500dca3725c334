package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create and check cache configuration files.",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write the default cache configuration to a JSON file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cache.DefaultConfig().Save(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", args[0])
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a configuration file against the geometry invariants.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cache.LoadConfig(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Printf("%s: valid (%d sets of %d %dB lines)\n",
			args[0], cfg.NumSets(), cfg.Associativity, cfg.BlockSize)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
