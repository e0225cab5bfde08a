package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "loadcoord",
	Short: "loadcoord - distributed load-test coordinator",
	Long: `loadcoord coordinates a fleet of slave agents running concurrent
HTTP load generators against a target, aggregating their statistics on a
single master.

Run "loadcoord master" to start the coordinator, and "loadcoord slave" on
each agent host to join a run.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(masterCmd)
	rootCmd.AddCommand(slaveCmd)
}
