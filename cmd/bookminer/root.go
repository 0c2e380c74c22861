package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/bookminer/internal/codec"
)

var (
	// Global flags.
	checkpointDir string
	codecName     string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "bookminer",
	Short: "Mine a chess opening tree: popular moves vs engine best replies",
	Long: `Bookminer walks a chess opening tree depth-first. At every position it
asks the Lichess opening explorer which moves humans actually play, and asks
a UCI engine for the best reply to each. Every result is checkpointed, so an
interrupted run resumes exactly where it stopped.

Examples:
  # Explore from a starting line (resumes automatically)
  bookminer explore --engine /usr/bin/stockfish --line "1. Nf3 d5 2. g3"

  # Inspect checkpoint progress
  bookminer stats

  # Write PGN files and summary reports from the checkpoint
  bookminer export --output ./analysis`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&checkpointDir, "checkpoint-dir", "d", "./checkpoint", "directory holding the progress document")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "zstd", "checkpoint compression: zstd, gzip, or none")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// checkpointCodec resolves the --codec flag.
func checkpointCodec() (codec.Codec, error) {
	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", codecName)
	}
	return c, nil
}

// newLogger builds the CLI logger; --verbose turns on debug output.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}
