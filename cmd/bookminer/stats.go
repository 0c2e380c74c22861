package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/bookminer/internal/checkpoint"
	"github.com/discochess/bookminer/internal/checkpoint/diskstore"
	"github.com/discochess/bookminer/internal/state"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress statistics from the checkpoint",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := checkpointCodec()
	if err != nil {
		return err
	}

	store, err := diskstore.New(checkpointDir, c)
	if err != nil {
		return fmt.Errorf("opening checkpoint store: %w", err)
	}
	defer store.Close()

	doc, err := store.Load(context.Background())
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			fmt.Println("no checkpoint found; run 'bookminer explore' first")
			return nil
		}
		return fmt.Errorf("loading checkpoint: %w", err)
	}

	s := state.FromDocument(doc)
	fmt.Printf("Checkpoint:         %s\n", store.Path())
	fmt.Printf("Cached replies:     %d\n", s.ReplyCount())
	fmt.Printf("Explored positions: %d\n", s.ExploredCount())
	fmt.Printf("Lines recorded:     %d\n", len(s.Lines()))
	fmt.Printf("Last line id:       %d\n", s.LastID())
	return nil
}
