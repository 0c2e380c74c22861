package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/discochess/bookminer/internal/checkpoint/diskstore"
	"github.com/discochess/bookminer/internal/record"
	"github.com/discochess/bookminer/internal/report"
	"github.com/discochess/bookminer/internal/rules"
	"github.com/discochess/bookminer/internal/state"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write PGN files and summary reports from the checkpoint",
	Long: `Export renders every recorded line from the checkpoint: one PGN file per
line, a complete_analysis.json summary with per-depth evaluation statistics,
and a variation_tree.txt view grouped by depth.`,
	RunE: runExport,
}

var (
	outputDir     string
	exportLine    string
	exportSkipPGN bool
)

func init() {
	exportCmd.Flags().StringVar(&outputDir, "output", "./analysis", "directory for exported files")
	exportCmd.Flags().StringVar(&exportLine, "line", "", "starting line recorded in the summary header")
	exportCmd.Flags().BoolVar(&exportSkipPGN, "no-pgn", false, "skip writing per-line PGN files")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("loading checkpoint: %w", err)
	}
	s := state.FromDocument(doc)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	summary := report.Build(s, exportLine, 0, 0)

	jsonFile, err := os.Create(filepath.Join(outputDir, "complete_analysis.json"))
	if err != nil {
		return fmt.Errorf("creating summary file: %w", err)
	}
	defer jsonFile.Close()
	if err := summary.WriteJSON(jsonFile); err != nil {
		return err
	}

	treeFile, err := os.Create(filepath.Join(outputDir, "variation_tree.txt"))
	if err != nil {
		return fmt.Errorf("creating tree file: %w", err)
	}
	defer treeFile.Close()
	if err := summary.WriteTree(treeFile); err != nil {
		return err
	}

	written := 2
	if !exportSkipPGN {
		n, err := exportPGNs(s, outputDir)
		if err != nil {
			return err
		}
		written += n
	}

	fmt.Printf("exported %d files to %s\n", written, outputDir)
	return nil
}

// exportPGNs reconstructs each line's ply sequence from its move-path label
// and renders it as a PGN file.
func exportPGNs(s *state.State, dir string) (int, error) {
	written := 0
	for _, line := range s.Lines() {
		parsed := rules.ParseOpeningLine(line.Moves)
		if len(parsed.Skipped) > 0 || len(parsed.Plies) == 0 {
			return written, fmt.Errorf("line %d: cannot replay moves %q", line.ID, line.Moves)
		}

		pgn, err := record.RenderPGN(parsed.Plies, line.Centipawns, fmt.Sprintf("Variation %d", line.ID))
		if err != nil {
			return written, fmt.Errorf("line %d: %w", line.ID, err)
		}

		name := filepath.Join(dir, fmt.Sprintf("variation_%d.pgn", line.ID))
		if err := os.WriteFile(name, []byte(pgn), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		written++
	}
	return written, nil
}
