package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/discochess/bookminer"
	"github.com/discochess/bookminer/internal/checkpoint/diskstore"
	"github.com/discochess/bookminer/internal/engine/ucievaluator"
	"github.com/discochess/bookminer/internal/oracle/cachedoracle"
	"github.com/discochess/bookminer/internal/oracle/lichess"
	"github.com/discochess/bookminer/internal/record"
	"github.com/discochess/bookminer/internal/rules"
	"github.com/discochess/bookminer/internal/stats"
	statslogger "github.com/discochess/bookminer/internal/stats/logger"
	statsprom "github.com/discochess/bookminer/internal/stats/prometheus"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Run or resume a depth-first exploration of the opening tree",
	Long: `Explore walks the opening tree below the given starting line. For each
position it fetches up to --breadth popular moves with at least --min-games
recorded games, asks the engine for the best reply to each, and descends.

Progress is checkpointed after every computed reply, so interrupting the run
(Ctrl-C) loses at most the evaluation in flight. Re-running the same command
resumes from the checkpoint.`,
	RunE: runExplore,
}

var (
	enginePath    string
	startingLine  string
	breadth       int
	minGames      int
	searchDepth   int
	queryInterval time.Duration
	pgnDir        string
	metricsAddr   string
)

func init() {
	exploreCmd.Flags().StringVar(&enginePath, "engine", "stockfish", "path to the UCI engine binary")
	exploreCmd.Flags().StringVar(&startingLine, "line", "", "starting moves, e.g. \"1. Nf3 d5 2. g3\"")
	exploreCmd.Flags().IntVar(&breadth, "breadth", bookminer.DefaultBreadth, "candidate moves per position")
	exploreCmd.Flags().IntVar(&minGames, "min-games", bookminer.DefaultMinGames, "minimum games for a candidate to qualify")
	exploreCmd.Flags().IntVar(&searchDepth, "depth", 30, "engine search depth per evaluation")
	exploreCmd.Flags().DurationVar(&queryInterval, "query-interval", lichess.DefaultQueryInterval, "minimum spacing between explorer queries")
	exploreCmd.Flags().StringVar(&pgnDir, "pgn-dir", "", "write one PGN file per new line into this directory")
	exploreCmd.Flags().StringVar(&metricsAddr, "metrics-listen", "", "serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	c, err := checkpointCodec()
	if err != nil {
		return err
	}

	store, err := diskstore.New(checkpointDir, c)
	if err != nil {
		return fmt.Errorf("opening checkpoint store: %w", err)
	}

	var collector stats.Collector = stats.NewNoop()
	switch {
	case metricsAddr != "":
		registry := prometheus.NewRegistry()
		collector = statsprom.New(registry)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Warn(fmt.Sprintf("metrics server stopped: %v", err))
			}
		}()
	case verbose:
		collector = statslogger.New(logger.Named("stats"))
	}

	memo, err := cachedoracle.New(
		lichess.New(
			lichess.WithQueryInterval(queryInterval),
			lichess.WithLogger(logger.Named("lichess")),
		),
		1024,
		collector,
	)
	if err != nil {
		return fmt.Errorf("creating oracle: %w", err)
	}

	evaluator, err := ucievaluator.New(enginePath,
		ucievaluator.WithDepth(searchDepth),
		ucievaluator.WithLogger(logger.Named("engine")),
	)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	opts := []bookminer.Option{
		bookminer.WithOracle(memo),
		bookminer.WithEvaluator(evaluator),
		bookminer.WithCheckpointStore(store),
		bookminer.WithBreadth(breadth),
		bookminer.WithMinGames(minGames),
		bookminer.WithStats(collector),
		bookminer.WithLogger(logger),
	}

	if pgnDir != "" {
		if err := os.MkdirAll(pgnDir, 0755); err != nil {
			return fmt.Errorf("creating PGN directory: %w", err)
		}
		opts = append(opts, bookminer.WithLineHandler(func(line bookminer.Line, path []bookminer.Ply) {
			if err := writeLinePGN(pgnDir, line, path); err != nil {
				logger.Warn(fmt.Sprintf("writing PGN for line %d: %v", line.ID, err))
			}
		}))
	}

	explorer, err := bookminer.New(opts...)
	if err != nil {
		evaluator.Close()
		store.Close()
		return fmt.Errorf("creating explorer: %w", err)
	}
	defer explorer.Close()

	// Ctrl-C cancels the walk; the explorer persists everything completed
	// so far before returning.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := explorer.Run(ctx, startingLine); err != nil {
		if ctx.Err() != nil {
			fmt.Println("interrupted; progress saved, re-run to resume")
			return nil
		}
		return err
	}

	fmt.Printf("exploration complete: %d lines recorded\n", len(explorer.Lines()))
	return nil
}

func writeLinePGN(dir string, line bookminer.Line, path []bookminer.Ply) error {
	plies := make([]rules.Ply, len(path))
	for i, p := range path {
		plies[i] = rules.Ply{UCI: p.UCI, SAN: p.SAN}
	}

	pgn, err := record.RenderPGN(plies, line.Centipawns, fmt.Sprintf("Variation %d", line.ID))
	if err != nil {
		return err
	}

	name := filepath.Join(dir, fmt.Sprintf("variation_%d.pgn", line.ID))
	return os.WriteFile(name, []byte(pgn), 0644)
}
