// Package bookminerfx provides an fx module for a ready-to-run explorer
// backed by the Lichess oracle, a UCI engine, and a disk checkpoint store.
package bookminerfx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/bookminer"
	"github.com/discochess/bookminer/internal/checkpoint/diskstore"
	"github.com/discochess/bookminer/internal/codec"
	"github.com/discochess/bookminer/internal/engine/ucievaluator"
	"github.com/discochess/bookminer/internal/oracle/cachedoracle"
	"github.com/discochess/bookminer/internal/oracle/lichess"
	"github.com/discochess/bookminer/internal/stats"
	"github.com/discochess/bookminer/internal/stats/logger"
)

// Config holds configuration for the explorer.
type Config struct {
	// EnginePath is the path to the UCI engine binary.
	EnginePath string

	// CheckpointDir is the directory holding the progress document.
	CheckpointDir string

	// Breadth is the number of candidate moves per position.
	// Default is bookminer.DefaultBreadth.
	Breadth int

	// MinGames is the support threshold for candidate moves.
	// Default is bookminer.DefaultMinGames.
	MinGames int

	// SearchDepth is the engine search depth per evaluation.
	// Zero uses the evaluator default.
	SearchDepth int

	// QueryInterval is the minimum spacing between oracle queries.
	// Zero uses the oracle default.
	QueryInterval time.Duration

	// OracleMemoSize is the LRU size for memoized oracle responses.
	// Default is 1024.
	OracleMemoSize int
}

// Module provides a configured *bookminer.Explorer.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("bookminer",
	fx.Provide(
		newStatsCollector,
		newExplorer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("bookminer.stats"))
}

// Params holds dependencies for creating the explorer.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided explorer.
type Result struct {
	fx.Out

	Explorer *bookminer.Explorer
}

func newExplorer(p Params) (Result, error) {
	memoSize := p.Config.OracleMemoSize
	if memoSize <= 0 {
		memoSize = 1024
	}

	oracleOpts := []lichess.Option{
		lichess.WithLogger(p.Logger.Named("lichess")),
	}
	if p.Config.QueryInterval > 0 {
		oracleOpts = append(oracleOpts, lichess.WithQueryInterval(p.Config.QueryInterval))
	}
	memo, err := cachedoracle.New(lichess.New(oracleOpts...), memoSize, p.Collector)
	if err != nil {
		return Result{}, err
	}

	evalOpts := []ucievaluator.Option{
		ucievaluator.WithLogger(p.Logger.Named("engine")),
	}
	if p.Config.SearchDepth > 0 {
		evalOpts = append(evalOpts, ucievaluator.WithDepth(p.Config.SearchDepth))
	}
	evaluator, err := ucievaluator.New(p.Config.EnginePath, evalOpts...)
	if err != nil {
		return Result{}, err
	}

	store, err := diskstore.New(p.Config.CheckpointDir, codec.Zstd{})
	if err != nil {
		evaluator.Close()
		return Result{}, err
	}

	opts := []bookminer.Option{
		bookminer.WithOracle(memo),
		bookminer.WithEvaluator(evaluator),
		bookminer.WithCheckpointStore(store),
		bookminer.WithStats(p.Collector),
		bookminer.WithLogger(p.Logger.Named("bookminer")),
	}
	if p.Config.Breadth > 0 {
		opts = append(opts, bookminer.WithBreadth(p.Config.Breadth))
	}
	if p.Config.MinGames > 0 {
		opts = append(opts, bookminer.WithMinGames(p.Config.MinGames))
	}

	explorer, err := bookminer.New(opts...)
	if err != nil {
		evaluator.Close()
		store.Close()
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return explorer.Close()
		},
	})

	return Result{Explorer: explorer}, nil
}
