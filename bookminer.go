// Package bookminer explores a chess opening tree by pairing human
// popularity data with engine best replies.
//
// At each position the explorer asks a popularity oracle (the Lichess
// opening explorer) which moves are actually played, and for each popular
// move asks a position evaluator (a UCI engine) for the best reply and a
// score. Every expensive result is checkpointed, so a run can be killed at
// any point and resumed without recomputing anything.
//
// Example usage:
//
//	exp, err := bookminer.New(
//	    bookminer.WithOracle(lichess.New()),
//	    bookminer.WithEvaluator(ev),
//	    bookminer.WithCheckpointStore(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	if err := exp.Run(ctx, "1. Nf3 d5 2. g3"); err != nil {
//	    log.Fatal(err)
//	}
package bookminer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/bookminer/internal/checkpoint"
	"github.com/discochess/bookminer/internal/engine"
	"github.com/discochess/bookminer/internal/oracle"
	"github.com/discochess/bookminer/internal/rules"
	"github.com/discochess/bookminer/internal/state"
	"github.com/discochess/bookminer/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNoOracle indicates no popularity oracle was provided.
	ErrNoOracle = errors.New("bookminer: no oracle provided")

	// ErrNoEvaluator indicates no position evaluator was provided.
	ErrNoEvaluator = errors.New("bookminer: no evaluator provided")

	// ErrNoCheckpointStore indicates no checkpoint store was provided.
	ErrNoCheckpointStore = errors.New("bookminer: no checkpoint store provided")

	// ErrClosed indicates the explorer has been closed.
	ErrClosed = errors.New("bookminer: explorer closed")
)

// Explorer walks an opening tree depth-first, caching every best-reply
// computation and checkpointing after each one.
//
// An Explorer owns its evaluator and checkpoint store once constructed and
// releases both in Close. It is not safe for concurrent use; the traversal
// is sequential by design so the persistent state has a single writer.
type Explorer struct {
	oracle      oracle.Oracle
	evaluator   engine.Evaluator
	checkpoints checkpoint.Store
	breadth     int
	minGames    int
	lineHandler LineHandler
	stats       stats.Collector
	logger      *zap.Logger

	state  *state.State
	closed atomic.Bool
}

// New creates a new Explorer with the given options.
// An oracle, an evaluator, and a checkpoint store are required.
func New(opts ...Option) (*Explorer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	e := &Explorer{
		oracle:      cfg.oracle,
		evaluator:   cfg.evaluator,
		checkpoints: cfg.checkpoints,
		breadth:     cfg.breadth,
		minGames:    cfg.minGames,
		lineHandler: cfg.lineHandler,
		stats:       cfg.stats,
		logger:      cfg.logger,
		state:       state.New(),
	}

	if e.oracle == nil {
		return nil, ErrNoOracle
	}
	if e.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if e.checkpoints == nil {
		return nil, ErrNoCheckpointStore
	}

	e.logger.Debug("explorer initialized",
		zap.Int("breadth", e.breadth),
		zap.Int("minGames", e.minGames),
	)

	return e, nil
}

// Run explores the tree rooted at the position reached by the given opening
// line, e.g. "1. Nf3 d5 2. g3". It loads any previous checkpoint first and
// always persists the final state before returning, so a subsequent Run
// resumes exactly where this one stopped or was interrupted.
func (e *Explorer) Run(ctx context.Context, openingLine string) error {
	if e.closed.Load() {
		return ErrClosed
	}

	parsed := rules.ParseOpeningLine(openingLine)
	for _, token := range parsed.Skipped {
		e.logger.Warn("skipping unparseable token in opening line",
			zap.String("token", token),
		)
	}

	e.loadCheckpoint(ctx)

	e.logger.Info("starting exploration",
		zap.String("line", openingLine),
		zap.String("fen", parsed.FinalFEN),
		zap.Int("breadth", e.breadth),
		zap.Int("minGames", e.minGames),
	)

	walkErr := e.explore(ctx, parsed.FinalFEN, parsed.Plies)

	// The run always ends by persisting state, even when the walk failed,
	// so everything completed so far survives.
	if err := e.saveCheckpoint(ctx); err != nil && walkErr == nil {
		walkErr = err
	}

	if walkErr != nil {
		return walkErr
	}

	e.logger.Info("exploration finished",
		zap.Int("lines", len(e.state.Lines())),
		zap.Int("cachedReplies", e.state.ReplyCount()),
		zap.Int("exploredPositions", e.state.ExploredCount()),
	)

	return nil
}

// Lines returns all emitted line records, including those loaded from a
// previous checkpoint, in emission order.
func (e *Explorer) Lines() []Line {
	records := e.state.Lines()
	lines := make([]Line, len(records))
	for i, rec := range records {
		lines[i] = lineFromRecord(rec)
	}
	return lines
}

// Close releases the evaluator session and the checkpoint store.
// After Close, the explorer should not be used.
func (e *Explorer) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	var errs []error
	if err := e.evaluator.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing evaluator: %w", err))
	}
	if err := e.checkpoints.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing checkpoint store: %w", err))
	}
	return errors.Join(errs...)
}

// loadCheckpoint restores prior progress. A missing checkpoint starts fresh
// silently; a corrupt one starts fresh with a warning. Neither is fatal.
func (e *Explorer) loadCheckpoint(ctx context.Context) {
	doc, err := e.checkpoints.Load(ctx)
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
		e.logger.Info("no previous checkpoint, starting fresh")
		return
	case err != nil:
		e.logger.Warn("could not load checkpoint, starting fresh",
			zap.Error(err),
		)
		return
	}

	e.state = state.FromDocument(doc)
	e.logger.Info("resumed from checkpoint",
		zap.Int("cachedReplies", e.state.ReplyCount()),
		zap.Int("exploredPositions", e.state.ExploredCount()),
		zap.Int("lines", len(e.state.Lines())),
	)
}

// saveCheckpoint persists the current state. A write failure is fatal for
// the run: without durability, resumability cannot be guaranteed.
func (e *Explorer) saveCheckpoint(ctx context.Context) error {
	if err := e.checkpoints.Save(ctx, e.state.Document()); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	e.stats.IncCounter(stats.MetricCheckpointSaves, 1)
	return nil
}
