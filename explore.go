package bookminer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/bookminer/internal/position"
	"github.com/discochess/bookminer/internal/record"
	"github.com/discochess/bookminer/internal/rules"
	"github.com/discochess/bookminer/internal/state"
	"github.com/discochess/bookminer/internal/stats"
)

// explore analyzes one position depth-first: query the oracle for popular
// candidate moves, obtain the engine's best reply to each (from cache when
// possible), then descend into the position after each candidate-reply pair.
// A position is marked fully explored only after every qualifying candidate
// has been processed, so a crash mid-loop resumes with the partial cache but
// without the explored mark.
func (e *Explorer) explore(ctx context.Context, fen string, path []rules.Ply) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	canonical, err := position.Canonical(fen)
	if err != nil {
		return fmt.Errorf("canonicalizing %q: %w", fen, err)
	}

	pathLabel := record.PathLabel(path)

	if e.state.IsExplored(canonical) {
		e.stats.IncCounter(stats.MetricPositionsPruned, 1)
		e.logger.Debug("skipping fully explored position",
			zap.String("path", pathLabel),
		)
		return nil
	}

	e.logger.Info("analyzing position",
		zap.String("path", pathLabel),
		zap.Int("depth", len(path)),
	)

	candidates := e.popularMoves(ctx, fen)
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(candidates) == 0 {
		// Oracle exhaustion is the base case: no qualifying continuations
		// means this branch is done.
		e.logger.Info("no qualifying moves, branch exhausted",
			zap.String("path", pathLabel),
			zap.Int("minGames", e.minGames),
		)
		return e.finishPosition(ctx, canonical)
	}

	// A skipped candidate leaves this position incompletely explored: it
	// must not be marked, so a later run can retry the skipped work.
	skipped := false

	for i, cand := range candidates {
		e.logger.Info("considering candidate",
			zap.String("move", cand.SAN),
			zap.Int("games", cand.Games),
			zap.Int("rank", i+1),
			zap.Int("of", len(candidates)),
		)

		nextFEN, san, err := rules.Apply(fen, cand.UCI)
		if err != nil {
			// Malformed oracle data; skip the candidate, not the position.
			skipped = true
			e.stats.IncCounter(stats.MetricCandidatesSkipped, 1)
			e.logger.Warn("candidate move does not apply",
				zap.String("move", cand.UCI),
				zap.Error(err),
			)
			continue
		}
		if cand.SAN == "" {
			cand.SAN = san
		}
		candPath := append(append([]rules.Ply{}, path...), rules.Ply{UCI: cand.UCI, SAN: cand.SAN})

		key := position.CacheKey(canonical, cand.UCI)
		reply, ok := e.state.Lookup(key)
		if ok {
			e.stats.IncCounter(stats.MetricReplyCacheHits, 1)
			e.logger.Info("cached best reply",
				zap.String("move", cand.SAN),
				zap.String("reply", reply.SAN),
				zap.String("eval", record.FormatScore(reply.Centipawns)),
			)
		} else {
			reply, ok, err = e.computeReply(ctx, key, nextFEN, cand.Games, candPath)
			if err != nil {
				return err
			}
			if !ok {
				skipped = true
				continue
			}
		}

		afterFEN, _, err := rules.Apply(nextFEN, reply.UCI)
		if err != nil {
			skipped = true
			e.logger.Warn("cached reply does not apply",
				zap.String("reply", reply.UCI),
				zap.Error(err),
			)
			continue
		}

		fullPath := append(candPath, rules.Ply{UCI: reply.UCI, SAN: reply.SAN})

		// Recurse on warm and cold paths alike: a resumed run must rebuild
		// the subtrees below cached replies.
		if err := e.explore(ctx, afterFEN, fullPath); err != nil {
			return err
		}
	}

	if skipped {
		e.logger.Info("position left unmarked for retry",
			zap.String("path", pathLabel),
		)
		return e.saveCheckpoint(ctx)
	}

	return e.finishPosition(ctx, canonical)
}

// popularMoves queries the oracle and applies the support threshold.
// Oracle failures are recovered locally as "no data"; only context
// cancellation propagates.
func (e *Explorer) popularMoves(ctx context.Context, fen string) []candidateMove {
	e.stats.IncCounter(stats.MetricOracleQueries, 1)

	all, err := e.oracle.TopMoves(ctx, fen, e.breadth)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Warn("oracle query failed",
				zap.Error(err),
			)
		}
		return nil
	}

	qualifying := make([]candidateMove, 0, len(all))
	for _, cand := range all {
		if cand.Games < e.minGames {
			continue
		}
		qualifying = append(qualifying, candidateMove{
			UCI:   cand.UCI,
			SAN:   cand.SAN,
			Games: cand.Games,
		})
	}
	return qualifying
}

// computeReply asks the evaluator for the best reply to the position after a
// candidate move, flips the score to the candidate mover's perspective,
// caches it, emits the line record, and checkpoints. The returned bool is
// false when the candidate must be skipped (no reply exists, or the
// evaluator failed; neither is memoized so a later run can retry).
func (e *Explorer) computeReply(ctx context.Context, key, nextFEN string, games int, candPath []rules.Ply) (state.BestReply, bool, error) {
	e.stats.IncCounter(stats.MetricEvalCalls, 1)

	raw, err := e.evaluator.BestReply(ctx, nextFEN)
	if err != nil {
		if ctx.Err() != nil {
			return state.BestReply{}, false, ctx.Err()
		}
		e.stats.IncCounter(stats.MetricCandidatesSkipped, 1)
		e.logger.Warn("evaluator failed",
			zap.String("fen", nextFEN),
			zap.Error(err),
		)
		return state.BestReply{}, false, nil
	}
	if raw == nil {
		// Checkmate or stalemate: nothing to reply with.
		return state.BestReply{}, false, nil
	}

	// The evaluator scores from the replying side's point of view; stored
	// evaluations are from the candidate mover's.
	reply := state.BestReply{
		UCI:        raw.UCI,
		SAN:        raw.SAN,
		Centipawns: -raw.Centipawns,
	}

	if err := e.state.Store(key, reply); err != nil {
		if errors.Is(err, state.ErrDivergentReply) {
			// Should be impossible given the lookup-before-compute flow;
			// report loudly and keep the original value.
			e.logger.Error("divergent reply for existing cache key",
				zap.String("key", key),
			)
			reply, _ = e.state.Lookup(key)
			return reply, true, nil
		}
		return state.BestReply{}, false, err
	}

	fullPath := append(append([]rules.Ply{}, candPath...), rules.Ply{UCI: reply.UCI, SAN: reply.SAN})
	rec := e.state.AppendLine(record.PathLabel(fullPath), reply.Centipawns, games, len(fullPath))
	e.stats.IncCounter(stats.MetricLinesEmitted, 1)

	e.logger.Info("line recorded",
		zap.Int("id", rec.ID),
		zap.String("moves", rec.Moves),
		zap.String("eval", record.FormatScore(rec.Centipawns)),
	)

	if e.lineHandler != nil {
		e.lineHandler(lineFromRecord(rec), publicPlies(fullPath))
	}

	if err := e.saveCheckpoint(ctx); err != nil {
		return state.BestReply{}, false, err
	}

	return reply, true, nil
}

// finishPosition marks a position fully explored and checkpoints the mark.
func (e *Explorer) finishPosition(ctx context.Context, canonical string) error {
	e.state.MarkExplored(canonical)
	e.stats.IncCounter(stats.MetricPositionsExplored, 1)
	return e.saveCheckpoint(ctx)
}

// candidateMove is a qualifying oracle candidate.
type candidateMove struct {
	UCI   string
	SAN   string
	Games int
}

// publicPlies converts internal plies to the public view for handlers.
func publicPlies(plies []rules.Ply) []Ply {
	out := make([]Ply, len(plies))
	for i, p := range plies {
		out[i] = Ply{UCI: p.UCI, SAN: p.SAN}
	}
	return out
}
