// Package ucievaluator implements the position evaluator on top of a
// long-lived UCI engine process such as stockfish.
package ucievaluator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"go.uber.org/zap"

	"github.com/discochess/bookminer/internal/engine"
)

// Compile-time check that Evaluator implements engine.Evaluator.
var _ engine.Evaluator = (*Evaluator)(nil)

// mateCentipawns is the clamp applied to forced-mate scores.
const mateCentipawns = 10000

// Evaluator drives a single UCI engine process.
// It is not safe for concurrent use; the exploration walk is sequential.
type Evaluator struct {
	eng    *uci.Engine
	depth  int
	logger *zap.Logger
}

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	depth   int
	threads int
	hash    int
	logger  *zap.Logger
}

// WithDepth sets the search depth per evaluation. Default is 30.
func WithDepth(d int) Option {
	return func(c *config) { c.depth = d }
}

// WithThreads sets the engine's Threads option. Default is 8.
func WithThreads(n int) Option {
	return func(c *config) { c.threads = n }
}

// WithHash sets the engine's Hash option in MiB. Default is 2048.
func WithHash(mb int) Option {
	return func(c *config) { c.hash = mb }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New starts the engine process at the given path and performs the UCI
// handshake. The caller owns the returned Evaluator and must Close it.
func New(path string, opts ...Option) (*Evaluator, error) {
	cfg := config{
		depth:   30,
		threads: 8,
		hash:    2048,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("starting engine %q: %w", path, err)
	}

	err = eng.Run(
		uci.CmdUCI,
		uci.CmdSetOption{Name: "Threads", Value: strconv.Itoa(cfg.threads)},
		uci.CmdSetOption{Name: "Hash", Value: strconv.Itoa(cfg.hash)},
		uci.CmdIsReady,
		uci.CmdUCINewGame,
	)
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("initializing engine: %w", err)
	}

	cfg.logger.Info("engine started",
		zap.String("path", path),
		zap.Int("depth", cfg.depth),
		zap.Int("threads", cfg.threads),
		zap.Int("hashMB", cfg.hash),
	)

	return &Evaluator{
		eng:    eng,
		depth:  cfg.depth,
		logger: cfg.logger,
	}, nil
}

// BestReply searches the position and returns the engine's best move with
// its score from the perspective of the side to move.
func (e *Evaluator) BestReply(ctx context.Context, fen string) (*engine.Reply, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fenFunc, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parsing FEN: %w", err)
	}
	game := chess.NewGame(fenFunc)
	pos := game.Position()

	err = e.eng.Run(
		uci.CmdPosition{Position: pos},
		uci.CmdGo{Depth: e.depth},
	)
	if err != nil {
		return nil, fmt.Errorf("searching position: %w", err)
	}

	results := e.eng.SearchResults()
	best := results.BestMove
	if best == nil {
		// Mate or stalemate: there is no reply to give.
		return nil, nil
	}

	san := chess.AlgebraicNotation{}.Encode(pos, best)
	uciStr := chess.UCINotation{}.Encode(pos, best)

	cp := results.Info.Score.CP
	if mate := results.Info.Score.Mate; mate != 0 {
		if mate > 0 {
			cp = mateCentipawns
		} else {
			cp = -mateCentipawns
		}
	}

	e.logger.Debug("engine reply",
		zap.String("fen", fen),
		zap.String("move", san),
		zap.Int("cp", cp),
	)

	return &engine.Reply{
		UCI:        uciStr,
		SAN:        san,
		Centipawns: cp,
	}, nil
}

// Close shuts the engine process down. Safe to call once.
func (e *Evaluator) Close() error {
	return e.eng.Close()
}
