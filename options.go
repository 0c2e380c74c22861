package bookminer

import (
	"go.uber.org/zap"

	"github.com/discochess/bookminer/internal/checkpoint"
	"github.com/discochess/bookminer/internal/engine"
	"github.com/discochess/bookminer/internal/oracle"
	"github.com/discochess/bookminer/internal/stats"
)

// Default exploration policy.
const (
	// DefaultBreadth is the number of candidate moves requested per position.
	DefaultBreadth = 5

	// DefaultMinGames is the support threshold below which a candidate move
	// does not qualify and a position is considered exhausted.
	DefaultMinGames = 500
)

// Option configures an Explorer.
type Option interface {
	apply(*options)
}

// options holds the explorer configuration.
type options struct {
	oracle      oracle.Oracle
	evaluator   engine.Evaluator
	checkpoints checkpoint.Store
	breadth     int
	minGames    int
	lineHandler LineHandler
	stats       stats.Collector
	logger      *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		breadth:  DefaultBreadth,
		minGames: DefaultMinGames,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithOracle sets the popularity oracle to query for candidate moves.
func WithOracle(o oracle.Oracle) Option {
	return optionFunc(func(opts *options) {
		opts.oracle = o
	})
}

// WithEvaluator sets the position evaluator.
// The Explorer takes ownership and closes it on Close.
func WithEvaluator(e engine.Evaluator) Option {
	return optionFunc(func(opts *options) {
		opts.evaluator = e
	})
}

// WithCheckpointStore sets the checkpoint backend.
// The Explorer takes ownership and closes it on Close.
func WithCheckpointStore(s checkpoint.Store) Option {
	return optionFunc(func(opts *options) {
		opts.checkpoints = s
	})
}

// WithBreadth sets how many candidate moves are requested per position.
func WithBreadth(n int) Option {
	return optionFunc(func(opts *options) {
		opts.breadth = n
	})
}

// WithMinGames sets the minimum support a candidate move needs to qualify.
func WithMinGames(n int) Option {
	return optionFunc(func(opts *options) {
		opts.minGames = n
	})
}

// WithLineHandler sets a callback invoked once per freshly computed line.
// Cache replays during a resumed run do not trigger it.
func WithLineHandler(h LineHandler) Option {
	return optionFunc(func(opts *options) {
		opts.lineHandler = h
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(opts *options) {
		opts.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = l
	})
}
