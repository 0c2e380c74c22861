// Package engine defines the position evaluator interface: a service that
// picks the best reply in a position and assesses the result.
package engine

import "context"

// Reply is the evaluator's chosen move for a position.
type Reply struct {
	// UCI is the compact move encoding.
	UCI string

	// SAN is the human-readable label for the move.
	SAN string

	// Centipawns is the assessment of the position, relative to the side to
	// move in the position that was evaluated. Forced mates are clamped to
	// +/-10000.
	Centipawns int
}

// Evaluator computes best replies. A single evaluator session is acquired
// for a whole run and released exactly once at run end.
type Evaluator interface {
	// BestReply returns the best move for the FEN position.
	// A nil Reply with a nil error means the position has no reply (the side
	// to move is mated or stalemated).
	BestReply(ctx context.Context, fen string) (*Reply, error)

	// Close releases the evaluator session.
	Close() error
}
