// Package oracle defines the popularity oracle interface: a read-only
// service reporting which moves humans actually play from a position.
package oracle

import "context"

// Candidate is one move surfaced by the oracle for a position.
type Candidate struct {
	// UCI is the compact, unambiguous move encoding.
	UCI string

	// SAN is the human-readable label, used only for display and records.
	SAN string

	// Games is the total number of recorded games in which the move was
	// played from the queried position.
	Games int

	// Per-outcome game counts.
	WhiteWins int
	Draws     int
	BlackWins int
}

// Oracle reports popular continuations for a position.
type Oracle interface {
	// TopMoves returns up to breadth candidate moves for the FEN position,
	// ordered by descending support. An empty slice means the position has
	// no recorded continuations at the oracle's disposal.
	TopMoves(ctx context.Context, fen string, breadth int) ([]Candidate, error)
}
